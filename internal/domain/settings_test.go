package domain

import "testing"

func TestSettings_AllowsIP(t *testing.T) {
	tests := []struct {
		name    string
		allowed string
		ip      string
		want    bool
	}{
		{"empty list admits everyone", "", "203.0.113.9", true},
		{"blank entries only admits everyone", " , ,", "203.0.113.9", true},
		{"listed address", "10.0.0.1, 203.0.113.9", "203.0.113.9", true},
		{"unlisted address", "10.0.0.1", "203.0.113.9", false},
		{"ipv4-mapped ipv6", "192.168.1.5", "::ffff:192.168.1.5", true},
		{"other loopback address is distinct", "127.0.0.1", "127.0.0.2", false},
		{"ipv6 loopback matches 127.0.0.1", "127.0.0.1", "::1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Settings{AllowedIP: tt.allowed}
			if got := s.AllowsIP(tt.ip); got != tt.want {
				t.Errorf("AllowsIP(%q) = %v, want %v", tt.ip, got, tt.want)
			}
		})
	}
}

func TestSettings_DisplayOrder(t *testing.T) {
	if got := (Settings{}).DisplayOrder(); got != "" {
		t.Errorf("DisplayOrder() = %q, want unordered", got)
	}
	if got := (Settings{DefaultOrder: " 50 "}).DisplayOrder(); got != "50" {
		t.Errorf("DisplayOrder() = %q, want %q", got, "50")
	}
}

func TestSettings_PublicHidesCredentials(t *testing.T) {
	s := Settings{AdminEmailPassword: "secret", UPI: "shop@upi", ShowGPay: true}
	pub := s.Public()
	if pub.UPI != "shop@upi" || !pub.ShowGPay {
		t.Errorf("Public() dropped storefront fields: %+v", pub)
	}
}
