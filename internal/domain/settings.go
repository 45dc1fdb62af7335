package domain

import (
	"context"
	"net"
	"strings"
)

// Settings is the single store-wide configuration record edited from the
// admin console.
type Settings struct {
	CompanyName        string `json:"cmp_name"`
	CompanyEmail       string `json:"cmp_email"`
	AdminEmail         string `json:"admin_email"`
	AdminEmailPassword string `json:"admin_email_password,omitempty"`
	Contact1           string `json:"contact1"`
	Contact2           string `json:"contact2"`
	Address            string `json:"address"`
	ShowGPay           bool   `json:"show_gpay"`
	ShowPhonePe        bool   `json:"show_phonepe"`
	ShowPaytm          bool   `json:"show_paytm"`
	PayType            bool   `json:"pay_type"`
	PaymentScript      string `json:"payment_script"`
	AllowedIP          string `json:"allowed_ip"`
	UPI                string `json:"upi"`
	Pixel              string `json:"pixel"`
	Maintenance        bool   `json:"maintenance"`
	DefaultOrder       string `json:"default_disp_order"`
}

// PublicSettings is the subset of Settings the storefront may read.
type PublicSettings struct {
	ShowGPay      bool   `json:"show_gpay"`
	ShowPhonePe   bool   `json:"show_phonepe"`
	ShowPaytm     bool   `json:"show_paytm"`
	PayType       bool   `json:"pay_type"`
	PaymentScript string `json:"payment_script"`
	UPI           string `json:"upi"`
	Pixel         string `json:"pixel"`
}

// Public strips everything the storefront must not see.
func (s Settings) Public() PublicSettings {
	return PublicSettings{
		ShowGPay:      s.ShowGPay,
		ShowPhonePe:   s.ShowPhonePe,
		ShowPaytm:     s.ShowPaytm,
		PayType:       s.PayType,
		PaymentScript: s.PaymentScript,
		UPI:           s.UPI,
		Pixel:         s.Pixel,
	}
}

// DisplayOrder returns the order given to manual products submitted without
// one. Without a configured default they stay unordered and sort last.
func (s Settings) DisplayOrder() string {
	return strings.TrimSpace(s.DefaultOrder)
}

// AllowsIP reports whether ip may reach the admin API. An empty allow-list
// admits everyone.
func (s Settings) AllowsIP(ip string) bool {
	var allowed []string
	for _, entry := range strings.Split(s.AllowedIP, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			allowed = append(allowed, entry)
		}
	}
	if len(allowed) == 0 {
		return true
	}

	ip = normalizeIP(ip)
	for _, entry := range allowed {
		if normalizeIP(entry) == ip {
			return true
		}
	}
	return false
}

// normalizeIP folds IPv4-mapped IPv6 addresses and the IPv6 loopback onto
// their IPv4 spelling.
func normalizeIP(ip string) string {
	ip = strings.TrimSpace(ip)
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ip
	}
	if parsed.Equal(net.IPv6loopback) {
		return "127.0.0.1"
	}
	if v4 := parsed.To4(); v4 != nil {
		return v4.String()
	}
	return parsed.String()
}

// SettingsStore persists the settings record.
type SettingsStore interface {
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, s Settings) (*Settings, error)
}
