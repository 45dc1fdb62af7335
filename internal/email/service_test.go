package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/flipcart/internal/domain"
)

type mockSettings struct {
	GetFunc func(ctx context.Context) (*domain.Settings, error)
}

func (m *mockSettings) Get(ctx context.Context) (*domain.Settings, error) {
	return m.GetFunc(ctx)
}

func (m *mockSettings) Update(ctx context.Context, s domain.Settings) (*domain.Settings, error) {
	return &s, nil
}

type recordingSender struct {
	config SMTPConfig
	sent   []*Email
	err    error
}

func (r *recordingSender) Send(_ context.Context, e *Email) error {
	r.sent = append(r.sent, e)
	return r.err
}

func newTestNotifier(settings *domain.Settings, sender *recordingSender) *Notifier {
	store := &mockSettings{GetFunc: func(context.Context) (*domain.Settings, error) {
		return settings, nil
	}}
	n := NewNotifier(store, "smtp.example.com", 587, func(cfg SMTPConfig) Sender {
		sender.config = cfg
		return sender
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	n.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return n
}

func TestNotifier_SendImportReport(t *testing.T) {
	sender := &recordingSender{}
	n := newTestNotifier(&domain.Settings{
		CompanyName:        "Acme Mobiles",
		AdminEmail:         " owner@acme.test ",
		AdminEmailPassword: "app-password",
	}, sender)

	err := n.SendImportReport(context.Background(), ImportReport{
		Filename: "phones.csv",
		Admin:    "admin",
		Result: &domain.ImportResult{
			Imported: 3,
			Created:  2,
			Skipped:  []domain.SkippedRow{{Row: 4, Reason: "name is empty"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	assert.Equal(t, "owner@acme.test", sender.config.Username)
	assert.Equal(t, "app-password", sender.config.Password)
	assert.Equal(t, "Acme Mobiles", sender.config.FromName)
	assert.Equal(t, 587, sender.config.Port)

	msg := sender.sent[0]
	assert.Equal(t, []string{"owner@acme.test"}, msg.To)
	assert.Equal(t, "Catalog import: 3 variants from phones.csv", msg.Subject)
	assert.Contains(t, msg.TextBody, "Variants imported: 3")
	assert.Contains(t, msg.TextBody, "Row 4: name is empty")
	assert.NotContains(t, msg.TextBody, "<p>")
}

func TestNotifier_SendImportReport_NoAdminEmail(t *testing.T) {
	sender := &recordingSender{}
	n := newTestNotifier(&domain.Settings{}, sender)

	err := n.SendImportReport(context.Background(), ImportReport{Filename: "x.csv"})
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestNotifier_SendImportReport_Errors(t *testing.T) {
	t.Run("settings unavailable", func(t *testing.T) {
		store := &mockSettings{GetFunc: func(context.Context) (*domain.Settings, error) {
			return nil, errors.New("disk gone")
		}}
		n := NewNotifier(store, "localhost", 1025, nil, nil)

		err := n.SendImportReport(context.Background(), ImportReport{})
		assert.ErrorContains(t, err, "disk gone")
	})

	t.Run("send failure is returned", func(t *testing.T) {
		sender := &recordingSender{err: errors.New("auth failed")}
		n := newTestNotifier(&domain.Settings{AdminEmail: "a@b.test"}, sender)

		err := n.SendImportReport(context.Background(), ImportReport{Filename: "x.csv"})
		assert.ErrorContains(t, err, "auth failed")
	})
}

func TestGeneratePlainText(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		contains []string
		excludes []string
	}{
		{
			name:     "line breaks",
			html:     "Row 2<br>Row 3<br/>Row 4<br />Row 5",
			contains: []string{"Row 2\nRow 3\nRow 4\nRow 5"},
			excludes: []string{"<br"},
		},
		{
			name:     "headings and paragraphs",
			html:     "<div><h2>Catalog import finished</h2><p>Variants imported: 3</p></div>",
			contains: []string{"Catalog import finished\nVariants imported: 3"},
			excludes: []string{"<h2>", "<p>", "<div>"},
		},
		{
			name:     "entities after tags are stripped",
			html:     "<p>Size &lt;6&quot;&gt; &amp; &#39;Pro&#39;</p>",
			contains: []string{`Size <6"> & 'Pro'`},
		},
		{
			name:     "unterminated tag is kept",
			html:     "price < 100",
			contains: []string{"price < 100"},
		},
		{
			name: "empty",
			html: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := generatePlainText(tt.html)
			for _, want := range tt.contains {
				assert.Contains(t, result, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, result, unwanted)
			}
			for _, line := range strings.Split(result, "\n") {
				assert.Equal(t, strings.TrimSpace(line), line)
			}
		})
	}
}
