// Package admin serves the authenticated catalog console API.
package admin

import (
	"net/http"

	"github.com/dukerupert/flipcart/internal/middleware"
)

// audit writes one line per admin write.
func audit(r *http.Request, action, op string, args ...any) {
	user := ""
	if admin := middleware.GetAdmin(r.Context()); admin != nil {
		user = admin.Username
	}
	attrs := append([]any{
		"action", action,
		"op", op,
		"user", user,
		"ip", middleware.GetClientIP(r),
	}, args...)
	middleware.GetLogger(r.Context()).Info("admin action", attrs...)
}
