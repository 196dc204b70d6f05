package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/felixgeelhaar/classtrack/internal/api/middleware"
)

func TestRealIP(t *testing.T) {
	trusted := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("fd00::/8"),
	}

	tests := []struct {
		name    string
		trusted []netip.Prefix
		headers map[string]string
		remote  string
		want    string
	}{
		{"peer address", nil, nil, "192.0.2.1:1234", "192.0.2.1"},
		{"ipv6 peer", nil, nil, "[2001:db8::1]:443", "2001:db8::1"},
		{"peer without port kept", nil, nil, "pipe", "pipe"},
		{"forwarded for ignored without trusted proxies", nil,
			map[string]string{"X-Forwarded-For": "203.0.113.5"}, "10.0.0.1:80", "10.0.0.1"},
		{"real ip ignored from untrusted peer", trusted,
			map[string]string{"X-Real-IP": "198.51.100.7"}, "192.0.2.9:80", "192.0.2.9"},
		{"forwarded for from trusted proxy", trusted,
			map[string]string{"X-Forwarded-For": "203.0.113.5"}, "10.0.0.1:80", "203.0.113.5"},
		{"nearest untrusted hop wins", trusted,
			map[string]string{"X-Forwarded-For": "6.6.6.6, 203.0.113.5, 10.0.0.2"}, "10.0.0.1:80", "203.0.113.5"},
		{"malformed hop falls back to peer", trusted,
			map[string]string{"X-Forwarded-For": "not-an-ip"}, "10.0.0.1:80", "10.0.0.1"},
		{"real ip from trusted proxy", trusted,
			map[string]string{"X-Real-IP": "198.51.100.7"}, "10.0.0.1:80", "198.51.100.7"},
		{"ipv6 trusted proxy", trusted,
			map[string]string{"X-Forwarded-For": "2001:db8::7"}, "[fd00::1]:443", "2001:db8::7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := middleware.RealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = middleware.ClientIP(r)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("ClientIP() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestClientIP_WithoutRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.5")

	if got := middleware.ClientIP(req); got != "192.0.2.1" {
		t.Errorf("ClientIP() = %q; want the peer address", got)
	}
}
