package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseHostNoPort(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"10.0.0.1", "10.0.0.1"},
		{"10.0.0.1:8080", "10.0.0.1"},
		{"[::1]:443", "::1"},
		{"[2001:db8::1]", "2001:db8::1"},
		{" example.com:80 ", "example.com"},
	}
	for _, tt := range tests {
		if got := ParseHostNoPort(tt.in); got != tt.want {
			t.Errorf("ParseHostNoPort(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{name: "remote addr", want: "192.0.2.1"},
		{name: "headers ignored", headers: map[string]string{"X-Forwarded-For": "10.0.0.1"}, want: "192.0.2.1"},
		{name: "cloudflare first", trustProxy: true, headers: map[string]string{"CF-Connecting-IP": "10.0.0.9", "X-Forwarded-For": "10.0.0.1"}, want: "10.0.0.9"},
		{name: "left-most forwarded", trustProxy: true, headers: map[string]string{"X-Forwarded-For": "10.0.0.1, 172.16.0.1"}, want: "10.0.0.1"},
		{name: "real ip", trustProxy: true, headers: map[string]string{"X-Real-IP": "10.0.0.2"}, want: "10.0.0.2"},
		{name: "no headers behind proxy", trustProxy: true, want: "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", " 192.168.1.10 ", "2001:db8::/32", "garbage", ""})

	if m.IsEmpty() {
		t.Fatal("matcher should not be empty")
	}

	tests := []struct {
		ip   string
		want bool
	}{
		{"10.20.30.40", true},
		{"192.168.1.10", true},
		{"192.168.1.11", false},
		{"::ffff:10.1.1.1", true},
		{"2001:db8::abcd", true},
		{"2001:db9::1", false},
		{"not-an-ip", false},
	}
	for _, tt := range tests {
		if got := m.Allow(tt.ip); got != tt.want {
			t.Errorf("Allow(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}

	if !NewIPMatcher([]string{"nope"}).IsEmpty() {
		t.Error("invalid entries should leave the matcher empty")
	}
}
