package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP_HeaderSources(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"remote addr", nil, "192.168.1.1:12345", "192.168.1.1"},
		{"remote addr without port", nil, "192.168.1.1", "192.168.1.1"},
		{"ipv6 remote addr", nil, "[::1]:8080", "::1"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": " 203.0.113.5 , 10.0.0.1"}, "192.168.1.1:12345", "203.0.113.5"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.2"}, "192.168.1.1:12345", "198.51.100.2"},
		{
			"forwarded for wins over real ip",
			map[string]string{"X-Forwarded-For": "203.0.113.5", "X-Real-IP": "198.51.100.2"},
			"192.168.1.1:12345",
			"203.0.113.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := func(name string) string { return tt.headers[name] }
			assert.Equal(t, tt.want, clientIP(header, tt.remoteAddr))
		})
	}
}
