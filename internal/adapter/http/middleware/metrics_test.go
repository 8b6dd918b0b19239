package middleware

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/loans", "/api/v1/loans"},
		{"/api/v1/loans/loan-01ABC", "/api/v1/loans/:id"},
		{"/api/v1/loans/loan-01ABC/status", "/api/v1/loans/:id/status"},
		{"/api/v1/loans/schedule", "/api/v1/loans/schedule"},
		{"/api/v1/payments/pay-01ABC", "/api/v1/payments/:id"},
		{"/api/v1/payments/pay-01ABC/classify", "/api/v1/payments/:id/classify"},
		{"/api/v1/payments/advance", "/api/v1/payments/advance"},
		{"/api/v1/payments/advance/quote", "/api/v1/payments/advance/quote"},
		{"/api/v1/sessions/ses-01ABC/balance", "/api/v1/sessions/:id/balance"},
		{"/health", "/health"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
