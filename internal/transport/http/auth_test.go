package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/perchdesk/perchdesk/internal/app"
	"github.com/perchdesk/perchdesk/internal/domain"
)

func TestHandleLogin(t *testing.T) {
	t.Parallel()

	success := app.LoginResult{
		Token: "signed-token",
		User: domain.User{
			ID:    "u-1",
			Email: "staff@perchdesk.test",
			Name:  "Sam",
			Role:  domain.RoleStaff,
		},
	}

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			body:           `{"email":"staff@perchdesk.test","password":"s3cret"}`,
			expectedStatus: http.StatusOK,
			expectedSubstr: `"token":"signed-token"`,
		},
		{
			name:           "invalid json",
			body:           `{"email":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad credentials",
			body:           `{"email":"staff@perchdesk.test","password":"nope"}`,
			serviceErr:     domain.ErrInvalidCredentials,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "store outage",
			body:           `{"email":"staff@perchdesk.test","password":"s3cret"}`,
			serviceErr:     domain.ErrUnavailable,
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			handler := newTestServer(t, func(cfg *Config) {
				cfg.Auth = &stubAuthService{result: success, err: tt.serviceErr}
			})

			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
			if tt.expectedStatus == http.StatusOK && strings.Contains(rec.Body.String(), "password") {
				t.Fatalf("password material leaked: %q", rec.Body.String())
			}
		})
	}
}
