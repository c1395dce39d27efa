package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/perchdesk/perchdesk/internal/clock"
	"github.com/perchdesk/perchdesk/internal/domain"
)

func TestIssuer_StaffTokens(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	issuer := NewIssuer([]byte("staff-secret"), []byte("booking-secret"), clock.NewFixed(now))

	t.Run("round trip", func(t *testing.T) {
		token, err := issuer.IssueStaffToken("u-1", "staff@perchdesk.test", domain.RoleAdmin)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		claims, err := issuer.VerifyStaffToken(token)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if claims.UserID != "u-1" || claims.Email != "staff@perchdesk.test" || claims.Role != domain.RoleAdmin {
			t.Fatalf("unexpected claims: %+v", claims)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := issuer.IssueStaffToken("u-1", "staff@perchdesk.test", domain.RoleStaff)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		later := NewIssuer([]byte("staff-secret"), []byte("booking-secret"),
			clock.NewFixed(now.Add(StaffTokenTTL+time.Minute)))
		if _, err := later.VerifyStaffToken(token); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := issuer.IssueStaffToken("u-1", "staff@perchdesk.test", domain.RoleStaff)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		other := NewIssuer([]byte("different"), []byte("booking-secret"), clock.NewFixed(now))
		if _, err := other.VerifyStaffToken(token); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if _, err := issuer.VerifyStaffToken("not.a.jwt"); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
	})
}

func TestIssuer_PublicBookingTokens(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	issuer := NewIssuer([]byte("staff-secret"), []byte("booking-secret"), clock.NewFixed(now))

	t.Run("grants access to its booking only", func(t *testing.T) {
		token, err := issuer.IssuePublicBookingToken("b-1", now.Add(2*time.Hour))
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		if !issuer.VerifyPublicBookingAccess("b-1", token) {
			t.Fatal("expected access to b-1")
		}
		if issuer.VerifyPublicBookingAccess("b-2", token) {
			t.Fatal("token for b-1 granted access to b-2")
		}
		if issuer.VerifyPublicBookingAccess("", token) {
			t.Fatal("empty booking id must never verify")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := issuer.IssuePublicBookingToken("b-1", now.Add(time.Hour))
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		later := NewIssuer([]byte("staff-secret"), []byte("booking-secret"),
			clock.NewFixed(now.Add(2*time.Hour)))
		if later.VerifyPublicBookingAccess("b-1", token) {
			t.Fatal("expired token still verifies")
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if issuer.VerifyPublicBookingAccess("b-1", "junk") {
			t.Fatal("garbage token verifies")
		}
	})
}

// The two token kinds are signed with distinct secrets, so neither verifies
// against the other's key.
func TestIssuer_KindsAreDisjoint(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	issuer := NewIssuer([]byte("staff-secret"), []byte("booking-secret"), clock.NewFixed(now))

	staffToken, err := issuer.IssueStaffToken("u-1", "staff@perchdesk.test", domain.RoleStaff)
	if err != nil {
		t.Fatalf("issue staff: %v", err)
	}
	bookingToken, err := issuer.IssuePublicBookingToken("b-1", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("issue booking: %v", err)
	}

	if issuer.VerifyPublicBookingAccess("b-1", staffToken) {
		t.Fatal("staff token granted public booking access")
	}
	if _, err := issuer.VerifyStaffToken(bookingToken); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("booking token verified as staff token, err %v", err)
	}
}
