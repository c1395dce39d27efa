package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/perchdesk/perchdesk/internal/clock"
	"github.com/perchdesk/perchdesk/internal/domain"
)

// StaffTokenTTL is how long a staff token stays valid after issuance.
const StaffTokenTTL = 24 * time.Hour

// StaffClaims is the payload of a staff bearer token.
type StaffClaims struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// BookingClaims scopes a public token to exactly one booking.
type BookingClaims struct {
	BookingID string `json:"booking_id"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies the two token kinds. Staff and public booking
// tokens are signed with distinct secrets so one kind can never be replayed
// as the other.
type Issuer struct {
	staffSecret   []byte
	bookingSecret []byte
	clock         clock.Clock
}

func NewIssuer(staffSecret, bookingSecret []byte, clk clock.Clock) *Issuer {
	return &Issuer{
		staffSecret:   staffSecret,
		bookingSecret: bookingSecret,
		clock:         clk,
	}
}

// IssueStaffToken signs a token carrying the staff member's identity and
// role, valid for StaffTokenTTL from now.
func (i *Issuer) IssueStaffToken(userID, email string, role domain.Role) (string, error) {
	now := i.clock.Now()
	claims := StaffClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(StaffTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.staffSecret)
	if err != nil {
		return "", fmt.Errorf("signing staff token: %w", err)
	}
	return signed, nil
}

// VerifyStaffToken parses and validates a staff token, returning its claims.
// Any failure, including expiry and signature mismatch, surfaces as
// domain.ErrUnauthenticated.
func (i *Issuer) VerifyStaffToken(tokenStr string) (*StaffClaims, error) {
	claims := &StaffClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.staffSecret, nil
	}, jwt.WithTimeFunc(i.clock.Now))
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthenticated
	}
	return claims, nil
}

// IssuePublicBookingToken signs a token granting read access to one booking.
// The caller supplies the expiry, normally the booking end plus a buffer.
func (i *Issuer) IssuePublicBookingToken(bookingID string, expiresAt time.Time) (string, error) {
	claims := BookingClaims{
		BookingID: bookingID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(i.clock.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.bookingSecret)
	if err != nil {
		return "", fmt.Errorf("signing booking token: %w", err)
	}
	return signed, nil
}

// VerifyPublicBookingAccess reports whether tokenStr grants access to
// bookingID. It never returns an error: a bad signature, an expired token or
// a token scoped to a different booking all yield false, since this guards a
// best-effort customer link.
func (i *Issuer) VerifyPublicBookingAccess(bookingID, tokenStr string) bool {
	claims := &BookingClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.bookingSecret, nil
	}, jwt.WithTimeFunc(i.clock.Now))
	if err != nil || !token.Valid {
		return false
	}
	return claims.BookingID == bookingID && bookingID != ""
}
