package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/campushub/backend/internal/auth"
	"github.com/campushub/backend/internal/notify"
	"github.com/campushub/backend/internal/store"
)

// DefaultResetTTL bounds how long a password-reset link stays valid.
const DefaultResetTTL = time.Hour

var (
	// ErrPasswordMismatch means the new password and its confirmation
	// differ. Checked before any hashing or store work.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrWrongPassword means the supplied current password failed
	// verification.
	ErrWrongPassword = errors.New("current password is incorrect")

	// ErrResetTokenExpired is surfaced to the user so they know to
	// request a fresh link.
	ErrResetTokenExpired = errors.New("reset token has expired")

	// ErrResetTokenInvalid covers every other reset-token failure:
	// bad signature, malformed token, or a subject that no longer
	// exists.
	ErrResetTokenInvalid = errors.New("reset token is invalid")
)

// PasswordService owns the password lifecycle: authenticated change,
// reset request, and token-mediated reset.
//
// Reset tokens are not tracked server side, so a token stays usable
// for further resets until it expires on its own. Likewise nothing
// locks the user row across verify-then-write, so of two racing
// changes the last write wins.
type PasswordService struct {
	users        UserRepository
	hasher       *auth.PasswordHasher
	codec        *auth.TokenCodec
	notifier     notify.Notifier
	resetTTL     time.Duration
	resetBaseURL string
}

func NewPasswordService(
	users UserRepository,
	hasher *auth.PasswordHasher,
	codec *auth.TokenCodec,
	notifier notify.Notifier,
	resetTTL time.Duration,
	resetBaseURL string,
) *PasswordService {
	if resetTTL <= 0 {
		resetTTL = DefaultResetTTL
	}
	return &PasswordService{
		users:        users,
		hasher:       hasher,
		codec:        codec,
		notifier:     notifier,
		resetTTL:     resetTTL,
		resetBaseURL: resetBaseURL,
	}
}

// Change rotates the password of an authenticated user after
// verifying the current one against the stored hash.
func (s *PasswordService) Change(ctx context.Context, userID int, current, newPassword, confirm string) error {
	if newPassword != confirm {
		return ErrPasswordMismatch
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(current, user.PasswordHash) {
		return ErrWrongPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, hash)
}

// RequestReset issues a short-lived reset token and hands the link to
// the notifier. It returns nil for unknown or deactivated addresses
// too: the caller's response must not disclose whether an account
// exists. A notifier failure is logged, not returned, for the same
// reason.
func (s *PasswordService) RequestReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if user.IsDeleted {
		return nil
	}

	token, err := s.codec.IssueReset(user.ID, s.resetTTL)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password/%s", s.resetBaseURL, token)
	body := fmt.Sprintf("Follow this link to reset your password: %s\nThe link expires in %s.", link, s.resetTTL)
	if err := s.notifier.Send(ctx, user.Email, "Password reset", body); err != nil {
		log.Printf("password reset notification failed for user %d: %v", user.ID, err)
	}
	return nil
}

// Reset rotates the password of the token's subject. Expiry is the
// one failure distinguished for the user; everything else collapses
// to ErrResetTokenInvalid.
func (s *PasswordService) Reset(ctx context.Context, token, newPassword, confirm string) error {
	if newPassword != confirm {
		return ErrPasswordMismatch
	}

	claims, err := s.codec.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return ErrResetTokenExpired
		}
		return ErrResetTokenInvalid
	}

	userID, err := claims.UserID()
	if err != nil {
		return ErrResetTokenInvalid
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}
	if user.IsDeleted {
		return ErrResetTokenInvalid
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, hash)
}
