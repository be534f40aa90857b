package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"rentaloc/internal/domain"
	"rentaloc/internal/email"
	"rentaloc/internal/repository"
)

var (
	ErrEmailTaken      = errors.New("email already in use")
	ErrNameTaken       = errors.New("name already in use")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidRole     = errors.New("invalid role")
	ErrPendingNotFound = errors.New("no pending signup for email")
	ErrCodeExpired     = errors.New("verification code expired")
	ErrCodeInvalid     = errors.New("verification code invalid")
	ErrPromotionFailed = errors.New("account promotion failed")
	ErrDeliveryFailed  = errors.New("verification email could not be queued")
	ErrRateLimited     = errors.New("rate limited")
	ErrAccountNotFound = errors.New("account not found")
)

// ThrottledError reports a resend requested inside the wait window.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("resend throttled, retry in %s", e.RetryAfter.Round(time.Second))
}

const (
	codeDigits     = 4
	codeTTL        = 10 * time.Minute
	resendInterval = 3 * time.Minute
)

// SignupService drives the pending-registration lifecycle: a signup or
// password-reset request creates a pending record with a short-lived
// numeric code; verifying the code promotes the record into an account
// (or updates the account's password) and discards it. At most one
// pending record exists per email.
type SignupService struct {
	logger   *zap.Logger
	users    repository.UserRepository
	pendings repository.PendingRepository
	mailer   email.Mailer
	hasher   PasswordHasher
	limiter  RateLimiter

	// now is replaceable so throttle and expiry boundaries are testable.
	now func() time.Time
}

func NewSignupService(logger *zap.Logger, users repository.UserRepository, pendings repository.PendingRepository, mailer email.Mailer, hasher PasswordHasher, limiter RateLimiter) *SignupService {
	if hasher == nil {
		hasher = NewBcryptHasher()
	}
	if limiter == nil {
		limiter = NewMemoryRateLimiter(codeTTL, 5)
	}
	return &SignupService{
		logger:   logger,
		users:    users,
		pendings: pendings,
		mailer:   mailer,
		hasher:   hasher,
		limiter:  limiter,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type SignupInput struct {
	Email    string
	Name     string
	Phone    string
	Password string
	Role     domain.Role
}

// Signup registers a pending signup and queues the verification email.
// A repeated signup for the same email reissues the code, subject to
// the resend throttle.
func (s *SignupService) Signup(ctx context.Context, input SignupInput) error {
	emailAddr := normalizeEmail(input.Email)
	if emailAddr == "" {
		return ErrInvalidEmail
	}

	var intent domain.Intent
	switch input.Role {
	case domain.RoleTenant:
		intent = domain.IntentNewTenant
	case domain.RoleOwner:
		intent = domain.IntentNewOwner
	case domain.RoleAdmin:
		// Admin accounts are provisioned out of band, never via signup.
		return ErrInvalidRole
	default:
		return ErrInvalidRole
	}

	if s.limiter != nil && !s.limiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	exists, err := s.users.ExistsByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailTaken
	}

	pending, err := s.pendings.GetByEmail(ctx, emailAddr)
	switch {
	case err == nil:
		return s.reissue(ctx, pending, intent, s.mailer.EnqueueVerificationCode)
	case errors.Is(err, pgx.ErrNoRows):
		// fall through to create
	default:
		return err
	}

	name := strings.TrimSpace(input.Name)
	taken, err := s.nameTaken(ctx, name)
	if err != nil {
		return err
	}
	if taken {
		return ErrNameTaken
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return err
	}

	code, expiresAt, err := s.issueCode()
	if err != nil {
		return err
	}

	now := s.now()
	pending = domain.PendingSignup{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		Name:         name,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		Code:         code,
		Intent:       intent,
		ExpiresAt:    expiresAt,
		UpdatedAt:    now,
		CreatedAt:    now,
	}
	if err := s.pendings.Create(ctx, pending); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// First writer wins; the loser retries as a resend.
			return ErrEmailTaken
		}
		return err
	}

	if err := s.mailer.EnqueueVerificationCode(emailAddr, code, expiresAt); err != nil {
		// An unreachable pending record can never be verified; drop it.
		if delErr := s.pendings.Delete(ctx, pending.ID); delErr != nil {
			s.logger.Error("compensating delete failed", zap.Error(delErr), zap.String("email", emailAddr))
		}
		s.logger.Warn("verification email enqueue failed", zap.Error(err), zap.String("email", emailAddr))
		return ErrDeliveryFailed
	}

	s.logger.Info("pending signup created", zap.String("email", emailAddr), zap.String("intent", string(intent)))
	return nil
}

// ResendCode reissues the verification code for an existing pending
// signup, subject to the resend throttle.
func (s *SignupService) ResendCode(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if s.limiter != nil && !s.limiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	pending, err := s.pendings.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPendingNotFound
		}
		return err
	}
	enqueue := s.mailer.EnqueueVerificationCode
	if pending.Intent == domain.IntentPasswordReset {
		enqueue = s.mailer.EnqueuePasswordResetCode
	}
	return s.reissue(ctx, pending, pending.Intent, enqueue)
}

// VerifyResult reports the promoted account. AutoLogin is set for roles
// that activate immediately; roles pending approval sign in later.
type VerifyResult struct {
	User      domain.User
	AutoLogin bool
}

// VerifyEmail checks a submitted code against the pending signup and,
// on a match, promotes the record into an account. The pending record
// is deleted on expiry, on promotion, and on promotion failure; only a
// plain mismatch keeps it alive for another attempt.
func (s *SignupService) VerifyEmail(ctx context.Context, emailAddr, code string) (VerifyResult, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return VerifyResult{}, ErrInvalidEmail
	}

	pending, err := s.pendings.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return VerifyResult{}, ErrPendingNotFound
		}
		return VerifyResult{}, err
	}
	if pending.Intent == domain.IntentPasswordReset {
		return VerifyResult{}, ErrPendingNotFound
	}

	if err := s.checkCode(ctx, pending, code); err != nil {
		return VerifyResult{}, err
	}

	user, err := s.promote(ctx, pending)
	if err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{User: user, AutoLogin: user.Role == domain.RoleTenant}, nil
}

// RequestPasswordReset issues a reset code for an existing account. The
// pending record is derived from the account itself; the stored hash is
// carried over untouched.
func (s *SignupService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if s.limiter != nil && !s.limiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		return err
	}

	pending, err := s.pendings.GetByEmail(ctx, emailAddr)
	switch {
	case err == nil:
		return s.reissue(ctx, pending, domain.IntentPasswordReset, s.mailer.EnqueuePasswordResetCode)
	case errors.Is(err, pgx.ErrNoRows):
		// fall through to create
	default:
		return err
	}

	code, expiresAt, err := s.issueCode()
	if err != nil {
		return err
	}

	now := s.now()
	pending = domain.PendingSignup{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		Name:         user.Name,
		Phone:        user.Phone,
		PasswordHash: user.PasswordHash,
		Code:         code,
		Intent:       domain.IntentPasswordReset,
		ExpiresAt:    expiresAt,
		UpdatedAt:    now,
		CreatedAt:    now,
	}
	if err := s.pendings.Create(ctx, pending); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrEmailTaken
		}
		return err
	}

	if err := s.mailer.EnqueuePasswordResetCode(emailAddr, code, expiresAt); err != nil {
		if delErr := s.pendings.Delete(ctx, pending.ID); delErr != nil {
			s.logger.Error("compensating delete failed", zap.Error(delErr), zap.String("email", emailAddr))
		}
		return ErrDeliveryFailed
	}

	s.logger.Info("password reset requested", zap.String("email", emailAddr))
	return nil
}

// VerifyPasswordReset checks the reset code and updates the account
// password. No account is created; approval and active flags are left
// untouched. The new password is hashed exactly once, here.
func (s *SignupService) VerifyPasswordReset(ctx context.Context, emailAddr, code, newPassword string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}

	pending, err := s.pendings.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPendingNotFound
		}
		return err
	}
	if pending.Intent != domain.IntentPasswordReset {
		return ErrPendingNotFound
	}

	if err := s.checkCode(ctx, pending, code); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		s.discard(ctx, pending.ID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.discard(ctx, pending.ID)
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		s.discard(ctx, pending.ID)
		return err
	}

	s.discard(ctx, pending.ID)
	s.logger.Info("password reset completed", zap.String("email", emailAddr))
	return nil
}

// reissue replaces the code on an existing pending record, enforcing
// the resend throttle, and queues the email. Enqueue failure discards
// the record: a registration whose code was never sent is unreachable.
func (s *SignupService) reissue(ctx context.Context, pending domain.PendingSignup, intent domain.Intent, enqueue func(string, string, time.Time) error) error {
	now := s.now()
	if wait := pending.UpdatedAt.Add(resendInterval).Sub(now); wait > 0 {
		return &ThrottledError{RetryAfter: wait}
	}

	code, expiresAt, err := s.issueCode()
	if err != nil {
		return err
	}
	if err := s.pendings.Reissue(ctx, pending.ID, code, expiresAt, now, intent); err != nil {
		return err
	}

	if err := enqueue(pending.Email, code, expiresAt); err != nil {
		if delErr := s.pendings.Delete(ctx, pending.ID); delErr != nil {
			s.logger.Error("compensating delete failed", zap.Error(delErr), zap.String("email", pending.Email))
		}
		return ErrDeliveryFailed
	}

	s.logger.Info("verification code reissued", zap.String("email", pending.Email), zap.String("intent", string(intent)))
	return nil
}

// checkCode applies the expiry-then-match rule. An expired record is
// deleted and the caller restarts from scratch; a mismatch keeps the
// record so the user can retry until expiry.
func (s *SignupService) checkCode(ctx context.Context, pending domain.PendingSignup, code string) error {
	if s.now().After(pending.ExpiresAt) {
		s.discard(ctx, pending.ID)
		return ErrCodeExpired
	}
	code = strings.TrimSpace(code)
	if !isValidCode(code) {
		return ErrCodeInvalid
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(pending.Code)) != 1 {
		return ErrCodeInvalid
	}
	return nil
}

// promote converts a verified pending signup into an account, applying
// role defaults. Uniqueness is re-checked right before creation to
// close the race between verification and promotion; any failure
// discards the record and forces a fresh signup.
func (s *SignupService) promote(ctx context.Context, pending domain.PendingSignup) (domain.User, error) {
	defer s.discard(ctx, pending.ID)

	emailExists, err := s.users.ExistsByEmail(ctx, pending.Email)
	if err != nil {
		return domain.User{}, err
	}
	nameExists, err := s.users.ExistsByName(ctx, pending.Name)
	if err != nil {
		return domain.User{}, err
	}
	if emailExists || nameExists {
		return domain.User{}, ErrPromotionFailed
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        pending.Email,
		Name:         pending.Name,
		Phone:        pending.Phone,
		PasswordHash: pending.PasswordHash,
		CreatedAt:    s.now(),
	}
	switch pending.Intent {
	case domain.IntentNewTenant:
		user.Role = domain.RoleTenant
		user.Approved = true
		user.Active = true
	case domain.IntentNewOwner:
		user.Role = domain.RoleOwner
		user.Approved = false
		user.Active = false
	case domain.IntentPasswordReset:
		return domain.User{}, ErrPromotionFailed
	default:
		return domain.User{}, ErrPromotionFailed
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.User{}, ErrPromotionFailed
		}
		return domain.User{}, err
	}

	s.logger.Info("account promoted", zap.String("email", user.Email), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *SignupService) discard(ctx context.Context, id string) {
	if err := s.pendings.Delete(ctx, id); err != nil {
		s.logger.Error("pending delete failed", zap.Error(err), zap.String("id", id))
	}
}

func (s *SignupService) nameTaken(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, nil
	}
	taken, err := s.users.ExistsByName(ctx, name)
	if err != nil || taken {
		return taken, err
	}
	return s.pendings.ExistsByName(ctx, name)
}

// issueCode generates a random 4-digit code and its expiry. It has no
// side effects; persistence belongs to the caller.
func (s *SignupService) issueCode() (string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", time.Time{}, err
	}
	code := fmt.Sprintf("%0*d", codeDigits, n.Int64())
	return code, s.now().Add(codeTTL), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidCode(code string) bool {
	if len(code) != codeDigits {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
