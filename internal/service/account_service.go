package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"rentaloc/internal/domain"
	"rentaloc/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account inactive")
	ErrOwnerNotApproved   = errors.New("owner account not yet approved")
	ErrNotOwnerAccount    = errors.New("account is not an owner")
)

// AccountService handles authentication and admin account management.
type AccountService struct {
	logger *zap.Logger
	users  repository.UserRepository
	hasher PasswordHasher

	now func() time.Time
}

func NewAccountService(logger *zap.Logger, users repository.UserRepository, hasher PasswordHasher) *AccountService {
	if hasher == nil {
		hasher = NewBcryptHasher()
	}
	return &AccountService{
		logger: logger,
		users:  users,
		hasher: hasher,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Login authenticates by email and password. Soft-deleted accounts are
// invisible; inactive accounts and unapproved owners are rejected with
// distinct errors so the handler can explain.
func (s *AccountService) Login(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" || !s.hasher.Compare(user.PasswordHash, password) {
		return domain.User{}, ErrInvalidCredentials
	}

	switch user.Role {
	case domain.RoleOwner:
		if !user.Approved {
			return domain.User{}, ErrOwnerNotApproved
		}
	case domain.RoleTenant, domain.RoleAdmin:
		// no extra gate
	}
	if !user.Active {
		return domain.User{}, ErrAccountInactive
	}

	s.logger.Info("login", zap.String("email", user.Email), zap.String("role", string(user.Role)))
	return user, nil
}

// ApproveOwner approves a pending owner account and activates it.
func (s *AccountService) ApproveOwner(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrAccountNotFound
		}
		return domain.User{}, err
	}
	if user.Role != domain.RoleOwner {
		return domain.User{}, ErrNotOwnerAccount
	}
	if err := s.users.Approve(ctx, user.ID); err != nil {
		return domain.User{}, err
	}
	user.Approved = true
	user.Active = true
	s.logger.Info("owner approved", zap.String("email", user.Email))
	return user, nil
}

// Deactivate soft-deletes an account. The row is kept; the account just
// stops resolving.
func (s *AccountService) Deactivate(ctx context.Context, id string) error {
	if err := s.users.SoftDelete(ctx, id, s.now()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		return err
	}
	s.logger.Info("account deactivated", zap.String("id", id))
	return nil
}
