package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

type UserService struct {
	accounts ports.AccountRepository
	resolver *RoleResolver
	logger   *zap.Logger
	now      func() time.Time
}

var _ ports.UserService = (*UserService)(nil)

func NewUserService(accounts ports.AccountRepository, resolver *RoleResolver, logger *zap.Logger) *UserService {
	return &UserService{accounts: accounts, resolver: resolver, logger: logger, now: time.Now}
}

type registration struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// List shows every account with the role its email resolves to.
func (s *UserService) List(ctx context.Context, actor domain.Actor) ([]domain.AccountView, error) {
	if err := authorize(actor, domain.PermissionManageUsers); err != nil {
		return nil, err
	}
	accounts, err := withRetry(ctx, func(ctx context.Context) ([]domain.Account, error) {
		return s.accounts.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	views := make([]domain.AccountView, len(accounts))
	for i, a := range accounts {
		views[i] = domain.AccountView{Account: a, Role: s.resolver.RoleForEmail(a.Email)}
	}
	return views, nil
}

// Register creates an account. The role follows from the email address.
func (s *UserService) Register(ctx context.Context, actor domain.Actor, email, password string) (*domain.AccountView, error) {
	if err := authorize(actor, domain.PermissionManageUsers); err != nil {
		return nil, err
	}
	return s.create(ctx, email, password)
}

// Bootstrap creates an account without an acting admin. It backs the admin
// CLI.
func (s *UserService) Bootstrap(ctx context.Context, email, password string) (*domain.AccountView, error) {
	return s.create(ctx, email, password)
}

func (s *UserService) create(ctx context.Context, email, password string) (*domain.AccountView, error) {
	reg := registration{Email: strings.ToLower(strings.TrimSpace(email)), Password: password}
	if err := validateStruct(reg); err != nil {
		return nil, err
	}

	_, err := s.accounts.FindByEmail(ctx, reg.Email)
	switch {
	case err == nil:
		return nil, domain.NewValidationError(domain.KindInvalidRange, "email", "an account with this email already exists")
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	hash, err := HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}
	account := domain.Account{
		ID:           uuid.NewString(),
		Email:        reg.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := doRetry(ctx, func(ctx context.Context) error {
		return s.accounts.Create(ctx, account)
	}); err != nil {
		return nil, err
	}
	role := s.resolver.RoleForEmail(account.Email)
	s.logger.Info("account registered", zap.String("account_id", account.ID), zap.Stringer("role", role))
	return &domain.AccountView{Account: account, Role: role}, nil
}
