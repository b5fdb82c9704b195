package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

const MinPasswordLength = 8

// DemoCredential signs in as a privileged role without an account. It only
// has an effect while DemoBypass.Enabled is set.
type DemoCredential struct {
	Email    string
	Password string
	Role     domain.Role
}

type DemoBypass struct {
	Enabled     bool
	Credentials []DemoCredential
}

type AuthService struct {
	accounts ports.AccountRepository
	sessions *SessionManager
	resolver *RoleResolver
	bypass   DemoBypass
	logger   *zap.Logger
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(
	accounts ports.AccountRepository,
	sessions *SessionManager,
	resolver *RoleResolver,
	bypass DemoBypass,
	logger *zap.Logger,
) *AuthService {
	if bypass.Enabled {
		valid := bypass.Credentials[:0:0]
		for _, c := range bypass.Credentials {
			if !resolver.ValidOverride(&domain.OverrideToken{Role: c.Role, Value: c.Email}) {
				logger.Error("ignoring demo credential that does not match its role convention",
					zap.String("email", c.Email), zap.Stringer("role", c.Role))
				continue
			}
			valid = append(valid, c)
		}
		bypass.Credentials = valid
		logger.Warn("demo sign-in bypass is enabled", zap.Int("credentials", len(valid)))
	}
	return &AuthService{
		accounts: accounts,
		sessions: sessions,
		resolver: resolver,
		bypass:   bypass,
		logger:   logger,
	}
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*ports.SignInResult, error) {
	email = strings.TrimSpace(email)
	if err := requireText("email", email); err != nil {
		return nil, err
	}
	if err := requireText("password", password); err != nil {
		return nil, err
	}

	if token, ok := s.matchBypass(email, password); ok {
		s.logger.Warn("demo bypass sign-in, account store skipped",
			zap.String("email", email), zap.Stringer("role", token.Role))
		state, err := s.sessions.Open(ctx, domain.Anonymous(), token)
		if err != nil {
			return nil, err
		}
		return &ports.SignInResult{Session: state, Role: s.resolver.ResolveState(state), Bypass: true}, nil
	}

	account, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("sign-in rejected", zap.String("email", email))
		return nil, domain.ErrInvalidCredentials
	}

	state, err := s.sessions.Open(ctx, domain.Authenticated(account.ID, account.Email), nil)
	if err != nil {
		return nil, err
	}
	role := s.resolver.ResolveState(state)
	s.logger.Info("signed in", zap.String("account_id", account.ID), zap.Stringer("role", role))
	return &ports.SignInResult{Session: state, Role: role}, nil
}

// SignOut clears principal and override together by deleting the record.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	return s.sessions.Close(ctx, sessionID)
}

func (s *AuthService) ChangePassword(ctx context.Context, state domain.SessionState, current, next, confirm string) error {
	if state.Principal.IsAnonymous() {
		return domain.NewError(domain.KindPermissionDenied, "session has no account", nil)
	}
	if err := requireText("current_password", current); err != nil {
		return err
	}
	if err := requireText("new_password", next); err != nil {
		return err
	}
	if next != confirm {
		return domain.NewValidationError(domain.KindInvalidRange, "confirm_password", "new passwords do not match")
	}
	if len(next) < MinPasswordLength {
		return domain.NewValidationError(domain.KindInvalidRange, "new_password", "password must be at least 8 characters long")
	}

	account, err := withRetry(ctx, func(ctx context.Context) (*domain.Account, error) {
		return s.accounts.FindByID(ctx, state.Principal.AccountID)
	})
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(current)); err != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	if err := doRetry(ctx, func(ctx context.Context) error {
		return s.accounts.UpdatePasswordHash(ctx, account.ID, hash)
	}); err != nil {
		return err
	}
	s.logger.Info("password changed", zap.String("account_id", account.ID))
	return nil
}

func (s *AuthService) matchBypass(email, password string) (*domain.OverrideToken, bool) {
	if !s.bypass.Enabled {
		return nil, false
	}
	for _, c := range s.bypass.Credentials {
		if strings.EqualFold(c.Email, email) && c.Password == password {
			return &domain.OverrideToken{Role: c.Role, Value: strings.ToLower(c.Email)}, true
		}
	}
	return nil, false
}

func (s *AuthService) lookup(ctx context.Context, email string) (*domain.Account, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, domain.ErrNotFound):
		s.logger.Info("sign-in for unknown email", zap.String("email", email))
		return nil, domain.ErrInvalidCredentials
	default:
		s.logger.Error("account store unavailable", zap.Error(err))
		return nil, domain.NewError(domain.KindAuthUnavailable, "account store unavailable", err)
	}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", domain.NewValidationError(domain.KindInvalidRange, "password", err.Error())
	}
	return string(hash), nil
}

// PasswordStrength scores a password from 0 to 4: one point each for length,
// an upper-case letter, a digit and a symbol.
func PasswordStrength(password string) int {
	var upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case r < 'a' || r > 'z':
			symbol = true
		}
	}
	score := 0
	if len(password) >= MinPasswordLength {
		score++
	}
	for _, ok := range []bool{upper, digit, symbol} {
		if ok {
			score++
		}
	}
	return score
}

var strengthLabels = [...]string{"Very Weak", "Weak", "Medium", "Strong", "Very Strong"}

func PasswordStrengthLabel(score int) string {
	if score < 0 || score >= len(strengthLabels) {
		return strengthLabels[0]
	}
	return strengthLabels[score]
}
