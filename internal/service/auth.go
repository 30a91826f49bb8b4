package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/inventory/internal/hash"
	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/repo"
	"github.com/Skotchmaster/inventory/internal/tokens"
)

const maxIdentityLen = 64

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *tokens.Issuer
	Events Publisher
}

// PublicAccount is the non-secret view of an account.
type PublicAccount struct {
	ID       uuid.UUID `json:"id"`
	Identity string    `json:"identity"`
	Role     string    `json:"role,omitempty"`
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   PublicAccount
}

func publicView(a *models.Account) PublicAccount {
	return PublicAccount{ID: a.ID, Identity: a.Identity, Role: a.Role}
}

func validateCredentials(identity, password string) error {
	switch {
	case identity == "":
		return fmt.Errorf("%w: identity is required", ErrValidation)
	case len(identity) > maxIdentityLen:
		return fmt.Errorf("%w: identity longer than %d characters", ErrValidation, maxIdentityLen)
	case strings.TrimSpace(password) == "":
		return fmt.Errorf("%w: password is required", ErrValidation)
	case len(password) > hash.MaxPasswordBytes:
		return fmt.Errorf("%w: password longer than %d bytes", ErrValidation, hash.MaxPasswordBytes)
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, identity, password string) (PublicAccount, error) {
	identity = repo.NormalizeIdentity(identity)
	l := logging.FromContext(ctx).With("svc", "auth.register", "identity", identity)

	if err := validateCredentials(identity, password); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid credentials shape", "error", err)
		return PublicAccount{}, err
	}

	exists, err := s.Repo.IdentityExists(ctx, identity)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot check identity", "error", err)
		return PublicAccount{}, err
	}
	if exists {
		l.Warn("register_error", "status", 400, "reason", "identity already taken")
		return PublicAccount{}, ErrDuplicateIdentity
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return PublicAccount{}, err
	}

	account := models.Account{
		Identity:     identity,
		PasswordHash: pwHash,
		Role:         models.DefaultRole,
	}
	if err := s.Repo.CreateAccount(ctx, &account); err != nil {
		if errors.Is(err, repo.ErrDuplicateIdentity) {
			l.Warn("register_error", "status", 400, "reason", "identity already taken")
			return PublicAccount{}, ErrDuplicateIdentity
		}
		l.Error("register_error", "status", 500, "reason", "cannot create account", "error", err)
		return PublicAccount{}, err
	}

	publish(ctx, s.Events, TopicAccountEvents, account.ID.String(), map[string]any{
		"type":      "account_registered",
		"accountID": account.ID,
		"identity":  account.Identity,
	})

	l.Info("register_success", "account_id", account.ID)
	return publicView(&account), nil
}

// Login answers ErrInvalidCredentials for an unknown identity and for a wrong
// password alike, and spends one bcrypt comparison in both cases.
func (s *AuthService) Login(ctx context.Context, identity, password string) (*LoginResult, error) {
	identity = repo.NormalizeIdentity(identity)
	l := logging.FromContext(ctx).With("svc", "auth.login", "identity", identity)

	account, err := s.Repo.FindByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			hash.CheckDummy(password)
			l.Warn("login_failed", "status", 401, "reason", "invalid identity or password")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "reason", "cannot load account", "error", err)
		return nil, err
	}

	if !hash.CheckPassword(account.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid identity or password")
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.Tokens.Issue(account.ID, account.Identity)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot issue token", "error", err)
		return nil, err
	}

	publish(ctx, s.Events, TopicAccountEvents, account.ID.String(), map[string]any{
		"type":      "account_logged_in",
		"accountID": account.ID,
	})

	l.Info("login_success", "account_id", account.ID)
	return &LoginResult{
		Token:     token,
		ExpiresAt: exp,
		Account:   publicView(account),
	}, nil
}
