package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/attendance-client/internal/errs"
	"github.com/and161185/attendance-client/internal/limiter"
	"github.com/and161185/attendance-client/internal/model"
)

// Exchanger performs the identity exchange with the remote service.
type Exchanger interface {
	// Login posts credentials to the login endpoint.
	Login(ctx context.Context, req model.LoginRequest) (model.AuthPayload, error)
	// Register posts a new account to the registration endpoint.
	Register(ctx context.Context, req model.RegisterRequest) (model.AuthPayload, error)
}

// Authenticator adds login and registration on top of a Keeper.
type Authenticator struct {
	*Keeper
	idp Exchanger
	lim limiter.Limiter
}

// NewAuthenticator constructs an Authenticator. lim may be nil to disable lockout.
func NewAuthenticator(k *Keeper, idp Exchanger, lim limiter.Limiter) *Authenticator {
	return &Authenticator{Keeper: k, idp: idp, lim: lim}
}

// Login exchanges credentials and persists the resulting session.
// Exchange errors are returned unchanged.
func (a *Authenticator) Login(ctx context.Context, email, password string) (model.Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return model.Session{}, fmt.Errorf("empty email/password: %w", errs.ErrInvalidArgument)
	}
	if a.lim != nil {
		allowed, retry, err := a.lim.Allow(ctx, email)
		if err != nil {
			return model.Session{}, err
		}
		if !allowed {
			a.log.Info("login locked", zap.Duration("retry_after", retry))
			return model.Session{}, errs.ErrRateLimited
		}
	}

	res, err := a.idp.Login(ctx, model.LoginRequest{Email: email, Password: password})
	if err != nil {
		if a.lim != nil && errors.Is(err, errs.ErrUnauthorized) {
			if blocked, _, ferr := a.lim.Failure(ctx, email); ferr == nil && blocked {
				a.log.Info("login locked after repeated failures")
			}
		}
		return model.Session{}, err
	}
	if a.lim != nil {
		_ = a.lim.Success(ctx, email)
	}
	return a.Save(ctx, res)
}

// Register creates an account and persists the resulting session.
// The role is passed through as given.
func (a *Authenticator) Register(ctx context.Context, email, password, role string) (model.Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return model.Session{}, fmt.Errorf("empty email/password: %w", errs.ErrInvalidArgument)
	}
	res, err := a.idp.Register(ctx, model.RegisterRequest{Email: email, Password: password, Role: role})
	if err != nil {
		return model.Session{}, err
	}
	return a.Save(ctx, res)
}
