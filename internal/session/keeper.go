// Package session keeps the signed-in state of the client: the bearer
// credential, the role and the user profile, plus the login/registration
// exchange that produces them.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/attendance-client/internal/errs"
	"github.com/and161185/attendance-client/internal/model"
	"github.com/and161185/attendance-client/internal/storage"
)

// Keeper reads and writes session state and detects credential expiry.
// It never talks to the network.
type Keeper struct {
	store storage.Store
	log   *zap.Logger
	now   func() time.Time
}

// Option configures a Keeper.
type Option func(*Keeper)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(k *Keeper) { k.now = now }
}

// NewKeeper constructs a Keeper over store. A nil logger disables logging.
func NewKeeper(store storage.Store, log *zap.Logger, opts ...Option) *Keeper {
	if log == nil {
		log = zap.NewNop()
	}
	k := &Keeper{store: store, log: log, now: time.Now}
	for _, o := range opts {
		o(k)
	}
	return k
}

// Token returns the stored credential. An expired credential purges the
// whole session and reads as absent.
func (k *Keeper) Token(ctx context.Context) (string, bool) {
	tok, ok := k.read(ctx, storage.KeyAccessToken)
	if !ok {
		return "", false
	}
	if expired(tok, k.now()) {
		k.log.Info("session expired")
		k.Logout(ctx)
		return "", false
	}
	return tok, true
}

// Role returns the stored role string.
func (k *Keeper) Role(ctx context.Context) (string, bool) {
	return k.read(ctx, storage.KeyRole)
}

// User returns the stored profile. An unparsable entry is removed.
func (k *Keeper) User(ctx context.Context) (Profile, bool) {
	return DecodeUser[Profile](ctx, k)
}

// DecodeUser decodes the stored profile into T. Invalid JSON is purged;
// a JSON null, or valid JSON that does not fit T, reads as absent and is kept.
func DecodeUser[T any](ctx context.Context, k *Keeper) (T, bool) {
	var out T
	raw, ok := k.read(ctx, storage.KeyUser)
	if !ok {
		return out, false
	}
	if !json.Valid([]byte(raw)) {
		k.log.Warn("dropping corrupt user entry")
		k.remove(ctx, storage.KeyUser)
		return out, false
	}
	if strings.TrimSpace(raw) == "null" {
		return out, false
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		k.log.Debug("user entry does not fit target type", zap.Error(err))
		var zero T
		return zero, false
	}
	return out, true
}

// Logout removes credential, role and profile. It is idempotent and never fails;
// storage errors are logged.
func (k *Keeper) Logout(ctx context.Context) {
	for _, key := range []string{storage.KeyAccessToken, storage.KeyRole, storage.KeyUser} {
		k.remove(ctx, key)
	}
}

// Save persists what an identity response carries and returns the resulting session.
// Fields missing from res leave the stored values untouched.
func (k *Keeper) Save(ctx context.Context, res model.AuthPayload) (model.Session, error) {
	var s model.Session
	if res == nil {
		return s, nil
	}
	if tok, _ := res["accessToken"].(string); tok != "" {
		if err := k.store.Set(ctx, storage.KeyAccessToken, tok); err != nil {
			return s, err
		}
		s.AccessToken = tok
	}
	if role, _ := res["role"].(string); role != "" {
		if err := k.store.Set(ctx, storage.KeyRole, role); err != nil {
			return s, err
		}
		s.Role = role
	}
	if p, ok := resolveProfile(res); ok {
		b, err := json.Marshal(p)
		if err != nil {
			return s, err
		}
		if err := k.store.Set(ctx, storage.KeyUser, string(b)); err != nil {
			return s, err
		}
		s.User = p
	}
	return s, nil
}

func (k *Keeper) read(ctx context.Context, key string) (string, bool) {
	v, err := k.store.Get(ctx, key)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
		case errors.Is(err, errs.ErrCorrupt):
			k.log.Warn("dropping unreadable state entry", zap.String("key", key), zap.Error(err))
			k.remove(ctx, key)
		default:
			k.log.Warn("state read failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return v, v != ""
}

func (k *Keeper) remove(ctx context.Context, key string) {
	if err := k.store.Remove(ctx, key); err != nil {
		k.log.Warn("state remove failed", zap.String("key", key), zap.Error(err))
	}
}
