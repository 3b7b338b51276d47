// Package app builds the client's services once and wires them together.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/and161185/attendance-client/internal/api"
	"github.com/and161185/attendance-client/internal/busy"
	"github.com/and161185/attendance-client/internal/config"
	"github.com/and161185/attendance-client/internal/guard"
	"github.com/and161185/attendance-client/internal/limiter"
	"github.com/and161185/attendance-client/internal/migrate"
	"github.com/and161185/attendance-client/internal/notify"
	"github.com/and161185/attendance-client/internal/pipeline"
	"github.com/and161185/attendance-client/internal/router"
	"github.com/and161185/attendance-client/internal/service"
	"github.com/and161185/attendance-client/internal/session"
	"github.com/and161185/attendance-client/internal/storage"
	"github.com/and161185/attendance-client/internal/storage/postgres"
	"github.com/and161185/attendance-client/internal/storage/redisstore"
)

var (
	_ session.Exchanger  = (*api.Client)(nil)
	_ service.Backend    = (*api.Client)(nil)
	_ service.Identity   = (*session.Keeper)(nil)
	_ guard.TokenSource  = (*session.Keeper)(nil)
	_ pipeline.Sessions  = (*session.Keeper)(nil)
	_ pipeline.Navigator = (*router.Router)(nil)
)

// App holds one instance of every client service.
type App struct {
	Config     config.Config
	Log        *zap.Logger
	Store      storage.Store
	Notices    *notify.Surface
	Busy       *busy.Counter
	Sessions   *session.Authenticator
	Guard      *guard.Guard
	Router     *router.Router
	API        *api.Client
	Attendance service.AttendanceService

	closers []func()
}

type options struct {
	store     storage.Store
	transport http.RoundTripper
	notify    []notify.Option
	session   []session.Option
}

// Option customises New.
type Option func(*options)

// WithStore bypasses store selection from config.
func WithStore(st storage.Store) Option { return func(o *options) { o.store = st } }

// WithTransport sets the transport under the request pipeline.
func WithTransport(rt http.RoundTripper) Option { return func(o *options) { o.transport = rt } }

// WithNotifyOptions passes options to the notification surface.
func WithNotifyOptions(opts ...notify.Option) Option {
	return func(o *options) { o.notify = append(o.notify, opts...) }
}

// WithSessionOptions passes options to the session keeper.
func WithSessionOptions(opts ...session.Option) Option {
	return func(o *options) { o.session = append(o.session, opts...) }
}

// New wires the application. Call Close when done.
func New(ctx context.Context, cfg config.Config, log *zap.Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	a := &App{Config: cfg, Log: log}
	st := o.store
	if st == nil {
		var err error
		st, err = a.openStore(ctx, cfg.State)
		if err != nil {
			a.Close()
			return nil, err
		}
	}
	a.Store = st

	a.Notices = notify.New(append([]notify.Option{notify.WithDuration(cfg.UI.NoticeDuration)}, o.notify...)...)
	a.Busy = busy.New()
	a.Busy.OnChange(func(b bool) { log.Debug("busy", zap.Bool("busy", b)) })

	keeper := session.NewKeeper(st, log, o.session...)
	a.Guard = guard.New(keeper, a.Notices)
	a.Router = router.New(a.Guard.Middleware, log)

	var lim *rate.Limiter
	if cfg.HTTP.RateLimit > 0 {
		lim = rate.NewLimiter(rate.Limit(cfg.HTTP.RateLimit), max(cfg.HTTP.RateBurst, 1))
	}
	transport := pipeline.New(o.transport, pipeline.Deps{
		Sessions:  keeper,
		Busy:      a.Busy,
		Notices:   a.Notices,
		Navigator: a.Router,
		Limiter:   lim,
		Log:       log,
	})
	a.API = api.New(cfg.APIBaseURL, &http.Client{Transport: transport, Timeout: cfg.HTTP.Timeout})

	a.Sessions = session.NewAuthenticator(keeper, a.API, limiter.NewMemory(cfg.Login.Window, cfg.Login.MaxFails, cfg.Login.BlockFor))
	a.Attendance = service.NewAttendanceService(a.API, keeper, cfg.UI.DefaultSessionDuration, log)
	return a, nil
}

// Close releases store connections. It is safe to call more than once.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) openStore(ctx context.Context, cfg config.StateConfig) (storage.Store, error) {
	var st storage.Store
	switch cfg.Store {
	case config.StoreMemory:
		st = storage.NewMemory()
	case config.StoreFile, "":
		dir := cfg.Dir
		if dir == "" {
			dir = storage.DefaultDir()
		}
		st = storage.NewFile(dir)
	case config.StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("postgres store: DATABASE_URL is empty")
		}
		if err := migrate.Up(ctx, cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("migrate up: %w", err)
		}
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres store: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		st = postgres.NewStore(db, cfg.Namespace)
	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		st = redisstore.New(rdb, cfg.Namespace)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	if cfg.Passphrase == "" {
		return st, nil
	}
	sealed, err := storage.OpenSealed(ctx, st, cfg.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("seal state: %w", err)
	}
	return sealed, nil
}
