// Command attendance is a CLI client for the attendance service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/and161185/attendance-client/internal/app"
	"github.com/and161185/attendance-client/internal/config"
	"github.com/and161185/attendance-client/internal/notify"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func usage() {
	fmt.Fprintf(stderr, `attendance CLI
Usage:
  attendance [-api URL] [-store file|memory|postgres|redis] [-env file] <cmd> [args]

Commands:
  version
  login               -email <email> -password <password>
  register            -email <email> -password <password> [-role student|instructor]
  logout
  whoami
  open                <path>
  classes
  sessions            -class <id>
  students            -class <id>
  summary             -class <id>
  add-session         -class <id> -name <name> -date YYYY-MM-DD [-time HH:MM] [-duration min] [-description text]
  mark                -class <id> -session <id> -present <id,id,...>
  session-attendance  -class <id> -session <id>
  history             -class <id> -student <id>
`)
	os.Exit(2)
}

func fail(err error) {
	fmt.Fprintln(stderr, "error:", err)
	os.Exit(1)
}

// main loads configuration, wires the client and dispatches one subcommand.
func main() {
	apiURL := flag.String("api", "", "API base URL (overrides ATTENDANCE_API_URL)")
	store := flag.String("store", "", "state store (overrides ATTENDANCE_STORE)")
	envFile := flag.String("env", "", ".env file to load")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	if cmd == "version" {
		fmt.Fprintf(stdout, "attendance %s (%s)\n", version, buildDate)
		return
	}

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		fail(err)
	}
	if *apiURL != "" {
		cfg.APIBaseURL = *apiURL
	}
	if *store != "" {
		cfg.State.Store = *store
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fail(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		fail(err)
	}
	defer a.Close()
	printNotices(a.Notices, stderr)

	if err := run(ctx, a, cmd, flag.Args()[1:]); err != nil {
		a.Close()
		if errors.Is(err, errUnknownCommand) {
			usage()
		}
		fail(err)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg.Level = lvl
	return cfg.Build()
}

// printNotices mirrors the notification surface on w.
func printNotices(s *notify.Surface, w io.Writer) {
	s.Watch(func(m *notify.Message) {
		if m != nil {
			fmt.Fprintf(w, "[%s] %s\n", m.Kind, m.Text)
		}
	})
}
