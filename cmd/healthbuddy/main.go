package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/healthbuddy/backend/internal/app"
	"github.com/healthbuddy/backend/internal/infrastructure/observability"
	"github.com/healthbuddy/backend/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !Reported(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Services for end-to-end testing. Built from configuration when nil.
	Finder    Finder
	Predictor Predictor
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("healthbuddy"),
		kong.Description("Find doctors for a set of symptoms near a location."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'healthbuddy --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if m.Finder == nil || m.Predictor == nil {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		// Logs go to stderr so stdout stays valid JSON
		observability.InitLogger(cfg.OTEL.ServiceName, "cli")
		observability.RedirectLogger(stderr)

		svcs := app.NewServices(ctx, cfg)
		if m.Finder == nil {
			m.Finder = svcs.Finder
		}
		if m.Predictor == nil {
			m.Predictor = svcs.Prediction
		}
	}
	deps.Finder = m.Finder
	deps.Predictor = m.Predictor

	return kongCtx.Run(deps)
}
