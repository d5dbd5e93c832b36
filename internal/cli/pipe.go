package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/harun/vaslog/internal/config"
	"github.com/harun/vaslog/internal/logger"
	"github.com/harun/vaslog/internal/metrics"
	"github.com/harun/vaslog/internal/tracing"
)

const shutdownTimeout = 5 * time.Second

var (
	pipeTarget string
	pipeJSON   bool
)

var pipeCmd = &cobra.Command{
	Use:   "pipe",
	Short: "Append every stdin line as a record",
	Long: `Read lines from stdin and append each one as a record to the log
target. SIGHUP reopens the target, SIGINT, SIGTERM or end of input close it.
With --json every line becomes a JSON record tagged with the run and trace
IDs of this pipe.`,
	Args: cobra.NoArgs,
	RunE: runPipe,
}

func init() {
	pipeCmd.Flags().StringVarP(&pipeTarget, "target", "t", "", "log target (file path, stderr, stdout, syslog, none)")
	pipeCmd.Flags().BoolVar(&pipeJSON, "json", false, "write structured JSON records")
	rootCmd.AddCommand(pipeCmd)
}

func runPipe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, pipeTarget)
	if err != nil {
		return err
	}

	m := metrics.NewMetrics()
	l, diag, err := newLogger(cmd, cfg, m)
	if err != nil {
		return err
	}

	ctx := tracing.WithRunID(tracing.NewRequestContext(cmd.Context()), tracing.NewRunID())
	diag = tracing.Annotate(ctx, diag.With()).Logger()

	if err := l.Init(cfg.Logging.Target); err != nil {
		return err
	}
	diag.Info().Str("target", cfg.Logging.Target).Bool("json", pipeJSON).Msg("Pipe started")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	if cfg.Metrics.Enabled {
		srv := serveMetrics(cfg.Metrics, newRouter(m, l), diag)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				diag.Warn().Err(err).Msg("Failed to stop metrics server")
			}
		}()
	}

	done := make(chan struct{})
	defer close(done)
	lines := readLines(cmd.InOrStdin(), done)

	pipeErr := pump(ctx, l, lines, hup, diag, lineWriter(ctx, l, pipeJSON))

	if err := l.Close(); err != nil {
		return errors.Join(pipeErr, fmt.Errorf("failed to close log: %w", err))
	}
	return pipeErr
}

// lineWriter returns how one input line is recorded: as a plain record, or
// as a structured record carrying the IDs in ctx.
func lineWriter(ctx context.Context, l *logger.Logger, structured bool) func(string) {
	if !structured {
		return func(line string) { l.Writef("%s", line) }
	}

	events := l.StructuredContext(ctx)
	return func(line string) { events.Info().Msg(line) }
}

// pump writes lines until input ends or ctx is cancelled.
func pump(ctx context.Context, l *logger.Logger, lines <-chan lineOrErr, hup <-chan os.Signal, diag zerolog.Logger, write func(string)) error {
	for {
		select {
		case <-ctx.Done():
			diag.Info().Msg("Interrupted, closing log")
			return nil

		case <-hup:
			if err := l.Reopen(); err != nil {
				diag.Error().Err(err).Msg("Failed to reopen log target")
			}

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if line.err != nil {
				return fmt.Errorf("failed to read input: %w", line.err)
			}
			write(line.text)
		}
	}
}

type lineOrErr struct {
	text string
	err  error
}

// readLines scans r until it ends or done is closed.
func readLines(r io.Reader, done <-chan struct{}) <-chan lineOrErr {
	out := make(chan lineOrErr)

	send := func(line lineOrErr) bool {
		select {
		case out <- line:
			return true
		case <-done:
			return false
		}
	}

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			if !send(lineOrErr{text: scanner.Text()}) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			send(lineOrErr{err: err})
		}
	}()

	return out
}

// newRouter exposes the Prometheus collectors and a health endpoint that
// reports the current session.
func newRouter(m *metrics.Metrics, l *logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", m.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		stats := l.Stats()

		w.Header().Set("Content-Type", "application/json")
		if !stats.Open {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	return r
}

func serveMetrics(cfg config.MetricsConfig, handler http.Handler, diag zerolog.Logger) *http.Server {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		diag.Info().Str("addr", cfg.Addr).Msg("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			diag.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	return srv
}
