package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	perrors "github.com/pumldock/pumldock/pkg/errors"
	"github.com/pumldock/pumldock/pkg/pipeline"
)

// DefaultWatchInterval is the delay between two documentation passes.
const DefaultWatchInterval = 30 * time.Second

// watchCommand creates the watch command repeating the documentation pass.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		f        passFlags
		interval time.Duration
		serve    string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Repeat the documentation pass on a fixed interval",
		Long: `Run the documentation pass repeatedly until interrupted.

The first pass starts immediately, further passes follow on the given
interval. A failing pass is logged and does not stop the watch; the next
interval simply tries again.

With --serve an HTTP server additionally exposes the outcome of the most
recent pass under /api/status and the exported images under /images/,
which is handy while editing diagrams next to a local PlantUML server.

Examples:
  pumldock watch                         # pass every 30s
  pumldock watch -i 10s --export         # faster passes with image export
  pumldock watch --serve :8080 --export  # browse images on localhost:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			opts, err := buildOptions(cmd, &f, logger)
			if err != nil {
				return err
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			if interval <= 0 {
				return perrors.New(perrors.ErrCodeInvalidConfig, "watch interval must be positive, got %s", interval)
			}
			return c.runWatch(cmd.Context(), opts, interval, serve)
		},
	}

	addPassFlags(cmd, &f)
	cmd.Flags().DurationVarP(&interval, "interval", "i", DefaultWatchInterval, "delay between two passes")
	cmd.Flags().StringVar(&serve, "serve", "", "serve pass status and exported images on this address (e.g. :8080)")
	return cmd
}

// runWatch executes documentation passes until ctx is cancelled.
func (c *CLI) runWatch(ctx context.Context, opts pipeline.Options, interval time.Duration, serve string) error {
	logger := opts.Logger
	status := &watchStatus{}

	if serve != "" {
		srv := newStatusServer(serve, status, opts.OutputDir)
		go func() {
			logger.Info("status server listening", "addr", serve)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("status server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	printInfo("Watching %s every %s", StyleHighlight.Render(opts.Root), interval)
	if serve != "" {
		printDetail("status on http://%s/api/status", displayAddr(serve))
	}

	runner := pipeline.NewRunner(logger)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	passes := 0
	for {
		passes++
		id := uuid.NewString()[:8]
		passOpts := opts
		passOpts.Logger = logger.With("pass", id)

		prog := newProgress(passOpts.Logger)
		result, err := runner.Execute(ctx, passOpts)
		payload := statusPayload{Pass: id, Time: time.Now(), Passes: passes}
		if err != nil {
			// Cancellation surfaces as a failed pass; exit instead of logging it.
			if ctx.Err() != nil {
				return ctx.Err()
			}
			passOpts.Logger.Error("documentation pass failed", "error", perrors.UserMessage(err))
			payload.Error = err.Error()
		} else {
			payload.Stats = result.Stats
			prog.done(fmt.Sprintf("Pass complete: %d diagrams, %d documents rewritten",
				result.Stats.DiagramCount, result.Stats.RewrittenCount))
		}
		status.record(payload)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// watchStatus holds the outcome of the most recent pass for the status API.
type watchStatus struct {
	mu   sync.Mutex
	last statusPayload
}

// statusPayload is the JSON body served on /api/status.
type statusPayload struct {
	Pass   string         `json:"pass"`
	Time   time.Time      `json:"time"`
	Passes int            `json:"passes"`
	Stats  pipeline.Stats `json:"stats"`
	Error  string         `json:"error,omitempty"`
}

func (w *watchStatus) record(p statusPayload) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = p
}

func (w *watchStatus) snapshot() statusPayload {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// newStatusServer builds the HTTP server exposing watch state: the latest
// pass outcome under /api/status and exported images under /images/.
func newStatusServer(addr string, status *watchStatus, imageDir string) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/status", func(w http.ResponseWriter, req *http.Request) {
		body, err := json.Marshal(status.snapshot())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})
	r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(imageDir))))

	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// displayAddr turns a listen address into something clickable in a terminal.
func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}
