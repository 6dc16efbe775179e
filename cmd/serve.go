package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/answer-engine/internal/metrics"
	"github.com/sells-group/answer-engine/internal/model"
	"github.com/sells-group/answer-engine/internal/pipeline"
)

var servePort int

// answerRunner is the pipeline surface the HTTP handlers consume.
type answerRunner interface {
	Run(ctx context.Context, req model.AnswerRequest) (*model.AnswerResponse, error)
}

// metricsSource exposes the recorded metrics snapshot.
type metricsSource interface {
	Snapshot() []metrics.Metric
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP answer server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEngine("serve")
		if err != nil {
			return err
		}
		defer env.Close()

		router := buildRouter(env.Pipeline, env.Recorder, cfg.Server.AllowedOrigins)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}

		// Graceful shutdown. Shutdown drains in-flight handlers, so
		// env.Close must not run until it has finished.
		shutdownDone := make(chan struct{})
		go func() {
			defer close(shutdownDone)
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		err = srv.ListenAndServe()
		stop()
		<-shutdownDone
		if err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// buildRouter wires the HTTP routes. Split out so handler tests can
// drive it without a listening server.
func buildRouter(runner answerRunner, source metricsSource, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		snapshot := []metrics.Metric{}
		if source != nil {
			snapshot = source.Snapshot()
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count":   len(snapshot),
			"metrics": snapshot,
		})
	})

	r.Post("/v1/answer", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Query   string   `json:"query"`
			Intent  string   `json:"intent"`
			Context []string `json:"context"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		resp, err := runner.Run(req.Context(), model.AnswerRequest{
			Query:   body.Query,
			Intent:  model.Intent(body.Intent),
			Context: body.Context,
		})
		if err != nil {
			if errors.Is(err, pipeline.ErrInvalidQuery) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query must be between 1 and 500 characters"})
				return
			}
			zap.L().Error("answer request failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}

		writeJSON(w, http.StatusOK, resp)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
