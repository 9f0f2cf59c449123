package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mealscope/enrich-cli/internal/backfill"
	"github.com/mealscope/enrich-cli/internal/detect"
	"github.com/mealscope/enrich-cli/internal/provider"
	"github.com/mealscope/enrich-cli/internal/store"
)

const maxUploadBytes = 20 << 20

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the enrichment HTTP server",
	Long:  "Exposes the backfill and image-analysis operations over HTTP for invocation by schedulers and client apps.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		embedder, err := provider.NewEmbedder(cfg)
		if err != nil {
			return err
		}
		extractor, err := provider.NewExtractor(cfg)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           newRouter(st, embedder, extractor),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("serve: listening", zap.Int("port", cfg.Server.Port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		zap.L().Info("serve: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func newRouter(st store.Store, embedder provider.Embedder, extractor provider.Extractor) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/v1/backfill", handleBackfill(st, embedder))
	r.Post("/v1/analyze", handleAnalyze(st, extractor))

	return r
}

func handleBackfill(st store.Store, embedder provider.Embedder) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		maxProcess := parseMaxProcess(req.URL.Query().Get("max_process"))

		job := backfill.NewJob(st, embedder, cfg)
		progress, err := job.Run(req.Context(), maxProcess)
		if err != nil {
			zap.L().Error("serve: backfill failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, progress)
	}
}

func handleAnalyze(st store.Store, extractor provider.Extractor) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "expected multipart form with an image field"})
			return
		}

		file, header, err := req.FormFile("image")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing image field"})
			return
		}
		defer file.Close()

		image, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read image"})
			return
		}

		mime := header.Header.Get("Content-Type")
		if mime == "" {
			mime = http.DetectContentType(image)
		}

		analyzer := detect.NewAnalyzer(st, extractor, cfg)
		result, err := analyzer.Analyze(req.Context(), image, mime)
		if err != nil {
			zap.L().Error("serve: analyze failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// parseMaxProcess reads the optional max_process query value. Missing or
// invalid values fall back to the configured default so a malformed request
// still runs a normal-sized batch.
func parseMaxProcess(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		zap.L().Warn("serve: invalid max_process, using default", zap.String("value", raw))
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("serve: write response", zap.Error(err))
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
