package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/goderiv"
)

// newHandler builds the route table:
//
//	POST /tool   — execute a tool call
//	GET  /schema — tool schema for agent registration
//	GET  /health — liveness check
func newHandler(cfg *Config, logger *zap.Logger) http.Handler {
	limits := goderiv.ToolLimits{MaxSize: cfg.MaxTermSize, MaxOrder: cfg.MaxOrder}
	mux := http.NewServeMux()

	mux.HandleFunc("/tool", func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		log := logger.With(zap.String("request_id", reqID))
		start := time.Now()
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic in /tool", zap.Any("panic", rec), zap.ByteString("stack", debug.Stack()))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxBodyBytes)
		defer r.Body.Close()

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req goderiv.ToolRequest
		if err := dec.Decode(&req); err != nil {
			log.Debug("rejected tool request", zap.Error(err))
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		// Ensure there's no trailing junk.
		if dec.More() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: trailing data"})
			return
		}

		resp := goderiv.HandleToolCallWithLimits(req, limits)
		fields := []zap.Field{zap.String("tool", req.Tool), zap.Duration("elapsed", time.Since(start))}
		if resp.Error != "" {
			log.Info("tool call failed", append(fields, zap.String("error", resp.Error))...)
		} else {
			log.Info("tool call", fields...)
		}
		w.Header().Set("X-Request-Id", reqID)
		writeJSON(w, http.StatusOK, resp)
	})

	mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, goderiv.MCPToolSpec())
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("goderiv MCP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newServer(cfg *Config, logger *zap.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(cfg, logger),
		ReadHeaderTimeout: cfg.duration(cfg.ReadHeaderTimeout),
		ReadTimeout:       cfg.duration(cfg.ReadTimeout),
		WriteTimeout:      cfg.duration(cfg.WriteTimeout),
		IdleTimeout:       cfg.duration(cfg.IdleTimeout),
	}
}
