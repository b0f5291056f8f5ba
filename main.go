package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/loomstack/loom/app"
	"github.com/loomstack/loom/framework/config"
	"github.com/loomstack/loom/framework/container"
	"github.com/loomstack/loom/routing"
)

func main() {
	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	application, err := app.New()
	if err != nil {
		log.Fatal("application setup failed", zap.Error(err))
	}

	// Eager boot: every provider started, every key resolved. Any wiring
	// or registration mistake aborts here, before the listener opens.
	if err := application.BootAll(); err != nil {
		log.Fatal("boot failed", zap.Error(err))
	}

	root := application.Root()
	settings, err := container.ResolveAs[*config.Settings](root, "settings")
	if err != nil {
		log.Fatal("settings missing", zap.Error(err))
	}

	cdn, _ := application.Slice("cdn")
	admin, _ := application.Slice("admin")

	r := routing.New()
	r.Middleware(routing.RequestLogger(log))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Prefix("/cache", func(cache *routing.Router) {
		cache.Put("/{path}", func(w http.ResponseWriter, req *http.Request) {
			store, err := container.ResolveAs[*app.Store](cdn, "main.db.conn")
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			store.Put(routing.Param(req, "path"), "cached")
			w.WriteHeader(http.StatusNoContent)
		})
	})

	r.Prefix("/admin", func(adminRoutes *routing.Router) {
		adminRoutes.Post("/purge/{path}", func(w http.ResponseWriter, req *http.Request) {
			dashboard, err := container.ResolveAs[*app.Dashboard](admin, "dashboard")
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if dashboard.PurgePath(routing.Param(req, "path")) {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		})
	})

	server := &http.Server{
		Addr:         ":" + settings.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server listening",
			zap.String("addr", server.Addr),
			zap.String("env", settings.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	if err := application.ShutdownAll(); err != nil {
		log.Error("provider shutdown failed", zap.Error(err))
	}
	log.Info("stopped")
}
