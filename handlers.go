package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"ocall/internal/view"
)

const (
	cacheControlValue = "no-store, no-cache, must-revalidate, max-age=0"
	pragmaValue       = "no-cache"
	expiresValue      = "0"
)

func serveLogin(w http.ResponseWriter) {
	setNoCacheHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.RenderLogin(w); err != nil {
		log.Printf("failed to write login page: %v", err)
	}
}

func setNoCacheHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", cacheControlValue)
	w.Header().Set("Pragma", pragmaValue)
	w.Header().Set("Expires", expiresValue)
}

func handleLoginGet(w http.ResponseWriter, r *http.Request) {
	serveLogin(w)
}

const healthPingTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

// healthHandler answers ok while db (when set) is reachable.
func healthHandler(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, "ok\n"
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				log.Printf("health check failed: err=%v", err)
				status, body = http.StatusServiceUnavailable, "unavailable\n"
			}
		}
		setNoCacheHeaders(w)
		w.WriteHeader(status)
		if _, err := w.Write([]byte(body)); err != nil {
			log.Printf("failed to write health response: %v", err)
		}
	}
}
