package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rfpdesk.io/internal/account"
	"rfpdesk.io/internal/content"
	"rfpdesk.io/internal/document"
	"rfpdesk.io/internal/httpapi"
	"rfpdesk.io/internal/obs"
	"rfpdesk.io/internal/response"
	"rfpdesk.io/internal/store/pg"
	"rfpdesk.io/internal/stream"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	// Persistent stores when a DSN is configured, in-memory otherwise.
	var (
		db            *sql.DB
		accountStore  account.Store
		documentStore document.Store
		responseStore response.Store
		contentStore  content.Store
	)
	if dsn := os.Getenv("RFPDESK_PG_DSN"); dsn != "" {
		store, err := pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db = store.DB()
		accountStore = account.NewPGStore(db)
		documentStore = document.NewPGStore(db)
		responseStore = response.NewPGStore(db)
		contentStore = content.NewPGStore(db)
	} else {
		log.Println("RFPDESK_PG_DSN not set; using in-memory stores")
		accountStore = account.NewInMemory()
		documentStore = document.NewInMemory()
		responseStore = response.NewInMemory()
		contentStore = content.NewInMemory()
	}

	hub := stream.New()

	accounts := account.NewService(accountStore,
		account.WithSessionTTL(envDuration("RFPDESK_SESSION_TTL", 7*24*time.Hour)))
	documents := document.NewService(documentStore, document.WithEvents(hub))
	responses := response.NewService(responseStore, response.WithEvents(hub))
	contents := content.NewService(contentStore)

	api := httpapi.New(httpapi.Deps{
		Accounts:  accounts,
		Documents: documents,
		Responses: responses,
		Content:   contents,
		Stream:    hub,
		Ready:     httpapi.ReadyProbe{DB: db},
		Version:   version,
	})

	addr := os.Getenv("RFPDESK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Periodic sweep for expired sessions.
	reapCtx, stopReaper := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-reapCtx.Done():
				return
			case <-ticker.C:
				if n, err := accounts.ReapSessions(reapCtx); err != nil {
					log.Printf("session reap: %v", err)
				} else if n > 0 {
					log.Printf("session reap: removed %d", n)
				}
			}
		}
	}()

	log.Printf("Starting rfpdesk-api %s on %s", version, srv.Addr)

	// graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	stopReaper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}

func envDuration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", key, raw, def)
		return def
	}
	return d
}
