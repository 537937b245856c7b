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

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"modaccess.io/internal/access"
	"modaccess.io/internal/catalog"
	"modaccess.io/internal/directory"
	"modaccess.io/internal/httpapi"
	"modaccess.io/internal/obs"
	"modaccess.io/internal/store/pg"
	"modaccess.io/internal/vault"
)

var version = "0.3.0"

func main() {
	_ = godotenv.Load()
	obs.Init()

	var db *sql.DB
	if dsn := os.Getenv("MODACCESS_PG_DSN"); dsn != "" {
		var err error
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	var store access.Store
	if db != nil {
		pgStore, err := pg.New(db)
		if err != nil {
			log.Fatalf("pg store: %v", err)
		}
		store = pgStore
	} else {
		store = access.NewMemoryStore()
	}

	members := directory.NewService()
	modules := catalog.New(catalog.DefaultModules)
	credentials := vault.New()

	core, err := access.NewService(store, credentials, members, modules)
	if err != nil {
		log.Fatalf("access service: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := core.EnsureBuiltins(ctx); err != nil {
		cancel()
		log.Fatalf("seed builtin roles: %v", err)
	}
	cancel()

	api := httpapi.New(core, members, modules, httpapi.ReadyProbe{DB: db}, version)

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting modaccess-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
