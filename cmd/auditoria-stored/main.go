package main

import (
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/celerix-dev/auditoria/internal/admin"
	"github.com/celerix-dev/auditoria/internal/engine"
	"github.com/celerix-dev/auditoria/internal/platform/config"
	"github.com/celerix-dev/auditoria/internal/platform/logger"
	"github.com/celerix-dev/auditoria/internal/server"
	"github.com/celerix-dev/auditoria/internal/vault"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	flag.Parse()

	// 1. Configuration and logging
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.New(config.Default().Log).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log).With("component", "stored")
	log.Info("starting auditoria document store daemon")

	// 2. Initialize Persistence
	persister, err := engine.NewPersistence(filepath.Join(cfg.DataDir, "docs"), log)
	if err != nil {
		log.Error("failed to initialize persistence", "error", err)
		os.Exit(1)
	}

	// 3. Load existing data and start the Engine
	initialData, err := persister.LoadAll()
	if err != nil {
		log.Warn("could not load existing data", "error", err)
	}
	store := engine.NewMemStore(initialData, persister)
	log.Info("engine started", "collections", len(initialData))

	// 4. Seed the admin allow-list from the bundled file on first start
	if emails, err := admin.ReadFile(cfg.AdminEmailsFile); err != nil {
		log.Warn("admin emails file unavailable, not seeding", "path", cfg.AdminEmailsFile, "error", err)
	} else if wrote, err := admin.Seed(store, cfg.ConfigCollection, emails); err != nil {
		log.Error("seed admin config", "error", err)
	} else if wrote {
		log.Info("admin config seeded", "emails", len(emails))
	}

	// 5. Initialize the TCP Router
	router := server.NewRouter(store)
	router.SetLogger(log)

	// 6. Setup TLS
	if !cfg.DisableTLS {
		cert, err := vault.GenerateSelfSignedCert()
		if err != nil {
			log.Error("failed to generate TLS certificate", "error", err)
			os.Exit(1)
		}
		router.SetCertificate(cert)
		log.Info("TLS encryption enabled")
	} else {
		log.Warn("TLS encryption disabled")
	}

	// 7. Handle Graceful Shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("shutdown signal received, finalizing disk writes")
		router.Stop()
	}()

	// 8. Start the TCP Server
	log.Info("engine listening", "port", cfg.StorePort)
	if err := router.Listen(cfg.StorePort); err != nil {
		log.Error("TCP server failed", "error", err)
		store.Wait()
		os.Exit(1)
	}
	store.Wait()
	log.Info("persistence complete, exiting")
}
