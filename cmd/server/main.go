package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/hackfiles/file-vault/cmd/middleware"
	"github.com/hackfiles/file-vault/internal/api"
	"github.com/hackfiles/file-vault/internal/api/handlers/file"
	"github.com/hackfiles/file-vault/internal/api/handlers/util"
	"github.com/hackfiles/file-vault/internal/configuration"
	natsroutes "github.com/hackfiles/file-vault/internal/nats"
	"github.com/hackfiles/file-vault/internal/services"
	"github.com/hackfiles/file-vault/internal/vfs"
)

func main() {
	cfg := configuration.Load()

	if err := services.InitializePostgres(cfg.Database.ConnectionString()); err != nil {
		log.Fatalf("Failed to initialize PostgreSQL: %v", err)
	}

	if err := services.InitializeMinio(
		cfg.MinIO.Endpoint,
		cfg.MinIO.AccessKey,
		cfg.MinIO.SecretKey,
		cfg.MinIO.BucketName,
		cfg.MinIO.UseSSL,
	); err != nil {
		log.Fatalf("Failed to initialize MinIO: %v", err)
	}

	if err := middleware.InitAuth(cfg.OIDCUrl); err != nil {
		log.Fatalf("Failed to initialize OIDC auth: %v", err)
	}

	util.InitScanner(cfg.CLAMAVURL)

	// NATS is best effort: the service runs without the event bus, events
	// just won't be published or consumed.
	if _, _, err := services.ConnectNATS(cfg.NATSURL); err != nil {
		log.Printf("Warning: failed to connect to NATS: %v", err)
	} else {
		for subject, handler := range natsroutes.Routes() {
			// Durable names must not contain dots.
			durable := "file-vault-" + strings.ReplaceAll(subject, ".", "-")
			if _, err := services.SubscribeEvent(subject, durable, handler); err != nil {
				log.Printf("Warning: failed to subscribe to %s: %v", subject, err)
			}
		}
	}

	// Wire the filesystem core
	pg := services.GetPostgres()
	gate := services.NewTimerGate(pg)
	file.Init(vfs.New(pg, services.GetMinioService(), gate))

	setupGracefulShutdown()

	r := gin.Default()
	api.RegisterRoutes(r)

	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Shutting down gracefully...")
		services.CloseNATS()
		os.Exit(0)
	}()
}
