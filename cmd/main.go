package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	grpcctx "github.com/dtroode/cardkeeper-server/internal/api/grpc/context"
	"github.com/dtroode/cardkeeper-server/internal/api/grpc/router"
	grpcServer "github.com/dtroode/cardkeeper-server/internal/api/grpc/server"
	"github.com/dtroode/cardkeeper-server/internal/config"
	"github.com/dtroode/cardkeeper-server/internal/hasher"
	"github.com/dtroode/cardkeeper-server/internal/logger"
	"github.com/dtroode/cardkeeper-server/internal/model"
	"github.com/dtroode/cardkeeper-server/internal/payment"
	"github.com/dtroode/cardkeeper-server/internal/pricing"
	"github.com/dtroode/cardkeeper-server/internal/repository/memory"
	"github.com/dtroode/cardkeeper-server/internal/repository/postgres"
	"github.com/dtroode/cardkeeper-server/internal/repository/redis"
	"github.com/dtroode/cardkeeper-server/internal/repository/sqlite"
	"github.com/dtroode/cardkeeper-server/internal/server"
	"github.com/dtroode/cardkeeper-server/internal/service"
	storage "github.com/dtroode/cardkeeper-server/internal/storage/minio"
	"github.com/dtroode/cardkeeper-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const (
	shutdownTimeout = 10 * time.Second
	gatewayTimeout  = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	local, err := sqlite.NewConnection(ctx, cfg.Database.LocalDSN)
	if err != nil {
		logger.Fatal("failed to initialize local store", "error", err)
	}
	defer local.Close()

	cloud, err := postgres.NewConnection(ctx, cfg.Database.CloudDSN)
	if err != nil {
		logger.Fatal("failed to initialize cloud store", "error", err)
	}
	defer cloud.Close()

	var (
		sessions model.SessionStore = memory.NewSessionSlot()
		prices   model.PriceLookup
		images   model.ImageLookup
	)

	lookups := pricing.NewClient(cfg.Pricing.BaseURL, cfg.Pricing.RPS, cfg.LookupTimeout)
	if cfg.Pricing.BaseURL != "" {
		prices, images = lookups, lookups
	}

	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, cfg.Redis.URL, logger)
		if err != nil {
			logger.Fatal("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()

		sessions = redis.NewSessionRepository(redisClient, cfg.JWT.SessionTTL)
		if prices != nil {
			prices = pricing.NewCache(prices, redisClient, cfg.Redis.PriceTTL, logger)
		}
	}

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	photos, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize photo storage", "error", err)
	}

	tokens := token.NewJWT(cfg.JWT.Secret, cfg.JWT.SessionTTL)
	ctxMgr := grpcctx.NewManager()

	identity := service.NewIdentity(
		sqlite.NewUserRepository(local),
		sqlite.NewCredentialRepository(local),
		sessions,
		tokens,
		hasher.NewArgon2(cfg.KDF.Time, cfg.KDF.MemKiB, cfg.KDF.Par),
		ctxMgr,
		local,
		cfg.AdminEmail,
		logger,
	)
	collection := service.NewCollection(
		identity,
		sqlite.NewItemRepository(local),
		sqlite.NewSaleRepository(local),
		sqlite.NewSettingsRepository(local),
		photos,
		prices,
		images,
		local,
		cfg.LookupTimeout,
		logger,
	)
	syncService := service.NewSync(identity, postgres.NewCloudCollectionRepository(cloud), cfg.SyncStaleness, logger)

	gateway := payment.NewGateway(cfg.Payment.BaseURL, cfg.Payment.APIKey, gatewayTimeout)
	billing := service.NewBilling(identity, identity, gateway, logger)

	identity.RegisterPartition(collection)
	identity.RegisterPartition(syncService)

	r := router.New(identity, collection, syncService, billing, tokens, ctxMgr, cfg.Payment.WebhookSecret, logger)
	srv := grpcServer.NewGRPCServer(r.Register(), fmt.Sprintf(":%s", cfg.GRPC.Port))

	var sl model.SecurityLayer
	if cfg.GRPC.EnableHTTPS {
		sl = server.NewTLSListener(cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
