package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/SafronovIK/authgate/internal/auth/http"
	authrepo "github.com/SafronovIK/authgate/internal/auth/repository"
	"github.com/SafronovIK/authgate/internal/auth/service"
	"github.com/SafronovIK/authgate/internal/common/clock"
	"github.com/SafronovIK/authgate/internal/common/config"
	commoncrypto "github.com/SafronovIK/authgate/internal/common/crypto"
	"github.com/SafronovIK/authgate/internal/common/db"
	commonhttp "github.com/SafronovIK/authgate/internal/common/http"
	"github.com/SafronovIK/authgate/internal/common/logger"
	srv "github.com/SafronovIK/authgate/internal/common/server"
	"github.com/SafronovIK/authgate/internal/common/token"
)

func main() {
	log := logger.GetInstance()
	if err := log.Initialize(os.Getenv("LOG_DIR"), "auth", os.Getenv("LOG_LEVEL")); err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to initialize logger: %v\n", err))
		os.Exit(1)
	}

	cfg, err := config.LoadAuthConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()

	clk := clock.NewRealClock()

	tokenService, err := token.NewJWTService(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenTTL, clk)
	if err != nil {
		log.Fatalf("failed to build token service: %v", err)
	}

	userRepo := authrepo.NewPgUserRepository(pool)
	hasher := commoncrypto.NewBcryptHasher(cfg.BcryptCost)
	authService := service.NewAuthService(userRepo, hasher, tokenService, clk, log)

	handler := authhttp.NewHandler(authService, cfg.TokenTTL, cfg.RequestTimeout, log)

	mux := http.NewServeMux()
	mux.Handle("/", handler)
	mux.Handle("/metrics", promhttp.Handler())

	rateLimiter := commonhttp.NewSlidingWindowLimiter(cfg.RequestsPerMinute, clk)
	baseHandler := commonhttp.BuildBaseHandler("auth", log, mux)
	finalHandler := rateLimiter.Middleware()(baseHandler)

	serverConfig := srv.DefaultServerConfig(cfg.HTTPPort)
	server := srv.NewServer(serverConfig, finalHandler)

	shutdownHooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			log.Infof("auth service: stopping rate limiter sweep")
			rateLimiter.Stop()
			return nil
		},
	}

	srv.StartWithGracefulShutdownAndHooks(server, log, "auth", shutdownHooks)
}
