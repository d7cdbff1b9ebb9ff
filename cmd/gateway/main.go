package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/SafronovIK/authgate/internal/common/clock"
	"github.com/SafronovIK/authgate/internal/common/config"
	commonhttp "github.com/SafronovIK/authgate/internal/common/http"
	"github.com/SafronovIK/authgate/internal/common/logger"
	srv "github.com/SafronovIK/authgate/internal/common/server"
	"github.com/SafronovIK/authgate/internal/common/token"
	"github.com/SafronovIK/authgate/internal/gateway"
)

func main() {
	log := logger.GetInstance()
	if err := log.Initialize(os.Getenv("LOG_DIR"), "gateway", os.Getenv("LOG_LEVEL")); err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to initialize logger: %v\n", err))
		os.Exit(1)
	}

	cfg, err := config.LoadGatewayConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	tokenService, err := token.NewJWTService(cfg.JWTSecret, cfg.JWTAlgorithm, 0, clock.NewRealClock())
	if err != nil {
		log.Fatalf("failed to build token service: %v", err)
	}

	registry, err := gateway.NewRegistry(cfg.Services)
	if err != nil {
		log.Fatalf("failed to build service registry: %v", err)
	}

	for name, target := range cfg.Services {
		log.Infof("registered service %s -> %s", name, target)
	}

	forwarder := gateway.NewForwarder(cfg.ForwardTimeout, log)
	limiter := rate.NewLimiter(rate.Limit(cfg.GlobalRPS), cfg.GlobalBurst)
	router := gateway.NewRouter(registry, forwarder, tokenService, limiter, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler(log, "api-gateway"))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	finalHandler := commonhttp.BuildBaseHandler("gateway", log, mux)

	serverConfig := srv.DefaultServerConfig(cfg.HTTPPort)
	server := srv.NewServer(serverConfig, finalHandler)

	srv.StartWithGracefulShutdown(server, log, "gateway")
}
