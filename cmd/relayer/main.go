package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/btcbridge/internal/bridge/bitcoin"
	"github.com/goodnatureofminers/btcbridge/internal/logging"
	"github.com/goodnatureofminers/btcbridge/internal/metrics"
	"github.com/goodnatureofminers/btcbridge/internal/pkg/btcd/rpcclient"
	"github.com/goodnatureofminers/btcbridge/internal/relayer"
	"github.com/goodnatureofminers/btcbridge/internal/transport"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type config struct {
	Network       string        `long:"network" env:"RELAYER_NETWORK" description:"bitcoin network" default:"regtest"`
	BridgeURL     string        `long:"bridge-url" env:"RELAYER_BRIDGE_URL" description:"bridge REST base URL" default:"http://127.0.0.1:8001"`
	BridgeTimeout time.Duration `long:"bridge-timeout" env:"RELAYER_BRIDGE_TIMEOUT" description:"timeout of one bridge request" default:"30s"`
	RPCHost       string        `long:"rpc-host" env:"RELAYER_RPC_HOST" description:"bitcoind RPC host:port" default:"127.0.0.1:18443"`
	RPCUser       string        `long:"rpc-user" env:"RELAYER_RPC_USER" description:"bitcoind RPC username"`
	RPCPassword   string        `long:"rpc-password" env:"RELAYER_RPC_PASSWORD" description:"bitcoind RPC password"`
	RPCTLS        bool          `long:"rpc-tls" env:"RELAYER_RPC_TLS" description:"use TLS for bitcoind RPC"`
	Workers       int           `long:"workers" env:"RELAYER_WORKERS" description:"parallel RPC fetches" default:"8"`
	BatchSize     int           `long:"batch-size" env:"RELAYER_BATCH_SIZE" description:"headers or blocks per sync step" default:"200"`
	MaxLookback   uint32        `long:"max-lookback" env:"RELAYER_MAX_LOOKBACK" description:"max depth searched for a fork point" default:"1000"`
	StartHeight   uint32        `long:"start-height" env:"RELAYER_START_HEIGHT" description:"first block scanned for transactions, 0 follows the confirmed tip"`
	MetricsAddr   string        `long:"metrics-addr" env:"RELAYER_METRICS_ADDR" description:"address for metrics server" default:":2112"`
	LogLevel      string        `long:"log-level" env:"RELAYER_LOG_LEVEL" description:"log level" default:"info"`
	LogFile       string        `long:"log-file" env:"RELAYER_LOG_FILE" description:"rotating JSON log file"`
}

func main() {
	cfg := config{}
	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, closeLog, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer closeLog()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("relayer failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	adapter, err := bitcoin.New(cfg.Network)
	if err != nil {
		return fmt.Errorf("init adapter: %w", err)
	}
	client, err := rpcclient.New(cfg.RPCHost, cfg.RPCUser, cfg.RPCPassword, !cfg.RPCTLS)
	if err != nil {
		return fmt.Errorf("init bitcoind rpc client: %w", err)
	}
	defer func() {
		client.Shutdown()
		client.WaitForShutdown()
	}()

	rl := relayer.New(
		rpcclient.NewObservedClient(client, metrics.NewRPCClient(cfg.Network)),
		transport.NewClient(cfg.BridgeURL, cfg.BridgeTimeout),
		adapter,
		metrics.NewRelayer(cfg.Network),
		relayer.Config{
			WorkerCount: cfg.Workers,
			BatchSize:   cfg.BatchSize,
			MaxLookback: cfg.MaxLookback,
			StartHeight: cfg.StartHeight,
		},
		logger,
		nil,
	)
	logger.Info("relaying",
		zap.String("network", cfg.Network),
		zap.String("bridge", cfg.BridgeURL),
		zap.String("node", cfg.RPCHost))
	return rl.Run(ctx)
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}
