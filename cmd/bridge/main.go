package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/goodnatureofminers/btcbridge/internal/bridge"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/bitcoin"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/events"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/storage"
	"github.com/goodnatureofminers/btcbridge/internal/clock"
	"github.com/goodnatureofminers/btcbridge/internal/config"
	"github.com/goodnatureofminers/btcbridge/internal/devnet"
	"github.com/goodnatureofminers/btcbridge/internal/logging"
	"github.com/goodnatureofminers/btcbridge/internal/metrics"
	"github.com/goodnatureofminers/btcbridge/internal/transport"
	grpcZap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
)

type options struct {
	Bootstrap      string        `long:"bootstrap" env:"BTCBRIDGE_BOOTSTRAP" description:"YAML bootstrap file" default:"bridge.yaml"`
	DataDir        string        `long:"data-dir" env:"BTCBRIDGE_DATA_DIR" description:"leveldb directory" default:"data"`
	GRPCAddr       string        `long:"grpc-addr" env:"BTCBRIDGE_GRPC_ADDR" description:"gRPC health address" default:":8000"`
	RestAddr       string        `long:"rest-addr" env:"BTCBRIDGE_REST_ADDR" description:"REST gateway and metrics address" default:":8001"`
	HealthInterval time.Duration `long:"health-interval" env:"BTCBRIDGE_HEALTH_INTERVAL" description:"health refresh interval" default:"10s"`

	AdminToken    string   `long:"admin-token" env:"BTCBRIDGE_ADMIN_TOKEN" description:"bearer token granting root, empty disables root over REST"`
	AccountTokens []string `long:"account-token" env:"BTCBRIDGE_ACCOUNT_TOKENS" env-delim:"," description:"account:token pair authenticating a trustee or account"`
	Devnet        bool     `long:"devnet" env:"BTCBRIDGE_DEVNET" description:"mount devnet routes and accept accounts named in request bodies"`

	LogLevel string `long:"log-level" env:"BTCBRIDGE_LOG_LEVEL" description:"log level" default:"info"`
	LogJSON  bool   `long:"log-json" env:"BTCBRIDGE_LOG_JSON" description:"write console logs as JSON"`
	LogFile  string `long:"log-file" env:"BTCBRIDGE_LOG_FILE" description:"rotating JSON log file"`

	Archive archiveOptions `group:"archive" namespace:"archive" env-namespace:"BTCBRIDGE_ARCHIVE"`
	Relayer relayerOptions `group:"relayer" namespace:"relayer" env-namespace:"BTCBRIDGE_RELAYER"`
}

type archiveOptions struct {
	ClickhouseDSN string        `long:"clickhouse-dsn" env:"CLICKHOUSE_DSN" description:"ClickHouse DSN, empty disables the event archive"`
	FlushSize     int           `long:"flush-size" env:"FLUSH_SIZE" description:"events per insert" default:"500"`
	FlushInterval time.Duration `long:"flush-interval" env:"FLUSH_INTERVAL" description:"max delay before an insert" default:"2s"`
	RPS           int           `long:"rps" env:"RPS" description:"inserts per second" default:"5"`
	MaxAttempts   int           `long:"max-attempts" env:"MAX_ATTEMPTS" description:"insert attempts per batch" default:"5"`
}

func main() {
	var opts options
	if _, err := flags.ParseArgs(&opts, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, closeLog, err := logging.New(logging.Options{Level: opts.LogLevel, JSON: opts.LogJSON, File: opts.LogFile})
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer closeLog()
	grpcZap.ReplaceGrpcLoggerV2(logger)

	if err := run(ctx, opts, logger); err != nil {
		logger.Fatal("bridge failed", zap.Error(err))
	}
}

func run(ctx context.Context, opts options, logger *zap.Logger) error {
	boot, err := config.Load(opts.Bootstrap)
	if err != nil {
		return err
	}
	adapter, err := bitcoin.New(boot.Network)
	if err != nil {
		return fmt.Errorf("init adapter: %w", err)
	}

	db, err := storage.Open(opts.DataDir, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("close storage", zap.Error(err))
		}
	}()

	host := devnet.NewHost()
	boot.SeedHost(host)

	sinks := events.Fanout{events.NewLogSink(logger)}
	archive, err := newArchive(opts.Archive, logger)
	if err != nil {
		return err
	}
	var store transport.EventStore
	if archive != nil {
		archive.Start(ctx)
		defer archive.Close()
		sinks = append(sinks, events.NewArchiveSink(archive.queue, clock.System{}))
		store = archive.repo
	}

	b := bridge.New(db, adapter, boot.BridgeConfig(), host, sinks, metrics.NewBridge(boot.Network), clock.System{}, logger)
	if err := bootstrap(ctx, b, boot); err != nil {
		return err
	}
	if archive != nil {
		st, err := b.Status()
		if err != nil {
			return fmt.Errorf("read status: %w", err)
		}
		archive.reportGap(ctx, st.LastEvent)
	}

	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hs := health.NewServer()
	grpcServer := transport.NewGRPCServer(logger, hs)
	socket, err := net.Listen("tcp", opts.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", opts.GRPCAddr, err)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := grpcServer.Serve(socket); err != nil {
			logger.Error("gRPC server failed", zap.Error(err))
		}
	}()
	defer func() {
		logger.Info("shutting down gRPC server")
		grpcServer.GracefulStop()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = transport.NewHealthReporter(hs, b, opts.HealthInterval, logger).Run(ctx)
	}()

	auth, err := restAuth(opts)
	if err != nil {
		return err
	}
	gateway, closeGateway, err := transport.NewGateway(opts.GRPCAddr, transport.NewHandler(b, store, auth, logger))
	if err != nil {
		return fmt.Errorf("init gateway: %w", err)
	}
	defer func() { _ = closeGateway() }()
	if opts.Devnet {
		logger.Warn("devnet mode: request bodies name the calling account")
		if err := devnet.NewHandler(host, b, logger).Register(gateway); err != nil {
			return fmt.Errorf("register devnet routes: %w", err)
		}
	}

	if opts.Relayer.Enabled {
		rl, shutdown, err := newEmbeddedRelayer(opts.Relayer, b, adapter, boot.Network, logger)
		if err != nil {
			return err
		}
		defer shutdown()
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := rl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("relayer stopped", zap.Error(err))
			}
		}()
	}

	srv := transport.NewHTTPServer(opts.RestAddr, gateway)
	go func() {
		<-ctx.Done()
		logger.Info("shutting down the http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown http server", zap.Error(err))
		}
	}()

	logger.Info("starting HTTP server",
		zap.String("addr", opts.RestAddr),
		zap.String("network", boot.Network))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}

func restAuth(opts options) (transport.Auth, error) {
	auth := transport.Auth{
		AdminToken:    opts.AdminToken,
		AccountTokens: make(map[string]model.AccountID, len(opts.AccountTokens)),
		TrustDeclared: opts.Devnet,
	}
	for _, pair := range opts.AccountTokens {
		account, token, ok := strings.Cut(pair, ":")
		if !ok || account == "" || token == "" {
			return transport.Auth{}, fmt.Errorf("account token %q: want account:token", account)
		}
		auth.AccountTokens[token] = model.AccountID(account)
	}
	return auth, nil
}

// bootstrap installs the genesis and the first trustee set unless the database already holds them.
func bootstrap(ctx context.Context, b *bridge.Bridge, boot config.Bootstrap) error {
	genesis, err := boot.BridgeGenesis()
	if err != nil {
		return err
	}
	trustees, err := boot.TrusteeInfos()
	if err != nil {
		return err
	}
	err = b.Bootstrap(ctx, genesis, trustees)
	if errors.Is(err, model.ErrAlreadyInitialized) {
		return nil
	}
	return err
}
