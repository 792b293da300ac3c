package main

import (
	"fmt"

	"github.com/goodnatureofminers/btcbridge/internal/bridge"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/bitcoin"
	"github.com/goodnatureofminers/btcbridge/internal/metrics"
	"github.com/goodnatureofminers/btcbridge/internal/pkg/btcd/rpcclient"
	"github.com/goodnatureofminers/btcbridge/internal/relayer"
	"go.uber.org/zap"
)

type relayerOptions struct {
	Enabled     bool   `long:"enabled" env:"ENABLED" description:"relay headers and transactions from a bitcoind node"`
	RPCHost     string `long:"rpc-host" env:"RPC_HOST" description:"bitcoind RPC host:port" default:"127.0.0.1:18443"`
	RPCUser     string `long:"rpc-user" env:"RPC_USER" description:"bitcoind RPC username"`
	RPCPassword string `long:"rpc-password" env:"RPC_PASSWORD" description:"bitcoind RPC password"`
	RPCTLS      bool   `long:"rpc-tls" env:"RPC_TLS" description:"use TLS for bitcoind RPC"`
	Workers     int    `long:"workers" env:"WORKERS" description:"parallel RPC fetches" default:"8"`
	BatchSize   int    `long:"batch-size" env:"BATCH_SIZE" description:"headers or blocks per sync step" default:"200"`
	MaxLookback uint32 `long:"max-lookback" env:"MAX_LOOKBACK" description:"max depth searched for a fork point" default:"1000"`
	StartHeight uint32 `long:"start-height" env:"START_HEIGHT" description:"first block scanned for transactions, 0 follows the confirmed tip"`
}

// newEmbeddedRelayer feeds b in process. The returned function disconnects from the node.
func newEmbeddedRelayer(
	opts relayerOptions,
	b *bridge.Bridge,
	adapter *bitcoin.Adapter,
	network string,
	logger *zap.Logger,
) (*relayer.Relayer, func(), error) {
	client, err := rpcclient.New(opts.RPCHost, opts.RPCUser, opts.RPCPassword, !opts.RPCTLS)
	if err != nil {
		return nil, nil, fmt.Errorf("init bitcoind rpc client: %w", err)
	}
	node := rpcclient.NewObservedClient(client, metrics.NewRPCClient(network))
	rl := relayer.New(
		node,
		relayer.NewLocalTarget(b),
		adapter,
		metrics.NewRelayer(network),
		relayer.Config{
			WorkerCount: opts.Workers,
			BatchSize:   opts.BatchSize,
			MaxLookback: opts.MaxLookback,
			StartHeight: opts.StartHeight,
		},
		logger,
		nil,
	)
	return rl, func() {
		client.Shutdown()
		client.WaitForShutdown()
	}, nil
}
