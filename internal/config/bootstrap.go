// Package config loads the bridge bootstrap file: genesis checkpoint, first trustee set, bridge
// parameters and the devnet host seed.
package config

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcbridge/internal/bridge"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/bitcoin"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/devnet"
	"github.com/spf13/viper"
)

const envPrefix = "BTCBRIDGE"

type Bootstrap struct {
	Network  string    `mapstructure:"network"`
	Genesis  Genesis   `mapstructure:"genesis"`
	Bridge   Bridge    `mapstructure:"bridge"`
	Trustees []Trustee `mapstructure:"trustees"`
	Devnet   Devnet    `mapstructure:"devnet"`
}

// Genesis is the checkpoint header. An empty Header means the network genesis block at height 0.
type Genesis struct {
	Header string `mapstructure:"header"`
	Height uint32 `mapstructure:"height"`
}

type Bridge struct {
	ConfirmationDepth uint32        `mapstructure:"confirmation_depth"`
	MaxForkRetention  uint32        `mapstructure:"max_fork_retention"`
	MaxFutureDrift    time.Duration `mapstructure:"max_future_drift"`
}

type Trustee struct {
	Account    string `mapstructure:"account"`
	HotPubKey  string `mapstructure:"hot_pub_key"`
	ColdPubKey string `mapstructure:"cold_pub_key"`
}

type Devnet struct {
	Admins   []string  `mapstructure:"admins"`
	Accounts []string  `mapstructure:"accounts"`
	Bindings []Binding `mapstructure:"bindings"`
}

type Binding struct {
	Address string `mapstructure:"address"`
	Account string `mapstructure:"account"`
}

// Load reads the YAML bootstrap file. Every key can be overridden from the environment, for
// example BTCBRIDGE_BRIDGE_CONFIRMATION_DEPTH.
func Load(path string) (Bootstrap, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("network", "regtest")
	v.SetDefault("genesis.header", "")
	v.SetDefault("genesis.height", 0)
	v.SetDefault("bridge.confirmation_depth", 6)
	v.SetDefault("bridge.max_fork_retention", 100)
	v.SetDefault("bridge.max_future_drift", "2h")

	if err := v.ReadInConfig(); err != nil {
		return Bootstrap{}, fmt.Errorf("read bootstrap %s: %w", path, err)
	}
	var b Bootstrap
	if err := v.Unmarshal(&b); err != nil {
		return Bootstrap{}, fmt.Errorf("decode bootstrap %s: %w", path, err)
	}
	return b, nil
}

func (b Bootstrap) BridgeConfig() bridge.Config {
	return bridge.Config{
		ConfirmationDepth: b.Bridge.ConfirmationDepth,
		MaxForkRetention:  b.Bridge.MaxForkRetention,
		MaxFutureDrift:    b.Bridge.MaxFutureDrift,
	}
}

// BridgeGenesis decodes the checkpoint header.
func (b Bootstrap) BridgeGenesis() (bridge.Genesis, error) {
	if b.Genesis.Header == "" {
		params, err := bitcoin.ChainParams(b.Network)
		if err != nil {
			return bridge.Genesis{}, err
		}
		return bridge.Genesis{Header: params.GenesisBlock.Header}, nil
	}
	raw, err := hex.DecodeString(b.Genesis.Header)
	if err != nil {
		return bridge.Genesis{}, fmt.Errorf("genesis header: %w", err)
	}
	var h wire.BlockHeader
	if err := h.Deserialize(bytes.NewReader(raw)); err != nil {
		return bridge.Genesis{}, fmt.Errorf("genesis header: %w", err)
	}
	return bridge.Genesis{Header: h, Height: b.Genesis.Height}, nil
}

func (b Bootstrap) TrusteeInfos() ([]model.TrusteeInfo, error) {
	infos := make([]model.TrusteeInfo, 0, len(b.Trustees))
	for i, t := range b.Trustees {
		hot, err := hex.DecodeString(t.HotPubKey)
		if err != nil {
			return nil, fmt.Errorf("trustee %d hot key: %w", i, err)
		}
		cold, err := hex.DecodeString(t.ColdPubKey)
		if err != nil {
			return nil, fmt.Errorf("trustee %d cold key: %w", i, err)
		}
		infos = append(infos, model.TrusteeInfo{Account: model.AccountID(t.Account), HotPubKey: hot, ColdPubKey: cold})
	}
	return infos, nil
}

// SeedHost registers the devnet accounts, admins and address bindings. Trustee accounts are
// registered too.
func (b Bootstrap) SeedHost(h *devnet.Host) {
	for _, a := range b.Devnet.Accounts {
		h.Register(model.AccountID(a))
	}
	for _, t := range b.Trustees {
		h.Register(model.AccountID(t.Account))
	}
	for _, a := range b.Devnet.Admins {
		h.AddAdmin(model.AccountID(a))
	}
	for _, bind := range b.Devnet.Bindings {
		h.Bind(model.ChainBitcoin, bind.Address, model.AccountID(bind.Account))
	}
}
