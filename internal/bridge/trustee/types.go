package trustee

import (
	"context"

	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// AddressDeriver is the part of the chain adapter that builds and checks custody addresses.
	AddressDeriver interface {
		DeriveCustodyAddress(pubKeys [][]byte, threshold int) (model.AddressInfo, error)
		VerifyAddress(address string) error
	}

	// Governance decides which accounts may dispatch privileged calls.
	Governance interface {
		IsAdmin(ctx context.Context, account model.AccountID) (bool, error)
	}
)
