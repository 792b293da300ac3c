package deposit

import (
	"context"

	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// AssetLedger credits bridged value to host accounts.
	AssetLedger interface {
		Issue(ctx context.Context, account model.AccountID, amount uint64) error
	}

	// Governance decides which accounts may dispatch privileged calls.
	Governance interface {
		IsAdmin(ctx context.Context, account model.AccountID) (bool, error)
	}
)
