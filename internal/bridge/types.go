package bridge

import (
	"context"
	"time"

	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Host bundles the host-ledger collaborators the bridge calls out to.
	Host interface {
		// Issue credits bridged value to account.
		Issue(ctx context.Context, account model.AccountID, amount uint64) error

		Withdrawal(ctx context.Context, id model.WithdrawalID) (model.WithdrawalRecord, error)
		Lock(ctx context.Context, ids []model.WithdrawalID) error
		Unlock(ctx context.Context, ids []model.WithdrawalID) error
		Complete(ctx context.Context, ids []model.WithdrawalID) error

		ResolvePayload(ctx context.Context, payload []byte) (model.AccountID, bool, error)
		BoundAccount(ctx context.Context, c model.Chain, address string) (model.AccountID, bool, error)

		IsAdmin(ctx context.Context, account model.AccountID) (bool, error)
	}

	// Metrics observes applied calls.
	Metrics interface {
		ObserveOperation(operation string, err error, started time.Time)
		ObserveEvent(kind model.EventKind)
		SetTips(best, confirmed uint32)
	}
)

type nopMetrics struct{}

func (nopMetrics) ObserveOperation(string, error, time.Time) {}
func (nopMetrics) ObserveEvent(model.EventKind) {}
func (nopMetrics) SetTips(uint32, uint32) {}
