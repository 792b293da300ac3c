// Package model holds the domain types shared by the bridge components.
package model

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

type (
	// AccountID identifies an account of the host ledger.
	AccountID string
	// WithdrawalID identifies a withdrawal record of the records ledger.
	WithdrawalID uint32
)

// Chain enumerates the supported foreign chains.
type Chain uint8

const (
	ChainBitcoin Chain = iota + 1
)

func (c Chain) String() string {
	switch c {
	case ChainBitcoin:
		return "bitcoin"
	default:
		return "unknown"
	}
}

// Origin describes who dispatched a call. Root marks a privileged governance call.
type Origin struct {
	Root    bool
	Account AccountID
}

// ChainIndex points to a header by hash and height.
type ChainIndex struct {
	Hash   chainhash.Hash
	Height uint32
}

// HeaderRecord is a stored block header together with its derived hash and height.
type HeaderRecord struct {
	Header wire.BlockHeader
	Height uint32
	Hash   chainhash.Hash
}

// TxKind is the classification of a relayed transaction.
type TxKind uint8

const (
	TxIrrelevant TxKind = iota
	TxDeposit
	TxWithdrawal
	TxTrusteeTransition
)

func (k TxKind) String() string {
	switch k {
	case TxDeposit:
		return "deposit"
	case TxWithdrawal:
		return "withdrawal"
	case TxTrusteeTransition:
		return "trustee_transition"
	default:
		return "irrelevant"
	}
}

// TxResult is the outcome of processing a relayed transaction.
type TxResult uint8

const (
	TxSuccess TxResult = iota
	TxFailure
)

func (r TxResult) String() string {
	if r == TxSuccess {
		return "success"
	}
	return "failure"
}

// TxState is recorded per transaction hash once the relay has processed it.
type TxState struct {
	Kind   TxKind
	Result TxResult
}

// PendingDeposit is a deposit that could not be attributed to an account yet.
type PendingDeposit struct {
	TxHash chainhash.Hash
	Value  uint64
	Height uint32
}

// ProposalState is the life stage of the withdrawal proposal.
type ProposalState uint8

const (
	ProposalCollecting ProposalState = iota
	ProposalFinished
)

func (s ProposalState) String() string {
	if s == ProposalFinished {
		return "finished"
	}
	return "collecting"
}

// Trustee set bounds. MaxTrustees keeps every vote inside one VoteBits word.
const (
	MinTrustees = 4
	MaxTrustees = 15
)

// VoteBits is a fixed bit-vector indexed by trustee position.
type VoteBits uint32

func (v VoteBits) Has(i int) bool { return i >= 0 && i < 32 && v&(1<<uint(i)) != 0 }

func (v VoteBits) Set(i int) VoteBits { return v | 1<<uint(i) }

func (v VoteBits) Count() int { return bits.OnesCount32(uint32(v)) }

// WithdrawalProposal is the singleton multisig withdrawal being signed.
type WithdrawalProposal struct {
	IDs        []WithdrawalID
	Tx         *wire.MsgTx
	Approvals  VoteBits
	Rejections VoteBits
	State      ProposalState
}

// WithdrawalState mirrors the records ledger lifecycle of a single withdrawal.
type WithdrawalState uint8

const (
	WithdrawalApplying WithdrawalState = iota
	WithdrawalProcessing
	WithdrawalCompleted
)

func (s WithdrawalState) String() string {
	switch s {
	case WithdrawalProcessing:
		return "processing"
	case WithdrawalCompleted:
		return "completed"
	default:
		return "applying"
	}
}

// WithdrawalRecord is the records ledger view of one withdrawal request.
type WithdrawalRecord struct {
	ID          WithdrawalID
	Account     AccountID
	Destination string
	Amount      uint64
	State       WithdrawalState
}

// TrusteeInfo carries the keys a trustee registered for a session.
type TrusteeInfo struct {
	Account    AccountID
	HotPubKey  []byte
	ColdPubKey []byte
}

// AddressInfo is a custody address with the redeem script that spends from it.
type AddressInfo struct {
	Address      string
	RedeemScript []byte
}

// TrusteeSession is one generation of the custody key set.
// PreviousHot and PreviousCold hold the outgoing addresses until their sweeps are relayed.
type TrusteeSession struct {
	Number       uint32
	Trustees     []TrusteeInfo
	Threshold    uint16
	Hot          AddressInfo
	Cold         AddressInfo
	PreviousHot  *AddressInfo
	PreviousCold *AddressInfo
}

// Index returns the position of account in the trustee set, or -1.
func (s *TrusteeSession) Index(account AccountID) int {
	if s == nil {
		return -1
	}
	for i, t := range s.Trustees {
		if t.Account == account {
			return i
		}
	}
	return -1
}

// InTransition reports whether a sweep from a previous custody address is still outstanding.
func (s *TrusteeSession) InTransition() bool {
	return s != nil && (s.PreviousHot != nil || s.PreviousCold != nil)
}

// SignThreshold returns ceil(2n/3), the number of approvals required out of n trustees.
func SignThreshold(n int) int {
	return (2*n + 2) / 3
}

// RequireAdmin passes root origins and accounts isAdmin accepts.
func RequireAdmin(ctx context.Context, origin Origin, isAdmin func(context.Context, AccountID) (bool, error)) error {
	if origin.Root {
		return nil
	}
	ok, err := isAdmin(ctx, origin.Account)
	if err != nil {
		return fmt.Errorf("check admin %s: %w", origin.Account, err)
	}
	if !ok {
		return Errorf(KindRequireAdmin, "%s is not an admin", origin.Account)
	}
	return nil
}
