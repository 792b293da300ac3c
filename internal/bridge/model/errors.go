package model

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates every failure the bridge reports to callers.
type ErrorKind uint8

const (
	KindDeserialize ErrorKind = iota + 1
	KindExistingHeader
	KindPrevHeaderNotExisted
	KindHeaderFuturisticTimestamp
	KindHeaderNBitsNotMatch
	KindInvalidPoW
	KindAncientFork
	KindUnknownBlock
	KindBadMerkleProof
	KindUnconfirmedTx
	KindReplayedTx
	KindProcessTxFailed
	KindMissingPrevTx
	KindInvalidPrevTx
	KindNotTrustee
	KindProposalExists
	KindNoProposal
	KindInvalidWithdrawalIDs
	KindOutputsMismatch
	KindRecordsLocked
	KindDuplicateVote
	KindMismatchedTx
	KindInvalidSignCount
	KindRequireAdmin
	KindInvalidAddress
	KindTrusteeTransitionPeriod
	KindInvalidPublicKey
	KindDuplicatedKey
	KindInvalidTrusteeCount
	KindNotInitialized
	KindAlreadyInitialized
	KindInvalidGenesis
)

var kindNames = map[ErrorKind]string{
	KindDeserialize:               "DeserializeErr",
	KindExistingHeader:            "ExistingHeader",
	KindPrevHeaderNotExisted:      "PrevHeaderNotExisted",
	KindHeaderFuturisticTimestamp: "HeaderFuturisticTimestamp",
	KindHeaderNBitsNotMatch:       "HeaderNBitsNotMatch",
	KindInvalidPoW:                "InvalidPoW",
	KindAncientFork:               "AncientFork",
	KindUnknownBlock:              "UnknownBlock",
	KindBadMerkleProof:            "BadMerkleProof",
	KindUnconfirmedTx:             "UnconfirmedTx",
	KindReplayedTx:                "ReplayedTx",
	KindProcessTxFailed:           "ProcessTxFailed",
	KindMissingPrevTx:             "MissingPrevTx",
	KindInvalidPrevTx:             "InvalidPrevTx",
	KindNotTrustee:                "NotTrustee",
	KindProposalExists:            "ProposalExists",
	KindNoProposal:                "NoProposal",
	KindInvalidWithdrawalIDs:      "InvalidWithdrawalIDs",
	KindOutputsMismatch:           "OutputsMismatch",
	KindRecordsLocked:             "RecordsLocked",
	KindDuplicateVote:             "DuplicateVote",
	KindMismatchedTx:              "MismatchedTx",
	KindInvalidSignCount:          "InvalidSignCount",
	KindRequireAdmin:              "RequireAdmin",
	KindInvalidAddress:            "InvalidAddress",
	KindTrusteeTransitionPeriod:   "TrusteeTransitionPeriod",
	KindInvalidPublicKey:          "InvalidPublicKey",
	KindDuplicatedKey:             "DuplicatedKey",
	KindInvalidTrusteeCount:       "InvalidTrusteeCount",
	KindNotInitialized:            "NotInitialized",
	KindAlreadyInitialized:        "AlreadyInitialized",
	KindInvalidGenesis:            "InvalidGenesis",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// Error is the bridge failure type. Two errors match with errors.Is when their kinds are equal,
// so callers compare against the Err* sentinels below.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Errorf builds an *Error of the given kind with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying cause.
func Wrap(kind ErrorKind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

var (
	ErrDeserialize               = &Error{Kind: KindDeserialize}
	ErrExistingHeader            = &Error{Kind: KindExistingHeader}
	ErrPrevHeaderNotExisted      = &Error{Kind: KindPrevHeaderNotExisted}
	ErrHeaderFuturisticTimestamp = &Error{Kind: KindHeaderFuturisticTimestamp}
	ErrHeaderNBitsNotMatch       = &Error{Kind: KindHeaderNBitsNotMatch}
	ErrInvalidPoW                = &Error{Kind: KindInvalidPoW}
	ErrAncientFork               = &Error{Kind: KindAncientFork}
	ErrUnknownBlock              = &Error{Kind: KindUnknownBlock}
	ErrBadMerkleProof            = &Error{Kind: KindBadMerkleProof}
	ErrUnconfirmedTx             = &Error{Kind: KindUnconfirmedTx}
	ErrReplayedTx                = &Error{Kind: KindReplayedTx}
	ErrProcessTxFailed           = &Error{Kind: KindProcessTxFailed}
	ErrMissingPrevTx             = &Error{Kind: KindMissingPrevTx}
	ErrInvalidPrevTx             = &Error{Kind: KindInvalidPrevTx}
	ErrNotTrustee                = &Error{Kind: KindNotTrustee}
	ErrProposalExists            = &Error{Kind: KindProposalExists}
	ErrNoProposal                = &Error{Kind: KindNoProposal}
	ErrInvalidWithdrawalIDs      = &Error{Kind: KindInvalidWithdrawalIDs}
	ErrOutputsMismatch           = &Error{Kind: KindOutputsMismatch}
	ErrRecordsLocked             = &Error{Kind: KindRecordsLocked}
	ErrDuplicateVote             = &Error{Kind: KindDuplicateVote}
	ErrMismatchedTx              = &Error{Kind: KindMismatchedTx}
	ErrInvalidSignCount          = &Error{Kind: KindInvalidSignCount}
	ErrRequireAdmin              = &Error{Kind: KindRequireAdmin}
	ErrInvalidAddress            = &Error{Kind: KindInvalidAddress}
	ErrTrusteeTransitionPeriod   = &Error{Kind: KindTrusteeTransitionPeriod}
	ErrInvalidPublicKey          = &Error{Kind: KindInvalidPublicKey}
	ErrDuplicatedKey             = &Error{Kind: KindDuplicatedKey}
	ErrInvalidTrusteeCount       = &Error{Kind: KindInvalidTrusteeCount}
	ErrNotInitialized            = &Error{Kind: KindNotInitialized}
	ErrAlreadyInitialized        = &Error{Kind: KindAlreadyInitialized}
	ErrInvalidGenesis            = &Error{Kind: KindInvalidGenesis}
)

// KindOf extracts the kind of a bridge error, or zero when err is not one.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// ParseErrorKind maps a kind name as printed by ErrorKind.String back to the kind.
func ParseErrorKind(name string) (ErrorKind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}
