package transport

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcbridge/internal/bridge"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/chain"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/events"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/relay"
)

// Byte payloads travel as lowercase hex and hashes in their usual reversed display order.

type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type chainIndexJSON struct {
	Hash   string `json:"hash"`
	Height uint32 `json:"height"`
}

type tipsResponse struct {
	Best      chainIndexJSON `json:"best"`
	Confirmed chainIndexJSON `json:"confirmed"`
}

type mainHashResponse struct {
	Height uint32 `json:"height"`
	Hash   string `json:"hash"`
}

type headerRequest struct {
	Raw string `json:"raw"`
}

type headerResponse struct {
	Hash      string `json:"hash"`
	Height    uint32 `json:"height"`
	PrevBlock string `json:"prev_block"`
	Raw       string `json:"raw"`
}

type transactionRequest struct {
	Raw       string   `json:"raw"`
	BlockHash string   `json:"block_hash"`
	TxIndex   uint32   `json:"tx_index"`
	Branch    []string `json:"branch"`
	Prev      string   `json:"prev,omitempty"`
}

type txStateJSON struct {
	Kind   string `json:"kind"`
	Result string `json:"result"`
}

// originJSON names the account a devnet caller acts as. Root is never read from the body.
type originJSON struct {
	Account string `json:"account,omitempty"`
}

type proposalRequest struct {
	Proposer string   `json:"proposer"`
	IDs      []uint32 `json:"ids"`
	Raw      string   `json:"raw"`
}

type signatureRequest struct {
	Signer string `json:"signer"`
	// Raw is empty for a rejection.
	Raw string `json:"raw,omitempty"`
}

type removeProposalRequest struct {
	Origin originJSON `json:"origin"`
}

type removeDepositRequest struct {
	Origin  originJSON `json:"origin"`
	Account *string    `json:"account,omitempty"`
}

type removeDepositResponse struct {
	Address string `json:"address"`
	Total   uint64 `json:"total"`
}

type trusteeJSON struct {
	Account    string `json:"account"`
	HotPubKey  string `json:"hot_pub_key"`
	ColdPubKey string `json:"cold_pub_key"`
}

type transitionRequest struct {
	Origin   originJSON    `json:"origin"`
	Trustees []trusteeJSON `json:"trustees"`
}

type addressJSON struct {
	Address      string `json:"address"`
	RedeemScript string `json:"redeem_script"`
}

type sessionJSON struct {
	Number       uint32        `json:"number"`
	Threshold    uint16        `json:"threshold"`
	Trustees     []trusteeJSON `json:"trustees"`
	Hot          addressJSON   `json:"hot"`
	Cold         addressJSON   `json:"cold"`
	PreviousHot  *addressJSON  `json:"previous_hot,omitempty"`
	PreviousCold *addressJSON  `json:"previous_cold,omitempty"`
}

type proposalJSON struct {
	IDs        []uint32 `json:"ids"`
	Tx         string   `json:"tx"`
	TxHash     string   `json:"tx_hash"`
	Approvals  uint32   `json:"approvals"`
	Rejections uint32   `json:"rejections"`
	State      string   `json:"state"`
}

type custodyJSON struct {
	Hot          string `json:"hot"`
	Cold         string `json:"cold"`
	PreviousHot  string `json:"previous_hot,omitempty"`
	PreviousCold string `json:"previous_cold,omitempty"`
	Proposal     string `json:"proposal,omitempty"`
}

type pendingDepositJSON struct {
	TxHash string `json:"tx_hash"`
	Value  uint64 `json:"value"`
	Height uint32 `json:"height"`
}

type statusResponse struct {
	Chain             string         `json:"chain"`
	Initialized       bool           `json:"initialized"`
	Genesis           chainIndexJSON `json:"genesis"`
	Best              chainIndexJSON `json:"best"`
	Confirmed         chainIndexJSON `json:"confirmed"`
	ConfirmationDepth uint32         `json:"confirmation_depth"`
	Session           *sessionJSON   `json:"session,omitempty"`
	Proposal          *proposalJSON  `json:"proposal,omitempty"`
	PendingAddresses  []string       `json:"pending_addresses"`
	LastEvent         uint64         `json:"last_event"`
}

type eventJSON struct {
	Sequence  uint64 `json:"sequence"`
	Kind      string `json:"kind"`
	Payload   string `json:"payload"`
	CreatedAt string `json:"created_at"`
}

type verifyResponse struct {
	Address string `json:"address"`
	Valid   bool   `json:"valid"`
	Reason  string `json:"reason,omitempty"`
}

func decodeHex(field, s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, model.Wrap(model.KindDeserialize, field, err)
	}
	return b, nil
}

func decodeHash(field, s string) (chainhash.Hash, error) {
	h, err := chainhash.NewHashFromStr(s)
	if err != nil {
		return chainhash.Hash{}, model.Wrap(model.KindDeserialize, field, err)
	}
	return *h, nil
}

func toChainIndex(idx model.ChainIndex) chainIndexJSON {
	return chainIndexJSON{Hash: idx.Hash.String(), Height: idx.Height}
}

func fromChainIndex(j chainIndexJSON) (model.ChainIndex, error) {
	h, err := decodeHash("hash", j.Hash)
	if err != nil {
		return model.ChainIndex{}, err
	}
	return model.ChainIndex{Hash: h, Height: j.Height}, nil
}

func toTrustees(in []trusteeJSON) ([]model.TrusteeInfo, error) {
	out := make([]model.TrusteeInfo, 0, len(in))
	for i, t := range in {
		hot, err := decodeHex(fmt.Sprintf("trustees[%d].hot_pub_key", i), t.HotPubKey)
		if err != nil {
			return nil, err
		}
		cold, err := decodeHex(fmt.Sprintf("trustees[%d].cold_pub_key", i), t.ColdPubKey)
		if err != nil {
			return nil, err
		}
		out = append(out, model.TrusteeInfo{Account: model.AccountID(t.Account), HotPubKey: hot, ColdPubKey: cold})
	}
	return out, nil
}

func toRelayInfo(req transactionRequest) (relay.Info, error) {
	blockHash, err := decodeHash("block_hash", req.BlockHash)
	if err != nil {
		return relay.Info{}, err
	}
	branch := make([]chainhash.Hash, 0, len(req.Branch))
	for i, s := range req.Branch {
		h, err := decodeHash(fmt.Sprintf("branch[%d]", i), s)
		if err != nil {
			return relay.Info{}, err
		}
		branch = append(branch, h)
	}
	return relay.Info{BlockHash: blockHash, Proof: chain.MerkleProof{TxIndex: req.TxIndex, Branch: branch}}, nil
}

func fromRelayInfo(info relay.Info) (blockHash string, branch []string) {
	branch = make([]string, 0, len(info.Proof.Branch))
	for _, h := range info.Proof.Branch {
		branch = append(branch, h.String())
	}
	return info.BlockHash.String(), branch
}

func toTxState(s model.TxState) txStateJSON {
	return txStateJSON{Kind: s.Kind.String(), Result: s.Result.String()}
}

func fromTxState(j txStateJSON) (model.TxState, error) {
	var s model.TxState
	switch j.Kind {
	case model.TxIrrelevant.String():
		s.Kind = model.TxIrrelevant
	case model.TxDeposit.String():
		s.Kind = model.TxDeposit
	case model.TxWithdrawal.String():
		s.Kind = model.TxWithdrawal
	case model.TxTrusteeTransition.String():
		s.Kind = model.TxTrusteeTransition
	default:
		return s, fmt.Errorf("unknown tx kind %q", j.Kind)
	}
	switch j.Result {
	case model.TxSuccess.String():
		s.Result = model.TxSuccess
	case model.TxFailure.String():
		s.Result = model.TxFailure
	default:
		return s, fmt.Errorf("unknown tx result %q", j.Result)
	}
	return s, nil
}

func toSession(s *model.TrusteeSession) *sessionJSON {
	if s == nil {
		return nil
	}
	out := &sessionJSON{
		Number:    s.Number,
		Threshold: s.Threshold,
		Trustees:  make([]trusteeJSON, 0, len(s.Trustees)),
		Hot:       toAddress(s.Hot),
		Cold:      toAddress(s.Cold),
	}
	for _, t := range s.Trustees {
		out.Trustees = append(out.Trustees, trusteeJSON{
			Account:    string(t.Account),
			HotPubKey:  hex.EncodeToString(t.HotPubKey),
			ColdPubKey: hex.EncodeToString(t.ColdPubKey),
		})
	}
	if s.PreviousHot != nil {
		prev := toAddress(*s.PreviousHot)
		out.PreviousHot = &prev
	}
	if s.PreviousCold != nil {
		prev := toAddress(*s.PreviousCold)
		out.PreviousCold = &prev
	}
	return out
}

func toAddress(a model.AddressInfo) addressJSON {
	return addressJSON{Address: a.Address, RedeemScript: hex.EncodeToString(a.RedeemScript)}
}

func toProposal(p *model.WithdrawalProposal) (*proposalJSON, error) {
	if p == nil {
		return nil, nil
	}
	raw, err := txHex(p.Tx)
	if err != nil {
		return nil, err
	}
	out := &proposalJSON{
		IDs:        make([]uint32, 0, len(p.IDs)),
		Tx:         raw,
		Approvals:  uint32(p.Approvals),
		Rejections: uint32(p.Rejections),
		State:      p.State.String(),
	}
	if p.Tx != nil {
		out.TxHash = p.Tx.TxHash().String()
	}
	for _, id := range p.IDs {
		out.IDs = append(out.IDs, uint32(id))
	}
	return out, nil
}

func toWithdrawalIDs(ids []uint32) []model.WithdrawalID {
	out := make([]model.WithdrawalID, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.WithdrawalID(id))
	}
	return out
}

func toCustody(v chain.CustodyView) (custodyJSON, error) {
	raw, err := txHex(v.Proposal)
	if err != nil {
		return custodyJSON{}, err
	}
	return custodyJSON{
		Hot:          v.Hot,
		Cold:         v.Cold,
		PreviousHot:  v.PreviousHot,
		PreviousCold: v.PreviousCold,
		Proposal:     raw,
	}, nil
}

func fromCustody(j custodyJSON) (chain.CustodyView, error) {
	v := chain.CustodyView{Hot: j.Hot, Cold: j.Cold, PreviousHot: j.PreviousHot, PreviousCold: j.PreviousCold}
	if j.Proposal == "" {
		return v, nil
	}
	raw, err := decodeHex("proposal", j.Proposal)
	if err != nil {
		return v, err
	}
	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return v, model.Wrap(model.KindDeserialize, "proposal", err)
	}
	v.Proposal = tx
	return v, nil
}

func toPendingDeposits(in []model.PendingDeposit) []pendingDepositJSON {
	out := make([]pendingDepositJSON, 0, len(in))
	for _, d := range in {
		out = append(out, pendingDepositJSON{TxHash: d.TxHash.String(), Value: d.Value, Height: d.Height})
	}
	return out
}

func toStatus(st bridge.Status) (statusResponse, error) {
	proposal, err := toProposal(st.Proposal)
	if err != nil {
		return statusResponse{}, err
	}
	pending := st.PendingAddresses
	if pending == nil {
		pending = []string{}
	}
	return statusResponse{
		Chain:             st.Chain.String(),
		Initialized:       st.Initialized,
		Genesis:           toChainIndex(st.Genesis),
		Best:              toChainIndex(st.Best),
		Confirmed:         toChainIndex(st.Confirmed),
		ConfirmationDepth: st.ConfirmationDepth,
		Session:           toSession(st.Session),
		Proposal:          proposal,
		PendingAddresses:  pending,
		LastEvent:         st.LastEvent,
	}, nil
}

func toEvents(records []events.Record) []eventJSON {
	out := make([]eventJSON, 0, len(records))
	for _, r := range records {
		out = append(out, eventJSON{
			Sequence:  r.Sequence,
			Kind:      r.Kind,
			Payload:   r.Payload,
			CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}

func txHex(tx *wire.MsgTx) (string, error) {
	if tx == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf.Bytes()), nil
}
