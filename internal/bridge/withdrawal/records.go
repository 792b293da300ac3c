package withdrawal

import (
	"fmt"
	"io"

	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/storage"
)

// One withdrawal per output, bounded by what fits a standard transaction.
const maxProposalIDs = 1000

func proposalKey(chain model.Chain) []byte {
	return storage.Key("prop/", []byte(chain.String()))
}

func encodeProposal(p *model.WithdrawalProposal) ([]byte, error) {
	var enc storage.Encoder
	enc.Uint(uint64(len(p.IDs)))
	for _, id := range p.IDs {
		enc.Uint(uint64(id))
	}
	enc.Encode(p.Tx.Serialize)
	enc.Uint(uint64(p.Approvals))
	enc.Uint(uint64(p.Rejections))
	enc.Uint(uint64(p.State))
	return enc.Finish()
}

func decodeProposal(raw []byte) (*model.WithdrawalProposal, error) {
	dec := storage.NewDecoder(raw)
	n := dec.Uint()
	if n > maxProposalIDs {
		return nil, fmt.Errorf("proposal lists %d ids", n)
	}
	p := &model.WithdrawalProposal{Tx: new(wire.MsgTx)}
	for i := uint64(0); i < n; i++ {
		p.IDs = append(p.IDs, model.WithdrawalID(dec.Uint32()))
	}
	dec.Decode(func(r io.Reader) error { return p.Tx.Deserialize(r) })
	p.Approvals = model.VoteBits(dec.Uint32())
	p.Rejections = model.VoteBits(dec.Uint32())
	p.State = model.ProposalState(dec.Uint())
	if err := dec.Finish(); err != nil {
		return nil, err
	}
	return p, nil
}
