package transport

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/chain"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/relay"
	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
)

// Client talks to a remote bridge over the REST routes. Bridge rejections come back as
// *model.Error values of the reported kind.
type Client struct {
	baseURL   string
	http      *http.Client
	marshaler gwruntime.Marshaler
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: timeout},
		marshaler: &gwruntime.JSONBuiltin{},
	}
}

func (c *Client) Tips(ctx context.Context) (best, confirmed model.ChainIndex, err error) {
	var resp tipsResponse
	if _, err = c.do(ctx, http.MethodGet, "/v1/tips", nil, &resp); err != nil {
		return best, confirmed, err
	}
	if best, err = fromChainIndex(resp.Best); err != nil {
		return best, confirmed, err
	}
	confirmed, err = fromChainIndex(resp.Confirmed)
	return best, confirmed, err
}

func (c *Client) MainHashAt(ctx context.Context, height uint32) (chainhash.Hash, bool, error) {
	var resp mainHashResponse
	code, err := c.do(ctx, http.MethodGet, "/v1/chain/"+strconv.FormatUint(uint64(height), 10), nil, &resp)
	if code == http.StatusNotFound {
		return chainhash.Hash{}, false, nil
	}
	if err != nil {
		return chainhash.Hash{}, false, err
	}
	hash, err := decodeHash("hash", resp.Hash)
	return hash, err == nil, err
}

func (c *Client) CustodyView(ctx context.Context) (chain.CustodyView, error) {
	var resp custodyJSON
	if _, err := c.do(ctx, http.MethodGet, "/v1/custody", nil, &resp); err != nil {
		return chain.CustodyView{}, err
	}
	return fromCustody(resp)
}

func (c *Client) PushHeader(ctx context.Context, raw []byte) error {
	_, err := c.do(ctx, http.MethodPost, "/v1/headers", headerRequest{Raw: hex.EncodeToString(raw)}, nil)
	return err
}

func (c *Client) PushTransaction(ctx context.Context, raw []byte, info relay.Info, prev []byte) (model.TxState, error) {
	blockHash, branch := fromRelayInfo(info)
	req := transactionRequest{
		Raw:       hex.EncodeToString(raw),
		BlockHash: blockHash,
		TxIndex:   info.Proof.TxIndex,
		Branch:    branch,
		Prev:      hex.EncodeToString(prev),
	}
	var resp txStateJSON
	if _, err := c.do(ctx, http.MethodPost, "/v1/transactions", req, &resp); err != nil {
		return model.TxState{}, err
	}
	return fromTxState(resp)
}

// do sends body as JSON and decodes a 2xx answer into out. It returns the status code even on error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		buf, err := c.marshaler.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal %s: %w", path, err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build request %s: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", c.marshaler.ContentType(body))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, c.decodeError(method, path, resp)
	}
	if out == nil {
		return resp.StatusCode, nil
	}
	if err := c.marshaler.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return resp.StatusCode, nil
}

func (c *Client) decodeError(method, path string, resp *http.Response) error {
	var e errorResponse
	if err := c.marshaler.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&e); err != nil {
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	if kind, ok := model.ParseErrorKind(e.Kind); ok {
		return &model.Error{Kind: kind, Msg: strings.TrimPrefix(e.Message, e.Kind+": ")}
	}
	return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, e.Message)
}
