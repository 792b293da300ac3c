// Package transport exposes the bridge over gRPC health checks and a JSON REST gateway.
package transport

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

const (
	maxBodyBytes      = 4 << 20
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

var errNoEventStore = errors.New("event archive is not configured")

// Handler serves the bridge REST routes.
type Handler struct {
	bridge    Bridge
	events    EventStore
	auth      Auth
	marshaler gwruntime.Marshaler
	logger    *zap.Logger
}

// NewHandler builds a Handler. events may be nil, /v1/events then answers 501.
func NewHandler(b Bridge, events EventStore, auth Auth, logger *zap.Logger) *Handler {
	return &Handler{
		bridge:    b,
		events:    events,
		auth:      auth,
		marshaler: &gwruntime.JSONBuiltin{},
		logger:    logger.Named("transport"),
	}
}

type route struct {
	method  string
	pattern string
	handle  gwruntime.HandlerFunc
}

func (h *Handler) routes() []route {
	return []route{
		{http.MethodGet, "/v1/status", h.status},
		{http.MethodGet, "/v1/tips", h.tips},
		{http.MethodGet, "/v1/chain/{height}", h.mainHashAt},
		{http.MethodGet, "/v1/headers/{hash}", h.header},
		{http.MethodPost, "/v1/headers", h.pushHeader},
		{http.MethodGet, "/v1/transactions/{hash}", h.txState},
		{http.MethodPost, "/v1/transactions", h.pushTransaction},
		{http.MethodGet, "/v1/custody", h.custody},
		{http.MethodGet, "/v1/session", h.session},
		{http.MethodPost, "/v1/trustees", h.transitionTrustees},
		{http.MethodPost, "/v1/proposals", h.createProposal},
		{http.MethodPost, "/v1/proposals/signatures", h.signProposal},
		{http.MethodDelete, "/v1/proposals", h.removeProposal},
		{http.MethodGet, "/v1/deposits/{address}", h.pendingDeposits},
		{http.MethodDelete, "/v1/deposits/{address}", h.removePendingDeposit},
		{http.MethodGet, "/v1/addresses/{address}", h.verifyAddress},
		{http.MethodGet, "/v1/events", h.eventsSince},
	}
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *gwruntime.ServeMux) error {
	for _, r := range h.routes() {
		if err := mux.HandlePath(r.method, r.pattern, r.handle); err != nil {
			return fmt.Errorf("register %s %s: %w", r.method, r.pattern, err)
		}
	}
	return nil
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	st, err := h.bridge.Status()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := toStatus(st)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, http.StatusOK, resp)
}

func (h *Handler) tips(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	best, confirmed, err := h.bridge.Tips()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, http.StatusOK, tipsResponse{Best: toChainIndex(best), Confirmed: toChainIndex(confirmed)})
}

func (h *Handler) mainHashAt(w http.ResponseWriter, r *http.Request, params map[string]string) {
	height, err := strconv.ParseUint(params["height"], 10, 32)
	if err != nil {
		h.fail(w, r, model.Wrap(model.KindDeserialize, "height", err))
		return
	}
	hash, ok, err := h.bridge.MainHashAt(uint32(height))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !ok {
		h.notFound(w, fmt.Sprintf("no main-chain header at %d", height))
		return
	}
	h.write(w, http.StatusOK, mainHashResponse{Height: uint32(height), Hash: hash.String()})
}

func (h *Handler) header(w http.ResponseWriter, r *http.Request, params map[string]string) {
	hash, err := decodeHash("hash", params["hash"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rec, err := h.bridge.Header(hash)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if rec == nil {
		h.notFound(w, fmt.Sprintf("unknown header %s", hash))
		return
	}
	raw, err := headerHex(rec)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, http.StatusOK, headerResponse{
		Hash:      rec.Hash.String(),
		Height:    rec.Height,
		PrevBlock: rec.Header.PrevBlock.String(),
		Raw:       raw,
	})
}

func (h *Handler) pushHeader(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req headerRequest
	if !h.decode(w, r, &req) {
		return
	}
	raw, err := decodeHex("raw", req.Raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	idx, err := h.bridge.PushHeader(r.Context(), raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, http.StatusOK, toChainIndex(idx))
}

func (h *Handler) txState(w http.ResponseWriter, r *http.Request, params map[string]string) {
	hash, err := decodeHash("hash", params["hash"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	state, ok, err := h.bridge.TxState(hash)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !ok {
		h.notFound(w, fmt.Sprintf("transaction %s was not relayed", hash))
		return
	}
	h.write(w, http.StatusOK, toTxState(state))
}

func (h *Handler) pushTransaction(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req transactionRequest
	if !h.decode(w, r, &req) {
		return
	}
	raw, err := decodeHex("raw", req.Raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	prev, err := decodeHex("prev", req.Prev)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	info, err := toRelayInfo(req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	state, err := h.bridge.PushTransaction(r.Context(), raw, info, prev)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, http.StatusOK, toTxState(state))
}

func (h *Handler) custody(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	view, err := h.bridge.CustodyView()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := toCustody(view)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, http.StatusOK, resp)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	s, err := h.bridge.Session()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, http.StatusOK, toSession(s))
}

func (h *Handler) transitionTrustees(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req transitionRequest
	if !h.decode(w, r, &req) {
		return
	}
	trustees, err := toTrustees(req.Trustees)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	origin, err := h.auth.caller(r, model.AccountID(req.Origin.Account))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.bridge.TransitionTrustees(r.Context(), origin, trustees)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, http.StatusOK, toSession(s))
}

func (h *Handler) createProposal(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req proposalRequest
	if !h.decode(w, r, &req) {
		return
	}
	raw, err := decodeHex("raw", req.Raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	proposer, err := h.auth.trustee(r, model.AccountID(req.Proposer))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.bridge.CreateProposal(r.Context(), proposer, toWithdrawalIDs(req.IDs), raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeProposal(w, r, p)
}

func (h *Handler) signProposal(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req signatureRequest
	if !h.decode(w, r, &req) {
		return
	}
	raw, err := decodeHex("raw", req.Raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	signer, err := h.auth.trustee(r, model.AccountID(req.Signer))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.bridge.SignProposal(r.Context(), signer, raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeProposal(w, r, p)
}

func (h *Handler) removeProposal(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req removeProposalRequest
	if !h.decode(w, r, &req) {
		return
	}
	origin, err := h.auth.caller(r, model.AccountID(req.Origin.Account))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.bridge.RemoveProposal(r.Context(), origin); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pendingDeposits(w http.ResponseWriter, r *http.Request, params map[string]string) {
	deposits, err := h.bridge.PendingDeposits(params["address"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, http.StatusOK, toPendingDeposits(deposits))
}

func (h *Handler) removePendingDeposit(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var req removeDepositRequest
	if !h.decode(w, r, &req) {
		return
	}
	var account *model.AccountID
	if req.Account != nil {
		a := model.AccountID(*req.Account)
		account = &a
	}
	origin, err := h.auth.caller(r, model.AccountID(req.Origin.Account))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	address := params["address"]
	total, err := h.bridge.RemovePendingDeposit(r.Context(), origin, address, account)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, http.StatusOK, removeDepositResponse{Address: address, Total: total})
}

func (h *Handler) verifyAddress(w http.ResponseWriter, r *http.Request, params map[string]string) {
	address := params["address"]
	err := h.bridge.VerifyAddress(address)
	switch {
	case err == nil:
		h.write(w, http.StatusOK, verifyResponse{Address: address, Valid: true})
	case errors.Is(err, model.ErrInvalidAddress):
		h.write(w, http.StatusOK, verifyResponse{Address: address, Reason: err.Error()})
	default:
		h.fail(w, r, err)
	}
}

func (h *Handler) eventsSince(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	if h.events == nil {
		h.write(w, http.StatusNotImplemented, errorResponse{Message: errNoEventStore.Error()})
		return
	}
	q := r.URL.Query()
	var after uint64
	if s := q.Get("after"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			h.fail(w, r, model.Wrap(model.KindDeserialize, "after", err))
			return
		}
		after = v
	}
	limit := defaultEventLimit
	if s := q.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			h.fail(w, r, model.Errorf(model.KindDeserialize, "limit %q", s))
			return
		}
		limit = min(v, maxEventLimit)
	}
	records, err := h.events.EventsSince(r.Context(), after, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, http.StatusOK, toEvents(records))
}

func (h *Handler) writeProposal(w http.ResponseWriter, r *http.Request, p *model.WithdrawalProposal) {
	resp, err := toProposal(p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, http.StatusOK, resp)
}

// decode reads a JSON body into v and answers 400 itself when it cannot.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := h.marshaler.NewDecoder(body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		h.fail(w, r, model.Wrap(model.KindDeserialize, "request body", err))
		return false
	}
	return true
}

func (h *Handler) write(w http.ResponseWriter, code int, v any) {
	buf, err := h.marshaler.Marshal(v)
	if err != nil {
		h.logger.Error("marshal response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", h.marshaler.ContentType(v))
	w.WriteHeader(code)
	if _, err := w.Write(buf); err != nil {
		h.logger.Debug("write response", zap.Error(err))
	}
}

func (h *Handler) notFound(w http.ResponseWriter, msg string) {
	h.write(w, http.StatusNotFound, errorResponse{Message: msg})
}

// fail answers with the bridge error kind and a status derived from it.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := httpStatus(err)
	resp := errorResponse{Message: err.Error()}
	if kind := model.KindOf(err); kind != 0 {
		resp.Kind = kind.String()
	}
	if code >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	h.write(w, code, resp)
}

func httpStatus(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, errUnauthorized) {
		return http.StatusUnauthorized
	}
	switch model.KindOf(err) {
	case 0:
		return http.StatusInternalServerError
	case model.KindNotInitialized:
		return http.StatusServiceUnavailable
	case model.KindDeserialize, model.KindInvalidAddress, model.KindInvalidPublicKey, model.KindInvalidGenesis:
		return http.StatusBadRequest
	case model.KindNotTrustee, model.KindRequireAdmin:
		return http.StatusForbidden
	case model.KindUnknownBlock, model.KindNoProposal:
		return http.StatusNotFound
	case model.KindExistingHeader, model.KindReplayedTx, model.KindProposalExists,
		model.KindDuplicateVote, model.KindAlreadyInitialized:
		return http.StatusConflict
	case model.KindProcessTxFailed:
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

func headerHex(rec *model.HeaderRecord) (string, error) {
	var buf bytes.Buffer
	if err := rec.Header.Serialize(&buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf.Bytes()), nil
}
