package devnet

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

// AddressVerifier rejects destinations the bridge could not pay.
type AddressVerifier interface {
	VerifyAddress(address string) error
}

// Handler serves the devnet host routes next to the bridge routes.
type Handler struct {
	host      *Host
	verifier  AddressVerifier
	marshaler gwruntime.Marshaler
	logger    *zap.Logger
}

func NewHandler(host *Host, verifier AddressVerifier, logger *zap.Logger) *Handler {
	return &Handler{
		host:      host,
		verifier:  verifier,
		marshaler: &gwruntime.JSONBuiltin{},
		logger:    logger.Named("devnet"),
	}
}

type withdrawalRequest struct {
	Account     string `json:"account"`
	Destination string `json:"destination"`
	Amount      uint64 `json:"amount"`
}

type withdrawalResponse struct {
	ID uint64 `json:"id"`
}

type withdrawalJSON struct {
	ID          uint64 `json:"id"`
	Account     string `json:"account"`
	Destination string `json:"destination"`
	Amount      uint64 `json:"amount"`
	State       string `json:"state"`
}

type balanceResponse struct {
	Account string `json:"account"`
	Balance uint64 `json:"balance"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Register mounts the devnet routes on mux.
func (h *Handler) Register(mux *gwruntime.ServeMux) error {
	routes := []struct {
		method  string
		pattern string
		handle  gwruntime.HandlerFunc
	}{
		{http.MethodPost, "/v1/devnet/withdrawals", h.requestWithdrawal},
		{http.MethodGet, "/v1/devnet/withdrawals", h.withdrawals},
		{http.MethodGet, "/v1/devnet/accounts/{account}", h.balance},
	}
	for _, r := range routes {
		if err := mux.HandlePath(r.method, r.pattern, r.handle); err != nil {
			return fmt.Errorf("register %s %s: %w", r.method, r.pattern, err)
		}
	}
	return nil
}

func (h *Handler) requestWithdrawal(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req withdrawalRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := h.marshaler.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.write(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}
	if req.Account == "" {
		h.write(w, http.StatusBadRequest, errorResponse{Message: "account is required"})
		return
	}
	if err := h.verifier.VerifyAddress(req.Destination); err != nil {
		h.write(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}
	id, err := h.host.RequestWithdrawal(model.AccountID(req.Account), req.Destination, req.Amount)
	if err != nil {
		h.write(w, http.StatusUnprocessableEntity, errorResponse{Message: err.Error()})
		return
	}
	h.logger.Info("withdrawal requested",
		zap.Uint64("id", uint64(id)),
		zap.String("account", req.Account),
		zap.Uint64("amount", req.Amount))
	h.write(w, http.StatusOK, withdrawalResponse{ID: uint64(id)})
}

func (h *Handler) withdrawals(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	records := h.host.Withdrawals()
	out := make([]withdrawalJSON, 0, len(records))
	for _, rec := range records {
		out = append(out, withdrawalJSON{
			ID:          uint64(rec.ID),
			Account:     string(rec.Account),
			Destination: rec.Destination,
			Amount:      rec.Amount,
			State:       rec.State.String(),
		})
	}
	h.write(w, http.StatusOK, out)
}

func (h *Handler) balance(w http.ResponseWriter, _ *http.Request, params map[string]string) {
	account := params["account"]
	h.write(w, http.StatusOK, balanceResponse{
		Account: account,
		Balance: h.host.Balance(model.AccountID(account)),
	})
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
