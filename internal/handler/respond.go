package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/kv"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

// decodeBody decodes a JSON request body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// writeDomainError maps domain errors to HTTP responses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *order.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:    http.StatusUnprocessableEntity,
			Message: vErr.Error(),
			Fields:  vErr.Fields,
		})
		return
	}

	var qErr *cart.QuantityError
	if errors.As(err, &qErr) {
		writeError(w, http.StatusUnprocessableEntity, qErr.Error())
		return
	}

	switch {
	case errors.Is(err, product.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, order.ErrEmptyCart):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, order.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "shutting down")
		return
	}

	lg := zctx.From(r.Context())
	var pErr *kv.PersistenceError
	if errors.As(err, &pErr) {
		lg.Error("Persistence failed", zap.String("key", pErr.Key), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}

	lg.Error("Request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
