package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mohammed-shakir/incident-explorer/internal/core/model"
	"github.com/mohammed-shakir/incident-explorer/internal/core/observability"
	"github.com/mohammed-shakir/incident-explorer/internal/filter"
)

// receives validated filter params and serves them
type QueryHandler interface {
	HandleQuery(ctx context.Context, w http.ResponseWriter, r *http.Request, p filter.Params)
}

// parses and validates query params and calls the handler
func HandleQuery(logger *slog.Logger, cat filter.Catalog, h QueryHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		p, err := ParseQueryParams(r, cat)
		if err == nil {
			err = filter.Validate(p, cat)
		}
		if err != nil {
			logger.DebugContext(r.Context(), "rejected query", "err", err)
			observability.IncQueryError("invalid_parameter")
			WriteError(sw, err)
			observability.ObserveHTTP(r.Method, "/query", sw.code, time.Since(start).Seconds())
			return
		}

		h.HandleQuery(r.Context(), sw, r, p)
		observability.ObserveHTTP(r.Method, "/query", sw.code, time.Since(start).Seconds())
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

// WriteError maps ErrInvalidParameter to 400 and everything else to 500.
func WriteError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	body := errorBody{Error: "internal error"}

	var pe *model.ParamError
	switch {
	case errors.As(err, &pe):
		code = http.StatusBadRequest
		body = errorBody{Error: pe.Reason, Field: pe.Field, Value: pe.Value}
	case errors.Is(err, model.ErrInvalidParameter):
		code = http.StatusBadRequest
		body.Error = err.Error()
	}
	_ = WriteJSON(w, code, body)
}

// WriteJSON encodes v before any header is sent. When v cannot be encoded
// the client gets a 500 and the encoding error is returned.
func WriteJSON(w http.ResponseWriter, code int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}` + "\n"))
		return fmt.Errorf("encode response: %w", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, err = w.Write(append(b, '\n'))
	return err
}
