package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"elevate.dev/internal/mail"
)

const maxContactBody = 64 << 10

// ContactHandler relays contact-form submissions
type ContactHandler struct {
	mailer  mail.Mailer
	timeout time.Duration
	logger  *zap.Logger
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(m mail.Mailer, timeout time.Duration, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{mailer: m, timeout: timeout, logger: logger}
}

// Send handles POST /api/contact
func (h *ContactHandler) Send(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxContactBody))
	dec.DisallowUnknownFields()

	var msg mail.ContactMessage
	if err := dec.Decode(&msg); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		respondError(w, http.StatusBadRequest, []string{invalidBodyMessage(err)})
		return
	}
	if dec.More() {
		respondError(w, http.StatusBadRequest, []string{"request body must be a single JSON object"})
		return
	}

	if problems := msg.Validate(); problems != nil {
		respondError(w, http.StatusBadRequest, problems)
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	if err := h.mailer.Send(ctx, msg); err != nil {
		h.logger.Error("contact relay failed",
			zap.Error(err),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)
		respondError(w, http.StatusBadGateway, "Could not send your message, please try again later")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func invalidBodyMessage(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return "request body is required"
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return "request body is not valid JSON"
	case errors.As(err, &typeErr):
		return typeErr.Field + " must be a string"
	default:
		// unknown fields surface as `json: unknown field "x"`
		return err.Error()
	}
}
