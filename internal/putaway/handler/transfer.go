package handler

import (
	"net/http"

	"github.com/tfc-warehouse/putaway-backend/internal/putaway/service"
	"github.com/tfc-warehouse/putaway-backend/pkg/httputil"
	"github.com/tfc-warehouse/putaway-backend/pkg/logger"
)

// TransferHandler handles the two transfer endpoints
type TransferHandler struct {
	service *service.Service
	logger  *logger.Logger
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(svc *service.Service, log *logger.Logger) *TransferHandler {
	return &TransferHandler{
		service: svc,
		logger:  log,
	}
}

// Transfer executes the free-quantity path
// POST /api/putaway/transfer
func (h *TransferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req service.TransferRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	// The gateway token is authoritative for identity; the body field is
	// kept for scanner clients that predate the gateway.
	if userID := httputil.GetUserID(r.Context()); userID != "" {
		req.UserID = userID
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.Transfer(r.Context(), &req)
	if err != nil {
		h.logFailure(r, "transfer failed", err)
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// TransferCommitted executes the committed path
// POST /api/putaway/transfer/committed
func (h *TransferHandler) TransferCommitted(w http.ResponseWriter, r *http.Request) {
	var req service.CommittedTransferRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if userID := httputil.GetUserID(r.Context()); userID != "" {
		req.UserID = userID
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.TransferCommitted(r.Context(), &req)
	if err != nil {
		h.logFailure(r, "committed transfer failed", err)
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

func (h *TransferHandler) logFailure(r *http.Request, msg string, err error) {
	h.logger.Warn().
		Err(err).
		Str("correlation_id", httputil.GetCorrelationID(r.Context())).
		Str("user_id", httputil.GetUserID(r.Context())).
		Msg(msg)
}
