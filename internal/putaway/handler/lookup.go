package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tfc-warehouse/putaway-backend/internal/putaway/service"
	"github.com/tfc-warehouse/putaway-backend/pkg/httputil"
	"github.com/tfc-warehouse/putaway-backend/pkg/logger"
)

// LookupHandler serves the read-only query surfaces: availability, bin
// validation, remarks, pending transactions and the pickers.
type LookupHandler struct {
	service *service.Service
	logger  *logger.Logger
}

// NewLookupHandler creates a new lookup handler
func NewLookupHandler(svc *service.Service, log *logger.Logger) *LookupHandler {
	return &LookupHandler{
		service: svc,
		logger:  log,
	}
}

// Availability returns the availability snapshot for one lot row
// GET /api/putaway/availability?item_key=&location=&lot_no=&bin_no=
func (h *LookupHandler) Availability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	view, err := h.service.Availability(r.Context(),
		q.Get("item_key"), q.Get("location"), q.Get("lot_no"), q.Get("bin_no"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, view)
}

// ValidateBin checks a destination bin
// GET /api/putaway/bin/{location}/{bin_no}
func (h *LookupHandler) ValidateBin(w http.ResponseWriter, r *http.Request) {
	location := chi.URLParam(r, "location")
	binNo := chi.URLParam(r, "bin_no")

	result, err := h.service.ValidateBin(r.Context(), location, binNo)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// Remarks lists the approved transfer annotations
// GET /api/putaway/remarks
func (h *LookupHandler) Remarks(w http.ResponseWriter, r *http.Request) {
	remarks, err := h.service.ListRemarks(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, remarks)
}

// PendingTransactions lists the active outbound transactions for a lot/bin
// GET /api/putaway/transactions/{lot_no}/{bin_no}
func (h *LookupHandler) PendingTransactions(w http.ResponseWriter, r *http.Request) {
	lotNo := chi.URLParam(r, "lot_no")
	binNo := chi.URLParam(r, "bin_no")

	rows, err := h.service.ListPendingForLotBin(r.Context(), lotNo, binNo)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rows)
}

// Lot returns the scanner's lot detail view
// GET /api/putaway/lot/{lot_no}
func (h *LookupHandler) Lot(w http.ResponseWriter, r *http.Request) {
	lotNo := chi.URLParam(r, "lot_no")

	rows, err := h.service.FindLot(r.Context(), lotNo)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rows)
}

// SearchLots is the paginated lot picker
// GET /api/putaway/lots/search?query=&page=&limit=
func (h *LookupHandler) SearchLots(w http.ResponseWriter, r *http.Request) {
	search, page, limit := searchParams(r)

	rows, total, err := h.service.SearchLots(r.Context(), search, page, limit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, pagedResponse(rows, total, page, limit))
}

// SearchBins is the paginated bin picker
// GET /api/putaway/bins/search?query=&page=&limit=&lot_no=&item_key=&location=
func (h *LookupHandler) SearchBins(w http.ResponseWriter, r *http.Request) {
	search, page, limit := searchParams(r)
	q := r.URL.Query()

	rows, total, err := h.service.SearchBins(r.Context(), search, page, limit,
		q.Get("lot_no"), q.Get("item_key"), q.Get("location"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, pagedResponse(rows, total, page, limit))
}

func searchParams(r *http.Request) (search string, page, limit int) {
	q := r.URL.Query()
	search = q.Get("query")

	page, _ = strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ = strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return search, page, limit
}

func pagedResponse(items interface{}, total int64, page, limit int) map[string]interface{} {
	pages := int(total) / limit
	if int(total)%limit > 0 {
		pages++
	}
	return map[string]interface{}{
		"items": items,
		"total": total,
		"page":  page,
		"pages": pages,
		"limit": limit,
	}
}
