package handle

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"study-buddy/api/internal/store"
)

const errNoStorage = "storage is not configured"

type scansResponse struct {
	Success bool         `json:"success"`
	Scans   []store.Scan `json:"scans"`
}

type scanResponse struct {
	Success bool        `json:"success"`
	Scan    *store.Scan `json:"scan"`
}

func (h *Handle) ListScans(w http.ResponseWriter, r *http.Request) {
	if h.scans == nil {
		writeError(w, http.StatusServiceUnavailable, errNoStorage)
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad limit")
			return
		}
		limit = n
	}
	scans, err := h.scans.ListRecent(r.Context(), r.URL.Query().Get("email"), limit)
	if err != nil {
		log.Printf("scans: list: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list scans")
		return
	}
	writeJSON(w, http.StatusOK, scansResponse{Success: true, Scans: scans})
}

func (h *Handle) GetScan(w http.ResponseWriter, r *http.Request) {
	if h.scans == nil {
		writeError(w, http.StatusServiceUnavailable, errNoStorage)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad scan id")
		return
	}
	scan, err := h.scans.Get(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "scan not found")
		return
	case err != nil:
		log.Printf("scans: get %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load scan")
		return
	}
	writeJSON(w, http.StatusOK, scanResponse{Success: true, Scan: scan})
}
