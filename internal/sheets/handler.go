package sheets

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// Handler exposes the raw row source for troubleshooting column layouts.
type Handler struct {
	source   RowSource
	verifier Verifier
}

func NewHandler(source RowSource, verifier Verifier) *Handler {
	return &Handler{
		source:   source,
		verifier: verifier,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/sheets/verify", h.Verify).Methods("GET")
	router.HandleFunc("/api/sheets/range", h.Range).Methods("GET")
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	if h.verifier == nil {
		http.Error(w, "spreadsheet verification is not available", http.StatusNotImplemented)
		return
	}

	info, err := h.verifier.Verify(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) Range(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	a1 := query.Get("range")
	if sheet := query.Get("sheet"); sheet != "" {
		// sheet=VENTAS&range=A:R
		if a1 == "" {
			a1 = sheet
		} else {
			a1 = sheet + "!" + a1
		}
	}
	if a1 == "" {
		http.Error(w, "range parameter is required", http.StatusBadRequest)
		return
	}
	if _, err := ParseA1(a1); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := h.source.FetchRange(r.Context(), a1)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"range": a1,
		"count": len(rows),
		"rows":  rows,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
