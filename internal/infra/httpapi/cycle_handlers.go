package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

// addCycle handles POST /api/cycle/add
func (h *handlers) addCycle(w http.ResponseWriter, r *http.Request) {
	var req cycleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	candidate, err := req.toDomain()
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	admitted, err := h.cycles.AdmitCycle(r.Context(), candidate)
	if err != nil {
		h.writeServiceError(w, "admit_cycle", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCycleResponse(admitted))
}

// deleteCycle handles DELETE /api/cycle/delete/{cycleId}
func (h *handlers) deleteCycle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["cycleId"]
	if err := h.cycles.DeleteCycle(r.Context(), id); err != nil {
		h.writeServiceError(w, "delete_cycle", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// listCycles handles GET /api/cycle/all
func (h *handlers) listCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.cycles.ListAll(r.Context())
	if err != nil {
		h.writeServiceError(w, "list_cycles", err)
		return
	}
	if len(cycles) == 0 {
		writeErrorMessage(w, http.StatusNotFound, "no cycles found")
		return
	}
	writeJSON(w, http.StatusOK, toCycleResponses(cycles))
}

// cycleHistory handles GET /api/cycle/history/{userId}/{mdn}
func (h *handlers) cycleHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	cycles, err := h.cycles.History(r.Context(), vars["userId"], vars["mdn"])
	if err != nil {
		h.writeServiceError(w, "cycle_history", err)
		return
	}
	if len(cycles) == 0 {
		writeErrorMessage(w, http.StatusNotFound, "no cycles found for this subscriber and number")
		return
	}
	writeJSON(w, http.StatusOK, toCycleResponses(cycles))
}

// activeCycle handles GET /api/cycle/active/{userId}/{mdn}
func (h *handlers) activeCycle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	active, err := h.cycles.ActiveCycle(r.Context(), vars["userId"], vars["mdn"])
	if err != nil {
		h.writeServiceError(w, "active_cycle", err)
		return
	}
	writeJSON(w, http.StatusOK, toCycleResponse(active))
}
