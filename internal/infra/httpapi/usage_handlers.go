package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

// addUsage handles POST /api/daily-usage/add
func (h *handlers) addUsage(w http.ResponseWriter, r *http.Request) {
	var req usageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	candidate, err := req.toDomain()
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	recorded, err := h.usage.RecordUsage(r.Context(), candidate)
	if err != nil {
		h.writeServiceError(w, "record_usage", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUsageResponse(recorded))
}

// deleteUsage handles DELETE /api/daily-usage/delete/{usageId}
func (h *handlers) deleteUsage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["usageId"]
	if err := h.usage.DeleteUsage(r.Context(), id); err != nil {
		h.writeServiceError(w, "delete_usage", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// updateUsage handles PUT /api/daily-usage/update/{mdn}/{usageDate}
func (h *handlers) updateUsage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	date, err := parseInstant("usageDate", vars["usageDate"])
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UsedInMB == nil {
		writeErrorMessage(w, http.StatusBadRequest, "usedInMb is required")
		return
	}

	updated, err := h.usage.UpdateAmount(r.Context(), date, vars["mdn"], *req.UsedInMB)
	if err != nil {
		h.writeServiceError(w, "update_usage", err)
		return
	}
	writeJSON(w, http.StatusOK, toUsageResponse(updated))
}

// listUsage handles GET /api/daily-usage/all
func (h *handlers) listUsage(w http.ResponseWriter, r *http.Request) {
	entries, err := h.usage.ListAll(r.Context())
	if err != nil {
		h.writeServiceError(w, "list_usage", err)
		return
	}
	writeJSON(w, http.StatusOK, toUsageResponses(entries))
}

// usageHistory handles GET /api/daily-usage/history/{userId}/{mdn}
// A subscriber without any cycle gets 404, not an empty list.
func (h *handlers) usageHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	entries, err := h.usage.History(r.Context(), vars["userId"], vars["mdn"])
	if err != nil {
		h.writeServiceError(w, "usage_history", err)
		return
	}
	writeJSON(w, http.StatusOK, toUsageResponses(entries))
}
