package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

// listSubscribers handles GET /api/user
func (h *handlers) listSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subscribers.ListAll(r.Context())
	if err != nil {
		h.writeServiceError(w, "list_subscribers", err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriberResponses(subs))
}

// createSubscriber handles POST /api/user/create
func (h *handlers) createSubscriber(w http.ResponseWriter, r *http.Request) {
	var req subscriberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.subscribers.Create(r.Context(), req.toDomain())
	if err != nil {
		h.writeServiceError(w, "create_subscriber", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSubscriberResponse(created))
}

// updateSubscriber handles POST /api/user/update/{userId}
func (h *handlers) updateSubscriber(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["userId"]

	var req subscriberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.subscribers.Update(r.Context(), id, req.toDomain())
	if err != nil {
		h.writeServiceError(w, "update_subscriber", err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriberResponse(updated))
}

// deleteSubscriber handles DELETE /api/user/delete/{userId}
func (h *handlers) deleteSubscriber(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["userId"]

	report, err := h.subscribers.Delete(r.Context(), id)
	if err != nil {
		if report != nil && len(report.Steps) > 0 {
			// Earlier cascade steps are already applied; tell the caller which.
			h.logger.WithError(err).WithField("subscriber_id", id).Error("Subscriber delete stopped partway")
			writeJSON(w, http.StatusInternalServerError, deleteSubscriberResponse{
				Report: report,
				Error:  "delete stopped partway, completed steps are listed in the report",
			})
			return
		}
		h.writeServiceError(w, "delete_subscriber", err)
		return
	}
	writeJSON(w, http.StatusOK, deleteSubscriberResponse{Report: report})
}

// searchSubscriber handles GET /api/user/search/{email}
func (h *handlers) searchSubscriber(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]

	found, err := h.subscribers.GetByEmail(r.Context(), email)
	if err != nil {
		h.writeServiceError(w, "search_subscriber", err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriberResponse(found))
}

// transferMDN handles POST /api/user/transfer/{targetId}/{sourceId}
func (h *handlers) transferMDN(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	target, source, err := h.subscribers.TransferMDN(r.Context(), vars["targetId"], vars["sourceId"])
	if err != nil {
		h.writeServiceError(w, "transfer_mdn", err)
		return
	}
	writeJSON(w, http.StatusOK, transferResponse{
		Target: toSubscriberResponse(target),
		Source: toSubscriberResponse(source),
	})
}
