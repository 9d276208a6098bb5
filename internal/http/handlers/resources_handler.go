package handlers

import (
	"net/http"

	"evreserve/internal/service"
)

// NewResourcesHandler returns GET /api/resources handler.
func NewResourcesHandler(svc *service.ReservationsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resources, err := svc.ListResources(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to fetch resources")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"resources": resources})
	}
}
