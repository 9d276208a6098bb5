package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"evreserve/internal/service"
	"evreserve/internal/timeutil"
)

// ReservationsHandler serves the public reservation endpoints.
type ReservationsHandler struct {
	svc        *service.ReservationsService
	normalizer *timeutil.Normalizer
}

// NewReservationsHandler returns handler.
func NewReservationsHandler(svc *service.ReservationsService, normalizer *timeutil.Normalizer) *ReservationsHandler {
	return &ReservationsHandler{svc: svc, normalizer: normalizer}
}

type createReservationRequest struct {
	ResourceID   int64  `json:"resource_id"`
	Plate        string `json:"plate"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	ContactEmail string `json:"contact_email"`
}

// HandleCreate serves POST /api/reservations.
func (h *ReservationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start, err := h.normalizer.ParseTimestamp(req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_time")
		return
	}
	end, err := h.normalizer.ParseTimestamp(req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_time")
		return
	}

	res, err := h.svc.CreateReservation(r.Context(), service.CreateReservationInput{
		ResourceID:   req.ResourceID,
		Plate:        req.Plate,
		StartTime:    start,
		EndTime:      end,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// HandleListByDate serves GET /api/reservations?date=2006-01-02&resource_id=1.
func (h *ReservationsHandler) HandleListByDate(w http.ResponseWriter, r *http.Request) {
	day, err := h.normalizer.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid or missing date")
		return
	}

	var resourceID int64
	if raw := r.URL.Query().Get("resource_id"); raw != "" {
		resourceID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || resourceID <= 0 {
			writeError(w, http.StatusBadRequest, "invalid resource_id")
			return
		}
	}

	reservations, err := h.svc.ListReservationsByDate(r.Context(), day, resourceID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"reservations": reservations})
}

// HandleListForOwner serves GET /api/reservations/owner?email=&plate=.
func (h *ReservationsHandler) HandleListForOwner(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	reservations, err := h.svc.ListReservationsForOwner(r.Context(), query.Get("email"), query.Get("plate"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"reservations": reservations})
}

// HandleActive serves GET /api/reservations/active?plate=&at=.
func (h *ReservationsHandler) HandleActive(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var at time.Time
	if raw := query.Get("at"); raw != "" {
		var err error
		at, err = h.normalizer.ParseTimestamp(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid at timestamp")
			return
		}
	}

	res, err := h.svc.FindActiveReservation(r.Context(), query.Get("plate"), at)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if res == nil {
		writeError(w, http.StatusNotFound, "no active reservation")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// HandleDeleteForOwner serves DELETE /api/reservations/{id}?email=&plate=.
func (h *ReservationsHandler) HandleDeleteForOwner(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	query := r.URL.Query()

	removed, err := h.svc.DeleteReservationForOwner(r.Context(), id, query.Get("email"), query.Get("plate"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "reservation not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
