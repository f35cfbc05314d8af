package handlers

import (
	"net/http"

	"github.com/Dias221467/Questline/internal/engine"
	"github.com/Dias221467/Questline/internal/models"
	"github.com/Dias221467/Questline/internal/services"
	"github.com/sirupsen/logrus"
)

// JourneyHandler serves journeys and the active journey view. Sessions
// holds the per-user snapshot cache shared by all of a user's requests.
type JourneyHandler struct {
	Service  *services.JourneyService
	Sessions *engine.Registry
}

func NewJourneyHandler(service *services.JourneyService, sessions *engine.Registry) *JourneyHandler {
	return &JourneyHandler{Service: service, Sessions: sessions}
}

// GET /journeys
func (h *JourneyHandler) ListJourneysHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	journeys, err := h.Service.ListJourneys(r.Context(), userID)
	if err != nil {
		writeError(w, "list_journeys", err)
		return
	}
	writeJSON(w, http.StatusOK, journeys)
}

// POST /journeys
func (h *JourneyHandler) CreateJourneyHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var in services.CreateJourneyInput
	if !decodeJSON(w, r, &in) {
		return
	}

	journey, err := h.Service.CreateJourney(r.Context(), h.Sessions.For(userID), in)
	if err != nil {
		writeError(w, "create_journey", err)
		return
	}
	logrus.WithFields(logrus.Fields{"userID": userID.Hex(), "journeyID": journey.ID.Hex()}).Info("Journey created")
	writeJSON(w, http.StatusCreated, journey)
}

// GET /journeys/active
func (h *JourneyHandler) ActiveJourneyHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	sess := h.Sessions.For(userID)
	if r.URL.Query().Get("refresh") == "true" {
		sess.Invalidate()
	}
	view, err := h.Service.View(r.Context(), sess)
	if err != nil {
		writeError(w, "active_journey", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GET /journeys/{id}
func (h *JourneyHandler) GetJourneyHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	view, err := h.Service.DescribeJourney(r.Context(), userID, id)
	if err != nil {
		writeError(w, "get_journey", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// PATCH /journeys/{id}
func (h *JourneyHandler) UpdateJourneyHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var upd models.JourneyUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}

	journey, err := h.Service.UpdateJourney(r.Context(), h.Sessions.For(userID), id, upd)
	if err != nil {
		writeError(w, "update_journey", err)
		return
	}
	writeJSON(w, http.StatusOK, journey)
}

// DELETE /journeys/{id}
func (h *JourneyHandler) DeleteJourneyHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.DeleteJourney(r.Context(), h.Sessions.For(userID), id); err != nil {
		writeError(w, "delete_journey", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Journey deleted"})
}

// POST /journeys/{id}/start
func (h *JourneyHandler) StartJourneyHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	journey, err := h.Service.StartJourney(r.Context(), h.Sessions.For(userID), id)
	if err != nil {
		writeError(w, "start_journey", err)
		return
	}
	writeJSON(w, http.StatusOK, journey)
}

// POST /journeys/{id}/complete
func (h *JourneyHandler) CompleteJourneyHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	journey, err := h.Service.CompleteJourney(r.Context(), h.Sessions.For(userID), id)
	if err != nil {
		writeError(w, "complete_journey", err)
		return
	}
	writeJSON(w, http.StatusOK, journey)
}
