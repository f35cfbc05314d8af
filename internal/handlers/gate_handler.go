package handlers

import (
	"net/http"

	"github.com/Dias221467/Questline/internal/engine"
	"github.com/Dias221467/Questline/internal/services"
)

type GateHandler struct {
	Service  *services.JourneyService
	Sessions *engine.Registry
}

func NewGateHandler(service *services.JourneyService, sessions *engine.Registry) *GateHandler {
	return &GateHandler{Service: service, Sessions: sessions}
}

// POST /gates/{id}/complete
func (h *GateHandler) CompleteGateHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	gateID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Response string `json:"response"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	gate, err := h.Service.CompleteReflectionGate(r.Context(), h.Sessions.For(userID), gateID, body.Response)
	if err != nil {
		writeError(w, "complete_gate", err)
		return
	}
	writeJSON(w, http.StatusOK, gate)
}
