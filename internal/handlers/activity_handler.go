package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dias221467/Questline/internal/models"
	"github.com/Dias221467/Questline/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActivityHandler struct {
	Service *services.ActivityService
}

func NewActivityHandler(service *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{Service: service}
}

// GET /activity?limit=n&journey_id=id&type=t
func (h *ActivityHandler) GetActivitiesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	q := models.ActivityQuery{Types: query["type"]}
	q.Limit, _ = strconv.Atoi(query.Get("limit"))
	if raw := query.Get("journey_id"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			writeError(w, "get_activities", services.ErrInvalidID)
			return
		}
		q.JourneyID = &id
	}

	activities, err := h.Service.Recent(r.Context(), userID, q)
	if err != nil {
		writeError(w, "get_activities", err)
		return
	}
	writeJSON(w, http.StatusOK, activities)
}
