package handlers

import (
	"net/http"

	"github.com/Dias221467/Questline/internal/services"
)

type AchievementHandler struct {
	Service *services.AchievementService
}

func NewAchievementHandler(service *services.AchievementService) *AchievementHandler {
	return &AchievementHandler{Service: service}
}

// GET /achievements
func (h *AchievementHandler) ListAchievementsHandler(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.Service.ListAchievements(r.Context())
	if err != nil {
		writeError(w, "list_achievements", err)
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

// GET /achievements/me
func (h *AchievementHandler) MyAchievementsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	summary, err := h.Service.Summary(r.Context(), userID)
	if err != nil {
		writeError(w, "my_achievements", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// POST /admin/achievements
func (h *AchievementHandler) CreateAchievementHandler(w http.ResponseWriter, r *http.Request) {
	var in services.AchievementInput
	if !decodeJSON(w, r, &in) {
		return
	}
	a, err := h.Service.CreateAchievement(r.Context(), in)
	if err != nil {
		writeError(w, "create_achievement", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}
