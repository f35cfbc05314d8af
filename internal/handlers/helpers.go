package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dias221467/Questline/internal/repository"
	"github.com/Dias221467/Questline/internal/services"
	"github.com/Dias221467/Questline/pkg/logger"
	"github.com/Dias221467/Questline/pkg/metrics"
	"github.com/Dias221467/Questline/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type errorBody struct {
	Error  string      `json:"error"`
	Fields []string    `json:"fields,omitempty"`
	Gate   interface{} `json:"gate,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("Failed to encode response")
	}
}

// writeError maps service and repository errors onto status codes.
func writeError(w http.ResponseWriter, handler string, err error) {
	var verr *services.ValidationError
	var pending *services.GatePendingError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Reason, Fields: verr.Fields})
	case errors.As(err, &pending):
		writeJSON(w, http.StatusConflict, errorBody{Error: pending.Error(), Gate: pending.Gate})
	case errors.Is(err, services.ErrInvalidID):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, services.ErrInvalidCredential):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, services.ErrJourneyNotStarted),
		errors.Is(err, services.ErrJourneyCompleted),
		errors.Is(err, services.ErrDailyLimit):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		metrics.ErrorCount.WithLabelValues(handler, "internal").Inc()
		logger.Log.WithError(err).WithField("handler", handler).Error("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Log.WithError(err).Warn("Failed to decode request body")
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request payload"})
		return false
	}
	return true
}

// currentUser returns the id from the token. AuthMiddleware guarantees the
// claims; a malformed id is still refused.
func currentUser(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return primitive.NilObjectID, false
	}
	return id, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid " + name})
		return primitive.NilObjectID, false
	}
	return id, true
}
