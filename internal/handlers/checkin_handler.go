package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Dias221467/Questline/internal/engine"
	"github.com/Dias221467/Questline/internal/services"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CheckInHandler struct {
	Service       *services.JourneyService
	Sessions      *engine.Registry
	UploadDir     string
	MaxPhotoBytes int64
}

func NewCheckInHandler(service *services.JourneyService, sessions *engine.Registry, uploadDir string, maxPhotoBytes int64) *CheckInHandler {
	return &CheckInHandler{Service: service, Sessions: sessions, UploadDir: uploadDir, MaxPhotoBytes: maxPhotoBytes}
}

// GET /journeys/{id}/checkins
func (h *CheckInHandler) ListCheckInsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	journeyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	checkIns, err := h.Service.ListCheckIns(r.Context(), userID, journeyID)
	if err != nil {
		writeError(w, "list_checkins", err)
		return
	}
	writeJSON(w, http.StatusOK, checkIns)
}

// POST /journeys/{id}/checkins
func (h *CheckInHandler) CreateCheckInHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	journeyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in services.CheckInInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.JourneyID = journeyID

	checkIn, err := h.Service.CreateCheckIn(r.Context(), h.Sessions.For(userID), in)
	if err != nil {
		writeError(w, "create_checkin", err)
		return
	}
	writeJSON(w, http.StatusCreated, checkIn)
}

// POST /checkins/photos stores a JPG or PNG and returns its URL for a
// later check-in.
func (h *CheckInHandler) UploadPhotoHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	maxBytes := h.MaxPhotoBytes
	if maxBytes <= 0 {
		maxBytes = services.DefaultMaxPhotoBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeError(w, "upload_photo", &services.ValidationError{Fields: []string{"photo"}, Reason: "File too big or invalid format"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, "upload_photo", &services.ValidationError{Fields: []string{"photo"}, Reason: "Missing file in request"})
		return
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		writeError(w, "upload_photo", err)
		return
	}
	ext, err := services.ValidatePhoto(head[:n], header.Size, maxBytes)
	if err != nil {
		writeError(w, "upload_photo", err)
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeError(w, "upload_photo", err)
		return
	}

	if err := os.MkdirAll(h.UploadDir, os.ModePerm); err != nil {
		writeError(w, "upload_photo", err)
		return
	}
	fileName := uuid.NewString() + ext
	out, err := os.Create(filepath.Join(h.UploadDir, fileName))
	if err != nil {
		writeError(w, "upload_photo", err)
		return
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		writeError(w, "upload_photo", err)
		return
	}

	fileURL := "/uploads/" + fileName
	logrus.WithFields(logrus.Fields{"userID": userID.Hex(), "fileURL": fileURL}).Info("Check-in photo stored")
	writeJSON(w, http.StatusCreated, map[string]string{"url": fileURL})
}
