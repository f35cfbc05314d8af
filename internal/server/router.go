package server

import (
	"net/http"

	"github.com/Dias221467/Questline/internal/handlers"
	"github.com/Dias221467/Questline/internal/models"
	"github.com/Dias221467/Questline/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// Router builds the HTTP surface wrapped in CORS.
func (a *App) Router() http.Handler {
	cfg := a.Config

	authHandler := handlers.NewAuthHandler(a.Users, cfg, a.Denylist)
	journeyHandler := handlers.NewJourneyHandler(a.Journeys, a.Sessions)
	checkInHandler := handlers.NewCheckInHandler(a.Journeys, a.Sessions, cfg.UploadDir, cfg.MaxPhotoBytes)
	gateHandler := handlers.NewGateHandler(a.Journeys, a.Sessions)
	achievementHandler := handlers.NewAchievementHandler(a.Achievements)
	notificationHandler := handlers.NewNotificationHandler(a.Notifications)
	activityHandler := handlers.NewActivityHandler(a.Activities)
	wsHandler := handlers.NewWSHandler(a.Hub, a.Journeys, a.Sessions, cfg.JWTSecret, a.Denylist, cfg.AllowedOrigins)

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)

	router.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	router.HandleFunc("/ws", wsHandler.ServeWS).Methods("GET")

	router.HandleFunc("/auth/signup", authHandler.SignUpHandler).Methods("POST")
	router.HandleFunc("/auth/signin", authHandler.SignInHandler).Methods("POST")

	// Everything below needs a valid, unrevoked token.
	protected := router.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret, a.Denylist))
	protected.Use(middleware.UpdateLastActiveMiddleware(a.Users))

	protected.HandleFunc("/auth/me", authHandler.MeHandler).Methods("GET")
	protected.HandleFunc("/auth/signout", authHandler.SignOutHandler).Methods("POST")

	protected.HandleFunc("/journeys", journeyHandler.ListJourneysHandler).Methods("GET")
	protected.HandleFunc("/journeys", journeyHandler.CreateJourneyHandler).Methods("POST")
	protected.HandleFunc("/journeys/active", journeyHandler.ActiveJourneyHandler).Methods("GET")
	protected.HandleFunc("/journeys/{id}", journeyHandler.GetJourneyHandler).Methods("GET")
	protected.HandleFunc("/journeys/{id}", journeyHandler.UpdateJourneyHandler).Methods("PATCH")
	protected.HandleFunc("/journeys/{id}", journeyHandler.DeleteJourneyHandler).Methods("DELETE")
	protected.HandleFunc("/journeys/{id}/start", journeyHandler.StartJourneyHandler).Methods("POST")
	protected.HandleFunc("/journeys/{id}/complete", journeyHandler.CompleteJourneyHandler).Methods("POST")

	protected.HandleFunc("/journeys/{id}/checkins", checkInHandler.ListCheckInsHandler).Methods("GET")
	protected.HandleFunc("/journeys/{id}/checkins", checkInHandler.CreateCheckInHandler).Methods("POST")
	protected.HandleFunc("/checkins/photos", checkInHandler.UploadPhotoHandler).Methods("POST")
	protected.HandleFunc("/gates/{id}/complete", gateHandler.CompleteGateHandler).Methods("POST")

	protected.HandleFunc("/achievements", achievementHandler.ListAchievementsHandler).Methods("GET")
	protected.HandleFunc("/achievements/me", achievementHandler.MyAchievementsHandler).Methods("GET")
	protected.HandleFunc("/activity", activityHandler.GetActivitiesHandler).Methods("GET")

	protected.HandleFunc("/notifications", notificationHandler.GetUserNotificationsHandler).Methods("GET")
	protected.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsReadHandler).Methods("POST")
	protected.HandleFunc("/notifications/{id}", notificationHandler.DeleteNotificationHandler).Methods("DELETE")

	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware(cfg.JWTSecret, a.Denylist))
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	admin.HandleFunc("/achievements", achievementHandler.CreateAchievementHandler).Methods("POST")

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(router)
}
