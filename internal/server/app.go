package server

import (
	"github.com/Dias221467/Questline/internal/cache"
	"github.com/Dias221467/Questline/internal/config"
	"github.com/Dias221467/Questline/internal/engine"
	"github.com/Dias221467/Questline/internal/realtime"
	"github.com/Dias221467/Questline/internal/repository"
	"github.com/Dias221467/Questline/internal/repository/memory"
	"github.com/Dias221467/Questline/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
)

// Repositories bundles one implementation of every store.
type Repositories struct {
	Journeys      services.JourneyStore
	CheckIns      services.CheckInStore
	Gates         services.GateStore
	Achievements  services.AchievementStore
	Users         services.UserStore
	Activities    services.ActivityStore
	Notifications services.NotificationStore
}

func MongoRepositories(db *mongo.Database) Repositories {
	return Repositories{
		Journeys:      repository.NewJourneyRepository(db),
		CheckIns:      repository.NewCheckInRepository(db),
		Gates:         repository.NewGateRepository(db),
		Achievements:  repository.NewAchievementRepository(db),
		Users:         repository.NewUserRepository(db),
		Activities:    repository.NewActivityRepository(db),
		Notifications: repository.NewNotificationRepository(db),
	}
}

func MemoryRepositories(s *memory.Store) Repositories {
	return Repositories{
		Journeys:      s,
		CheckIns:      s,
		Gates:         s,
		Achievements:  s,
		Users:         s,
		Activities:    s,
		Notifications: s,
	}
}

// App holds the wired services shared by the HTTP server, the cron jobs
// and questctl.
type App struct {
	Config        *config.Config
	Users         *services.UserService
	Journeys      *services.JourneyService
	Achievements  *services.AchievementService
	Notifications *services.NotificationService
	Activities    *services.ActivityService
	Sessions      *engine.Registry
	Hub           *realtime.Hub
	Denylist      cache.Denylist
}

// NewApp wires services over repos. A nil denylist falls back to memory.
func NewApp(cfg *config.Config, repos Repositories, denylist cache.Denylist) *App {
	if denylist == nil {
		denylist = cache.NewMemoryDenylist()
	}

	activities := services.NewActivityService(repos.Activities)
	notifications := services.NewNotificationService(repos.Notifications, repos.Journeys, repos.CheckIns, repos.Gates)

	achievements := services.NewAchievementService(repos.Achievements, repos.Journeys, repos.CheckIns, repos.Gates)
	achievements.NotificationService = notifications
	achievements.ActivityService = activities

	hub := realtime.NewHub()
	journeys := services.NewJourneyService(repos.Journeys, repos.CheckIns, repos.Gates, cfg.JourneyOptions())
	journeys.Achievements = achievements
	journeys.Activities = activities
	journeys.Publisher = hub

	return &App{
		Config:        cfg,
		Users:         services.NewUserService(repos.Users),
		Journeys:      journeys,
		Achievements:  achievements,
		Notifications: notifications,
		Activities:    activities,
		Sessions:      engine.NewRegistry(),
		Hub:           hub,
		Denylist:      denylist,
	}
}
