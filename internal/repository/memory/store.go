// Package memory is an in-process record store with the same contracts as
// the Mongo repositories. It backs tests and STORE_DRIVER=memory.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Dias221467/Questline/internal/models"
	"github.com/Dias221467/Questline/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type checkInKey struct {
	journeyID primitive.ObjectID
	day       int
}

type earnedKey struct {
	userID        primitive.ObjectID
	achievementID primitive.ObjectID
}

// Store keeps every collection in maps guarded by one mutex.
type Store struct {
	mu sync.Mutex

	journeys      map[primitive.ObjectID]models.Journey
	checkIns      map[primitive.ObjectID]models.CheckIn
	checkInDays   map[checkInKey]primitive.ObjectID
	gates         map[primitive.ObjectID]models.ReflectionGate
	achievements  map[primitive.ObjectID]models.Achievement
	earned        map[earnedKey]models.UserAchievement
	users         map[primitive.ObjectID]models.User
	activities    []models.Activity
	notifications map[primitive.ObjectID]models.Notification

	now func() time.Time
}

func New() *Store {
	return &Store{
		journeys:      make(map[primitive.ObjectID]models.Journey),
		checkIns:      make(map[primitive.ObjectID]models.CheckIn),
		checkInDays:   make(map[checkInKey]primitive.ObjectID),
		gates:         make(map[primitive.ObjectID]models.ReflectionGate),
		achievements:  make(map[primitive.ObjectID]models.Achievement),
		earned:        make(map[earnedKey]models.UserAchievement),
		users:         make(map[primitive.ObjectID]models.User),
		notifications: make(map[primitive.ObjectID]models.Notification),
		now:           time.Now,
	}
}

// SetClock replaces the store's notion of now, for expiry tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func notFound(kind string, id primitive.ObjectID) error {
	return fmt.Errorf("%s %s: %w", kind, id.Hex(), repository.ErrNotFound)
}

// Journeys

func (s *Store) CreateJourney(_ context.Context, j *models.Journey) (*models.Journey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j.ID.IsZero() {
		j.ID = primitive.NewObjectID()
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = s.now()
	}
	j.Version = 1
	s.journeys[j.ID] = *j
	return j, nil
}

func (s *Store) GetJourney(_ context.Context, id, userID primitive.ObjectID) (*models.Journey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.journeys[id]
	if !ok || j.UserID != userID {
		return nil, notFound("journey", id)
	}
	return &j, nil
}

func (s *Store) ListJourneys(_ context.Context, userID primitive.ObjectID) ([]models.Journey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Journey{}
	for _, j := range s.journeys {
		if j.UserID == userID {
			out = append(out, j)
		}
	}
	sortJourneysNewestFirst(out)
	return out, nil
}

func (s *Store) FindActiveJourney(_ context.Context, userID primitive.ObjectID) (*models.Journey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active *models.Journey
	for _, j := range s.journeys {
		if j.UserID != userID || !j.Started() || j.Completed() {
			continue
		}
		if active == nil || newer(j, *active) {
			j := j
			active = &j
		}
	}
	return active, nil
}

func (s *Store) UpdateJourney(_ context.Context, id, userID primitive.ObjectID, upd models.JourneyUpdate, expectedVersion int64) (*models.Journey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.journeys[id]
	if !ok || j.UserID != userID {
		return nil, notFound("journey", id)
	}
	if expectedVersion != repository.AnyVersion && j.Version != expectedVersion {
		return nil, fmt.Errorf("journey %s changed concurrently: %w", id.Hex(), repository.ErrConflict)
	}
	upd.Apply(&j)
	j.Version++
	s.journeys[id] = j
	return &j, nil
}

func (s *Store) DeleteJourney(_ context.Context, id, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.journeys[id]
	if !ok || j.UserID != userID {
		return notFound("journey", id)
	}
	delete(s.journeys, id)
	return nil
}

func (s *Store) ListActiveJourneys(_ context.Context, limit int64) ([]models.Journey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Journey{}
	for _, j := range s.journeys {
		if j.Started() && !j.Completed() {
			out = append(out, j)
		}
	}
	sortJourneysNewestFirst(out)
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// newer orders by creation time, breaking ties on the id's own ordering.
func newer(a, b models.Journey) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.Hex() > b.ID.Hex()
}

func sortJourneysNewestFirst(js []models.Journey) {
	sort.Slice(js, func(i, k int) bool { return newer(js[i], js[k]) })
}

// Check-ins

func (s *Store) CreateCheckIn(_ context.Context, c *models.CheckIn) (*models.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := checkInKey{journeyID: c.JourneyID, day: c.Day}
	if _, dup := s.checkInDays[key]; dup {
		return nil, fmt.Errorf("check-in for day %d already exists: %w", c.Day, repository.ErrConflict)
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	s.checkIns[c.ID] = *c
	s.checkInDays[key] = c.ID
	return c, nil
}

func (s *Store) ListCheckIns(_ context.Context, journeyID, userID primitive.ObjectID) ([]models.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.CheckIn{}
	for _, c := range s.checkIns {
		if c.JourneyID == journeyID && c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Day < out[k].Day })
	return out, nil
}

func (s *Store) LatestCheckIn(_ context.Context, journeyID primitive.ObjectID) (*models.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *models.CheckIn
	for _, c := range s.checkIns {
		if c.JourneyID != journeyID {
			continue
		}
		if latest == nil || c.Day > latest.Day {
			c := c
			latest = &c
		}
	}
	return latest, nil
}

func (s *Store) DeleteCheckIn(_ context.Context, id, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.checkIns[id]
	if !ok || c.UserID != userID {
		return notFound("check-in", id)
	}
	delete(s.checkIns, id)
	delete(s.checkInDays, checkInKey{journeyID: c.JourneyID, day: c.Day})
	return nil
}

func (s *Store) DeleteCheckInsByJourney(_ context.Context, journeyID, userID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, c := range s.checkIns {
		if c.JourneyID == journeyID && c.UserID == userID {
			delete(s.checkIns, id)
			delete(s.checkInDays, checkInKey{journeyID: c.JourneyID, day: c.Day})
			n++
		}
	}
	return n, nil
}

func (s *Store) CountCheckInsByUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, c := range s.checkIns {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

// Reflection gates

func (s *Store) CreateGates(_ context.Context, gates []models.ReflectionGate) ([]models.ReflectionGate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range gates {
		if gates[i].ID.IsZero() {
			gates[i].ID = primitive.NewObjectID()
		}
		s.gates[gates[i].ID] = gates[i]
	}
	return gates, nil
}

func (s *Store) ListGates(_ context.Context, journeyID, userID primitive.ObjectID) ([]models.ReflectionGate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.ReflectionGate{}
	for _, g := range s.gates {
		if g.JourneyID == journeyID && g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Day < out[k].Day })
	return out, nil
}

func (s *Store) GetGate(_ context.Context, id, userID primitive.ObjectID) (*models.ReflectionGate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.gates[id]
	if !ok || g.UserID != userID {
		return nil, notFound("reflection gate", id)
	}
	return &g, nil
}

func (s *Store) CompleteGate(_ context.Context, id, userID primitive.ObjectID, response string, at time.Time) (*models.ReflectionGate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.gates[id]
	if !ok || g.UserID != userID {
		return nil, notFound("reflection gate", id)
	}
	if g.Completed {
		return nil, fmt.Errorf("reflection gate %s already completed: %w", id.Hex(), repository.ErrConflict)
	}
	g.Completed = true
	g.Response = &response
	g.CompletedAt = &at
	s.gates[id] = g
	return &g, nil
}

func (s *Store) DeleteGatesByJourney(_ context.Context, journeyID, userID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, g := range s.gates {
		if g.JourneyID == journeyID && g.UserID == userID {
			delete(s.gates, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) CountCompletedGates(_ context.Context, userID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, g := range s.gates {
		if g.UserID == userID && g.Completed {
			n++
		}
	}
	return n, nil
}

// Achievements

func (s *Store) ListAchievements(_ context.Context) ([]models.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Achievement, 0, len(s.achievements))
	for _, a := range s.achievements {
		out = append(out, a)
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].PointsReward != out[k].PointsReward {
			return out[i].PointsReward > out[k].PointsReward
		}
		return out[i].Name < out[k].Name
	})
	return out, nil
}

func (s *Store) CreateAchievement(_ context.Context, a *models.Achievement) (*models.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.CreatedAt = s.now()
	s.achievements[a.ID] = *a
	return a, nil
}

func (s *Store) EnsureAchievement(_ context.Context, a *models.Achievement) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.achievements {
		if existing.Name == a.Name {
			return false, nil
		}
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	s.achievements[a.ID] = *a
	return true, nil
}

func (s *Store) ListUserAchievements(_ context.Context, userID primitive.ObjectID) ([]models.UserAchievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.UserAchievement{}
	for k, ua := range s.earned {
		if k.userID == userID {
			out = append(out, ua)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].EarnedAt.After(out[k].EarnedAt) })
	return out, nil
}

func (s *Store) AwardAchievement(_ context.Context, ua *models.UserAchievement) (*models.UserAchievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := earnedKey{userID: ua.UserID, achievementID: ua.AchievementID}
	if _, dup := s.earned[key]; dup {
		return nil, fmt.Errorf("achievement %s already earned: %w", ua.AchievementID.Hex(), repository.ErrConflict)
	}
	if ua.ID.IsZero() {
		ua.ID = primitive.NewObjectID()
	}
	if ua.EarnedAt.IsZero() {
		ua.EarnedAt = s.now()
	}
	stored := *ua
	stored.Achievement = nil
	s.earned[key] = stored
	return ua, nil
}

// Users

func (s *Store) CreateUser(_ context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return nil, fmt.Errorf("email %s is taken: %w", u.Email, repository.ErrConflict)
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = *u
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, repository.ErrNotFound)
}

func (s *Store) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &u, nil
}

func (s *Store) UpdateLastActive(_ context.Context, id primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil
	}
	u.LastActiveAt = at
	s.users[id] = u
	return nil
}

func (s *Store) ListUserIDs(_ context.Context) ([]primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]primitive.ObjectID, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, k int) bool { return ids[i].Hex() < ids[k].Hex() })
	return ids, nil
}

// Activities

func (s *Store) CreateActivity(_ context.Context, a *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	s.activities = append(s.activities, *a)
	return nil
}

func (s *Store) ListActivities(_ context.Context, userID primitive.ObjectID, q models.ActivityQuery) ([]models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Activity{}
	for i := len(s.activities) - 1; i >= 0; i-- {
		a := s.activities[i]
		if a.UserID != userID {
			continue
		}
		if q.JourneyID != nil && (a.JourneyID == nil || *a.JourneyID != *q.JourneyID) {
			continue
		}
		if len(q.Types) > 0 && !containsString(q.Types, a.Type) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, k int) bool { return out[i].Timestamp.After(out[k].Timestamp) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Notifications

func (s *Store) CreateNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	n.CreatedAt = s.now()
	n.ExpiresAt = n.CreatedAt.Add(repository.NotificationTTL)
	s.notifications[n.ID] = *n
	return nil
}

func (s *Store) GetUserNotifications(_ context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := []models.Notification{}
	for _, n := range s.notifications {
		if n.UserID == userID && n.ExpiresAt.After(now) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out, nil
}

func (s *Store) MarkAsRead(_ context.Context, id, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return notFound("notification", id)
	}
	n.Read = true
	s.notifications[id] = n
	return nil
}

func (s *Store) DeleteNotification(_ context.Context, id, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return notFound("notification", id)
	}
	delete(s.notifications, id)
	return nil
}

func (s *Store) GetLatestNotificationByType(_ context.Context, userID primitive.ObjectID, notifType string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *models.Notification
	for _, n := range s.notifications {
		if n.UserID != userID || n.Type != notifType {
			continue
		}
		if latest == nil || n.CreatedAt.After(latest.CreatedAt) {
			n := n
			latest = &n
		}
	}
	return latest, nil
}

func (s *Store) DeleteExpiredNotifications(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int64
	for id, notif := range s.notifications {
		if !notif.ExpiresAt.After(now) {
			delete(s.notifications, id)
			n++
		}
	}
	return n, nil
}
