package engine

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Dias221467/Questline/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Snapshot is an immutable view of a user's active journey together with
// its check-ins and gates, both ascending by day. Journey is nil when the
// user has no active journey.
type Snapshot struct {
	Journey  *models.Journey         `json:"journey"`
	CheckIns []models.CheckIn        `json:"check_ins"`
	Gates    []models.ReflectionGate `json:"reflection_gates"`
	LoadedAt time.Time               `json:"loaded_at"`
}

// NewSnapshot sorts the given records and wraps them in a snapshot.
func NewSnapshot(j *models.Journey, checkIns []models.CheckIn, gates []models.ReflectionGate, at time.Time) *Snapshot {
	s := &Snapshot{
		Journey:  j,
		CheckIns: append([]models.CheckIn(nil), checkIns...),
		Gates:    append([]models.ReflectionGate(nil), gates...),
		LoadedAt: at,
	}
	sort.SliceStable(s.CheckIns, func(a, b int) bool { return s.CheckIns[a].Day < s.CheckIns[b].Day })
	sort.SliceStable(s.Gates, func(a, b int) bool { return s.Gates[a].Day < s.Gates[b].Day })
	if s.CheckIns == nil {
		s.CheckIns = []models.CheckIn{}
	}
	if s.Gates == nil {
		s.Gates = []models.ReflectionGate{}
	}
	return s
}

// Holds reports whether the snapshot's active journey is id.
func (s *Snapshot) Holds(id primitive.ObjectID) bool {
	return s != nil && s.Journey != nil && s.Journey.ID == id
}

// LastCheckIn returns the check-in with the highest day, or nil.
func (s *Snapshot) LastCheckIn() *models.CheckIn {
	if s == nil || len(s.CheckIns) == 0 {
		return nil
	}
	c := s.CheckIns[len(s.CheckIns)-1]
	return &c
}

// Gate finds a gate of the active journey by id.
func (s *Snapshot) Gate(id primitive.ObjectID) *models.ReflectionGate {
	if s == nil {
		return nil
	}
	for i := range s.Gates {
		if s.Gates[i].ID == id {
			g := s.Gates[i]
			return &g
		}
	}
	return nil
}

// WithJourney returns a copy of the snapshot carrying j as its journey.
func (s *Snapshot) WithJourney(j models.Journey, at time.Time) *Snapshot {
	return NewSnapshot(&j, s.CheckIns, s.Gates, at)
}

// WithCheckIn returns the next snapshot after c was recorded and the
// journey was moved to j.
func (s *Snapshot) WithCheckIn(c models.CheckIn, j models.Journey, at time.Time) *Snapshot {
	checkIns := append(append([]models.CheckIn(nil), s.CheckIns...), c)
	return NewSnapshot(&j, checkIns, s.Gates, at)
}

// WithGateCompleted returns the next snapshot with gate id answered.
func (s *Snapshot) WithGateCompleted(id primitive.ObjectID, response string, at time.Time) *Snapshot {
	gates := append([]models.ReflectionGate(nil), s.Gates...)
	for i := range gates {
		if gates[i].ID == id {
			r := response
			done := at
			gates[i].Completed = true
			gates[i].Response = &r
			gates[i].CompletedAt = &done
		}
	}
	return NewSnapshot(s.Journey, s.CheckIns, gates, at)
}

// Session is the per-user context the journey operations read and advance.
// The snapshot is swapped atomically, so readers only ever observe a whole
// previous or whole next snapshot.
type Session struct {
	UserID primitive.ObjectID
	snap   atomic.Pointer[Snapshot]
}

func NewSession(userID primitive.ObjectID) *Session {
	return &Session{UserID: userID}
}

// Snapshot returns the current snapshot, or nil if the session was never
// loaded or has been invalidated.
func (s *Session) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Loaded reports whether a snapshot is present.
func (s *Session) Loaded() bool {
	return s.snap.Load() != nil
}

// Replace installs next as the current snapshot.
func (s *Session) Replace(next *Snapshot) {
	s.snap.Store(next)
}

// Invalidate drops the snapshot so the next reader reloads it.
func (s *Session) Invalidate() {
	s.snap.Store(nil)
}

// Registry hands out one Session per user.
type Registry struct {
	mu       sync.Mutex
	sessions map[primitive.ObjectID]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[primitive.ObjectID]*Session)}
}

// For returns the session of userID, creating it on first use.
func (r *Registry) For(userID primitive.ObjectID) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok {
		s = NewSession(userID)
		r.sessions[userID] = s
	}
	return s
}

// Drop forgets the session of userID.
func (r *Registry) Drop(userID primitive.ObjectID) {
	r.mu.Lock()
	delete(r.sessions, userID)
	r.mu.Unlock()
}
