package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dias221467/Questline/internal/engine"
	"github.com/Dias221467/Questline/internal/models"
	"github.com/Dias221467/Questline/internal/progress"
	"github.com/Dias221467/Questline/internal/repository"
	"github.com/Dias221467/Questline/pkg/logger"
	"github.com/Dias221467/Questline/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Options tune the journey rules. DefaultOptions is what the server runs.
type Options struct {
	// StrictAggregate serialises aggregate writes per journey and checks the
	// stored version. Off, updates race the way concurrent tabs would.
	StrictAggregate bool
	// Rollback undoes the first step of a multi-step write when the second
	// step fails.
	Rollback bool
	// EnforceDailyLimit rejects a second check-in on the same calendar day.
	EnforceDailyLimit bool

	ReflectionMinLength   int
	GateResponseMinLength int
	TextInputMaxLength    int
	MinDuration           int
	MaxDuration           int

	Now func() time.Time
}

func DefaultOptions() Options {
	return Options{
		StrictAggregate:       true,
		Rollback:              true,
		EnforceDailyLimit:     false,
		ReflectionMinLength:   5,
		GateResponseMinLength: 20,
		TextInputMaxLength:    280,
		MinDuration:           7,
		MaxDuration:           90,
		Now:                   time.Now,
	}
}

// SnapshotPublisher receives the journey view after every mutation.
type SnapshotPublisher interface {
	PublishView(userID primitive.ObjectID, view engine.View)
}

// JourneyService sequences journey, check-in and gate writes against the
// stores and keeps each user's session snapshot current.
type JourneyService struct {
	journeys JourneyStore
	checkIns CheckInStore
	gates    GateStore
	opts     Options
	locks    *engine.KeyedMutex

	Achievements *AchievementService
	Activities   *ActivityService
	Publisher    SnapshotPublisher
}

func NewJourneyService(journeys JourneyStore, checkIns CheckInStore, gates GateStore, opts Options) *JourneyService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &JourneyService{
		journeys: journeys,
		checkIns: checkIns,
		gates:    gates,
		opts:     opts,
		locks:    engine.NewKeyedMutex(),
	}
}

func (s *JourneyService) Options() Options { return s.opts }

// ListJourneys returns every journey of the user, newest first.
func (s *JourneyService) ListJourneys(ctx context.Context, userID primitive.ObjectID) ([]models.Journey, error) {
	journeys, err := s.journeys.ListJourneys(ctx, userID)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to list journeys")
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}
	return journeys, nil
}

func (s *JourneyService) GetJourney(ctx context.Context, userID, id primitive.ObjectID) (*models.Journey, error) {
	j, err := s.journeys.GetJourney(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get journey: %w", err)
	}
	return j, nil
}

// DescribeJourney returns the full view of any journey the user owns.
func (s *JourneyService) DescribeJourney(ctx context.Context, userID, id primitive.ObjectID) (engine.View, error) {
	j, err := s.GetJourney(ctx, userID, id)
	if err != nil {
		return engine.View{}, err
	}
	checkIns, err := s.checkIns.ListCheckIns(ctx, id, userID)
	if err != nil {
		return engine.View{}, fmt.Errorf("failed to load check-ins: %w", err)
	}
	gates, err := s.gates.ListGates(ctx, id, userID)
	if err != nil {
		return engine.View{}, fmt.Errorf("failed to load reflection gates: %w", err)
	}
	now := s.opts.Now()
	return engine.Describe(engine.NewSnapshot(j, checkIns, gates, now), now), nil
}

// ListCheckIns returns a journey's check-ins ascending by day.
func (s *JourneyService) ListCheckIns(ctx context.Context, userID, journeyID primitive.ObjectID) ([]models.CheckIn, error) {
	if _, err := s.GetJourney(ctx, userID, journeyID); err != nil {
		return nil, err
	}
	checkIns, err := s.checkIns.ListCheckIns(ctx, journeyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	return checkIns, nil
}

// LoadActiveJourney rebuilds the session snapshot from the store. A user
// without an active journey gets a snapshot with a nil journey.
func (s *JourneyService) LoadActiveJourney(ctx context.Context, sess *engine.Session) (*engine.Snapshot, error) {
	now := s.opts.Now()
	j, err := s.journeys.FindActiveJourney(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active journey: %w", err)
	}
	if j == nil {
		snap := engine.NewSnapshot(nil, nil, nil, now)
		sess.Replace(snap)
		return snap, nil
	}

	checkIns, err := s.checkIns.ListCheckIns(ctx, j.ID, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load check-ins: %w", err)
	}
	gates, err := s.gates.ListGates(ctx, j.ID, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reflection gates: %w", err)
	}

	snap := engine.NewSnapshot(j, checkIns, gates, now)
	sess.Replace(snap)
	return snap, nil
}

// Snapshot returns the session snapshot, loading it on first use.
func (s *JourneyService) Snapshot(ctx context.Context, sess *engine.Session) (*engine.Snapshot, error) {
	if snap := sess.Snapshot(); snap != nil {
		return snap, nil
	}
	return s.LoadActiveJourney(ctx, sess)
}

// View describes the session's active journey.
func (s *JourneyService) View(ctx context.Context, sess *engine.Session) (engine.View, error) {
	snap, err := s.Snapshot(ctx, sess)
	if err != nil {
		return engine.View{}, err
	}
	return engine.Describe(snap, s.opts.Now()), nil
}

// CreateJourney validates and stores a journey, then schedules its gates.
func (s *JourneyService) CreateJourney(ctx context.Context, sess *engine.Session, in CreateJourneyInput) (*models.Journey, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Habit = strings.TrimSpace(in.Habit)
	if err := s.validateJourneyInput(in); err != nil {
		logger.Log.WithError(err).Warn("Rejected journey payload")
		return nil, err
	}

	now := s.opts.Now()
	journey := &models.Journey{
		UserID:      sess.UserID,
		Title:       in.Title,
		Description: in.Description,
		Habit:       in.Habit,
		Duration:    in.Duration,
		Theme:       in.Theme,
		CreatedAt:   now,
	}
	if !in.Draft {
		started := now
		journey.StartedAt = &started
	}

	created, err := s.journeys.CreateJourney(ctx, journey)
	if err != nil {
		logger.Log.WithError(err).Error("Service failed to create journey")
		return nil, fmt.Errorf("failed to create journey: %w", err)
	}

	gates, err := s.gates.CreateGates(ctx, engine.NewGates(created, now))
	if err != nil {
		s.compensate("journey", created.ID, func() error {
			return s.journeys.DeleteJourney(ctx, created.ID, sess.UserID)
		})
		if !s.opts.Rollback && created.Started() {
			// the gate-less journey is now the active one
			sess.Invalidate()
		}
		return nil, fmt.Errorf("failed to schedule reflection gates: %w", err)
	}

	if created.Started() {
		sess.Replace(engine.NewSnapshot(created, nil, gates, now))
		s.publish(sess)
	}
	metrics.JourneysCreated.WithLabelValues(string(created.Theme)).Inc()
	s.record(ctx, sess.UserID, models.ActivityJourneyCreated, created.ID, created.ID, "Created journey "+created.Title)

	logger.Log.WithFields(map[string]interface{}{
		"journey_id": created.ID.Hex(),
		"gates":      len(gates),
		"draft":      in.Draft,
	}).Info("Journey created in service layer")
	return created, nil
}

func (s *JourneyService) validateJourneyInput(in CreateJourneyInput) error {
	if err := validateStruct(in, "missing required fields"); err != nil {
		return err
	}
	if !in.Theme.Valid() {
		return invalid("unknown theme", "theme")
	}
	if (s.opts.MinDuration > 0 && in.Duration < s.opts.MinDuration) ||
		(s.opts.MaxDuration > 0 && in.Duration > s.opts.MaxDuration) || in.Duration < 1 {
		return invalid(fmt.Sprintf("duration must be between %d and %d days", s.opts.MinDuration, s.opts.MaxDuration), "duration")
	}
	return nil
}

// UpdateJourney applies a partial update to a journey the user owns.
func (s *JourneyService) UpdateJourney(ctx context.Context, sess *engine.Session, id primitive.ObjectID, upd models.JourneyUpdate) (*models.Journey, error) {
	if upd.Empty() {
		return nil, invalid("no fields to update")
	}
	if s.opts.StrictAggregate {
		defer s.locks.Lock(id.Hex())()
	}

	current, err := s.GetJourney(ctx, sess.UserID, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateUpdate(current, upd); err != nil {
		return nil, err
	}

	expected := repository.AnyVersion
	if s.opts.StrictAggregate {
		expected = current.Version
	}
	updated, err := s.journeys.UpdateJourney(ctx, id, sess.UserID, upd, expected)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			sess.Invalidate()
		}
		logger.Log.WithError(err).WithField("journey_id", id.Hex()).Error("Failed to update journey")
		return nil, fmt.Errorf("failed to update journey: %w", err)
	}

	kind := models.ActivityJourneyUpdated
	switch {
	case upd.StartedAt != nil:
		kind = models.ActivityJourneyStarted
	case upd.CompletedAt != nil:
		kind = models.ActivityJourneyCompleted
	}
	s.record(ctx, sess.UserID, kind, id, id, updated.Title)

	if s.touchesSession(sess, id, upd) {
		if _, err := s.LoadActiveJourney(ctx, sess); err != nil {
			sess.Invalidate()
			return nil, err
		}
		s.publish(sess)
	}
	return updated, nil
}

func (s *JourneyService) validateUpdate(current *models.Journey, upd models.JourneyUpdate) error {
	var fields []string
	for name, v := range map[string]*string{"title": upd.Title, "description": upd.Description, "habit": upd.Habit} {
		if v != nil && strings.TrimSpace(*v) == "" {
			fields = append(fields, name)
		}
	}
	if len(fields) > 0 {
		return invalid("fields cannot be blank", fields...)
	}
	if upd.Theme != nil && !upd.Theme.Valid() {
		return invalid("unknown theme", "theme")
	}
	if upd.CurrentDay != nil && *upd.CurrentDay < current.CurrentDay {
		return invalid("current_day cannot decrease", "current_day")
	}
	if upd.Streak != nil && *upd.Streak < 0 {
		return invalid("streak cannot be negative", "streak")
	}
	if upd.TruthScore != nil && (*upd.TruthScore < engine.MinTruthScore || *upd.TruthScore > engine.MaxTruthScore) {
		return invalid("truth_score must be between 0 and 10", "truth_score")
	}
	if upd.CompletedAt != nil && current.Completed() {
		return invalid("completed_at is final once set", "completed_at")
	}
	if upd.StartedAt != nil && current.Started() {
		return invalid("started_at is final once set", "started_at")
	}
	return nil
}

// touchesSession reports whether an update can change what the session
// shows: either it edits the loaded journey or it may change which journey
// is active.
func (s *JourneyService) touchesSession(sess *engine.Session, id primitive.ObjectID, upd models.JourneyUpdate) bool {
	return sess.Snapshot().Holds(id) || upd.StartedAt != nil || upd.CompletedAt != nil
}

// StartJourney moves a draft journey into progress.
func (s *JourneyService) StartJourney(ctx context.Context, sess *engine.Session, id primitive.ObjectID) (*models.Journey, error) {
	now := s.opts.Now()
	j, err := s.UpdateJourney(ctx, sess, id, models.JourneyUpdate{StartedAt: &now})
	var verr *ValidationError
	if errors.As(err, &verr) && len(verr.Fields) == 1 && verr.Fields[0] == "started_at" {
		return nil, fmt.Errorf("journey %s: already started: %w", id.Hex(), repository.ErrConflict)
	}
	return j, err
}

// CompleteJourney marks a started journey finished.
func (s *JourneyService) CompleteJourney(ctx context.Context, sess *engine.Session, id primitive.ObjectID) (*models.Journey, error) {
	current, err := s.GetJourney(ctx, sess.UserID, id)
	if err != nil {
		return nil, err
	}
	if !current.Started() {
		return nil, ErrJourneyNotStarted
	}
	if current.Completed() {
		return nil, ErrJourneyCompleted
	}

	now := s.opts.Now()
	j, err := s.UpdateJourney(ctx, sess, id, models.JourneyUpdate{CompletedAt: &now})
	var verr *ValidationError
	if errors.As(err, &verr) && len(verr.Fields) == 1 && verr.Fields[0] == "completed_at" {
		// another request completed it after the check above
		return nil, ErrJourneyCompleted
	}
	if err != nil {
		return nil, err
	}
	metrics.JourneysCompleted.Inc()
	s.evaluateAchievements(ctx, sess.UserID)
	return j, nil
}

// DeleteJourney removes a journey together with its check-ins and gates.
func (s *JourneyService) DeleteJourney(ctx context.Context, sess *engine.Session, id primitive.ObjectID) error {
	if s.opts.StrictAggregate {
		defer s.locks.Lock(id.Hex())()
	}
	if err := s.journeys.DeleteJourney(ctx, id, sess.UserID); err != nil {
		return fmt.Errorf("failed to delete journey: %w", err)
	}

	checkIns, err := s.checkIns.DeleteCheckInsByJourney(ctx, id, sess.UserID)
	if err != nil {
		return fmt.Errorf("failed to delete check-ins: %w", err)
	}
	gates, err := s.gates.DeleteGatesByJourney(ctx, id, sess.UserID)
	if err != nil {
		return fmt.Errorf("failed to delete reflection gates: %w", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"journey_id": id.Hex(),
		"check_ins":  checkIns,
		"gates":      gates,
	}).Info("Journey deleted with its records")
	s.record(ctx, sess.UserID, models.ActivityJourneyDeleted, id, id, "Deleted journey")

	if sess.Snapshot().Holds(id) {
		if _, err := s.LoadActiveJourney(ctx, sess); err != nil {
			sess.Invalidate()
			return err
		}
		s.publish(sess)
	}
	return nil
}

// CreateCheckIn records one day of a journey and, when the journey is the
// session's active one, advances its aggregate.
func (s *JourneyService) CreateCheckIn(ctx context.Context, sess *engine.Session, in CheckInInput) (*models.CheckIn, error) {
	if err := s.validateCheckIn(in); err != nil {
		return nil, err
	}
	if s.opts.StrictAggregate {
		defer s.locks.Lock(in.JourneyID.Hex())()
	}

	snap, err := s.Snapshot(ctx, sess)
	if err != nil {
		return nil, err
	}
	active := snap.Holds(in.JourneyID)

	journey, gates, last, err := s.checkInContext(ctx, sess, snap, in.JourneyID, active)
	if err != nil {
		return nil, err
	}
	if !journey.Started() {
		return nil, ErrJourneyNotStarted
	}
	if journey.Completed() {
		return nil, ErrJourneyCompleted
	}
	if g := engine.PendingGate(journey, gates, in.Day); g != nil {
		metrics.CheckInsRejected.WithLabelValues("gate_pending").Inc()
		return nil, &GatePendingError{Gate: *g}
	}

	now := s.opts.Now()
	if s.opts.EnforceDailyLimit {
		var lastAt *time.Time
		if last != nil {
			lastAt = &last.CreatedAt
		}
		if !progress.CanCheckInToday(journey.StartedAt, journey.CurrentDay, lastAt, now) {
			metrics.CheckInsRejected.WithLabelValues("daily_limit").Inc()
			return nil, ErrDailyLimit
		}
	}

	rating := models.DefaultTruthRating
	if in.TruthRating != nil {
		rating = *in.TruthRating
	}
	checkIn := &models.CheckIn{
		JourneyID:    in.JourneyID,
		UserID:       sess.UserID,
		Day:          in.Day,
		Reflection:   strings.TrimSpace(in.Reflection),
		TextInput:    strings.TrimSpace(in.TextInput),
		NumericInput: in.NumericInput,
		PhotoURL:     in.PhotoURL,
		TruthRating:  rating,
		CreatedAt:    now,
	}

	created, err := s.checkIns.CreateCheckIn(ctx, checkIn)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			metrics.CheckInsRejected.WithLabelValues("duplicate_day").Inc()
		}
		return nil, fmt.Errorf("failed to create check-in: %w", err)
	}

	if active {
		agg := engine.ApplyCheckIn(*journey, *created)
		expected := repository.AnyVersion
		if s.opts.StrictAggregate {
			expected = journey.Version
		}

		updated, err := s.journeys.UpdateJourney(ctx, journey.ID, sess.UserID, agg.Update(), expected)
		if err != nil {
			s.compensate("check-in", created.ID, func() error {
				return s.checkIns.DeleteCheckIn(ctx, created.ID, sess.UserID)
			})
			if errors.Is(err, repository.ErrConflict) || !s.opts.Rollback {
				sess.Invalidate()
			}
			return nil, fmt.Errorf("failed to update journey aggregate: %w", err)
		}

		sess.Replace(snap.WithCheckIn(*created, *updated, now))
		s.publish(sess)
	}

	metrics.CheckInsRecorded.Inc()
	s.record(ctx, sess.UserID, models.ActivityCheckIn, created.ID, created.JourneyID, fmt.Sprintf("Checked in on day %d", created.Day))
	logger.Log.WithFields(map[string]interface{}{
		"journey_id": in.JourneyID.Hex(),
		"day":        created.Day,
		"active":     active,
	}).Info("Check-in recorded")

	s.evaluateAchievements(ctx, sess.UserID)
	return created, nil
}

// checkInContext gathers the journey state a check-in is judged against.
// Strict mode and foreign journeys read the store; otherwise the session
// snapshot is trusted.
func (s *JourneyService) checkInContext(ctx context.Context, sess *engine.Session, snap *engine.Snapshot, id primitive.ObjectID, active bool) (*models.Journey, []models.ReflectionGate, *models.CheckIn, error) {
	if active && !s.opts.StrictAggregate {
		j := *snap.Journey
		return &j, snap.Gates, snap.LastCheckIn(), nil
	}

	journey, err := s.GetJourney(ctx, sess.UserID, id)
	if err != nil {
		return nil, nil, nil, err
	}
	gates, err := s.gates.ListGates(ctx, id, sess.UserID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load reflection gates: %w", err)
	}
	last, err := s.checkIns.LatestCheckIn(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	return journey, gates, last, nil
}

func (s *JourneyService) validateCheckIn(in CheckInInput) error {
	if in.JourneyID.IsZero() {
		return invalid("missing required fields", "journey_id")
	}
	if err := validateStruct(in, "invalid check-in"); err != nil {
		return err
	}
	if textLength(in.Reflection) < s.opts.ReflectionMinLength {
		return invalid(fmt.Sprintf("reflection needs at least %d characters", s.opts.ReflectionMinLength), "reflection")
	}
	if s.opts.TextInputMaxLength > 0 && textLength(in.TextInput) > s.opts.TextInputMaxLength {
		return invalid(fmt.Sprintf("text_input is limited to %d characters", s.opts.TextInputMaxLength), "text_input")
	}
	return nil
}

// CompleteReflectionGate answers a gate. Aggregates are left untouched.
func (s *JourneyService) CompleteReflectionGate(ctx context.Context, sess *engine.Session, gateID primitive.ObjectID, response string) (*models.ReflectionGate, error) {
	response = strings.TrimSpace(response)
	if textLength(response) < s.opts.GateResponseMinLength {
		return nil, invalid(fmt.Sprintf("response needs at least %d characters", s.opts.GateResponseMinLength), "response")
	}

	gate, err := s.gates.GetGate(ctx, gateID, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reflection gate: %w", err)
	}
	if s.opts.StrictAggregate {
		defer s.locks.Lock(gate.JourneyID.Hex())()
	}

	journey, err := s.GetJourney(ctx, sess.UserID, gate.JourneyID)
	if err != nil {
		return nil, err
	}
	if !journey.Started() {
		return nil, ErrJourneyNotStarted
	}

	now := s.opts.Now()
	done, err := s.gates.CompleteGate(ctx, gateID, sess.UserID, response, now)
	if err != nil {
		return nil, fmt.Errorf("failed to complete reflection gate: %w", err)
	}

	if snap := sess.Snapshot(); snap.Holds(done.JourneyID) {
		sess.Replace(snap.WithGateCompleted(done.ID, response, now))
		s.publish(sess)
	}
	metrics.GatesCompleted.Inc()
	s.record(ctx, sess.UserID, models.ActivityGateCompleted, done.ID, done.JourneyID, fmt.Sprintf("Answered the day %d reflection", done.Day))

	s.evaluateAchievements(ctx, sess.UserID)
	return done, nil
}

// compensate runs undo when rollback is enabled; failures are only logged
// since the caller already reports the original error.
func (s *JourneyService) compensate(kind string, id primitive.ObjectID, undo func() error) {
	if !s.opts.Rollback {
		logger.Log.WithField(kind+"_id", id.Hex()).Warn("Partial write left in place")
		return
	}
	if err := undo(); err != nil {
		logger.Log.WithError(err).WithField(kind+"_id", id.Hex()).Error("Compensating delete failed")
		return
	}
	metrics.Compensations.WithLabelValues(kind).Inc()
	logger.Log.WithField(kind+"_id", id.Hex()).Warn("Partial write rolled back")
}

func (s *JourneyService) publish(sess *engine.Session) {
	if s.Publisher == nil {
		return
	}
	s.Publisher.PublishView(sess.UserID, engine.Describe(sess.Snapshot(), s.opts.Now()))
}

// record adds to the activity trail. A failed write never fails the
// operation that triggered it.
func (s *JourneyService) record(ctx context.Context, userID primitive.ObjectID, kind string, target, journeyID primitive.ObjectID, message string) {
	if s.Activities == nil {
		return
	}
	if err := s.Activities.Record(ctx, userID, kind, target, &journeyID, message); err != nil {
		logger.Log.WithError(err).WithField("type", kind).Warn("Failed to record activity")
	}
}

func (s *JourneyService) evaluateAchievements(ctx context.Context, userID primitive.ObjectID) {
	if s.Achievements == nil {
		return
	}
	if _, err := s.Achievements.Evaluate(ctx, userID); err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Warn("Achievement evaluation failed")
	}
}
