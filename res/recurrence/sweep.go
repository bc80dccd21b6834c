package recurrence

import (
	"context"
	"sync"
	"time"

	"servibook-api/res/booking"
	"servibook-api/res/notification"
	"servibook-api/res/store"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sweep defaults
const (
	DefaultHorizonDays = 7
	DefaultWorkers     = 4

	reminder24hLead = 24 * time.Hour
	reminder2hLead  = 2 * time.Hour
)

// SweepReport summarizes one sweep run
type SweepReport struct {
	RecurrencesDue int
	Generated      int
	Busy           int // Recurrences skipped because another sweep holds them
	Failed         int
	RemindersSent  int
}

// SweeperConfig configures the periodic sweep
type SweeperConfig struct {
	Store         store.Store
	Engine        *Engine
	Notifications notification.NotificationService
	Logger        *zap.SugaredLogger

	// HorizonDays is the generation lookahead; recurrences whose next
	// occurrence falls within it are due. Defaults to DefaultHorizonDays.
	HorizonDays int

	// Workers bounds the parallel batch. Defaults to DefaultWorkers.
	Workers int
}

// Sweeper drives periodic occurrence generation and booking reminders. Each
// run generates at most one occurrence per due recurrence, which bounds the
// work per run and lets a missed sweep self-heal on the next one. A
// per-recurrence lock guarantees two overlapping sweeps never process the
// same recurrence concurrently.
type Sweeper struct {
	store         store.Store
	engine        *Engine
	notifications notification.NotificationService
	logger        *zap.SugaredLogger
	horizonDays   int
	workers       int
	nowFn         func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSweeper creates a sweeper
func NewSweeper(cfg *SweeperConfig) *Sweeper {
	horizonDays := cfg.HorizonDays
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	return &Sweeper{
		store:         cfg.Store,
		engine:        cfg.Engine,
		notifications: cfg.Notifications,
		logger:        cfg.Logger,
		horizonDays:   horizonDays,
		workers:       workers,
		nowFn:         time.Now,
		locks:         make(map[string]*sync.Mutex),
	}
}

// Run executes one sweep: generate due occurrences, then send reminders
func (s *Sweeper) Run(ctx context.Context) (SweepReport, error) {
	report, err := s.generateDue(ctx)
	if err != nil {
		return report, err
	}

	sent, err := s.sendReminders(ctx)
	report.RemindersSent = sent
	return report, err
}

// generateDue finds active recurrences whose next occurrence is within the
// horizon and generates exactly one occurrence per recurrence
func (s *Sweeper) generateDue(ctx context.Context) (SweepReport, error) {
	now := s.nowFn()

	due, err := s.store.Recurrences().FindDueForGeneration(ctx, now, s.horizonDays)
	if err != nil {
		return SweepReport{}, err
	}

	report := SweepReport{RecurrencesDue: len(due)}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, rec := range due {
		rec := rec
		g.Go(func() error {
			lock := s.lockFor(rec.ID)
			if !lock.TryLock() {
				// Another sweep is on this recurrence; the next run catches up
				mu.Lock()
				report.Busy++
				mu.Unlock()
				return nil
			}
			defer lock.Unlock()

			generated, err := s.engine.GenerateNext(ctx, rec.ID, 1)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				s.logger.Errorw("occurrence generation failed", "recurrence_id", rec.ID, "error", err)
				return nil // One bad recurrence must not abort the batch
			}
			report.Generated += len(generated)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}

	s.logger.Infow("sweep finished",
		"due", report.RecurrencesDue, "generated", report.Generated,
		"busy", report.Busy, "failed", report.Failed)

	return report, nil
}

// sendReminders fires the 24h and 2h reminders for upcoming bookings. Each
// flag fires at most once; the flag is set only after a successful dispatch.
func (s *Sweeper) sendReminders(ctx context.Context) (int, error) {
	now := s.nowFn()

	candidates, err := s.store.Bookings().FindReminderCandidates(ctx, now, reminder24hLead)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, b := range candidates {
		start, err := scheduledStartOf(b)
		if err != nil {
			s.logger.Errorw("booking has an unparseable schedule", "booking_id", b.ID, "error", err)
			continue
		}

		untilStart := start.Sub(now)
		if untilStart < 0 {
			continue
		}

		var kind store.ReminderKind
		switch {
		case untilStart <= reminder2hLead:
			// Once inside the short window the 24h reminder is stale, only
			// the 2h one may still fire
			if b.Reminder2hSent {
				continue
			}
			kind = store.ReminderKind2h
		case !b.Reminder24hSent:
			kind = store.ReminderKind24h
		default:
			continue
		}

		if err := s.notifications.NotifyBookingReminder(ctx, b, kind); err != nil {
			s.logger.Errorw("reminder dispatch failed", "booking_id", b.ID, "kind", kind, "error", err)
			continue
		}
		if err := s.store.Bookings().MarkReminderSent(ctx, b.ID, kind); err != nil {
			s.logger.Errorw("failed to mark reminder sent", "booking_id", b.ID, "kind", kind, "error", err)
			continue
		}
		sent++
	}

	return sent, nil
}

func scheduledStartOf(b *store.Booking) (time.Time, error) {
	w, err := booking.WindowAt(b.ScheduledDate, b.ScheduledTime, b.DurationMinutes)
	if err != nil {
		return time.Time{}, err
	}
	return w.Start, nil
}

// lockFor returns the serialization lock of one recurrence
func (s *Sweeper) lockFor(recurrenceID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[recurrenceID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[recurrenceID] = lock
	}
	return lock
}
