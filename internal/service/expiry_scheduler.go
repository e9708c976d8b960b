package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"
	"go-clinic-management/pkg/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrSweepLocked is returned by RunOnce when another replica holds the sweep lock
var ErrSweepLocked = errors.New("expiry sweep is running elsewhere")

// releaseLockScript deletes the lock only if this run still owns it, so a run
// that outlived its TTL cannot drop a lock taken by the next one.
var releaseLockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

const (
	ExpiryLockKey = "scheduler:appointment-expiry:lock"

	// Upper bound of a single sweep
	expiryRunTimeout = 2 * time.Minute
)

type ExpirySchedulerConfig struct {
	Interval time.Duration
	// Grace is how long past its date an appointment may stay open
	Grace   time.Duration
	LockTTL time.Duration
	// Notify records an action log entry and a patient notification per
	// cancelled appointment. Off, the sweep is silent.
	Notify bool
}

// Cutoff is the date before which an open appointment counts as expired at now
func (c ExpirySchedulerConfig) Cutoff(now time.Time) time.Time {
	return now.Add(-c.Grace)
}

// ExpiryScheduler periodically cancels pending and approved appointments whose
// date is older than the grace window, together with their open billings.
//
// The bulk update re-checks status and date at write time, so it cannot undo a
// concurrent approve, complete or cancel. A Redis lock keeps replicas from
// sweeping at the same time.
type ExpiryScheduler struct {
	db          *gorm.DB
	redisClient *redis.Client
	log         *logrus.Logger
	cfg         ExpirySchedulerConfig
	now         func() time.Time

	appointmentRepo repository.AppointmentRepository
	billingRepo     repository.BillingRepository
	notifier        LifecycleNotifier
	metrics         *metrics.MetricsCollector

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	started  atomic.Bool
	stopped  atomic.Bool
}

func NewExpiryScheduler(
	db *gorm.DB,
	redisClient *redis.Client,
	log *logrus.Logger,
	cfg ExpirySchedulerConfig,
	appointmentRepo repository.AppointmentRepository,
	billingRepo repository.BillingRepository,
	notifier LifecycleNotifier,
	metrics *metrics.MetricsCollector,
) *ExpiryScheduler {
	return &ExpiryScheduler{
		db:              db,
		redisClient:     redisClient,
		log:             log,
		cfg:             cfg,
		now:             time.Now,
		appointmentRepo: appointmentRepo,
		billingRepo:     billingRepo,
		notifier:        notifier,
		metrics:         metrics,
		stopChan:        make(chan struct{}),
	}
}

// WithClock replaces the time source
func (s *ExpiryScheduler) WithClock(now func() time.Time) *ExpiryScheduler {
	s.now = now
	return s
}

// Start sweeps once, then every Interval until Stop. Calling it twice is a no-op.
func (s *ExpiryScheduler) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}

	s.wg.Add(1)
	go s.loop()

	s.log.Infof("ExpiryScheduler started: interval=%v, grace=%v, notify=%t", s.cfg.Interval, s.cfg.Grace, s.cfg.Notify)
}

// Stop gracefully shuts down the scheduler.
// Safe to call multiple times.
func (s *ExpiryScheduler) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("ExpiryScheduler stopped")
	}
}

func (s *ExpiryScheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.tick()
	for {
		select {
		case <-s.stopChan:
			s.log.Debug("Expiry loop stopping")
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick runs one sweep and swallows its error; the next tick retries
func (s *ExpiryScheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), expiryRunTimeout)
	defer cancel()

	go func() {
		select {
		case <-s.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, ErrSweepLocked) {
		s.log.Errorf("Expiry sweep failed, retrying next tick: %+v", err)
	}
}

// RunOnce performs a single sweep and returns how many appointments it cancelled
func (s *ExpiryScheduler) RunOnce(ctx context.Context) (int, error) {
	release, err := s.acquireLock(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	startTime := s.now()
	cutoff := s.cfg.Cutoff(startTime)

	cancelled, notifications, err := s.cancelExpired(ctx, cutoff, startTime)
	s.metrics.RecordExpirySweep(len(cancelled), err)
	if err != nil {
		return 0, err
	}

	s.notifier.Publish(ctx, notifications)

	s.log.WithFields(logrus.Fields{
		"cutoff":    cutoff,
		"cancelled": len(cancelled),
		"notified":  len(notifications),
		"elapsed":   time.Since(startTime),
	}).Info("Expiry sweep completed")

	return len(cancelled), nil
}

func (s *ExpiryScheduler) cancelExpired(ctx context.Context, cutoff, now time.Time) ([]entity.Appointment, []entity.Notification, error) {
	tx := s.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	cancelled, err := s.appointmentRepo.CancelExpired(tx, cutoff, now)
	if err != nil {
		s.log.Warnf("Failed to cancel expired appointments: %+v", err)
		return nil, nil, fmt.Errorf("cancel expired appointments: %w", err)
	}
	if len(cancelled) == 0 {
		return nil, nil, tx.Commit().Error
	}

	billingIDs := make([]uuid.UUID, 0, len(cancelled))
	for _, a := range cancelled {
		billingIDs = append(billingIDs, a.BillingID)
	}
	if _, err := s.billingRepo.CancelOpenByIDs(tx, billingIDs, now); err != nil {
		s.log.Warnf("Failed to cancel billings of expired appointments: %+v", err)
		return nil, nil, fmt.Errorf("cancel expired billings: %w", err)
	}

	var notifications []entity.Notification
	if s.cfg.Notify {
		events := make([]LifecycleEvent, 0, len(cancelled))
		for i := range cancelled {
			events = append(events, AppointmentEvent(nil, entity.AuditActionAppointmentExpire, &cancelled[i]))
		}
		notifications, err = s.notifier.Record(tx, events...)
		if err != nil {
			return nil, nil, fmt.Errorf("record expiry events: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		s.log.Warnf("Failed to commit expiry sweep: %+v", err)
		return nil, nil, err
	}
	return cancelled, notifications, nil
}

// acquireLock takes the cross-replica sweep lock. Without Redis, or when Redis
// is unreachable, the sweep still runs: the update itself is race-safe and the
// lock only avoids duplicate work.
func (s *ExpiryScheduler) acquireLock(ctx context.Context) (func(), error) {
	noop := func() {}
	if s.redisClient == nil {
		return noop, nil
	}

	token := uuid.NewString()
	ok, err := s.redisClient.SetNX(ctx, ExpiryLockKey, token, s.cfg.LockTTL).Result()
	if err != nil {
		s.log.Warnf("Failed to take expiry lock, sweeping without it: %+v", err)
		return noop, nil
	}
	if !ok {
		s.log.Debug("Expiry lock held by another replica, skipping sweep")
		return nil, ErrSweepLocked
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseLockScript.Run(releaseCtx, s.redisClient, []string{ExpiryLockKey}, token).Err(); err != nil {
			s.log.Warnf("Failed to release expiry lock: %+v", err)
		}
	}, nil
}
