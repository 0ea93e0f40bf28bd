// Package scheduler corre jobs periódicos en background.
//
// Es un componente del proceso: main lo crea, registra los jobs y llama
// Start/Stop. Ningún paquete se auto-registra.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"adoptipet/internal/platform/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adoptipet_scheduler_runs_total",
			Help: "Ejecuciones de jobs programados, por job y resultado.",
		},
		[]string{"job", "result"},
	)

	jobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adoptipet_scheduler_job_duration_seconds",
			Help:    "Duración de cada ejecución de job.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"job"},
	)
)

var (
	ErrAlreadyStarted = errors.New("scheduler already started")
	ErrInvalidJob     = errors.New("job requires name, positive interval and func")
)

// Job recibe el contexto del scheduler y la hora de disparo.
type Job func(ctx context.Context, now time.Time) error

type entry struct {
	name     string
	interval time.Duration
	fn       Job
	// runOnStart dispara el job apenas arranca, sin esperar el primer tick.
	runOnStart bool
}

type Scheduler struct {
	log logger.Logger
	now func() time.Time

	mu      sync.Mutex
	jobs    []entry
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func New(log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Scheduler{
		log: log.With(map[string]any{"component": "scheduler"}),
		now: time.Now,
	}
}

// Register agrega un job. Debe llamarse antes de Start.
func (s *Scheduler) Register(name string, interval time.Duration, fn Job) error {
	return s.register(entry{name: name, interval: interval, fn: fn})
}

// RegisterImmediate es como Register pero corre una vez al arrancar.
func (s *Scheduler) RegisterImmediate(name string, interval time.Duration, fn Job) error {
	return s.register(entry{name: name, interval: interval, fn: fn, runOnStart: true})
}

func (s *Scheduler) register(e entry) error {
	if e.name == "" || e.interval <= 0 || e.fn == nil {
		return ErrInvalidJob
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.jobs = append(s.jobs, e)
	return nil
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.started = true

	for _, e := range s.jobs {
		s.wg.Add(1)
		go s.loop(runCtx, e)
		s.log.Info("job scheduled", map[string]any{"job": e.name, "interval": e.interval.String()})
	}
	return nil
}

// Stop cancela los loops y espera a que termine cualquier job en curso.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.log.Info("scheduler stopped", nil)
}

func (s *Scheduler) loop(ctx context.Context, e entry) {
	defer s.wg.Done()

	if e.runOnStart {
		s.runOnce(ctx, e)
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, e)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, e entry) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			jobRunsTotal.WithLabelValues(e.name, "panic").Inc()
			s.log.Error("job panicked", map[string]any{"job": e.name, "panic": rec})
		}
		jobDuration.WithLabelValues(e.name).Observe(time.Since(start).Seconds())
	}()

	if err := e.fn(ctx, s.now()); err != nil {
		jobRunsTotal.WithLabelValues(e.name, "error").Inc()
		s.log.Warn("job failed", map[string]any{"job": e.name, "error": err})
		return
	}
	jobRunsTotal.WithLabelValues(e.name, "ok").Inc()
}
