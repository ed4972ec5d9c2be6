package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/abolfazlirani/asar-backend-app/internal/logging"
	"github.com/abolfazlirani/asar-backend-app/pkg/interfaces"
)

var (
	ErrJobNameRequired = errors.New("scheduler: job name is required")
	ErrJobExists       = errors.New("scheduler: job already registered")
	ErrJobNotFound     = errors.New("scheduler: job not found")
)

// JobFunc is one unit of scheduled work.
type JobFunc func(ctx context.Context) error

// Entry is the run history of a registered job.
type Entry struct {
	Name      string
	Spec      string
	Runs      int
	Failures  int
	LastRun   time.Time
	LastError error
	Next      time.Time
}

type Option func(*Scheduler)

func WithLogger(logger interfaces.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logging.Ensure(logger)
	}
}

func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithJobTimeout bounds every job run. Zero disables the bound.
func WithJobTimeout(timeout time.Duration) Option {
	return func(s *Scheduler) {
		s.timeout = timeout
	}
}

type job struct {
	entry   Entry
	fn      JobFunc
	cronID  cron.EntryID
	running sync.Mutex
}

// Scheduler runs named jobs on standard five-field cron specs. A job never
// overlaps with itself; a tick that arrives while the previous run is still
// going is skipped.
type Scheduler struct {
	mu       sync.Mutex
	cron     *cron.Cron
	jobs     map[string]*job
	logger   interfaces.Logger
	location *time.Location
	now      func() time.Time
	timeout  time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		jobs:     map[string]*job{},
		logger:   logging.NoOp(),
		location: time.Local,
		now:      time.Now,
		timeout:  5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.cron = cron.New(cron.WithLocation(s.location))
	return s
}

// Register adds a job under name. spec uses the standard cron format.
func (s *Scheduler) Register(name, spec string, fn JobFunc) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrJobNameRequired
	}
	if fn == nil {
		return fmt.Errorf("scheduler: job %q has no function", name)
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("scheduler: invalid spec %q for %s: %w", spec, name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrJobExists, name)
	}
	j := &job{entry: Entry{Name: name, Spec: spec}, fn: fn}
	id, err := s.cron.AddFunc(spec, func() {
		if !j.running.TryLock() {
			s.logger.Warn("scheduler.job.skipped", "job", name, "reason", "previous run still active")
			return
		}
		defer j.running.Unlock()
		_ = s.run(s.ctx, j)
	})
	if err != nil {
		return fmt.Errorf("scheduler: register %s: %w", name, err)
	}
	j.cronID = id
	s.jobs[name] = j
	s.logger.Info("scheduler.job.registered", "job", name, "spec", spec)
	return nil
}

// Start begins dispatching registered jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts dispatch and waits for running jobs to finish, or for ctx to
// end, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}

// RunNow executes name synchronously, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	j.running.Lock()
	defer j.running.Unlock()
	return s.run(ctx, j)
}

// Entries returns a snapshot of every registered job, ordered by name.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.jobs))
	for _, j := range s.jobs {
		entry := j.entry
		entry.Next = s.cron.Entry(j.cronID).Next
		out = append(out, entry)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}

func (s *Scheduler) run(ctx context.Context, j *job) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := s.now()
	err := s.safeCall(ctx, j)
	elapsed := s.now().Sub(start)

	s.mu.Lock()
	j.entry.Runs++
	j.entry.LastRun = start
	j.entry.LastError = err
	if err != nil {
		j.entry.Failures++
	}
	s.mu.Unlock()

	logger := s.logger.WithContext(ctx)
	if err != nil {
		logger.Error("scheduler.job.failed", "job", j.entry.Name, "duration_ms", elapsed.Milliseconds(), "error", err)
		return err
	}
	logger.Info("scheduler.job.completed", "job", j.entry.Name, "duration_ms", elapsed.Milliseconds())
	return nil
}

func (s *Scheduler) safeCall(ctx context.Context, j *job) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("scheduler: job %s panicked: %v", j.entry.Name, recovered)
		}
	}()
	return j.fn(ctx)
}
