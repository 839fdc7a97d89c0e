// Package board holds the task board and the schedule book in memory and
// writes a full snapshot of each back to a key-value store after every change.
package board

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"tutor-dashboard/domain"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNotFound        = errors.New("not found")
)

// KV is the durable store the board is persisted to. Get returns nil, nil
// when the key has never been written.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Keys names the two entries the board is stored under.
type Keys struct {
	Tasks     string
	Schedules string
}

// DefaultKeys are the keys the browser dashboard stored its board under.
var DefaultKeys = Keys{Tasks: "tasks", Schedules: "schedules"}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for hydration and flush warnings.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithKeys overrides the storage keys. Empty fields keep their defaults.
func WithKeys(keys Keys) Option {
	return func(s *Store) {
		if keys.Tasks != "" {
			s.keys.Tasks = keys.Tasks
		}
		if keys.Schedules != "" {
			s.keys.Schedules = keys.Schedules
		}
	}
}

// WithIDFunc replaces the generator used for task and schedule ids.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

type taskEdit struct {
	category domain.Category
	id       string
}

// Store owns the board state. All methods are safe for concurrent use and
// run to completion one at a time.
type Store struct {
	mu    sync.Mutex
	kv    KV
	log   *log.Logger
	keys  Keys
	newID func() string

	tasks     map[domain.Category][]domain.Task
	extra     []domain.Category
	schedules []domain.Schedule

	taskEdit     *taskEdit
	scheduleEdit string
}

// New creates an empty store backed by kv. Call Load to hydrate it.
func New(kv KV, opts ...Option) *Store {
	if kv == nil {
		panic("board.New: kv is nil")
	}
	s := &Store{
		kv:    kv,
		log:   log.StandardLogger(),
		keys:  DefaultKeys,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resetTasks()
	return s
}

func (s *Store) resetTasks() {
	s.tasks = make(map[domain.Category][]domain.Task, len(domain.Categories))
	for _, c := range domain.Categories {
		s.tasks[c] = []domain.Task{}
	}
	s.extra = nil
	s.taskEdit = nil
}

// Load replaces the in-memory state with what is persisted. Unreadable
// payloads fall back to an empty board with a logged warning; only errors
// from the store itself are returned.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rawTasks, err := s.kv.Get(ctx, s.keys.Tasks)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.keys.Tasks, err)
	}
	rawSchedules, err := s.kv.Get(ctx, s.keys.Schedules)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.keys.Schedules, err)
	}

	s.resetTasks()
	lists, err := decodeTaskLists(rawTasks)
	if err != nil {
		s.log.WithFields(log.Fields{"key": s.keys.Tasks, "error": err}).Warn("discarding unreadable tasks")
	}
	for name, texts := range lists {
		c := domain.Category(name)
		if !c.Fixed() {
			s.extra = append(s.extra, c)
		}
		tasks := make([]domain.Task, 0, len(texts))
		for _, text := range texts {
			tasks = append(tasks, domain.Task{ID: s.newID(), Text: text})
		}
		s.tasks[c] = tasks
	}
	sort.Slice(s.extra, func(i, j int) bool { return s.extra[i] < s.extra[j] })

	s.schedules = []domain.Schedule{}
	s.scheduleEdit = ""
	records, skipped, err := decodeSchedules(rawSchedules)
	if err != nil {
		s.log.WithFields(log.Fields{"key": s.keys.Schedules, "error": err}).Warn("discarding unreadable schedules")
	}
	if skipped > 0 {
		s.log.WithFields(log.Fields{"key": s.keys.Schedules, "skipped": skipped}).Warn("skipped unreadable schedules")
	}
	for _, rec := range records {
		rec.ID = s.newID()
		s.schedules = append(s.schedules, rec)
	}

	s.log.WithFields(log.Fields{
		"categories": len(s.tasks),
		"schedules":  len(s.schedules),
	}).Debug("board loaded")
	return nil
}

func (s *Store) categories() []domain.Category {
	out := make([]domain.Category, 0, len(domain.Categories)+len(s.extra))
	out = append(out, domain.Categories...)
	return append(out, s.extra...)
}

func (s *Store) flushTasks(ctx context.Context) error {
	data, err := encodeTaskLists(s.tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := s.kv.Put(ctx, s.keys.Tasks, data); err != nil {
		s.log.WithFields(log.Fields{"key": s.keys.Tasks, "error": err}).Error("flush tasks failed")
		return fmt.Errorf("flush %s: %w", s.keys.Tasks, err)
	}
	return nil
}

func (s *Store) flushSchedules(ctx context.Context) error {
	data, err := encodeSchedules(s.schedules)
	if err != nil {
		return fmt.Errorf("encode schedules: %w", err)
	}
	if err := s.kv.Put(ctx, s.keys.Schedules, data); err != nil {
		s.log.WithFields(log.Fields{"key": s.keys.Schedules, "error": err}).Error("flush schedules failed")
		return fmt.Errorf("flush %s: %w", s.keys.Schedules, err)
	}
	return nil
}
