package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/studiojuai/studio-agent/internal/chat"
	"github.com/studiojuai/studio-agent/internal/cloud"
	"github.com/studiojuai/studio-agent/internal/dispatch"
	"github.com/studiojuai/studio-agent/internal/render"
	"github.com/studiojuai/studio-agent/internal/timeline"
)

var ErrProjectNotFound = errors.New("project not found")

// Session is the live editing state of one open project: its timeline, its
// render controller, its transcript, and the dispatcher binding them
// together. Persisted fields live in the repository; the session itself is
// in-memory and rebuilt fresh on restart.
type Session struct {
	mu      sync.Mutex
	project *Project

	repo   Repository
	logger *slog.Logger

	Store      *timeline.Store
	Controller *render.Controller
	Transcript *chat.Transcript
	Dispatcher *dispatch.Dispatcher
}

// Project returns a copy of the persisted project fields.
func (s *Session) Project() Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.project
}

func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.ID
}

func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.Title
}

// CycleStylePreset advances the project's color grade to the next preset,
// wrapping after the last, and persists the change best-effort.
func (s *Session) CycleStylePreset() string {
	s.mu.Lock()
	s.project.StylePreset = NextStylePreset(s.project.StylePreset)
	preset := s.project.StylePreset
	snapshot := *s.project
	s.mu.Unlock()

	if err := s.repo.UpdateProject(context.Background(), &snapshot); err != nil {
		s.logger.Warn("failed to persist style preset", "project_id", snapshot.ID, "error", err)
	}
	return preset
}

// RefreshResult folds a completed render back into the persisted project:
// status becomes ready and the video URL is recorded. Calling it while the
// job is not completed, or when the result is already recorded, is a no-op.
func (s *Session) RefreshResult(ctx context.Context) error {
	job := s.Controller.Snapshot()
	if job.Status != render.StatusCompleted || job.ResultURL == "" {
		return nil
	}

	s.mu.Lock()
	if s.project.VideoURL == job.ResultURL && s.project.Status == StatusReady {
		s.mu.Unlock()
		return nil
	}
	s.project.VideoURL = job.ResultURL
	s.project.Status = StatusReady
	snapshot := *s.project
	s.mu.Unlock()

	return s.repo.UpdateProject(ctx, &snapshot)
}

type WorkspaceConfig struct {
	Repo         Repository
	Client       cloud.Client
	Logger       *slog.Logger
	UserID       string
	PollInterval time.Duration
	MaxAttempts  int
}

// Workspace owns the open sessions and the notion of a current project.
// One session exists per open project; switching projects keeps the
// previous session alive so its poll loop can finish.
type Workspace struct {
	repo         Repository
	client       cloud.Client
	logger       *slog.Logger
	userID       string
	pollInterval time.Duration
	maxAttempts  int

	mu        sync.Mutex
	sessions  map[string]*Session
	currentID string
}

func NewWorkspace(cfg WorkspaceConfig) *Workspace {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Workspace{
		repo:         cfg.Repo,
		client:       cfg.Client,
		logger:       cfg.Logger,
		userID:       cfg.UserID,
		pollInterval: cfg.PollInterval,
		maxAttempts:  cfg.MaxAttempts,
		sessions:     make(map[string]*Session),
	}
}

// CreateProject persists a new draft project, opens a session for it, and
// makes it current.
func (w *Workspace) CreateProject(ctx context.Context, title string) (*Session, error) {
	if title == "" {
		return nil, fmt.Errorf("project title must not be empty")
	}

	p := New(title)
	if err := w.repo.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	sess := w.newSession(p)
	w.sessions[p.ID] = sess
	w.currentID = p.ID

	w.logger.Info("project created", "project_id", p.ID, "title", p.Title)
	return sess, nil
}

// OpenProject loads a persisted project and makes it current, reusing the
// live session if the project is already open.
func (w *Workspace) OpenProject(ctx context.Context, id string) (*Session, error) {
	w.mu.Lock()
	if sess, ok := w.sessions[id]; ok {
		w.currentID = id
		w.mu.Unlock()
		return sess, nil
	}
	w.mu.Unlock()

	p, err := w.repo.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if sess, ok := w.sessions[id]; ok {
		w.currentID = id
		return sess, nil
	}
	sess := w.newSession(p)
	w.sessions[id] = sess
	w.currentID = id

	w.logger.Info("project opened", "project_id", id)
	return sess, nil
}

// Current returns the session of the current project, if any.
func (w *Workspace) Current() (*Session, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.currentID == "" {
		return nil, false
	}
	sess, ok := w.sessions[w.currentID]
	return sess, ok
}

// Session returns the live session for id without changing the current
// project.
func (w *Workspace) Session(id string) (*Session, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	sess, ok := w.sessions[id]
	return sess, ok
}

func (w *Workspace) ListRecent(ctx context.Context) ([]*Project, error) {
	return w.repo.ListRecent(ctx)
}

// Shutdown cancels every live poll loop. Sessions are not persisted; the
// timeline and render state are rebuilt from scratch next start.
func (w *Workspace) Shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, sess := range w.sessions {
		sess.Controller.Reset()
	}
}

func (w *Workspace) newSession(p *Project) *Session {
	logger := w.logger.With("project_id", p.ID)
	store := timeline.NewStore(logger)
	controller := render.NewController(render.ControllerConfig{
		ProjectID:    p.ID,
		Client:       w.client.Generation(),
		Store:        store,
		Logger:       logger,
		PollInterval: w.pollInterval,
		MaxAttempts:  w.maxAttempts,
	})
	transcript := chat.NewTranscript()

	sess := &Session{
		project:    p,
		repo:       w.repo,
		logger:     logger,
		Store:      store,
		Controller: controller,
		Transcript: transcript,
	}
	sess.Dispatcher = dispatch.NewDispatcher(dispatch.Config{
		Project:    sess,
		Classifier: w.client.Chat(),
		AutoEdit:   w.client.Editor(),
		Controller: controller,
		Store:      store,
		Transcript: transcript,
		Logger:     logger,
		UserID:     w.userID,
	})
	return sess
}
