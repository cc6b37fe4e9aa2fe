package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kdimtricp/damagecheck/internal/acquisition"
	"github.com/kdimtricp/damagecheck/internal/session"
	"github.com/kdimtricp/damagecheck/internal/submission"
)

// Workspace is everything one browser session owns.
type Workspace struct {
	ID          string
	Store       *session.Store
	Acquisition *acquisition.Component
	Coordinator *submission.Coordinator
	// Feed is nil when frames come from a device instead of the browser.
	Feed *acquisition.FeedBuffer

	mu       sync.Mutex
	lastSeen time.Time
	notice   string
}

// SetNotice keeps a message for the next dashboard render.
func (w *Workspace) SetNotice(msg string) {
	w.mu.Lock()
	w.notice = msg
	w.mu.Unlock()
}

// TakeNotice returns the pending message and forgets it.
func (w *Workspace) TakeNotice() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	msg := w.notice
	w.notice = ""
	return msg
}

// Reset starts over: the pending submission is abandoned, the stored result and the selection dropped.
func (w *Workspace) Reset() {
	w.Coordinator.Reset()
	w.Acquisition.Abandon()
	w.Acquisition.ClearSelection()
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince(now time.Time) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return now.Sub(w.lastSeen)
}

// Deps builds the per-session collaborators.
type Deps struct {
	Previews acquisition.PreviewStore
	// Frames is shared by all sessions when set; otherwise each session gets its own FeedBuffer.
	Frames   acquisition.FrameSource
	Analyzer submission.Analyzer
	History  submission.HistoryWriter
	Journal  submission.Journal
}

type Manager struct {
	deps Deps
	ttl  time.Duration
	log  *zap.Logger
	now  func() time.Time

	workspaces   map[string]*Workspace
	workspacesMu sync.RWMutex
}

func NewManager(deps Deps, idleTTL time.Duration, log *zap.Logger) *Manager {
	return &Manager{
		deps:       deps,
		ttl:        idleTTL,
		log:        log.Named("workspace"),
		now:        time.Now,
		workspaces: make(map[string]*Workspace),
	}
}

// Get returns the workspace for id and marks it as used.
func (m *Manager) Get(id string) (*Workspace, bool) {
	m.workspacesMu.RLock()
	ws, ok := m.workspaces[id]
	m.workspacesMu.RUnlock()

	if ok {
		ws.touch(m.now())
	}
	return ws, ok
}

// Create starts a fresh workspace with an empty store and an empty selection.
func (m *Manager) Create() *Workspace {
	ws := &Workspace{
		ID:       uuid.NewString(),
		Store:    session.NewStore(),
		lastSeen: m.now(),
	}

	frames := m.deps.Frames
	if frames == nil {
		ws.Feed = acquisition.NewFeedBuffer()
		frames = ws.Feed
	}

	log := m.log.With(zap.String("workspace", ws.ID))
	ws.Acquisition = acquisition.NewComponent(m.deps.Previews, frames, log)
	ws.Coordinator = submission.NewCoordinator(ws.Store, m.deps.Analyzer, m.deps.History, m.deps.Journal, log)

	m.workspacesMu.Lock()
	m.workspaces[ws.ID] = ws
	m.workspacesMu.Unlock()

	log.Debug("workspace created")
	return ws
}

func (m *Manager) Len() int {
	m.workspacesMu.RLock()
	defer m.workspacesMu.RUnlock()
	return len(m.workspaces)
}

// Remove tears the workspace down: previews are released and the store emptied.
func (m *Manager) Remove(id string) {
	m.workspacesMu.Lock()
	ws, ok := m.workspaces[id]
	delete(m.workspaces, id)
	m.workspacesMu.Unlock()

	if ok {
		m.teardown(ws)
	}
}

// Evict removes workspaces idle for longer than the ttl and returns how many went away.
func (m *Manager) Evict() int {
	now := m.now()

	var expired []*Workspace
	m.workspacesMu.Lock()
	for id, ws := range m.workspaces {
		if ws.idleSince(now) > m.ttl {
			expired = append(expired, ws)
			delete(m.workspaces, id)
		}
	}
	m.workspacesMu.Unlock()

	for _, ws := range expired {
		m.teardown(ws)
	}
	if len(expired) > 0 {
		m.log.Info("evicted idle workspaces", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run evicts idle workspaces until ctx is done, then tears down the rest.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Close()
			return
		case <-ticker.C:
			m.Evict()
		}
	}
}

func (m *Manager) Close() {
	m.workspacesMu.Lock()
	all := m.workspaces
	m.workspaces = make(map[string]*Workspace)
	m.workspacesMu.Unlock()

	for _, ws := range all {
		m.teardown(ws)
	}
}

func (m *Manager) teardown(ws *Workspace) {
	ws.Reset()
	ws.Acquisition.Close()
	if ws.Feed != nil {
		ws.Feed.Reset()
	}
	m.log.Debug("workspace closed", zap.String("workspace", ws.ID))
}
