package studio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-studio/internal/events"
	"github.com/nerrad567/gray-logic-studio/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-studio/internal/scene"
	"github.com/nerrad567/gray-logic-studio/internal/selection"
	"github.com/nerrad567/gray-logic-studio/internal/source"
)

// DefaultSceneName is used by Bootstrap when Options leaves it empty.
const DefaultSceneName = "Scene"

// Logger defines the logging interface used by the Studio and handed down to
// the registry, stream and store.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options configures a Studio. Every field is optional.
type Options struct {
	// DefaultSceneName names the scene Bootstrap creates.
	DefaultSceneName string

	// KeepRevisions is how many snapshots Save keeps; 0 keeps all.
	KeepRevisions int

	// CanvasWidth and CanvasHeight size scenes nested in other scenes.
	CanvasWidth  float64
	CanvasHeight float64

	Engine     source.Engine
	Compositor scene.Compositor
	Logger     Logger
}

// Studio owns the scene graph and serialises access to it.
type Studio struct {
	mu       sync.Mutex
	registry *source.Registry
	stream   *events.Stream
	store    *scene.Store
	sel      *selection.Selection

	repo   scene.Repository
	opts   Options
	logger Logger

	dirty     atomic.Bool
	lastSaved atomic.Int64
}

// New creates a studio with an empty graph. repo may be nil, in which case
// Save and Load return ErrNoRepository.
func New(repo scene.Repository, opts Options) *Studio {
	if opts.DefaultSceneName == "" {
		opts.DefaultSceneName = DefaultSceneName
	}
	if opts.Engine == nil {
		opts.Engine = source.NewNullEngine()
	}
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	registry := source.NewRegistry(opts.Engine)
	registry.SetLogger(logger)
	stream := events.NewStream()
	stream.SetLogger(logger)
	store := scene.NewStore(registry, stream)
	store.SetLogger(logger)
	if opts.Compositor != nil {
		store.SetCompositor(opts.Compositor)
	}
	store.SetCanvasSize(opts.CanvasWidth, opts.CanvasHeight)

	s := &Studio{
		registry: registry,
		stream:   stream,
		store:    store,
		sel:      selection.New(store, ""),
		repo:     repo,
		opts:     opts,
		logger:   logger,
	}
	stream.Subscribe(func(events.Event) { s.dirty.Store(true) })
	return s
}

// Stream returns the event stream. Subscribing is safe from any goroutine;
// handlers run while the studio lock is held and must not call back into
// the Studio.
func (s *Studio) Stream() *events.Stream {
	return s.stream
}

// Do runs fn with exclusive access to the store and the default selection.
// The selection is re-bound to the active scene first if its scene no
// longer exists.
func (s *Studio) Do(fn func(store *scene.Store, sel *selection.Selection) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebindSelection()
	return fn(s.store, s.sel)
}

// View runs fn with exclusive access to the store. fn must not mutate it.
func (s *Studio) View(fn func(store *scene.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.store)
}

func (s *Studio) rebindSelection() {
	if s.sel.SceneID() != "" && s.store.HasScene(s.sel.SceneID()) {
		return
	}
	s.sel = selection.New(s.store, s.store.ActiveSceneID())
}

// Bootstrap creates the default scene when the graph has none. It reports
// whether a scene was created.
func (s *Studio) Bootstrap() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store.SceneCount() > 0 {
		return false, nil
	}
	sc, err := s.store.CreateScene(s.opts.DefaultSceneName, scene.CreateSceneOptions{})
	if err != nil {
		return false, fmt.Errorf("creating default scene: %w", err)
	}
	s.rebindSelection()
	s.logger.Info("default scene created", "id", sc.ID, "name", sc.Name)
	return true, nil
}

// Open restores the newest saved snapshot, or bootstraps an empty graph
// when nothing has been saved yet.
func (s *Studio) Open(ctx context.Context) error {
	err := s.Load(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, scene.ErrNoSnapshot), errors.Is(err, ErrNoRepository):
		if _, err := s.Bootstrap(); err != nil {
			return err
		}
		return nil
	default:
		return err
	}
}

// Load replaces the graph with the newest saved snapshot. Returns
// scene.ErrNoSnapshot when the repository is empty.
func (s *Studio) Load(ctx context.Context) error {
	if s.repo == nil {
		return ErrNoRepository
	}
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.ImportState(snap); err != nil {
		return fmt.Errorf("importing snapshot: %w", err)
	}
	s.sel = selection.New(s.store, s.store.ActiveSceneID())
	s.dirty.Store(false)
	s.logger.Info("scene collection loaded", "scenes", len(snap.Scenes), "sources", len(snap.Sources))
	return nil
}

// Save stores a snapshot of the graph as a new revision and prunes old
// revisions. The export happens under the lock, the write does not.
func (s *Studio) Save(ctx context.Context) (int64, error) {
	if s.repo == nil {
		return 0, ErrNoRepository
	}

	s.mu.Lock()
	snap := s.store.ExportState()
	s.dirty.Store(false)
	s.mu.Unlock()

	id, err := s.repo.Save(ctx, snap)
	if err != nil {
		s.dirty.Store(true)
		return 0, fmt.Errorf("saving snapshot: %w", err)
	}
	s.lastSaved.Store(id)

	if s.opts.KeepRevisions > 0 {
		pruned, err := s.repo.Prune(ctx, s.opts.KeepRevisions)
		if err != nil {
			s.logger.Warn("pruning snapshots", "error", err)
		} else if pruned > 0 {
			s.logger.Debug("old snapshots pruned", "count", pruned)
		}
	}

	s.logger.Info("scene collection saved", "revision", id, "scenes", len(snap.Scenes))
	return id, nil
}

// Dirty reports whether the graph changed since the last Save or Load.
func (s *Studio) Dirty() bool {
	return s.dirty.Load()
}

// LastSavedRevision returns the revision id of the last successful Save.
func (s *Studio) LastSavedRevision() int64 {
	return s.lastSaved.Load()
}

// RunAutosave saves every interval while there are unsaved changes, until
// ctx is cancelled. Save errors are logged and retried on the next tick.
func (s *Studio) RunAutosave(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.Dirty() {
				continue
			}
			if _, err := s.Save(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Error("autosave failed", "error", err)
			}
		}
	}
}

// ActiveScene returns the id and name of the active scene, both empty when
// there are no scenes.
func (s *Studio) ActiveScene() (id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, err := s.store.ActiveScene()
	if err != nil {
		return "", ""
	}
	return sc.ID, sc.Name
}

// GraphSize counts scenes, nodes and sources. Sources include the scene
// sources.
func (s *Studio) GraphSize() influxdb.GraphSize {
	s.mu.Lock()
	defer s.mu.Unlock()

	size := influxdb.GraphSize{
		Scenes:  s.store.SceneCount(),
		Sources: s.registry.Count(),
	}
	for _, sc := range s.store.GetScenes() {
		nodes, err := s.store.GetNodes(sc.ID)
		if err != nil {
			continue
		}
		for _, n := range nodes {
			if n.Kind() == scene.KindFolder {
				size.Folders++
			} else {
				size.Items++
			}
		}
	}
	return size
}

// Export returns a snapshot of the current graph.
func (s *Studio) Export() *scene.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ExportState()
}

// Revisions lists saved snapshots, newest first.
func (s *Studio) Revisions(ctx context.Context, limit int) ([]scene.Revision, error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}
	return s.repo.ListRevisions(ctx, limit)
}
