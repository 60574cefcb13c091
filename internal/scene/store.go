package scene

import (
	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-studio/internal/events"
	"github.com/nerrad567/gray-logic-studio/internal/source"
)

// Logger defines the logging interface used by the Store.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Compositor is the native layer that renders the active scene.
type Compositor interface {
	// SetActiveComposeRoot switches the program output from the outgoing
	// scene to the incoming one. Either handle may be nil.
	SetActiveComposeRoot(outgoing, incoming source.Handle)
}

type nullCompositor struct{}

func (nullCompositor) SetActiveComposeRoot(source.Handle, source.Handle) {}

// Store owns every scene and node and is the only component that mutates
// them.
type Store struct {
	sources    *source.Registry
	stream     *events.Stream
	compositor Compositor
	logger     Logger
	newID      func() string

	scenes     map[string]*Scene
	sceneOrder []string // creation order
	nodes      map[string]Node

	activeID   string
	previousID string // scene that was active before activeID

	canvasW, canvasH float64
}

// NewStore creates an empty store on top of a source registry. Events are
// published on stream.
func NewStore(sources *source.Registry, stream *events.Stream) *Store {
	return &Store{
		sources:    sources,
		stream:     stream,
		compositor: nullCompositor{},
		logger:     noopLogger{},
		newID:      func() string { return uuid.New().String() },
		scenes:     make(map[string]*Scene),
		nodes:      make(map[string]Node),
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// SetCompositor sets the native compositor notified on scene switches.
func (s *Store) SetCompositor(c Compositor) {
	if c == nil {
		c = nullCompositor{}
	}
	s.compositor = c
}

func (s *Store) publish(evts []events.Event) {
	if len(evts) > 0 {
		s.stream.Publish(evts...)
	}
}

// childList returns the child slice of a container: the scene root when
// parentID is empty, otherwise the folder. Both must exist.
func (s *Store) childList(sceneID, parentID string) *[]string {
	if parentID == "" {
		return &s.scenes[sceneID].ChildIDs
	}
	return &s.nodes[parentID].(*Folder).ChildIDs
}

// containerOf returns the child slice that holds n.
func (s *Store) containerOf(n Node) *[]string {
	info := n.Info()
	return s.childList(info.SceneID, info.ParentID)
}

// flatten appends ids and, depth-first, every folder's children.
func (s *Store) flatten(ids []string, out []string) []string {
	for _, id := range ids {
		out = append(out, id)
		if f, ok := s.nodes[id].(*Folder); ok {
			out = s.flatten(f.ChildIDs, out)
		}
	}
	return out
}

// isWithin reports whether nodeID is ancestorID or lies in its subtree.
func (s *Store) isWithin(nodeID, ancestorID string) bool {
	for id := nodeID; id != ""; {
		if id == ancestorID {
			return true
		}
		n, ok := s.nodes[id]
		if !ok {
			return false
		}
		id = n.Info().ParentID
	}
	return false
}

// folderIn resolves a folder id in a scene. An empty id means the scene root.
func (s *Store) folderIn(sceneID, folderID string) error {
	if folderID == "" {
		return nil
	}
	n, ok := s.nodes[folderID]
	if !ok {
		return ErrNodeNotFound
	}
	if _, isFolder := n.(*Folder); !isFolder {
		return ErrNotAFolder
	}
	if n.Info().SceneID != sceneID {
		return ErrForeignScene
	}
	return nil
}

func insertAt(list *[]string, idx int, id string) {
	l := *list
	idx = min(max(idx, 0), len(l))
	l = append(l, "")
	copy(l[idx+1:], l[idx:])
	l[idx] = id
	*list = l
}

func removeID(list *[]string, id string) int {
	i := indexOf(*list, id)
	if i >= 0 {
		*list = append((*list)[:i], (*list)[i+1:]...)
	}
	return i
}

func indexOf(list []string, id string) int {
	for i, v := range list {
		if v == id {
			return i
		}
	}
	return -1
}
