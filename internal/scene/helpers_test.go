package scene

import (
	"testing"

	"github.com/nerrad567/gray-logic-studio/internal/events"
	"github.com/nerrad567/gray-logic-studio/internal/source"
)

// switchCall is one SetActiveComposeRoot invocation.
type switchCall struct {
	outgoing source.Handle
	incoming source.Handle
}

// recordingCompositor remembers every switch it is asked to make.
type recordingCompositor struct {
	calls []switchCall
}

func (c *recordingCompositor) SetActiveComposeRoot(outgoing, incoming source.Handle) {
	c.calls = append(c.calls, switchCall{outgoing: outgoing, incoming: incoming})
}

type fixture struct {
	store   *Store
	sources *source.Registry
	engine  *source.NullEngine
	rec     *events.Recorder
	comp    *recordingCompositor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	engine := source.NewNullEngine()
	sources := source.NewRegistry(engine)
	stream := events.NewStream()
	rec := &events.Recorder{}
	t.Cleanup(stream.Subscribe(rec.Handle))

	store := NewStore(sources, stream)
	comp := &recordingCompositor{}
	store.SetCompositor(comp)

	return &fixture{store: store, sources: sources, engine: engine, rec: rec, comp: comp}
}

func (f *fixture) scene(t *testing.T, name string) *Scene {
	t.Helper()
	sc, err := f.store.CreateScene(name, CreateSceneOptions{})
	if err != nil {
		t.Fatalf("CreateScene(%q) error = %v", name, err)
	}
	return sc
}

func (f *fixture) image(t *testing.T, sceneID, name string) *Item {
	t.Helper()
	item, err := f.store.CreateAndAddSource(sceneID, name, source.TypeImage, map[string]any{"file": name + ".png"})
	if err != nil {
		t.Fatalf("CreateAndAddSource(%q) error = %v", name, err)
	}
	return item
}

func (f *fixture) folder(t *testing.T, sceneID, name, parentID string) *Folder {
	t.Helper()
	folder, err := f.store.AddFolder(sceneID, name, AddOptions{FolderID: parentID})
	if err != nil {
		t.Fatalf("AddFolder(%q) error = %v", name, err)
	}
	return folder
}

func (f *fixture) nest(t *testing.T, sceneID, nestedSceneID string) *Item {
	t.Helper()
	item, err := f.store.AddSource(sceneID, nestedSceneID, AddOptions{})
	if err != nil {
		t.Fatalf("AddSource(%s into %s) error = %v", nestedSceneID, sceneID, err)
	}
	return item
}

func eventTypes(evts []events.Event) []events.Type {
	out := make([]events.Type, len(evts))
	for i, e := range evts {
		out[i] = e.Type
	}
	return out
}

func equalTypes(a, b []events.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// sourceNames maps the items of a scene to their source names, in read order.
func (f *fixture) sourceNames(t *testing.T, sceneID string) []string {
	t.Helper()
	items, err := f.store.GetItems(sceneID)
	if err != nil {
		t.Fatalf("GetItems() error = %v", err)
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		src, err := f.sources.Get(item.SourceID)
		if err != nil {
			t.Fatalf("Get(%s) error = %v", item.SourceID, err)
		}
		names = append(names, src.Name)
	}
	return names
}
