package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/nerrad567/gray-logic-studio/internal/events"
	"github.com/nerrad567/gray-logic-studio/internal/source"
)

func TestAddSource_ReadOrder(t *testing.T) {
	f := newFixture(t)
	sc := f.scene(t, "Main")

	f.image(t, sc.ID, "Image1")
	f.image(t, sc.ID, "Image2")

	got := f.sourceNames(t, sc.ID)
	if want := []string{"Image2", "Image1"}; !equalIDs(got, want) {
		t.Errorf("GetItems() order = %v, want %v", got, want)
	}
}

func TestAddSource(t *testing.T) {
	f := newFixture(t)
	sc := f.scene(t, "Main")
	src, err := f.sources.Create(source.Spec{Type: source.TypeColor, Name: "Red"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	folder := f.folder(t, sc.ID, "Group", "")

	item, err := f.store.AddSource(sc.ID, src.ID, AddOptions{
		FolderID:  folder.ID,
		Transform: &Transform{Scale: Vec2{X: 2, Y: 2}, Rotation: -90},
		Hidden:    true,
		Locked:    true,
	})
	if err != nil {
		t.Fatalf("AddSource() error = %v", err)
	}
	if item.ParentID != folder.ID || item.Visible || !item.Locked {
		t.Errorf("item = %+v", item)
	}
	if item.Transform.Rotation != 270 {
		t.Errorf("Rotation = %v, want 270", item.Transform.Rotation)
	}
	got, _ := f.store.GetFolder(folder.ID)
	if !equalIDs(got.ChildIDs, []string{item.ID}) {
		t.Errorf("folder children = %v", got.ChildIDs)
	}

	other := f.scene(t, "Other")
	otherFolder := f.folder(t, other.ID, "Elsewhere", "")

	tests := []struct {
		name    string
		sceneID string
		srcID   string
		opts    AddOptions
		wantErr error
	}{
		{"unknown scene", "missing", src.ID, AddOptions{}, ErrSceneNotFound},
		{"unknown source", sc.ID, "missing", AddOptions{}, source.ErrSourceNotFound},
		{"unknown folder", sc.ID, src.ID, AddOptions{FolderID: "missing"}, ErrNodeNotFound},
		{"folder is an item", sc.ID, src.ID, AddOptions{FolderID: item.ID}, ErrNotAFolder},
		{"folder in other scene", sc.ID, src.ID, AddOptions{FolderID: otherFolder.ID}, ErrForeignScene},
		{"scene into itself", sc.ID, sc.ID, AddOptions{}, ErrCycle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, _ := f.store.NodeIDs(sc.ID)
			_, err := f.store.AddSource(tt.sceneID, tt.srcID, tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddSource() error = %v, want %v", err, tt.wantErr)
			}
			after, _ := f.store.NodeIDs(sc.ID)
			if !equalIDs(before, after) {
				t.Error("failed AddSource changed the scene")
			}
		})
	}
}

func TestCreateAndAddSource_RejectsSceneType(t *testing.T) {
	f := newFixture(t)
	sc := f.scene(t, "Main")

	_, err := f.store.CreateAndAddSource(sc.ID, "Nested", source.TypeScene, nil)
	if !errors.Is(err, source.ErrInvalidType) {
		t.Errorf("error = %v, want source.ErrInvalidType", err)
	}
	if _, err := f.store.CreateAndAddSource("missing", "Logo", source.TypeImage, nil); !errors.Is(err, ErrSceneNotFound) {
		t.Errorf("error = %v, want ErrSceneNotFound", err)
	}
	if f.sources.Count() != 1 {
		t.Errorf("sources = %d, want only the scene source", f.sources.Count())
	}
}

func TestCreateAndAddSource_Events(t *testing.T) {
	f := newFixture(t)
	sc := f.scene(t, "Main")
	f.rec.Reset()

	item := f.image(t, sc.ID, "Logo")

	got := f.rec.Events()
	want := []events.Type{events.SourceAdded, events.ItemAdded}
	if !equalTypes(eventTypes(got), want) {
		t.Fatalf("events = %v, want %v", eventTypes(got), want)
	}
	if got[0].SourceID != item.SourceID || got[1].NodeID != item.ID || got[1].NodeKind != "item" {
		t.Errorf("events = %+v", got)
	}
	if got[1].Name != "Logo" {
		t.Errorf("item.added Name = %q, want source name", got[1].Name)
	}
}

func TestRemoveItem_FolderPostOrder(t *testing.T) {
	f := newFixture(t)
	sc := f.scene(t, "Main")
	outer := f.folder(t, sc.ID, "Outer", "")
	inner := f.folder(t, sc.ID, "Inner", outer.ID)
	a := f.image(t, sc.ID, "A")
	if err := f.store.SetParent(a.ID, inner.ID); err != nil {
		t.Fatalf("SetParent() error = %v", err)
	}
	keep := f.image(t, sc.ID, "Keep")
	f.rec.Reset()

	if err := f.store.RemoveItem(outer.ID); err != nil {
		t.Fatalf("RemoveItem() error = %v", err)
	}

	var order []string
	for _, e := range f.rec.Events() {
		if e.Type != events.ItemRemoved {
			t.Errorf("unexpected event %s", e.Type)
		}
		order = append(order, e.NodeID)
	}
	if want := []string{a.ID, inner.ID, outer.ID}; !equalIDs(order, want) {
		t.Errorf("removal order = %v, want %v", order, want)
	}
	ids, _ := f.store.NodeIDs(sc.ID)
	if !equalIDs(ids, []string{keep.ID}) {
		t.Errorf("remaining nodes = %v", ids)
	}
	if !f.sources.Exists(a.SourceID) {
		t.Error("RemoveItem deleted the source")
	}
	if err := f.store.RemoveItem(outer.ID); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("second RemoveItem() error = %v", err)
	}
}

func TestRemoveSource(t *testing.T) {
	f := newFixture(t)
	main := f.scene(t, "Main")
	other := f.scene(t, "Other")
	item := f.image(t, main.ID, "Logo")
	ref, err := f.store.AddSource(other.ID, item.SourceID, AddOptions{})
	if err != nil {
		t.Fatalf("AddSource() error = %v", err)
	}

	if !f.store.IsSourceReferenced(item.SourceID) {
		t.Fatal("IsSourceReferenced() = false")
	}
	refs := f.store.ReferencingNodes(item.SourceID)
	if len(refs) != 2 || refs[0].ID != item.ID || refs[1].ID != ref.ID {
		t.Errorf("ReferencingNodes() = %+v", refs)
	}

	if err := f.store.RemoveSource(item.SourceID, false); !errors.Is(err, ErrSourceInUse) {
		t.Fatalf("RemoveSource() error = %v, want ErrSourceInUse", err)
	}
	if !f.sources.Exists(item.SourceID) {
		t.Fatal("refused RemoveSource destroyed the source")
	}
	if err := f.store.RemoveSource(main.ID, true); !errors.Is(err, ErrSceneSource) {
		t.Errorf("RemoveSource(scene) error = %v, want ErrSceneSource", err)
	}

	f.rec.Reset()
	if err := f.store.RemoveSource(item.SourceID, true); err != nil {
		t.Fatalf("RemoveSource(force) error = %v", err)
	}
	want := []events.Type{events.ItemRemoved, events.ItemRemoved, events.SourceRemoved}
	if got := eventTypes(f.rec.Events()); !equalTypes(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if f.store.HasNode(item.ID) || f.store.HasNode(ref.ID) || f.sources.Exists(item.SourceID) {
		t.Error("forced RemoveSource left references or the source behind")
	}
}

func TestSetNodesOrder(t *testing.T) {
	f := newFixture(t)
	sc := f.scene(t, "Main")
	a := f.image(t, sc.ID, "A")
	b := f.image(t, sc.ID, "B")
	c := f.image(t, sc.ID, "C")
	f.rec.Reset()

	if err := f.store.SetNodesOrder(sc.ID, []string{a.ID, b.ID, c.ID}); err != nil {
		t.Fatalf("SetNodesOrder() error = %v", err)
	}
	if got := f.sourceNames(t, sc.ID); !equalIDs(got, []string{"A", "B", "C"}) {
		t.Errorf("order = %v", got)
	}
	if got := eventTypes(f.rec.Events()); !equalTypes(got, []events.Type{events.SceneNodesReordered}) {
		t.Errorf("events = %v", got)
	}

	bad := [][]string{
		{a.ID, b.ID},
		{a.ID, b.ID, b.ID},
		{a.ID, b.ID, "missing"},
	}
	for _, ids := range bad {
		if err := f.store.SetNodesOrder(sc.ID, ids); !errors.Is(err, ErrInvalidOrder) {
			t.Errorf("SetNodesOrder(%v) error = %v, want ErrInvalidOrder", ids, err)
		}
	}
	if err := f.store.SetNodesOrder("missing", nil); !errors.Is(err, ErrSceneNotFound) {
		t.Errorf("SetNodesOrder(missing scene) error = %v", err)
	}
}

func TestSetTransform_Normalization(t *testing.T) {
	tests := []struct {
		name     string
		rotation float64
		want     float64
	}{
		{"above full turn", 450, 90},
		{"negative", -10, 350},
		{"exact turn", 360, 0},
		{"several turns negative", -730, 350},
		{"fractional", 90.5, 90.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			sc := f.scene(t, "Main")
			item := f.image(t, sc.ID, "Logo")

			if err := f.store.SetTransform(item.ID, TransformPatch{Rotation: Float64(tt.rotation)}); err != nil {
				t.Fatalf("SetTransform() error = %v", err)
			}
			got, _ := f.store.GetItem(item.ID)
			if got.Transform.Rotation != tt.want {
				t.Errorf("Rotation = %v, want %v", got.Transform.Rotation, tt.want)
			}
		})
	}
}

func TestSetTransform_CropRounding(t *testing.T) {
	f := newFixture(t)
	sc := f.scene(t, "Main")
	item := f.image(t, sc.ID, "Logo")

	err := f.store.SetTransform(item.ID, TransformPatch{Crop: &CropPatch{
		Top:    Float64(1.2),
		Bottom: Float64(5.6),
		Left:   Float64(7.1),
		Right:  Float64(10),
	}})
	if err != nil {
		t.Fatalf("SetTransform() error = %v", err)
	}
	got, _ := f.store.GetItem(item.ID)
	if want := (Crop{Top: 1, Bottom: 6, Left: 7, Right: 10}); got.Transform.Crop != want {
		t.Errorf("Crop = %+v, want %+v", got.Transform.Crop, want)
	}

	if err := f.store.SetTransform(item.ID, TransformPatch{Crop: &CropPatch{Top: Float64(-3.7)}}); err != nil {
		t.Fatalf("SetTransform() error = %v", err)
	}
	got, _ = f.store.GetItem(item.ID)
	if got.Transform.Crop.Top != 0 || got.Transform.Crop.Bottom != 6 {
		t.Errorf("negative crop = %+v, want clamped top and untouched bottom", got.Transform.Crop)
	}
}

func TestSetTransform_EventsAndErrors(t *testing.T) {
	f := newFixture(t)
	sc := f.scene(t, "Main")
	item := f.image(t, sc.ID, "Logo")
	folder := f.folder(t, sc.ID, "Group", "")
	f.rec.Reset()

	if err := f.store.SetTransform(item.ID, TransformPatch{Position: &Vec2{X: 5, Y: 5}}); err != nil {
		t.Fatalf("SetTransform() error = %v", err)
	}
	updated := f.rec.OfType(events.ItemUpdated)
	if len(updated) != 1 || updated[0].Changes[0] != events.ChangeTransform {
		t.Errorf("item.updated events = %+v", updated)
	}

	f.rec.Reset()
	if err := f.store.SetTransform(item.ID, TransformPatch{Position: &Vec2{X: 5, Y: 5}}); err != nil {
		t.Fatalf("SetTransform(same) error = %v", err)
	}
	if err := f.store.SetTransform(item.ID, TransformPatch{}); err != nil {
		t.Fatalf("SetTransform(empty) error = %v", err)
	}
	if len(f.rec.Events()) != 0 {
		t.Errorf("no-op transforms emitted %v", eventTypes(f.rec.Events()))
	}

	if err := f.store.SetTransform(item.ID, TransformPatch{Rotation: Float64(math.NaN())}); !errors.Is(err, ErrInvalidTransform) {
		t.Errorf("SetTransform(NaN) error = %v, want ErrInvalidTransform", err)
	}
	if err := f.store.SetTransform(folder.ID, TransformPatch{Rotation: Float64(1)}); !errors.Is(err, ErrNotAnItem) {
		t.Errorf("SetTransform(folder) error = %v, want ErrNotAnItem", err)
	}
	if err := f.store.SetTransform("missing", TransformPatch{}); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("SetTransform(missing) error = %v", err)
	}
}

func TestSetVisibilityAndLock(t *testing.T) {
	f := newFixture(t)
	sc := f.scene(t, "Main")
	item := f.image(t, sc.ID, "Logo")
	f.rec.Reset()

	if err := f.store.SetVisibility(item.ID, true); err != nil {
		t.Fatalf("SetVisibility() error = %v", err)
	}
	if len(f.rec.Events()) != 0 {
		t.Error("unchanged visibility emitted an event")
	}
	if err := f.store.SetVisibility(item.ID, false); err != nil {
		t.Fatalf("SetVisibility() error = %v", err)
	}
	if err := f.store.SetLocked(item.ID, true); err != nil {
		t.Fatalf("SetLocked() error = %v", err)
	}

	got := f.rec.Events()
	if len(got) != 2 || got[0].Changes[0] != events.ChangeVisibility || got[1].Changes[0] != events.ChangeLock {
		t.Errorf("events = %+v", got)
	}
	stored, _ := f.store.GetItem(item.ID)
	if stored.Visible || !stored.Locked {
		t.Errorf("item flags = visible %v locked %v", stored.Visible, stored.Locked)
	}
}

func TestRenameFolder(t *testing.T) {
	f := newFixture(t)
	sc := f.scene(t, "Main")
	folder := f.folder(t, sc.ID, "Group", "")
	item := f.image(t, sc.ID, "Logo")
	f.rec.Reset()

	if err := f.store.RenameFolder(folder.ID, "Lower thirds"); err != nil {
		t.Fatalf("RenameFolder() error = %v", err)
	}
	got, _ := f.store.GetFolder(folder.ID)
	if got.Name != "Lower thirds" {
		t.Errorf("Name = %q", got.Name)
	}
	evts := f.rec.Events()
	if len(evts) != 1 || evts[0].Name != "Lower thirds" || evts[0].Changes[0] != events.ChangeName {
		t.Errorf("events = %+v", evts)
	}
	if err := f.store.RenameFolder(item.ID, "x"); !errors.Is(err, ErrNotAFolder) {
		t.Errorf("RenameFolder(item) error = %v", err)
	}
	if err := f.store.RenameFolder(folder.ID, " "); !errors.Is(err, ErrInvalidName) {
		t.Errorf("RenameFolder(blank) error = %v", err)
	}
}

func TestQueriesReturnCopies(t *testing.T) {
	f := newFixture(t)
	sc := f.scene(t, "Main")
	folder := f.folder(t, sc.ID, "Group", "")
	item := f.image(t, sc.ID, "Logo")

	got, _ := f.store.GetScene(sc.ID)
	got.ChildIDs[0] = "tampered"
	n, _ := f.store.GetNode(item.ID)
	n.(*Item).Visible = false
	fl, _ := f.store.GetFolder(folder.ID)
	fl.Name = "tampered"

	again, _ := f.store.GetScene(sc.ID)
	if again.ChildIDs[0] != item.ID {
		t.Error("scene children mutated through a copy")
	}
	stored, _ := f.store.GetItem(item.ID)
	if !stored.Visible {
		t.Error("item mutated through a copy")
	}
	storedFolder, _ := f.store.GetFolder(folder.ID)
	if storedFolder.Name != "Group" {
		t.Error("folder mutated through a copy")
	}
	if _, err := f.store.GetItem(folder.ID); !errors.Is(err, ErrNotAnItem) {
		t.Errorf("GetItem(folder) error = %v", err)
	}
}

func TestItemBoundingRect(t *testing.T) {
	f := newFixture(t)
	sc := f.scene(t, "Main")
	item := f.image(t, sc.ID, "Logo")
	if err := f.store.SetSourceNativeSize(item.SourceID, 200, 100); err != nil {
		t.Fatalf("SetNativeSize() error = %v", err)
	}
	err := f.store.SetTransform(item.ID, TransformPatch{
		Position: &Vec2{X: 10, Y: 20},
		Scale:    &Vec2{X: 2, Y: 0.5},
		Crop:     &CropPatch{Left: Float64(50), Right: Float64(50)},
	})
	if err != nil {
		t.Fatalf("SetTransform() error = %v", err)
	}

	rect, err := f.store.ItemBoundingRect(item.ID)
	if err != nil {
		t.Fatalf("ItemBoundingRect() error = %v", err)
	}
	if want := (Rect{X: 10, Y: 20, Width: 200, Height: 50}); rect != want {
		t.Errorf("rect = %+v, want %+v", rect, want)
	}
}

func TestItemBoundingRect_NestedSceneUsesCanvas(t *testing.T) {
	f := newFixture(t)
	f.store.SetCanvasSize(1920, 1080)
	outer := f.scene(t, "Program")
	inner := f.scene(t, "Camera Wall")
	bg := f.image(t, inner.ID, "Background")
	if err := f.store.SetSourceNativeSize(bg.SourceID, 1920, 1080); err != nil {
		t.Fatalf("SetSourceNativeSize() error = %v", err)
	}

	item := f.nest(t, outer.ID, inner.ID)
	err := f.store.SetTransform(item.ID, TransformPatch{
		Position: &Vec2{X: 100, Y: 50},
		Scale:    &Vec2{X: 0.5, Y: 0.5},
	})
	if err != nil {
		t.Fatalf("SetTransform() error = %v", err)
	}

	rect, err := f.store.ItemBoundingRect(item.ID)
	if err != nil {
		t.Fatalf("ItemBoundingRect() error = %v", err)
	}
	if want := (Rect{X: 100, Y: 50, Width: 960, Height: 540}); rect != want {
		t.Errorf("rect = %+v, want %+v", rect, want)
	}

	if err := f.store.SetSourceNativeSize(inner.ID, 10, 10); !errors.Is(err, source.ErrInvalidType) {
		t.Errorf("SetSourceNativeSize(scene) error = %v, want ErrInvalidType", err)
	}
}
