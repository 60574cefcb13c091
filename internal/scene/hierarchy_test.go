package scene

import (
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-studio/internal/events"
)

func TestSetParent(t *testing.T) {
	f := newFixture(t)
	sc := f.scene(t, "Main")
	folder := f.folder(t, sc.ID, "Group", "")
	a := f.image(t, sc.ID, "A")
	b := f.image(t, sc.ID, "B")
	f.rec.Reset()

	if err := f.store.SetParent(a.ID, folder.ID); err != nil {
		t.Fatalf("SetParent(a) error = %v", err)
	}
	if err := f.store.SetParent(b.ID, folder.ID); err != nil {
		t.Fatalf("SetParent(b) error = %v", err)
	}

	got, _ := f.store.GetFolder(folder.ID)
	if !equalIDs(got.ChildIDs, []string{b.ID, a.ID}) {
		t.Errorf("folder children = %v, want [b a]", got.ChildIDs)
	}
	sc2, _ := f.store.GetScene(sc.ID)
	if !equalIDs(sc2.ChildIDs, []string{folder.ID}) {
		t.Errorf("scene children = %v", sc2.ChildIDs)
	}
	for _, e := range f.rec.Events() {
		if e.Type != events.ItemUpdated || e.Changes[0] != events.ChangeParent {
			t.Errorf("event = %+v, want parent change", e)
		}
	}
	ancestors, _ := f.store.Ancestors(a.ID)
	if !equalIDs(ancestors, []string{folder.ID}) {
		t.Errorf("Ancestors() = %v", ancestors)
	}

	if err := f.store.SetParent(a.ID, ""); err != nil {
		t.Fatalf("SetParent(root) error = %v", err)
	}
	sc2, _ = f.store.GetScene(sc.ID)
	if !equalIDs(sc2.ChildIDs, []string{a.ID, folder.ID}) {
		t.Errorf("scene children after move to root = %v", sc2.ChildIDs)
	}
}

func TestSetParent_Refusals(t *testing.T) {
	f := newFixture(t)
	sc := f.scene(t, "Main")
	other := f.scene(t, "Other")
	outer := f.folder(t, sc.ID, "Outer", "")
	inner := f.folder(t, sc.ID, "Inner", outer.ID)
	item := f.image(t, sc.ID, "Logo")
	foreign := f.folder(t, other.ID, "Foreign", "")
	before := f.store.ExportState()

	tests := []struct {
		name    string
		node    string
		parent  string
		wantErr error
	}{
		{"folder into itself", outer.ID, outer.ID, ErrInvalidParent},
		{"folder into descendant", outer.ID, inner.ID, ErrInvalidParent},
		{"into foreign folder", item.ID, foreign.ID, ErrForeignScene},
		{"into item", outer.ID, item.ID, ErrNotAFolder},
		{"unknown node", "missing", outer.ID, ErrNodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.store.SetParent(tt.node, tt.parent); !errors.Is(err, tt.wantErr) {
				t.Errorf("SetParent() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	after := f.store.ExportState()
	if len(after.Scenes[0].Nodes) != len(before.Scenes[0].Nodes) {
		t.Fatal("refused SetParent changed node count")
	}
	for i := range before.Scenes[0].Nodes {
		if before.Scenes[0].Nodes[i].ID != after.Scenes[0].Nodes[i].ID ||
			before.Scenes[0].Nodes[i].ParentID != after.Scenes[0].Nodes[i].ParentID {
			t.Errorf("node %d changed after refused SetParent", i)
		}
	}
}

func TestPlaceBeforeAfter(t *testing.T) {
	f := newFixture(t)
	sc := f.scene(t, "Main")
	a := f.image(t, sc.ID, "A")
	b := f.image(t, sc.ID, "B")
	c := f.image(t, sc.ID, "C")
	// Read order is now C, B, A.

	if err := f.store.PlaceBefore(a.ID, c.ID); err != nil {
		t.Fatalf("PlaceBefore() error = %v", err)
	}
	if got := f.sourceNames(t, sc.ID); !equalIDs(got, []string{"A", "C", "B"}) {
		t.Errorf("after PlaceBefore = %v, want [A C B]", got)
	}

	if err := f.store.PlaceAfter(a.ID, b.ID); err != nil {
		t.Fatalf("PlaceAfter() error = %v", err)
	}
	if got := f.sourceNames(t, sc.ID); !equalIDs(got, []string{"C", "B", "A"}) {
		t.Errorf("after PlaceAfter = %v, want [C B A]", got)
	}

	f.rec.Reset()
	if err := f.store.PlaceAfter(a.ID, b.ID); err != nil {
		t.Fatalf("PlaceAfter(no-op) error = %v", err)
	}
	if len(f.rec.Events()) != 0 {
		t.Errorf("no-op placement emitted %v", eventTypes(f.rec.Events()))
	}

	if err := f.store.PlaceBefore(a.ID, a.ID); !errors.Is(err, ErrInvalidParent) {
		t.Errorf("PlaceBefore(self) error = %v, want ErrInvalidParent", err)
	}
}

func TestPlaceBefore_JoinsTargetFolder(t *testing.T) {
	f := newFixture(t)
	sc := f.scene(t, "Main")
	folder := f.folder(t, sc.ID, "Group", "")
	inside := f.image(t, sc.ID, "Inside")
	if err := f.store.SetParent(inside.ID, folder.ID); err != nil {
		t.Fatalf("SetParent() error = %v", err)
	}
	outside := f.image(t, sc.ID, "Outside")
	f.rec.Reset()

	if err := f.store.PlaceAfter(outside.ID, inside.ID); err != nil {
		t.Fatalf("PlaceAfter() error = %v", err)
	}
	got, _ := f.store.GetFolder(folder.ID)
	if !equalIDs(got.ChildIDs, []string{inside.ID, outside.ID}) {
		t.Errorf("folder children = %v", got.ChildIDs)
	}
	evts := f.rec.Events()
	if len(evts) != 1 || evts[0].Changes[0] != events.ChangeParent {
		t.Errorf("events = %+v, want one parent change", evts)
	}

	if err := f.store.PlaceBefore(folder.ID, inside.ID); !errors.Is(err, ErrInvalidParent) {
		t.Errorf("PlaceBefore(folder, own child) error = %v, want ErrInvalidParent", err)
	}
}

func TestPlaceNodesBefore_KeepsRelativeOrder(t *testing.T) {
	f := newFixture(t)
	sc := f.scene(t, "Main")
	a := f.image(t, sc.ID, "A")
	b := f.image(t, sc.ID, "B")
	c := f.image(t, sc.ID, "C")
	d := f.image(t, sc.ID, "D")
	// Read order: D, C, B, A.

	if err := f.store.PlaceNodesAfter([]string{d.ID, b.ID}, a.ID); err != nil {
		t.Fatalf("PlaceNodesAfter() error = %v", err)
	}
	if got := f.sourceNames(t, sc.ID); !equalIDs(got, []string{"C", "A", "D", "B"}) {
		t.Errorf("order = %v, want [C A D B]", got)
	}
	if err := f.store.PlaceNodesBefore([]string{a.ID, b.ID}, c.ID); err != nil {
		t.Fatalf("PlaceNodesBefore() error = %v", err)
	}
	if got := f.sourceNames(t, sc.ID); !equalIDs(got, []string{"A", "B", "C", "D"}) {
		t.Errorf("order = %v, want [A B C D]", got)
	}
}
