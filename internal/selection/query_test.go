package selection

import (
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-studio/internal/scene"
	"github.com/nerrad567/gray-logic-studio/internal/source"
)

func TestSelectMatching(t *testing.T) {
	f := newFixture(t)
	sc := f.scene(t, "Main")
	logo := f.image(t, sc, "Logo", "")
	folder := f.folder(t, sc, "Lower Third", "")
	bg := f.image(t, sc, "Background", folder)
	caption, err := f.store.CreateAndAddSource(sc, "Caption", source.TypeText, map[string]any{"text": "hello"})
	if err != nil {
		t.Fatalf("CreateAndAddSource() error = %v", err)
	}
	if err := f.store.SetVisibility(bg, false); err != nil {
		t.Fatalf("SetVisibility() error = %v", err)
	}
	if err := f.store.SetLocked(logo, true); err != nil {
		t.Fatalf("SetLocked() error = %v", err)
	}

	// Read order: Caption, Lower Third, Background, Logo.
	tests := []struct {
		query string
		want  []string
	}{
		{`kind == "folder"`, []string{folder}},
		{`kind == "item" && source == "image_source"`, []string{bg, logo}},
		{`!visible`, []string{bg}},
		{`locked`, []string{logo}},
		{`name startsWith "L"`, []string{folder, logo}},
		{`parent == "` + folder + `"`, []string{bg}},
		{`depth == 0 && kind == "item"`, []string{caption.ID, logo}},
		{`name == "nothing"`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			sel := New(f.store, sc)
			n, err := sel.SelectMatching(tt.query)
			if err != nil {
				t.Fatalf("SelectMatching() error = %v", err)
			}
			if n != len(tt.want) {
				t.Errorf("SelectMatching() = %d, want %d", n, len(tt.want))
			}
			if got := nodeIDs(sel.GetNodes()); !equalIDs(got, tt.want) {
				t.Errorf("selected %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectMatching_InvalidQuery(t *testing.T) {
	f := newFixture(t)
	sc := f.scene(t, "Main")
	a := f.image(t, sc, "a", "")

	tests := []struct {
		name  string
		query string
	}{
		{"empty", ""},
		{"syntax", `kind ==`},
		{"unknown variable", `colour == "red"`},
		{"not boolean", `name`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := New(f.store, sc)
			if err := sel.Select(a); err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if _, err := sel.SelectMatching(tt.query); !errors.Is(err, ErrInvalidQuery) {
				t.Errorf("SelectMatching(%q) error = %v, want ErrInvalidQuery", tt.query, err)
			}
			if !sel.IsSelected(a) {
				t.Error("selection changed after invalid query")
			}
		})
	}
}

func TestSelectMatching_UnknownScene(t *testing.T) {
	f := newFixture(t)
	sel := New(f.store, "missing")
	if _, err := sel.SelectMatching(`true`); !errors.Is(err, scene.ErrSceneNotFound) {
		t.Errorf("SelectMatching() error = %v, want ErrSceneNotFound", err)
	}
}
