package source

import (
	"errors"
	"testing"
)

// failingEngine refuses to create handles.
type failingEngine struct{}

func (failingEngine) CreateNativeHandle(Type, map[string]any) (Handle, error) {
	return nil, errors.New("device busy")
}

func (failingEngine) DestroyNativeHandle(Handle) {}

func TestRegistry_Create(t *testing.T) {
	engine := NewNullEngine()
	r := NewRegistry(engine)

	src, err := r.Create(Spec{
		Type:     TypeImage,
		Name:     "Logo",
		Settings: map[string]any{"file": "/tmp/logo.png"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if src.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if src.Handle == nil {
		t.Error("Create() did not obtain a native handle")
	}
	if src.AudioMixers != 0 {
		t.Errorf("image AudioMixers = %#x, want 0", src.AudioMixers)
	}
	if engine.LiveHandles() != 1 {
		t.Errorf("LiveHandles() = %d, want 1", engine.LiveHandles())
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}

func TestRegistry_CreateAudioDefaultsToAllTracks(t *testing.T) {
	r := NewRegistry(nil)
	src, err := r.Create(Spec{Type: TypeAudioInput, Name: "Mic"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if src.AudioMixers != AllTracks {
		t.Errorf("AudioMixers = %#x, want %#x", src.AudioMixers, AllTracks)
	}
}

func TestRegistry_CreateValidation(t *testing.T) {
	tooMany := MixerTrack(0xFF)
	oneTrack := Track1

	tests := []struct {
		name    string
		spec    Spec
		wantErr error
	}{
		{"unknown type", Spec{Type: "hologram", Name: "x"}, ErrInvalidType},
		{"empty name", Spec{Type: TypeImage, Name: "  "}, ErrInvalidName},
		{"mixer mask out of range", Spec{Type: TypeMedia, Name: "Clip", AudioMixers: &tooMany}, ErrInvalidMixers},
		{"mixers on silent type", Spec{Type: TypeColor, Name: "Red", AudioMixers: &oneTrack}, ErrInvalidMixers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(nil)
			_, err := r.Create(tt.spec)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
			if r.Count() != 0 {
				t.Errorf("Count() = %d after failed create, want 0", r.Count())
			}
		})
	}
}

func TestRegistry_CreateDuplicateID(t *testing.T) {
	r := NewRegistry(nil)
	if _, err := r.Create(Spec{ID: "cam", Type: TypeDisplay, Name: "Display"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err := r.Create(Spec{ID: "cam", Type: TypeDisplay, Name: "Display 2"})
	if !errors.Is(err, ErrSourceExists) {
		t.Errorf("Create() duplicate error = %v, want ErrSourceExists", err)
	}
}

func TestRegistry_CreateEngineFailure(t *testing.T) {
	r := NewRegistry(failingEngine{})
	_, err := r.Create(Spec{Type: TypeGame, Name: "Game"})
	if !errors.Is(err, ErrEngine) {
		t.Errorf("Create() error = %v, want ErrEngine", err)
	}
	if r.Count() != 0 {
		t.Errorf("Count() = %d, want 0", r.Count())
	}
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	r := NewRegistry(nil)
	src, _ := r.Create(Spec{
		Type:     TypeText,
		Name:     "Title",
		Settings: map[string]any{"text": "hello", "font": map[string]any{"size": 42}},
	})

	got, err := r.Get(src.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	got.Settings["text"] = "mutated"
	got.Settings["font"].(map[string]any)["size"] = 1

	again, _ := r.Get(src.ID)
	if again.Settings["text"] != "hello" {
		t.Errorf("settings text = %v, want hello", again.Settings["text"])
	}
	if again.Settings["font"].(map[string]any)["size"] != 42 {
		t.Errorf("nested setting was mutated through a copy")
	}

	if _, err := r.Get("missing"); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrSourceNotFound", err)
	}
}

func TestRegistry_RemoveDestroysHandle(t *testing.T) {
	engine := NewNullEngine()
	r := NewRegistry(engine)
	a, _ := r.Create(Spec{Type: TypeImage, Name: "A"})
	b, _ := r.Create(Spec{Type: TypeImage, Name: "B"})

	if err := r.Remove(a.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if engine.LiveHandles() != 1 {
		t.Errorf("LiveHandles() = %d, want 1", engine.LiveHandles())
	}
	if r.Exists(a.ID) {
		t.Error("removed source still exists")
	}
	list := r.List()
	if len(list) != 1 || list[0].ID != b.ID {
		t.Errorf("List() = %+v, want only B", list)
	}
	if err := r.Remove(a.ID); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("second Remove() error = %v, want ErrSourceNotFound", err)
	}
}

func TestRegistry_Reset(t *testing.T) {
	engine := NewNullEngine()
	r := NewRegistry(engine)
	r.Create(Spec{Type: TypeImage, Name: "A"}) //nolint:errcheck // setup
	r.Create(Spec{Type: TypeColor, Name: "B"}) //nolint:errcheck // setup

	r.Reset()

	if r.Count() != 0 || engine.LiveHandles() != 0 {
		t.Errorf("after Reset Count=%d LiveHandles=%d, want 0/0", r.Count(), engine.LiveHandles())
	}
}

func TestRegistry_UpdateSettingsWithoutSettings(t *testing.T) {
	r := NewRegistry(nil)
	src, err := r.Create(Spec{Type: TypeImage, Name: "Logo"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := r.UpdateSettings(src.ID, map[string]any{"file": "logo.png"}); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	got, _ := r.Get(src.ID)
	if got.Settings["file"] != "logo.png" {
		t.Errorf("Settings = %v, want file=logo.png", got.Settings)
	}
}

func TestRegistry_Mutators(t *testing.T) {
	r := NewRegistry(nil)
	src, _ := r.Create(Spec{Type: TypeMedia, Name: "Clip", Settings: map[string]any{"loop": true, "file": "a.mp4"}})

	if err := r.Rename(src.ID, "Intro"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if err := r.Rename(src.ID, ""); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Rename(empty) error = %v, want ErrInvalidName", err)
	}
	if err := r.UpdateSettings(src.ID, map[string]any{"loop": nil, "volume": 0.5}); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	if err := r.SetAudioMixers(src.ID, Track1|Track3); err != nil {
		t.Fatalf("SetAudioMixers() error = %v", err)
	}
	if err := r.SetMuted(src.ID, true); err != nil {
		t.Fatalf("SetMuted() error = %v", err)
	}
	if err := r.SetNativeSize(src.ID, 1920, 1080); err != nil {
		t.Fatalf("SetNativeSize() error = %v", err)
	}
	if err := r.SetNativeSize(src.ID, -1, 0); err == nil {
		t.Error("SetNativeSize(negative) expected error")
	}

	got, _ := r.Get(src.ID)
	if got.Name != "Intro" {
		t.Errorf("Name = %q, want Intro", got.Name)
	}
	if _, ok := got.Settings["loop"]; ok {
		t.Error("nil patch value did not delete key")
	}
	if got.Settings["volume"] != 0.5 || got.Settings["file"] != "a.mp4" {
		t.Errorf("Settings = %v", got.Settings)
	}
	if got.AudioMixers != Track1|Track3 || !got.Muted {
		t.Errorf("AudioMixers=%#x Muted=%v", got.AudioMixers, got.Muted)
	}
	if w, h := r.Size(src.ID); w != 1920 || h != 1080 {
		t.Errorf("Size() = %vx%v, want 1920x1080", w, h)
	}
}

func TestType_Capabilities(t *testing.T) {
	tests := []struct {
		typ     Type
		audio   bool
		video   bool
		isScene bool
	}{
		{TypeScene, false, true, true},
		{TypeImage, false, true, false},
		{TypeMedia, true, true, false},
		{TypeAudioInput, true, false, false},
		{TypeGame, true, true, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			if got := tt.typ.HasAudio(); got != tt.audio {
				t.Errorf("HasAudio() = %v, want %v", got, tt.audio)
			}
			if got := tt.typ.HasVideo(); got != tt.video {
				t.Errorf("HasVideo() = %v, want %v", got, tt.video)
			}
			if got := tt.typ.IsScene(); got != tt.isScene {
				t.Errorf("IsScene() = %v, want %v", got, tt.isScene)
			}
			if !tt.typ.Valid() {
				t.Error("Valid() = false")
			}
		})
	}
}

// countingEngine fails once the given number of handles has been created.
type countingEngine struct {
	*NullEngine
	failAfter int
	created   int
}

func (e *countingEngine) CreateNativeHandle(t Type, s map[string]any) (Handle, error) {
	if e.created >= e.failAfter {
		return nil, errors.New("out of handles")
	}
	e.created++
	return e.NullEngine.CreateNativeHandle(t, s)
}

func TestRegistry_Load(t *testing.T) {
	engine := NewNullEngine()
	r := NewRegistry(engine)
	old, _ := r.Create(Spec{Type: TypeImage, Name: "Old"})

	err := r.Load([]Spec{
		{ID: "s1", Type: TypeScene, Name: "Scene"},
		{ID: "img", Type: TypeImage, Name: "Logo"},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if r.Exists(old.ID) {
		t.Error("Load() kept a source from the previous table")
	}
	if r.Count() != 2 || engine.LiveHandles() != 2 {
		t.Errorf("Count=%d LiveHandles=%d, want 2/2", r.Count(), engine.LiveHandles())
	}
	if typ, ok := r.TypeOf("s1"); !ok || typ != TypeScene {
		t.Errorf("TypeOf(s1) = %q, %v", typ, ok)
	}
}

func TestRegistry_LoadIsAllOrNothing(t *testing.T) {
	engine := &countingEngine{NullEngine: NewNullEngine(), failAfter: 2}
	r := NewRegistry(engine)
	kept, err := r.Create(Spec{ID: "keep", Type: TypeImage, Name: "Keep"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err = r.Load([]Spec{
		{ID: "a", Type: TypeImage, Name: "A"},
		{ID: "b", Type: TypeImage, Name: "B"},
	})
	if !errors.Is(err, ErrEngine) {
		t.Fatalf("Load() error = %v, want ErrEngine", err)
	}
	if !r.Exists(kept.ID) || r.Count() != 1 {
		t.Errorf("registry changed after failed Load: count=%d", r.Count())
	}
	if engine.LiveHandles() != 1 {
		t.Errorf("LiveHandles() = %d, want 1 (staged handles destroyed)", engine.LiveHandles())
	}

	if err := r.Load([]Spec{{Type: TypeImage, Name: "no id"}}); err == nil {
		t.Error("Load() without id expected error")
	}
}
