package source

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Validation constants.
const (
	maxNameLength = 100
	maxMixerMask  = AllTracks
)

// Logger defines the logging interface used by the Registry.
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

// Spec describes a source to register.
type Spec struct {
	// ID is optional; a UUID is generated when empty.
	ID       string
	Type     Type
	Name     string
	Settings map[string]any

	// AudioMixers overrides the default membership (AllTracks for audio
	// types, none otherwise).
	AudioMixers *MixerTrack
	Muted       bool

	Width  float64
	Height float64
}

// Registry is the id-addressed table of sources.
//
// Sources are returned as deep copies; mutation goes through the registry
// methods so the native engine stays in step.
type Registry struct {
	engine  Engine
	sources map[string]*Source
	order   []string // creation order
	logger  Logger
	newID   func() string
}

// NewRegistry creates an empty registry backed by the given engine.
// A nil engine is replaced by a NullEngine.
func NewRegistry(engine Engine) *Registry {
	if engine == nil {
		engine = NewNullEngine()
	}
	return &Registry{
		engine:  engine,
		sources: make(map[string]*Source),
		logger:  noopLogger{},
		newID:   GenerateID,
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Create validates the spec, asks the engine for a native handle and
// registers the source.
func (r *Registry) Create(spec Spec) (*Source, error) {
	if !spec.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, spec.Type)
	}
	if err := ValidateName(spec.Name); err != nil {
		return nil, err
	}

	id := spec.ID
	if id == "" {
		id = r.newID()
	}
	if _, exists := r.sources[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrSourceExists, id)
	}

	mixers := MixerTrack(0)
	if spec.Type.HasAudio() {
		mixers = AllTracks
	}
	if spec.AudioMixers != nil {
		if err := validateMixers(spec.Type, *spec.AudioMixers); err != nil {
			return nil, err
		}
		mixers = *spec.AudioMixers
	}

	settings := CloneSettings(spec.Settings)
	if settings == nil {
		settings = make(map[string]any)
	}

	handle, err := r.engine.CreateNativeHandle(spec.Type, CloneSettings(settings))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngine, err)
	}

	src := &Source{
		ID:          id,
		Type:        spec.Type,
		Name:        spec.Name,
		Settings:    settings,
		AudioMixers: mixers,
		Muted:       spec.Muted,
		Width:       spec.Width,
		Height:      spec.Height,
		Handle:      handle,
	}
	r.sources[id] = src
	r.order = append(r.order, id)

	r.logger.Debug("source created", "id", id, "type", string(spec.Type), "name", spec.Name)
	return src.DeepCopy(), nil
}

// Get returns a copy of the source with the given id.
func (r *Registry) Get(id string) (*Source, error) {
	src, ok := r.sources[id]
	if !ok {
		return nil, ErrSourceNotFound
	}
	return src.DeepCopy(), nil
}

// Exists reports whether a source id is registered.
func (r *Registry) Exists(id string) bool {
	_, ok := r.sources[id]
	return ok
}

// TypeOf returns the type of a registered source without copying it.
func (r *Registry) TypeOf(id string) (Type, bool) {
	src, ok := r.sources[id]
	if !ok {
		return "", false
	}
	return src.Type, true
}

// Size returns the native size of a source, or zeros when unknown.
func (r *Registry) Size(id string) (width, height float64) {
	if src, ok := r.sources[id]; ok {
		return src.Width, src.Height
	}
	return 0, 0
}

// Handle returns the native handle of a source, or nil.
func (r *Registry) Handle(id string) Handle {
	if src, ok := r.sources[id]; ok {
		return src.Handle
	}
	return nil
}

// List returns copies of all sources in creation order.
func (r *Registry) List() []Source {
	out := make([]Source, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.sources[id].DeepCopy())
	}
	return out
}

// ListByType returns copies of all sources of one type in creation order.
func (r *Registry) ListByType(t Type) []Source {
	var out []Source
	for _, id := range r.order {
		if src := r.sources[id]; src.Type == t {
			out = append(out, *src.DeepCopy())
		}
	}
	return out
}

// Count returns the number of registered sources.
func (r *Registry) Count() int {
	return len(r.sources)
}

// Remove destroys the native handle and forgets the source.
//
// The registry does not check whether scene nodes still reference the
// source; callers that care use the scene store's RemoveSource.
func (r *Registry) Remove(id string) error {
	src, ok := r.sources[id]
	if !ok {
		return ErrSourceNotFound
	}
	r.engine.DestroyNativeHandle(src.Handle)
	delete(r.sources, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.logger.Debug("source removed", "id", id, "type", string(src.Type))
	return nil
}

// Reset destroys every native handle and empties the registry.
func (r *Registry) Reset() {
	for _, id := range r.order {
		r.engine.DestroyNativeHandle(r.sources[id].Handle)
	}
	r.sources = make(map[string]*Source)
	r.order = nil
}

// Load replaces the whole table with the given specs.
//
// Every spec is validated and given a native handle before anything is
// replaced. If any step fails, the handles created so far are destroyed and
// the registry is left exactly as it was.
func (r *Registry) Load(specs []Spec) error {
	staged := &Registry{
		engine:  r.engine,
		sources: make(map[string]*Source, len(specs)),
		logger:  noopLogger{},
		newID:   r.newID,
	}
	for i, spec := range specs {
		if spec.ID == "" {
			staged.Reset()
			return fmt.Errorf("source[%d]: %w: id is required", i, ErrInvalidName)
		}
		if _, err := staged.Create(spec); err != nil {
			staged.Reset()
			return fmt.Errorf("source[%d] %s: %w", i, spec.ID, err)
		}
	}

	r.Reset()
	r.sources = staged.sources
	r.order = staged.order
	r.logger.Info("source table loaded", "count", len(r.order))
	return nil
}

// Rename changes a source's display name.
func (r *Registry) Rename(id, name string) error {
	src, ok := r.sources[id]
	if !ok {
		return ErrSourceNotFound
	}
	if err := ValidateName(name); err != nil {
		return err
	}
	src.Name = name
	return nil
}

// UpdateSettings merges patch into the source's settings.
// A nil value in the patch deletes the key.
func (r *Registry) UpdateSettings(id string, patch map[string]any) error {
	src, ok := r.sources[id]
	if !ok {
		return ErrSourceNotFound
	}
	if src.Settings == nil {
		src.Settings = make(map[string]any, len(patch))
	}
	for k, v := range patch {
		if v == nil {
			delete(src.Settings, k)
			continue
		}
		src.Settings[k] = cloneValue(v)
	}
	return nil
}

// SetAudioMixers replaces the audio mixer membership of a source.
func (r *Registry) SetAudioMixers(id string, mixers MixerTrack) error {
	src, ok := r.sources[id]
	if !ok {
		return ErrSourceNotFound
	}
	if err := validateMixers(src.Type, mixers); err != nil {
		return err
	}
	src.AudioMixers = mixers
	return nil
}

// SetMuted mutes or unmutes a source.
func (r *Registry) SetMuted(id string, muted bool) error {
	src, ok := r.sources[id]
	if !ok {
		return ErrSourceNotFound
	}
	src.Muted = muted
	return nil
}

// SetNativeSize records the size the engine reports for a source.
func (r *Registry) SetNativeSize(id string, width, height float64) error {
	src, ok := r.sources[id]
	if !ok {
		return ErrSourceNotFound
	}
	if width < 0 || height < 0 {
		return fmt.Errorf("source: negative size %vx%v", width, height)
	}
	src.Width = width
	src.Height = height
	return nil
}

// ValidateName checks if a source name is valid.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

func validateMixers(t Type, mixers MixerTrack) error {
	if mixers > maxMixerMask {
		return fmt.Errorf("%w: mask %#x exceeds %#x", ErrInvalidMixers, mixers, maxMixerMask)
	}
	if mixers != 0 && !t.HasAudio() {
		return fmt.Errorf("%w: %s sources have no audio", ErrInvalidMixers, t)
	}
	return nil
}

// GenerateID creates a new UUID for a source.
func GenerateID() string {
	return uuid.New().String()
}
