package source

// Type is the capability tag of a source.
type Type string

const (
	TypeScene       Type = "scene"
	TypeImage       Type = "image_source"
	TypeMedia       Type = "ffmpeg_source"
	TypeText        Type = "text_gdiplus"
	TypeColor       Type = "color_source"
	TypeBrowser     Type = "browser_source"
	TypeDisplay     Type = "monitor_capture"
	TypeWindow      Type = "window_capture"
	TypeGame        Type = "game_capture"
	TypeAudioInput  Type = "wasapi_input_capture"
	TypeAudioOutput Type = "wasapi_output_capture"
)

// AllTypes returns all valid source types.
func AllTypes() []Type {
	return []Type{
		TypeScene,
		TypeImage,
		TypeMedia,
		TypeText,
		TypeColor,
		TypeBrowser,
		TypeDisplay,
		TypeWindow,
		TypeGame,
		TypeAudioInput,
		TypeAudioOutput,
	}
}

// Pre-computed validation set for O(1) type lookups.
var validTypes map[Type]struct{}

func init() {
	validTypes = make(map[Type]struct{}, len(AllTypes()))
	for _, t := range AllTypes() {
		validTypes[t] = struct{}{}
	}
}

// Valid reports whether t is a known source type.
func (t Type) Valid() bool {
	_, ok := validTypes[t]
	return ok
}

// IsScene reports whether the source is a scene embedded as a source.
func (t Type) IsScene() bool {
	return t == TypeScene
}

// HasAudio reports whether sources of this type can join the audio mixer.
func (t Type) HasAudio() bool {
	switch t {
	case TypeMedia, TypeBrowser, TypeGame, TypeAudioInput, TypeAudioOutput:
		return true
	default:
		return false
	}
}

// HasVideo reports whether sources of this type produce pixels.
func (t Type) HasVideo() bool {
	switch t {
	case TypeAudioInput, TypeAudioOutput:
		return false
	default:
		return true
	}
}

// Handle is an opaque reference to a native object owned by the Engine.
type Handle any

// MixerTrack is a bit in Source.AudioMixers.
type MixerTrack uint8

// Audio mixer tracks 1-6.
const (
	Track1 MixerTrack = 1 << iota
	Track2
	Track3
	Track4
	Track5
	Track6

	// AllTracks is the default membership for newly created audio sources.
	AllTracks = Track1 | Track2 | Track3 | Track4 | Track5 | Track6
)

// Source is a shared producer of content referenced by scene nodes.
type Source struct {
	ID       string         `json:"id"`
	Type     Type           `json:"type"`
	Name     string         `json:"name"`
	Settings map[string]any `json:"settings,omitempty"`

	// Audio mixer membership (bitmask of MixerTrack values).
	AudioMixers MixerTrack `json:"audio_mixers"`
	Muted       bool       `json:"muted"`

	// Native size as reported by the engine; 0 until known.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Handle Handle `json:"-"`
}

// DeepCopy creates a complete independent copy of the Source.
// The Settings map is cloned recursively; the native handle is shared.
func (s *Source) DeepCopy() *Source {
	if s == nil {
		return nil
	}
	cpy := *s
	cpy.Settings = CloneSettings(s.Settings)
	return &cpy
}

// CloneSettings returns a deep copy of a settings map.
// Nested maps and slices are recursively copied.
func CloneSettings(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cpy := make(map[string]any, len(m))
	for k, v := range m {
		cpy[k] = cloneValue(v)
	}
	return cpy
}

// cloneValue recursively copies a value, handling nested maps and slices.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CloneSettings(val)
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = cloneValue(elem)
		}
		return cpy
	default:
		return v
	}
}
