package relay

import (
	"time"

	"github.com/nerrad567/gray-logic-studio/internal/events"
)

// EventMessage is the payload published on graylogic/studio/event/{type}.
type EventMessage struct {
	Studio string `json:"studio"`
	events.Event
}

// ActiveSceneMessage is the retained payload on graylogic/studio/scene/active.
// SceneID is empty when the studio has no scenes.
type ActiveSceneMessage struct {
	Studio          string    `json:"studio"`
	SceneID         string    `json:"scene_id"`
	SceneName       string    `json:"scene_name,omitempty"`
	PreviousSceneID string    `json:"previous_scene_id,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}
