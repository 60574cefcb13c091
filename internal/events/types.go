package events

import "time"

// Type identifies the kind of change an Event describes.
type Type string

const (
	// SceneAdded is emitted once a new scene has been registered.
	SceneAdded Type = "scene.added"

	// SceneRemoved is emitted last when a scene and its nodes are removed.
	SceneRemoved Type = "scene.removed"

	// SceneSwitched is emitted when the active scene pointer changes.
	SceneSwitched Type = "scene.switched"

	// SceneRenamed is emitted when a scene's name changes.
	SceneRenamed Type = "scene.renamed"

	// SceneNodesReordered is emitted when a scene's top-level order is replaced.
	SceneNodesReordered Type = "scene.nodes_reordered"

	// ItemAdded is emitted for every node (item or folder) added to a scene.
	ItemAdded Type = "item.added"

	// ItemRemoved is emitted for every node removed from a scene.
	ItemRemoved Type = "item.removed"

	// ItemUpdated is emitted for transform, visibility, lock, name and
	// hierarchy changes to an existing node.
	ItemUpdated Type = "item.updated"

	// SourceAdded is emitted when a non-scene source is registered.
	SourceAdded Type = "source.added"

	// SourceRemoved is emitted when a non-scene source is destroyed.
	SourceRemoved Type = "source.removed"

	// SourceUpdated is emitted when a source's name, settings, audio or
	// native size changes.
	SourceUpdated Type = "source.updated"

	// StateImported is emitted once after a snapshot replaced the whole graph.
	StateImported Type = "state.imported"
)

// AllTypes returns every event type in a stable order.
func AllTypes() []Type {
	return []Type{
		SceneAdded,
		SceneRemoved,
		SceneSwitched,
		SceneRenamed,
		SceneNodesReordered,
		ItemAdded,
		ItemRemoved,
		ItemUpdated,
		SourceAdded,
		SourceRemoved,
		SourceUpdated,
		StateImported,
	}
}

// Change names carried in Event.Changes for ItemUpdated and SourceUpdated
// events.
const (
	ChangeTransform  = "transform"
	ChangeVisibility = "visibility"
	ChangeLock       = "lock"
	ChangeName       = "name"
	ChangeParent     = "parent"
	ChangeOrder      = "order"
	ChangeSettings   = "settings"
	ChangeAudio      = "audio"
	ChangeMuted      = "muted"
	ChangeSize       = "size"
)

// Event is a single scene graph notification.
//
// Only the fields relevant to the event type are populated; the rest are
// left at their zero values.
type Event struct {
	// Seq is assigned by the Stream and increases by one per published event.
	Seq uint64 `json:"seq"`

	Type Type `json:"type"`

	SceneID  string `json:"scene_id,omitempty"`
	NodeID   string `json:"node_id,omitempty"`
	SourceID string `json:"source_id,omitempty"`

	// Name is the scene, folder or source display name where relevant.
	Name string `json:"name,omitempty"`

	// NodeKind is "item" or "folder" for item.* events.
	NodeKind string `json:"node_kind,omitempty"`

	// PreviousSceneID is the outgoing scene of a scene.switched event.
	PreviousSceneID string `json:"previous_scene_id,omitempty"`

	// Changes lists what changed in an item.updated or source.updated event.
	Changes []string `json:"changes,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}
