// Package scene provides the scene graph store for Gray Logic Studio.
//
// A scene is an ordered tree of nodes. Each node is either an Item, which
// places a source on the canvas with its own transform, or a Folder, which
// groups other nodes. Scenes are themselves sources, so an item can embed one
// scene inside another.
//
// Architecture:
//
//	┌──────────────────────────────────────────────────────┐
//	│                     Store (store.go)                   │
//	│  ┌──────────────┐   ┌──────────────┐   ┌───────────┐  │
//	│  │    scenes    │   │    nodes     │   │  sources  │  │
//	│  │ id → *Scene  │   │ id → Node    │   │ *Registry │  │
//	│  └──────────────┘   └──────────────┘   └───────────┘  │
//	│         │                                             │
//	│         ▼                                             │
//	│  validate ─▶ apply ─▶ publish events (events.Stream)  │
//	└──────────────────────────────────────────────────────┘
//
// # Key Types
//
//   - Scene: Named root container with top-level child ids
//   - Node: Sealed sum type implemented by *Item and *Folder
//   - Transform: Position, scale, rotation and crop of an item
//   - Store: Owner of every scene and node, and the only mutator
//   - Snapshot: Serialisable copy of the whole graph
//   - SQLiteRepository: Snapshot persistence
//
// # Ordering
//
// Every child list, the scene root included, is kept in read order: index 0
// is the top-most node on the canvas. New nodes are inserted at index 0.
// GetNodes and GetItems flatten the tree depth-first with each folder listed
// before its children.
//
// # Nesting
//
// Adding a scene-type source to a scene is refused when the target scene is
// reachable from the candidate through nested-scene items, so the graph of
// scenes never contains a cycle.
//
// # Events
//
// Mutations validate fully, apply fully and only then publish their events,
// one per discrete change, in the order the changes were applied.
//
// # Thread Safety
//
// Store is not synchronised. A single owner (package studio) serialises every
// call.
package scene
