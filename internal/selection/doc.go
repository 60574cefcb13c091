// Package selection provides multi-node selection and bulk editing for the
// Gray Logic Studio scene graph.
//
// A Selection is bound to one scene. It keeps the selected node ids in the
// order they were selected and remembers the last one. Bulk operations work
// on the root nodes of the selection: every selected node whose ancestors are
// not selected. Moving or copying a folder already carries its children, so
// listing them again would duplicate work.
//
// # Key Types
//
//   - Selection: Ordered id set bound to a scene, plus bulk operations
//
// # Queries
//
// SelectMatching selects nodes with an expr-lang boolean expression, for
// example:
//
//	sel.SelectMatching(`kind == "item" && type == "image_source" && !locked`)
//
// The expression sees id, name, kind, type, visible, locked and parent.
//
// # Thread Safety
//
// Selection is not synchronised; it is used by the same owner that
// serialises access to the scene.Store.
package selection
