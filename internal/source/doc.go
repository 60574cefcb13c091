// Package source provides the source registry for Gray Logic Studio.
//
// A source is a shared, typed producer of audio/visual content (a capture
// device, a media file, a text block, or another scene). Sources are kept in
// an id-addressed table and referenced by scene nodes through their id; the
// registry itself knows nothing about scenes or nodes.
//
// # Key Types
//
//   - Source: Id, type, display name, settings and mixer membership
//   - Type: Enumerated capability tag (image_source, scene, ...)
//   - Engine: Native capture/compose layer that owns the real handles
//   - Registry: The id-addressed source table
//
// # Native handles
//
// Creating a source asks the Engine for a native handle; removing it
// destroys the handle. NullEngine provides handles for headless use and
// tests.
//
// # Thread Safety
//
// The registry is not synchronised. It is owned by the scene graph's single
// writer (see package studio), which serialises all access.
package source
