// Package api implements the read-only HTTP API and WebSocket feed for Gray
// Logic Studio.
//
// This package provides:
//   - REST endpoints for scenes, nodes, sources, the exported state and saved
//     revisions
//   - Node filtering with the same expressions selections accept
//   - A WebSocket hub that forwards scene graph events to subscribed clients
//   - Middleware stack (request ID, logging, recovery, CORS)
//
// # Architecture
//
// Every handler reads the graph through studio.Studio, which serialises
// access with the rest of the process. Nothing here mutates the graph:
// editing happens inside the studio process, and remote control is not part
// of this surface.
//
// # WebSocket channels
//
// Channels are event types ("scene.switched", "item.updated", ...). The
// channel "*" receives every event.
package api
