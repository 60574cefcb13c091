// Package events provides the ordered notification stream for the Gray Logic
// Studio scene graph.
//
// Every mutating operation on the scene graph produces one event per discrete
// change. Events are published only after the change has been applied to
// in-memory state, and they are delivered to subscribers synchronously in the
// order they were published.
//
// # Key Types
//
//   - Event: A single lifecycle notification (scene added, item updated, ...)
//   - Type: The event kind, also used as the MQTT/WebSocket channel name
//   - Stream: FIFO publisher with subscribe/unsubscribe
//
// # Ordering
//
// A handler that triggers further mutations while it is being notified does
// not see those events out of order: nested publishes are queued behind the
// event currently being delivered and drained by the outermost Publish call.
//
// # Usage
//
//	stream := events.NewStream()
//	unsubscribe := stream.Subscribe(func(e events.Event) {
//	    log.Info("scene graph event", "type", e.Type, "scene_id", e.SceneID)
//	})
//	defer unsubscribe()
//
// Subscribers only receive events published after they subscribed; there is
// no replay.
package events
