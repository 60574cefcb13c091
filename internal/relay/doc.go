// Package relay forwards scene graph events to MQTT and InfluxDB.
//
// The event stream delivers synchronously on the goroutine that owns the
// scene graph, so the relay's handler only queues each event on a buffered
// channel. A worker goroutine drains the queue and does the network I/O.
// When the queue is full the event is dropped and counted; the scene graph
// is never slowed down by a slow broker.
//
// # Topics
//
//   - graylogic/studio/event/{type}: every event as JSON (not retained)
//   - graylogic/studio/scene/active: the active scene (retained)
//
// # Usage
//
//	r, err := relay.New(relay.Config{
//	    StudioName: cfg.Studio.Name,
//	    QoS:        byte(cfg.MQTT.QoS),
//	    Buffer:     cfg.MQTT.Buffer,
//	    MQTT:       mqttClient,
//	    Metrics:    influxClient,
//	    State:      studio,
//	    Logger:     log,
//	})
//	if err != nil {
//	    return err
//	}
//	if err := r.Start(ctx, studio.Stream()); err != nil {
//	    return err
//	}
//	defer r.Stop()
package relay
