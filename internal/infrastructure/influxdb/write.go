package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the studio.
const (
	MeasurementGraphEvents = "studio_events"
	MeasurementGraphSize   = "studio_graph"
)

// GraphSize is a sample of the scene graph's dimensions.
type GraphSize struct {
	Scenes  int
	Items   int
	Folders int
	Sources int
}

// WriteGraphEvent records one scene graph event. changes is the number of
// properties an item.updated event carried, 0 for other events.
//
//	client.WriteGraphEvent("item.updated", "scene-uuid", 1, time.Now())
func (c *Client) WriteGraphEvent(eventType, sceneID string, changes int, at time.Time) {
	if !c.IsConnected() {
		return
	}
	tags := map[string]string{"type": eventType}
	if sceneID != "" {
		tags["scene_id"] = sceneID
	}
	c.writeAPI.WritePoint(write.NewPoint(
		MeasurementGraphEvents,
		tags,
		map[string]interface{}{
			"count":   1,
			"changes": changes,
		},
		at,
	))
}

// WriteGraphSize records the current size of the scene graph.
func (c *Client) WriteGraphSize(size GraphSize, activeSceneID string) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(
		MeasurementGraphSize,
		map[string]string{"active_scene_id": activeSceneID},
		map[string]interface{}{
			"scenes":  size.Scenes,
			"items":   size.Items,
			"folders": size.Folders,
			"sources": size.Sources,
		},
		time.Now(),
	))
}

// WritePoint writes a custom point stamped with the current time.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}
