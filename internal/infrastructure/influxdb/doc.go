// Package influxdb records Gray Logic Studio metrics in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched non-blocking writes and health checks. Two
// measurements are written:
//
//   - studio_events: one point per scene graph event, tagged by type
//   - studio_graph: periodic samples of scene, item, folder and source counts
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB, cfg.Studio.Name)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteGraphEvent("scene.switched", sceneID, 0, time.Now())
//
// Writes are batched according to batch_size and flush_interval. Write
// errors arrive asynchronously through SetOnError.
package influxdb
