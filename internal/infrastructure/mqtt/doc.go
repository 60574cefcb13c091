// Package mqtt provides MQTT client connectivity for Gray Logic Studio.
//
// The studio uses MQTT to tell show controllers and tally systems what is
// happening in the scene graph:
//
//	Studio → MQTT Broker → Tally and show controllers
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing with QoS and retained messages
//   - Last Will and Testament (LWT) on graylogic/studio/status
//
// # Security Considerations
//
//   - Enable TLS (cfg.Broker.TLS) when the broker is not on localhost
//   - Set credentials through GRAYSTUDIO_MQTT_USERNAME/PASSWORD, not the YAML file
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topics := mqtt.Topics{}
//	client.Publish(topics.ActiveScene(), payload, 1, true)
package mqtt
