package mqtt

import "fmt"

// TopicPrefix is the base for every topic the studio publishes.
const TopicPrefix = "graylogic/studio"

// Topics provides builders for studio MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.Event("scene.switched")
//	// Returns: "graylogic/studio/event/scene.switched"
type Topics struct{}

// Event returns the topic a scene graph event of the given type is relayed to.
//
// Example: graylogic/studio/event/item.updated
func (Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefix, eventType)
}

// ActiveScene returns the retained topic holding the id of the active scene.
//
// Example: graylogic/studio/scene/active
func (Topics) ActiveScene() string {
	return TopicPrefix + "/scene/active"
}

// Status returns the online/offline status topic, also used for the LWT.
//
// Example: graylogic/studio/status
func (Topics) Status() string {
	return TopicPrefix + "/status"
}
