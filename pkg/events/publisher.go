// Package events publishes change notifications for stations and history
// records to NATS, so that staff consoles and rented clients can react to
// live updates without polling the store.
package events

import (
	"encoding/json"
	"fmt"
	"strings"

	nats "github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// BaseSubject is the NATS subject prefix of all station events. The full
// subject is <BaseSubject>.<deviceID>.events.<topic>.
const BaseSubject = "mobilecafe.stations.v1"

// WildcardSubject matches every station event, used by the realtime
// events relay.
const WildcardSubject = BaseSubject + ".*.events.*"

type Publisher struct {
	nc *nats.Conn
}

// NewPublisher creates a publisher on an established NATS connection.
func NewPublisher(nc *nats.Conn) *Publisher {
	return &Publisher{
		nc: nc,
	}
}

// Publish sends a JSON encoded notification. Delivery is best effort:
// failures are logged, never surfaced to the mutating operation.
func (p *Publisher) Publish(sourceID, topic string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Error("events: failed to encode event payload: ", err)
		return
	}

	subj := fmt.Sprintf("%s.%s.events.%s", BaseSubject, sourceID, topic)
	if err := p.nc.Publish(subj, payload); err != nil {
		log.Error("events: failed to publish event: ", err)
	}
}

// SourceAndTopic extracts the device ID and topic from a station event
// subject.
func SourceAndTopic(subject string) (sourceID, topic string) {
	stripped := strings.TrimPrefix(subject, BaseSubject+".")
	parts := strings.Split(stripped, ".")
	if len(parts) != 3 || parts[1] != "events" {
		return "", ""
	}

	return parts[0], parts[2]
}
