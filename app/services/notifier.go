package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/vijaychouhan26/Face-recognition-attendence/app/models"
)

const markTopic = "attendance/marks"

// Notifier publishes every new attendance mark to an MQTT broker so other
// classroom systems (displays, parent notifications) can react live.
type Notifier struct {
	client mqtt.Client
}

// NewNotifier connects to the broker. Connection failure is returned to the
// caller; the engine works fine without a notifier.
func NewNotifier(broker string) (*Notifier, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("face-attendance-" + uuid.NewString()[:8]).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", broker, token.Error())
	}
	log.Printf("Mark notifier connected to %s", broker)
	return &Notifier{client: client}, nil
}

// PublishMark sends one attendance record as JSON. Fire and forget: a failed
// publish is logged, never propagated back into the marking path.
func (n *Notifier) PublishMark(rec models.AttendanceRecord) {
	payload, err := json.Marshal(rec)
	if err != nil {
		log.Printf("Mark notify encode error: %v", err)
		return
	}
	token := n.client.Publish(markTopic, 0, false, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			log.Printf("Mark notify publish error: %v", token.Error())
		}
	}()
}

func (n *Notifier) Close() {
	n.client.Disconnect(250)
}
