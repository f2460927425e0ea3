// Package announce publishes battery change events to an MQTT broker so
// external systems, e.g. Home Assistant, can follow the virtual battery
// without polling it.
package announce

import (
	"context"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pterodyne/linux-userspace-battery/pkg/events"
)

const (
	connectRetryInterval = 5 * time.Second
	publishTimeout       = 5 * time.Second
	disconnectQuiesceMs  = 250
)

// publisher is the slice of mqtt.Client the announcer needs. It keeps the
// fan-out testable without a broker.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Announcer forwards change events from the hub to a retained MQTT topic.
// Subscribers that come up late still see the last state.
type Announcer struct {
	client     mqtt.Client
	pub        publisher
	stateTopic string
	hub        *events.Hub
}

// New connects to the broker and returns an announcer ready to Run. The
// broker is a URL like tcp://host:1883.
func New(broker, clientID, topicPrefix string, hub *events.Hub) (*Announcer, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(connectRetryInterval)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logrus.Warnf("mqtt connection lost: %v", err)
	})
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logrus.WithField("broker", broker).Info("connected to mqtt broker")
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, pkgerrors.Wrapf(token.Error(), "failed to connect to %s", broker)
	}

	return &Announcer{
		client:     client,
		pub:        client,
		stateTopic: topicPrefix + "/state",
		hub:        hub,
	}, nil
}

// Run forwards change events until ctx is cancelled or the hub closes,
// then disconnects.
func (a *Announcer) Run(ctx context.Context) {
	ch := a.hub.Subscribe()
	defer a.hub.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			a.disconnect()
			return
		case ev, ok := <-ch:
			if !ok {
				a.disconnect()
				return
			}
			if ev.Name != events.BatteryChanged {
				continue
			}
			a.publish(ev)
		}
	}
}

// publish sends one retained state message. Failures are logged and
// dropped; they must never travel back to the write path that caused the
// event.
func (a *Announcer) publish(ev events.Event) {
	token := a.pub.Publish(a.stateTopic, 1, true, []byte(ev.Data))
	if token.WaitTimeout(publishTimeout) && token.Error() != nil {
		logrus.Warnf("mqtt publish to %s failed: %v", a.stateTopic, token.Error())
	}
}

func (a *Announcer) disconnect() {
	if a.client != nil && a.client.IsConnected() {
		a.client.Disconnect(disconnectQuiesceMs)
		logrus.Info("disconnected from mqtt broker")
	}
}
