package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// backlogCap bounds the offline message backlog.
const backlogCap = 256

// RealPublisher publishes to an actual MQTT broker. Messages that cannot
// be delivered while disconnected are held in a bounded backlog and
// replayed when the connection comes back.
type RealPublisher struct {
	client paho.Client

	mu      sync.Mutex
	pending *backlog
}

// NewRealPublisher creates a publisher for the given broker. Connection is
// established in the background; the daemon starts even with the broker
// down, buffering messages until it connects.
func NewRealPublisher(broker string) *RealPublisher {
	p := &RealPublisher{
		pending: newBacklog(backlogCap),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("dogfoodtimer").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(p.onConnect)

	p.client = paho.NewClient(opts)
	p.client.Connect()

	return p
}

// PublishEvent sends a timer event to the MQTT broker.
func (p *RealPublisher) PublishEvent(event Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.publish(Topic, 0, false, payload)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once); lifecycle events are worth a redelivery
	return p.publish(TopicSystem, 1, event.Retained, payload)
}

// publish delivers one message, or queues it while disconnected.
func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnected() {
		p.mu.Lock()
		p.pending.add(outbound{topic: topic, payload: payload, qos: qos, retained: retained})
		p.mu.Unlock()
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout on %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// onConnect flushes the backlog. Runs on a paho client goroutine.
func (p *RealPublisher) onConnect(client paho.Client) {
	p.mu.Lock()
	msgs := p.pending.take()
	p.mu.Unlock()

	for _, msg := range msgs {
		token := client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
		token.WaitTimeout(5 * time.Second)
	}
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Buffered returns the number of messages waiting for reconnection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending.size()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
