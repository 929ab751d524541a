package publish

import (
	"context"
	"fmt"
	"log"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/itohio/lpsense/pkg/config"
	"github.com/itohio/lpsense/pkg/sample"
)

// MQTT publishes JSON payloads to a broker topic.
type MQTT struct {
	client mqtt.Client
	topic  string
	qos    byte
}

// NewMQTT connects to the broker, retrying with exponential backoff.
func NewMQTT(ctx context.Context, cfg config.MQTTConfig) (*MQTT, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = cfg.RetryFor
	retries := cfg.MaxRetries
	if retries < 1 {
		retries = 1
	}

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			log.Printf("Failed to connect to MQTT broker: %v", token.Error())
			return token.Error()
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(retries-1)), ctx))
	if err != nil {
		return nil, fmt.Errorf("could not connect to MQTT broker %s: %w", cfg.Broker, err)
	}

	log.Printf("Connected to MQTT broker at %s", cfg.Broker)
	return newMQTT(client, cfg.Topic, cfg.QoS), nil
}

func newMQTT(client mqtt.Client, topic string, qos byte) *MQTT {
	return &MQTT{client: client, topic: topic, qos: qos}
}

// Publish sends s and waits for the broker acknowledgement or ctx.
func (m *MQTT) Publish(ctx context.Context, s sample.Sample) error {
	data, err := Encode(s)
	if err != nil {
		return fmt.Errorf("failed to encode sample: %w", err)
	}

	token := m.client.Publish(m.topic, m.qos, false, data)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", m.topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (m *MQTT) Close() error {
	if m.client.IsConnected() {
		m.client.Disconnect(250)
		log.Println("MQTT client disconnected")
	}
	return nil
}
