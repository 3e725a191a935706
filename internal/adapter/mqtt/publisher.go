package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/openwater-etl/internal/config"
	"github.com/couchcryptid/openwater-etl/internal/domain"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	qosAtLeastOnce = byte(1)
	publishTimeout = 5 * time.Second
)

var errStopped = errors.New("publisher stopped")

// client is the subset of mqtt.Client the publisher uses.
type client interface {
	Connect() mqtt.Token
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload any) mqtt.Token
	Disconnect(quiesce uint)
}

// Publisher sends rendered notifications to an MQTT topic.
// It implements pipeline.BatchLoader.
type Publisher struct {
	client client
	topic  string
	logger *slog.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewPublisher creates a publisher for the configured broker and topic.
// Call Connect before publishing.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTBroker)
	opts.SetClientID(cfg.MQTTClientID)

	// Session settings
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	// Keepalive / timeouts
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	return newPublisher(mqtt.NewClient(opts), cfg.MQTTTopic, logger)
}

func newPublisher(c client, topic string, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: c,
		topic:  topic,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Connect waits for the initial broker connection, honoring ctx and Close.
func (p *Publisher) Connect(ctx context.Context) error {
	select {
	case <-p.stopCh:
		return errStopped
	default:
	}

	if p.client.IsConnected() {
		return nil
	}

	token := p.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return errStopped
		default:
		}
	}
}

// LoadBatch publishes each notification as a JSON payload at QoS 1. It stops
// at the first failure; the caller retries the whole batch.
func (p *Publisher) LoadBatch(ctx context.Context, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	if !p.client.IsConnected() {
		return errors.New("mqtt client not connected")
	}

	for i := range notifications {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := json.Marshal(notifications[i])
		if err != nil {
			return fmt.Errorf("marshal notification: %w", err)
		}

		token := p.client.Publish(p.topic, qosAtLeastOnce, false, data)
		if !token.WaitTimeout(publishTimeout) {
			return fmt.Errorf("publish timeout for topic %s", p.topic)
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish notification for %s: %w", notifications[i].Recipient, err)
		}
	}

	p.logger.Debug("notifications published", "topic", p.topic, "count", len(notifications))
	return nil
}

// Close stops the publisher and disconnects. Safe to call more than once.
func (p *Publisher) Close() error {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.client.Disconnect(250)
	p.logger.Info("mqtt publisher disconnected")
	return nil
}
