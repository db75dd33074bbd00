package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/couchcryptid/run-advisory-service/internal/config"
	"github.com/couchcryptid/run-advisory-service/internal/domain"
)

const (
	qosAtLeastOnce = 1
	connectPoll    = 200 * time.Millisecond
)

var errNotConnected = errors.New("mqtt client not connected")

// Publisher delivers notifications as JSON to an MQTT broker.
// It implements advisor.Notifier.
type Publisher struct {
	client  pahomqtt.Client
	timeout time.Duration
	logger  *slog.Logger

	mu sync.Mutex // serialises connect
}

// NewPublisher configures a client for MQTT_BROKER:MQTT_PORT. The connection
// is opened on first use.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(cfg.HTTPTimeout)
	opts.SetKeepAlive(30 * time.Second)
	// One connection attempt per run.
	opts.SetConnectRetry(false)
	opts.SetAutoReconnect(false)
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	return newPublisher(pahomqtt.NewClient(opts), cfg.HTTPTimeout, logger)
}

func newPublisher(client pahomqtt.Client, timeout time.Duration, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, timeout: timeout, logger: logger}
}

// Notify publishes n with QoS 1 and waits for the broker's acknowledgement.
func (p *Publisher) Notify(ctx context.Context, n domain.Notification) error {
	if err := p.connect(ctx); err != nil {
		return err
	}

	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	token := p.client.Publish(n.Topic, qosAtLeastOnce, false, data)
	if err := wait(ctx, token, p.timeout); err != nil {
		return fmt.Errorf("mqtt publish to %s: %w", n.Topic, err)
	}

	p.logger.Debug("notification published", "topic", n.Topic, "run_id", n.RunID)
	return nil
}

func (p *Publisher) connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client.IsConnected() {
		return nil
	}
	if err := wait(ctx, p.client.Connect(), p.timeout); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	if !p.client.IsConnected() {
		return errNotConnected
	}
	return nil
}

// wait blocks until token completes, ctx is done, or timeout elapses.
func wait(ctx context.Context, token pahomqtt.Token, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if token.WaitTimeout(connectPoll) {
			return token.Error()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out after %s", timeout)
		}
	}
}

// Close disconnects from the broker, allowing 250ms for in-flight work.
func (p *Publisher) Close() error {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
	return nil
}
