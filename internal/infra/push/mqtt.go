package push

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/yanqian/smart-energy/internal/domain/notification"
)

// Config holds the MQTT connection settings.
type Config struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
}

// tokenPublisher is the part of mqtt.Client the publisher needs.
type tokenPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher pushes notifications to <prefix>/<channel> topics.
type MQTTPublisher struct {
	client tokenPublisher
	conn   mqtt.Client
	prefix string
	qos    byte
	logger *slog.Logger
}

// NewMQTTPublisher connects to the broker.
func NewMQTTPublisher(cfg Config, logger *slog.Logger) (*MQTTPublisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "smart-energy"
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "smart_energy"
	}

	client := mqtt.NewClient(clientOptions(cfg))
	token := client.Connect()
	if !token.WaitTimeout(15 * time.Second) {
		client.Disconnect(0)
		return nil, fmt.Errorf("connecting to MQTT broker %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", err)
	}
	return &MQTTPublisher{
		client: client,
		conn:   client,
		prefix: cfg.TopicPrefix,
		qos:    cfg.QoS,
		logger: logger.With("component", "push.mqtt"),
	}, nil
}

// BrokerURL accepts either a full broker URL (tcp://, ssl://, ws://) or a
// bare host:port, which is dialed over tcp.
func BrokerURL(broker string) string {
	if strings.Contains(broker, "://") {
		return broker
	}
	return "tcp://" + broker
}

func clientOptions(cfg Config) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(BrokerURL(cfg.Broker))
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	return opts
}

func (p *MQTTPublisher) Name() string { return "mqtt" }

// Topic returns the topic a notification is published on.
func (p *MQTTPublisher) Topic(n notification.Notification) string {
	return fmt.Sprintf("%s/%s", p.prefix, n.Channel)
}

// Publish sends n as JSON and waits for the broker to acknowledge or ctx to end.
func (p *MQTTPublisher) Publish(ctx context.Context, n notification.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}
	topic := p.Topic(n)
	token := p.client.Publish(topic, p.qos, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	p.logger.Debug("notification pushed", "topic", topic, "id", n.ID)
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	if p.conn != nil && p.conn.IsConnected() {
		p.conn.Disconnect(250)
	}
}

var _ notification.Publisher = (*MQTTPublisher)(nil)
