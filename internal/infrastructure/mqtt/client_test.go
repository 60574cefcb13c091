package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-studio/internal/infrastructure/config"
)

const testBrokerAddr = "127.0.0.1:1883"

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "graylogic-studio-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
		Buffer: 16,
	}
}

// connectLive connects to a local broker, skipping the test when none runs.
func connectLive(t *testing.T, clientID string) *Client {
	t.Helper()
	conn, err := net.DialTimeout("tcp", testBrokerAddr, 200*time.Millisecond)
	if err != nil {
		t.Skipf("no MQTT broker at %s: %v", testBrokerAddr, err)
	}
	conn.Close()

	cfg := testConfig()
	cfg.Broker.ClientID = clientID
	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() }) //nolint:errcheck // test cleanup
	return client
}

// =============================================================================
// Topic Tests
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"Event", topics.Event("scene.switched"), "graylogic/studio/event/scene.switched"},
		{"ActiveScene", topics.ActiveScene(), "graylogic/studio/scene/active"},
		{"Status", topics.Status(), "graylogic/studio/status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

// =============================================================================
// Payload Tests
// =============================================================================

func TestStatusPayloads(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantStatus string
		wantReason string
	}{
		{"online", buildOnlinePayload("studio-a"), "online", ""},
		{"graceful", buildOfflinePayload("studio-a"), "offline", "graceful_shutdown"},
		{"will", statusPayload("studio-a", "offline", "unexpected_disconnect"), "offline", "unexpected_disconnect"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msg StatusMessage
			if err := json.Unmarshal([]byte(tt.payload), &msg); err != nil {
				t.Fatalf("payload %q is not JSON: %v", tt.payload, err)
			}
			if msg.Status != tt.wantStatus || msg.Reason != tt.wantReason || msg.ClientID != "studio-a" {
				t.Errorf("payload = %+v, want status %q reason %q", msg, tt.wantStatus, tt.wantReason)
			}
			if _, err := time.Parse(time.RFC3339, msg.Timestamp); err != nil {
				t.Errorf("timestamp %q: %v", msg.Timestamp, err)
			}
		})
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Auth = config.MQTTAuthConfig{Username: "studio", Password: "secret"}

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "ssl://127.0.0.1:1883" {
		t.Errorf("Servers = %v, want [ssl://127.0.0.1:1883]", opts.Servers)
	}
	if opts.ClientID != cfg.Broker.ClientID {
		t.Errorf("ClientID = %q, want %q", opts.ClientID, cfg.Broker.ClientID)
	}
	if opts.Username != "studio" || opts.Password != "secret" {
		t.Errorf("credentials = %q/%q, want studio/secret", opts.Username, opts.Password)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLS config not set with minimum version")
	}
	if opts.MaxReconnectInterval != 5*time.Second {
		t.Errorf("MaxReconnectInterval = %v, want 5s", opts.MaxReconnectInterval)
	}

	configureLWT(opts, cfg.Broker.ClientID)
	if !opts.WillEnabled || opts.WillTopic != (Topics{}).Status() || !opts.WillRetained {
		t.Errorf("will = enabled %v topic %q retained %v", opts.WillEnabled, opts.WillTopic, opts.WillRetained)
	}
	if !strings.Contains(string(opts.WillPayload), "unexpected_disconnect") {
		t.Errorf("WillPayload = %s", opts.WillPayload)
	}
}

// =============================================================================
// Disconnected Client Tests
// =============================================================================

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	if _, err := Connect(cfg); !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestCloseNil(t *testing.T) {
	var nilClient *Client
	if err := nilClient.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v", err)
	}
	if err := (&Client{}).Close(); err != nil {
		t.Errorf("Close() on empty client error = %v", err)
	}
}

func TestIsConnected_InitialState(t *testing.T) {
	var nilClient *Client
	if nilClient.IsConnected() {
		t.Error("IsConnected() should be false for nil client")
	}
	if (&Client{}).IsConnected() {
		t.Error("IsConnected() should be false for uninitialised client")
	}
}

func TestHealthCheck_Disconnected(t *testing.T) {
	client := &Client{}

	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck() error = %v, want context.Canceled", err)
	}
}

func TestPublish_Validation(t *testing.T) {
	client := &Client{}

	tests := []struct {
		name    string
		call    func() error
		wantErr error
	}{
		{"publish empty topic", func() error { return client.Publish("", nil, 1, false) }, ErrInvalidTopic},
		{"publish invalid qos", func() error { return client.Publish("t", nil, 3, false) }, ErrInvalidQoS},
		{"publish oversize", func() error { return client.Publish("t", make([]byte, maxPayloadSize+1), 1, false) }, ErrPublishFailed},
		{"publish disconnected", func() error { return client.Publish("t", []byte("x"), 1, false) }, ErrNotConnected},
		{"retained disconnected", func() error { return client.Publish("t", []byte("x"), 1, true) }, ErrNotConnected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// =============================================================================
// Live Broker Tests
// =============================================================================

func TestConnect_Live(t *testing.T) {
	client := connectLive(t, "graylogic-studio-test-connect")

	if !client.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
}

func TestPublishRoundtrip_Live(t *testing.T) {
	client := connectLive(t, "graylogic-studio-test-roundtrip")

	// A plain paho client plays the tally system listening to the studio.
	listenerOpts := pahomqtt.NewClientOptions().
		AddBroker("tcp://" + testBrokerAddr).
		SetClientID("graylogic-studio-test-listener")
	listener := pahomqtt.NewClient(listenerOpts)
	if token := listener.Connect(); !token.WaitTimeout(2*time.Second) || token.Error() != nil {
		t.Fatalf("listener Connect() error = %v", token.Error())
	}
	defer listener.Disconnect(100)

	topic := Topics{}.Event("scene.switched")
	received := make(chan string, 1)
	token := listener.Subscribe(topic, 1, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		received <- string(msg.Payload())
	})
	if !token.WaitTimeout(2*time.Second) || token.Error() != nil {
		t.Fatalf("listener Subscribe() error = %v", token.Error())
	}

	if err := client.Publish(topic, []byte(`{"scene_id":"abc"}`), 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case got := <-received:
		if got != `{"scene_id":"abc"}` {
			t.Errorf("received %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message not received")
	}
}

func TestHandleDisconnect(t *testing.T) {
	client := &Client{connected: true}
	logger := &recordingLogger{}
	client.SetLogger(logger)

	var gotErr error
	client.SetOnDisconnect(func(err error) { gotErr = err })

	cause := errors.New("connection reset")
	client.handleDisconnect(cause)

	if client.IsConnected() {
		t.Error("IsConnected() = true after disconnect")
	}
	if !errors.Is(gotErr, cause) {
		t.Errorf("OnDisconnect error = %v, want %v", gotErr, cause)
	}
	if logger.warnCount() != 1 {
		t.Errorf("warnings = %d, want 1", logger.warnCount())
	}
}

type recordingLogger struct {
	mu    sync.Mutex
	warns int
}

func (l *recordingLogger) Warn(string, ...any) {
	l.mu.Lock()
	l.warns++
	l.mu.Unlock()
}

func (l *recordingLogger) warnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.warns
}
