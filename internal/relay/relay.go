package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-studio/internal/events"
	"github.com/nerrad567/gray-logic-studio/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-studio/internal/infrastructure/mqtt"
)

const (
	defaultBuffer         = 256
	defaultSampleInterval = 30 * time.Second
	maxQoS                = 2
)

// MQTTClient is the subset of *mqtt.Client the relay publishes through.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	IsConnected() bool
}

// Metrics is the subset of *influxdb.Client the relay writes to.
type Metrics interface {
	WriteGraphEvent(eventType, sceneID string, changes int, at time.Time)
	WriteGraphSize(size influxdb.GraphSize, activeSceneID string)
}

// State gives the relay read access to the scene graph. Calls come from the
// relay's worker goroutine, never from inside an event handler.
type State interface {
	ActiveScene() (id, name string)
	GraphSize() influxdb.GraphSize
}

// Logger defines the logging interface used by the relay.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config holds the relay's collaborators. MQTT and Metrics are each
// optional but at least one must be set. State is optional; without it the
// relay cannot republish the active scene after an import and does not
// sample the graph size.
type Config struct {
	StudioName string
	QoS        byte

	// Buffer is the number of events queued before new ones are dropped.
	Buffer int

	// SampleInterval is how often the graph size is written to Metrics.
	SampleInterval time.Duration

	MQTT    MQTTClient
	Metrics Metrics
	State   State
	Logger  Logger
}

// Relay forwards events from an events.Stream to MQTT and InfluxDB.
type Relay struct {
	cfg    Config
	topics mqtt.Topics
	logger Logger
	queue  chan events.Event

	mu          sync.Mutex
	started     bool
	unsubscribe func()

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	forwarded atomic.Uint64
	dropped   atomic.Uint64
}

// New validates cfg and creates a stopped relay.
func New(cfg Config) (*Relay, error) {
	if cfg.MQTT == nil && cfg.Metrics == nil {
		return nil, ErrNoSinks
	}
	if cfg.QoS > maxQoS {
		return nil, ErrInvalidQoS
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultBuffer
	}
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = defaultSampleInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	return &Relay{
		cfg:    cfg,
		logger: logger,
		queue:  make(chan events.Event, cfg.Buffer),
		done:   make(chan struct{}),
	}, nil
}

// Start subscribes to stream and starts the worker. The worker runs until
// Stop is called or ctx is cancelled.
func (r *Relay) Start(ctx context.Context, stream *events.Stream) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return ErrAlreadyStarted
	}
	r.started = true

	r.unsubscribe = stream.Subscribe(r.enqueue)

	r.wg.Add(1)
	go r.run(ctx)

	r.logger.Info("event relay started",
		"mqtt", r.cfg.MQTT != nil,
		"metrics", r.cfg.Metrics != nil,
		"buffer", r.cfg.Buffer,
	)
	return nil
}

// Stop unsubscribes from the stream, forwards what is still queued, and
// waits for the worker to exit. It is safe to call more than once.
func (r *Relay) Stop() {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		unsubscribe := r.unsubscribe
		r.mu.Unlock()
		if unsubscribe != nil {
			unsubscribe()
		}

		close(r.done)
		r.wg.Wait()

		r.logger.Info("event relay stopped",
			"forwarded", r.forwarded.Load(),
			"dropped", r.dropped.Load(),
		)
	})
}

// Forwarded returns the number of events the worker has handled.
func (r *Relay) Forwarded() uint64 {
	return r.forwarded.Load()
}

// Dropped returns the number of events discarded because the queue was full.
func (r *Relay) Dropped() uint64 {
	return r.dropped.Load()
}

// enqueue is the stream handler. It must not block.
func (r *Relay) enqueue(e events.Event) {
	select {
	case r.queue <- e:
	default:
		n := r.dropped.Add(1)
		r.logger.Warn("relay queue full, event dropped",
			"type", string(e.Type),
			"seq", e.Seq,
			"dropped_total", n,
		)
	}
}

func (r *Relay) run(ctx context.Context) {
	defer r.wg.Done()

	r.publishCurrentActive()

	var sample <-chan time.Time
	if r.cfg.Metrics != nil && r.cfg.State != nil {
		ticker := time.NewTicker(r.cfg.SampleInterval)
		defer ticker.Stop()
		sample = ticker.C
		r.sampleSize()
	}

	for {
		select {
		case <-ctx.Done():
			r.drain()
			return
		case <-r.done:
			r.drain()
			return
		case e := <-r.queue:
			r.forward(e)
		case <-sample:
			r.sampleSize()
		}
	}
}

// drain forwards events still queued at shutdown.
func (r *Relay) drain() {
	for {
		select {
		case e := <-r.queue:
			r.forward(e)
		default:
			return
		}
	}
}

func (r *Relay) forward(e events.Event) {
	defer r.forwarded.Add(1)

	if r.cfg.Metrics != nil {
		r.cfg.Metrics.WriteGraphEvent(string(e.Type), e.SceneID, len(e.Changes), e.Timestamp)
	}
	if r.cfg.MQTT == nil {
		return
	}

	r.publishEvent(e)

	switch e.Type {
	case events.SceneSwitched:
		r.publishActive(ActiveSceneMessage{
			SceneID:         e.SceneID,
			SceneName:       e.Name,
			PreviousSceneID: e.PreviousSceneID,
			Timestamp:       e.Timestamp,
		})
	case events.SceneRemoved, events.StateImported:
		r.publishCurrentActive()
	}
}

func (r *Relay) publishEvent(e events.Event) {
	payload, err := json.Marshal(EventMessage{Studio: r.cfg.StudioName, Event: e})
	if err != nil {
		r.logger.Error("encoding event", "type", string(e.Type), "error", err)
		return
	}
	if err := r.publish(r.topics.Event(string(e.Type)), payload, false); err != nil {
		r.logger.Warn("publishing event", "type", string(e.Type), "seq", e.Seq, "error", err)
	}
}

// publishCurrentActive reads the active scene from State and publishes it.
func (r *Relay) publishCurrentActive() {
	if r.cfg.MQTT == nil || r.cfg.State == nil {
		return
	}
	id, name := r.cfg.State.ActiveScene()
	r.publishActive(ActiveSceneMessage{
		SceneID:   id,
		SceneName: name,
		Timestamp: time.Now().UTC(),
	})
}

func (r *Relay) publishActive(msg ActiveSceneMessage) {
	msg.Studio = r.cfg.StudioName
	payload, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error("encoding active scene", "error", err)
		return
	}
	if err := r.publish(r.topics.ActiveScene(), payload, true); err != nil {
		r.logger.Warn("publishing active scene", "scene_id", msg.SceneID, "error", err)
		return
	}
	r.logger.Debug("active scene published", "scene_id", msg.SceneID)
}

func (r *Relay) publish(topic string, payload []byte, retained bool) error {
	if !r.cfg.MQTT.IsConnected() {
		return fmt.Errorf("%s: %w", topic, mqtt.ErrNotConnected)
	}
	return r.cfg.MQTT.Publish(topic, payload, r.cfg.QoS, retained)
}

func (r *Relay) sampleSize() {
	id, _ := r.cfg.State.ActiveScene()
	r.cfg.Metrics.WriteGraphSize(r.cfg.State.GraphSize(), id)
}
