package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/shapley"
	"github.com/arloliu/shapley/internal/logging"
	"github.com/arloliu/shapley/types"
)

// Snapshot is the KV wire format for a published estimate.
type Snapshot struct {
	Values    []float64 `json:"values"`
	Stderrs   []float64 `json:"stderrs"`
	NSamples  int       `json:"nSamples"`
	State     string    `json:"state"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SnapshotPublisher periodically writes the coordinator's current estimate to
// a JetStream KV bucket.
//
// External observers (dashboards, other services) watch the bucket instead of
// talking to the coordinator, so observation load never contends with
// merging.
type SnapshotPublisher struct {
	kv       jetstream.KeyValue
	key      string
	coord    *shapley.Coordinator
	interval time.Duration
	logger   types.Logger

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	ticker  *time.Ticker
}

// NewSnapshotPublisher creates a snapshot publisher.
//
// Parameters:
//   - kv: JetStream KV bucket for snapshot storage
//   - key: Key to write the snapshot under (e.g., "run-42")
//   - coord: Started coordinator to snapshot
//   - interval: Publish interval
//
// Returns:
//   - *SnapshotPublisher: Initialized publisher
//   - error: Missing bucket, key or coordinator
//
// Example:
//
//	kv, _ := js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
//	    Bucket: "shapley-snapshots",
//	})
//	pub, _ := relay.NewSnapshotPublisher(kv, "run-42", coord, 2*time.Second)
func NewSnapshotPublisher(kv jetstream.KeyValue, key string, coord *shapley.Coordinator, interval time.Duration) (*SnapshotPublisher, error) {
	if kv == nil {
		return nil, ErrBucketRequired
	}
	if key == "" {
		return nil, ErrKeyRequired
	}
	if coord == nil {
		return nil, ErrCoordRequired
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}

	return &SnapshotPublisher{
		kv:       kv,
		key:      key,
		coord:    coord,
		interval: interval,
		logger:   logging.NewNop(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetLogger sets the logger for publish failures.
//
// Optional. Must be called before Start().
func (p *SnapshotPublisher) SetLogger(logger types.Logger) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if logger != nil {
		p.logger = logger
	}
}

// Start begins publishing snapshots in the background.
//
// Publishes the first snapshot immediately, then at regular intervals until
// Stop() is called.
//
// Parameters:
//   - ctx: Context for the initial publish
//
// Returns:
//   - error: ErrAlreadyStarted if already running, or initial publish failure
func (p *SnapshotPublisher) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return ErrAlreadyStarted
	}

	if err := p.publish(ctx); err != nil {
		return fmt.Errorf("failed to publish initial snapshot: %w", err)
	}

	p.started = true
	p.ticker = time.NewTicker(p.interval)

	go p.publishLoop()

	return nil
}

// Stop stops the publisher and writes one final snapshot.
//
// The final write captures the post-run estimate so observers see the
// completed state rather than the last periodic one.
//
// Returns:
//   - error: ErrNotStarted if not running, or final publish failure
func (p *SnapshotPublisher) Stop() error {
	p.mu.Lock()

	if !p.started {
		p.mu.Unlock()

		return ErrNotStarted
	}

	p.ticker.Stop()
	close(p.stopCh)
	p.started = false

	p.mu.Unlock()

	<-p.doneCh

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := p.publish(ctx); err != nil {
		return fmt.Errorf("stopped but failed to publish final snapshot: %w", err)
	}

	return nil
}

// publishLoop is the background goroutine that publishes snapshots.
func (p *SnapshotPublisher) publishLoop() {
	defer close(p.doneCh)

	for {
		select {
		case <-p.stopCh:
			return
		case <-p.ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := p.publish(ctx)
			cancel()

			if err != nil {
				p.logger.Warn("failed to publish snapshot", "key", p.key, "error", err)
			}
		}
	}
}

// publish writes the current estimate to the KV bucket.
func (p *SnapshotPublisher) publish(ctx context.Context) error {
	result, err := p.coord.Results()
	if err != nil {
		return err
	}

	data, err := json.Marshal(Snapshot{
		Values:    result.Values,
		Stderrs:   result.Stderrs,
		NSamples:  result.NSamples,
		State:     p.coord.State().String(),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if _, err := p.kv.Put(ctx, p.key, data); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", p.key, err)
	}

	return nil
}
