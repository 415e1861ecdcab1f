package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/arloliu/shapley"
	"github.com/arloliu/shapley/internal/logging"
	"github.com/arloliu/shapley/types"
)

// Common errors for relay operations.
var (
	ErrNotStarted      = errors.New("receiver not started")
	ErrAlreadyStarted  = errors.New("receiver already started")
	ErrConnRequired    = errors.New("NATS connection is required")
	ErrSubjectRequired = errors.New("subject is required")
	ErrCoordRequired   = errors.New("coordinator is required")
	ErrBucketRequired  = errors.New("KV bucket is required")
	ErrKeyRequired     = errors.New("snapshot key is required")
)

// Update is the wire format for one worker batch.
//
// Marginals carries one row per walked permutation; row[i] is the marginal
// contribution of item i.
type Update struct {
	WorkerID  int         `json:"workerId"`
	Marginals [][]float64 `json:"marginals"`
}

// Ack is the merge acknowledgment returned for every update.
type Ack struct {
	// Merged is the total number of permutations merged across all workers
	// after this batch.
	Merged int `json:"merged"`

	// Done reports whether a stopping criterion has been met. Remote workers
	// use it to stop sampling without a second round trip.
	Done bool `json:"done"`
}

// Publisher pushes worker update batches to a remote coordinator over NATS.
//
// Each push is a request/reply exchange: the batch is not considered
// delivered until the receiver has merged it and replied with an Ack. A relay
// worker that crashes mid-push therefore never leaves half-merged state
// behind.
type Publisher struct {
	nc      *nats.Conn
	subject string
	timeout time.Duration
}

// NewPublisher creates a publisher for the given update subject.
//
// Parameters:
//   - nc: NATS connection
//   - subject: Subject the coordinator-side Receiver listens on
//   - timeout: Per-push request timeout
//
// Returns:
//   - *Publisher: Initialized publisher
//   - error: Missing connection or subject
func NewPublisher(nc *nats.Conn, subject string, timeout time.Duration) (*Publisher, error) {
	if nc == nil {
		return nil, ErrConnRequired
	}
	if subject == "" {
		return nil, ErrSubjectRequired
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Publisher{nc: nc, subject: subject, timeout: timeout}, nil
}

// Push sends one batch and blocks until the remote coordinator acknowledges
// the merge.
//
// Parameters:
//   - ctx: Context for cancellation; combined with the configured timeout
//   - workerID: Index of the pushing worker
//   - marginals: Batch of permutation rows
//
// Returns:
//   - int: Total permutations merged by the remote coordinator
//   - bool: Whether the remote run is done
//   - error: Marshal, transport or decode failure
func (p *Publisher) Push(ctx context.Context, workerID int, marginals [][]float64) (int, bool, error) {
	data, err := json.Marshal(Update{WorkerID: workerID, Marginals: marginals})
	if err != nil {
		return 0, false, fmt.Errorf("failed to encode update: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg, err := p.nc.RequestWithContext(reqCtx, p.subject, data)
	if err != nil {
		return 0, false, fmt.Errorf("failed to push update for worker %d: %w", workerID, err)
	}

	var ack Ack
	if err := json.Unmarshal(msg.Data, &ack); err != nil {
		return 0, false, fmt.Errorf("failed to decode ack: %w", err)
	}

	return ack.Merged, ack.Done, nil
}

// Receiver feeds updates arriving on a NATS subject into a coordinator.
//
// One receiver runs next to the coordinator; any number of remote publishers
// push to the same subject. Merging is serialized by the coordinator mailbox,
// so concurrent deliveries are safe.
type Receiver struct {
	nc      *nats.Conn
	subject string
	coord   *shapley.Coordinator
	timeout time.Duration
	logger  types.Logger

	sub *nats.Subscription
}

// NewReceiver creates a receiver feeding coord from the given subject.
//
// Parameters:
//   - nc: NATS connection
//   - subject: Subject remote publishers push to
//   - coord: Started coordinator owning the aggregate state
//   - logger: Logger for delivery problems, nil for none
//
// Returns:
//   - *Receiver: Initialized receiver, not yet subscribed
//   - error: Missing connection, subject or coordinator
func NewReceiver(nc *nats.Conn, subject string, coord *shapley.Coordinator, logger types.Logger) (*Receiver, error) {
	if nc == nil {
		return nil, ErrConnRequired
	}
	if subject == "" {
		return nil, ErrSubjectRequired
	}
	if coord == nil {
		return nil, ErrCoordRequired
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Receiver{
		nc:      nc,
		subject: subject,
		coord:   coord,
		timeout: 5 * time.Second,
		logger:  logger,
	}, nil
}

// Start subscribes to the update subject.
//
// Returns:
//   - error: ErrAlreadyStarted if subscribed, or subscription failure
func (r *Receiver) Start() error {
	if r.sub != nil {
		return ErrAlreadyStarted
	}

	sub, err := r.nc.Subscribe(r.subject, r.handle)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.subject, err)
	}
	r.sub = sub

	return nil
}

// Stop drains the subscription, letting in-flight updates finish merging.
//
// Returns:
//   - error: ErrNotStarted if never subscribed, or drain failure
func (r *Receiver) Stop() error {
	if r.sub == nil {
		return ErrNotStarted
	}

	err := r.sub.Drain()
	r.sub = nil
	if err != nil {
		return fmt.Errorf("failed to drain subscription: %w", err)
	}

	return nil
}

// handle decodes one update, merges it and replies with the Ack.
func (r *Receiver) handle(msg *nats.Msg) {
	var update Update
	if err := json.Unmarshal(msg.Data, &update); err != nil {
		r.logger.Warn("dropping undecodable update", "subject", r.subject, "error", err)

		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	merged, done, err := r.coord.Push(ctx, update.WorkerID, update.Marginals)
	if err != nil {
		// No reply: the publisher times out and decides whether to retry.
		r.logger.Warn("failed to merge relayed update",
			"workerID", update.WorkerID, "rows", len(update.Marginals), "error", err)

		return
	}

	data, err := json.Marshal(Ack{Merged: merged, Done: done})
	if err != nil {
		r.logger.Error("failed to encode ack", "error", err)

		return
	}
	if err := msg.Respond(data); err != nil {
		r.logger.Warn("failed to send ack", "workerID", update.WorkerID, "error", err)
	}
}
