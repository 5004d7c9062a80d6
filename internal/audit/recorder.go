package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-pos-ledger/internal/model"
)

// SystemActor is recorded when a command carries no operator identity.
const SystemActor = "system"

const sinkTimeout = 5 * time.Second

// Recorder receives exactly one event per state-changing command. It must
// never block or fail the command.
type Recorder interface {
	Record(ctx context.Context, category model.LogCategory, message string)
}

// Sink is one destination for audit entries.
type Sink interface {
	Name() string
	Write(ctx context.Context, entry model.LogEntry) error
}

type actorKey struct{}

// WithActor attaches the operator name used to stamp audit entries.
func WithActor(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, actorKey{}, name)
}

// ActorFrom returns the operator name on ctx, or SystemActor.
func ActorFrom(ctx context.Context) string {
	if name, ok := ctx.Value(actorKey{}).(string); ok && name != "" {
		return name
	}
	return SystemActor
}

// Dispatcher stamps entries and hands them to a background worker that
// writes every sink. A full queue drops the entry with a warning.
type Dispatcher struct {
	sinks  []Sink
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan model.LogEntry
	done   chan struct{}
}

func NewDispatcher(logger *zap.Logger, buffer int, sinks ...Sink) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 256
	}

	d := &Dispatcher{
		sinks:  sinks,
		logger: logger,
		queue:  make(chan model.LogEntry, buffer),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) Record(ctx context.Context, category model.LogCategory, message string) {
	entry := model.LogEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Category:  category,
		Message:   message,
		User:      ActorFrom(ctx),
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("audit dispatcher closed, entry dropped", zap.String("message", message))
		return
	}

	select {
	case d.queue <- entry:
	default:
		d.logger.Warn("audit queue full, entry dropped",
			zap.String("category", string(category)),
			zap.String("message", message),
		)
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for entry := range d.queue {
		for _, sink := range d.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
			if err := sink.Write(ctx, entry); err != nil {
				d.logger.Error("audit sink write failed",
					zap.String("sink", sink.Name()),
					zap.String("entry_id", entry.ID),
					zap.Error(err),
				)
			}
			cancel()
		}
	}
}

// Close stops accepting entries and waits for the queue to drain or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
