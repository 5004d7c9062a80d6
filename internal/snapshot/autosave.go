package snapshot

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Exporter produces a consistent document of the live state.
type Exporter interface {
	Snapshot(ctx context.Context) (*Document, error)
}

type Autosaver struct {
	store    Store
	source   Exporter
	interval time.Duration
	logger   *zap.Logger
}

func NewAutosaver(store Store, source Exporter, interval time.Duration, logger *zap.Logger) *Autosaver {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Autosaver{store: store, source: source, interval: interval, logger: logger}
}

// Run saves on every tick until ctx is cancelled. Failed saves are logged
// and retried on the next tick.
func (a *Autosaver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.SaveNow(ctx); err != nil {
				a.logger.Error("autosave failed", zap.Error(err))
			}
		}
	}
}

func (a *Autosaver) SaveNow(ctx context.Context) error {
	doc, err := a.source.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := a.store.Save(ctx, doc); err != nil {
		return err
	}
	a.logger.Debug("snapshot saved",
		zap.Int("sales", len(doc.Sales)),
		zap.Int("products", len(doc.Products)),
	)
	return nil
}
