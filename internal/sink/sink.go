package sink

import (
	"context"

	"basesignals/internal/model"
	"basesignals/internal/store"
)

// Sink receives a signal bundle for one address. Delivery is fire-and-forget
// from the dispatcher's point of view: an error is logged by the caller and
// never retried.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, signals model.UserSignals) error
}

// StoreSink writes bundles straight into the local signal store backing the
// query API.
type StoreSink struct {
	store store.Store
}

func NewStoreSink(s store.Store) *StoreSink {
	return &StoreSink{store: s}
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Deliver(ctx context.Context, signals model.UserSignals) error {
	return s.store.Put(ctx, signals)
}
