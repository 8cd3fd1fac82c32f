package mirror

import (
	"context"

	"github.com/mcdev12/matchcontrol/go/internal/kvstore"
	"github.com/mcdev12/matchcontrol/go/internal/match"
)

// StoreSink writes each field to the key-value store at the path named after it.
type StoreSink struct {
	store kvstore.Store
}

func NewStoreSink(store kvstore.Store) *StoreSink {
	return &StoreSink{store: store}
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Write(ctx context.Context, change match.StateChange) error {
	return s.store.Set(ctx, change.Field, change.Value)
}
