package store

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/verte-zerg/ptrack/internal/model"
)

// DefaultKey is the key the state blob is stored under.
const DefaultKey = "pt_tracker_data"

// Gateway loads and saves the whole application state as one JSON value.
type Gateway struct {
	kv  KV
	key string
}

// NewGateway returns a gateway over kv. An empty key uses DefaultKey.
func NewGateway(kv KV, key string) *Gateway {
	if key == "" {
		key = DefaultKey
	}
	return &Gateway{kv: kv, key: key}
}

// Key returns the storage key.
func (g *Gateway) Key() string {
	return g.key
}

// Load returns the saved state. It reports false with a nil error when
// nothing is stored, and false with an error when the stored value cannot be
// read or lacks the state shape. Ill-typed fields inside an otherwise valid
// state are repaired during decoding.
func (g *Gateway) Load(ctx context.Context) (model.State, bool, error) {
	raw, ok, err := g.kv.Get(ctx, g.key)
	if err != nil {
		return model.State{}, false, fmt.Errorf("failed to read saved state: %w", err)
	}
	if !ok {
		return model.State{}, false, nil
	}
	state, err := decodeState(raw)
	if err != nil {
		return model.State{}, false, fmt.Errorf("failed to decode saved state: %w", err)
	}
	return state.Normalized(), true, nil
}

// Save replaces the stored state. Failures are logged and returned so
// callers can tell the user; the in-memory state stays authoritative.
func (g *Gateway) Save(ctx context.Context, state model.State) error {
	raw, err := json.Marshal(state.Normalized())
	if err != nil {
		log.WithError(err).Error("failed to encode state")
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := g.kv.Set(ctx, g.key, raw); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"key":   g.key,
			"bytes": len(raw),
		}).Error("failed to save state")
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}
