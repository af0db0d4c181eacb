package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tjfontaine/githubbot-connect/internal/storage"
)

// Store is an in-memory DeliveryStore
type Store struct {
	mu         sync.RWMutex
	deliveries map[string]*storage.Delivery
	order      []string
}

var _ storage.DeliveryStore = (*Store)(nil)

// New creates a new in-memory store
func New() *Store {
	return &Store{
		deliveries: make(map[string]*storage.Delivery),
	}
}

func (s *Store) SaveDelivery(ctx context.Context, d *storage.Delivery) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.deliveries[d.ID]; exists {
		return fmt.Errorf("delivery %s already exists", d.ID)
	}

	stored := *d
	s.deliveries[d.ID] = &stored
	s.order = append(s.order, d.ID)
	return nil
}

func (s *Store) GetDelivery(ctx context.Context, id string) (*storage.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, exists := s.deliveries[id]
	if !exists {
		return nil, fmt.Errorf("get %s: %w", id, storage.ErrNotFound)
	}

	out := *d
	return &out, nil
}

func (s *Store) ListDeliveries(ctx context.Context, opts storage.ListOptions) ([]*storage.Delivery, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*storage.Delivery
	for _, id := range slices.Backward(s.order) {
		d := s.deliveries[id]
		if opts.Event != "" && d.Event != opts.Event {
			continue
		}
		copied := *d
		out = append(out, &copied)
	}

	// Newest first; insertion order breaks ties.
	slices.SortStableFunc(out, func(a, b *storage.Delivery) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) Close() error {
	return nil
}
