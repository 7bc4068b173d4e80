package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/angelmondragon/storefront-pricing/internal/events"
	"github.com/angelmondragon/storefront-pricing/pkg/logger"
)

// Store is the cart repository the aggregator reads from.
type Store interface {
	Get(ctx context.Context) (Cart, error)
	Set(ctx context.Context, c Cart) error
	OnChange(fn func()) (unsubscribe func(), err error)
}

type bus interface {
	events.Notifier
	events.Subscriber
}

// PersistentStore keeps one cart in a BlobStore and signals CartChanged after every
// successful Set.
type PersistentStore struct {
	blobs BlobStore
	key   string
	bus   bus
	logg  *logger.Logger

	// serialises read-modify-write cycles issued through Update
	mu sync.Mutex
}

// StoreOptions configures a PersistentStore.
type StoreOptions struct {
	Blobs  BlobStore
	Key    string
	Bus    *events.Bus
	Logger *logger.Logger
}

// NewPersistentStore validates options and builds the store.
func NewPersistentStore(opts StoreOptions) (*PersistentStore, error) {
	if opts.Blobs == nil {
		return nil, fmt.Errorf("cart blob store required")
	}
	if opts.Bus == nil {
		return nil, fmt.Errorf("event bus required")
	}
	key := opts.Key
	if key == "" {
		key = "cart"
	}
	return &PersistentStore{blobs: opts.Blobs, key: key, bus: opts.Bus, logg: opts.Logger}, nil
}

// Key is the blob key the cart lives under.
func (s *PersistentStore) Key() string {
	return s.key
}

// Get reads the cart snapshot. A corrupt blob yields an empty cart alongside an error
// wrapping ErrCorruptBlob; callers that only render may ignore the error.
func (s *PersistentStore) Get(ctx context.Context) (Cart, error) {
	blob, err := s.blobs.Load(ctx, s.key)
	if err != nil {
		return Cart{}, fmt.Errorf("load cart: %w", err)
	}
	c, err := Decode(blob)
	if err != nil {
		if errors.Is(err, ErrCorruptBlob) && s.logg != nil {
			s.logg.Warn(s.logg.WithCartKey(ctx, s.key), fmt.Sprintf("discarding unreadable cart: %v", err))
		}
		return Cart{}, err
	}
	return c, nil
}

// Set persists the cart and broadcasts CartChanged.
func (s *PersistentStore) Set(ctx context.Context, c Cart) error {
	blob, err := Encode(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.blobs.Save(ctx, s.key, blob); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	s.bus.Notify(events.CartChanged)
	return nil
}

// OnChange subscribes fn to CartChanged.
func (s *PersistentStore) OnChange(fn func()) (func(), error) {
	return s.bus.Subscribe(events.CartChanged, fn)
}

// Update applies fn to the current cart and persists the result as a single Set.
// A corrupt stored cart is treated as empty so a mutation can repair it.
func (s *PersistentStore) Update(ctx context.Context, fn func(*Cart) error) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Get(ctx)
	if err != nil && !errors.Is(err, ErrCorruptBlob) {
		return Cart{}, err
	}
	next := current.Clone()
	if err := fn(&next); err != nil {
		return Cart{}, err
	}
	if err := s.Set(ctx, next); err != nil {
		return Cart{}, err
	}
	return next, nil
}

// Close releases the blob store.
func (s *PersistentStore) Close() error {
	return s.blobs.Close()
}
