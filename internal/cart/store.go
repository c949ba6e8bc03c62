package cart

import (
	"fmt"
	"slices"
	"sync"

	"github.com/nikolayk812/foodie/internal/domain"
	"github.com/nikolayk812/foodie/internal/port"
	"go.uber.org/zap"
)

// Observer receives the cart contents after every mutation.
type Observer func(snapshot domain.CartSnapshot)

// Store holds the lines of one session's cart. At most one line exists per item
// and every quantity is >= 1.
type Store struct {
	mu        sync.Mutex
	catalog   port.ItemLookup
	lines     []domain.CartLine
	observers map[int]Observer
	nextObs   int
	logger    *zap.Logger
}

func NewStore(catalog port.ItemLookup, logger *zap.Logger) *Store {
	return &Store{
		catalog:   catalog,
		observers: make(map[int]Observer),
		logger:    logger,
	}
}

// Subscribe registers an observer and returns a function that removes it.
func (s *Store) Subscribe(o Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextObs
	s.nextObs++
	s.observers[id] = o

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

func (s *Store) AddItem(itemID int64) (domain.MenuItem, error) {
	s.mu.Lock()

	item, ok := s.catalog.Item(itemID)
	if !ok {
		s.mu.Unlock()
		return domain.MenuItem{}, fmt.Errorf("item[%d]: %w", itemID, domain.ErrUnknownItem)
	}

	if i := s.indexOf(itemID); i >= 0 {
		s.lines[i].Quantity++
	} else {
		s.lines = append(s.lines, domain.CartLine{ItemID: itemID, Quantity: 1})
	}

	s.logger.Debug("cart item added", zap.Int64("item_id", itemID), zap.Int("lines", len(s.lines)))
	s.unlockAndNotify()

	return item, nil
}

// RemoveItem reports whether a line was removed. Removing an absent item is a no-op.
func (s *Store) RemoveItem(itemID int64) bool {
	s.mu.Lock()

	i := s.indexOf(itemID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.lines = slices.Delete(s.lines, i, i+1)

	s.logger.Debug("cart item removed", zap.Int64("item_id", itemID))
	s.unlockAndNotify()

	return true
}

// ChangeQuantity adds delta to the line's quantity and removes the line when the
// result is not positive. It returns the resulting quantity (0 when removed).
func (s *Store) ChangeQuantity(itemID int64, delta int) (int, error) {
	s.mu.Lock()

	i := s.indexOf(itemID)
	if i < 0 {
		s.mu.Unlock()
		return 0, fmt.Errorf("cart line[%d]: %w", itemID, domain.ErrUnknownItem)
	}

	qty := s.lines[i].Quantity + delta
	if qty <= 0 {
		s.lines = slices.Delete(s.lines, i, i+1)
		qty = 0
	} else {
		s.lines[i].Quantity = qty
	}

	s.logger.Debug("cart quantity changed",
		zap.Int64("item_id", itemID), zap.Int("delta", delta), zap.Int("quantity", qty))
	s.unlockAndNotify()

	return qty, nil
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.unlockAndNotify()
}

// Subtract takes ordered quantities out of the cart, dropping lines that reach zero.
// Lines and quantities added after the order was built are kept.
func (s *Store) Subtract(ordered []domain.CartLine) {
	s.mu.Lock()

	for _, o := range ordered {
		i := s.indexOf(o.ItemID)
		if i < 0 {
			continue
		}
		if s.lines[i].Quantity > o.Quantity {
			s.lines[i].Quantity -= o.Quantity
			continue
		}
		s.lines = slices.Delete(s.lines, i, i+1)
	}

	s.logger.Debug("ordered lines subtracted", zap.Int("ordered", len(ordered)), zap.Int("lines", len(s.lines)))
	s.unlockAndNotify()
}

// ReplaceCatalog installs a new catalog and drops lines whose item no longer exists.
// It returns the IDs of dropped lines.
func (s *Store) ReplaceCatalog(catalog port.ItemLookup) []int64 {
	s.mu.Lock()

	s.catalog = catalog

	var dropped []int64
	s.lines = slices.DeleteFunc(s.lines, func(l domain.CartLine) bool {
		if _, ok := catalog.Item(l.ItemID); !ok {
			dropped = append(dropped, l.ItemID)
			return true
		}
		return false
	})

	if len(dropped) == 0 {
		s.mu.Unlock()
		return nil
	}

	s.logger.Info("cart lines dropped after catalog change", zap.Int64s("item_ids", dropped))
	s.unlockAndNotify()

	return dropped
}

func (s *Store) Snapshot() domain.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lines)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

func (s *Store) snapshotLocked() domain.CartSnapshot {
	lines := make([]domain.SnapshotLine, 0, len(s.lines))
	for _, l := range s.lines {
		item, _ := s.catalog.Item(l.ItemID)
		lines = append(lines, domain.SnapshotLine{Item: item, Quantity: l.Quantity})
	}
	return domain.CartSnapshot{Lines: lines}
}

// unlockAndNotify must be called with s.mu held; observers run after the lock is released.
func (s *Store) unlockAndNotify() {
	snapshot := s.snapshotLocked()
	observers := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	s.mu.Unlock()

	for _, o := range observers {
		o(snapshot)
	}
}

func (s *Store) indexOf(itemID int64) int {
	return slices.IndexFunc(s.lines, func(l domain.CartLine) bool {
		return l.ItemID == itemID
	})
}
