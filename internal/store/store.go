// Package store is the client-side cache of the remote collections. It is
// refreshed wholesale from fresh listings and never patched in place, so its
// shape always matches what a list call would return.
package store

import (
	"sync"

	"github.com/tavolaapp/tavola-admin/internal/model"
)

// Store holds one collection per resource kind. Server-returned order is
// preserved. Readers get copies; the only writers are the initial load and
// the post-mutation refresh.
type Store struct {
	mu          sync.RWMutex
	categories  []model.Category
	menuItems   []model.MenuItem
	ingredients []model.Ingredient
	orders      []model.Order
}

func New() *Store {
	return &Store{}
}

// ReplaceCategories swaps in a fresh listing.
func (s *Store) ReplaceCategories(list []model.Category) {
	s.mu.Lock()
	s.categories = append([]model.Category(nil), list...)
	s.mu.Unlock()
}

func (s *Store) ReplaceMenuItems(list []model.MenuItem) {
	s.mu.Lock()
	s.menuItems = append([]model.MenuItem(nil), list...)
	s.mu.Unlock()
}

func (s *Store) ReplaceIngredients(list []model.Ingredient) {
	s.mu.Lock()
	s.ingredients = append([]model.Ingredient(nil), list...)
	s.mu.Unlock()
}

func (s *Store) ReplaceOrders(list []model.Order) {
	s.mu.Lock()
	s.orders = append([]model.Order(nil), list...)
	s.mu.Unlock()
}

// Categories returns a snapshot of the cached collection.
func (s *Store) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Category(nil), s.categories...)
}

func (s *Store) MenuItems() []model.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.MenuItem(nil), s.menuItems...)
}

func (s *Store) Ingredients() []model.Ingredient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Ingredient(nil), s.ingredients...)
}

func (s *Store) Orders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Order(nil), s.orders...)
}

// OrderByID looks up a cached order.
func (s *Store) OrderByID(id string) (model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o, true
		}
	}
	return model.Order{}, false
}

// CategoryName resolves a category id against the cached collection,
// returning the id itself when unknown.
func (s *Store) CategoryName(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c.Name
		}
	}
	return id
}

// OrderCounts returns total, pending, and completed counts for the
// overview tab.
func (s *Store) OrderCounts() (total, pending, completed int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total = len(s.orders)
	for _, o := range s.orders {
		switch o.Status {
		case model.StatusPending:
			pending++
		case model.StatusCompleted:
			completed++
		}
	}
	return total, pending, completed
}
