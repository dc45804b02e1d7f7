package service

import (
	"context"
	"fmt"

	"github.com/tavolaapp/tavola-admin/internal/api"
	"github.com/tavolaapp/tavola-admin/internal/model"
	"github.com/tavolaapp/tavola-admin/internal/notify"
	"github.com/tavolaapp/tavola-admin/internal/store"
)

// InvalidTransitionError is an order status change that is not an edge of
// the workflow. It is raised before any network traffic.
type InvalidTransitionError struct {
	From model.OrderStatus
	To   model.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	if e.From.Terminal() {
		return fmt.Sprintf("order is already %s", e.From)
	}
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

// OrderService advances orders through the fulfilment workflow. The
// transition table is checked here, not just in the UI: illegal edges fail
// without touching the network even when called directly.
type OrderService struct {
	API     *api.Client
	Store   *store.Store
	Feed    *notify.Feed
	Catalog *CatalogService
}

func NewOrders(client *api.Client, st *store.Store, feed *notify.Feed, catalog *CatalogService) *OrderService {
	return &OrderService{API: client, Store: st, Feed: feed, Catalog: catalog}
}

// Transition moves one order to the target status. The cached order's
// current status gates the call; on success the order collection is
// refetched, on failure it is untouched.
func (s *OrderService) Transition(ctx context.Context, orderID string, target model.OrderStatus) error {
	cur, ok := s.Store.OrderByID(orderID)
	if !ok {
		err := fmt.Errorf("unknown order %s", orderID)
		s.Feed.Error(err.Error())
		return err
	}
	if !model.ValidOrderTransition(cur.Status, target) {
		err := &InvalidTransitionError{From: cur.Status, To: target}
		s.Feed.Error(err.Error())
		return err
	}

	defer s.Catalog.lock(model.KindOrder)()

	if _, err := s.API.UpdateOrderStatus(ctx, orderID, target); err != nil {
		s.Feed.Error(api.Message(err, "Failed to update order"))
		return err
	}
	if err := s.Catalog.refetch(ctx, model.KindOrder); err != nil {
		s.Feed.Error(api.Message(err, "Updated, but failed to refresh orders"))
		return err
	}
	s.Feed.Success("Order " + string(target))
	return nil
}
