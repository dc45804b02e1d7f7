package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tavolaapp/tavola-admin/internal/model"
	"github.com/tavolaapp/tavola-admin/internal/notify"
)

func seedOrders(w *world, orders ...model.Order) {
	w.backend.mu.Lock()
	w.backend.orders = append([]model.Order(nil), orders...)
	w.backend.mu.Unlock()
	w.store.ReplaceOrders(orders)
}

func TestAcceptPendingOrder(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ctx := context.Background()
	seedOrders(w, model.Order{ID: "o1", Status: model.StatusPending, Total: 12.5, CreatedAt: time.Now().UTC()})

	require.NoError(t, w.orders.Transition(ctx, "o1", model.StatusAccepted))

	o, ok := w.store.OrderByID("o1")
	require.True(t, ok)
	require.Equal(t, model.StatusAccepted, o.Status)
	require.Equal(t, "Order accepted", w.requireNotified(t, notify.SeveritySuccess))
	require.Equal(t, 1, w.backend.Calls("PUT /orders/o1"))
	require.Equal(t, 1, w.backend.Calls("GET /orders"))
}

func TestIllegalTransitionIssuesNoCall(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ctx := context.Background()
	seedOrders(w, model.Order{ID: "o1", Status: model.StatusAccepted})

	err := w.orders.Transition(ctx, "o1", model.StatusPending)
	var inv *InvalidTransitionError
	require.ErrorAs(t, err, &inv)
	require.Equal(t, model.StatusAccepted, inv.From)
	require.Equal(t, model.StatusPending, inv.To)
	require.Zero(t, w.backend.Calls("PUT /orders/o1"))
	w.requireNotified(t, notify.SeverityError)
}

func TestTerminalOrdersRejectEverything(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ctx := context.Background()
	seedOrders(w,
		model.Order{ID: "done", Status: model.StatusCompleted},
		model.Order{ID: "gone", Status: model.StatusRejected},
	)

	for _, id := range []string{"done", "gone"} {
		for _, target := range []model.OrderStatus{model.StatusPending, model.StatusAccepted, model.StatusCompleted, model.StatusRejected} {
			err := w.orders.Transition(ctx, id, target)
			var inv *InvalidTransitionError
			require.ErrorAs(t, err, &inv)
		}
		require.Zero(t, w.backend.Calls("PUT /orders/"+id))
	}
}

func TestAcceptedThenPendingScenario(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ctx := context.Background()
	seedOrders(w, model.Order{ID: "o1", Status: model.StatusPending})

	require.NoError(t, w.orders.Transition(ctx, "o1", model.StatusAccepted))
	o, _ := w.store.OrderByID("o1")
	require.Equal(t, model.StatusAccepted, o.Status)

	err := w.orders.Transition(ctx, "o1", model.StatusPending)
	var inv *InvalidTransitionError
	require.ErrorAs(t, err, &inv)
	require.Equal(t, 1, w.backend.Calls("PUT /orders/o1"), "the illegal follow-up must not hit the network")
}

func TestUnknownOrderIssuesNoCall(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	err := w.orders.Transition(context.Background(), "nope", model.StatusAccepted)
	require.Error(t, err)
	require.Zero(t, w.backend.mutationCalls())
	w.requireNotified(t, notify.SeverityError)
}

func TestFailedTransitionLeavesStatusUnchanged(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ctx := context.Background()
	seedOrders(w, model.Order{ID: "o1", Status: model.StatusPending})

	w.backend.mu.Lock()
	w.backend.failNext = 500
	w.backend.failMsg = "kitchen offline"
	w.backend.mu.Unlock()

	err := w.orders.Transition(ctx, "o1", model.StatusAccepted)
	require.Error(t, err)

	o, _ := w.store.OrderByID("o1")
	require.Equal(t, model.StatusPending, o.Status)
	require.Equal(t, "kitchen offline", w.requireNotified(t, notify.SeverityError))
}

func TestCompleteAcceptedOrder(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ctx := context.Background()
	seedOrders(w, model.Order{ID: "o2", Status: model.StatusAccepted})

	require.NoError(t, w.orders.Transition(ctx, "o2", model.StatusCompleted))
	o, _ := w.store.OrderByID("o2")
	require.Equal(t, model.StatusCompleted, o.Status)
	require.Equal(t, "Order completed", w.requireNotified(t, notify.SeveritySuccess))
}
