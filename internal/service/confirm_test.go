package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tavolaapp/tavola-admin/internal/draft"
	"github.com/tavolaapp/tavola-admin/internal/model"
	"github.com/tavolaapp/tavola-admin/internal/notify"
)

func seedIngredient(t *testing.T, w *world, name string) model.Ingredient {
	t.Helper()
	d := draft.New(model.KindIngredient)
	d.Apply(draft.Patch{Name: strptr(name), PriceInput: strptr("2")})
	require.NoError(t, w.catalog.SaveIngredient(context.Background(), d))
	list := w.store.Ingredients()
	return list[len(list)-1]
}

func TestCancelSendsNothing(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ing := seedIngredient(t, w, "Basil")
	before := w.store.Ingredients()

	w.gate.RequestDelete(model.KindIngredient, ing.ID, ing.Name)
	require.NotNil(t, w.gate.Pending())
	w.gate.Cancel()
	require.Nil(t, w.gate.Pending())

	require.Zero(t, w.backend.Calls("DELETE /ingredients/"+ing.ID))
	require.Equal(t, before, w.store.Ingredients())
}

func TestConfirmDeletesAndRefreshes(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ing := seedIngredient(t, w, "Basil")

	w.gate.RequestDelete(model.KindIngredient, ing.ID, ing.Name)
	require.NoError(t, w.gate.Confirm(context.Background()))

	require.Equal(t, 1, w.backend.Calls("DELETE /ingredients/"+ing.ID))
	require.Empty(t, w.store.Ingredients())
	require.Nil(t, w.gate.Pending())
	require.Equal(t, "Ingredient deleted", w.requireNotified(t, notify.SeveritySuccess))
}

func TestNewRequestReplacesPrior(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	a := seedIngredient(t, w, "Basil")
	b := seedIngredient(t, w, "Mint")

	w.gate.RequestDelete(model.KindIngredient, a.ID, a.Name)
	w.gate.RequestDelete(model.KindIngredient, b.ID, b.Name)

	req := w.gate.Pending()
	require.NotNil(t, req)
	require.Equal(t, b.ID, req.ID)

	require.NoError(t, w.gate.Confirm(context.Background()))
	require.Zero(t, w.backend.Calls("DELETE /ingredients/"+a.ID), "the replaced request must have no side effects")
	require.Equal(t, 1, w.backend.Calls("DELETE /ingredients/"+b.ID))
}

func TestConfirmWithoutRequestIsNoop(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	require.NoError(t, w.gate.Confirm(context.Background()))
	require.Zero(t, w.backend.mutationCalls())
}

func TestGateClearsEvenWhenDeleteFails(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ing := seedIngredient(t, w, "Basil")
	before := w.store.Ingredients()

	w.backend.mu.Lock()
	w.backend.failNext = 500
	w.backend.failMsg = "cannot delete"
	w.backend.mu.Unlock()

	w.gate.RequestDelete(model.KindIngredient, ing.ID, ing.Name)
	require.Error(t, w.gate.Confirm(context.Background()))
	require.Nil(t, w.gate.Pending())
	require.Equal(t, before, w.store.Ingredients())
	require.Equal(t, "cannot delete", w.requireNotified(t, notify.SeverityError))
}

func TestDeleteCategoryThroughGate(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ctx := context.Background()
	d := draft.New(model.KindCategory)
	d.Apply(draft.Patch{Name: strptr("Drinks")})
	require.NoError(t, w.catalog.SaveCategory(ctx, d))
	cat := w.store.Categories()[0]

	w.gate.RequestDelete(model.KindCategory, cat.ID, cat.Name)
	require.NoError(t, w.gate.Confirm(ctx))
	require.Empty(t, w.store.Categories())
	require.Equal(t, "Category deleted", w.requireNotified(t, notify.SeveritySuccess))
}
