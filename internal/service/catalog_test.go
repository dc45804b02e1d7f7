package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tavolaapp/tavola-admin/internal/api"
	"github.com/tavolaapp/tavola-admin/internal/draft"
	"github.com/tavolaapp/tavola-admin/internal/model"
	"github.com/tavolaapp/tavola-admin/internal/notify"
	"github.com/tavolaapp/tavola-admin/internal/session"
)

func TestCreateCategoryRefetchesAndNotifies(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ctx := context.Background()

	d := draft.New(model.KindCategory)
	d.Apply(draft.Patch{Name: strptr("Drinks"), Description: strptr("Beverages")})
	require.NoError(t, w.catalog.SaveCategory(ctx, d))

	cats := w.store.Categories()
	require.Len(t, cats, 1)
	require.Equal(t, "Drinks", cats[0].Name)
	require.Equal(t, "Beverages", cats[0].Description)
	require.NotEmpty(t, cats[0].ID)

	require.Equal(t, "Category saved successfully", w.requireNotified(t, notify.SeveritySuccess))
	require.Equal(t, 1, w.backend.Calls("POST /categories"))
	require.Equal(t, 1, w.backend.Calls("GET /categories"))
}

func TestCreateGrowsListByOne(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		before := len(w.store.Ingredients())
		d := draft.New(model.KindIngredient)
		d.Apply(draft.Patch{Name: strptr(fmt.Sprintf("Basil %d", i)), PriceInput: strptr("2.5")})
		require.NoError(t, w.catalog.SaveIngredient(ctx, d))
		after := w.store.Ingredients()
		require.Len(t, after, before+1)
		require.Equal(t, fmt.Sprintf("Basil %d", i), after[len(after)-1].Name)
		require.InDelta(t, 2.5, after[len(after)-1].Price, 1e-9)
	}
}

func TestFailedMutationLeavesStoreUntouched(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ctx := context.Background()

	seed := draft.New(model.KindCategory)
	seed.Apply(draft.Patch{Name: strptr("Drinks")})
	require.NoError(t, w.catalog.SaveCategory(ctx, seed))
	before := w.store.Categories()

	w.backend.mu.Lock()
	w.backend.failNext = 500
	w.backend.failMsg = "database on fire"
	w.backend.mu.Unlock()

	d := draft.New(model.KindCategory)
	d.Apply(draft.Patch{Name: strptr("Sides")})
	err := w.catalog.SaveCategory(ctx, d)
	require.Error(t, err)
	var srv *api.ServerError
	require.ErrorAs(t, err, &srv)

	require.Equal(t, before, w.store.Categories())
	require.Equal(t, "database on fire", w.requireNotified(t, notify.SeverityError))
}

func TestValidationStopsBeforeNetwork(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ctx := context.Background()

	cases := []*draft.Draft{
		draft.New(model.KindCategory), // empty name
		func() *draft.Draft {
			d := draft.New(model.KindMenuItem)
			d.Apply(draft.Patch{Name: strptr("Pizza"), PriceInput: strptr("-5"), CategoryID: strptr("c1")})
			return d
		}(),
		func() *draft.Draft {
			d := draft.New(model.KindMenuItem)
			d.Apply(draft.Patch{Name: strptr("Pizza"), PriceInput: strptr("9.5")}) // no category
			return d
		}(),
		func() *draft.Draft {
			d := draft.New(model.KindIngredient)
			d.Apply(draft.Patch{Name: strptr("Basil"), PriceInput: strptr("not a number")})
			return d
		}(),
	}

	for _, d := range cases {
		err := w.catalog.Save(ctx, d)
		var val *api.ValidationError
		require.ErrorAs(t, err, &val, "draft %+v", d)
		require.NotNil(t, w.feed.Active())
	}
	require.Zero(t, w.backend.mutationCalls(), "validation failures must not reach the network")
}

func TestUpdateAddressesByID(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ctx := context.Background()

	seed := draft.New(model.KindCategory)
	seed.Apply(draft.Patch{Name: strptr("Drinks")})
	require.NoError(t, w.catalog.SaveCategory(ctx, seed))
	id := w.store.Categories()[0].ID

	edit := draft.FromCategory(w.store.Categories()[0])
	edit.Apply(draft.Patch{Name: strptr("Cold Drinks")})
	require.NoError(t, w.catalog.SaveCategory(ctx, edit))

	cats := w.store.Categories()
	require.Len(t, cats, 1)
	require.Equal(t, id, cats[0].ID)
	require.Equal(t, "Cold Drinks", cats[0].Name)
	require.Equal(t, 1, w.backend.Calls("PUT /categories/"+id))
}

func TestMenuItemCategoryRoundTrip(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ctx := context.Background()

	cat := draft.New(model.KindCategory)
	cat.Apply(draft.Patch{Name: strptr("Drinks")})
	require.NoError(t, w.catalog.SaveCategory(ctx, cat))
	catID := w.store.Categories()[0].ID

	d := draft.New(model.KindMenuItem)
	d.Apply(draft.Patch{Name: strptr("Flat White"), PriceInput: strptr("4.5"), CategoryID: &catID})
	require.NoError(t, w.catalog.SaveMenuItem(ctx, d))

	items := w.store.MenuItems()
	require.Len(t, items, 1)
	require.Equal(t, catID, items[0].Category.ID())
}

func TestIngredientUpdateKeepsCollectionSize(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ctx := context.Background()

	seed := draft.New(model.KindIngredient)
	seed.Apply(draft.Patch{Name: strptr("Basil"), PriceInput: strptr("2")})
	require.NoError(t, w.catalog.SaveIngredient(ctx, seed))
	ing := w.store.Ingredients()[0]

	edit := draft.FromIngredient(ing)
	edit.Apply(draft.Patch{PriceInput: strptr("3")})
	require.NoError(t, w.catalog.SaveIngredient(ctx, edit))

	got := w.store.Ingredients()
	require.Len(t, got, 1)
	require.InDelta(t, 3, got[0].Price, 1e-9)
	require.Equal(t, 1, w.backend.Calls("POST /ingredients/"+ing.ID))
}

func TestRefreshFailureKeepsExistingCollection(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ctx := context.Background()

	before := []model.Category{{ID: "c1", Name: "Drinks", Description: "Beverages"}}
	w.store.ReplaceCategories(before)

	badClient, err := api.New("http://127.0.0.1:1", session.New(""))
	require.NoError(t, err)
	w.catalog.API = badClient

	require.Error(t, w.catalog.Refresh(ctx, model.KindCategory))
	require.Equal(t, before, w.store.Categories())
	w.requireNotified(t, notify.SeverityError)
}

func TestRacedMutationsLandWhole(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	ctx := context.Background()

	seed := draft.New(model.KindCategory)
	seed.Apply(draft.Patch{Name: strptr("Original"), Description: strptr("seed")})
	require.NoError(t, w.catalog.SaveCategory(ctx, seed))
	id := w.store.Categories()[0].ID

	mk := func(name, desc string) *draft.Draft {
		d := draft.FromCategory(model.Category{ID: id})
		d.Apply(draft.Patch{Name: strptr(name), Description: strptr(desc)})
		return d
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = w.catalog.SaveCategory(ctx, mk("Alpha", "first writer")) }()
	go func() { defer wg.Done(); _ = w.catalog.SaveCategory(ctx, mk("Beta", "second writer")) }()
	wg.Wait()

	cats := w.store.Categories()
	require.Len(t, cats, 1)
	got := cats[0]
	alpha := got.Name == "Alpha" && got.Description == "first writer"
	beta := got.Name == "Beta" && got.Description == "second writer"
	require.True(t, alpha || beta, "final state must match exactly one writer, got %+v", got)
}

func TestEveryOperationNotifiesExactlyOnce(t *testing.T) {
	t.Parallel()

	clock := newWorld(t)
	ctx := context.Background()

	d := draft.New(model.KindCategory)
	d.Apply(draft.Patch{Name: strptr("Drinks")})
	require.NoError(t, clock.catalog.SaveCategory(ctx, d))
	first := clock.feed.Active()
	require.NotNil(t, first)

	d2 := draft.New(model.KindCategory)
	require.Error(t, clock.catalog.SaveCategory(ctx, d2))
	second := clock.feed.Active()
	require.NotNil(t, second)
	require.Equal(t, first.Seq+1, second.Seq, "each operation posts exactly one notification")
}
