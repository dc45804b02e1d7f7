// Package service holds the client core: the CRUD orchestrator, the order
// workflow engine, and the confirmation gate. All remote failures stop at
// this boundary; each operation ends in exactly one notification.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tavolaapp/tavola-admin/internal/api"
	"github.com/tavolaapp/tavola-admin/internal/draft"
	"github.com/tavolaapp/tavola-admin/internal/model"
	"github.com/tavolaapp/tavola-admin/internal/notify"
	"github.com/tavolaapp/tavola-admin/internal/store"
)

// CatalogService orchestrates create/update/delete/list for the catalog
// kinds. After any successful mutation the affected collection is refetched
// wholesale; failed mutations never touch the store, so there is nothing to
// roll back.
type CatalogService struct {
	API   *api.Client
	Store *store.Store
	Feed  *notify.Feed

	// one mutex per kind: mutations of a kind are single-flight so raced
	// saves land whole, in some order, never merged
	muByKind map[model.Kind]*sync.Mutex
}

func NewCatalog(client *api.Client, st *store.Store, feed *notify.Feed) *CatalogService {
	mus := make(map[model.Kind]*sync.Mutex)
	for _, k := range []model.Kind{model.KindCategory, model.KindMenuItem, model.KindIngredient, model.KindOrder} {
		mus[k] = &sync.Mutex{}
	}
	return &CatalogService{API: client, Store: st, Feed: feed, muByKind: mus}
}

func (s *CatalogService) lock(kind model.Kind) func() {
	mu := s.muByKind[kind]
	mu.Lock()
	return mu.Unlock
}

// Refresh replaces one kind's collection with a fresh listing. On failure
// the cached collection is left untouched and the failure is reported.
func (s *CatalogService) Refresh(ctx context.Context, kind model.Kind) error {
	if err := s.refetch(ctx, kind); err != nil {
		s.Feed.Error(api.Message(err, "Failed to fetch "+kind.Label()+"s"))
		return err
	}
	return nil
}

// RefreshAll performs the initial load of every collection. Each failing
// kind is reported; the last error is returned.
func (s *CatalogService) RefreshAll(ctx context.Context) error {
	var last error
	for _, k := range []model.Kind{model.KindOrder, model.KindCategory, model.KindMenuItem, model.KindIngredient} {
		if err := s.Refresh(ctx, k); err != nil {
			last = err
		}
	}
	return last
}

// refetch lists without notifying; callers decide how the outcome surfaces.
func (s *CatalogService) refetch(ctx context.Context, kind model.Kind) error {
	switch kind {
	case model.KindCategory:
		list, err := s.API.ListCategories(ctx)
		if err != nil {
			return err
		}
		s.Store.ReplaceCategories(list)
	case model.KindMenuItem:
		list, err := s.API.ListMenuItems(ctx)
		if err != nil {
			return err
		}
		s.Store.ReplaceMenuItems(list)
	case model.KindIngredient:
		list, err := s.API.ListIngredients(ctx)
		if err != nil {
			return err
		}
		s.Store.ReplaceIngredients(list)
	case model.KindOrder:
		list, err := s.API.ListOrders(ctx)
		if err != nil {
			return err
		}
		s.Store.ReplaceOrders(list)
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
	return nil
}

// finish turns a mutation outcome into the refetch plus the single
// notification for the operation.
func (s *CatalogService) finish(ctx context.Context, kind model.Kind, successMsg, failMsg string, err error) error {
	if err != nil {
		s.Feed.Error(api.Message(err, failMsg))
		return err
	}
	if rerr := s.refetch(ctx, kind); rerr != nil {
		s.Feed.Error(api.Message(rerr, "Saved, but failed to refresh "+kind.Label()+"s"))
		return rerr
	}
	s.Feed.Success(successMsg)
	return nil
}

// SaveCategory commits a category draft, creating or updating by identity.
func (s *CatalogService) SaveCategory(ctx context.Context, d *draft.Draft) error {
	if err := s.precheck(d, model.KindCategory); err != nil {
		return err
	}
	defer s.lock(model.KindCategory)()

	payload := api.CategoryPayload{
		Name:        strings.TrimSpace(d.Name),
		Description: d.Description,
	}
	var err error
	if d.IsNew() {
		_, err = s.API.CreateCategory(ctx, payload)
	} else {
		_, err = s.API.UpdateCategory(ctx, d.ID, payload)
	}
	return s.finish(ctx, model.KindCategory, "Category saved successfully", "Failed to save category", err)
}

// SaveMenuItem commits a menu item draft as a multipart form.
func (s *CatalogService) SaveMenuItem(ctx context.Context, d *draft.Draft) error {
	if err := s.precheck(d, model.KindMenuItem); err != nil {
		return err
	}
	price, _ := model.ParsePrice(d.PriceInput) // validated in precheck
	defer s.lock(model.KindMenuItem)()

	form := api.MenuItemForm{
		Name:        strings.TrimSpace(d.Name),
		Description: d.Description,
		Price:       model.FormatPrice(price),
		CategoryID:  d.CategoryID,
		Image:       upload(d.Attachment),
	}
	var err error
	if d.IsNew() {
		_, err = s.API.CreateMenuItem(ctx, form)
	} else {
		_, err = s.API.UpdateMenuItem(ctx, d.ID, form)
	}
	return s.finish(ctx, model.KindMenuItem, "Menu item saved successfully", "Failed to save menu item", err)
}

// SaveIngredient commits an ingredient draft as a multipart form.
func (s *CatalogService) SaveIngredient(ctx context.Context, d *draft.Draft) error {
	if err := s.precheck(d, model.KindIngredient); err != nil {
		return err
	}
	price, _ := model.ParsePrice(d.PriceInput)
	defer s.lock(model.KindIngredient)()

	form := api.IngredientForm{
		Name:    strings.TrimSpace(d.Name),
		Price:   model.FormatPrice(price),
		Picture: upload(d.Attachment),
	}
	_, err := s.API.SaveIngredient(ctx, d.ID, form)
	return s.finish(ctx, model.KindIngredient, "Ingredient saved successfully", "Failed to save ingredient", err)
}

// Save dispatches a draft to the saver for its kind. Failure keeps the
// draft alive; the dialog layer retains it for retry.
func (s *CatalogService) Save(ctx context.Context, d *draft.Draft) error {
	switch d.Kind {
	case model.KindCategory:
		return s.SaveCategory(ctx, d)
	case model.KindMenuItem:
		return s.SaveMenuItem(ctx, d)
	case model.KindIngredient:
		return s.SaveIngredient(ctx, d)
	default:
		err := fmt.Errorf("cannot save drafts of kind %q", d.Kind)
		s.Feed.Error(err.Error())
		return err
	}
}

// delete is reachable only through the confirmation gate in this package.
func (s *CatalogService) delete(ctx context.Context, kind model.Kind, id string) error {
	defer s.lock(kind)()

	var err error
	switch kind {
	case model.KindCategory:
		err = s.API.DeleteCategory(ctx, id)
	case model.KindMenuItem:
		err = s.API.DeleteMenuItem(ctx, id)
	case model.KindIngredient:
		err = s.API.DeleteIngredient(ctx, id)
	default:
		err = fmt.Errorf("%ss cannot be deleted", kind.Label())
		s.Feed.Error(err.Error())
		return err
	}
	label := kind.Label()
	return s.finish(ctx, kind, strings.ToUpper(label[:1])+label[1:]+" deleted", "Failed to delete "+label, err)
}

// precheck validates required fields before any network traffic. Kind
// mismatches are programmer errors surfaced the same way.
func (s *CatalogService) precheck(d *draft.Draft, want model.Kind) error {
	err := validate(d, want)
	if err != nil {
		s.Feed.Error(api.Message(err, "Failed to save "+want.Label()))
	}
	return err
}

func validate(d *draft.Draft, want model.Kind) error {
	if d == nil || d.Kind != want {
		return &api.ValidationError{Field: "draft", Reason: "is not a " + want.Label()}
	}
	if strings.TrimSpace(d.Name) == "" {
		return &api.ValidationError{Field: "name", Reason: "is required"}
	}
	switch want {
	case model.KindMenuItem:
		if _, err := model.ParsePrice(d.PriceInput); err != nil {
			return &api.ValidationError{Field: "price", Reason: "must be a non-negative number"}
		}
		if d.CategoryID == "" {
			return &api.ValidationError{Field: "category", Reason: "is required"}
		}
	case model.KindIngredient:
		if _, err := model.ParsePrice(d.PriceInput); err != nil {
			return &api.ValidationError{Field: "price", Reason: "must be a non-negative number"}
		}
	}
	return nil
}

func upload(a *draft.Attachment) *api.Upload {
	if a == nil {
		return nil
	}
	return &api.Upload{FileName: a.FileName, Content: a.Content}
}
