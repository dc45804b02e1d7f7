package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tavolaapp/tavola-admin/internal/api"
	"github.com/tavolaapp/tavola-admin/internal/model"
	"github.com/tavolaapp/tavola-admin/internal/notify"
	"github.com/tavolaapp/tavola-admin/internal/session"
	"github.com/tavolaapp/tavola-admin/internal/store"
)

// fakeBackend is an in-memory rendition of the platform API for service
// tests: enough CRUD to exercise the orchestrator, plus request counting
// and one-shot failure injection.
type fakeBackend struct {
	mu          sync.Mutex
	categories  []model.Category
	menuItems   []model.MenuItem
	ingredients []model.Ingredient
	orders      []model.Order
	nextID      int
	calls       map[string]int
	failNext    int    // HTTP status to fail the next mutation with, 0 = off
	failMsg     string // body for the injected failure
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{calls: map[string]int{}}
}

func (f *fakeBackend) count(r *http.Request) {
	f.calls[r.Method+" "+r.URL.Path]++
}

// Calls returns how often a "METHOD /path" was seen.
func (f *fakeBackend) Calls(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeBackend) mutationCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for key, c := range f.calls {
		if !strings.HasPrefix(key, http.MethodGet) {
			n += c
		}
	}
	return n
}

func (f *fakeBackend) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count(r)

	if r.Method != http.MethodGet && f.failNext != 0 {
		status, msg := f.failNext, f.failMsg
		f.failNext, f.failMsg = 0, ""
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
		return
	}

	writeJSON := func(v any) { _ = json.NewEncoder(w).Encode(v) }
	path, method := r.URL.Path, r.Method

	switch {
	case path == "/categories" && method == http.MethodGet:
		writeJSON(f.categories)
	case path == "/categories" && method == http.MethodPost:
		var p struct{ Name, Description string }
		_ = json.NewDecoder(r.Body).Decode(&p)
		c := model.Category{ID: f.id("c"), Name: p.Name, Description: p.Description}
		f.categories = append(f.categories, c)
		writeJSON(c)
	case strings.HasPrefix(path, "/categories/") && method == http.MethodPut:
		id := strings.TrimPrefix(path, "/categories/")
		var p struct{ Name, Description string }
		_ = json.NewDecoder(r.Body).Decode(&p)
		for i := range f.categories {
			if f.categories[i].ID == id {
				f.categories[i].Name = p.Name
				f.categories[i].Description = p.Description
				writeJSON(f.categories[i])
				return
			}
		}
		http.Error(w, `{"error":"category not found"}`, http.StatusNotFound)
	case strings.HasPrefix(path, "/categories/") && method == http.MethodDelete:
		id := strings.TrimPrefix(path, "/categories/")
		out := f.categories[:0]
		for _, c := range f.categories {
			if c.ID != id {
				out = append(out, c)
			}
		}
		f.categories = out
		w.WriteHeader(http.StatusNoContent)

	case path == "/menu-items" && method == http.MethodGet:
		writeJSON(f.menuItems)
	case path == "/menu-items" && method == http.MethodPost:
		_ = r.ParseMultipartForm(1 << 20)
		price, _ := model.ParsePrice(r.FormValue("price"))
		m := model.MenuItem{
			ID:          f.id("m"),
			Name:        r.FormValue("name"),
			Description: r.FormValue("description"),
			Price:       price,
			Category:    model.CategoryByID(r.FormValue("category")),
		}
		f.menuItems = append(f.menuItems, m)
		writeJSON(m)
	case strings.HasPrefix(path, "/menu-items/") && method == http.MethodDelete:
		id := strings.TrimPrefix(path, "/menu-items/")
		out := f.menuItems[:0]
		for _, m := range f.menuItems {
			if m.ID != id {
				out = append(out, m)
			}
		}
		f.menuItems = out
		w.WriteHeader(http.StatusNoContent)

	case path == "/ingredients" && method == http.MethodGet:
		writeJSON(f.ingredients)
	case path == "/ingredients" && method == http.MethodPost:
		_ = r.ParseMultipartForm(1 << 20)
		price, _ := model.ParsePrice(r.FormValue("price"))
		ing := model.Ingredient{ID: f.id("i"), Name: r.FormValue("name"), Price: price}
		f.ingredients = append(f.ingredients, ing)
		writeJSON(ing)
	case strings.HasPrefix(path, "/ingredients/") && method == http.MethodPost:
		id := strings.TrimPrefix(path, "/ingredients/")
		_ = r.ParseMultipartForm(1 << 20)
		price, _ := model.ParsePrice(r.FormValue("price"))
		for i := range f.ingredients {
			if f.ingredients[i].ID == id {
				f.ingredients[i].Name = r.FormValue("name")
				f.ingredients[i].Price = price
				writeJSON(f.ingredients[i])
				return
			}
		}
		http.Error(w, `{"error":"ingredient not found"}`, http.StatusNotFound)
	case strings.HasPrefix(path, "/ingredients/") && method == http.MethodDelete:
		id := strings.TrimPrefix(path, "/ingredients/")
		out := f.ingredients[:0]
		for _, ing := range f.ingredients {
			if ing.ID != id {
				out = append(out, ing)
			}
		}
		f.ingredients = out
		w.WriteHeader(http.StatusNoContent)

	case path == "/orders" && method == http.MethodGet:
		writeJSON(f.orders)
	case strings.HasPrefix(path, "/orders/") && method == http.MethodPut:
		id := strings.TrimPrefix(path, "/orders/")
		var p struct {
			Status model.OrderStatus `json:"status"`
		}
		_ = json.NewDecoder(r.Body).Decode(&p)
		for i := range f.orders {
			if f.orders[i].ID == id {
				f.orders[i].Status = p.Status
				writeJSON(f.orders[i])
				return
			}
		}
		http.Error(w, `{"error":"order not found"}`, http.StatusNotFound)

	default:
		http.Error(w, `{"error":"no such route"}`, http.StatusNotFound)
	}
}

// world is the wired-up client core against a fake backend.
type world struct {
	backend *fakeBackend
	store   *store.Store
	feed    *notify.Feed
	catalog *CatalogService
	orders  *OrderService
	gate    *Gate
}

func newWorld(t *testing.T) *world {
	t.Helper()
	backend := newFakeBackend()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client, err := api.New(srv.URL, session.New("test-token"))
	require.NoError(t, err)

	st := store.New()
	feed := notify.New()
	catalog := NewCatalog(client, st, feed)
	return &world{
		backend: backend,
		store:   st,
		feed:    feed,
		catalog: catalog,
		orders:  NewOrders(client, st, feed, catalog),
		gate:    NewGate(catalog),
	}
}

func strptr(s string) *string { return &s }

func (w *world) requireNotified(t *testing.T, sev notify.Severity) string {
	t.Helper()
	n := w.feed.Active()
	require.NotNil(t, n, "expected a notification")
	require.Equal(t, sev, n.Severity)
	return n.Message
}
