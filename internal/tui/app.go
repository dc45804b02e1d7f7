package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tavolaapp/tavola-admin/internal/draft"
	"github.com/tavolaapp/tavola-admin/internal/model"
	"github.com/tavolaapp/tavola-admin/internal/notify"
	"github.com/tavolaapp/tavola-admin/internal/service"
	"github.com/tavolaapp/tavola-admin/internal/session"
	"github.com/tavolaapp/tavola-admin/internal/store"
)

// App ties together views over the synchronized collections.
type App struct {
	ctx      context.Context
	services Services
	store    *store.Store
	feed     *notify.Feed
	keys     keyMap

	state       appState
	categories  []model.Category
	menuItems   []model.MenuItem
	ingredients []model.Ingredient
	orders      []model.Order

	catCursor    int
	itemCursor   int
	ingCursor    int
	orderCursor  int
	pickerCursor int
	fieldCursor  int

	modal      modalState
	draft      *draft.Draft
	attachPath string
	filter     string
	filtering  bool
	busy       bool

	// generation stamps in-flight commands; completions carrying an older
	// stamp are discarded so a superseded refresh cannot clobber the view.
	generation uint64
}

type Services struct {
	Catalog *service.CatalogService
	Orders  *service.OrderService
	Gate    *service.Gate
	Session *session.Session
}

type appState string

const (
	viewOverview    appState = "overview"
	viewCategories  appState = "categories"
	viewMenuItems   appState = "menuItems"
	viewIngredients appState = "ingredients"
	viewOrders      appState = "orders"
)

var tabOrder = []appState{viewOverview, viewCategories, viewMenuItems, viewIngredients, viewOrders}

type modalState string

const (
	modalNone           modalState = ""
	modalEditor         modalState = "editor"
	modalCategoryPicker modalState = "categoryPicker"
	modalConfirmDelete  modalState = "confirmDelete"
)

type keyMap struct {
	Quit     key.Binding
	Tab      key.Binding
	PrevTab  key.Binding
	Up       key.Binding
	Down     key.Binding
	New      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Refresh  key.Binding
	Filter   key.Binding
	Accept   key.Binding
	Complete key.Binding
	Reject   key.Binding
	Dismiss  key.Binding
	Logout   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Edit:     key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit")),
		Delete:   key.NewBinding(key.WithKeys("d", "backspace"), key.WithHelp("d", "delete")),
		Refresh:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),
		Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Accept:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "accept")),
		Complete: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete")),
		Reject:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reject")),
		Dismiss:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
		Logout:   key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "log out")),
	}
}

func New(ctx context.Context, services Services, st *store.Store, feed *notify.Feed) *App {
	return &App{
		ctx:      ctx,
		services: services,
		store:    st,
		feed:     feed,
		keys:     defaultKeyMap(),
		state:    viewOverview,
	}
}

func (a *App) Init() tea.Cmd {
	a.busy = true
	return a.refreshCmd()
}

// nextGen stamps a freshly issued command and invalidates everything
// still in flight.
func (a *App) nextGen() uint64 {
	a.generation++
	return a.generation
}

// commands

func (a *App) refreshCmd() tea.Cmd {
	gen := a.nextGen()
	return func() tea.Msg {
		_ = a.services.Catalog.RefreshAll(a.ctx)
		return syncedMsg{gen}
	}
}

func (a *App) saveDraftCmd() tea.Cmd {
	d := a.draft
	path := strings.TrimSpace(a.attachPath)
	gen := a.nextGen()
	return func() tea.Msg {
		if path != "" {
			content, err := os.ReadFile(path)
			if err != nil {
				a.feed.Error("Cannot read " + filepath.Base(path))
				return savedMsg{gen: gen, draft: d, attachPath: path, err: err}
			}
			d.Attach(path, content)
		}
		err := a.services.Catalog.Save(a.ctx, d)
		return savedMsg{gen: gen, draft: d, attachPath: path, err: err}
	}
}

func (a *App) confirmDeleteCmd() tea.Cmd {
	gen := a.nextGen()
	return func() tea.Msg {
		_ = a.services.Gate.Confirm(a.ctx)
		return syncedMsg{gen}
	}
}

func (a *App) transitionCmd(orderID string, target model.OrderStatus) tea.Cmd {
	gen := a.nextGen()
	return func() tea.Msg {
		_ = a.services.Orders.Transition(a.ctx, orderID, target)
		return syncedMsg{gen}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		if a.filtering {
			return a.handleFilterKey(m)
		}
		return a.handleKey(m)

	case syncedMsg:
		if m.gen != a.generation {
			return a, nil // superseded, a newer command owns the view
		}
		a.syncFromStore()
		a.busy = false
		return a, a.snackbarExpiry()

	case savedMsg:
		if m.gen != a.generation {
			return a, nil
		}
		a.syncFromStore()
		a.busy = false
		if m.err != nil {
			// The commit failed; reopen the editor with the entered
			// data so the user can correct and retry.
			a.draft = m.draft
			a.attachPath = m.attachPath
			a.fieldCursor = 0
			a.modal = modalEditor
		} else {
			a.draft = nil
		}
		return a, a.snackbarExpiry()

	case snackbarExpiredMsg:
		a.feed.Expire(m.seq)
		return a, nil
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.Logout):
		if a.services.Session != nil {
			a.services.Session.Clear()
		}
		return a, tea.Quit
	case key.Matches(m, a.keys.Dismiss):
		a.feed.Dismiss()
		if a.filter != "" {
			a.filter = ""
			a.clampCursors()
		}
	case key.Matches(m, a.keys.Tab):
		a.switchTab(1)
	case key.Matches(m, a.keys.PrevTab):
		a.switchTab(-1)
	case key.Matches(m, a.keys.Refresh):
		a.busy = true
		return a, a.refreshCmd()
	case key.Matches(m, a.keys.Up):
		a.moveCursor(-1)
	case key.Matches(m, a.keys.Down):
		a.moveCursor(1)
	case key.Matches(m, a.keys.Filter):
		if a.state != viewOverview && a.state != viewOrders {
			a.filtering = true
		}
	case key.Matches(m, a.keys.New):
		switch a.state {
		case viewCategories:
			a.openEditor(draft.New(model.KindCategory))
		case viewMenuItems:
			a.openEditor(draft.New(model.KindMenuItem))
		case viewIngredients:
			a.openEditor(draft.New(model.KindIngredient))
		}
	case key.Matches(m, a.keys.Edit):
		a.openEditorForSelection()
	case key.Matches(m, a.keys.Delete):
		a.requestDeleteForSelection()
	case key.Matches(m, a.keys.Accept):
		return a.orderAction(model.StatusAccepted)
	case key.Matches(m, a.keys.Complete):
		return a.orderAction(model.StatusCompleted)
	case key.Matches(m, a.keys.Reject):
		return a.orderAction(model.StatusRejected)
	}
	return a, nil
}

func (a *App) handleFilterKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.filtering = false
		a.filter = ""
		a.moveCursor(0)
	case tea.KeyEnter:
		a.filtering = false
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(a.filter) > 0 {
			a.filter = a.filter[:len(a.filter)-1]
		}
	case tea.KeySpace:
		a.filter += " "
	case tea.KeyRunes:
		a.filter += string(m.Runes)
	}
	a.moveCursor(0)
	return a, nil
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalConfirmDelete:
		switch m.String() {
		case "y", "Y", "enter":
			a.modal = modalNone
			a.busy = true
			return a, a.confirmDeleteCmd()
		case "n", "N", "esc":
			a.services.Gate.Cancel()
			a.modal = modalNone
		}

	case modalCategoryPicker:
		switch m.String() {
		case "esc":
			a.modal = modalEditor
		case "up", "k":
			if a.pickerCursor > 0 {
				a.pickerCursor--
			}
		case "down", "j":
			if a.pickerCursor < len(a.categories) { // +1 for [none]
				a.pickerCursor++
			}
		case "enter":
			if a.pickerCursor == 0 {
				a.draft.CategoryID = ""
			} else if idx := a.pickerCursor - 1; idx < len(a.categories) {
				a.draft.CategoryID = a.categories[idx].ID
			}
			a.modal = modalEditor
		}

	case modalEditor:
		fields := a.editorFields()
		switch m.Type {
		case tea.KeyEsc:
			a.closeEditor()
		case tea.KeyTab, tea.KeyDown:
			if a.fieldCursor < len(fields)-1 {
				a.fieldCursor++
			}
		case tea.KeyShiftTab, tea.KeyUp:
			if a.fieldCursor > 0 {
				a.fieldCursor--
			}
		case tea.KeyEnter:
			if fields[a.fieldCursor].value == nil {
				a.pickerCursor = 0
				a.modal = modalCategoryPicker
				return a, nil
			}
			cmd := a.saveDraftCmd()
			a.closeEditorKeepDraft()
			a.busy = true
			return a, cmd
		case tea.KeyBackspace, tea.KeyCtrlH:
			f := fields[a.fieldCursor]
			if f.value != nil && len(*f.value) > 0 {
				*f.value = (*f.value)[:len(*f.value)-1]
			}
		case tea.KeyCtrlX:
			if f := fields[a.fieldCursor]; f.value == &a.attachPath {
				a.attachPath = ""
				a.draft.ClearAttachment()
			}
		case tea.KeySpace:
			if f := fields[a.fieldCursor]; f.value != nil {
				*f.value += " "
			}
		case tea.KeyRunes:
			if f := fields[a.fieldCursor]; f.value != nil {
				*f.value += string(m.Runes)
			}
		}
	}
	return a, nil
}

// orderAction dispatches a workflow key on the selected order. Keys for
// moves the workflow forbids still reach the engine, which refuses them
// without a network call and posts the reason.
func (a *App) orderAction(target model.OrderStatus) (tea.Model, tea.Cmd) {
	if a.state != viewOrders || len(a.orders) == 0 {
		return a, nil
	}
	o := a.orders[a.orderCursor]
	a.busy = true
	return a, a.transitionCmd(o.ID, target)
}

func (a *App) switchTab(dir int) {
	for i, s := range tabOrder {
		if s == a.state {
			a.state = tabOrder[(i+dir+len(tabOrder))%len(tabOrder)]
			break
		}
	}
	a.filter = ""
	a.filtering = false
}

func (a *App) moveCursor(delta int) {
	switch a.state {
	case viewCategories:
		a.catCursor += delta
	case viewMenuItems:
		a.itemCursor += delta
	case viewIngredients:
		a.ingCursor += delta
	case viewOrders:
		a.orderCursor += delta
	}
	a.clampCursors()
}

// clampCursors bounds every view's cursor, not just the active one: a
// refresh can shrink a collection behind a tab the user has left, and its
// cursor must not survive pointing past the new end.
func (a *App) clampCursors() {
	clamp := func(cur *int, n int) {
		if *cur >= n {
			*cur = n - 1
		}
		if *cur < 0 {
			*cur = 0
		}
	}
	clamp(&a.catCursor, len(a.visibleCategories()))
	clamp(&a.itemCursor, len(a.visibleMenuItems()))
	clamp(&a.ingCursor, len(a.visibleIngredients()))
	clamp(&a.orderCursor, len(a.orders))
}

func (a *App) openEditor(d *draft.Draft) {
	a.draft = d
	a.attachPath = ""
	a.fieldCursor = 0
	a.modal = modalEditor
}

func (a *App) openEditorForSelection() {
	switch a.state {
	case viewCategories:
		if cats := a.visibleCategories(); len(cats) > 0 {
			a.openEditor(draft.FromCategory(cats[a.catCursor]))
		}
	case viewMenuItems:
		if items := a.visibleMenuItems(); len(items) > 0 {
			a.openEditor(draft.FromMenuItem(items[a.itemCursor]))
		}
	case viewIngredients:
		if ings := a.visibleIngredients(); len(ings) > 0 {
			a.openEditor(draft.FromIngredient(ings[a.ingCursor]))
		}
	}
}

func (a *App) requestDeleteForSelection() {
	switch a.state {
	case viewCategories:
		if cats := a.visibleCategories(); len(cats) > 0 {
			c := cats[a.catCursor]
			a.services.Gate.RequestDelete(model.KindCategory, c.ID, c.Name)
			a.modal = modalConfirmDelete
		}
	case viewMenuItems:
		if items := a.visibleMenuItems(); len(items) > 0 {
			m := items[a.itemCursor]
			a.services.Gate.RequestDelete(model.KindMenuItem, m.ID, m.Name)
			a.modal = modalConfirmDelete
		}
	case viewIngredients:
		if ings := a.visibleIngredients(); len(ings) > 0 {
			i := ings[a.ingCursor]
			a.services.Gate.RequestDelete(model.KindIngredient, i.ID, i.Name)
			a.modal = modalConfirmDelete
		}
	}
}

func (a *App) closeEditor() {
	a.draft = nil
	a.attachPath = ""
	a.modal = modalNone
}

// closeEditorKeepDraft leaves the draft for the in-flight save command.
func (a *App) closeEditorKeepDraft() {
	a.attachPath = ""
	a.modal = modalNone
}

func (a *App) syncFromStore() {
	a.categories = a.store.Categories()
	a.menuItems = a.store.MenuItems()
	a.ingredients = a.store.Ingredients()
	a.orders = a.store.Orders()
	a.clampCursors()
}

// snackbarExpiry schedules the auto-hide tick for the current notification.
// The sequence stamp keeps an old tick from dismissing a newer message.
func (a *App) snackbarExpiry() tea.Cmd {
	n := a.feed.Active()
	if n == nil {
		return nil
	}
	seq := n.Seq
	return tea.Tick(a.feed.TTL(), func(time.Time) tea.Msg {
		return snackbarExpiredMsg{seq}
	})
}

// visible rows under the current filter

func (a *App) visibleCategories() []model.Category {
	names := make([]string, len(a.categories))
	for i, c := range a.categories {
		names[i] = c.Name
	}
	out := make([]model.Category, 0, len(a.categories))
	for _, idx := range rankNames(names, a.filter) {
		out = append(out, a.categories[idx])
	}
	return out
}

func (a *App) visibleMenuItems() []model.MenuItem {
	names := make([]string, len(a.menuItems))
	for i, m := range a.menuItems {
		names[i] = m.Name
	}
	out := make([]model.MenuItem, 0, len(a.menuItems))
	for _, idx := range rankNames(names, a.filter) {
		out = append(out, a.menuItems[idx])
	}
	return out
}

func (a *App) visibleIngredients() []model.Ingredient {
	names := make([]string, len(a.ingredients))
	for i, ing := range a.ingredients {
		names[i] = ing.Name
	}
	out := make([]model.Ingredient, 0, len(a.ingredients))
	for _, idx := range rankNames(names, a.filter) {
		out = append(out, a.ingredients[idx])
	}
	return out
}

// messages

type syncedMsg struct{ gen uint64 }

// savedMsg reports a draft commit. It carries the draft so a failed save
// can put the editor back exactly as the user left it.
type savedMsg struct {
	gen        uint64
	draft      *draft.Draft
	attachPath string
	err        error
}

type snackbarExpiredMsg struct{ seq uint64 }

// editorFields lists the editable rows for the open draft. A nil value
// marks the category picker row.
type fieldRef struct {
	label string
	value *string
}

func (a *App) editorFields() []fieldRef {
	d := a.draft
	switch d.Kind {
	case model.KindCategory:
		return []fieldRef{
			{"Name", &d.Name},
			{"Description", &d.Description},
		}
	case model.KindMenuItem:
		return []fieldRef{
			{"Name", &d.Name},
			{"Description", &d.Description},
			{"Price", &d.PriceInput},
			{"Category", nil},
			{"Image file", &a.attachPath},
		}
	case model.KindIngredient:
		return []fieldRef{
			{"Name", &d.Name},
			{"Price", &d.PriceInput},
			{"Picture file", &a.attachPath},
		}
	}
	return nil
}
