package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tavolaapp/tavola-admin/internal/model"
	"github.com/tavolaapp/tavola-admin/internal/notify"
)

// styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	tabStyle     = lipgloss.NewStyle().Faint(true)
	activeTab    = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

var tabLabels = map[appState]string{
	viewOverview:    "Overview",
	viewCategories:  "Categories",
	viewMenuItems:   "Menu Items",
	viewIngredients: "Ingredients",
	viewOrders:      "Orders",
}

func (a *App) View() string {
	var body string
	switch a.state {
	case viewCategories:
		body = a.renderCategories()
	case viewMenuItems:
		body = a.renderMenuItems()
	case viewIngredients:
		body = a.renderIngredients()
	case viewOrders:
		body = a.renderOrders()
	default:
		body = a.renderOverview()
	}

	out := a.renderTabs() + "\n" + body
	if a.modal != modalNone {
		out += "\n\n" + a.renderModal()
	}
	if line := a.renderSnackbar(); line != "" {
		out += "\n" + line
	}
	return out
}

func (a *App) renderTabs() string {
	var parts []string
	for _, s := range tabOrder {
		label := tabLabels[s]
		if s == a.state {
			parts = append(parts, activeTab.Render("["+label+"]"))
		} else {
			parts = append(parts, tabStyle.Render(" "+label+" "))
		}
	}
	line := strings.Join(parts, " ")
	if a.busy {
		line += "  …"
	}
	return line
}

func (a *App) renderSnackbar() string {
	n := a.feed.Active()
	if n == nil {
		return ""
	}
	if n.Severity == notify.SeverityError {
		return errorStyle.Render("✗ " + n.Message)
	}
	return successStyle.Render("✓ " + n.Message)
}

func (a *App) filterLine() string {
	if a.filtering {
		return fmt.Sprintf("\nFilter: %s█", a.filter)
	}
	if a.filter != "" {
		return fmt.Sprintf("\nFilter: %s (esc to clear)", a.filter)
	}
	return ""
}

func (a *App) renderOverview() string {
	title := titleStyle.Render("Tavola Admin")
	total, pending, completed := a.store.OrderCounts()
	body := fmt.Sprintf(
		"Categories: %d\nMenu items: %d\nIngredients: %d\nOrders: %d (%d pending, %d completed)",
		len(a.categories), len(a.menuItems), len(a.ingredients), total, pending, completed)
	body += "\n\n[tab] Switch tab  [R] Refresh  [ctrl+l] Log out  [q] Quit"
	return fmt.Sprintf("%s\n%s", title, body)
}

func (a *App) renderCategories() string {
	title := titleStyle.Render("Categories")
	out := title + "\n"
	cats := a.visibleCategories()
	if len(cats) == 0 {
		out += "  (none)\n"
	}
	for i, c := range cats {
		marker := " "
		if i == a.catCursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %-24s  %s\n", marker, c.Name, c.Description)
	}
	out += "[n] New  [enter] Edit  [d] Delete  [/] Filter  [R] Refresh  [q] Quit"
	out += a.filterLine()
	return out
}

func (a *App) renderMenuItems() string {
	title := titleStyle.Render("Menu Items")
	out := title + "\n"
	items := a.visibleMenuItems()
	if len(items) == 0 {
		out += "  (none)\n"
	}
	for i, m := range items {
		marker := " "
		if i == a.itemCursor {
			marker = "▶"
		}
		category := m.Category.Label()
		if m.Category.IsZero() {
			category = "-"
		} else if m.Category.Embedded() == nil {
			category = a.store.CategoryName(m.Category.ID())
		}
		availability := ""
		if m.IsAvailable != nil && !*m.IsAvailable {
			availability = "  (unavailable)"
		}
		out += fmt.Sprintf("%s %-28s  %8s  %s%s\n", marker, m.Name, model.FormatPrice(m.Price), category, availability)
	}
	out += "[n] New  [enter] Edit  [d] Delete  [/] Filter  [R] Refresh  [q] Quit"
	out += a.filterLine()
	return out
}

func (a *App) renderIngredients() string {
	title := titleStyle.Render("Ingredients")
	out := title + "\n"
	ings := a.visibleIngredients()
	if len(ings) == 0 {
		out += "  (none)\n"
	}
	for i, ing := range ings {
		marker := " "
		if i == a.ingCursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %-28s  %8s\n", marker, ing.Name, model.FormatPrice(ing.Price))
	}
	out += "[n] New  [enter] Edit  [d] Delete  [/] Filter  [R] Refresh  [q] Quit"
	out += a.filterLine()
	return out
}

func (a *App) renderOrders() string {
	title := titleStyle.Render("Orders")
	out := title + "\n"
	if len(a.orders) == 0 {
		out += "  (none)\n"
	}
	for i, o := range a.orders {
		marker := " "
		if i == a.orderCursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %-20s  %-9s  %8.2f  %s\n",
			marker, o.CustomerName(), o.Status, o.Total,
			o.CreatedAt.Format("02 Jan 15:04"))
	}
	out += a.renderOrderActions()
	out += "\n[R] Refresh  [q] Quit"
	return out
}

// renderOrderActions lists only the moves open to the selected order.
func (a *App) renderOrderActions() string {
	if len(a.orders) == 0 {
		return ""
	}
	o := a.orders[a.orderCursor]
	var parts []string
	for _, next := range model.OrderTransitions(o.Status) {
		switch next {
		case model.StatusAccepted:
			parts = append(parts, "[a] Accept")
		case model.StatusCompleted:
			parts = append(parts, "[c] Complete")
		case model.StatusRejected:
			parts = append(parts, "[x] Reject")
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Order is %s, nothing left to do.", o.Status)
	}
	return strings.Join(parts, "  ")
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalConfirmDelete:
		req := a.services.Gate.Pending()
		if req == nil {
			return ""
		}
		return titleStyle.Render(fmt.Sprintf("Delete %s %q?", req.Kind.Label(), req.Label)) +
			"\nThis cannot be undone.\n[y] Yes  [n] No"

	case modalCategoryPicker:
		out := titleStyle.Render("Select Category") + "\n"
		options := []string{"[none]"}
		for _, c := range a.categories {
			options = append(options, c.Name)
		}
		for i, opt := range options {
			marker := " "
			if i == a.pickerCursor {
				marker = "▶"
			}
			out += fmt.Sprintf("%s %s\n", marker, opt)
		}
		out += "[enter] Select  [esc] Back"
		return out

	case modalEditor:
		heading := "New " + a.draft.Kind.Label()
		if !a.draft.IsNew() {
			heading = "Edit " + a.draft.Kind.Label()
		}
		out := titleStyle.Render(heading) + "\n"
		for i, f := range a.editorFields() {
			marker := " "
			if i == a.fieldCursor {
				marker = "▶"
			}
			value := ""
			if f.value != nil {
				value = *f.value
				if i == a.fieldCursor {
					value += "█"
				}
			} else {
				value = a.store.CategoryName(a.draft.CategoryID)
				if a.draft.CategoryID == "" {
					value = "[none]"
				}
				value += "  (enter to change)"
			}
			out += fmt.Sprintf("%s %-12s %s\n", marker, f.label+":", value)
		}
		if a.draft.Kind != model.KindCategory && a.draft.Attachment == nil && a.attachPath == "" && a.draft.ImageURL != "" {
			out += fmt.Sprintf("  current image: %s\n", a.draft.ImageURL)
		}
		footer := "[enter] Save  [tab] Next field  [esc] Cancel"
		if a.draft.Kind != model.KindCategory {
			footer = "[enter] Save  [tab] Next field  [ctrl+x] Clear image  [esc] Cancel"
		}
		out += footer
		return out
	}
	return ""
}
