package model

import "time"

// Kind identifies one of the managed resource collections.
type Kind string

const (
	KindCategory   Kind = "category"
	KindMenuItem   Kind = "menuItem"
	KindIngredient Kind = "ingredient"
	KindOrder      Kind = "order"
)

// Label returns the human-readable name used in notifications and dialogs.
func (k Kind) Label() string {
	switch k {
	case KindMenuItem:
		return "menu item"
	default:
		return string(k)
	}
}

// Category groups menu items.
type Category struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MenuItem is a sellable dish. Category may come back from the API as a
// bare id or an embedded object; see CategoryRef.
type MenuItem struct {
	ID          string      `json:"_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	Image       string      `json:"image,omitempty"`
	Category    CategoryRef `json:"category"`
	IsAvailable *bool       `json:"isAvailable,omitempty"`
}

// Ingredient is a stock item with an optional picture.
type Ingredient struct {
	ID      string  `json:"_id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Picture string  `json:"picture,omitempty"`
}

// Customer is the ordering user embedded in an order. Read-only here.
type Customer struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Order is a customer order progressing through the fulfilment workflow.
type Order struct {
	ID        string      `json:"_id"`
	Status    OrderStatus `json:"status"`
	Total     float64     `json:"total"`
	User      Customer    `json:"user"`
	CreatedAt time.Time   `json:"createdAt"`
}

// CustomerName returns the ordering user's name, with a placeholder for
// orders whose user record is gone.
func (o Order) CustomerName() string {
	if o.User.Name == "" {
		return "N/A"
	}
	return o.User.Name
}
