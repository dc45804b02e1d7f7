package mockserver

import (
	"context"
	"fmt"
	"time"

	"github.com/tavolaapp/tavola-admin/internal/model"
)

// Seed populates an empty database with an admin account and a small menu so
// a freshly started server has something to show. Running it twice is a no-op.
func (s *Storage) Seed(ctx context.Context) error {
	if _, err := s.UserByEmail(ctx, "admin@tavola.local"); err == nil {
		return nil
	}

	admin := User{ID: newID(), Name: "Admin", Email: "admin@tavola.local", Password: "admin", Role: "admin"}
	if err := s.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	customer := User{ID: newID(), Name: "Mario Rossi", Email: "mario@example.com", Password: "secret", Role: "user"}
	if err := s.CreateUser(ctx, customer); err != nil {
		return fmt.Errorf("seed customer: %w", err)
	}

	categories := []model.Category{
		{ID: newID(), Name: "Pizze", Description: "Wood-fired classics"},
		{ID: newID(), Name: "Antipasti", Description: "Starters and sides"},
		{ID: newID(), Name: "Dolci", Description: "Desserts"},
	}
	for _, c := range categories {
		if err := s.CreateCategory(ctx, c); err != nil {
			return fmt.Errorf("seed category: %w", err)
		}
	}

	items := []model.MenuItem{
		{ID: newID(), Name: "Margherita", Description: "Tomato, mozzarella, basil", Price: 9.5, Category: model.CategoryByID(categories[0].ID)},
		{ID: newID(), Name: "Diavola", Description: "Spicy salami", Price: 11, Category: model.CategoryByID(categories[0].ID)},
		{ID: newID(), Name: "Bruschetta", Description: "Grilled bread, tomato", Price: 5, Category: model.CategoryByID(categories[1].ID)},
		{ID: newID(), Name: "Tiramisu", Description: "", Price: 6.5, Category: model.CategoryByID(categories[2].ID)},
	}
	for _, m := range items {
		if err := s.CreateMenuItem(ctx, m); err != nil {
			return fmt.Errorf("seed menu item: %w", err)
		}
	}

	ingredients := []model.Ingredient{
		{ID: newID(), Name: "Mozzarella", Price: 1.5},
		{ID: newID(), Name: "Basil", Price: 0.5},
		{ID: newID(), Name: "Salami", Price: 2},
	}
	for _, i := range ingredients {
		if err := s.CreateIngredient(ctx, i); err != nil {
			return fmt.Errorf("seed ingredient: %w", err)
		}
	}

	orders := []model.Order{
		{ID: newID(), Status: model.StatusPending, Total: 21.5, User: model.Customer{ID: customer.ID}, CreatedAt: now().Add(-10 * time.Minute)},
		{ID: newID(), Status: model.StatusAccepted, Total: 9.5, User: model.Customer{ID: customer.ID}, CreatedAt: now().Add(-time.Hour)},
		{ID: newID(), Status: model.StatusCompleted, Total: 16, User: model.Customer{ID: customer.ID}, CreatedAt: now().Add(-24 * time.Hour)},
	}
	for _, o := range orders {
		if err := s.CreateOrder(ctx, o); err != nil {
			return fmt.Errorf("seed order: %w", err)
		}
	}
	return nil
}
