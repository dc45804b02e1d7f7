package mockserver

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tavolaapp/tavola-admin/internal/model"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// Storage is the sqlite persistence layer behind the development server.
type Storage struct {
	db *sql.DB
}

// OpenStorage opens sqlite with sensible defaults and applies all up
// migrations from the embedded set.
func OpenStorage(path string) (*Storage, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Storage{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return err
	}
	err = m.Up()
	if err == migrate.ErrNoChange {
		return nil
	}
	return err
}

// Close releases the underlying database handle.
func (s *Storage) Close() error {
	return s.db.Close()
}

// now returns UTC time truncated to seconds (consistent with SQLite default).
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// User is an account row. Only admins can log in to this server.
type User struct {
	ID       string
	Name     string
	Email    string
	Password string
	Role     string
}

func (s *Storage) CreateUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password, role) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.Password, u.Role)
	return err
}

func (s *Storage) UserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password, role FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role)
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	return u, err
}

func (s *Storage) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description FROM categories ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Storage) CategoryByID(ctx context.Context, id string) (model.Category, error) {
	var c model.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Description)
	if err == sql.ErrNoRows {
		return model.Category{}, ErrNotFound
	}
	return c, err
}

func (s *Storage) CreateCategory(ctx context.Context, c model.Category) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, description) VALUES (?, ?, ?)`,
		c.ID, c.Name, c.Description)
	return err
}

func (s *Storage) UpdateCategory(ctx context.Context, c model.Category) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, description = ? WHERE id = ?`,
		c.Name, c.Description, c.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Storage) DeleteCategory(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	return err
}

// ListMenuItems returns items with their category embedded when the
// referenced row still exists, mirroring the platform's populated responses.
func (s *Storage) ListMenuItems(ctx context.Context) ([]model.MenuItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.name, m.description, m.price, m.image, m.is_available,
		       m.category_id, c.name, c.description
		FROM menu_items m
		LEFT JOIN categories c ON c.id = m.category_id
		ORDER BY m.rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.MenuItem{}
	for rows.Next() {
		var (
			m                        model.MenuItem
			avail                    bool
			catID, catName, catDescr sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.Image,
			&avail, &catID, &catName, &catDescr); err != nil {
			return nil, err
		}
		m.IsAvailable = &avail
		switch {
		case catName.Valid:
			m.Category = model.CategoryEmbedded(model.Category{
				ID: catID.String, Name: catName.String, Description: catDescr.String,
			})
		case catID.Valid:
			m.Category = model.CategoryByID(catID.String)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Storage) MenuItemByID(ctx context.Context, id string) (model.MenuItem, error) {
	items, err := s.ListMenuItems(ctx)
	if err != nil {
		return model.MenuItem{}, err
	}
	for _, m := range items {
		if m.ID == id {
			return m, nil
		}
	}
	return model.MenuItem{}, ErrNotFound
}

func (s *Storage) CreateMenuItem(ctx context.Context, m model.MenuItem) error {
	avail := m.IsAvailable == nil || *m.IsAvailable
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO menu_items (id, name, description, price, image, category_id, is_available)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Description, m.Price, m.Image, nullable(m.Category.ID()), avail)
	return err
}

func (s *Storage) UpdateMenuItem(ctx context.Context, m model.MenuItem) error {
	avail := m.IsAvailable == nil || *m.IsAvailable
	res, err := s.db.ExecContext(ctx, `
		UPDATE menu_items SET name = ?, description = ?, price = ?, image = ?,
		       category_id = ?, is_available = ?
		WHERE id = ?`,
		m.Name, m.Description, m.Price, m.Image, nullable(m.Category.ID()), avail, m.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Storage) DeleteMenuItem(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	return err
}

func (s *Storage) ListIngredients(ctx context.Context) ([]model.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, price, picture FROM ingredients ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Ingredient{}
	for rows.Next() {
		var i model.Ingredient
		if err := rows.Scan(&i.ID, &i.Name, &i.Price, &i.Picture); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *Storage) CreateIngredient(ctx context.Context, i model.Ingredient) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingredients (id, name, price, picture) VALUES (?, ?, ?, ?)`,
		i.ID, i.Name, i.Price, i.Picture)
	return err
}

func (s *Storage) UpdateIngredient(ctx context.Context, i model.Ingredient) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE ingredients SET name = ?, price = ?, picture = ? WHERE id = ?`,
		i.Name, i.Price, i.Picture, i.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Storage) DeleteIngredient(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM ingredients WHERE id = ?`, id)
	return err
}

func (s *Storage) ListOrders(ctx context.Context) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.status, o.total, o.created_at, o.user_id, u.name, u.email
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC, o.rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Order{}
	for rows.Next() {
		var (
			o                  model.Order
			created            string
			uid, uname, uemail sql.NullString
		)
		if err := rows.Scan(&o.ID, &o.Status, &o.Total, &created, &uid, &uname, &uemail); err != nil {
			return nil, err
		}
		o.CreatedAt, _ = time.Parse(time.RFC3339, created)
		o.User = model.Customer{ID: uid.String, Name: uname.String, Email: uemail.String}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Storage) OrderByID(ctx context.Context, id string) (model.Order, error) {
	orders, err := s.ListOrders(ctx)
	if err != nil {
		return model.Order{}, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return model.Order{}, ErrNotFound
}

func (s *Storage) CreateOrder(ctx context.Context, o model.Order) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (id, status, total, user_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		o.ID, o.Status, o.Total, nullable(o.User.ID), o.CreatedAt.Format(time.RFC3339))
	return err
}

func (s *Storage) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
