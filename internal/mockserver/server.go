// Package mockserver is a self-contained development stand-in for the Tavola
// platform API. It speaks the same routes and payload shapes the admin client
// expects, including the backend's POST-to-update quirk for ingredients, so
// the TUI can be exercised without the real platform.
package mockserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/oklog/ulid/v2"

	"github.com/tavolaapp/tavola-admin/internal/model"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 30 * time.Second

	maxBodySize = 1 << 20  // JSON bodies
	maxFormSize = 10 << 20 // multipart bodies, image included
)

// Server wraps the chi router and its dependencies.
type Server struct {
	router     *chi.Mux
	storage    *Storage
	logger     *slog.Logger
	addr       string
	uploadsDir string
	tokens     *tokenSet
}

// NewServer creates and configures the development server.
func NewServer(addr string, storage *Storage, uploadsDir string, logger *slog.Logger) *Server {
	srv := &Server{
		router:     chi.NewRouter(),
		storage:    storage,
		logger:     logger,
		addr:       addr,
		uploadsDir: uploadsDir,
		tokens:     newTokenSet(),
	}

	srv.router.Use(middleware.RequestID)
	srv.router.Use(middleware.Recoverer)
	srv.router.Use(srv.loggingMiddleware)
	srv.router.Use(metricsMiddleware)
	srv.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	srv.routes()

	return srv
}

func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", metricsHandler())
	s.router.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(s.uploadsDir))))

	s.router.Post("/auth/login", s.handleLogin)
	s.router.Post("/auth/register", s.handleRegister)

	s.router.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Put("/{id}", s.handleUpdateCategory)
			r.Delete("/{id}", s.handleDeleteCategory)
		})

		r.Route("/menu-items", func(r chi.Router) {
			r.Get("/", s.handleListMenuItems)
			r.Post("/", s.handleCreateMenuItem)
			r.Put("/{id}", s.handleUpdateMenuItem)
			r.Delete("/{id}", s.handleDeleteMenuItem)
		})

		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", s.handleListIngredients)
			r.Post("/", s.handleCreateIngredient)
			// Updates arrive as POST with the id in the path. The real
			// platform works this way and the client depends on it.
			r.Post("/{id}", s.handleUpdateIngredient)
			r.Delete("/{id}", s.handleDeleteIngredient)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", s.handleListOrders)
			r.Post("/", s.handleCreateOrder)
			r.Put("/{id}", s.handleUpdateOrderStatus)
		})
	})
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
func (s *Server) Run() error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// loggingMiddleware logs each request using the structured logger.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.storage.ListCategories(r.Context())
	if err != nil {
		s.internalError(w, "list categories", err)
		return
	}
	s.writeJSON(w, http.StatusOK, cats)
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	c := model.Category{ID: newID(), Name: req.Name, Description: req.Description}
	if err := s.storage.CreateCategory(r.Context(), c); err != nil {
		s.internalError(w, "create category", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	c := model.Category{ID: chi.URLParam(r, "id"), Name: req.Name, Description: req.Description}
	err := s.storage.UpdateCategory(r.Context(), c)
	if errors.Is(err, ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "category not found")
		return
	}
	if err != nil {
		s.internalError(w, "update category", err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.internalError(w, "delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMenuItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.storage.ListMenuItems(r.Context())
	if err != nil {
		s.internalError(w, "list menu items", err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

// menuItemFromForm reads the multipart fields the admin client sends for
// menu items. The image part is optional; when present it is written to the
// uploads dir and its serving path stored.
func (s *Server) menuItemFromForm(r *http.Request) (model.MenuItem, error) {
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		return model.MenuItem{}, fmt.Errorf("expected multipart form: %w", err)
	}

	price, err := model.ParsePrice(r.FormValue("price"))
	if err != nil {
		return model.MenuItem{}, fmt.Errorf("invalid price %q", r.FormValue("price"))
	}

	m := model.MenuItem{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       price,
		Category:    model.CategoryByID(r.FormValue("category")),
	}
	if m.Name == "" {
		return model.MenuItem{}, errors.New("name is required")
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		m.Image, err = s.saveUpload(file, header)
		if err != nil {
			return model.MenuItem{}, err
		}
	}
	return m, nil
}

func (s *Server) handleCreateMenuItem(w http.ResponseWriter, r *http.Request) {
	m, err := s.menuItemFromForm(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m.ID = newID()
	if err := s.storage.CreateMenuItem(r.Context(), m); err != nil {
		s.internalError(w, "create menu item", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleUpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	m, err := s.menuItemFromForm(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m.ID = chi.URLParam(r, "id")
	if m.Image == "" {
		// keep the stored image when the form carries none
		if prev, err := s.storage.MenuItemByID(r.Context(), m.ID); err == nil {
			m.Image = prev.Image
		}
	}

	err = s.storage.UpdateMenuItem(r.Context(), m)
	if errors.Is(err, ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "menu item not found")
		return
	}
	if err != nil {
		s.internalError(w, "update menu item", err)
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteMenuItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.internalError(w, "delete menu item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListIngredients(w http.ResponseWriter, r *http.Request) {
	ings, err := s.storage.ListIngredients(r.Context())
	if err != nil {
		s.internalError(w, "list ingredients", err)
		return
	}
	s.writeJSON(w, http.StatusOK, ings)
}

func (s *Server) ingredientFromForm(r *http.Request) (model.Ingredient, error) {
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		return model.Ingredient{}, fmt.Errorf("expected multipart form: %w", err)
	}

	price, err := model.ParsePrice(r.FormValue("price"))
	if err != nil {
		return model.Ingredient{}, fmt.Errorf("invalid price %q", r.FormValue("price"))
	}

	i := model.Ingredient{Name: r.FormValue("name"), Price: price}
	if i.Name == "" {
		return model.Ingredient{}, errors.New("name is required")
	}

	if file, header, err := r.FormFile("picture"); err == nil {
		defer file.Close()
		i.Picture, err = s.saveUpload(file, header)
		if err != nil {
			return model.Ingredient{}, err
		}
	}
	return i, nil
}

func (s *Server) handleCreateIngredient(w http.ResponseWriter, r *http.Request) {
	i, err := s.ingredientFromForm(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	i.ID = newID()
	if err := s.storage.CreateIngredient(r.Context(), i); err != nil {
		s.internalError(w, "create ingredient", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, i)
}

func (s *Server) handleUpdateIngredient(w http.ResponseWriter, r *http.Request) {
	i, err := s.ingredientFromForm(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	i.ID = chi.URLParam(r, "id")

	err = s.storage.UpdateIngredient(r.Context(), i)
	if errors.Is(err, ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "ingredient not found")
		return
	}
	if err != nil {
		s.internalError(w, "update ingredient", err)
		return
	}
	s.writeJSON(w, http.StatusOK, i)
}

func (s *Server) handleDeleteIngredient(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteIngredient(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.internalError(w, "delete ingredient", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.storage.ListOrders(r.Context())
	if err != nil {
		s.internalError(w, "list orders", err)
		return
	}
	s.writeJSON(w, http.StatusOK, orders)
}

type createOrderRequest struct {
	Total float64 `json:"total"`
	User  string  `json:"user"`
}

// handleCreateOrder exists so dev setups can inject orders; on the real
// platform orders come from the customer app.
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	o := model.Order{
		ID:        newID(),
		Status:    model.StatusPending,
		Total:     req.Total,
		User:      model.Customer{ID: req.User},
		CreatedAt: now(),
	}
	if err := s.storage.CreateOrder(r.Context(), o); err != nil {
		s.internalError(w, "create order", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, o)
}

type orderStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req orderStatusRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !req.Status.Known() {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", req.Status))
		return
	}

	id := chi.URLParam(r, "id")
	o, err := s.storage.OrderByID(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		s.internalError(w, "get order", err)
		return
	}

	if !model.ValidOrderTransition(o.Status, req.Status) {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("cannot move order from %s to %s", o.Status, req.Status))
		return
	}

	if err := s.storage.UpdateOrderStatus(r.Context(), id, req.Status); err != nil {
		s.internalError(w, "update order status", err)
		return
	}
	o.Status = req.Status
	s.writeJSON(w, http.StatusOK, o)
}

// saveUpload writes an uploaded file under the uploads dir with a fresh name
// and returns the serving path.
func (s *Server) saveUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir uploads dir: %w", err)
	}
	name := newID() + filepath.Ext(header.Filename)
	dst, err := os.Create(filepath.Join(s.uploadsDir, name))
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return "/uploads/" + name, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError writes a JSON error response in the platform's envelope.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op, "error", err)
	s.writeError(w, http.StatusInternalServerError, "failed to "+op)
}

func newID() string {
	return ulid.Make().String()
}
