package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tavolaapp/tavola-admin/internal/api"
	"github.com/tavolaapp/tavola-admin/internal/config"
	"github.com/tavolaapp/tavola-admin/internal/notify"
	"github.com/tavolaapp/tavola-admin/internal/service"
	"github.com/tavolaapp/tavola-admin/internal/session"
	"github.com/tavolaapp/tavola-admin/internal/store"
	"github.com/tavolaapp/tavola-admin/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if _, statErr := os.Stat(config.Path()); os.IsNotExist(statErr) {
		// first run: write a starter config for the user to edit
		if err := config.Save(cfg); err != nil {
			log.Printf("starter config: %v", err)
		}
	}

	sess, err := authenticate(ctx, cfg)
	if err != nil {
		log.Fatalf("login: %v", err)
	}
	if !sess.Authenticated() {
		log.Fatalf("login: backend returned an empty token")
	}

	client, err := api.New(cfg.API.BaseURL, sess,
		api.WithTimeout(time.Duration(cfg.API.TimeoutSeconds)*time.Second))
	if err != nil {
		log.Fatalf("client: %v", err)
	}

	st := store.New()
	feed := notify.NewWithClock(time.Duration(cfg.UI.NotifySeconds)*time.Second, time.Now)
	catalog := service.NewCatalog(client, st, feed)
	orders := service.NewOrders(client, st, feed, catalog)
	gate := service.NewGate(catalog)

	p := tea.NewProgram(tui.New(ctx, tui.Services{
		Catalog: catalog,
		Orders:  orders,
		Gate:    gate,
		Session: sess,
	}, st, feed), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

// authenticate resolves a session token: the configured env var wins, then
// a credential login against the platform.
func authenticate(ctx context.Context, cfg config.Config) (*session.Session, error) {
	if token := cfg.Auth.Token(); token != "" {
		return session.New(token), nil
	}
	if cfg.Auth.Email == "" || cfg.Auth.Password == "" {
		return nil, fmt.Errorf("no credentials: set %s or auth.email/auth.password in config", cfg.Auth.TokenEnv)
	}

	anon, err := api.New(cfg.API.BaseURL, nil,
		api.WithTimeout(time.Duration(cfg.API.TimeoutSeconds)*time.Second))
	if err != nil {
		return nil, err
	}
	token, err := anon.Login(ctx, cfg.Auth.Email, cfg.Auth.Password)
	if err != nil {
		return nil, err
	}
	return session.New(token), nil
}
