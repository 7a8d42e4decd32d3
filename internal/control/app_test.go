package control

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vietddude/catalog/internal/core/config"
	"github.com/vietddude/catalog/internal/infra/api"
)

const txID = "3f1c2b9e-6a2d-4c8e-9b7a-1d2e3f4a5b6c"

func TestApp_FetchesWithDevToken(t *testing.T) {
	var gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"codigoEstado":"200","mensajeError":null,"idTransaccion":"`+txID+`",
			"data":[{"codigoCategoria":8,"descripcionCategoria":"Kitchen"}]}`)
	}))
	defer upstream.Close()

	cfg := config.Default()
	cfg.Env = "dev"
	cfg.API.BaseURL = upstream.URL
	cfg.Auth.DevToken = "dev-secret"

	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer app.Close()

	got, err := app.Categories().Get(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Code != 8 {
		t.Errorf("unexpected categories: %+v", got)
	}
	if gotAuth != "Bearer dev-secret" {
		t.Errorf("expected dev token, got %q", gotAuth)
	}
}

func TestApp_NoDevTokenByDefault(t *testing.T) {
	var gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"codigoEstado":"404","mensajeError":"no subline","idTransaccion":"`+txID+`"}`)
	}))
	defer upstream.Close()

	cfg := config.Default()
	cfg.API.BaseURL = upstream.URL
	cfg.Auth.DevToken = "dev-secret"

	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer app.Close()

	_, err = app.Categories().Get(context.Background(), 2)
	var apiErr *api.APIResponseError
	if !errors.As(err, &apiErr) || apiErr.Response.ErrorMessage != "no subline" {
		t.Errorf("expected api response error, got %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no credentials, got %q", gotAuth)
	}

	msg, err := app.Displayer().Render(apiErr, nil)
	if err != nil || msg == "" {
		t.Errorf("expected a message, got %q %v", msg, err)
	}
}

func TestApp_Lifecycle(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Cache.TTL = time.Second

	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if app.Categories() == nil {
		t.Fatal("expected a category query")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if err := app.Stop(ctx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestNewApp_InvalidRedisURL(t *testing.T) {
	cfg := config.Default()
	cfg.Redis.URL = "not a url"

	if _, err := NewApp(cfg); err == nil {
		t.Error("expected error for invalid redis url")
	}
}
