package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matheus3301/wppclone/internal/client"
	"github.com/matheus3301/wppclone/internal/config"
	"github.com/matheus3301/wppclone/internal/instance"
	"github.com/matheus3301/wppclone/internal/lock"
	"github.com/matheus3301/wppclone/internal/status"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(instance.BaseDirEnv, t.TempDir())
	t.Setenv("WPP_STORAGE_BACKEND", "")
	t.Setenv("WPP_LISTEN_ADDR", "")
}

func startApp(t *testing.T, name string) (*fxtest.App, *Server) {
	t.Helper()
	var srv *Server
	app := fxtest.New(t,
		fx.NopLogger,
		Module(Params{InstanceName: name, ListenAddr: "127.0.0.1:0"}),
		fx.Populate(&srv),
	)
	app.RequireStart()
	return app, srv
}

// TestFxModuleWiring verifies the fx dependency graph resolves without errors.
func TestFxModuleWiring(t *testing.T) {
	if err := fx.ValidateApp(Module(Params{InstanceName: "fxtest"})); err != nil {
		t.Fatalf("ValidateApp() error = %v", err)
	}
}

func TestDaemonLifecycle(t *testing.T) {
	isolate(t)
	ctx := context.Background()

	app, srv := startApp(t, "test")
	c := client.New(srv.Addr())

	h, err := c.Health(ctx)
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if h.Status != "ok" {
		t.Errorf("status = %q, want ok", h.Status)
	}

	if _, err := c.Register(ctx, "Alice", "111111"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := c.SendMessage(ctx, "111111", "222222", "persist me", false); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	// Lock must be held while running.
	if _, err := lock.Acquire(instance.Dir("test")); err == nil {
		t.Fatal("lock.Acquire() succeeded while daemon is running")
	}

	app.RequireStop()

	if _, err := os.Stat(instance.DataPath("test")); err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	if _, err := os.Stat(instance.LockPath("test")); !os.IsNotExist(err) {
		t.Errorf("LOCK file still present after stop: %v", err)
	}

	// A restart must see the same state.
	app2, srv2 := startApp(t, "test")
	defer app2.RequireStop()
	c2 := client.New(srv2.Addr())

	u, err := c2.User(ctx, "111111")
	if err != nil {
		t.Fatalf("User() after restart error = %v", err)
	}
	if u.Name != "Alice" {
		t.Errorf("name = %q, want Alice", u.Name)
	}
	msgs, err := c2.Messages(ctx, "222222", "111111")
	if err != nil {
		t.Fatalf("Messages() after restart error = %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "persist me" {
		t.Errorf("messages = %+v, want one persisted message", msgs)
	}
}

func TestDaemonStateMachine(t *testing.T) {
	isolate(t)

	var (
		srv     *Server
		machine *status.Machine
	)
	app := fxtest.New(t,
		fx.NopLogger,
		Module(Params{InstanceName: "states", ListenAddr: "127.0.0.1:0"}),
		fx.Populate(&srv, &machine),
	)
	if machine.Current() != status.Booting {
		t.Errorf("state before start = %s, want BOOTING", machine.Current())
	}

	app.RequireStart()
	if machine.Current() != status.Serving {
		t.Errorf("state after start = %s, want SERVING", machine.Current())
	}
	h, err := client.New(srv.Addr()).Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if h.State != string(status.Serving) {
		t.Errorf("health state = %q, want SERVING", h.State)
	}

	app.RequireStop()
	if machine.Current() != status.Stopped {
		t.Errorf("state after stop = %s, want STOPPED", machine.Current())
	}
}

func TestDaemonSQLiteBackend(t *testing.T) {
	isolate(t)
	t.Setenv("WPP_STORAGE_BACKEND", config.BackendSQLite)
	ctx := context.Background()

	app, srv := startApp(t, "sql")
	if _, err := client.New(srv.Addr()).Register(ctx, "Bob", "222222"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	app.RequireStop()

	if _, err := os.Stat(instance.SQLitePath("sql")); err != nil {
		t.Fatalf("sqlite database not created: %v", err)
	}

	app2, srv2 := startApp(t, "sql")
	defer app2.RequireStop()
	users, err := client.New(srv2.Addr()).Users(ctx)
	if err != nil {
		t.Fatalf("Users() error = %v", err)
	}
	if len(users) != 1 || users[0].Phone != "222222" {
		t.Errorf("users = %+v, want Bob", users)
	}
}

func TestSecondDaemonFailsOnLock(t *testing.T) {
	isolate(t)

	app, _ := startApp(t, "busy")
	defer app.RequireStop()

	second := fx.New(
		fx.NopLogger,
		Module(Params{InstanceName: "busy", ListenAddr: "127.0.0.1:0"}),
	)
	err := second.Err()
	if err == nil {
		_ = second.Stop(context.Background())
		t.Fatal("second daemon started on a locked instance")
	}
	var held *lock.LockHeldError
	if !errors.As(err, &held) {
		t.Errorf("expected LockHeldError, got %v", err)
	}
}

func TestConfigFileIsHonored(t *testing.T) {
	isolate(t)

	cfg := config.Default()
	cfg.LogLevel = "warn"
	cfg.Storage.Backend = config.BackendSQLite
	if err := config.Save(instance.ConfigPath(), cfg); err != nil {
		t.Fatal(err)
	}

	app, _ := startApp(t, "cfg")
	app.RequireStop()

	if _, err := os.Stat(filepath.Join(instance.Dir("cfg"), "wpp.db")); err != nil {
		t.Errorf("sqlite backend from config.toml not used: %v", err)
	}
	if _, err := os.Stat(instance.LogPath("cfg")); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}
