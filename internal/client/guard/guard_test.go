package guard

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/shaunstone0/stone-budget/internal/client/session"
)

func newStore(t *testing.T) *session.Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return session.NewStore(filepath.Join(t.TempDir(), "session.json"), logger)
}

func login(store *session.Store) {
	store.SetSession("tok", session.User{ID: "u1", Name: "A", Email: "a@b.co"})
}

func TestAuthGuard(t *testing.T) {
	store := newStore(t)
	g := NewAuthGuard(store)

	res := g.Check("/bills")
	if res.Allowed {
		t.Error("logged-out user should not pass the auth guard")
	}
	if res.RedirectTo != LoginView {
		t.Errorf("RedirectTo = %q, want %q", res.RedirectTo, LoginView)
	}
	if res.ReturnTo != "/bills" {
		t.Errorf("ReturnTo = %q, want /bills (post-login redirect)", res.ReturnTo)
	}

	login(store)
	if res := g.Check("/bills"); !res.Allowed {
		t.Error("logged-in user should pass the auth guard")
	}
}

func TestGuestGuard(t *testing.T) {
	store := newStore(t)
	g := NewGuestGuard(store)

	if res := g.Check("/login"); !res.Allowed {
		t.Error("logged-out user should pass the guest guard")
	}

	login(store)
	res := g.Check("/login")
	if res.Allowed {
		t.Error("logged-in user should not pass the guest guard")
	}
	if res.RedirectTo != DashboardView {
		t.Errorf("RedirectTo = %q, want %q", res.RedirectTo, DashboardView)
	}
}

func TestRoleGuard_AlwaysGrantsWhenAuthenticated(t *testing.T) {
	store := newStore(t)
	var logs []string
	logger := slog.New(slog.NewTextHandler(writerFunc(func(p []byte) (int, error) {
		logs = append(logs, string(p))
		return len(p), nil
	}), &slog.HandlerOptions{Level: slog.LevelDebug}))
	g := NewRoleGuard(store, logger)

	// Unauthenticated: redirect to login before any role logic.
	if res := g.CheckRole("/admin", "admin"); res.Allowed || res.RedirectTo != LoginView {
		t.Errorf("CheckRole(unauthenticated) = %+v", res)
	}

	login(store)
	if res := g.CheckRole("/admin", "admin"); !res.Allowed {
		t.Error("role guard stub should grant access to any role")
	}
	if len(logs) == 0 {
		t.Error("role guard should log that the check is not implemented")
	}
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
