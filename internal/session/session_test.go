package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dukerupert/familist/internal/model"
)

type fakeAuth struct {
	user  *model.User
	token string
	err   error
	calls int
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (*model.User, string, error) {
	f.calls++
	if f.err != nil {
		return nil, "", f.err
	}
	return f.user, f.token, nil
}

func (f *fakeAuth) Register(_ context.Context, email, password, name string) (*model.User, string, error) {
	f.calls++
	if f.err != nil {
		return nil, "", f.err
	}
	u := *f.user
	u.Email, u.Name = email, name
	return &u, f.token, nil
}

func newLoadedManager(t *testing.T, storage Storage, auth Authenticator) *Manager {
	t.Helper()
	m := NewManager(storage, auth)
	if err := m.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	return m
}

func TestLoginStoresSession(t *testing.T) {
	storage := NewMemoryStorage()
	auth := &fakeAuth{user: &model.User{ID: 2, Email: "a@x.com", Role: model.RoleMember}, token: "tok-1"}
	m := newLoadedManager(t, storage, auth)

	if err := m.Login(context.Background(), "a@x.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	snap := m.Snapshot()
	if !snap.Authenticated() || snap.Token != "tok-1" || snap.User.ID != 2 {
		t.Errorf("snapshot = %+v", snap)
	}
	if tok, ok, _ := storage.Get(KeyToken); !ok || tok != "tok-1" {
		t.Errorf("stored token = %q, %v", tok, ok)
	}
	if _, ok, _ := storage.Get(KeyUser); !ok {
		t.Error("user not stored")
	}
}

func TestLoginFailureLeavesSessionUnchanged(t *testing.T) {
	storage := NewMemoryStorage()
	auth := &fakeAuth{user: &model.User{ID: 2}, token: "tok-1"}
	m := newLoadedManager(t, storage, auth)
	if err := m.Login(context.Background(), "a@x.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	auth.err = errors.New("Invalid credentials")
	if err := m.Login(context.Background(), "a@x.com", "wrong"); err == nil {
		t.Fatal("expected error")
	}
	if m.Token() != "tok-1" {
		t.Errorf("token = %q, want unchanged", m.Token())
	}
}

func TestRegister(t *testing.T) {
	auth := &fakeAuth{user: &model.User{ID: 7}, token: "tok-r"}
	m := newLoadedManager(t, NewMemoryStorage(), auth)

	if err := m.Register(context.Background(), "b@x.com", "pw", "Bee"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if u := m.Snapshot().User; u == nil || u.Name != "Bee" {
		t.Errorf("user = %+v", u)
	}
}

func TestLogoutRemovesStoredKeys(t *testing.T) {
	storage := NewMemoryStorage()
	storage.Set(map[string]string{KeyDebug: "1"})
	auth := &fakeAuth{user: &model.User{ID: 2}, token: "tok-1"}
	m := newLoadedManager(t, storage, auth)
	m.Login(context.Background(), "a@x.com", "secret1")

	if err := m.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if m.Snapshot().Authenticated() {
		t.Error("still authenticated")
	}
	for _, k := range []string{KeyToken, KeyUser} {
		if _, ok, _ := storage.Get(k); ok {
			t.Errorf("%s still stored", k)
		}
	}
	if _, ok, _ := storage.Get(KeyDebug); !ok {
		t.Error("logout should not touch preferences")
	}
}

func TestLoadRehydrates(t *testing.T) {
	storage := NewMemoryStorage()
	storage.Set(map[string]string{KeyToken: "tok", KeyUser: `{"id":3,"email":"c@x.com","family_id":9,"role":"ADMIN"}`})

	m := NewManager(storage, nil)
	if !m.Loading() {
		t.Error("manager should be loading before Load")
	}
	if err := m.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Loading() {
		t.Error("still loading after Load")
	}
	snap := m.Snapshot()
	if snap.User == nil || snap.User.ID != 3 || snap.User.FamilyID == nil || *snap.User.FamilyID != 9 {
		t.Errorf("user = %+v", snap.User)
	}
}

func TestLoadDiscardsPartialSession(t *testing.T) {
	tests := map[string]map[string]string{
		"token only":   {KeyToken: "tok"},
		"user only":    {KeyUser: `{"id":3}`},
		"corrupt user": {KeyToken: "tok", KeyUser: "{not json"},
	}
	for name, stored := range tests {
		t.Run(name, func(t *testing.T) {
			storage := NewMemoryStorage()
			storage.Set(stored)
			m := newLoadedManager(t, storage, nil)

			if snap := m.Snapshot(); snap.User != nil || snap.Token != "" {
				t.Errorf("snapshot = %+v, want empty", snap)
			}
			for _, k := range []string{KeyToken, KeyUser} {
				if _, ok, _ := storage.Get(k); ok {
					t.Errorf("%s should be removed", k)
				}
			}
		})
	}
}

func TestReplaceSwapsUserAndToken(t *testing.T) {
	storage := NewMemoryStorage()
	auth := &fakeAuth{user: &model.User{ID: 2}, token: "tok-1"}
	m := newLoadedManager(t, storage, auth)

	fid := int64(4)
	joined := &model.User{ID: 2, FamilyID: &fid, Role: model.RoleAdmin}
	if err := m.Replace(joined, "tok-2"); !errors.Is(err, ErrNoSession) {
		t.Errorf("replace signed out: err = %v, want ErrNoSession", err)
	}

	m.Login(context.Background(), "a@x.com", "secret1")
	if err := m.Replace(joined, ""); err == nil {
		t.Fatal("replace with empty token should fail")
	}
	if snap := m.Snapshot(); snap.Token != "tok-1" || snap.User.HasFamily() {
		t.Errorf("failed replace changed the session: %+v", snap)
	}

	if err := m.Replace(joined, "tok-2"); err != nil {
		t.Fatalf("replace: %v", err)
	}
	snap := m.Snapshot()
	if snap.Token != "tok-2" || !snap.User.HasFamily() || !snap.User.IsAdmin() {
		t.Errorf("snapshot = %+v", snap)
	}
	if tok, _, _ := storage.Get(KeyToken); tok != "tok-2" {
		t.Errorf("stored token = %q", tok)
	}

	other := &model.User{ID: 2, Name: "Renamed", FamilyID: &fid, Role: model.RoleAdmin}
	if err := m.UpdateUser(other); err != nil {
		t.Fatalf("update user: %v", err)
	}
	if err := m.UpdateToken("tok-3"); err != nil {
		t.Fatalf("update token: %v", err)
	}
	if snap := m.Snapshot(); snap.Token != "tok-3" || snap.User.Name != "Renamed" {
		t.Errorf("snapshot after update = %+v", snap)
	}
}

func TestLoginWithoutAuthenticator(t *testing.T) {
	m := newLoadedManager(t, NewMemoryStorage(), nil)
	if err := m.Login(context.Background(), "a@x.com", "secret1"); !errors.Is(err, ErrNoAuthenticator) {
		t.Errorf("login: err = %v, want ErrNoAuthenticator", err)
	}
	if err := m.Register(context.Background(), "a@x.com", "secret1", "Alice"); !errors.Is(err, ErrNoAuthenticator) {
		t.Errorf("register: err = %v, want ErrNoAuthenticator", err)
	}
	if m.Snapshot().Authenticated() {
		t.Error("session should stay signed out")
	}
}

func TestClearOnUnauthorized(t *testing.T) {
	storage := NewMemoryStorage()
	auth := &fakeAuth{user: &model.User{ID: 2}, token: "tok-1"}
	m := newLoadedManager(t, storage, auth)
	m.Login(context.Background(), "a@x.com", "secret1")

	m.Clear()
	if m.Token() != "" {
		t.Error("token should be cleared")
	}
	if _, ok, _ := storage.Get(KeyToken); ok {
		t.Error("stored token should be cleared")
	}
}

func TestSubscribe(t *testing.T) {
	auth := &fakeAuth{user: &model.User{ID: 2}, token: "tok-1"}
	m := newLoadedManager(t, NewMemoryStorage(), auth)

	var seen []bool
	unsubscribe := m.Subscribe(func(s Snapshot) { seen = append(seen, s.Authenticated()) })

	m.Login(context.Background(), "a@x.com", "secret1")
	m.Logout()
	unsubscribe()
	m.Login(context.Background(), "a@x.com", "secret1")

	if len(seen) != 2 || !seen[0] || seen[1] {
		t.Errorf("notifications = %v, want [true false]", seen)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	auth := &fakeAuth{user: &model.User{ID: 2, Name: "Alice"}, token: "tok-1"}
	m := newLoadedManager(t, NewMemoryStorage(), auth)
	m.Login(context.Background(), "a@x.com", "secret1")

	m.Snapshot().User.Name = "Mallory"
	if m.Snapshot().User.Name != "Alice" {
		t.Error("snapshot mutation leaked into the manager")
	}
}

func TestFileStoragePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")

	first := NewFileStorage(path)
	if _, ok, err := first.Get(KeyToken); err != nil || ok {
		t.Fatalf("empty storage: ok=%v err=%v", ok, err)
	}
	if err := first.Set(map[string]string{KeyToken: "tok", KeyUser: `{"id":1}`}); err != nil {
		t.Fatalf("set: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	second := NewFileStorage(path)
	if v, ok, err := second.Get(KeyToken); err != nil || !ok || v != "tok" {
		t.Errorf("get token = %q, %v, %v", v, ok, err)
	}
	if err := second.Delete(KeyToken, KeyUser); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := first.Get(KeyUser); ok {
		t.Error("user should be deleted")
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("state dir has %d entries, want only the state file", len(entries))
	}
}

func TestFileStorageCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	os.WriteFile(path, []byte("{oops"), 0o600)

	if _, _, err := NewFileStorage(path).Get(KeyToken); err == nil {
		t.Error("expected decode error")
	}
}

func TestPreferences(t *testing.T) {
	prefs := NewPreferences(NewMemoryStorage())

	got, err := prefs.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Debug || got.Language != DefaultLanguage {
		t.Errorf("defaults = %+v", got)
	}

	var events []Prefs
	prefs.Subscribe(func(p Prefs) { events = append(events, p) })

	if err := prefs.SetDebug(true); err != nil {
		t.Fatalf("set debug: %v", err)
	}
	if err := prefs.SetLanguage("he"); err != nil {
		t.Fatalf("set language: %v", err)
	}
	if err := prefs.SetDebug(false); err != nil {
		t.Fatalf("clear debug: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	if !events[0].Debug || events[1].Language != "he" || events[2].Debug {
		t.Errorf("events = %+v", events)
	}

	if err := prefs.SetLanguage(" "); err == nil {
		t.Error("empty language should fail")
	}
}

func TestIsRTL(t *testing.T) {
	for lang, want := range map[string]bool{"he": true, "he-IL": true, "HE": true, "en": false, "": false, "hr": false} {
		if got := IsRTL(lang); got != want {
			t.Errorf("IsRTL(%q) = %v, want %v", lang, got, want)
		}
	}
}
