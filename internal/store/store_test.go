package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mmeshcher/streampromo-bot/internal/model"
)

func tempStatePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "database.json")
}

func TestOpen_MissingFileInitializesDefaults(t *testing.T) {
	path := tempStatePath(t)

	s, err := Open(path, []int64{42})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}

	st := s.Snapshot()
	if len(st.Users) != 0 || len(st.Orders) != 0 {
		t.Fatalf("expected empty state, got %d users, %d orders", len(st.Users), len(st.Orders))
	}
	if !st.IsAdmin(42) {
		t.Fatalf("expected admin set to be seeded from configuration")
	}
	if st.NextOrderID != 1 {
		t.Fatalf("NextOrderID = %d, want 1", st.NextOrderID)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected initial state to be written: %v", err)
	}
}

func TestOpen_CorruptFileInitializesDefaults(t *testing.T) {
	path := tempStatePath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	s, err := Open(path, []int64{7})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}

	st := s.Snapshot()
	if !st.IsAdmin(7) {
		t.Fatalf("expected admin set seeded after corrupt file")
	}
}

func TestMutate_PersistsAndReloads(t *testing.T) {
	path := tempStatePath(t)

	s, err := Open(path, []int64{1})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}

	err = s.Mutate(func(st *model.State) error {
		st.Users[model.Key(10)] = &model.User{Balance: 250, Username: "streamer"}
		st.NextOrderID = 5
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate error: %v", err)
	}

	reloaded, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}

	u, ok := reloaded.Snapshot().User(10)
	if !ok || u.Balance != 250 || u.Username != "streamer" {
		t.Fatalf("reloaded user = %+v, %v", u, ok)
	}
	if reloaded.Snapshot().NextOrderID != 5 {
		t.Fatalf("NextOrderID not persisted")
	}
}

func TestMutate_ErrorLeavesStateUntouched(t *testing.T) {
	path := tempStatePath(t)

	s, err := Open(path, []int64{1})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}

	boom := errors.New("boom")
	err = s.Mutate(func(st *model.State) error {
		st.Users[model.Key(10)] = &model.User{Balance: 999}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected mutation error to propagate, got %v", err)
	}

	if _, ok := s.Snapshot().User(10); ok {
		t.Fatalf("failed mutation must not change state")
	}
}

func TestMutate_NoChangeSkipsWrite(t *testing.T) {
	path := tempStatePath(t)

	s, err := Open(path, []int64{1})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}

	err = s.Mutate(func(st *model.State) error {
		return ErrNoChange
	})
	if err != nil {
		t.Fatalf("ErrNoChange must not surface to the caller, got %v", err)
	}
}

func TestMutate_Concurrent(t *testing.T) {
	path := tempStatePath(t)

	s, err := Open(path, []int64{1})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}

	if err := s.Mutate(func(st *model.State) error {
		st.Users[model.Key(10)] = &model.User{}
		return nil
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	const workers = 20
	const increments = 10

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				_ = s.Mutate(func(st *model.State) error {
					u, _ := st.User(10)
					u.Balance++
					return nil
				})
			}
		}()
	}
	wg.Wait()

	u, _ := s.Snapshot().User(10)
	if u.Balance != workers*increments {
		t.Fatalf("balance = %d, want %d: concurrent mutations interleaved", u.Balance, workers*increments)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	path := tempStatePath(t)

	s, err := Open(path, []int64{1})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}

	snap := s.Snapshot()
	snap.Users[model.Key(99)] = &model.User{}

	if _, ok := s.Snapshot().User(99); ok {
		t.Fatalf("snapshot mutation leaked into the store")
	}
}

func TestPersistedDocumentLayout(t *testing.T) {
	path := tempStatePath(t)

	s, err := Open(path, []int64{5})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := s.Persist(); err != nil {
		t.Fatalf("Persist error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read state file: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal document: %v", err)
	}

	for _, key := range []string{"users", "orders", "admins", "settings"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("document missing top-level key %q", key)
		}
	}
}
