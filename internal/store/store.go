// Package store реализует хранилище состояния бота в виде единого
// JSON-документа: снимки в памяти с записью на диск после каждой мутации.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mmeshcher/streampromo-bot/internal/model"
)

// ErrNoChange возвращается из функции мутации, если изменение применять не нужно.
// Хранилище в этом случае не перезаписывает состояние и не пишет на диск.
var ErrNoChange = errors.New("no state change")

// Store хранит состояние в памяти и сериализует все мутации одним мьютексом.
// Каждая мутация выполняется как атомарная единица read-modify-write.
type Store struct {
	mu    sync.Mutex
	path  string
	state *model.State
}

// Open загружает состояние из файла. Отсутствующий или повреждённый файл
// не является ошибкой запуска: хранилище инициализируется пустым состоянием
// со списком администраторов из конфигурации.
func Open(path string, seedAdmins []int64) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err == nil {
		st := &model.State{}
		if jsonErr := json.Unmarshal(data, st); jsonErr == nil {
			normalize(st, seedAdmins)
			s.state = st
		}
	}

	if s.state == nil {
		s.state = model.NewState(seedAdmins)
		if err := s.persistLocked(); err != nil {
			return nil, fmt.Errorf("write initial state: %w", err)
		}
	}

	return s, nil
}

// normalize восстанавливает инварианты документа после чтения с диска.
func normalize(st *model.State, seedAdmins []int64) {
	if st.Users == nil {
		st.Users = make(map[string]*model.User)
	}
	if st.Orders == nil {
		st.Orders = make(map[string]*model.Order)
	}
	if len(st.Admins) == 0 {
		st.Admins = append([]int64(nil), seedAdmins...)
	}
	if st.NextOrderID < 1 {
		st.NextOrderID = int64(len(st.Orders)) + 1
	}
}

// Snapshot возвращает глубокую копию текущего состояния.
func (s *Store) Snapshot() *model.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Mutate применяет fn к копии состояния как одну атомарную единицу
// read-modify-write. При успехе копия становится текущим состоянием и
// записывается на диск; при ошибке состояние остаётся прежним.
// Возврат ErrNoChange отменяет мутацию без ошибки для вызывающего.
func (s *Store) Mutate(fn func(st *model.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := fn(next); err != nil {
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		return err
	}

	s.state = next
	if err := s.persistLocked(); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

// Persist принудительно записывает текущее состояние на диск.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

// persistLocked пишет состояние во временный файл и атомарно подменяет им
// основной. Вызывается только под мьютексом.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.state, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
