package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/littlebull/lbcs/internal/config"
	"github.com/littlebull/lbcs/internal/logging"
)

const (
	libraryFile    = "library.yaml"
	libraryVersion = 1
)

// ErrNotFound is returned when deleting an id that is not stored.
var ErrNotFound = errors.New("not found")

// Store keeps walls and problems in a single YAML file. Every call reads
// the file and every mutation rewrites it atomically, so several clients
// on one machine see each other's changes.
type Store struct {
	path string
	mu   sync.Mutex

	// newID and now are swapped in tests
	newID func() string
	now   func() time.Time
}

// Open returns a store backed by the file at path. The file is created on
// the first save.
func Open(path string) *Store {
	return &Store{
		path:  path,
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// OpenDefault opens library.yaml in the configuration directory.
func OpenDefault() (*Store, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	return Open(filepath.Join(dir, libraryFile)), nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() (*library, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &library{Version: libraryVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read library: %w", err)
	}

	var lib library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to parse library: %w", err)
	}
	if lib.Version != libraryVersion {
		return nil, fmt.Errorf("unsupported library version: %d (expected %d)", lib.Version, libraryVersion)
	}
	return &lib, nil
}

func (s *Store) save(lib *library) error {
	data, err := yaml.Marshal(lib)
	if err != nil {
		return fmt.Errorf("failed to marshal library: %w", err)
	}
	header := []byte("# lbcs saved walls and problems\n\n")
	if err := config.WriteFileAtomic(s.path, append(header, data...)); err != nil {
		return fmt.Errorf("failed to save library: %w", err)
	}
	return nil
}

// update loads the library, applies fn and saves the result.
func (s *Store) update(fn func(*library) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lib, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(lib); err != nil {
		return err
	}
	return s.save(lib)
}

func (s *Store) read() (*library, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// SaveWall stores a wall and returns its id. A wall whose id is already
// stored is replaced; otherwise a new id is assigned.
func (s *Store) SaveWall(w Wall) (string, error) {
	var id string
	err := s.update(func(lib *library) error {
		rec := &wallRecord{Name: w.Name, ServerURL: w.ServerURL, ImageURI: w.ImageURI, SavedAt: s.now()}
		if w.ID != "" {
			for i, existing := range lib.Walls {
				if existing.ID == w.ID {
					rec.ID = w.ID
					lib.Walls[i] = rec
					id = rec.ID
					return nil
				}
			}
		}
		rec.ID = s.newID()
		lib.Walls = append(lib.Walls, rec)
		id = rec.ID
		return nil
	})
	if err != nil {
		return "", err
	}

	logging.Debug("Wall saved", zap.String("id", id), zap.String("name", w.Name))
	return id, nil
}

// GetWalls returns the stored walls in save order.
func (s *Store) GetWalls() ([]Wall, error) {
	lib, err := s.read()
	if err != nil {
		return nil, err
	}
	walls := make([]Wall, 0, len(lib.Walls))
	for _, rec := range lib.Walls {
		walls = append(walls, rec.toWall())
	}
	return walls, nil
}

// DeleteWall removes a wall by id.
func (s *Store) DeleteWall(id string) error {
	return s.update(func(lib *library) error {
		for i, rec := range lib.Walls {
			if rec.ID == id {
				lib.Walls = append(lib.Walls[:i], lib.Walls[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("wall %s: %w", id, ErrNotFound)
	})
}

// SaveProblem stores a problem under a new id.
func (s *Store) SaveProblem(p Problem) (string, error) {
	id := s.newID()
	err := s.update(func(lib *library) error {
		lib.Problems = append(lib.Problems, newProblemRecord(id, p, s.now()))
		return nil
	})
	if err != nil {
		return "", err
	}

	logging.Debug("Problem saved", zap.String("id", id), zap.String("name", p.Name), zap.Int("lit", len(p.Grid.Lit())))
	return id, nil
}

// GetProblems returns the stored problems in save order.
func (s *Store) GetProblems() ([]Problem, error) {
	lib, err := s.read()
	if err != nil {
		return nil, err
	}
	problems := make([]Problem, 0, len(lib.Problems))
	for _, rec := range lib.Problems {
		p, err := rec.toProblem()
		if err != nil {
			return nil, fmt.Errorf("problem %s: %w", rec.ID, err)
		}
		problems = append(problems, p)
	}
	return problems, nil
}

// DeleteProblem removes a problem by id.
func (s *Store) DeleteProblem(id string) error {
	return s.update(func(lib *library) error {
		for i, rec := range lib.Problems {
			if rec.ID == id {
				lib.Problems = append(lib.Problems[:i], lib.Problems[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("problem %s: %w", id, ErrNotFound)
	})
}
