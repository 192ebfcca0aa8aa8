package manifest

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"kidplan-downloader/pkg/logger"
)

// Set is an in-memory set of picture identities
type Set map[string]struct{}

// NewSet builds a set from the given identities
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Contains reports whether id is in the set
func (s Set) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id into the set
func (s Set) Add(id string) {
	s[id] = struct{}{}
}

// Len returns the number of identities
func (s Set) Len() int {
	return len(s)
}

// Clone returns an independent copy of the set
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Sorted returns the identities in lexicographic order
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Load reads the manifest at path. A missing or unreadable file yields an
// empty set.
func Load(path string) Set {
	set := make(Set)

	file, err := os.Open(path)
	if err != nil {
		return set
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			set.Add(line)
		}
	}
	return set
}

// Append adds one identity line to the manifest, creating it if needed
func Append(path, id string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open manifest: %w", err)
	}

	if _, err := file.WriteString(id + "\n"); err != nil {
		file.Close()
		return fmt.Errorf("failed to append to manifest: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close manifest: %w", err)
	}
	return nil
}

// Ensure creates the manifest file and its directory if they are missing
func Ensure(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create manifest directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create manifest: %w", err)
	}
	return file.Close()
}

// Store pairs a manifest file with its in-memory set
type Store struct {
	mu     sync.Mutex
	path   string
	set    Set
	logger logger.Logger
}

// Open loads the manifest at path into a Store
func Open(path string, log logger.Logger) *Store {
	if log == nil {
		log = logger.GetLogger()
	}

	set := Load(path)
	log.DebugWithFields("Manifest loaded", map[string]interface{}{
		"path":    path,
		"entries": set.Len(),
	})

	return &Store{path: path, set: set, logger: log}
}

// Path returns the manifest file location
func (s *Store) Path() string {
	return s.path
}

// Contains reports whether id has been recorded
func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Contains(id)
}

// Record marks id as downloaded in memory and appends it to the file.
// The in-memory set is updated even when the append fails; the returned
// error only reports the lost durability.
func (s *Store) Record(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.set.Contains(id) {
		return nil
	}
	s.set.Add(id)

	if err := Append(s.path, id); err != nil {
		s.logger.WithError(err).WarnWithFields("Manifest append failed", map[string]interface{}{
			"path": s.path,
			"id":   id,
		})
		return err
	}
	return nil
}

// Remember adds ids to the in-memory set without writing them to the file
func (s *Store) Remember(ids Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range ids {
		s.set.Add(id)
	}
}

// Snapshot returns a copy of the in-memory set
func (s *Store) Snapshot() Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Clone()
}

// Len returns the number of recorded identities
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Len()
}
