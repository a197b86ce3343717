package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// LoadPortfolio reads and validates a content file. The format is chosen by
// extension: .yaml/.yml, .toml or .json.
func LoadPortfolio(path string) (*Portfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading content %s: %w", path, err)
	}

	p := &Portfolio{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(p)
	case ".toml":
		_, err = toml.Decode(string(data), p)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(p)
	default:
		return nil, fmt.Errorf("unsupported content format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing content %s: %w", path, err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("content %s: %w", path, err)
	}
	return p, nil
}

// ContentStore hands out the current portfolio snapshot.
type ContentStore struct {
	current atomic.Pointer[Portfolio]
	path    string
}

// NewContentStore loads path, or falls back to DefaultPortfolio when path is
// empty.
func NewContentStore(path string) (*ContentStore, error) {
	s := &ContentStore{path: path}
	if path == "" {
		s.current.Store(DefaultPortfolio())
		return s, nil
	}
	p, err := LoadPortfolio(path)
	if err != nil {
		return nil, err
	}
	s.current.Store(p)
	return s, nil
}

// NewStaticContentStore wraps an already validated portfolio.
func NewStaticContentStore(p *Portfolio) *ContentStore {
	s := &ContentStore{}
	s.current.Store(p)
	return s
}

// Snapshot returns the active portfolio. Callers must not modify it.
func (s *ContentStore) Snapshot() *Portfolio {
	return s.current.Load()
}

// Reload re-reads the content file. On failure the previous snapshot stays.
func (s *ContentStore) Reload() error {
	if s.path == "" {
		return nil
	}
	p, err := LoadPortfolio(s.path)
	if err != nil {
		return err
	}
	s.current.Store(p)
	return nil
}

// Watch reloads the content file whenever it changes until ctx is done.
func (s *ContentStore) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating content watcher: %w", err)
	}
	// Watch the directory so editors that replace the file are still seen.
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", s.path, err)
	}

	go func() {
		defer w.Close()
		target := filepath.Clean(s.path)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := s.Reload(); err != nil {
					log.Printf("content reload failed, keeping previous content: %v", err)
					continue
				}
				log.Printf("content reloaded from %s", s.path)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("content watcher error: %v", err)
			}
		}
	}()
	return nil
}
