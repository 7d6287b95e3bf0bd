// Package repos is the simulated repository backend the dashboard drives.
// Each operation sleeps for a configurable latency before touching the
// store, so the UI sees a realistic in-flight window.
package repos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// Action log names.
const (
	ActionPull   = "pull"
	ActionNuke   = "nuke"
	ActionChange = "change"
)

var (
	// ErrNoRepository is returned when an operation needs a configured URL.
	ErrNoRepository = errors.New("no repository configured")
	// ErrInvalidURL is returned for URLs that don't look like a git remote.
	ErrInvalidURL = errors.New("invalid repository url")
)

// Confirmation describes the prompt shown before a destructive operation.
type Confirmation struct {
	Title   string
	Body    string
	Confirm string
	Cancel  string
}

// Service runs repository operations against a Store.
type Service struct {
	store   *Store
	latency time.Duration
	log     *slog.Logger
	group   singleflight.Group
}

// NewService creates a service. A nil logger discards.
func NewService(store *Store, latency time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, latency: latency, log: logger}
}

// Store exposes the underlying store.
func (s *Service) Store() *Store {
	return s.store
}

func (s *Service) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pull fetches the latest revision and returns a notice for the user.
// Concurrent pulls share one result.
func (s *Service) Pull(ctx context.Context) (string, error) {
	v, err, shared := s.group.Do(ActionPull, func() (any, error) {
		if err := s.wait(ctx); err != nil {
			return "", err
		}
		repo, err := s.store.Repository()
		if err != nil {
			return "", err
		}
		if repo.URL == "" {
			return "", ErrNoRepository
		}
		rev, err := s.store.BumpRevision()
		if err != nil {
			return "", err
		}
		if err := s.store.LogAction(ActionPull, fmt.Sprintf("r%d", rev)); err != nil {
			return "", err
		}
		return fmt.Sprintf("Pulled %s at revision %d", repo.URL, rev), nil
	})
	if err != nil {
		s.log.Warn("pull failed", "err", err)
		return "", err
	}
	s.log.Info("pull", "shared", shared)
	return v.(string), nil
}

// NukeCheck returns the confirmation prompt for removing the repository.
func (s *Service) NukeCheck(ctx context.Context) (Confirmation, error) {
	if err := s.wait(ctx); err != nil {
		return Confirmation{}, err
	}
	repo, err := s.store.Repository()
	if err != nil {
		return Confirmation{}, err
	}
	if repo.URL == "" {
		return Confirmation{}, ErrNoRepository
	}
	return Confirmation{
		Title:   "Remove repository",
		Body:    fmt.Sprintf("This deletes the local copy of %s and all pulled revisions.\n\nThe remote is not affected.", repo.URL),
		Confirm: "Remove",
		Cancel:  "Cancel",
	}, nil
}

// Nuke removes the repository. Returns a notice for the user.
func (s *Service) Nuke(ctx context.Context) (string, error) {
	v, err, _ := s.group.Do(ActionNuke, func() (any, error) {
		if err := s.wait(ctx); err != nil {
			return "", err
		}
		repo, err := s.store.Repository()
		if err != nil {
			return "", err
		}
		if repo.URL == "" {
			return "", ErrNoRepository
		}
		if err := s.store.SetURL(""); err != nil {
			return "", err
		}
		if err := s.store.LogAction(ActionNuke, repo.URL); err != nil {
			return "", err
		}
		return fmt.Sprintf("Removed %s", repo.URL), nil
	})
	if err != nil {
		s.log.Warn("nuke failed", "err", err)
		return "", err
	}
	s.log.Info("nuke")
	return v.(string), nil
}

// ValidateURL reports whether url looks like a git remote.
func ValidateURL(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	switch {
	case strings.HasPrefix(url, "https://"), strings.HasPrefix(url, "http://"),
		strings.HasPrefix(url, "ssh://"), strings.HasPrefix(url, "git@"),
		strings.HasPrefix(url, "file://"):
	default:
		return fmt.Errorf("%w: %q has no known scheme", ErrInvalidURL, url)
	}
	if strings.ContainsAny(url, " \t\n") {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidURL, url)
	}
	return nil
}

// ChangeCheck validates url and returns the confirmation prompt for
// switching to it.
func (s *Service) ChangeCheck(ctx context.Context, url string) (Confirmation, error) {
	if err := ValidateURL(url); err != nil {
		return Confirmation{}, err
	}
	if err := s.wait(ctx); err != nil {
		return Confirmation{}, err
	}
	repo, err := s.store.Repository()
	if err != nil {
		return Confirmation{}, err
	}
	body := fmt.Sprintf("Track %s?", strings.TrimSpace(url))
	if repo.URL != "" {
		body = fmt.Sprintf("Switch from %s to %s?\n\nThe current local copy is discarded.", repo.URL, strings.TrimSpace(url))
	}
	return Confirmation{
		Title:   "Change repository",
		Body:    body,
		Confirm: "Change",
		Cancel:  "Cancel",
	}, nil
}

// Change points the repository at url.
func (s *Service) Change(ctx context.Context, url string) (string, error) {
	url = strings.TrimSpace(url)
	if err := ValidateURL(url); err != nil {
		return "", err
	}
	v, err, _ := s.group.Do(ActionChange+":"+url, func() (any, error) {
		if err := s.wait(ctx); err != nil {
			return "", err
		}
		if err := s.store.SetURL(url); err != nil {
			return "", err
		}
		if err := s.store.LogAction(ActionChange, url); err != nil {
			return "", err
		}
		return fmt.Sprintf("Now tracking %s", url), nil
	})
	if err != nil {
		s.log.Warn("change failed", "url", url, "err", err)
		return "", err
	}
	s.log.Info("change", "url", url)
	return v.(string), nil
}
