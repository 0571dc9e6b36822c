package services

import (
	"fmt"
	"sync"

	"github.com/dmitrijs2005/shonkhipto/internal/client/models"
	"github.com/dmitrijs2005/shonkhipto/internal/common"
)

const (
	DefaultShortBase = "https://tinylink.com/"
	shortCodeLength  = 6
)

// LinkService keeps the in-memory list of shortened links. Short codes are
// generated locally; nothing is sent to a shortening backend.
type LinkService interface {
	List() []models.Link
	Create(longURL string) (*models.Link, error)
	Get(id int) (*models.Link, error)
}

type linkService struct {
	mu     sync.RWMutex
	links  []models.Link
	base   string
	random func(alphabet string, n int) (string, error)
}

func seedLinks(base string) []models.Link {
	return []models.Link{
		{ID: 1, Original: "https://www.example.com/very/long/url/1", Short: base + "abc123", Clicks: 15},
		{ID: 2, Original: "https://www.example.com/another/long/url/2", Short: base + "def456", Clicks: 8},
	}
}

// NewLinkService returns a list seeded with two sample rows. base prefixes
// every short code; "" means DefaultShortBase.
func NewLinkService(base string) LinkService {
	if base == "" {
		base = DefaultShortBase
	}
	return &linkService{links: seedLinks(base), base: base, random: common.RandomString}
}

// List returns the rows newest first.
func (s *linkService) List() []models.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Link, len(s.links))
	copy(out, s.links)
	return out
}

// Create prepends a row for longURL with a random six-character base-36
// code. An empty URL is ignored and yields (nil, nil).
func (s *linkService) Create(longURL string) (*models.Link, error) {
	if longURL == "" {
		return nil, nil
	}

	code, err := s.random(common.Base36, shortCodeLength)
	if err != nil {
		return nil, fmt.Errorf("generate short code: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l := models.Link{
		ID:       len(s.links) + 1,
		Original: longURL,
		Short:    s.base + code,
	}
	s.links = append([]models.Link{l}, s.links...)
	return &l, nil
}

func (s *linkService) Get(id int) (*models.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.links {
		if l.ID == id {
			l := l
			return &l, nil
		}
	}
	return nil, fmt.Errorf("link %d: %w", id, common.ErrNotFound)
}
