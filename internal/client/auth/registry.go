package auth

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/shonkhipto/internal/common"
)

// Registry looks authenticators up by provider name.
type Registry struct {
	mu    sync.RWMutex
	items map[string]Authenticator
}

func NewRegistry(auths ...Authenticator) *Registry {
	r := &Registry{items: make(map[string]Authenticator)}
	for _, a := range auths {
		r.Register(a)
	}
	return r
}

// Register adds a, replacing any authenticator with the same name.
func (r *Registry) Register(a Authenticator) {
	r.mu.Lock()
	r.items[a.Name()] = a
	r.mu.Unlock()
}

func (r *Registry) Get(name string) (Authenticator, error) {
	r.mu.RLock()
	a, ok := r.items[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedProvider, name)
	}
	return a, nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.items))
	for n := range r.items {
		names = append(names, n)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
