package shift

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

const (
	ServiceTypeStandard   = "Standard Clean"
	ServiceTypeFix        = "TO FIX"
	ServiceTypeInspection = "TO CHECK APARTMENT"
)

const maxServiceTypeLength = 64

// ServiceTypeRegistry is the open vocabulary of service types. Entries are
// only ever appended.
type ServiceTypeRegistry struct {
	mu    sync.RWMutex
	types []string
	index map[string]string
}

func NewServiceTypeRegistry(initial ...string) *ServiceTypeRegistry {
	r := &ServiceTypeRegistry{index: make(map[string]string)}
	for _, t := range []string{ServiceTypeStandard, ServiceTypeFix, ServiceTypeInspection} {
		r.add(t)
	}
	for _, t := range initial {
		if name, err := NormalizeServiceType(t); err == nil {
			r.add(name)
		}
	}
	return r
}

// NormalizeServiceType collapses whitespace and checks the length.
func NormalizeServiceType(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidServiceType)
	}
	if len(name) > maxServiceTypeLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidServiceType, maxServiceTypeLength)
	}
	return name, nil
}

func (r *ServiceTypeRegistry) add(name string) string {
	key := strings.ToLower(name)
	if existing, ok := r.index[key]; ok {
		return existing
	}
	r.index[key] = name
	r.types = append(r.types, name)
	return name
}

// Resolve returns the canonical spelling of a known service type.
func (r *ServiceTypeRegistry) Resolve(name string) (string, bool) {
	name, err := NormalizeServiceType(name)
	if err != nil {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	canonical, ok := r.index[strings.ToLower(name)]
	return canonical, ok
}

// Register adds name if it is new and returns its canonical spelling.
func (r *ServiceTypeRegistry) Register(name string) (string, error) {
	name, err := NormalizeServiceType(name)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(name), nil
}

func (r *ServiceTypeRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.types)
}
