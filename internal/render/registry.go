package render

import (
	"github.com/pkg/errors"
)

// Descriptor names a pattern and how to build it.
type Descriptor struct {
	Name     string
	Category Category
	Factory  Factory
	// NoShuffle keeps the pattern out of the shuffle pool.
	NoShuffle bool
}

// Registry is the ordered pattern table. Indices are insertion order and are
// what gets persisted, so registration order must be stable across builds.
type Registry struct{ list []Descriptor }

func NewRegistry() *Registry { return &Registry{} }

func (r *Registry) Register(d Descriptor) error {
	if d.Factory == nil {
		return errors.Errorf("pattern %q has no factory", d.Name)
	}
	if d.Name == "" {
		return errors.New("pattern has no name")
	}
	r.list = append(r.list, d)
	return nil
}

func (r *Registry) Len() int { return len(r.list) }

// Get returns the descriptor at i. An out-of-range index yields index 0 and
// ok=false; an empty registry yields the zero Descriptor.
func (r *Registry) Get(i int) (Descriptor, bool) {
	if i >= 0 && i < len(r.list) {
		return r.list[i], true
	}
	if len(r.list) == 0 {
		return Descriptor{}, false
	}
	return r.list[0], false
}

func (r *Registry) Names() []string {
	out := make([]string, len(r.list))
	for i, d := range r.list {
		out[i] = d.Name
	}
	return out
}

func (r *Registry) Index(name string) (int, bool) {
	for i, d := range r.list {
		if d.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Eligible lists shuffle candidates: concrete patterns not flagged NoShuffle,
// excluding index exclude (pass -1 to exclude nothing).
func (r *Registry) Eligible(exclude int) []int {
	out := make([]int, 0, len(r.list))
	for i, d := range r.list {
		if i == exclude || d.Category == Shuffle || d.NoShuffle {
			continue
		}
		out = append(out, i)
	}
	return out
}
