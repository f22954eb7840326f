package program

import (
	"fmt"
	"sort"
)

// Builder constructs a built-in program for k tapes; k <= 0 selects the default.
type Builder func(k int) (*Definition, error)

type entry struct {
	build       Builder
	defaultK    int
	description string
}

type Registry struct {
	programs map[string]entry
}

func NewRegistry() *Registry {
	r := &Registry{programs: make(map[string]entry)}

	r.Register("copy", DefaultCopyTapes, "copy tape 0 onto tape 1", Copy)
	r.Register("increment", 1, "binary increment", Increment)
	r.Register("palindrome", 2, "accept palindromes", Palindrome)

	return r
}

func (r *Registry) Register(name string, defaultK int, description string, b Builder) {
	r.programs[name] = entry{build: b, defaultK: defaultK, description: description}
}

// Get builds the named program. k <= 0 uses the program's default tape count.
func (r *Registry) Get(name string, k int) (*Definition, error) {
	e, ok := r.programs[name]
	if !ok {
		return nil, fmt.Errorf("unknown program: %s (available: %v)", name, r.Names())
	}
	if k <= 0 {
		k = e.defaultK
	}
	return e.build(k)
}

func (r *Registry) Describe(name string) (string, int, bool) {
	e, ok := r.programs[name]
	return e.description, e.defaultK, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.programs))
	for name := range r.programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve loads the table program at file when it is set, otherwise the named
// built-in with k tapes.
func (r *Registry) Resolve(name, file string, k int) (*Definition, error) {
	if file != "" {
		return LoadTable(file)
	}
	return r.Get(name, k)
}
