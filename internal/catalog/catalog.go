package catalog

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrDuplicateModule is returned when a name is registered twice and the
	// later descriptor does not allow overriding the earlier one.
	ErrDuplicateModule = errors.New("catalog: duplicate module")
	// ErrEmptyName is returned for a descriptor without a name.
	ErrEmptyName = errors.New("catalog: module name must not be empty")
)

// Catalog is an immutable name-to-descriptor mapping. The zero value is an
// empty catalog.
type Catalog struct {
	entries map[string]Descriptor
}

// New builds a catalog from descriptors applied in order. A descriptor whose
// name is already present replaces the earlier one only when it sets
// CanOverrideExisting.
func New(descs ...Descriptor) (*Catalog, error) {
	entries := make(map[string]Descriptor, len(descs))
	for _, d := range descs {
		if err := put(entries, d); err != nil {
			return nil, err
		}
	}
	return &Catalog{entries: entries}, nil
}

// Merge returns a new catalog holding c's descriptors followed by the
// descriptors of others, in order, under the same override rules as New.
func (c *Catalog) Merge(others ...*Catalog) (*Catalog, error) {
	entries := c.ListDescriptors()
	for _, o := range others {
		for _, name := range o.Names() {
			if err := put(entries, o.entries[name]); err != nil {
				return nil, err
			}
		}
	}
	return &Catalog{entries: entries}, nil
}

func put(entries map[string]Descriptor, d Descriptor) error {
	if d.Name == "" {
		return ErrEmptyName
	}
	if d.ClassName == "" {
		d.ClassName = d.Name
	}
	if _, exists := entries[d.Name]; exists && !d.CanOverrideExisting {
		return fmt.Errorf("%w: %q is already registered and the new descriptor does not allow overriding it", ErrDuplicateModule, d.Name)
	}
	entries[d.Name] = d
	return nil
}

// ListDescriptors returns every descriptor keyed by module name. Each call
// returns a fresh map, so callers may modify the result freely.
func (c *Catalog) ListDescriptors() map[string]Descriptor {
	out := make(map[string]Descriptor, c.Len())
	if c == nil {
		return out
	}
	for name, d := range c.entries {
		out[name] = d
	}
	return out
}

// Lookup returns the descriptor registered under name.
func (c *Catalog) Lookup(name string) (Descriptor, bool) {
	if c == nil {
		return Descriptor{}, false
	}
	d, ok := c.entries[name]
	return d, ok
}

// Names returns the registered module names in sorted order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered modules.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}
