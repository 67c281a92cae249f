// Package palette holds the catalogue of selectable home/away color pairs.
//
// Catalogues are versioned tables: the built-in revisions mirror the sets the
// app has shipped with, and a YAML file can replace them at startup.
package palette

import (
	"errors"
	"fmt"

	"github.com/preston-bernstein/scorekeeper-service/internal/color"
)

// ErrUnknownRevision is returned when a built-in revision name is not recognised.
var ErrUnknownRevision = errors.New("unknown palette revision")

// Pair is the home/away color combination applied as a unit.
type Pair struct {
	Home color.RGBA `json:"home" yaml:"home"`
	Away color.RGBA `json:"away" yaml:"away"`
}

// Entry is one selectable catalogue item. Asset names the preview image.
type Entry struct {
	Key   string `json:"key" yaml:"key"`
	Pair  `yaml:",inline"`
	Asset string `json:"asset,omitempty" yaml:"asset,omitempty"`
}

// Catalogue is an ordered, read-only list of entries plus the pair used before any selection.
type Catalogue struct {
	Revision string  `json:"revision" yaml:"revision"`
	Default  Pair    `json:"default" yaml:"default"`
	Entries  []Entry `json:"entries" yaml:"entries"`
}

// Lookup finds an entry by exact, case-sensitive key.
func (c Catalogue) Lookup(key string) (Entry, bool) {
	for _, e := range c.Entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// Keys returns the entry keys in catalogue order.
func (c Catalogue) Keys() []string {
	keys := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// Clone returns a copy whose Entries slice is not shared with c.
func (c Catalogue) Clone() Catalogue {
	out := c
	out.Entries = append([]Entry(nil), c.Entries...)
	return out
}

// Validate checks the catalogue has at least one entry and unique, non-empty keys.
func (c Catalogue) Validate() error {
	if len(c.Entries) == 0 {
		return errors.New("palette catalogue has no entries")
	}
	seen := make(map[string]struct{}, len(c.Entries))
	for i, e := range c.Entries {
		if e.Key == "" {
			return fmt.Errorf("palette entry %d has an empty key", i)
		}
		if _, dup := seen[e.Key]; dup {
			return fmt.Errorf("palette key %q is duplicated", e.Key)
		}
		seen[e.Key] = struct{}{}
	}
	return nil
}
