// Package catalog maps canonical disease names to reference image paths and
// lists the diseases known for each supported crop.
package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// Entry is one reference disease.
type Entry struct {
	Name     string `json:"name"`
	Crop     string `json:"crop"`
	BasePath string `json:"base_path"`
}

// Catalog is an immutable lookup table of reference diseases.
type Catalog struct {
	entries []Entry
	byKey   map[string]int
	crops   []string
}

// New validates entries and builds a Catalog. Keys are normalised by
// trimming and lower-casing; a collision after normalisation is an error,
// as is an entry without a name, crop, or base path.
func New(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		byKey:   make(map[string]int, len(entries)),
	}

	for _, e := range entries {
		key := Normalize(e.Name)
		switch {
		case key == "":
			return nil, fmt.Errorf("%w: empty name", ErrInvalidEntry)
		case strings.TrimSpace(e.Crop) == "":
			return nil, fmt.Errorf("%w: %q has no crop", ErrInvalidEntry, e.Name)
		case strings.TrimSpace(e.BasePath) == "":
			return nil, fmt.Errorf("%w: %q has no base path", ErrInvalidEntry, e.Name)
		}
		if prev, ok := c.byKey[key]; ok {
			return nil, fmt.Errorf("%w: %q collides with %q", ErrDuplicateKey, e.Name, c.entries[prev].Name)
		}

		c.byKey[key] = len(c.entries)
		c.entries = append(c.entries, e)
		if !slices.Contains(c.crops, e.Crop) {
			c.crops = append(c.crops, e.Crop)
		}
	}

	return c, nil
}

// Default returns the built-in Apple, Rice, and Tomato catalog.
func Default() *Catalog {
	c, err := New(defaultEntries)
	if err != nil {
		panic(err)
	}
	return c
}

// Normalize trims and lower-cases a label for lookup.
func Normalize(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// Lookup finds the entry whose normalised name equals the normalised label.
func (c *Catalog) Lookup(label string) (Entry, bool) {
	i, ok := c.byKey[Normalize(label)]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Crops returns the supported crops in declaration order.
func (c *Catalog) Crops() []string {
	return slices.Clone(c.crops)
}

// SupportsCrop reports whether crop is in the catalog. Matching is
// case-insensitive.
func (c *Catalog) SupportsCrop(crop string) bool {
	_, ok := c.CanonicalCrop(crop)
	return ok
}

// Diseases returns the disease names for crop in declaration order, or nil
// for an unknown crop.
func (c *Catalog) Diseases(crop string) []string {
	canonical, ok := c.CanonicalCrop(crop)
	if !ok {
		return nil
	}
	var names []string
	for _, e := range c.entries {
		if e.Crop == canonical {
			names = append(names, e.Name)
		}
	}
	return names
}

// ByCrop returns every crop mapped to its disease names.
func (c *Catalog) ByCrop() map[string][]string {
	out := make(map[string][]string, len(c.crops))
	for _, crop := range c.crops {
		out[crop] = c.Diseases(crop)
	}
	return out
}

// CanonicalCrop returns the declared spelling of crop.
func (c *Catalog) CanonicalCrop(crop string) (string, bool) {
	key := Normalize(crop)
	for _, known := range c.crops {
		if Normalize(known) == key {
			return known, true
		}
	}
	return "", false
}
