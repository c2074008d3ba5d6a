package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// Branch is a single hiring site inside a location.
type Branch struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	Phone    string   `json:"phone"`
	Address  string   `json:"address"`
	Keywords []string `json:"keywords"`

	folded []string
}

// Location groups one or more branches under a city or area name.
type Location struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Branches []Branch `json:"branches"`

	folded []string
}

// Questions holds the outbound text for each ordinary question of the screening.
type Questions struct {
	Age      string `json:"age"`
	Location string `json:"location"`
	Shift    string `json:"shift"`
	Weekends string `json:"weekends"`
}

// Catalog is the static reference data for one screening campaign: the
// question texts and the ordered list of locations. Order matters: the
// matcher resolves free text against entries in declaration order.
type Catalog struct {
	Questions Questions  `json:"questions"`
	Locations []Location `json:"locations"`
}

// New builds a catalog from already-assembled data, folding every keyword.
// Mostly useful for tests and tools that do not read a catalog file.
func New(questions Questions, locations []Location) (*Catalog, error) {
	c := &Catalog{Questions: questions, Locations: locations}
	if err := c.prepare(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads and validates a catalog file, pre-folding every keyword so
// matching does not re-normalize on each request.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog file %q: %w", path, err)
	}

	if err := c.prepare(); err != nil {
		return nil, fmt.Errorf("catalog file %q: %w", path, err)
	}

	return &c, nil
}

// prepare validates the catalog and builds the folded keyword sets.
func (c *Catalog) prepare() error {
	if len(c.Locations) == 0 {
		return fmt.Errorf("no locations defined")
	}

	seen := make(map[string]bool, len(c.Locations))
	for i := range c.Locations {
		loc := &c.Locations[i]
		if loc.Key == "" || loc.Name == "" {
			return fmt.Errorf("location %d: key and name are required", i)
		}
		if seen[loc.Key] {
			return fmt.Errorf("duplicate location key %q", loc.Key)
		}
		seen[loc.Key] = true

		if len(loc.Branches) == 0 {
			return fmt.Errorf("location %q: at least one branch is required", loc.Key)
		}

		loc.folded = foldAll(loc.Keywords, loc.Name, loc.Key)

		for j := range loc.Branches {
			br := &loc.Branches[j]
			if br.Key == "" || br.Name == "" {
				return fmt.Errorf("location %q: branch %d: key and name are required", loc.Key, j)
			}
			br.folded = foldAll(br.Keywords, br.Name, br.Key)
		}
	}

	return nil
}

// foldAll folds the hand-authored keywords plus the entry's name and key,
// dropping empty results.
func foldAll(keywords []string, name, key string) []string {
	out := make([]string, 0, len(keywords)+2)
	for _, kw := range keywords {
		if f := Fold(kw); f != "" {
			out = append(out, f)
		}
	}
	if f := Fold(name); f != "" {
		out = append(out, f)
	}
	if f := Fold(key); f != "" {
		out = append(out, f)
	}
	return out
}

// LocationByKey returns the location with the given key, or nil.
func (c *Catalog) LocationByKey(key string) *Location {
	for i := range c.Locations {
		if c.Locations[i].Key == key {
			return &c.Locations[i]
		}
	}
	return nil
}

// FindBranch returns the branch with the given display name, searching
// locations in catalog order, or nil when no branch carries that name.
func (c *Catalog) FindBranch(name string) *Branch {
	for i := range c.Locations {
		for j := range c.Locations[i].Branches {
			if c.Locations[i].Branches[j].Name == name {
				return &c.Locations[i].Branches[j]
			}
		}
	}
	return nil
}

// LocationNames returns the display names of all locations in catalog order.
func (c *Catalog) LocationNames() []string {
	names := make([]string, 0, len(c.Locations))
	for i := range c.Locations {
		names = append(names, c.Locations[i].Name)
	}
	return names
}

// BranchNames returns the display names of the location's branches in order.
func (l *Location) BranchNames() []string {
	names := make([]string, 0, len(l.Branches))
	for i := range l.Branches {
		names = append(names, l.Branches[i].Name)
	}
	return names
}
