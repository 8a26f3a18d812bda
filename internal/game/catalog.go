package game

import (
	"errors"
	"fmt"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

// Catalog is the validated set of difficulties a server offers. It is the
// factory for new sessions.
type Catalog struct {
	order  []string
	byName map[string]Difficulty
}

// NewCatalog builds a catalog from the presets plus any extra difficulties.
// An extra difficulty with a preset's name replaces that preset.
func NewCatalog(extra ...Difficulty) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]Difficulty)}
	for _, d := range append(Presets(), extra...) {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, ok := c.byName[d.Name]; !ok {
			c.order = append(c.order, d.Name)
		}
		c.byName[d.Name] = d
	}
	return c, nil
}

// Lookup returns the difficulty registered under name.
func (c *Catalog) Lookup(name string) (Difficulty, error) {
	d, ok := c.byName[name]
	if !ok {
		return Difficulty{}, fmt.Errorf("%w: %s", ErrUnknownDifficulty, name)
	}
	return d, nil
}

// List returns every difficulty in registration order.
func (c *Catalog) List() []Difficulty {
	out := make([]Difficulty, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.byName[name])
	}
	return out
}

// NewSession starts a fresh ready session for the named difficulty.
func (c *Catalog) NewSession(name string, placer MinePlacer) (*Session, error) {
	d, err := c.Lookup(name)
	if err != nil {
		return nil, err
	}
	return NewSession(d, placer)
}
