// Package catalog is the read-only card database: descriptors keyed by name
// or numeric id, loaded once from YAML.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/mana"
)

//go:embed cards.yaml
var embeddedCards []byte

// CardID identifies a descriptor within one Catalog.
type CardID uint32

// Descriptor is a card's printed characteristics.
type Descriptor struct {
	ID         CardID
	Name       string
	Types      Types
	Supertypes []Supertype
	Subtypes   []Subtype
	// ManaCost is only meaningful when HasCost is set. Lands have no cost.
	ManaCost mana.Cost
	HasCost  bool
	// PT is nil for cards without power/toughness.
	PT *effects.PTCharacteristic
}

// HasSupertype reports whether st is printed on the card.
func (d *Descriptor) HasSupertype(st Supertype) bool {
	for _, x := range d.Supertypes {
		if x == st {
			return true
		}
	}
	return false
}

type cardFile struct {
	Cards []cardEntry `yaml:"cards"`
}

type cardEntry struct {
	Name       string   `yaml:"name"`
	Types      []string `yaml:"types"`
	Supertypes []string `yaml:"supertypes"`
	Subtypes   []string `yaml:"subtypes"`
	ManaCost   *string  `yaml:"mana_cost"`
	Power      *string  `yaml:"power"`
	Toughness  *string  `yaml:"toughness"`
}

// Catalog maps card names and ids to descriptors. It is never mutated after
// loading.
type Catalog struct {
	cards  []Descriptor
	byName map[string]CardID
}

// Default loads the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(embeddedCards))
}

// LoadFile loads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return c, nil
}

// Load parses a YAML catalog. Every invalid entry is reported, not only the
// first.
func Load(r io.Reader) (*Catalog, error) {
	var file cardFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(file.Cards) == 0 {
		return nil, fmt.Errorf("catalog contains no cards")
	}

	resolver, err := effects.NewExprResolver()
	if err != nil {
		return nil, err
	}

	c := &Catalog{byName: make(map[string]CardID, len(file.Cards))}
	var errs error
	for i, entry := range file.Cards {
		desc, err := entry.descriptor(resolver)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("card %d (%q): %w", i, entry.Name, err))
			continue
		}
		if _, dup := c.byName[desc.Name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("card %d: duplicate name %q", i, desc.Name))
			continue
		}
		desc.ID = CardID(len(c.cards))
		c.byName[desc.Name] = desc.ID
		c.cards = append(c.cards, desc)
	}
	if errs != nil {
		return nil, errs
	}
	return c, nil
}

func (e cardEntry) descriptor(resolver *effects.ExprResolver) (Descriptor, error) {
	var errs error
	d := Descriptor{Name: strings.TrimSpace(e.Name)}
	if d.Name == "" {
		errs = multierr.Append(errs, fmt.Errorf("name is required"))
	}

	if len(e.Types) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("at least one type is required"))
	}
	for _, raw := range e.Types {
		t := CardType(strings.ToLower(strings.TrimSpace(raw)))
		if !knownTypes[t] {
			errs = multierr.Append(errs, fmt.Errorf("unknown type %q", raw))
			continue
		}
		d.Types = append(d.Types, t)
	}
	for _, raw := range e.Supertypes {
		st := Supertype(strings.ToLower(strings.TrimSpace(raw)))
		if !knownSupertypes[st] {
			errs = multierr.Append(errs, fmt.Errorf("unknown supertype %q", raw))
			continue
		}
		d.Supertypes = append(d.Supertypes, st)
	}
	for _, raw := range e.Subtypes {
		d.Subtypes = append(d.Subtypes, Subtype(strings.ToLower(strings.TrimSpace(raw))))
	}

	if e.ManaCost != nil {
		cost, err := mana.ParseCost(*e.ManaCost)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else {
			d.ManaCost = cost
			d.HasCost = true
		}
	}

	switch {
	case e.Power == nil && e.Toughness == nil:
		if d.Types.Has(TypeCreature) {
			errs = multierr.Append(errs, fmt.Errorf("creature requires power and toughness"))
		}
	case e.Power == nil || e.Toughness == nil:
		errs = multierr.Append(errs, fmt.Errorf("power and toughness must be given together"))
	default:
		pt, err := parsePT(*e.Power, *e.Toughness, resolver)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else {
			d.PT = &pt
		}
	}

	return d, errs
}

func parsePT(power, toughness string, resolver *effects.ExprResolver) (effects.PTCharacteristic, error) {
	var pt effects.PTCharacteristic
	var errs error
	for _, half := range []struct {
		raw string
		out *effects.PTValue
	}{{power, &pt.Power}, {toughness, &pt.Toughness}} {
		v, err := effects.ParsePTValue(half.raw)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if v.IsExpr() {
			if err := resolver.Compile(v.Expr); err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
		}
		*half.out = v
	}
	return pt, errs
}

// Lookup returns the id of the named card.
func (c *Catalog) Lookup(name string) (CardID, bool) {
	id, ok := c.byName[name]
	return id, ok
}

// Card returns the descriptor for id.
func (c *Catalog) Card(id CardID) (*Descriptor, bool) {
	if int(id) >= len(c.cards) {
		return nil, false
	}
	return &c.cards[id], true
}

// ByName returns the descriptor of the named card.
func (c *Catalog) ByName(name string) (*Descriptor, bool) {
	id, ok := c.Lookup(name)
	if !ok {
		return nil, false
	}
	return c.Card(id)
}

// Len returns the number of cards.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// Names returns every card name sorted alphabetically.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.cards))
	for _, d := range c.cards {
		names = append(names, d.Name)
	}
	sort.Strings(names)
	return names
}
