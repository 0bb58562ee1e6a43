// Package reference provides static symbol metadata and the named symbol
// universes served by the stock pipelines.
package reference

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bobmcallan/stockdash/internal/models"
)

//go:embed symbols.yaml
var embedded []byte

type document struct {
	Symbols   []models.SymbolMetadata `yaml:"symbols"`
	Universes map[string][]string     `yaml:"universes"`
}

// Data is the loaded reference dataset. It is read-only after load.
type Data struct {
	symbols   map[string]models.SymbolMetadata
	universes map[string][]string
}

// Load reads the dataset from path, or the embedded dataset when path is empty.
func Load(path string) (*Data, error) {
	if path == "" {
		return Parse(embedded)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference file %s: %w", path, err)
	}
	data, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("reference file %s: %w", path, err)
	}
	return data, nil
}

// Default returns the embedded dataset. It panics if the embedded YAML is invalid.
func Default() *Data {
	data, err := Parse(embedded)
	if err != nil {
		panic(err)
	}
	return data
}

// Parse decodes a YAML reference document.
func Parse(raw []byte) (*Data, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse reference data: %w", err)
	}

	data := &Data{
		symbols:   make(map[string]models.SymbolMetadata, len(doc.Symbols)),
		universes: make(map[string][]string, len(doc.Universes)),
	}
	for _, m := range doc.Symbols {
		sym := strings.ToUpper(strings.TrimSpace(m.Symbol))
		if sym == "" {
			continue
		}
		m.Symbol = sym
		data.symbols[sym] = m
	}
	for name, syms := range doc.Universes {
		list := make([]string, 0, len(syms))
		seen := make(map[string]bool, len(syms))
		for _, s := range syms {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			list = append(list, s)
		}
		data.universes[strings.ToLower(name)] = list
	}
	return data, nil
}

// Lookup returns metadata for symbol.
func (d *Data) Lookup(symbol string) (models.SymbolMetadata, bool) {
	m, ok := d.symbols[strings.ToUpper(symbol)]
	return m, ok
}

// Universe returns a copy of the ordered symbol list for a universe.
func (d *Data) Universe(name string) ([]string, bool) {
	syms, ok := d.universes[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	out := make([]string, len(syms))
	copy(out, syms)
	return out, true
}

// Universes returns the names of all universes.
func (d *Data) Universes() []string {
	names := make([]string, 0, len(d.universes))
	for name := range d.universes {
		names = append(names, name)
	}
	return names
}

// Len returns the number of symbols with metadata.
func (d *Data) Len() int {
	return len(d.symbols)
}
