// Package taxonomy holds the category lists offered per transaction kind.
// The defaults are embedded and can be replaced by a YAML file.
package taxonomy

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"financeiro/internal/core"
)

//go:embed categories.yaml
var embeddedTaxonomy []byte

type Rule struct {
	Pattern  string `yaml:"pattern"`
	Category string `yaml:"category"`
}

type document struct {
	Categories struct {
		Income  []string `yaml:"income"`
		Expense []string `yaml:"expense"`
	} `yaml:"categories"`
	Rules []Rule `yaml:"rules"`
}

// Taxonomy is immutable after construction and safe for concurrent use.
type Taxonomy struct {
	income  []string
	expense []string
	rules   []Rule
	index   map[core.Kind]map[string]string // folded name -> canonical name
}

// Parse builds a taxonomy from YAML. Both category lists must be non-empty,
// and "Outros" is appended to a list that lacks it.
func Parse(data []byte) (*Taxonomy, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	if len(doc.Categories.Income) == 0 {
		return nil, fmt.Errorf("taxonomy: no income categories")
	}
	if len(doc.Categories.Expense) == 0 {
		return nil, fmt.Errorf("taxonomy: no expense categories")
	}

	t := &Taxonomy{
		income:  withFallback(doc.Categories.Income),
		expense: withFallback(doc.Categories.Expense),
		index:   make(map[core.Kind]map[string]string),
	}
	t.index[core.Income] = buildIndex(t.income)
	t.index[core.Expense] = buildIndex(t.expense)

	for i, r := range doc.Rules {
		if strings.TrimSpace(r.Pattern) == "" {
			return nil, fmt.Errorf("taxonomy: rule %d has an empty pattern", i)
		}
		canonical, ok := t.index[core.Expense][fold(r.Category)]
		if !ok {
			return nil, fmt.Errorf("taxonomy: rule %d (%s): unknown expense category %q", i, r.Pattern, r.Category)
		}
		t.rules = append(t.rules, Rule{Pattern: fold(r.Pattern), Category: canonical})
	}
	return t, nil
}

// Default returns the embedded taxonomy.
func Default() *Taxonomy {
	t, err := Parse(embeddedTaxonomy)
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy is invalid: %v", err))
	}
	return t
}

// Load reads path, or returns the embedded taxonomy when path is empty.
func Load(path string) (*Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy file: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy from %q: %w", path, err)
	}
	return t, nil
}

// CategoriesFor lists the categories of kind in configured order.
func (t *Taxonomy) CategoriesFor(kind core.Kind) []string {
	switch kind {
	case core.Income:
		return append([]string(nil), t.income...)
	case core.Expense:
		return append([]string(nil), t.expense...)
	}
	return nil
}

// Canonical maps a user-supplied category to its configured spelling, ignoring
// case and accents. Unknown or empty names map to "Outros".
func (t *Taxonomy) Canonical(kind core.Kind, category string) string {
	if name, ok := t.index[kind][fold(category)]; ok {
		return name
	}
	return core.OtherCategory
}

// Known reports whether category is configured for kind.
func (t *Taxonomy) Known(kind core.Kind, category string) bool {
	_, ok := t.index[kind][fold(category)]
	return ok
}

// Suggest proposes an expense category from a description, or "Outros".
func (t *Taxonomy) Suggest(description string) string {
	d := fold(description)
	if d == "" {
		return core.OtherCategory
	}
	for _, r := range t.rules {
		if strings.Contains(d, r.Pattern) {
			return r.Category
		}
	}
	return core.OtherCategory
}

func withFallback(names []string) []string {
	out := make([]string, 0, len(names)+1)
	seen := make(map[string]bool)
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[fold(n)] {
			continue
		}
		seen[fold(n)] = true
		out = append(out, n)
	}
	if !seen[fold(core.OtherCategory)] {
		out = append(out, core.OtherCategory)
	}
	return out
}

func buildIndex(names []string) map[string]string {
	idx := make(map[string]string, len(names))
	for _, n := range names {
		idx[fold(n)] = n
	}
	return idx
}

// fold lowercases s and strips diacritics so "Saúde" and "saude" compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
