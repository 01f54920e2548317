// Package personnel decides whether a product run is personnel-intensive.
//
// Planners maintain a list of product terms (for example "handarbeit") and
// aliases mapping shop-floor spellings to a canonical term. A product is
// personnel-intensive when its lower-cased name contains a term, or contains
// an alias whose canonical term is listed.
package personnel

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config lists terms and aliases. File, when set, is merged on top.
type Config struct {
	Terms   []string          `json:"terms" yaml:"terms"`
	Aliases map[string]string `json:"aliases" yaml:"aliases"`
	File    string            `json:"file" yaml:"-"`
}

// Validate rejects empty terms and aliases.
func (c Config) Validate() error {
	for _, t := range c.Terms {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("personnel: empty term")
		}
	}
	for k, v := range c.Aliases {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			return fmt.Errorf("personnel: empty alias %q -> %q", k, v)
		}
	}
	return nil
}

// Resolver matches product names against the configured terms.
type Resolver struct {
	terms   map[string]struct{}
	aliases map[string]string
}

// NewResolver normalises terms and aliases to lower case.
func NewResolver(terms []string, aliases map[string]string) *Resolver {
	r := &Resolver{terms: make(map[string]struct{}, len(terms)), aliases: make(map[string]string, len(aliases))}
	for _, t := range terms {
		if t = normalize(t); t != "" {
			r.terms[t] = struct{}{}
		}
	}
	for k, v := range aliases {
		if k, v = normalize(k), normalize(v); k != "" && v != "" {
			r.aliases[k] = v
		}
	}
	return r
}

// FromConfig builds a resolver from cfg, loading cfg.File when set.
func FromConfig(cfg Config) (*Resolver, error) {
	terms := append([]string(nil), cfg.Terms...)
	aliases := make(map[string]string, len(cfg.Aliases))
	for k, v := range cfg.Aliases {
		aliases[k] = v
	}
	if cfg.File != "" {
		fc, err := LoadFile(cfg.File)
		if err != nil {
			return nil, err
		}
		terms = append(terms, fc.Terms...)
		for k, v := range fc.Aliases {
			aliases[k] = v
		}
	}
	return NewResolver(terms, aliases), nil
}

// LoadFile reads a YAML document with "terms" and "aliases" keys.
func LoadFile(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("personnel: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("personnel: parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Empty reports whether the resolver can never match.
func (r *Resolver) Empty() bool {
	return r == nil || (len(r.terms) == 0 && len(r.aliases) == 0)
}

// IsPersonnelIntensive matches product against terms and aliases.
func (r *Resolver) IsPersonnelIntensive(product string) bool {
	if r.Empty() {
		return false
	}
	s := normalize(product)
	if s == "" {
		return false
	}
	for term := range r.terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	for alias, canon := range r.aliases {
		if !strings.Contains(s, alias) {
			continue
		}
		if _, ok := r.terms[canon]; ok {
			return true
		}
	}
	return false
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
