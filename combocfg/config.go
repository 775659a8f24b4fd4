// Package combocfg loads combo registries from YAML configuration
// files, the declarative-asset-description role gopkg.in/yaml.v3 plays
// elsewhere in the example pack.
package combocfg

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vinewz/combo-engine/combo"
)

// file is the on-disk shape of a combo configuration document.
type file struct {
	Combos []comboEntry `yaml:"combos"`
}

type comboEntry struct {
	Kind          string   `yaml:"kind"`
	Match         []string `yaml:"match"`
	Result        string   `yaml:"result"`
	FastReset     *bool    `yaml:"fast_reset"`
	PerKeyTimeout *bool    `yaml:"per_key_timeout"`
	TimeoutMS     *int     `yaml:"timeout_ms"`
	MatchCoord    bool     `yaml:"match_coord"`
}

// Load parses the YAML document at path and returns a validated
// combo.Registry built from it.
func Load(path string) (combo.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return combo.Registry{}, fmt.Errorf("combocfg: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a combo.Registry from a YAML document's bytes.
func Parse(data []byte) (combo.Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return combo.Registry{}, fmt.Errorf("combocfg: parsing yaml: %w", err)
	}

	defs := make([]combo.Def, 0, len(f.Combos))
	for i, entry := range f.Combos {
		d, err := entry.toDef()
		if err != nil {
			return combo.Registry{}, fmt.Errorf("combocfg: combo %d: %w", i, err)
		}
		defs = append(defs, d)
	}
	return combo.NewRegistry(defs)
}

func (e comboEntry) toDef() (combo.Def, error) {
	match := make([]combo.Ref, 0, len(e.Match))
	for _, m := range e.Match {
		ref, err := parseRef(m, e.MatchCoord)
		if err != nil {
			return combo.Def{}, err
		}
		match = append(match, ref)
	}

	var d combo.Def
	switch e.Kind {
	case "chord", "":
		d = combo.NewChord(match, combo.Key(e.Result))
	case "sequence":
		d = combo.NewSequence(match, combo.Key(e.Result))
	default:
		return combo.Def{}, fmt.Errorf("unknown kind %q", e.Kind)
	}

	d.MatchCoord = e.MatchCoord
	if e.FastReset != nil {
		d.FastReset = *e.FastReset
	}
	if e.PerKeyTimeout != nil {
		d.PerKeyTimeout = *e.PerKeyTimeout
	}
	if e.TimeoutMS != nil {
		d.Timeout = time.Duration(*e.TimeoutMS) * time.Millisecond
	}
	return d, nil
}

// parseRef resolves one match-tuple entry. In coord mode the string
// must parse as a decimal integer matrix position; otherwise it's
// resolved against the key table (which includes the LEADER/LDR
// sentinel).
func parseRef(s string, matchCoord bool) (combo.Ref, error) {
	if matchCoord {
		c, err := parseCoord(s)
		if err != nil {
			return combo.Ref{}, fmt.Errorf("match entry %q: %w", s, err)
		}
		return combo.CoordRef(c), nil
	}
	key, err := ResolveKey(s)
	if err != nil {
		return combo.Ref{}, err
	}
	return combo.KeyRef(key), nil
}

func parseCoord(s string) (combo.Coord, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, fmt.Errorf("not an integer coordinate: %w", err)
	}
	return combo.Coord(n), nil
}
