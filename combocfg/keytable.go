package combocfg

import (
	"fmt"
	"strings"

	"github.com/vinewz/combo-engine/combo"
)

// aliases maps the short, human-typed names a configuration file uses
// to the Key symbol the rest of the module deals in. LEADER and LDR
// both resolve to the single combo.LeaderKey value, per spec.md §6's
// "sentinel key named LEADER (alias LDR)" — a combo configured with
// either name matches a physical event or combo built with the other.
var aliases = map[string]combo.Key{
	"LEADER": combo.LeaderKey,
	"LDR":    combo.LeaderKey,
}

// ResolveKey resolves a configuration-file key name to a combo.Key.
// Known aliases (case-insensitively) map to their canonical symbol;
// anything else is taken as a literal key symbol understood by
// whichever host binding ultimately dispatches it (e.g. "KEY_A").
func ResolveKey(name string) (combo.Key, error) {
	if name == "" {
		return "", fmt.Errorf("empty key name")
	}
	if k, ok := aliases[strings.ToUpper(name)]; ok {
		return k, nil
	}
	return combo.Key(name), nil
}
