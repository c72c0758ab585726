package rulepacks

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinRulePacks embed.FS

const schemaPrefix = "repo-preflight.rulepacks/v"

var catalog = sync.OnceValues(loadCatalog)

func loadCatalog() (map[string]*RulePack, error) {
	entries, err := builtinRulePacks.ReadDir("builtin")
	if err != nil {
		return nil, fmt.Errorf("failed to read built-in rule packs: %w", err)
	}

	out := make(map[string]*RulePack)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := builtinRulePacks.ReadFile("builtin/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read built-in rule pack %s: %w", entry.Name(), err)
		}

		var collection RulePackCollection
		if err := yaml.Unmarshal(data, &collection); err != nil {
			return nil, fmt.Errorf("failed to parse built-in rule pack %s: %w", entry.Name(), err)
		}
		if !strings.HasPrefix(collection.Schema, schemaPrefix) {
			return nil, fmt.Errorf("unsupported schema version in %s: %q", entry.Name(), collection.Schema)
		}

		for name, pack := range collection.RulePacks {
			pack.Name = name
			if err := pack.Validate(); err != nil {
				return nil, fmt.Errorf("invalid built-in rule pack: %w", err)
			}
			if _, dup := out[name]; dup {
				return nil, fmt.Errorf("built-in rule pack %q defined twice", name)
			}
			out[name] = &pack
		}
	}
	return out, nil
}

// Get returns a copy of the built-in rule pack called name.
func Get(name string) (*RulePack, error) {
	all, err := catalog()
	if err != nil {
		return nil, err
	}
	pack, ok := all[name]
	if !ok {
		return nil, fmt.Errorf("unknown rule pack: %s", name)
	}
	return pack.clone(), nil
}

// Names returns the built-in rule pack names, sorted.
func Names() []string {
	all, err := catalog()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns copies of every built-in rule pack, sorted by name.
func All() []*RulePack {
	names := Names()
	out := make([]*RulePack, 0, len(names))
	for _, name := range names {
		if pack, err := Get(name); err == nil {
			out = append(out, pack)
		}
	}
	return out
}
