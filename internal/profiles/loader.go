package profiles

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinProfiles embed.FS

const schemaPrefix = "repo-preflight.profiles/v"

var catalog = sync.OnceValues(loadCatalog)

// loadCatalog parses every embedded profile file.
func loadCatalog() (map[string]*Profile, error) {
	entries, err := builtinProfiles.ReadDir("builtin")
	if err != nil {
		return nil, fmt.Errorf("failed to read built-in profiles: %w", err)
	}

	out := make(map[string]*Profile)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := builtinProfiles.ReadFile("builtin/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read built-in profile %s: %w", entry.Name(), err)
		}

		var collection ProfileCollection
		if err := yaml.Unmarshal(data, &collection); err != nil {
			return nil, fmt.Errorf("failed to parse built-in profile %s: %w", entry.Name(), err)
		}
		if !strings.HasPrefix(collection.Schema, schemaPrefix) {
			return nil, fmt.Errorf("unsupported schema version in %s: %q", entry.Name(), collection.Schema)
		}

		for name, p := range collection.Profiles {
			p.Name = name
			if err := p.Validate(); err != nil {
				return nil, fmt.Errorf("invalid built-in profile: %w", err)
			}
			if _, dup := out[name]; dup {
				return nil, fmt.Errorf("built-in profile %q defined twice", name)
			}
			out[name] = &p
		}
	}
	return out, nil
}

// Load returns the built-in profile called name. The returned value is a
// copy and may be modified by the caller.
func Load(name string) (*Profile, error) {
	all, err := catalog()
	if err != nil {
		return nil, err
	}
	p, ok := all[name]
	if !ok {
		return nil, fmt.Errorf("profile %q not found in built-in profiles", name)
	}

	cp := *p
	cp.Checks = p.CheckIDs()
	return &cp, nil
}

// Exists reports whether name is a built-in profile.
func Exists(name string) bool {
	all, err := catalog()
	if err != nil {
		return false
	}
	_, ok := all[name]
	return ok
}

// List returns the built-in profile names, sorted.
func List() []string {
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
