// Package preferences stores display preferences as a nested JSON tree.
//
// The core pipeline never reads these values; they are carried for the
// presentation layer. Keys keep their exact case (notesPerPage,
// keyboard_shortcuts), which is why the tree is handled as plain JSON
// rather than through the config layer.
package preferences

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Defaults returns a fresh copy of the default preference tree.
func Defaults() map[string]any {
	return map[string]any{
		"theme":            "light",
		"defaultSortOrder": "date-desc",
		"sidebarExpanded":  true,
		"notesPerPage":     20,
		"autoSave":         true,
		"fontSize":         "medium",
		"defaultView":      "grid",
		"refreshInterval":  60,
		"notifications": map[string]any{
			"enabled": true,
			"sound":   true,
			"desktop": true,
		},
		"keyboard_shortcuts": map[string]any{
			"enabled": true,
		},
	}
}

type Preferences struct {
	path   string
	values map[string]any
	mu     sync.RWMutex
}

// Load reads the preferences file at path and deep-merges it over the
// defaults. A missing file is created with the defaults. Any error is
// logged and the defaults are used, so Load always returns usable
// preferences.
func Load(path string) *Preferences {
	p := &Preferences{path: path, values: Defaults()}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("ERROR: failed to read preferences %s: %v", path, err)
			return p
		}
		if err := p.Save(); err != nil {
			log.Printf("ERROR: failed to create preferences %s: %v", path, err)
		}
		return p
	}

	var user map[string]any
	if err := json.Unmarshal(data, &user); err != nil {
		log.Printf("ERROR: failed to parse preferences %s: %v", path, err)
		return p
	}

	deepUpdate(p.values, user)
	return p
}

func (p *Preferences) Path() string {
	return p.path
}

// Get returns the value at a dotted key path such as "notifications.sound".
func (p *Preferences) Get(keyPath string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var current any = p.values
	for _, key := range strings.Split(keyPath, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// GetOr returns the value at keyPath, or fallback when it is not set.
func (p *Preferences) GetOr(keyPath string, fallback any) any {
	if value, ok := p.Get(keyPath); ok {
		return value
	}
	return fallback
}

// Set stores value at a dotted key path, creating or replacing intermediate
// maps as needed, and saves the file.
func (p *Preferences) Set(keyPath string, value any) error {
	keys := strings.Split(keyPath, ".")
	for _, key := range keys {
		if key == "" {
			return fmt.Errorf("invalid preference key %q", keyPath)
		}
	}

	p.mu.Lock()
	target := p.values
	for _, key := range keys[:len(keys)-1] {
		next, ok := target[key].(map[string]any)
		if !ok {
			next = make(map[string]any)
			target[key] = next
		}
		target = next
	}
	target[keys[len(keys)-1]] = value
	p.mu.Unlock()

	return p.Save()
}

// Save writes the current tree to the preferences file.
func (p *Preferences) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "    ")
	p.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	if dir := filepath.Dir(p.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create preferences directory: %w", err)
		}
	}
	if err := os.WriteFile(p.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

// All returns a deep copy of the preference tree.
func (p *Preferences) All() map[string]any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return deepCopy(p.values)
}

// Flatten lists every leaf as "dotted.key" → value, sorted by key.
func (p *Preferences) Flatten() []Entry {
	var entries []Entry
	flatten("", p.All(), &entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// Entry is one leaf of the preference tree.
type Entry struct {
	Key   string
	Value any
}

// ParseValue interprets a command-line value: JSON literals (true, 20,
// null, {"a":1}) are decoded, anything else is kept as a string.
func ParseValue(raw string) any {
	var value any
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil || dec.More() {
		return raw
	}
	if n, ok := value.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return value
}

// deepUpdate merges source into target. Nested maps present on both sides
// are merged recursively; anything else in source replaces target's value.
func deepUpdate(target, source map[string]any) {
	for key, value := range source {
		if sub, ok := value.(map[string]any); ok {
			if existing, ok := target[key].(map[string]any); ok {
				deepUpdate(existing, sub)
				continue
			}
		}
		target[key] = value
	}
}

func deepCopy(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for key, value := range src {
		if sub, ok := value.(map[string]any); ok {
			dst[key] = deepCopy(sub)
			continue
		}
		dst[key] = value
	}
	return dst
}

func flatten(prefix string, node map[string]any, entries *[]Entry) {
	for key, value := range node {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if sub, ok := value.(map[string]any); ok && len(sub) > 0 {
			flatten(fullKey, sub, entries)
			continue
		}
		*entries = append(*entries, Entry{Key: fullKey, Value: value})
	}
}
