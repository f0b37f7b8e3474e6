package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SetValue writes a dotted key into the config file, creating the file
// and its directory on first use. Values that look like numbers or
// booleans are stored as such so viper reads them back typed.
func SetValue(path, key, value string) error {
	doc, err := readDoc(path)
	if err != nil {
		return err
	}

	parts := strings.Split(key, ".")
	node := doc
	for _, part := range parts[:len(parts)-1] {
		child, ok := node[part].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[part] = child
		}
		node = child
	}
	node[parts[len(parts)-1]] = coerce(value)

	return writeDoc(path, doc)
}

// GetValue reads a dotted key from the config file. The second return is
// false when the key is absent.
func GetValue(path, key string) (string, bool, error) {
	doc, err := readDoc(path)
	if err != nil {
		return "", false, err
	}

	var cur any = map[string]any(doc)
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return "", false, nil
		}
		cur, ok = m[part]
		if !ok {
			return "", false, nil
		}
	}
	if _, ok := cur.(map[string]any); ok {
		return "", false, nil
	}
	return fmt.Sprintf("%v", cur), true, nil
}

func readDoc(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return make(map[string]any), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	doc := make(map[string]any)
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

func writeDoc(path string, doc map[string]any) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	// API keys live in here; keep it owner-readable only.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func coerce(value string) any {
	if b, err := strconv.ParseBool(value); err == nil && isBoolWord(value) {
		return b
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

func isBoolWord(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false":
		return true
	}
	return false
}
