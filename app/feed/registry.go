package feed

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFeeds seeds the registry when no registry file exists yet.
var DefaultFeeds = map[string]string{
	"Rav Moshe Taragin": "http://www.yutorah.org/rss/RssAudioOnly/teacher/80307",
}

// Registry maps user-chosen feed names to RSS URLs. The canonical on-disk
// representation is a flat JSON object; YAML files with the same shape are
// accepted as well, chosen by file extension.
type Registry struct {
	path  string
	feeds map[string]string
}

func NewRegistry(path string) *Registry {
	return &Registry{
		path:  path,
		feeds: make(map[string]string),
	}
}

// Load reads the registry file. A missing file is not an error: the registry
// falls back to the built-in default entry.
func (r *Registry) Load() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		slog.Debug("Feed registry file not found, using defaults", "path", r.path)
		r.feeds = make(map[string]string, len(DefaultFeeds))
		for name, url := range DefaultFeeds {
			r.feeds[name] = url
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read feed registry: %w", err)
	}

	feeds := make(map[string]string)
	switch strings.ToLower(filepath.Ext(r.path)) {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &feeds); err != nil {
			return fmt.Errorf("failed to parse feed registry YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &feeds); err != nil {
			return fmt.Errorf("failed to parse feed registry JSON: %w", err)
		}
	}

	r.feeds = feeds
	return nil
}

func (r *Registry) Save() error {
	data, err := json.MarshalIndent(r.feeds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode feed registry: %w", err)
	}

	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write feed registry: %w", err)
	}

	return nil
}

func (r *Registry) Add(name, url string) error {
	if name == "" || url == "" {
		return fmt.Errorf("feed name and URL are required")
	}
	r.feeds[name] = url
	return nil
}

func (r *Registry) Delete(name string) error {
	if _, ok := r.feeds[name]; !ok {
		return fmt.Errorf("feed not found: %s", name)
	}
	delete(r.feeds, name)
	return nil
}

func (r *Registry) Get(name string) (string, bool) {
	url, ok := r.feeds[name]
	return url, ok
}

// Names returns feed names sorted for stable display.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.feeds))
	for name := range r.feeds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Count() int {
	return len(r.feeds)
}

// Resolve maps a feed selector to (name, url). A selector that looks like a
// URL is used directly, otherwise it is looked up as a registry name.
func (r *Registry) Resolve(selector string) (string, string, error) {
	if strings.HasPrefix(selector, "http://") || strings.HasPrefix(selector, "https://") {
		return "", selector, nil
	}

	url, ok := r.feeds[selector]
	if !ok {
		return "", "", fmt.Errorf("feed not found in registry: %s", selector)
	}
	return selector, url, nil
}
