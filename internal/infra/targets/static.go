// Package targets resolves party labels to the mentions that should be pinged for them.
package targets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// StaticResolver looks labels up case-insensitively in a fixed table.
type StaticResolver struct {
	groups map[string][]string
}

func NewStaticResolver(groups map[string][]string) *StaticResolver {
	r := &StaticResolver{groups: make(map[string][]string, len(groups))}
	for label, mentions := range groups {
		r.add(label, mentions)
	}
	return r
}

func (r *StaticResolver) add(label string, mentions []string) {
	key := normalize(label)
	if key == "" {
		return
	}
	for _, m := range mentions {
		if m = strings.TrimSpace(m); m != "" {
			r.groups[key] = append(r.groups[key], m)
		}
	}
}

// ResolveTargets returns nil for unknown labels.
func (r *StaticResolver) ResolveTargets(partyLabel string) []string {
	mentions := r.groups[normalize(partyLabel)]
	if len(mentions) == 0 {
		return nil
	}
	return append([]string(nil), mentions...)
}

func normalize(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// ParseInline reads "label=@a @b;label2=@c".
func ParseInline(spec string) (map[string][]string, error) {
	groups := make(map[string][]string)
	for _, entry := range strings.Split(spec, ";") {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		label, mentions, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(label) == "" {
			return nil, fmt.Errorf("invalid target group %q, expected label=@mention", entry)
		}
		label = strings.TrimSpace(label)
		groups[label] = append(groups[label], strings.Fields(mentions)...)
	}
	return groups, nil
}

// LoadFile reads a YAML mapping of label to a list of mentions.
func LoadFile(path string) (map[string][]string, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read target groups: %w", err)
	}

	var groups map[string][]string
	if err := yaml.Unmarshal(contents, &groups); err != nil {
		return nil, fmt.Errorf("unmarshal target groups: %w", err)
	}
	return groups, nil
}

// Merge combines tables; later tables append to earlier ones.
func Merge(tables ...map[string][]string) map[string][]string {
	merged := make(map[string][]string)
	for _, table := range tables {
		for label, mentions := range table {
			merged[label] = append(merged[label], mentions...)
		}
	}
	return merged
}
