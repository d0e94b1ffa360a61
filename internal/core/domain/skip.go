package domain

import (
	"path/filepath"
	"strings"
)

// SkipSet matches entry names case-insensitively against literal names and
// filepath.Match patterns.
type SkipSet struct {
	names    map[string]struct{}
	patterns []string
}

// NewSkipSet builds a SkipSet. Blank entries are ignored.
func NewSkipSet(skip []string) SkipSet {
	s := SkipSet{names: make(map[string]struct{}, len(skip))}
	for _, name := range skip {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if strings.ContainsAny(name, "*?[") {
			s.patterns = append(s.patterns, name)
			continue
		}
		s.names[name] = struct{}{}
	}
	return s
}

// Match reports whether name is excluded.
func (s SkipSet) Match(name string) bool {
	if len(s.names) == 0 && len(s.patterns) == 0 {
		return false
	}
	lower := strings.ToLower(name)
	if _, ok := s.names[lower]; ok {
		return true
	}
	for _, p := range s.patterns {
		if ok, _ := filepath.Match(p, lower); ok {
			return true
		}
	}
	return false
}

// MatchAny reports whether any of the path components is excluded.
func (s SkipSet) MatchAny(parts []string) bool {
	for _, part := range parts {
		if s.Match(part) {
			return true
		}
	}
	return false
}
