package rules

import (
	"fmt"
	"regexp"
	"sync"
)

// Class names one of the registry's rule lists.
type Class string

const (
	Float              Class = "float"
	Manage             Class = "manage"
	BorderOverflow     Class = "border-overflow"
	TrayAndMultiWindow Class = "tray-and-multi-window"
	Layered            Class = "layered"
	ObjectNameChange   Class = "object-name-change"
)

// Classes lists every rule class in a stable order.
var Classes = []Class{Float, Manage, BorderOverflow, TrayAndMultiWindow, Layered, ObjectNameChange}

type ruleList struct {
	mu    sync.RWMutex
	rules []Identifier
}

// Registry holds the window-classification rule lists and the compiled
// pattern cache. Every list is guarded independently so window classification
// during event handling never blocks behind an unrelated list's update.
type Registry struct {
	lists map[Class]*ruleList

	patternMu sync.RWMutex
	patterns  map[string]*regexp.Regexp
}

// NewRegistry returns an empty registry with all rule classes present.
func NewRegistry() *Registry {
	lists := make(map[Class]*ruleList, len(Classes))
	for _, class := range Classes {
		lists[class] = &ruleList{}
	}
	return &Registry{
		lists:    lists,
		patterns: make(map[string]*regexp.Regexp),
	}
}

// Merge unions incoming identifiers into the named list. Identifiers without
// a matching strategy default to Legacy before comparison, so reapplying the
// same list is a no-op. Regex identifiers have their id compiled into the
// pattern cache once per distinct id; a compilation failure aborts the merge.
func (r *Registry) Merge(class Class, incoming []Identifier) error {
	list, ok := r.lists[class]
	if !ok {
		return fmt.Errorf("unknown rule class %q", class)
	}

	list.mu.Lock()
	defer list.mu.Unlock()

	for _, identifier := range incoming {
		if identifier.MatchingStrategy == "" {
			identifier.MatchingStrategy = MatchLegacy
		}

		if containsIdentifier(list.rules, identifier) {
			continue
		}

		if identifier.MatchingStrategy == MatchRegex {
			if err := r.cachePattern(identifier.ID); err != nil {
				return err
			}
		}

		list.rules = append(list.rules, identifier)
	}

	return nil
}

// Rules returns a copy of the named list.
func (r *Registry) Rules(class Class) []Identifier {
	list, ok := r.lists[class]
	if !ok {
		return nil
	}

	list.mu.RLock()
	defer list.mu.RUnlock()
	out := make([]Identifier, len(list.rules))
	copy(out, list.rules)
	return out
}

// MatchesAny reports whether any rule of the given class and kind matches the
// subject string.
func (r *Registry) MatchesAny(class Class, kind Kind, subject string) bool {
	list, ok := r.lists[class]
	if !ok {
		return false
	}

	list.mu.RLock()
	defer list.mu.RUnlock()

	for _, identifier := range list.rules {
		if identifier.Kind != kind {
			continue
		}
		switch identifier.MatchingStrategy {
		case MatchLiteral:
			if identifier.ID == subject {
				return true
			}
		case MatchRegex:
			if re, ok := r.Pattern(identifier.ID); ok && re.MatchString(subject) {
				return true
			}
		default:
			if identifier.matchesLegacy(subject) {
				return true
			}
		}
	}
	return false
}

// Matches reports whether a standalone identifier matches the subject
// string. Regex identifiers compile through the shared pattern cache.
func (r *Registry) Matches(identifier Identifier, subject string) bool {
	switch identifier.MatchingStrategy {
	case MatchLiteral:
		return identifier.ID == subject
	case MatchRegex:
		if err := r.cachePattern(identifier.ID); err != nil {
			return false
		}
		re, _ := r.Pattern(identifier.ID)
		return re.MatchString(subject)
	default:
		return identifier.matchesLegacy(subject)
	}
}

// Pattern returns the compiled pattern for an id, if one has been cached.
func (r *Registry) Pattern(id string) (*regexp.Regexp, bool) {
	r.patternMu.RLock()
	defer r.patternMu.RUnlock()
	re, ok := r.patterns[id]
	return re, ok
}

// PatternCount returns the number of cached patterns.
func (r *Registry) PatternCount() int {
	r.patternMu.RLock()
	defer r.patternMu.RUnlock()
	return len(r.patterns)
}

func (r *Registry) cachePattern(id string) error {
	r.patternMu.Lock()
	defer r.patternMu.Unlock()

	if _, ok := r.patterns[id]; ok {
		return nil
	}

	re, err := regexp.Compile(id)
	if err != nil {
		return fmt.Errorf("invalid regex rule %q: %w", id, err)
	}
	r.patterns[id] = re
	return nil
}

func containsIdentifier(rules []Identifier, identifier Identifier) bool {
	for _, existing := range rules {
		if existing == identifier {
			return true
		}
	}
	return false
}
