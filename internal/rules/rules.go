// Package rules holds the window-classification rules shared between the
// configuration reconciler and the window-event hook.
package rules

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind says which window attribute an identifier is compared against.
type Kind string

const (
	KindExe   Kind = "Exe"
	KindClass Kind = "Class"
	KindTitle Kind = "Title"
)

// UnmarshalJSON validates the kind against the known set.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch Kind(s) {
	case KindExe, KindClass, KindTitle:
		*k = Kind(s)
		return nil
	default:
		return fmt.Errorf("unknown application identifier kind %q", s)
	}
}

// UnmarshalYAML validates the kind when read from an application-specific
// configuration file.
func (k *Kind) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch Kind(s) {
	case KindExe, KindClass, KindTitle:
		*k = Kind(s)
		return nil
	default:
		return fmt.Errorf("unknown application identifier kind %q", s)
	}
}

// MatchingStrategy says how an identifier's id string is compared against a
// window attribute.
type MatchingStrategy string

const (
	// MatchLegacy is the pre-strategy comparison: exact for executables,
	// prefix for classes and titles.
	MatchLegacy MatchingStrategy = "Legacy"
	// MatchLiteral is an exact string comparison.
	MatchLiteral MatchingStrategy = "Literal"
	// MatchRegex compiles the id as a regular expression.
	MatchRegex MatchingStrategy = "Regex"
)

// UnmarshalJSON validates the strategy against the known set.
func (m *MatchingStrategy) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch MatchingStrategy(s) {
	case MatchLegacy, MatchLiteral, MatchRegex:
		*m = MatchingStrategy(s)
		return nil
	default:
		return fmt.Errorf("unknown matching strategy %q", s)
	}
}

// UnmarshalYAML validates the strategy when read from an application-specific
// configuration file.
func (m *MatchingStrategy) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch MatchingStrategy(s) {
	case MatchLegacy, MatchLiteral, MatchRegex:
		*m = MatchingStrategy(s)
		return nil
	default:
		return fmt.Errorf("unknown matching strategy %q", s)
	}
}

// Identifier is a single window-classification rule. Equality is structural
// across all three fields; an empty MatchingStrategy is distinct from
// MatchLegacy until a merge defaults it.
type Identifier struct {
	Kind             Kind             `json:"kind" yaml:"kind"`
	ID               string           `json:"id" yaml:"id"`
	MatchingStrategy MatchingStrategy `json:"matching_strategy,omitempty" yaml:"matching_strategy,omitempty"`
}

// matchesLegacy applies the pre-strategy comparison.
func (i Identifier) matchesLegacy(subject string) bool {
	if i.Kind == KindExe {
		return i.ID == subject
	}
	return strings.HasPrefix(subject, i.ID)
}
