package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tatamiwm/tatami/internal/rules"
)

// ApplicationOption flags one known quirk of an application. Each option
// maps to a rule list; force maps to the manage list.
type ApplicationOption string

const (
	OptionObjectNameChange   ApplicationOption = "object_name_change"
	OptionLayered            ApplicationOption = "layered"
	OptionBorderOverflow     ApplicationOption = "border_overflow"
	OptionTrayAndMultiWindow ApplicationOption = "tray_and_multi_window"
	OptionForce              ApplicationOption = "force"
)

// UnmarshalYAML validates the option against the known set.
func (o *ApplicationOption) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch ApplicationOption(s) {
	case OptionObjectNameChange, OptionLayered, OptionBorderOverflow,
		OptionTrayAndMultiWindow, OptionForce:
		*o = ApplicationOption(s)
		return nil
	default:
		return fmt.Errorf("unknown application option %q", s)
	}
}

// ApplicationConfiguration is one entry of the application-specific rule
// file: an application identifier plus the quirk handling it needs.
type ApplicationConfiguration struct {
	Name             string              `yaml:"name"`
	Identifier       rules.Identifier    `yaml:"identifier"`
	Options          []ApplicationOption `yaml:"options,omitempty"`
	FloatIdentifiers []rules.Identifier  `yaml:"float_identifiers,omitempty"`
}

// LoadAppSpecific reads and strictly parses the application-specific rule
// file. Unknown fields are rejected so typos surface instead of silently
// dropping a rule.
func LoadAppSpecific(path string) ([]ApplicationConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read application-specific configuration: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var entries []ApplicationConfiguration
	if err := decoder.Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to parse application-specific configuration %s: %w", path, err)
	}

	for i, entry := range entries {
		if entry.Identifier.Kind == "" || entry.Identifier.ID == "" {
			return nil, fmt.Errorf("application-specific entry %d (%q) has no identifier", i, entry.Name)
		}
	}
	return entries, nil
}

var optionClasses = map[ApplicationOption]rules.Class{
	OptionObjectNameChange:   rules.ObjectNameChange,
	OptionLayered:            rules.Layered,
	OptionBorderOverflow:     rules.BorderOverflow,
	OptionTrayAndMultiWindow: rules.TrayAndMultiWindow,
	OptionForce:              rules.Manage,
}

// applyAppSpecific expands application entries into the rule registry.
func applyAppSpecific(entries []ApplicationConfiguration, registry *rules.Registry) error {
	for _, entry := range entries {
		for _, option := range entry.Options {
			class, ok := optionClasses[option]
			if !ok {
				return fmt.Errorf("application %q carries unknown option %q", entry.Name, option)
			}
			if err := registry.Merge(class, []rules.Identifier{entry.Identifier}); err != nil {
				return fmt.Errorf("application %q: %w", entry.Name, err)
			}
		}
		if len(entry.FloatIdentifiers) > 0 {
			if err := registry.Merge(rules.Float, entry.FloatIdentifiers); err != nil {
				return fmt.Errorf("application %q: %w", entry.Name, err)
			}
		}
	}
	return nil
}
