// Package config loads, applies, and serializes the configuration document.
// The document is JSON; a secondary application-specific rule file is YAML.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tatamiwm/tatami/internal/rules"
	"github.com/tatamiwm/tatami/internal/settings"
	"github.com/tatamiwm/tatami/internal/wm"
	"github.com/tatamiwm/tatami/internal/x11"
)

// BorderColours groups the per-state border colours.
type BorderColours struct {
	Single  *settings.Colour `json:"single,omitempty"`
	Stack   *settings.Colour `json:"stack,omitempty"`
	Monocle *settings.Colour `json:"monocle,omitempty"`
}

// AnimationConfig controls window movement animation.
type AnimationConfig struct {
	Enabled  bool           `json:"enabled"`
	Duration *int64         `json:"duration,omitempty"`
	Style    *settings.Ease `json:"style,omitempty"`
}

// WorkspaceConfig is the document form of one workspace.
type WorkspaceConfig struct {
	Name                  string                   `json:"name"`
	Layout                *wm.DefaultLayout        `json:"layout,omitempty"`
	LayoutRules           map[int]wm.DefaultLayout `json:"layout_rules,omitempty"`
	ContainerPadding      *int                     `json:"container_padding,omitempty"`
	WorkspacePadding      *int                     `json:"workspace_padding,omitempty"`
	WorkspaceRules        []rules.Identifier       `json:"workspace_rules,omitempty"`
	InitialWorkspaceRules []rules.Identifier       `json:"initial_workspace_rules,omitempty"`
}

// MonitorConfig is the document form of one monitor.
type MonitorConfig struct {
	Workspaces     []WorkspaceConfig `json:"workspaces"`
	WorkAreaOffset *x11.Rect         `json:"work_area_offset,omitempty"`
}

// StaticConfig is the configuration document. Optional fields are pointers
// so an absent field is distinguishable from a zero value.
type StaticConfig struct {
	Border        *bool          `json:"border,omitempty"`
	BorderWidth   *int           `json:"border_width,omitempty"`
	BorderOffset  *int           `json:"border_offset,omitempty"`
	BorderColours *BorderColours `json:"border_colours,omitempty"`

	// Aliases kept for documents written before the border fields were
	// renamed. Resolved into the fields above during normalization and
	// never written back.
	ActiveWindowBorder        *bool          `json:"active_window_border,omitempty"`
	ActiveWindowBorderWidth   *int           `json:"active_window_border_width,omitempty"`
	ActiveWindowBorderOffset  *int           `json:"active_window_border_offset,omitempty"`
	ActiveWindowBorderColours *BorderColours `json:"active_window_border_colours,omitempty"`

	DefaultContainerPadding *int `json:"default_container_padding,omitempty"`
	DefaultWorkspacePadding *int `json:"default_workspace_padding,omitempty"`

	WindowHidingBehaviour             *settings.HidingBehaviour           `json:"window_hiding_behaviour,omitempty"`
	WindowContainerBehaviour          *wm.WindowContainerBehaviour        `json:"window_container_behaviour,omitempty"`
	CrossMonitorMoveBehaviour         *wm.MoveBehaviour                   `json:"cross_monitor_move_behaviour,omitempty"`
	UnmanagedWindowOperationBehaviour *wm.OperationBehaviour              `json:"unmanaged_window_operation_behaviour,omitempty"`
	ResizeDelta                       *int                                `json:"resize_delta,omitempty"`
	MouseFollowsFocus                 *bool                               `json:"mouse_follows_focus,omitempty"`
	FocusFollowsMouse                 *wm.FocusFollowsMouseImplementation `json:"focus_follows_mouse,omitempty"`

	MonitorIndexPreferences map[int]x11.Rect `json:"monitor_index_preferences,omitempty"`
	DisplayIndexPreferences map[int]string   `json:"display_index_preferences,omitempty"`

	Animation *AnimationConfig `json:"animation,omitempty"`

	FloatRules                     []rules.Identifier `json:"float_rules,omitempty"`
	ManageRules                    []rules.Identifier `json:"manage_rules,omitempty"`
	BorderOverflowApplications     []rules.Identifier `json:"border_overflow_applications,omitempty"`
	TrayAndMultiWindowApplications []rules.Identifier `json:"tray_and_multi_window_applications,omitempty"`
	LayeredApplications            []rules.Identifier `json:"layered_applications,omitempty"`
	ObjectNameChangeApplications   []rules.Identifier `json:"object_name_change_applications,omitempty"`

	Monitors []MonitorConfig `json:"monitors,omitempty"`

	BorderToggleHotkey *string `json:"border_toggle_hotkey,omitempty"`
	ReloadHotkey       *string `json:"reload_hotkey,omitempty"`

	AppSpecificConfigurationPath *string `json:"app_specific_configuration_path,omitempty"`
}

// Load reads, parses, normalizes, and validates a configuration document.
func Load(path string) (*StaticConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	var cfg StaticConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration %s: %w", path, err)
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return &cfg, nil
}

// normalize resolves legacy border aliases. The current field always wins
// when both are present.
func (c *StaticConfig) normalize() {
	if c.Border == nil {
		c.Border = c.ActiveWindowBorder
	}
	if c.BorderWidth == nil {
		c.BorderWidth = c.ActiveWindowBorderWidth
	}
	if c.BorderOffset == nil {
		c.BorderOffset = c.ActiveWindowBorderOffset
	}
	if c.BorderColours == nil {
		c.BorderColours = c.ActiveWindowBorderColours
	}
	c.ActiveWindowBorder = nil
	c.ActiveWindowBorderWidth = nil
	c.ActiveWindowBorderOffset = nil
	c.ActiveWindowBorderColours = nil
}

func (c *StaticConfig) validate() error {
	if c.BorderWidth != nil && *c.BorderWidth < 0 {
		return fmt.Errorf("border_width must not be negative, got %d", *c.BorderWidth)
	}
	if c.ResizeDelta != nil && *c.ResizeDelta <= 0 {
		return fmt.Errorf("resize_delta must be positive, got %d", *c.ResizeDelta)
	}
	if c.Animation != nil && c.Animation.Duration != nil && *c.Animation.Duration <= 0 {
		return fmt.Errorf("animation duration must be positive, got %d", *c.Animation.Duration)
	}
	for i, monitor := range c.Monitors {
		if len(monitor.Workspaces) == 0 {
			return fmt.Errorf("monitor %d declares no workspaces", i)
		}
	}
	return nil
}
