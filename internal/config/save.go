package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tatamiwm/tatami/internal/rules"
	"github.com/tatamiwm/tatami/internal/settings"
	"github.com/tatamiwm/tatami/internal/wm"
)

// FromManager serializes the live state back into a configuration document.
// Workspace rules pointing at a monitor or workspace that no longer exists
// are pruned rather than written out, so a saved document always round-trips
// cleanly.
func FromManager(mgr *wm.Manager) *StaticConfig {
	snap := mgr.Settings().Snapshot()

	cfg := &StaticConfig{
		Border:                  boolPtr(snap.BorderEnabled),
		BorderWidth:             intPtr(snap.BorderWidth),
		BorderOffset:            intPtr(snap.BorderOffset),
		DefaultContainerPadding: intPtr(snap.ContainerPadding),
		DefaultWorkspacePadding: intPtr(snap.WorkspacePadding),
		WindowHidingBehaviour:   hidingPtr(snap.HidingBehaviour),
		ResizeDelta:             intPtr(mgr.ResizeDelta()),
		MouseFollowsFocus:       boolPtr(mgr.MouseFollowsFocus()),
		FocusFollowsMouse:       mgr.FocusFollowsMouse(),
	}

	containerBehaviour := mgr.WindowContainerBehaviour()
	cfg.WindowContainerBehaviour = &containerBehaviour
	moveBehaviour := mgr.CrossMonitorMoveBehaviour()
	cfg.CrossMonitorMoveBehaviour = &moveBehaviour
	operationBehaviour := mgr.UnmanagedWindowOperationBehaviour()
	cfg.UnmanagedWindowOperationBehaviour = &operationBehaviour

	single := settings.ColourFromPixel(snap.BorderColourSingle)
	stack := settings.ColourFromPixel(snap.BorderColourStack)
	monocle := settings.ColourFromPixel(snap.BorderColourMonocle)
	cfg.BorderColours = &BorderColours{Single: &single, Stack: &stack, Monocle: &monocle}

	if len(snap.MonitorIndexPrefs) > 0 {
		cfg.MonitorIndexPreferences = snap.MonitorIndexPrefs
	}
	if len(snap.DisplayIndexPrefs) > 0 {
		cfg.DisplayIndexPreferences = snap.DisplayIndexPrefs
	}

	ease := snap.AnimationEase
	cfg.Animation = &AnimationConfig{
		Enabled:  snap.AnimationEnabled,
		Duration: int64Ptr(snap.AnimationDurationMS),
		Style:    &ease,
	}

	registry := mgr.Rules()
	cfg.FloatRules = registry.Rules(rules.Float)
	cfg.ManageRules = registry.Rules(rules.Manage)
	cfg.BorderOverflowApplications = registry.Rules(rules.BorderOverflow)
	cfg.TrayAndMultiWindowApplications = registry.Rules(rules.TrayAndMultiWindow)
	cfg.LayeredApplications = registry.Rules(rules.Layered)
	cfg.ObjectNameChangeApplications = registry.Rules(rules.ObjectNameChange)

	monitors := mgr.Monitors()
	cfg.Monitors = make([]MonitorConfig, len(monitors))
	for monitorIdx, monitor := range monitors {
		workspaces := monitor.Workspaces()
		monitorCfg := MonitorConfig{
			Workspaces:     make([]WorkspaceConfig, len(workspaces)),
			WorkAreaOffset: monitor.WorkAreaOffset(),
		}
		for workspaceIdx, workspace := range workspaces {
			ws := workspace.Config()
			monitorCfg.Workspaces[workspaceIdx] = WorkspaceConfig{
				Name:             ws.Name,
				Layout:           ws.Layout,
				LayoutRules:      ws.LayoutRules,
				ContainerPadding: ws.ContainerPadding,
				WorkspacePadding: ws.WorkspacePadding,
			}
		}
		cfg.Monitors[monitorIdx] = monitorCfg
	}

	for _, rule := range mgr.WorkspaceRules() {
		if rule.Monitor < 0 || rule.Monitor >= len(monitors) {
			continue
		}
		if rule.Workspace < 0 || rule.Workspace >= monitors[rule.Monitor].WorkspaceCount() {
			continue
		}
		workspaceCfg := &cfg.Monitors[rule.Monitor].Workspaces[rule.Workspace]
		if rule.InitialOnly {
			workspaceCfg.InitialWorkspaceRules = append(workspaceCfg.InitialWorkspaceRules, rule.Identifier)
		} else {
			workspaceCfg.WorkspaceRules = append(workspaceCfg.WorkspaceRules, rule.Identifier)
		}
	}

	return cfg
}

// Marshal renders the document as indented JSON.
func (c *StaticConfig) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal configuration: %w", err)
	}
	return append(data, '\n'), nil
}

// Save writes the document to path.
func Save(cfg *StaticConfig, path string) error {
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	return nil
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
func boolPtr(v bool) *bool    { return &v }

func hidingPtr(v settings.HidingBehaviour) *settings.HidingBehaviour { return &v }
