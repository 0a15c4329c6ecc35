package config

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/tatamiwm/tatami/internal/ipc"
	"github.com/tatamiwm/tatami/internal/rules"
	"github.com/tatamiwm/tatami/internal/runtimepath"
	"github.com/tatamiwm/tatami/internal/settings"
	"github.com/tatamiwm/tatami/internal/wm"
)

// applyGlobals writes the document's global fields into the settings store
// and rule registry. Scalar fields are always written: an absent field
// resets its setting to the default, so reloading a trimmed document does
// not leave stale values behind. Rule lists merge as a set union.
func applyGlobals(cfg *StaticConfig, store *settings.Store, registry *rules.Registry) error {
	store.SetBorderWidth(intOr(cfg.BorderWidth, settings.DefaultBorderWidth))
	store.SetBorderOffset(intOr(cfg.BorderOffset, settings.DefaultBorderOffset))
	store.SetContainerPadding(intOr(cfg.DefaultContainerPadding, settings.DefaultContainerPadding))
	store.SetWorkspacePadding(intOr(cfg.DefaultWorkspacePadding, settings.DefaultWorkspacePadding))

	if cfg.BorderColours != nil {
		var single, stack, monocle settings.Colour
		if cfg.BorderColours.Single != nil {
			single = *cfg.BorderColours.Single
		}
		if cfg.BorderColours.Stack != nil {
			stack = *cfg.BorderColours.Stack
		}
		if cfg.BorderColours.Monocle != nil {
			monocle = *cfg.BorderColours.Monocle
		}
		store.SetBorderColours(single, stack, monocle)
	}

	hiding := settings.HideUnmap
	if cfg.WindowHidingBehaviour != nil {
		hiding = *cfg.WindowHidingBehaviour
	}
	store.SetHidingBehaviour(hiding)

	if cfg.Animation != nil {
		store.SetAnimationEnabled(cfg.Animation.Enabled)
		store.SetAnimationDurationMS(int64Or(cfg.Animation.Duration, settings.DefaultAnimationDurationMS))
		ease := settings.EaseLinear
		if cfg.Animation.Style != nil {
			ease = *cfg.Animation.Style
		}
		store.SetAnimationEase(ease)
	} else {
		store.SetAnimationEnabled(false)
		store.SetAnimationDurationMS(settings.DefaultAnimationDurationMS)
		store.SetAnimationEase(settings.EaseLinear)
	}

	if cfg.MonitorIndexPreferences != nil {
		store.SetMonitorIndexPreferences(cfg.MonitorIndexPreferences)
	}
	if cfg.DisplayIndexPreferences != nil {
		store.SetDisplayIndexPreferences(cfg.DisplayIndexPreferences)
	}

	lists := []struct {
		class       rules.Class
		identifiers []rules.Identifier
	}{
		{rules.Float, cfg.FloatRules},
		{rules.Manage, cfg.ManageRules},
		{rules.BorderOverflow, cfg.BorderOverflowApplications},
		{rules.TrayAndMultiWindow, cfg.TrayAndMultiWindowApplications},
		{rules.Layered, cfg.LayeredApplications},
		{rules.ObjectNameChange, cfg.ObjectNameChangeApplications},
	}
	for _, list := range lists {
		if len(list.identifiers) == 0 {
			continue
		}
		if err := registry.Merge(list.class, list.identifiers); err != nil {
			return fmt.Errorf("failed to merge %s rules: %w", list.class, err)
		}
	}

	if cfg.AppSpecificConfigurationPath != nil {
		entries, err := LoadAppSpecific(*cfg.AppSpecificConfigurationPath)
		if err != nil {
			return err
		}
		if err := applyAppSpecific(entries, registry); err != nil {
			return err
		}
	}

	return nil
}

// applyMonitors shapes the monitor tree after the document. Workspace counts
// only ever grow; per-workspace settings overwrite.
func applyMonitors(cfg *StaticConfig, mgr *wm.Manager) error {
	store := mgr.Settings()

	for monitorIdx, monitorCfg := range cfg.Monitors {
		monitor := mgr.EnsureMonitor(monitorIdx, "")
		monitor.EnsureWorkspaceCount(len(monitorCfg.Workspaces), store.ContainerPadding(), store.WorkspacePadding())
		monitor.SetWorkAreaOffset(monitorCfg.WorkAreaOffset)

		for workspaceIdx, workspaceCfg := range monitorCfg.Workspaces {
			workspace, err := monitor.Workspace(workspaceIdx)
			if err != nil {
				return err
			}
			workspace.ApplyConfig(wm.WorkspaceSettings{
				Name:             workspaceCfg.Name,
				Layout:           workspaceCfg.Layout,
				LayoutRules:      workspaceCfg.LayoutRules,
				ContainerPadding: workspaceCfg.ContainerPadding,
				WorkspacePadding: workspaceCfg.WorkspacePadding,
			})

			for _, identifier := range workspaceCfg.WorkspaceRules {
				mgr.AddWorkspaceRule(wm.WorkspaceRule{
					Identifier: withDefaultStrategy(identifier),
					Monitor:    monitorIdx,
					Workspace:  workspaceIdx,
				})
			}
			for _, identifier := range workspaceCfg.InitialWorkspaceRules {
				mgr.AddWorkspaceRule(wm.WorkspaceRule{
					Identifier:  withDefaultStrategy(identifier),
					Monitor:     monitorIdx,
					Workspace:   workspaceIdx,
					InitialOnly: true,
				})
			}
		}
	}
	return nil
}

// Preload parses the document, applies its global settings, binds a fresh
// control socket, and starts watching the document for changes. The watcher
// funnels through the same reload handler the socket uses.
func Preload(path string, mgr *wm.Manager, handlers ipc.Handlers, logger *slog.Logger) (*StaticConfig, *ipc.Server, *Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to resolve configuration path: %w", err)
	}

	cfg, err := Load(absPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := mgr.ExclusiveMerge(func() error {
		if err := applyGlobals(cfg, mgr.Settings(), mgr.Rules()); err != nil {
			return err
		}
		return applyBehaviourDefaults(cfg, mgr)
	}); err != nil {
		return nil, nil, nil, err
	}

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to resolve control socket path: %w", err)
	}
	server := ipc.NewServer(socketPath, handlers)
	if err := server.Start(); err != nil {
		return nil, nil, nil, err
	}
	if previous := mgr.SetCommandListener(server.Listener()); previous != nil {
		previous.Close()
	}

	watcher, err := NewWatcher(absPath, logger, func(changed string) {
		if handlers.ReloadConfiguration == nil {
			return
		}
		if err := handlers.ReloadConfiguration(changed); err != nil {
			logger.Error("failed to reload configuration after file change", "path", changed, "error", err)
		}
	})
	if err != nil {
		server.Stop()
		return nil, nil, nil, err
	}

	return cfg, server, watcher, nil
}

// Postload shapes the monitor tree and enables the border if the document
// asks for it. Postload never disables the border; a border turned on by a
// command stays on even when the document is silent.
func Postload(cfg *StaticConfig, mgr *wm.Manager) error {
	return mgr.ExclusiveMerge(func() error {
		if err := applyMonitors(cfg, mgr); err != nil {
			return err
		}

		if cfg.Border != nil && *cfg.Border {
			mgr.ShowBorder()
		}
		return nil
	})
}

// Reload parses the document at path and applies the whole of it to the
// running manager. Nothing is applied when parsing or validation fails, so
// a broken edit leaves the previous state untouched. Unlike Postload, a
// reload hides the border unless the document explicitly enables it,
// re-derives the focus-follows-mouse mode, and re-evaluates every
// monitor's focused workspace. Behaviour flags the document omits keep
// their current values.
func Reload(path string, mgr *wm.Manager) (*StaticConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := mgr.ExclusiveMerge(func() error {
		if err := applyGlobals(cfg, mgr.Settings(), mgr.Rules()); err != nil {
			return err
		}
		if err := applyMonitors(cfg, mgr); err != nil {
			return err
		}

		if cfg.Border != nil && *cfg.Border {
			mgr.ShowBorder()
		} else {
			mgr.HideBorder()
		}

		if err := applyBehaviourOverrides(cfg, mgr); err != nil {
			return err
		}

		if err := mgr.RefreshFocusedWorkspaces(); err != nil {
			return fmt.Errorf("failed to refresh focused workspaces: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyBehaviourDefaults seeds the manager behaviour flags at first load.
// Absent fields take the documented defaults.
func applyBehaviourDefaults(cfg *StaticConfig, mgr *wm.Manager) error {
	containerBehaviour := wm.ContainerCreate
	if cfg.WindowContainerBehaviour != nil {
		containerBehaviour = *cfg.WindowContainerBehaviour
	}
	mgr.SetWindowContainerBehaviour(containerBehaviour)

	moveBehaviour := wm.MoveSwap
	if cfg.CrossMonitorMoveBehaviour != nil {
		moveBehaviour = *cfg.CrossMonitorMoveBehaviour
	}
	mgr.SetCrossMonitorMoveBehaviour(moveBehaviour)

	operationBehaviour := wm.OperationOp
	if cfg.UnmanagedWindowOperationBehaviour != nil {
		operationBehaviour = *cfg.UnmanagedWindowOperationBehaviour
	}
	mgr.SetUnmanagedWindowOperationBehaviour(operationBehaviour)

	mgr.SetResizeDelta(intOr(cfg.ResizeDelta, wm.DefaultResizeDelta))
	mgr.SetMouseFollowsFocus(boolOr(cfg.MouseFollowsFocus, wm.DefaultMouseFollowsFocus))

	if err := mgr.SetFocusFollowsMouse(cfg.FocusFollowsMouse); err != nil {
		return fmt.Errorf("failed to apply focus follows mouse: %w", err)
	}
	return nil
}

// applyBehaviourOverrides overwrites the behaviour flags the document
// states, keeping the current value for absent fields. The
// focus-follows-mouse mode is always re-derived; an absent field turns it
// off.
func applyBehaviourOverrides(cfg *StaticConfig, mgr *wm.Manager) error {
	if cfg.WindowContainerBehaviour != nil {
		mgr.SetWindowContainerBehaviour(*cfg.WindowContainerBehaviour)
	}
	if cfg.CrossMonitorMoveBehaviour != nil {
		mgr.SetCrossMonitorMoveBehaviour(*cfg.CrossMonitorMoveBehaviour)
	}
	if cfg.UnmanagedWindowOperationBehaviour != nil {
		mgr.SetUnmanagedWindowOperationBehaviour(*cfg.UnmanagedWindowOperationBehaviour)
	}
	if cfg.ResizeDelta != nil {
		mgr.SetResizeDelta(*cfg.ResizeDelta)
	}
	if cfg.MouseFollowsFocus != nil {
		mgr.SetMouseFollowsFocus(*cfg.MouseFollowsFocus)
	}

	if err := mgr.SetFocusFollowsMouse(cfg.FocusFollowsMouse); err != nil {
		return fmt.Errorf("failed to apply focus follows mouse: %w", err)
	}
	return nil
}

func withDefaultStrategy(identifier rules.Identifier) rules.Identifier {
	if identifier.MatchingStrategy == "" {
		identifier.MatchingStrategy = rules.MatchLegacy
	}
	return identifier
}

func intOr(v *int, fallback int) int {
	if v != nil {
		return *v
	}
	return fallback
}

func int64Or(v *int64, fallback int64) int64 {
	if v != nil {
		return *v
	}
	return fallback
}

func boolOr(v *bool, fallback bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}
