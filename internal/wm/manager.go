package wm

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/tatamiwm/tatami/internal/border"
	"github.com/tatamiwm/tatami/internal/rules"
	"github.com/tatamiwm/tatami/internal/settings"
	"github.com/tatamiwm/tatami/internal/x11"
)

// Manager defaults, used until a configuration document overrides them.
const (
	DefaultResizeDelta       = 50
	DefaultMouseFollowsFocus = true
)

// EventKind names a window event delivered to the manager.
type EventKind string

const (
	EventFocusChange EventKind = "focus-change"
	EventShow        EventKind = "show"
	EventHide        EventKind = "hide"
	EventTitleUpdate EventKind = "title-update"
	EventDestroy     EventKind = "destroy"
)

// Event is one window notification from the X event hook.
type Event struct {
	Kind   EventKind
	Window x11.WindowID
}

// DesktopAPI is the subset of the X11 connection the manager drives desktops
// and focus modes through.
type DesktopAPI interface {
	CurrentDesktop() (int, error)
	SetCurrentDesktop(desktop int) error
	EnableFocusFollowsMouse() error
	DisableFocusFollowsMouse() error
}

// WorkspaceRule sends windows matching an identifier to a fixed workspace.
// InitialOnly rules apply only the first time the window is seen.
type WorkspaceRule struct {
	Identifier  rules.Identifier
	Monitor     int
	Workspace   int
	InitialOnly bool
}

// Manager is the live window-manager state. One coarse mutex guards the
// monitor tree and behaviour flags; the injected settings store and rule
// registry carry their own finer-grained guards.
type Manager struct {
	mu sync.Mutex

	// mergeMu pauses event handling while a configuration document is
	// merged, so the event loop never sees a half-applied document.
	mergeMu sync.RWMutex

	desktop  DesktopAPI
	store    *settings.Store
	registry *rules.Registry
	border   *border.Border
	logger   *slog.Logger

	monitors       []*Monitor
	focusedMonitor int

	incomingEvents  chan Event
	commandListener net.Listener

	windowContainerBehaviour          WindowContainerBehaviour
	crossMonitorMoveBehaviour         MoveBehaviour
	unmanagedWindowOperationBehaviour OperationBehaviour
	resizeDelta                       int
	mouseFollowsFocus                 bool
	focusFollowsMouse                 *FocusFollowsMouseImplementation

	workspaceRulesMu sync.RWMutex
	workspaceRules   []WorkspaceRule
}

// NewManager returns a manager with the documented behaviour defaults and a
// single monitor.
func NewManager(desktop DesktopAPI, store *settings.Store, registry *rules.Registry, logger *slog.Logger) *Manager {
	return &Manager{
		desktop:  desktop,
		store:    store,
		registry: registry,
		logger:   logger,
		monitors: []*Monitor{
			NewMonitor(0, "", store.ContainerPadding(), store.WorkspacePadding()),
		},
		incomingEvents:                    make(chan Event, 64),
		windowContainerBehaviour:          ContainerCreate,
		crossMonitorMoveBehaviour:         MoveSwap,
		unmanagedWindowOperationBehaviour: OperationOp,
		resizeDelta:                       DefaultResizeDelta,
		mouseFollowsFocus:                 DefaultMouseFollowsFocus,
	}
}

// Settings returns the injected settings store.
func (m *Manager) Settings() *settings.Store { return m.store }

// Rules returns the injected rule registry.
func (m *Manager) Rules() *rules.Registry { return m.registry }

// Events returns the channel window events are delivered on.
func (m *Manager) Events() chan<- Event { return m.incomingEvents }

// SetBorder attaches the border overlay. Called once during startup.
func (m *Manager) SetBorder(b *border.Border) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.border = b
}

// Border returns the attached border overlay, or nil before startup wires it.
func (m *Manager) Border() *border.Border {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.border
}

// SetCommandListener swaps in the socket commands are served on, returning
// the previous listener so the caller can close it.
func (m *Manager) SetCommandListener(l net.Listener) net.Listener {
	m.mu.Lock()
	defer m.mu.Unlock()
	previous := m.commandListener
	m.commandListener = l
	return previous
}

// Run consumes window events until the context is cancelled. Focus changes
// drag the border along; hide and destroy events of the focused window leave
// the border parked until the next focus change.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-m.incomingEvents:
			m.mergeMu.RLock()
			m.handleEvent(event)
			m.mergeMu.RUnlock()
		}
	}
}

// ExclusiveMerge runs fn with event handling paused. Configuration merges
// run inside it so their writes land as one unit from the event loop's
// point of view.
func (m *Manager) ExclusiveMerge(fn func() error) error {
	m.mergeMu.Lock()
	defer m.mergeMu.Unlock()
	return fn()
}

func (m *Manager) handleEvent(event Event) {
	b := m.Border()
	if b == nil {
		return
	}

	switch event.Kind {
	case EventFocusChange, EventShow:
		if !m.store.BorderEnabled() {
			return
		}
		if err := b.SetPosition(event.Window, true); err != nil {
			m.logger.Debug("failed to track focused window", "window", event.Window, "error", err)
		}
	case EventHide, EventDestroy:
		if err := b.Hide(); err != nil {
			m.logger.Debug("failed to park border", "error", err)
		}
	case EventTitleUpdate:
		if err := b.Invalidate(); err != nil {
			m.logger.Debug("failed to redraw border", "error", err)
		}
	}
}

// ShowBorder turns the border on and wraps it around the focused window.
func (m *Manager) ShowBorder() {
	m.store.SetBorderEnabled(true)
	if b := m.Border(); b != nil {
		b.Enable()
	}
}

// HideBorder turns the border off and hides it.
func (m *Manager) HideBorder() {
	m.store.SetBorderEnabled(false)
	if b := m.Border(); b != nil {
		b.Disable()
	}
}

// EnsureMonitor grows the monitor list to include idx, returning the monitor
// there. A name is recorded only when the monitor is created.
func (m *Manager) EnsureMonitor(idx int, name string) *Monitor {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.monitors) <= idx {
		m.monitors = append(m.monitors,
			NewMonitor(len(m.monitors), name, m.store.ContainerPadding(), m.store.WorkspacePadding()))
	}
	return m.monitors[idx]
}

// Monitor returns the monitor at idx.
func (m *Manager) Monitor(idx int) (*Monitor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx < 0 || idx >= len(m.monitors) {
		return nil, fmt.Errorf("no monitor %d", idx)
	}
	return m.monitors[idx], nil
}

// Monitors returns the monitors in index order.
func (m *Manager) Monitors() []*Monitor {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Monitor, len(m.monitors))
	copy(out, m.monitors)
	return out
}

// FocusedMonitorIndex returns the index of the focused monitor.
func (m *Manager) FocusedMonitorIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focusedMonitor
}

// FocusWorkspace focuses a workspace by monitor and workspace index,
// switching the virtual desktop to the workspace's linear position across
// all monitors.
func (m *Manager) FocusWorkspace(monitorIdx, workspaceIdx int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if monitorIdx < 0 || monitorIdx >= len(m.monitors) {
		return fmt.Errorf("no monitor %d", monitorIdx)
	}
	monitor := m.monitors[monitorIdx]
	if err := monitor.FocusWorkspace(workspaceIdx); err != nil {
		return err
	}
	m.focusedMonitor = monitorIdx

	desktop := workspaceIdx
	for _, preceding := range m.monitors[:monitorIdx] {
		desktop += preceding.WorkspaceCount()
	}
	if err := m.desktop.SetCurrentDesktop(desktop); err != nil {
		return fmt.Errorf("failed to switch to desktop %d: %w", desktop, err)
	}
	return nil
}

// RefreshFocusedWorkspaces re-evaluates the focused workspace of every
// monitor after a configuration change reshaped the tree, then re-asserts
// the focused monitor's virtual desktop.
func (m *Manager) RefreshFocusedWorkspaces() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, monitor := range m.monitors {
		if err := monitor.FocusWorkspace(monitor.FocusedWorkspaceIndex()); err != nil {
			return err
		}
	}

	desktop := m.monitors[m.focusedMonitor].FocusedWorkspaceIndex()
	for _, preceding := range m.monitors[:m.focusedMonitor] {
		desktop += preceding.WorkspaceCount()
	}
	if err := m.desktop.SetCurrentDesktop(desktop); err != nil {
		return fmt.Errorf("failed to switch to desktop %d: %w", desktop, err)
	}
	return nil
}

func (m *Manager) WindowContainerBehaviour() WindowContainerBehaviour {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.windowContainerBehaviour
}

func (m *Manager) SetWindowContainerBehaviour(b WindowContainerBehaviour) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windowContainerBehaviour = b
}

func (m *Manager) CrossMonitorMoveBehaviour() MoveBehaviour {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.crossMonitorMoveBehaviour
}

func (m *Manager) SetCrossMonitorMoveBehaviour(b MoveBehaviour) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.crossMonitorMoveBehaviour = b
}

func (m *Manager) UnmanagedWindowOperationBehaviour() OperationBehaviour {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unmanagedWindowOperationBehaviour
}

func (m *Manager) SetUnmanagedWindowOperationBehaviour(b OperationBehaviour) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unmanagedWindowOperationBehaviour = b
}

func (m *Manager) ResizeDelta() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resizeDelta
}

func (m *Manager) SetResizeDelta(delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resizeDelta = delta
}

func (m *Manager) MouseFollowsFocus() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mouseFollowsFocus
}

func (m *Manager) SetMouseFollowsFocus(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mouseFollowsFocus = enabled
}

// FocusFollowsMouse returns the active focus-follows-mouse implementation,
// or nil when focus stays put.
func (m *Manager) FocusFollowsMouse() *FocusFollowsMouseImplementation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.focusFollowsMouse == nil {
		return nil
	}
	impl := *m.focusFollowsMouse
	return &impl
}

// SetFocusFollowsMouse switches the focus-follows-mouse implementation on
// the X server. Passing nil turns the mode off.
func (m *Manager) SetFocusFollowsMouse(impl *FocusFollowsMouseImplementation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if impl == nil {
		m.focusFollowsMouse = nil
		return m.desktop.DisableFocusFollowsMouse()
	}

	copied := *impl
	m.focusFollowsMouse = &copied
	return m.desktop.EnableFocusFollowsMouse()
}

// AddWorkspaceRule records a workspace rule. The latest binding for an
// identifier id wins: re-adding an id that already carries a rule moves
// that rule, so a relocated rule never stays bound to its old workspace.
func (m *Manager) AddWorkspaceRule(rule WorkspaceRule) {
	m.workspaceRulesMu.Lock()
	defer m.workspaceRulesMu.Unlock()

	for i, existing := range m.workspaceRules {
		if existing.Identifier.ID == rule.Identifier.ID {
			m.workspaceRules[i] = rule
			return
		}
	}
	m.workspaceRules = append(m.workspaceRules, rule)
}

// WorkspaceRules returns a copy of the recorded workspace rules.
func (m *Manager) WorkspaceRules() []WorkspaceRule {
	m.workspaceRulesMu.RLock()
	defer m.workspaceRulesMu.RUnlock()
	out := make([]WorkspaceRule, len(m.workspaceRules))
	copy(out, m.workspaceRules)
	return out
}

// MatchWorkspaceRule returns the first workspace rule whose identifier
// matches the window attributes. initial says whether the window is being
// seen for the first time; initial-only rules are skipped otherwise.
func (m *Manager) MatchWorkspaceRule(exe, class, title string, initial bool) (WorkspaceRule, bool) {
	m.workspaceRulesMu.RLock()
	defer m.workspaceRulesMu.RUnlock()

	for _, rule := range m.workspaceRules {
		if rule.InitialOnly && !initial {
			continue
		}
		subject := title
		switch rule.Identifier.Kind {
		case rules.KindExe:
			subject = exe
		case rules.KindClass:
			subject = class
		}
		if m.registry.Matches(rule.Identifier, subject) {
			return rule, true
		}
	}
	return WorkspaceRule{}, false
}
