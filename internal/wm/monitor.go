package wm

import (
	"fmt"
	"sync"

	"github.com/tatamiwm/tatami/internal/x11"
)

// Monitor is one physical output and the workspaces attached to it.
type Monitor struct {
	mu sync.RWMutex

	index            int
	name             string
	workspaces       []*Workspace
	focusedWorkspace int
	workAreaOffset   *x11.Rect
}

// NewMonitor returns a monitor with a single default workspace.
func NewMonitor(index int, name string, containerPadding, workspacePadding int) *Monitor {
	return &Monitor{
		index: index,
		name:  name,
		workspaces: []*Workspace{
			NewWorkspace(defaultWorkspaceName(0), containerPadding, workspacePadding),
		},
	}
}

func (m *Monitor) Index() int { return m.index }

func (m *Monitor) Name() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.name
}

// EnsureWorkspaceCount grows the monitor to at least n workspaces. Shrinking
// never happens here; workspaces carry windows that must not be orphaned.
func (m *Monitor) EnsureWorkspaceCount(n int, containerPadding, workspacePadding int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.workspaces) < n {
		m.workspaces = append(m.workspaces,
			NewWorkspace(defaultWorkspaceName(len(m.workspaces)), containerPadding, workspacePadding))
	}
}

// WorkspaceCount returns the number of workspaces on the monitor.
func (m *Monitor) WorkspaceCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workspaces)
}

// Workspace returns the workspace at idx.
func (m *Monitor) Workspace(idx int) (*Workspace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if idx < 0 || idx >= len(m.workspaces) {
		return nil, fmt.Errorf("monitor %d has no workspace %d", m.index, idx)
	}
	return m.workspaces[idx], nil
}

// Workspaces returns the monitor's workspaces in order.
func (m *Monitor) Workspaces() []*Workspace {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Workspace, len(m.workspaces))
	copy(out, m.workspaces)
	return out
}

// FocusedWorkspaceIndex returns the index of the focused workspace.
func (m *Monitor) FocusedWorkspaceIndex() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.focusedWorkspace
}

// FocusWorkspace records idx as the focused workspace.
func (m *Monitor) FocusWorkspace(idx int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx < 0 || idx >= len(m.workspaces) {
		return fmt.Errorf("monitor %d has no workspace %d", m.index, idx)
	}
	m.focusedWorkspace = idx
	return nil
}

// WorkAreaOffset returns the monitor's work-area offset, if one is set.
func (m *Monitor) WorkAreaOffset() *x11.Rect {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.workAreaOffset == nil {
		return nil
	}
	rect := *m.workAreaOffset
	return &rect
}

// SetWorkAreaOffset records the rect carved out of the monitor's usable area.
func (m *Monitor) SetWorkAreaOffset(rect *x11.Rect) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rect == nil {
		m.workAreaOffset = nil
		return
	}
	copied := *rect
	m.workAreaOffset = &copied
}

func defaultWorkspaceName(idx int) string {
	return fmt.Sprintf("workspace-%d", idx+1)
}
