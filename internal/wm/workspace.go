// Package wm holds the live window-manager state: monitors, workspaces, the
// event/command surfaces, and the behaviour flags the configuration
// reconciler drives.
package wm

import (
	"encoding/json"
	"fmt"
	"sync"
)

// DefaultLayout names one of the built-in tiling layouts.
type DefaultLayout string

const (
	LayoutBSP                    DefaultLayout = "BSP"
	LayoutColumns                DefaultLayout = "Columns"
	LayoutRows                   DefaultLayout = "Rows"
	LayoutVerticalStack          DefaultLayout = "VerticalStack"
	LayoutHorizontalStack        DefaultLayout = "HorizontalStack"
	LayoutUltrawideVerticalStack DefaultLayout = "UltrawideVerticalStack"
)

// UnmarshalJSON validates the layout against the known set.
func (d *DefaultLayout) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch DefaultLayout(s) {
	case LayoutBSP, LayoutColumns, LayoutRows, LayoutVerticalStack,
		LayoutHorizontalStack, LayoutUltrawideVerticalStack:
		*d = DefaultLayout(s)
		return nil
	default:
		return fmt.Errorf("unknown layout %q", s)
	}
}

// WorkspaceSettings is the plain-value form of a workspace's configurable
// state, used both to apply a configuration document and to read the live
// state back out.
type WorkspaceSettings struct {
	Name             string
	Layout           *DefaultLayout
	LayoutRules      map[int]DefaultLayout
	ContainerPadding *int
	WorkspacePadding *int
}

// Workspace is one tiling surface on a monitor.
type Workspace struct {
	mu sync.RWMutex

	name             string
	layout           DefaultLayout
	customLayout     bool
	layoutRules      map[int]DefaultLayout
	containerPadding int
	workspacePadding int
}

// NewWorkspace returns a workspace with the default layout and paddings.
func NewWorkspace(name string, containerPadding, workspacePadding int) *Workspace {
	return &Workspace{
		name:             name,
		layout:           LayoutBSP,
		layoutRules:      make(map[int]DefaultLayout),
		containerPadding: containerPadding,
		workspacePadding: workspacePadding,
	}
}

func (w *Workspace) Name() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.name
}

func (w *Workspace) Layout() DefaultLayout {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.layout
}

// SetCustomLayout marks the workspace as running a layout applied at runtime
// rather than one of the built-ins. Custom layouts are not written back when
// the live state is serialized.
func (w *Workspace) SetCustomLayout() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.customLayout = true
}

// ApplyConfig overwrites the workspace's configurable fields with whatever
// the settings carry. Absent optional fields leave the current value alone.
func (w *Workspace) ApplyConfig(ws WorkspaceSettings) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if ws.Name != "" {
		w.name = ws.Name
	}
	if ws.Layout != nil {
		w.layout = *ws.Layout
		w.customLayout = false
	}
	if ws.LayoutRules != nil {
		w.layoutRules = make(map[int]DefaultLayout, len(ws.LayoutRules))
		for count, layout := range ws.LayoutRules {
			w.layoutRules[count] = layout
		}
	}
	if ws.ContainerPadding != nil {
		w.containerPadding = *ws.ContainerPadding
	}
	if ws.WorkspacePadding != nil {
		w.workspacePadding = *ws.WorkspacePadding
	}
}

// Config reads the workspace's configurable state back out. A workspace
// running a custom layout reports no layout at all.
func (w *Workspace) Config() WorkspaceSettings {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := WorkspaceSettings{
		Name:             w.name,
		ContainerPadding: intPtr(w.containerPadding),
		WorkspacePadding: intPtr(w.workspacePadding),
	}
	if !w.customLayout {
		layout := w.layout
		out.Layout = &layout
	}
	if len(w.layoutRules) > 0 {
		out.LayoutRules = make(map[int]DefaultLayout, len(w.layoutRules))
		for count, layout := range w.layoutRules {
			out.LayoutRules[count] = layout
		}
	}
	return out
}

// LayoutForCount returns the layout the workspace should use when it holds
// the given number of containers, honouring layout rules. Rules are matched
// by the largest threshold not exceeding the count.
func (w *Workspace) LayoutForCount(containers int) DefaultLayout {
	w.mu.RLock()
	defer w.mu.RUnlock()

	layout := w.layout
	best := -1
	for threshold, ruled := range w.layoutRules {
		if containers >= threshold && threshold > best {
			best = threshold
			layout = ruled
		}
	}
	return layout
}

func intPtr(v int) *int { return &v }
