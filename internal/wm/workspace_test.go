package wm

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func layoutPtr(l DefaultLayout) *DefaultLayout { return &l }

func TestWorkspaceApplyConfigRoundTrip(t *testing.T) {
	ws := NewWorkspace("workspace-1", 10, 10)

	in := WorkspaceSettings{
		Name:             "code",
		Layout:           layoutPtr(LayoutColumns),
		LayoutRules:      map[int]DefaultLayout{0: LayoutBSP, 4: LayoutColumns},
		ContainerPadding: intPtr(5),
		WorkspacePadding: intPtr(15),
	}
	ws.ApplyConfig(in)

	if diff := cmp.Diff(in, ws.Config()); diff != "" {
		t.Errorf("config round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWorkspaceApplyConfigLeavesAbsentFieldsAlone(t *testing.T) {
	ws := NewWorkspace("workspace-1", 10, 10)
	ws.ApplyConfig(WorkspaceSettings{Name: "media", Layout: layoutPtr(LayoutRows)})

	ws.ApplyConfig(WorkspaceSettings{ContainerPadding: intPtr(2)})

	got := ws.Config()
	if got.Name != "media" {
		t.Errorf("Name = %q, want media", got.Name)
	}
	if got.Layout == nil || *got.Layout != LayoutRows {
		t.Errorf("Layout = %v, want Rows", got.Layout)
	}
	if got.ContainerPadding == nil || *got.ContainerPadding != 2 {
		t.Errorf("ContainerPadding = %v, want 2", got.ContainerPadding)
	}
	if got.WorkspacePadding == nil || *got.WorkspacePadding != 10 {
		t.Errorf("WorkspacePadding = %v, want 10", got.WorkspacePadding)
	}
}

func TestWorkspaceCustomLayoutDoesNotSerialize(t *testing.T) {
	ws := NewWorkspace("workspace-1", 10, 10)
	ws.SetCustomLayout()

	if got := ws.Config().Layout; got != nil {
		t.Errorf("custom layout leaked into config as %q", *got)
	}

	// Applying a built-in layout clears the custom marker.
	ws.ApplyConfig(WorkspaceSettings{Layout: layoutPtr(LayoutBSP)})
	if got := ws.Config().Layout; got == nil || *got != LayoutBSP {
		t.Errorf("Layout = %v, want BSP", got)
	}
}

func TestWorkspaceLayoutForCount(t *testing.T) {
	ws := NewWorkspace("workspace-1", 10, 10)
	ws.ApplyConfig(WorkspaceSettings{
		Layout:      layoutPtr(LayoutBSP),
		LayoutRules: map[int]DefaultLayout{2: LayoutVerticalStack, 5: LayoutColumns},
	})

	tests := []struct {
		containers int
		want       DefaultLayout
	}{
		{0, LayoutBSP},
		{1, LayoutBSP},
		{2, LayoutVerticalStack},
		{4, LayoutVerticalStack},
		{5, LayoutColumns},
		{9, LayoutColumns},
	}
	for _, tt := range tests {
		if got := ws.LayoutForCount(tt.containers); got != tt.want {
			t.Errorf("LayoutForCount(%d) = %q, want %q", tt.containers, got, tt.want)
		}
	}
}

func TestMonitorEnsureWorkspaceCountGrowsOnly(t *testing.T) {
	m := NewMonitor(0, "DP-1", 10, 10)

	m.EnsureWorkspaceCount(3, 10, 10)
	if got := m.WorkspaceCount(); got != 3 {
		t.Fatalf("WorkspaceCount = %d, want 3", got)
	}

	m.EnsureWorkspaceCount(1, 10, 10)
	if got := m.WorkspaceCount(); got != 3 {
		t.Errorf("WorkspaceCount shrank to %d", got)
	}

	ws, err := m.Workspace(2)
	if err != nil {
		t.Fatalf("Workspace(2) failed: %v", err)
	}
	if ws.Name() != "workspace-3" {
		t.Errorf("generated workspace name = %q, want workspace-3", ws.Name())
	}
}
