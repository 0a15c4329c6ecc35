package config

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tatamiwm/tatami/internal/ipc"
	"github.com/tatamiwm/tatami/internal/rules"
	"github.com/tatamiwm/tatami/internal/settings"
	"github.com/tatamiwm/tatami/internal/wm"
)

type fakeDesktop struct {
	setCalls    []int
	ffmEnabled  int
	ffmDisabled int
}

func (f *fakeDesktop) CurrentDesktop() (int, error)    { return 0, nil }
func (f *fakeDesktop) SetCurrentDesktop(d int) error   { f.setCalls = append(f.setCalls, d); return nil }
func (f *fakeDesktop) EnableFocusFollowsMouse() error  { f.ffmEnabled++; return nil }
func (f *fakeDesktop) DisableFocusFollowsMouse() error { f.ffmDisabled++; return nil }

func newTestManager() (*wm.Manager, *fakeDesktop) {
	desktop := &fakeDesktop{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return wm.NewManager(desktop, settings.NewStore(), rules.NewRegistry(), logger), desktop
}

func TestApplyGlobalsDefaultsWhenAbsent(t *testing.T) {
	mgr, _ := newTestManager()
	store := mgr.Settings()

	// Simulate a previous document having overwritten everything.
	store.SetBorderWidth(30)
	store.SetBorderOffset(12)
	store.SetContainerPadding(0)
	store.SetWorkspacePadding(0)
	store.SetHidingBehaviour(settings.HideMinimize)
	store.SetAnimationEnabled(true)
	store.SetAnimationDurationMS(999)
	store.SetAnimationEase(settings.EaseInExpo)

	if err := applyGlobals(&StaticConfig{}, store, mgr.Rules()); err != nil {
		t.Fatalf("applyGlobals failed: %v", err)
	}

	if got := store.BorderWidth(); got != 8 {
		t.Errorf("BorderWidth = %d, want the default 8", got)
	}
	if got := store.BorderOffset(); got != -1 {
		t.Errorf("BorderOffset = %d, want the default -1", got)
	}
	if got := store.ContainerPadding(); got != 10 {
		t.Errorf("ContainerPadding = %d, want 10", got)
	}
	if got := store.WorkspacePadding(); got != 10 {
		t.Errorf("WorkspacePadding = %d, want 10", got)
	}
	if got := store.HidingBehaviour(); got != settings.HideUnmap {
		t.Errorf("HidingBehaviour = %q, want the default", got)
	}
	if store.AnimationEnabled() {
		t.Error("AnimationEnabled should reset to false")
	}
	if got := store.AnimationEase(); got != settings.EaseLinear {
		t.Errorf("AnimationEase = %q, want Linear", got)
	}
}

func TestApplyGlobalsMergesRuleLists(t *testing.T) {
	mgr, _ := newTestManager()
	cfg := &StaticConfig{
		FloatRules:  []rules.Identifier{{Kind: rules.KindExe, ID: "pavucontrol"}},
		ManageRules: []rules.Identifier{{Kind: rules.KindClass, ID: "Steam"}},
	}

	if err := applyGlobals(cfg, mgr.Settings(), mgr.Rules()); err != nil {
		t.Fatalf("applyGlobals failed: %v", err)
	}
	if err := applyGlobals(cfg, mgr.Settings(), mgr.Rules()); err != nil {
		t.Fatalf("second applyGlobals failed: %v", err)
	}

	if got := len(mgr.Rules().Rules(rules.Float)); got != 1 {
		t.Errorf("float rules = %d, want 1 after reapplying the same document", got)
	}
	if got := len(mgr.Rules().Rules(rules.Manage)); got != 1 {
		t.Errorf("manage rules = %d, want 1", got)
	}
}

func TestPostloadShapesTreeAndOnlyEnablesBorder(t *testing.T) {
	mgr, _ := newTestManager()
	layout := wm.LayoutColumns
	off := false
	cfg := &StaticConfig{
		Border: &off,
		Monitors: []MonitorConfig{
			{Workspaces: []WorkspaceConfig{
				{Name: "code", Layout: &layout},
				{Name: "web"},
			}},
		},
	}

	mgr.Settings().SetBorderEnabled(true)
	if err := Postload(cfg, mgr); err != nil {
		t.Fatalf("Postload failed: %v", err)
	}

	if !mgr.Settings().BorderEnabled() {
		t.Error("Postload must never disable the border")
	}

	monitor, err := mgr.Monitor(0)
	if err != nil {
		t.Fatalf("Monitor(0) failed: %v", err)
	}
	if got := monitor.WorkspaceCount(); got != 2 {
		t.Fatalf("WorkspaceCount = %d, want 2", got)
	}
	ws, _ := monitor.Workspace(0)
	if ws.Name() != "code" || ws.Layout() != wm.LayoutColumns {
		t.Errorf("workspace 0 = %q/%q, want code/Columns", ws.Name(), ws.Layout())
	}
}

func TestPostloadEnablesBorderWhenRequested(t *testing.T) {
	mgr, _ := newTestManager()
	on := true

	if err := Postload(&StaticConfig{Border: &on}, mgr); err != nil {
		t.Fatalf("Postload failed: %v", err)
	}
	if !mgr.Settings().BorderEnabled() {
		t.Error("border should be enabled")
	}
}

func TestPostloadRegistersWorkspaceRules(t *testing.T) {
	mgr, _ := newTestManager()
	cfg := &StaticConfig{
		Monitors: []MonitorConfig{
			{Workspaces: []WorkspaceConfig{
				{
					Name:                  "comms",
					WorkspaceRules:        []rules.Identifier{{Kind: rules.KindExe, ID: "slack"}},
					InitialWorkspaceRules: []rules.Identifier{{Kind: rules.KindExe, ID: "discord"}},
				},
			}},
		},
	}

	if err := Postload(cfg, mgr); err != nil {
		t.Fatalf("Postload failed: %v", err)
	}

	got := mgr.WorkspaceRules()
	if len(got) != 2 {
		t.Fatalf("workspace rules = %d, want 2", len(got))
	}
	for _, rule := range got {
		if rule.Identifier.MatchingStrategy != rules.MatchLegacy {
			t.Errorf("rule %q strategy = %q, want defaulted Legacy", rule.Identifier.ID, rule.Identifier.MatchingStrategy)
		}
		if rule.Identifier.ID == "discord" && !rule.InitialOnly {
			t.Error("discord rule should be initial-only")
		}
	}
}

func TestPreloadAppliesBehaviourFlags(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	mgr, desktop := newTestManager()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	path := writeConfig(t, `{
		"resize_delta": 7,
		"window_container_behaviour": "Append",
		"mouse_follows_focus": false,
		"focus_follows_mouse": "Xorg"
	}`)

	_, server, watcher, err := Preload(path, mgr, ipc.Handlers{}, logger)
	if err != nil {
		t.Fatalf("Preload failed: %v", err)
	}
	defer server.Stop()
	defer watcher.Stop()

	if got := mgr.ResizeDelta(); got != 7 {
		t.Errorf("ResizeDelta = %d, want 7", got)
	}
	if got := mgr.WindowContainerBehaviour(); got != wm.ContainerAppend {
		t.Errorf("WindowContainerBehaviour = %q, want Append", got)
	}
	if mgr.MouseFollowsFocus() {
		t.Error("MouseFollowsFocus should be off")
	}
	if got := mgr.FocusFollowsMouse(); got == nil || *got != wm.FocusFollowsMouseXorg {
		t.Errorf("FocusFollowsMouse = %v, want Xorg", got)
	}
	if desktop.ffmEnabled != 1 {
		t.Errorf("EnableFocusFollowsMouse calls = %d, want 1", desktop.ffmEnabled)
	}
}

func TestPreloadDefaultsBehaviourFlagsWhenAbsent(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	mgr, desktop := newTestManager()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	path := writeConfig(t, `{}`)
	_, server, watcher, err := Preload(path, mgr, ipc.Handlers{}, logger)
	if err != nil {
		t.Fatalf("Preload failed: %v", err)
	}
	defer server.Stop()
	defer watcher.Stop()

	if got := mgr.ResizeDelta(); got != wm.DefaultResizeDelta {
		t.Errorf("ResizeDelta = %d, want %d", got, wm.DefaultResizeDelta)
	}
	if !mgr.MouseFollowsFocus() {
		t.Error("MouseFollowsFocus should default to true")
	}
	if mgr.FocusFollowsMouse() != nil {
		t.Error("FocusFollowsMouse should stay off")
	}
	if desktop.ffmDisabled != 1 {
		t.Errorf("DisableFocusFollowsMouse calls = %d, want 1", desktop.ffmDisabled)
	}
}

func TestReloadRetainsBehaviourFlagsWhenAbsent(t *testing.T) {
	mgr, desktop := newTestManager()
	mgr.SetWindowContainerBehaviour(wm.ContainerAppend)
	mgr.SetCrossMonitorMoveBehaviour(wm.MoveInsert)
	mgr.SetUnmanagedWindowOperationBehaviour(wm.OperationNoOp)
	mgr.SetResizeDelta(5)
	mgr.SetMouseFollowsFocus(false)
	impl := wm.FocusFollowsMouseTatami
	if err := mgr.SetFocusFollowsMouse(&impl); err != nil {
		t.Fatalf("SetFocusFollowsMouse failed: %v", err)
	}

	path := writeConfig(t, `{}`)
	if _, err := Reload(path, mgr); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if got := mgr.WindowContainerBehaviour(); got != wm.ContainerAppend {
		t.Errorf("WindowContainerBehaviour = %q, want the retained Append", got)
	}
	if got := mgr.CrossMonitorMoveBehaviour(); got != wm.MoveInsert {
		t.Errorf("CrossMonitorMoveBehaviour = %q, want the retained Insert", got)
	}
	if got := mgr.UnmanagedWindowOperationBehaviour(); got != wm.OperationNoOp {
		t.Errorf("UnmanagedWindowOperationBehaviour = %q, want the retained NoOp", got)
	}
	if got := mgr.ResizeDelta(); got != 5 {
		t.Errorf("ResizeDelta = %d, want the retained 5", got)
	}
	if mgr.MouseFollowsFocus() {
		t.Error("MouseFollowsFocus should keep its previous value")
	}

	// Focus-follows-mouse is the exception: an absent field turns it off.
	if mgr.FocusFollowsMouse() != nil {
		t.Error("FocusFollowsMouse should turn off when the document omits it")
	}
	if desktop.ffmDisabled == 0 {
		t.Error("reload should push the disabled focus mode to the server")
	}
}

func TestReloadOverwritesBehaviourFlagsWhenPresent(t *testing.T) {
	mgr, _ := newTestManager()

	path := writeConfig(t, `{
		"window_container_behaviour": "Append",
		"cross_monitor_move_behaviour": "Insert",
		"unmanaged_window_operation_behaviour": "NoOp",
		"resize_delta": 7,
		"mouse_follows_focus": false
	}`)
	if _, err := Reload(path, mgr); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if got := mgr.WindowContainerBehaviour(); got != wm.ContainerAppend {
		t.Errorf("WindowContainerBehaviour = %q, want Append", got)
	}
	if got := mgr.CrossMonitorMoveBehaviour(); got != wm.MoveInsert {
		t.Errorf("CrossMonitorMoveBehaviour = %q, want Insert", got)
	}
	if got := mgr.UnmanagedWindowOperationBehaviour(); got != wm.OperationNoOp {
		t.Errorf("UnmanagedWindowOperationBehaviour = %q, want NoOp", got)
	}
	if got := mgr.ResizeDelta(); got != 7 {
		t.Errorf("ResizeDelta = %d, want 7", got)
	}
	if mgr.MouseFollowsFocus() {
		t.Error("MouseFollowsFocus should be off")
	}
}

func TestReloadDisablesBorder(t *testing.T) {
	mgr, _ := newTestManager()
	mgr.Settings().SetBorderEnabled(true)

	path := writeConfig(t, `{"border": false}`)
	if _, err := Reload(path, mgr); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if mgr.Settings().BorderEnabled() {
		t.Error("reload with border:false must disable the border")
	}
}

func TestReloadAbsentBorderKeyDisablesBorder(t *testing.T) {
	mgr, _ := newTestManager()
	mgr.Settings().SetBorderEnabled(true)

	path := writeConfig(t, `{"border_width": 4}`)
	if _, err := Reload(path, mgr); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if mgr.Settings().BorderEnabled() {
		t.Error("a reload document without a border field must hide the border")
	}
}

func TestReloadRefreshesFocusedWorkspace(t *testing.T) {
	mgr, desktop := newTestManager()

	path := writeConfig(t, `{"monitors": [{"workspaces": [{"name": "a"}, {"name": "b"}]}]}`)
	if _, err := Reload(path, mgr); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if len(desktop.setCalls) == 0 {
		t.Error("reload should re-apply the focused workspace's desktop")
	}
}

func TestReloadFailureLeavesStateUntouched(t *testing.T) {
	mgr, _ := newTestManager()

	good := writeConfig(t, `{
		"border": true,
		"border_width": 14,
		"float_rules": [{"kind": "Exe", "id": "mpv"}],
		"monitors": [{"workspaces": [{"name": "main", "layout": "Rows"}]}]
	}`)
	if _, err := Reload(good, mgr); err != nil {
		t.Fatalf("Reload of good document failed: %v", err)
	}
	before := FromManager(mgr)

	bad := writeConfig(t, `{"border_width": -2}`)
	if _, err := Reload(bad, mgr); err == nil {
		t.Fatal("expected reload of invalid document to fail")
	}

	after := FromManager(mgr)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("failed reload mutated state (-before +after):\n%s", diff)
	}
}
