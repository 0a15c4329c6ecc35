package daemon

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/tatamiwm/tatami/internal/border"
	"github.com/tatamiwm/tatami/internal/rules"
	"github.com/tatamiwm/tatami/internal/settings"
	"github.com/tatamiwm/tatami/internal/wm"
	"github.com/tatamiwm/tatami/internal/x11"
)

type fakeBorderAPI struct {
	rect           x11.Rect
	configureCalls int
	unmapCalls     int
	eventLoopDone  chan struct{}
}

func (f *fakeBorderAPI) ActiveWindow() (x11.WindowID, error)       { return 0, errors.New("unused") }
func (f *fakeBorderAPI) WindowRect(x11.WindowID) (x11.Rect, error) { return f.rect, nil }
func (f *fakeBorderAPI) CreateOverlayWindow(string) (x11.WindowID, error) {
	return 1, nil
}
func (f *fakeBorderAPI) ConfigureOverlay(x11.WindowID, x11.Rect, bool) error {
	f.configureCalls++
	return nil
}
func (f *fakeBorderAPI) SetOverlayColor(x11.WindowID, uint32) error { return nil }
func (f *fakeBorderAPI) MapOverlay(x11.WindowID) error              { return nil }
func (f *fakeBorderAPI) UnmapOverlay(x11.WindowID) error            { f.unmapCalls++; return nil }
func (f *fakeBorderAPI) InvalidateOverlay(x11.WindowID) error       { return nil }
func (f *fakeBorderAPI) EventLoop()                                 { <-f.eventLoopDone }

type fakeDesktop struct{}

func (fakeDesktop) CurrentDesktop() (int, error)    { return 0, nil }
func (fakeDesktop) SetCurrentDesktop(int) error     { return nil }
func (fakeDesktop) EnableFocusFollowsMouse() error  { return nil }
func (fakeDesktop) DisableFocusFollowsMouse() error { return nil }

func newTestSetup(t *testing.T) (*wm.Manager, *fakeBorderAPI, *slog.Logger) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := settings.NewStore()
	mgr := wm.NewManager(fakeDesktop{}, store, rules.NewRegistry(), logger)

	api := &fakeBorderAPI{
		rect:          x11.Rect{X: 10, Y: 10, Width: 500, Height: 300},
		eventLoopDone: make(chan struct{}),
	}
	t.Cleanup(func() { close(api.eventLoopDone) })

	b, err := border.Create("test-border", api, store, logger)
	if err != nil {
		t.Fatalf("border.Create failed: %v", err)
	}
	mgr.SetBorder(b)
	return mgr, api, logger
}

func TestReconcileReassertsBorder(t *testing.T) {
	mgr, api, logger := newTestSetup(t)
	mgr.Settings().SetBorderEnabled(true)

	r := NewReconciler(ReconcilerConfig{Logger: logger}, mgr, func() (x11.WindowID, error) {
		return 7, nil
	})
	r.ReconcileNow()

	if api.configureCalls != 1 {
		t.Errorf("configure calls = %d, want 1", api.configureCalls)
	}
}

func TestReconcileSkipsWhenBorderDisabled(t *testing.T) {
	mgr, api, logger := newTestSetup(t)
	mgr.Settings().SetBorderEnabled(false)

	r := NewReconciler(ReconcilerConfig{Logger: logger}, mgr, func() (x11.WindowID, error) {
		t.Error("focus should not be queried while the border is disabled")
		return 0, nil
	})
	r.ReconcileNow()

	if api.configureCalls != 0 {
		t.Errorf("configure calls = %d, want 0", api.configureCalls)
	}
}

func TestReconcileParksBorderWithoutFocus(t *testing.T) {
	mgr, api, logger := newTestSetup(t)
	mgr.Settings().SetBorderEnabled(true)

	r := NewReconciler(ReconcilerConfig{Logger: logger}, mgr, func() (x11.WindowID, error) {
		return 0, errors.New("no active window")
	})
	r.ReconcileNow()

	if api.unmapCalls != 1 {
		t.Errorf("unmap calls = %d, want the border parked once", api.unmapCalls)
	}
	if api.configureCalls != 0 {
		t.Errorf("configure calls = %d, want 0", api.configureCalls)
	}
}
