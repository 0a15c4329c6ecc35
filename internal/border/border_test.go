package border

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/tatamiwm/tatami/internal/settings"
	"github.com/tatamiwm/tatami/internal/x11"
)

type fakeAPI struct {
	activeWindow    x11.WindowID
	activeWindowErr error
	windowRect      x11.Rect
	windowRectErr   error
	createErr       error

	activeCalls     int
	rectCalls       int
	configureCalls  int
	configuredRect  x11.Rect
	configuredRaise bool
	mapCalls        int
	unmapCalls      int
	colorCalls      int
	lastColor       uint32
	invalidateCalls int
	eventLoopDone   chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{eventLoopDone: make(chan struct{})}
}

func (f *fakeAPI) ActiveWindow() (x11.WindowID, error) {
	f.activeCalls++
	return f.activeWindow, f.activeWindowErr
}

func (f *fakeAPI) WindowRect(x11.WindowID) (x11.Rect, error) {
	f.rectCalls++
	return f.windowRect, f.windowRectErr
}

func (f *fakeAPI) CreateOverlayWindow(string) (x11.WindowID, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	return 42, nil
}

func (f *fakeAPI) ConfigureOverlay(_ x11.WindowID, rect x11.Rect, raise bool) error {
	f.configureCalls++
	f.configuredRect = rect
	f.configuredRaise = raise
	return nil
}

func (f *fakeAPI) SetOverlayColor(_ x11.WindowID, color uint32) error {
	f.colorCalls++
	f.lastColor = color
	return nil
}

func (f *fakeAPI) MapOverlay(x11.WindowID) error   { f.mapCalls++; return nil }
func (f *fakeAPI) UnmapOverlay(x11.WindowID) error { f.unmapCalls++; return nil }

func (f *fakeAPI) InvalidateOverlay(x11.WindowID) error {
	f.invalidateCalls++
	return nil
}

func (f *fakeAPI) EventLoop() { <-f.eventLoopDone }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBorder(t *testing.T, api *fakeAPI, store *settings.Store) *Border {
	t.Helper()
	t.Cleanup(func() { close(api.eventLoopDone) })

	b, err := Create("test-border", api, store, discardLogger())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return b
}

func TestCreateHandsBackWindowAndStartsEnabled(t *testing.T) {
	api := newFakeAPI()
	b := newTestBorder(t, api, settings.NewStore())

	if b.Window() != 42 {
		t.Errorf("Window = %d, want 42", b.Window())
	}
	if !b.IsEnabled() {
		t.Error("border should start enabled")
	}
	if api.colorCalls != 1 {
		t.Errorf("expected initial colour to be applied once, got %d calls", api.colorCalls)
	}
}

func TestCreatePropagatesWindowError(t *testing.T) {
	api := newFakeAPI()
	api.createErr = errors.New("no server")

	if _, err := Create("test-border", api, settings.NewStore(), discardLogger()); err == nil {
		t.Fatal("expected Create to fail when the overlay window cannot be created")
	}
}

func TestSetPositionGeometry(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		offset int
		target x11.Rect
		want   x11.Rect
	}{
		{
			name:   "negative offset expands before width grows",
			width:  8,
			offset: -1,
			target: x11.Rect{X: 100, Y: 100, Width: 600, Height: 400},
			want:   x11.Rect{X: 91, Y: 91, Width: 618, Height: 418},
		},
		{
			name:   "positive offset shrinks",
			width:  4,
			offset: 10,
			target: x11.Rect{X: 0, Y: 0, Width: 100, Height: 100},
			want:   x11.Rect{X: 6, Y: 6, Width: 88, Height: 88},
		},
		{
			name:   "zero width tracks the offset rect exactly",
			width:  0,
			offset: 2,
			target: x11.Rect{X: 50, Y: 50, Width: 200, Height: 200},
			want:   x11.Rect{X: 52, Y: 52, Width: 196, Height: 196},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			api.windowRect = tt.target
			store := settings.NewStore()
			store.SetBorderWidth(tt.width)
			store.SetBorderOffset(tt.offset)
			b := newTestBorder(t, api, store)

			if err := b.SetPosition(7, false); err != nil {
				t.Fatalf("SetPosition failed: %v", err)
			}
			if api.configuredRect != tt.want {
				t.Errorf("configured rect = %+v, want %+v", api.configuredRect, tt.want)
			}
			if !api.configuredRaise {
				t.Error("expected the overlay to be restacked above siblings")
			}
			if b.Rect() != tt.want {
				t.Errorf("Rect() = %+v, want %+v", b.Rect(), tt.want)
			}
		})
	}
}

func TestSetPositionActivateMapsOverlay(t *testing.T) {
	api := newFakeAPI()
	api.windowRect = x11.Rect{Width: 100, Height: 100}
	b := newTestBorder(t, api, settings.NewStore())

	if err := b.SetPosition(7, false); err != nil {
		t.Fatalf("SetPosition failed: %v", err)
	}
	if api.mapCalls != 0 {
		t.Errorf("expected no map without activate, got %d", api.mapCalls)
	}

	if err := b.SetPosition(7, true); err != nil {
		t.Fatalf("SetPosition failed: %v", err)
	}
	if api.mapCalls != 1 {
		t.Errorf("expected 1 map with activate, got %d", api.mapCalls)
	}
}

func TestSetPositionDisabledIsNoOp(t *testing.T) {
	api := newFakeAPI()
	b := newTestBorder(t, api, settings.NewStore())
	b.Disable()

	if err := b.SetPosition(7, true); err != nil {
		t.Fatalf("SetPosition on disabled border returned error: %v", err)
	}
	if api.rectCalls != 0 || api.configureCalls != 0 || api.mapCalls != 0 {
		t.Errorf("disabled border touched the server: rect=%d configure=%d map=%d",
			api.rectCalls, api.configureCalls, api.mapCalls)
	}
}

func TestDisableTwiceHidesOnce(t *testing.T) {
	api := newFakeAPI()
	b := newTestBorder(t, api, settings.NewStore())

	b.Disable()
	b.Disable()

	if api.unmapCalls != 1 {
		t.Errorf("expected exactly 1 unmap across repeated disables, got %d", api.unmapCalls)
	}
	if b.IsEnabled() {
		t.Error("border should be disabled")
	}
}

func TestEnableWhenEnabledSkipsFocusQuery(t *testing.T) {
	api := newFakeAPI()
	b := newTestBorder(t, api, settings.NewStore())

	b.Enable()

	if api.activeCalls != 0 {
		t.Errorf("enable on an enabled border queried focus %d times", api.activeCalls)
	}
}

func TestEnableRepositionsAroundFocusedWindow(t *testing.T) {
	api := newFakeAPI()
	api.activeWindow = 9
	api.windowRect = x11.Rect{X: 10, Y: 10, Width: 300, Height: 200}
	b := newTestBorder(t, api, settings.NewStore())

	b.Disable()
	b.Enable()

	if !b.IsEnabled() {
		t.Fatal("border should be enabled")
	}
	if api.activeCalls != 1 {
		t.Errorf("expected 1 focus query, got %d", api.activeCalls)
	}
	if api.configureCalls != 1 {
		t.Errorf("expected the border to be repositioned, got %d configure calls", api.configureCalls)
	}
}

func TestEnableSwallowsMissingFocus(t *testing.T) {
	api := newFakeAPI()
	api.activeWindowErr = errors.New("no active window")
	b := newTestBorder(t, api, settings.NewStore())

	b.Disable()
	b.Enable()

	if !b.IsEnabled() {
		t.Error("enable must still flip the flag when no window has focus")
	}
	if api.configureCalls != 0 {
		t.Errorf("expected no positioning without a focused window, got %d", api.configureCalls)
	}
}

func TestUpdateColourRecordsAndRepaints(t *testing.T) {
	api := newFakeAPI()
	store := settings.NewStore()
	b := newTestBorder(t, api, store)

	if err := b.UpdateColour(0xffcb6b); err != nil {
		t.Fatalf("UpdateColour failed: %v", err)
	}
	if api.lastColor != 0xffcb6b {
		t.Errorf("painted colour = %#x, want 0xffcb6b", api.lastColor)
	}
	if store.BorderColourCurrent() != 0xffcb6b {
		t.Errorf("current colour = %#x, want 0xffcb6b", store.BorderColourCurrent())
	}
}
