// Package border draws the focus indicator: a single override-redirect
// window kept stacked just above the focused window.
package border

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tatamiwm/tatami/internal/settings"
	"github.com/tatamiwm/tatami/internal/x11"
)

// API is the subset of the X11 connection the border needs. Tests swap in a
// fake; production wiring passes an *x11.Connection dialed specifically for
// the border so its event loop never contends with the manager's.
type API interface {
	ActiveWindow() (x11.WindowID, error)
	WindowRect(windowID x11.WindowID) (x11.Rect, error)
	CreateOverlayWindow(name string) (x11.WindowID, error)
	ConfigureOverlay(windowID x11.WindowID, rect x11.Rect, raise bool) error
	SetOverlayColor(windowID x11.WindowID, color uint32) error
	MapOverlay(windowID x11.WindowID) error
	UnmapOverlay(windowID x11.WindowID) error
	InvalidateOverlay(windowID x11.WindowID) error
	EventLoop()
}

// Border owns the overlay window. The window id is immutable after Create;
// the enabled flag and the last applied rect carry their own guards.
type Border struct {
	api    API
	store  *settings.Store
	logger *slog.Logger

	window  x11.WindowID
	enabled atomic.Bool

	rectMu sync.Mutex
	rect   x11.Rect
}

type createResult struct {
	window x11.WindowID
	err    error
}

// Create builds the overlay window on a dedicated goroutine that then serves
// as its event loop, and hands the window id back through a single-use
// channel. The border starts enabled; callers hide it afterwards if the
// configuration says so.
func Create(name string, api API, store *settings.Store, logger *slog.Logger) (*Border, error) {
	handoff := make(chan createResult, 1)

	go func() {
		window, err := api.CreateOverlayWindow(name)
		handoff <- createResult{window: window, err: err}
		if err != nil {
			return
		}
		api.EventLoop()
	}()

	result := <-handoff
	if result.err != nil {
		return nil, fmt.Errorf("failed to create border window: %w", result.err)
	}

	b := &Border{
		api:    api,
		store:  store,
		logger: logger,
		window: result.window,
	}
	b.enabled.Store(true)

	if err := api.SetOverlayColor(b.window, store.BorderColourCurrent()); err != nil {
		logger.Warn("failed to set initial border colour", "error", err)
	}

	return b, nil
}

// Window returns the overlay window id.
func (b *Border) Window() x11.WindowID {
	return b.window
}

// IsEnabled reports whether the border responds to positioning requests.
func (b *Border) IsEnabled() bool {
	return b.enabled.Load()
}

// SetPosition wraps the border around the target window using the configured
// offset and width, restacking the overlay above its siblings. When activate
// is set the overlay is also mapped. Positioning a disabled border is a
// no-op.
func (b *Border) SetPosition(target x11.WindowID, activate bool) error {
	if !b.enabled.Load() {
		return nil
	}

	rect, err := b.api.WindowRect(target)
	if err != nil {
		return fmt.Errorf("failed to measure window %d: %w", target, err)
	}

	rect.AddPadding(b.store.BorderOffset())
	rect.AddMargin(b.store.BorderWidth())

	b.rectMu.Lock()
	b.rect = rect
	b.rectMu.Unlock()

	if err := b.api.ConfigureOverlay(b.window, rect, true); err != nil {
		return fmt.Errorf("failed to position border: %w", err)
	}

	if activate {
		if err := b.api.MapOverlay(b.window); err != nil {
			return fmt.Errorf("failed to show border: %w", err)
		}
	}

	return nil
}

// Hide unmaps the overlay without destroying it.
func (b *Border) Hide() error {
	return b.api.UnmapOverlay(b.window)
}

// Disable stops the border responding to positioning and hides it. Disabling
// an already disabled border does nothing.
func (b *Border) Disable() {
	if !b.enabled.Swap(false) {
		return
	}
	if err := b.Hide(); err != nil {
		b.logger.Warn("failed to hide border on disable", "error", err)
	}
}

// Enable makes the border respond to positioning again and repositions it
// around the focused window if one exists. Every step is best effort; a
// window that refuses to be measured must not fail configuration loading.
// Enabling an already enabled border does nothing.
func (b *Border) Enable() {
	if b.enabled.Swap(true) {
		return
	}

	focused, err := b.api.ActiveWindow()
	if err != nil {
		b.logger.Debug("no focused window to wrap on enable", "error", err)
		return
	}
	if err := b.SetPosition(focused, false); err != nil {
		b.logger.Warn("failed to position border on enable", "error", err)
	}
}

// UpdateColour records pixel as the current border colour and repaints the
// overlay with it.
func (b *Border) UpdateColour(pixel uint32) error {
	b.store.SetBorderColourCurrent(pixel)
	if err := b.api.SetOverlayColor(b.window, pixel); err != nil {
		return fmt.Errorf("failed to repaint border: %w", err)
	}
	return nil
}

// Invalidate forces a redraw of the overlay's current area.
func (b *Border) Invalidate() error {
	return b.api.InvalidateOverlay(b.window)
}

// Rect returns the rect the border was last positioned at.
func (b *Border) Rect() x11.Rect {
	b.rectMu.Lock()
	defer b.rectMu.Unlock()
	return b.rect
}
