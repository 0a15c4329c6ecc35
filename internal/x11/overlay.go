package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// CreateOverlayWindow creates a single override-redirect window that bypasses
// the window manager. The window starts unmapped at 1x1; callers position and
// map it afterwards.
func (c *Connection) CreateOverlayWindow(name string) (WindowID, error) {
	conn := c.XUtil.Conn()
	screen := c.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate overlay window id: %w", err)
	}

	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		c.Root,
		0, 0,
		1, 1,
		0, // border_width
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwOverrideRedirect|xproto.CwBackPixel,
		// Value list order follows the bit positions of the mask (low -> high).
		// CwBackPixel comes before CwOverrideRedirect, so it must be first.
		[]uint32{0, 1}, // back_pixel=black, override_redirect=true
	).Check()
	if err != nil {
		return 0, fmt.Errorf("failed to create overlay window: %w", err)
	}

	if err := ewmh.WmNameSet(c.XUtil, wid, name); err != nil {
		return 0, fmt.Errorf("failed to name overlay window: %w", err)
	}

	return WindowID(wid), nil
}

// ConfigureOverlay moves and resizes an overlay window. When raise is true
// the window is restacked above its siblings; overlay windows are
// override-redirect, so they never become permanently topmost and never take
// input focus.
func (c *Connection) ConfigureOverlay(windowID WindowID, rect Rect, raise bool) error {
	conn := c.XUtil.Conn()

	width, height := rect.Width, rect.Height
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
	values := []uint32{
		uint32(rect.X),
		uint32(rect.Y),
		uint32(width),
		uint32(height),
	}
	if raise {
		mask |= xproto.ConfigWindowStackMode
		values = append(values, xproto.StackModeAbove)
	}

	return xproto.ConfigureWindowChecked(conn, xproto.Window(windowID), mask, values).Check()
}

// SetOverlayColor sets the background pixel of an overlay window and clears
// it so the new color is shown.
func (c *Connection) SetOverlayColor(windowID WindowID, color uint32) error {
	conn := c.XUtil.Conn()

	err := xproto.ChangeWindowAttributesChecked(
		conn,
		xproto.Window(windowID),
		xproto.CwBackPixel,
		[]uint32{color},
	).Check()
	if err != nil {
		return err
	}

	return xproto.ClearAreaChecked(conn, false, xproto.Window(windowID), 0, 0, 0, 0).Check()
}

// MapOverlay makes an overlay window visible.
func (c *Connection) MapOverlay(windowID WindowID) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), xproto.Window(windowID)).Check()
}

// UnmapOverlay hides an overlay window without destroying it.
func (c *Connection) UnmapOverlay(windowID WindowID) error {
	return xproto.UnmapWindowChecked(c.XUtil.Conn(), xproto.Window(windowID)).Check()
}

// InvalidateOverlay requests a redraw of the overlay window's current area.
func (c *Connection) InvalidateOverlay(windowID WindowID) error {
	return xproto.ClearAreaChecked(c.XUtil.Conn(), true, xproto.Window(windowID), 0, 0, 0, 0).Check()
}
