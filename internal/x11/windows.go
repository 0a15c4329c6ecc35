package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// ActiveWindow returns the currently focused top-level window via
// _NET_ACTIVE_WINDOW.
func (c *Connection) ActiveWindow() (WindowID, error) {
	win, err := ewmh.ActiveWindowGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get active window: %w", err)
	}
	if win == 0 {
		return 0, fmt.Errorf("no active window")
	}
	return WindowID(win), nil
}

// WindowRect returns the bounding rectangle of a window including its
// decorations.
func (c *Connection) WindowRect(windowID WindowID) (Rect, error) {
	win := xwindow.New(c.XUtil, xproto.Window(windowID))
	geom, err := win.DecorGeometry()
	if err != nil {
		return Rect{}, fmt.Errorf("failed to get geometry of window %d: %w", windowID, err)
	}

	return Rect{
		X:      geom.X(),
		Y:      geom.Y(),
		Width:  geom.Width(),
		Height: geom.Height(),
	}, nil
}

// WindowTitle returns the _NET_WM_NAME of a window.
func (c *Connection) WindowTitle(windowID WindowID) (string, error) {
	name, err := ewmh.WmNameGet(c.XUtil, xproto.Window(windowID))
	if err != nil {
		return "", fmt.Errorf("failed to get title of window %d: %w", windowID, err)
	}
	return name, nil
}

// WindowClass returns the class hint of a window (the second WM_CLASS field).
func (c *Connection) WindowClass(windowID WindowID) (string, error) {
	reply, err := xproto.GetProperty(
		c.XUtil.Conn(),
		false,
		xproto.Window(windowID),
		xproto.AtomWmClass,
		xproto.AtomString,
		0,
		(1<<32)-1,
	).Reply()
	if err != nil {
		return "", fmt.Errorf("failed to get class of window %d: %w", windowID, err)
	}

	// WM_CLASS holds two NUL-terminated strings: instance, then class.
	value := reply.Value
	for i, b := range value {
		if b == 0 {
			class := value[i+1:]
			if len(class) > 0 && class[len(class)-1] == 0 {
				class = class[:len(class)-1]
			}
			return string(class), nil
		}
	}
	return string(value), nil
}
