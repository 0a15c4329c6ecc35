package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"
)

const focusFollowsMouseProperty = "_TATAMI_FOCUS_FOLLOWS_MOUSE"

// CurrentDesktop returns the current virtual desktop number (0-indexed) via
// _NET_CURRENT_DESKTOP.
func (c *Connection) CurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// DesktopCount returns the number of virtual desktops.
func (c *Connection) DesktopCount() (int, error) {
	count, err := ewmh.NumberOfDesktopsGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get desktop count: %w", err)
	}
	return int(count), nil
}

// SetCurrentDesktop switches to the given virtual desktop. The client message
// is built manually because the xgbutil ewmh helper panics on this library
// version (uint vs int type assertion).
func (c *Connection) SetCurrentDesktop(desktop int) error {
	atomReply, err := xproto.InternAtom(c.XUtil.Conn(), false,
		uint16(len("_NET_CURRENT_DESKTOP")), "_NET_CURRENT_DESKTOP").Reply()
	if err != nil {
		return fmt.Errorf("failed to intern _NET_CURRENT_DESKTOP: %w", err)
	}

	const sourceIndication = 2 // pager/direct action
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: c.Root,
		Type:   atomReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(desktop), sourceIndication, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// EnableFocusFollowsMouse publishes the focus-follows-mouse mode on the root
// window, where the focus event hook picks it up.
func (c *Connection) EnableFocusFollowsMouse() error {
	return c.setFocusFollowsMouse("enabled")
}

// DisableFocusFollowsMouse clears the focus-follows-mouse mode on the root
// window.
func (c *Connection) DisableFocusFollowsMouse() error {
	return c.setFocusFollowsMouse("disabled")
}

func (c *Connection) setFocusFollowsMouse(mode string) error {
	err := xprop.ChangeProp(c.XUtil, c.Root, 8, focusFollowsMouseProperty, "UTF8_STRING", []byte(mode))
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", focusFollowsMouseProperty, err)
	}
	return nil
}
