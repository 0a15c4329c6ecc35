package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WatchActiveWindow subscribes to root property changes and invokes onChange
// with the newly focused window whenever _NET_ACTIVE_WINDOW moves. The
// callback runs on the event loop goroutine and must not block.
func (c *Connection) WatchActiveWindow(onChange func(WindowID)) error {
	activeAtom, err := xprop.Atm(c.XUtil, "_NET_ACTIVE_WINDOW")
	if err != nil {
		return fmt.Errorf("failed to intern _NET_ACTIVE_WINDOW: %w", err)
	}

	if err := xwindow.New(c.XUtil, c.Root).Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("failed to listen on root window: %w", err)
	}

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		if ev.Atom != activeAtom {
			return
		}
		win, err := c.ActiveWindow()
		if err != nil {
			return
		}
		onChange(win)
	}).Connect(c.XUtil, c.Root)

	return nil
}
