package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

// WindowID is an X11 window identifier.
type WindowID uint32

// Connection manages an X11 connection and core X resources. The daemon
// holds one connection for manager queries; the border overlay dials its
// own so its event loop never contends with the main one.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// NewConnection establishes a connection to the X11 server.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// EventLoop runs the X11 event retrieval/dispatch loop (blocking). It
// returns when Quit is called or the connection is torn down.
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Quit signals the event loop to exit.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Close disconnects from the X11 server.
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
