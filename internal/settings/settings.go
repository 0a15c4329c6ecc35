// Package settings holds the process-wide runtime settings shared between
// the configuration reconciler, the border overlay, and window
// classification. A single Store is constructed at startup and injected into
// every component that needs it; each field carries its own synchronization
// so unrelated readers never block behind another field's update.
package settings

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/tatamiwm/tatami/internal/x11"
)

// Defaults used when the configuration document omits a field.
const (
	DefaultBorderWidth         = 8
	DefaultBorderOffset        = -1
	DefaultContainerPadding    = 10
	DefaultWorkspacePadding    = 10
	DefaultAnimationDurationMS = 250
)

// Store is the global runtime settings aggregate. Scalars use typed atomics;
// maps and enums use per-field mutexes.
type Store struct {
	borderWidth   atomic.Int32
	borderOffset  atomic.Int32
	borderEnabled atomic.Bool

	colourSingle  atomic.Uint32
	colourStack   atomic.Uint32
	colourMonocle atomic.Uint32
	colourCurrent atomic.Uint32

	containerPadding atomic.Int32
	workspacePadding atomic.Int32

	hidingMu sync.RWMutex
	hiding   HidingBehaviour

	monitorPrefsMu sync.RWMutex
	monitorPrefs   map[int]x11.Rect

	displayPrefsMu sync.RWMutex
	displayPrefs   map[int]string

	animationEnabled    atomic.Bool
	animationDurationMS atomic.Int64

	easeMu sync.RWMutex
	ease   Ease
}

// NewStore returns a store populated with every field's documented default.
func NewStore() *Store {
	s := &Store{
		hiding:       HideUnmap,
		ease:         EaseLinear,
		monitorPrefs: make(map[int]x11.Rect),
		displayPrefs: make(map[int]string),
	}
	s.borderWidth.Store(DefaultBorderWidth)
	s.borderOffset.Store(DefaultBorderOffset)
	s.containerPadding.Store(DefaultContainerPadding)
	s.workspacePadding.Store(DefaultWorkspacePadding)
	s.animationDurationMS.Store(DefaultAnimationDurationMS)
	return s
}

func (s *Store) BorderWidth() int         { return int(s.borderWidth.Load()) }
func (s *Store) SetBorderWidth(width int) { s.borderWidth.Store(int32(width)) }

func (s *Store) BorderOffset() int          { return int(s.borderOffset.Load()) }
func (s *Store) SetBorderOffset(offset int) { s.borderOffset.Store(int32(offset)) }

func (s *Store) BorderEnabled() bool           { return s.borderEnabled.Load() }
func (s *Store) SetBorderEnabled(enabled bool) { s.borderEnabled.Store(enabled) }

// SetBorderColours stores the per-state border colours. The current colour
// tracks single until the focus hook swaps it.
func (s *Store) SetBorderColours(single, stack, monocle Colour) {
	s.colourSingle.Store(single.Pixel())
	s.colourCurrent.Store(single.Pixel())
	s.colourStack.Store(stack.Pixel())
	s.colourMonocle.Store(monocle.Pixel())
}

func (s *Store) BorderColourSingle() uint32  { return s.colourSingle.Load() }
func (s *Store) BorderColourStack() uint32   { return s.colourStack.Load() }
func (s *Store) BorderColourMonocle() uint32 { return s.colourMonocle.Load() }
func (s *Store) BorderColourCurrent() uint32 { return s.colourCurrent.Load() }

func (s *Store) SetBorderColourCurrent(pixel uint32) { s.colourCurrent.Store(pixel) }

func (s *Store) ContainerPadding() int       { return int(s.containerPadding.Load()) }
func (s *Store) SetContainerPadding(pad int) { s.containerPadding.Store(int32(pad)) }
func (s *Store) WorkspacePadding() int       { return int(s.workspacePadding.Load()) }
func (s *Store) SetWorkspacePadding(pad int) { s.workspacePadding.Store(int32(pad)) }

func (s *Store) HidingBehaviour() HidingBehaviour {
	s.hidingMu.RLock()
	defer s.hidingMu.RUnlock()
	return s.hiding
}

func (s *Store) SetHidingBehaviour(behaviour HidingBehaviour) {
	s.hidingMu.Lock()
	defer s.hidingMu.Unlock()
	s.hiding = behaviour
}

// MonitorIndexPreferences returns a copy of the monitor index preference map.
func (s *Store) MonitorIndexPreferences() map[int]x11.Rect {
	s.monitorPrefsMu.RLock()
	defer s.monitorPrefsMu.RUnlock()
	out := make(map[int]x11.Rect, len(s.monitorPrefs))
	for idx, rect := range s.monitorPrefs {
		out[idx] = rect
	}
	return out
}

// SetMonitorIndexPreferences replaces the monitor index preference map.
func (s *Store) SetMonitorIndexPreferences(prefs map[int]x11.Rect) {
	copied := make(map[int]x11.Rect, len(prefs))
	for idx, rect := range prefs {
		copied[idx] = rect
	}
	s.monitorPrefsMu.Lock()
	defer s.monitorPrefsMu.Unlock()
	s.monitorPrefs = copied
}

// DisplayIndexPreferences returns a copy of the display index preference map.
func (s *Store) DisplayIndexPreferences() map[int]string {
	s.displayPrefsMu.RLock()
	defer s.displayPrefsMu.RUnlock()
	out := make(map[int]string, len(s.displayPrefs))
	for idx, name := range s.displayPrefs {
		out[idx] = name
	}
	return out
}

// SetDisplayIndexPreferences replaces the display index preference map.
func (s *Store) SetDisplayIndexPreferences(prefs map[int]string) {
	copied := make(map[int]string, len(prefs))
	for idx, name := range prefs {
		copied[idx] = name
	}
	s.displayPrefsMu.Lock()
	defer s.displayPrefsMu.Unlock()
	s.displayPrefs = copied
}

func (s *Store) AnimationEnabled() bool           { return s.animationEnabled.Load() }
func (s *Store) SetAnimationEnabled(enabled bool) { s.animationEnabled.Store(enabled) }

func (s *Store) AnimationDuration() time.Duration {
	return time.Duration(s.animationDurationMS.Load()) * time.Millisecond
}

func (s *Store) SetAnimationDurationMS(millis int64) { s.animationDurationMS.Store(millis) }

func (s *Store) AnimationEase() Ease {
	s.easeMu.RLock()
	defer s.easeMu.RUnlock()
	return s.ease
}

func (s *Store) SetAnimationEase(ease Ease) {
	s.easeMu.Lock()
	defer s.easeMu.Unlock()
	s.ease = ease
}

// Snapshot is a plain-value copy of every field, taken for serialization.
type Snapshot struct {
	BorderWidth         int
	BorderOffset        int
	BorderEnabled       bool
	BorderColourSingle  uint32
	BorderColourStack   uint32
	BorderColourMonocle uint32
	ContainerPadding    int
	WorkspacePadding    int
	HidingBehaviour     HidingBehaviour
	MonitorIndexPrefs   map[int]x11.Rect
	DisplayIndexPrefs   map[int]string
	AnimationEnabled    bool
	AnimationDurationMS int64
	AnimationEase       Ease
}

// Snapshot copies every field. Each field is read under its own guard, so
// the snapshot is field-wise consistent rather than globally instantaneous.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		BorderWidth:         s.BorderWidth(),
		BorderOffset:        s.BorderOffset(),
		BorderEnabled:       s.BorderEnabled(),
		BorderColourSingle:  s.BorderColourSingle(),
		BorderColourStack:   s.BorderColourStack(),
		BorderColourMonocle: s.BorderColourMonocle(),
		ContainerPadding:    s.ContainerPadding(),
		WorkspacePadding:    s.WorkspacePadding(),
		HidingBehaviour:     s.HidingBehaviour(),
		MonitorIndexPrefs:   s.MonitorIndexPreferences(),
		DisplayIndexPrefs:   s.DisplayIndexPreferences(),
		AnimationEnabled:    s.AnimationEnabled(),
		AnimationDurationMS: s.animationDurationMS.Load(),
		AnimationEase:       s.AnimationEase(),
	}
}
