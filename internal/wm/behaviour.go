package wm

import (
	"encoding/json"
	"fmt"
)

// WindowContainerBehaviour says what happens when a new window appears on a
// workspace: a container of its own, or stacked onto the focused one.
type WindowContainerBehaviour string

const (
	ContainerCreate WindowContainerBehaviour = "Create"
	ContainerAppend WindowContainerBehaviour = "Append"
)

func (b *WindowContainerBehaviour) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch WindowContainerBehaviour(s) {
	case ContainerCreate, ContainerAppend:
		*b = WindowContainerBehaviour(s)
		return nil
	default:
		return fmt.Errorf("unknown window container behaviour %q", s)
	}
}

// MoveBehaviour says what a cross-monitor move does to the window already
// occupying the target slot.
type MoveBehaviour string

const (
	MoveSwap   MoveBehaviour = "Swap"
	MoveInsert MoveBehaviour = "Insert"
)

func (b *MoveBehaviour) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch MoveBehaviour(s) {
	case MoveSwap, MoveInsert:
		*b = MoveBehaviour(s)
		return nil
	default:
		return fmt.Errorf("unknown move behaviour %q", s)
	}
}

// OperationBehaviour says whether commands may act on unmanaged windows.
type OperationBehaviour string

const (
	OperationOp   OperationBehaviour = "Op"
	OperationNoOp OperationBehaviour = "NoOp"
)

func (b *OperationBehaviour) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch OperationBehaviour(s) {
	case OperationOp, OperationNoOp:
		*b = OperationBehaviour(s)
		return nil
	default:
		return fmt.Errorf("unknown operation behaviour %q", s)
	}
}

// FocusFollowsMouseImplementation picks who moves input focus under the
// pointer: the X server's native pointer-focus mode, or our own hover hook.
type FocusFollowsMouseImplementation string

const (
	FocusFollowsMouseXorg   FocusFollowsMouseImplementation = "Xorg"
	FocusFollowsMouseTatami FocusFollowsMouseImplementation = "Tatami"
)

func (f *FocusFollowsMouseImplementation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch FocusFollowsMouseImplementation(s) {
	case FocusFollowsMouseXorg, FocusFollowsMouseTatami:
		*f = FocusFollowsMouseImplementation(s)
		return nil
	default:
		return fmt.Errorf("unknown focus follows mouse implementation %q", s)
	}
}
