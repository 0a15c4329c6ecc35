package settings

import (
	"encoding/json"
	"fmt"
)

// HidingBehaviour says how windows are removed from view when their
// workspace is deactivated.
type HidingBehaviour string

const (
	HideUnmap         HidingBehaviour = "Hide"
	HideMinimize      HidingBehaviour = "Minimize"
	HideMoveOffscreen HidingBehaviour = "Cloak"
)

// UnmarshalJSON validates the behaviour against the known set.
func (h *HidingBehaviour) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch HidingBehaviour(s) {
	case HideUnmap, HideMinimize, HideMoveOffscreen:
		*h = HidingBehaviour(s)
		return nil
	default:
		return fmt.Errorf("unknown window hiding behaviour %q", s)
	}
}

// Ease names the interpolation curve for window movement animation.
type Ease string

const (
	EaseLinear     Ease = "Linear"
	EaseInSine     Ease = "EaseInSine"
	EaseOutSine    Ease = "EaseOutSine"
	EaseInOutSine  Ease = "EaseInOutSine"
	EaseInQuad     Ease = "EaseInQuad"
	EaseOutQuad    Ease = "EaseOutQuad"
	EaseInOutQuad  Ease = "EaseInOutQuad"
	EaseInCubic    Ease = "EaseInCubic"
	EaseOutCubic   Ease = "EaseOutCubic"
	EaseInOutCubic Ease = "EaseInOutCubic"
	EaseInExpo     Ease = "EaseInExpo"
	EaseOutExpo    Ease = "EaseOutExpo"
	EaseInOutExpo  Ease = "EaseInOutExpo"
)

// UnmarshalJSON validates the ease against the known set.
func (e *Ease) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch Ease(s) {
	case EaseLinear, EaseInSine, EaseOutSine, EaseInOutSine,
		EaseInQuad, EaseOutQuad, EaseInOutQuad,
		EaseInCubic, EaseOutCubic, EaseInOutCubic,
		EaseInExpo, EaseOutExpo, EaseInOutExpo:
		*e = Ease(s)
		return nil
	default:
		return fmt.Errorf("unknown animation ease %q", s)
	}
}

// Colour is an RGB triple as it appears in the configuration document.
type Colour struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Pixel packs the colour into the 0x00RRGGBB form the X server expects for
// window background pixels.
func (c Colour) Pixel() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// ColourFromPixel unpacks a background pixel back into an RGB triple.
func ColourFromPixel(pixel uint32) Colour {
	return Colour{
		R: uint8(pixel >> 16),
		G: uint8(pixel >> 8),
		B: uint8(pixel),
	}
}
