// Package ui draws the flow viewer window with raylib: the trail surface,
// the HUD and stats panels, and keyboard and mouse handling.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg       rl.Color
	PanelBorder   rl.Color
	SectionHeader rl.Color
	LabelColor    rl.Color
	ValueColor    rl.Color
	BarBg         rl.Color
	BarFillLow    rl.Color
	BarFillMedium rl.Color
	BarFillHigh   rl.Color
	Padding       int32
	LineHeight    int32
	LabelWidth    int32
	BarHeight     int32
	FontSize      int32
	HeaderFont    int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:       rl.Color{R: 10, G: 22, B: 32, A: 220},
		PanelBorder:   rl.Color{R: 50, G: 80, B: 100, A: 255},
		SectionHeader: rl.Color{R: 159, G: 216, B: 245, A: 255},
		LabelColor:    rl.LightGray,
		ValueColor:    rl.RayWhite,
		BarBg:         rl.Color{R: 30, G: 40, B: 50, A: 255},
		BarFillLow:    rl.Color{R: 100, G: 200, B: 120, A: 255},
		BarFillMedium: rl.Color{R: 220, G: 190, B: 90, A: 255},
		BarFillHigh:   rl.Color{R: 220, G: 90, B: 90, A: 255},
		Padding:       10,
		LineHeight:    16,
		LabelWidth:    90,
		BarHeight:     10,
		FontSize:      12,
		HeaderFont:    14,
	}
}
