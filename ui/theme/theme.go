// Package theme holds the application's dark theme.
package theme

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// Custom theme color names
const (
	ColorNameSurface        fyne.ThemeColorName = "surface"
	ColorNameSurfaceVariant fyne.ThemeColorName = "surfaceVariant"
	ColorNameDivider        fyne.ThemeColorName = "divider"

	// Stage colors
	ColorNameStagePending    fyne.ThemeColorName = "stagePending"
	ColorNameStageProcessing fyne.ThemeColorName = "stageProcessing"
	ColorNameStageCompleted  fyne.ThemeColorName = "stageCompleted"
	ColorNameStageFailed     fyne.ThemeColorName = "stageFailed"

	ColorNameTextSecondary fyne.ThemeColorName = "textSecondary"
)

// Custom size names
const (
	SizeNameCardRadius fyne.ThemeSizeName = "cardRadius"
)

// NarratorTheme is the dark theme used by the narrator window.
type NarratorTheme struct{}

var _ fyne.Theme = (*NarratorTheme)(nil)

// Color returns the color for the specified name
func (t *NarratorTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	// Always dark
	switch name {
	case theme.ColorNameBackground:
		return ColorBackground
	case theme.ColorNameForeground:
		return ColorTextPrimary
	case theme.ColorNamePrimary, theme.ColorNameButton:
		return ColorPrimary

	case theme.ColorNameInputBackground:
		return ColorInputBg
	case theme.ColorNameInputBorder, theme.ColorNameSeparator:
		return ColorDivider
	case theme.ColorNamePlaceHolder:
		return ColorTextHint
	case theme.ColorNameFocus:
		return ColorFocusBorder

	case theme.ColorNameSelection:
		return WithAlpha(ColorPrimary, 80)
	case theme.ColorNameHover:
		return ColorHover
	case theme.ColorNamePressed:
		return ColorPressed

	case theme.ColorNameDisabled:
		return ColorTextDisabled
	case theme.ColorNameDisabledButton:
		return ColorDisabledBg

	case theme.ColorNameScrollBar:
		return ColorScrollbar

	case theme.ColorNameError:
		return ColorError
	case theme.ColorNameSuccess:
		return ColorSuccess
	case theme.ColorNameWarning:
		return ColorWarning

	case theme.ColorNameShadow:
		return color.NRGBA{R: 0, G: 0, B: 0, A: 100}

	case theme.ColorNameOverlayBackground:
		return ColorOverlay
	case theme.ColorNameMenuBackground, theme.ColorNameHeaderBackground:
		return ColorSurface

	case ColorNameSurface:
		return ColorSurface
	case ColorNameSurfaceVariant:
		return ColorSurfaceVariant
	case ColorNameDivider:
		return ColorDivider
	case ColorNameStagePending:
		return ColorPending
	case ColorNameStageProcessing:
		return ColorProcessing
	case ColorNameStageCompleted:
		return ColorSuccess
	case ColorNameStageFailed:
		return ColorError
	case ColorNameTextSecondary:
		return ColorTextSecondary

	case theme.ColorNameHyperlink:
		return ColorSecondary

	default:
		return theme.DefaultTheme().Color(name, theme.VariantDark)
	}
}

// Font returns the font for the specified style
func (t *NarratorTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

// Icon returns the icon for the specified name
func (t *NarratorTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

// Size returns the size for the specified name
func (t *NarratorTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 8
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameText:
		return 14
	case theme.SizeNameHeadingText:
		return 22
	case theme.SizeNameSubHeadingText:
		return 17
	case theme.SizeNameCaptionText:
		return 12
	case theme.SizeNameInputRadius:
		return 6

	case SizeNameCardRadius:
		return 8

	default:
		return theme.DefaultTheme().Size(name)
	}
}
