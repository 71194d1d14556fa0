package theme

import "image/color"

// Dark palette
var (
	// Background layers (darkest to lightest)
	ColorBackground     = color.NRGBA{R: 18, G: 18, B: 18, A: 255} // #121212
	ColorSurface        = color.NRGBA{R: 30, G: 30, B: 30, A: 255} // #1E1E1E
	ColorSurfaceVariant = color.NRGBA{R: 40, G: 40, B: 40, A: 255} // #282828
	ColorOverlay        = color.NRGBA{R: 50, G: 50, B: 50, A: 255} // #323232

	// Accent colors (teal)
	ColorPrimary        = color.NRGBA{R: 16, G: 163, B: 127, A: 255} // #10A37F
	ColorPrimaryVariant = color.NRGBA{R: 12, G: 122, B: 95, A: 255}  // #0C7A5F
	ColorSecondary      = color.NRGBA{R: 88, G: 196, B: 170, A: 255} // #58C4AA

	// Text colors
	ColorTextPrimary   = color.NRGBA{R: 255, G: 255, B: 255, A: 255} // #FFFFFF
	ColorTextSecondary = color.NRGBA{R: 158, G: 158, B: 158, A: 255} // #9E9E9E
	ColorTextDisabled  = color.NRGBA{R: 97, G: 97, B: 97, A: 255}    // #616161
	ColorTextHint      = color.NRGBA{R: 117, G: 117, B: 117, A: 255} // #757575

	// Status colors
	ColorSuccess    = color.NRGBA{R: 76, G: 175, B: 80, A: 255}   // #4CAF50
	ColorWarning    = color.NRGBA{R: 255, G: 193, B: 7, A: 255}   // #FFC107
	ColorError      = color.NRGBA{R: 244, G: 67, B: 54, A: 255}   // #F44336
	ColorProcessing = color.NRGBA{R: 33, G: 150, B: 243, A: 255}  // #2196F3
	ColorPending    = color.NRGBA{R: 117, G: 117, B: 117, A: 255} // #757575

	// UI element colors
	ColorDivider     = color.NRGBA{R: 48, G: 48, B: 48, A: 255} // #303030
	ColorInputBg     = color.NRGBA{R: 35, G: 35, B: 35, A: 255} // #232323
	ColorHover       = color.NRGBA{R: 255, G: 255, B: 255, A: 20}
	ColorPressed     = color.NRGBA{R: 255, G: 255, B: 255, A: 30}
	ColorFocusBorder = color.NRGBA{R: 16, G: 163, B: 127, A: 180}
	ColorDisabledBg  = color.NRGBA{R: 38, G: 38, B: 38, A: 255} // #262626
	ColorScrollbar   = color.NRGBA{R: 80, G: 80, B: 80, A: 255} // #505050
)

// WithAlpha returns c with its alpha replaced.
func WithAlpha(c color.Color, alpha uint8) color.NRGBA {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
		A: alpha,
	}
}
