package widgets

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	appTheme "video-narrator/ui/theme"
)

// HeaderLevel selects the text size of a SectionHeader.
type HeaderLevel int

const (
	// HeaderPage is the page title.
	HeaderPage HeaderLevel = iota
	// HeaderSection titles one block of the page.
	HeaderSection
)

// SectionHeader is a styled title with optional subtitle and divider.
type SectionHeader struct {
	widget.BaseWidget

	Title       string
	Subtitle    string
	Level       HeaderLevel
	ShowDivider bool
}

// NewPageHeader creates the page title header.
func NewPageHeader(title string) *SectionHeader {
	h := &SectionHeader{Title: title, Level: HeaderPage}
	h.ExtendBaseWidget(h)
	return h
}

// NewSectionHeader creates a section header with a divider
func NewSectionHeader(title string) *SectionHeader {
	h := &SectionHeader{
		Title:       title,
		Level:       HeaderSection,
		ShowDivider: true,
	}
	h.ExtendBaseWidget(h)
	return h
}

// SetSubtitle updates the subtitle
func (h *SectionHeader) SetSubtitle(subtitle string) {
	h.Subtitle = subtitle
	h.Refresh()
}

func (h *SectionHeader) textSize() float32 {
	th := fyne.CurrentApp().Settings().Theme()
	if h.Level == HeaderPage {
		return th.Size(theme.SizeNameHeadingText)
	}
	return th.Size(theme.SizeNameSubHeadingText)
}

// CreateRenderer implements fyne.Widget
func (h *SectionHeader) CreateRenderer() fyne.WidgetRenderer {
	title := canvas.NewText(h.Title, color.White)
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.TextSize = h.textSize()

	subtitle := canvas.NewText(h.Subtitle, color.Gray{Y: 150})
	subtitle.TextSize = 12

	divider := canvas.NewRectangle(color.Transparent)
	divider.SetMinSize(fyne.NewSize(0, 1))

	r := &sectionHeaderRenderer{
		title:    title,
		subtitle: subtitle,
		divider:  divider,
		widget:   h,
	}
	r.Refresh()
	return r
}

type sectionHeaderRenderer struct {
	title    *canvas.Text
	subtitle *canvas.Text
	divider  *canvas.Rectangle
	widget   *SectionHeader
}

const headerPadding = float32(8)

func (r *sectionHeaderRenderer) Destroy() {}

func (r *sectionHeaderRenderer) Layout(size fyne.Size) {
	y := headerPadding

	r.title.Move(fyne.NewPos(0, y))
	y += r.title.MinSize().Height

	if r.widget.Subtitle != "" {
		y += 2
		r.subtitle.Move(fyne.NewPos(0, y))
		y += r.subtitle.MinSize().Height
	}

	if r.widget.ShowDivider {
		y += headerPadding / 2
		r.divider.Resize(fyne.NewSize(size.Width, 1))
		r.divider.Move(fyne.NewPos(0, y))
	}
}

func (r *sectionHeaderRenderer) MinSize() fyne.Size {
	height := headerPadding + r.title.MinSize().Height
	width := r.title.MinSize().Width

	if r.widget.Subtitle != "" {
		height += 2 + r.subtitle.MinSize().Height
		width = fyne.Max(width, r.subtitle.MinSize().Width)
	}
	if r.widget.ShowDivider {
		height += headerPadding/2 + 1
	}
	height += headerPadding / 2

	return fyne.NewSize(width, height)
}

func (r *sectionHeaderRenderer) Objects() []fyne.CanvasObject {
	objs := []fyne.CanvasObject{r.title}
	if r.widget.Subtitle != "" {
		objs = append(objs, r.subtitle)
	}
	if r.widget.ShowDivider {
		objs = append(objs, r.divider)
	}
	return objs
}

func (r *sectionHeaderRenderer) Refresh() {
	th := fyne.CurrentApp().Settings().Theme()
	variant := fyne.CurrentApp().Settings().ThemeVariant()

	r.title.Text = r.widget.Title
	r.title.TextSize = r.widget.textSize()
	r.title.Color = th.Color(theme.ColorNameForeground, variant)
	r.title.Refresh()

	r.subtitle.Text = r.widget.Subtitle
	r.subtitle.Color = th.Color(appTheme.ColorNameTextSecondary, variant)
	r.subtitle.Refresh()

	r.divider.FillColor = th.Color(appTheme.ColorNameDivider, variant)
	r.divider.Refresh()
}
