package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"video-narrator/services"
)

// VoiceOption represents a voice choice
type VoiceOption struct {
	ID   string
	Name string
}

// OpenAIVoices returns the TTS voices in display order.
func OpenAIVoices() []VoiceOption {
	descriptions := services.GetOpenAIVoices()
	ids := services.GetOpenAIVoiceList()

	voices := make([]VoiceOption, len(ids))
	for i, id := range ids {
		voices[i] = VoiceOption{ID: id, Name: descriptions[id]}
	}
	return voices
}

// VoiceSelector allows voice selection with preview
type VoiceSelector struct {
	widget.BaseWidget

	Voices    []VoiceOption
	Selected  string
	OnChanged func(voiceID string)
	OnPreview func(voiceID string)

	selectBox  *widget.Select
	previewBtn *widget.Button
}

// NewVoiceSelector creates a new voice selector with selected preselected.
func NewVoiceSelector(selected string, onChanged func(voiceID string), onPreview func(voiceID string)) *VoiceSelector {
	s := &VoiceSelector{
		Voices:    OpenAIVoices(),
		OnChanged: onChanged,
		OnPreview: onPreview,
	}
	s.Selected = s.Voices[0].ID
	if s.nameOf(selected) != "" {
		s.Selected = selected
	}
	s.ExtendBaseWidget(s)
	return s
}

func (s *VoiceSelector) nameOf(voiceID string) string {
	for _, v := range s.Voices {
		if v.ID == voiceID {
			return v.Name
		}
	}
	return ""
}

// SetSelected sets the selected voice by ID; unknown IDs are ignored.
func (s *VoiceSelector) SetSelected(voiceID string) {
	name := s.nameOf(voiceID)
	if name == "" {
		return
	}
	s.Selected = voiceID
	if s.selectBox != nil {
		s.selectBox.SetSelected(name)
	}
}

// GetSelected returns the selected voice ID
func (s *VoiceSelector) GetSelected() string {
	return s.Selected
}

// SetPreviewing disables the preview button while a sample plays.
func (s *VoiceSelector) SetPreviewing(previewing bool) {
	if s.previewBtn == nil {
		return
	}
	if previewing {
		s.previewBtn.Disable()
	} else {
		s.previewBtn.Enable()
	}
}

// Build creates the widget UI
func (s *VoiceSelector) Build() fyne.CanvasObject {
	options := make([]string, len(s.Voices))
	for i, v := range s.Voices {
		options[i] = v.Name
	}

	s.selectBox = widget.NewSelect(options, func(selected string) {
		for _, v := range s.Voices {
			if v.Name == selected {
				s.Selected = v.ID
				if s.OnChanged != nil {
					s.OnChanged(v.ID)
				}
				return
			}
		}
	})
	s.selectBox.SetSelected(s.nameOf(s.Selected))

	s.previewBtn = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), func() {
		if s.OnPreview != nil {
			s.OnPreview(s.Selected)
		}
	})

	return container.NewBorder(nil, nil, nil, s.previewBtn, s.selectBox)
}

// CreateRenderer implements fyne.Widget
func (s *VoiceSelector) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.Build())
}
