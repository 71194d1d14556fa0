package models

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"video-narrator/internal/media"
)

type JobStatus string

const (
	StatusPending      JobStatus = "pending"
	StatusSampling     JobStatus = "sampling"
	StatusNarrating    JobStatus = "narrating"
	StatusNarrated     JobStatus = "narrated"
	StatusSynthesizing JobStatus = "synthesizing"
	StatusCompleted    JobStatus = "completed"
	StatusFailed       JobStatus = "failed"
)

// NarrationJob tracks one uploaded video through sampling, narration and speech.
type NarrationJob struct {
	ID           string
	VideoPath    string
	FileName     string
	Status       JobStatus
	Progress     int // 0-100
	CurrentStage string
	Error        error
	CreatedAt    time.Time
	CompletedAt  *time.Time

	// Results
	Info       *media.VideoInfo
	FrameCount int
	Narration  string
	SpeechPath string

	// WorkDir holds everything written for this job; removed by Cleanup.
	WorkDir string
}

// NewNarrationJob creates a pending job. fileName is the name shown to the user,
// which differs from the temp copy at videoPath for uploads.
func NewNarrationJob(videoPath, fileName string) *NarrationJob {
	id := uuid.New().String()
	if fileName == "" {
		fileName = filepath.Base(videoPath)
	}
	return &NarrationJob{
		ID:        id,
		VideoPath: videoPath,
		FileName:  fileName,
		Status:    StatusPending,
		Progress:  0,
		CreatedAt: time.Now(),
		WorkDir:   filepath.Join(os.TempDir(), "video-narrator", id),
	}
}

func (j *NarrationJob) SetStatus(status JobStatus, stage string, progress int) {
	j.Status = status
	j.CurrentStage = stage
	j.Progress = progress
}

// SetNarration stores the generated text; the job is ready for speech.
func (j *NarrationJob) SetNarration(text string) {
	j.Narration = text
	j.Status = StatusNarrated
}

func (j *NarrationJob) Complete(speechPath string) {
	j.Status = StatusCompleted
	j.SpeechPath = speechPath
	j.Progress = 100
	now := time.Now()
	j.CompletedAt = &now
}

func (j *NarrationJob) Fail(err error) {
	j.Status = StatusFailed
	j.Error = err
	j.Progress = 0
	j.CurrentStage = "Failed"
}

// HasNarration reports whether speech can be generated.
func (j *NarrationJob) HasNarration() bool {
	return j.Narration != ""
}

// FramesDir is where sampled frames are written.
func (j *NarrationJob) FramesDir() string {
	return filepath.Join(j.WorkDir, "frames")
}

// Cleanup removes the job's working directory, including the speech file.
func (j *NarrationJob) Cleanup() error {
	if j.WorkDir == "" {
		return nil
	}
	return os.RemoveAll(j.WorkDir)
}

// StatusText describes the job status for the page.
func (j *NarrationJob) StatusText() string {
	switch j.Status {
	case StatusPending:
		return "Ready to narrate"
	case StatusSampling:
		return "Sampling frames..."
	case StatusNarrating:
		return "Generating narration..."
	case StatusNarrated:
		return "Narration ready"
	case StatusSynthesizing:
		return "Generating voice..."
	case StatusCompleted:
		return "Done!"
	case StatusFailed:
		if j.Error != nil {
			return "Failed: " + j.Error.Error()
		}
		return "Failed"
	default:
		return string(j.Status)
	}
}
