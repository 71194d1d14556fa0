package media

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// VideoInfo describes the first video stream of a file.
type VideoInfo struct {
	Width       int
	Height      int
	FPS         float64
	TotalFrames int
	Duration    float64 // seconds
	Codec       string
}

// FPSInt returns the frame rate truncated to whole frames, so 29.97 fps is 29.
func (v *VideoInfo) FPSInt() int {
	return int(v.FPS)
}

// Stride returns how many frames apart two samples taken intervalSeconds apart are.
// Never less than 1, so every frame is kept for very low frame rates.
func (v *VideoInfo) Stride(intervalSeconds int) int {
	stride := intervalSeconds * v.FPSInt()
	if stride < 1 {
		return 1
	}
	return stride
}

// SampleCount returns the number of frames a stride keeps, counting frame 0.
func (v *VideoInfo) SampleCount(stride int) int {
	if v.TotalFrames <= 0 {
		return 0
	}
	if stride < 1 {
		stride = 1
	}
	return (v.TotalFrames + stride - 1) / stride
}

// TimestampOf returns the presentation time of a frame number.
func (v *VideoInfo) TimestampOf(frameNumber int) time.Duration {
	if v.FPS <= 0 {
		return 0
	}
	return time.Duration(float64(frameNumber) / v.FPS * float64(time.Second))
}

// String formats the info for logs and the UI.
func (v *VideoInfo) String() string {
	return fmt.Sprintf("%dx%d %s, %.2f fps, %d frames, %.1fs", v.Width, v.Height, v.Codec, v.FPS, v.TotalFrames, v.Duration)
}

type probeOutput struct {
	Streams []struct {
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		NbFrames     string `json:"nb_frames"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// parseProbeOutput reads ffprobe's JSON for the first video stream.
func parseProbeOutput(data []byte) (*VideoInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return nil, fmt.Errorf("no video stream found")
	}

	stream := out.Streams[0]
	info := &VideoInfo{
		Width:  stream.Width,
		Height: stream.Height,
		Codec:  stream.CodecName,
	}

	info.FPS = parseFrameRate(stream.AvgFrameRate)
	if info.FPS <= 0 {
		info.FPS = parseFrameRate(stream.RFrameRate)
	}
	if info.FPS <= 0 {
		return nil, fmt.Errorf("could not determine frame rate")
	}

	if d, err := strconv.ParseFloat(strings.TrimSpace(out.Format.Duration), 64); err == nil {
		info.Duration = d
	}

	if n, err := strconv.Atoi(strings.TrimSpace(stream.NbFrames)); err == nil && n > 0 {
		info.TotalFrames = n
	} else if info.Duration > 0 {
		info.TotalFrames = int(math.Round(info.Duration * info.FPS))
	}

	return info, nil
}

// parseFrameRate parses "30000/1001" or "25" into frames per second.
// Returns 0 for "0/0" and anything unparseable.
func parseFrameRate(rate string) float64 {
	rate = strings.TrimSpace(rate)
	if rate == "" {
		return 0
	}

	num, den, found := strings.Cut(rate, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}

	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
