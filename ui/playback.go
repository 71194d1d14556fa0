package ui

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"video-narrator/services"
)

// playbackCommand returns the command that plays an MP3 on goos.
func playbackCommand(goos, path string, find func(string) string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("afplay", path), nil
	case "linux":
		return exec.Command(find("ffplay"), "-nodisp", "-autoexit", "-loglevel", "quiet", path), nil
	case "windows":
		return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", windowsPlayScript(path)), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// windowsPlayScript plays path inside the PowerShell process, so killing it stops the audio.
func windowsPlayScript(path string) string {
	quoted := "'" + strings.ReplaceAll(path, "'", "''") + "'"
	return "Add-Type -AssemblyName PresentationCore; " +
		"$p = New-Object System.Windows.Media.MediaPlayer; " +
		"$p.Open([Uri]" + quoted + "); $p.Play(); " +
		"$n = 0; while (-not $p.NaturalDuration.HasTimeSpan -and $n -lt 100) { Start-Sleep -Milliseconds 100; $n++ }; " +
		"if ($p.NaturalDuration.HasTimeSpan) { Start-Sleep -Milliseconds ([int]$p.NaturalDuration.TimeSpan.TotalMilliseconds) }; " +
		"$p.Close()"
}

// audioPlayer plays one file at a time through a system player.
type audioPlayer struct {
	mu  sync.Mutex
	cmd *exec.Cmd
}

// Play starts path and calls onDone from a goroutine when playback ends.
// Anything already playing is stopped first.
func (p *audioPlayer) Play(path string, onDone func(err error)) error {
	p.Stop()

	cmd, err := playbackCommand(runtime.GOOS, path, services.FindExecutable)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}

	p.mu.Lock()
	p.cmd = cmd
	p.mu.Unlock()

	go func() {
		err := cmd.Wait()

		p.mu.Lock()
		stopped := p.cmd != cmd
		if !stopped {
			p.cmd = nil
		}
		p.mu.Unlock()

		if stopped {
			err = nil
		}
		if onDone != nil {
			onDone(err)
		}
	}()
	return nil
}

// Stop kills the running player, if any.
func (p *audioPlayer) Stop() {
	p.mu.Lock()
	cmd := p.cmd
	p.cmd = nil
	p.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		cmd.Process.Kill()
	}
}

// Playing reports whether a player is running.
func (p *audioPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cmd != nil
}
