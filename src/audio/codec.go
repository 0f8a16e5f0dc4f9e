// Package audio converts raw synthesized PCM into the MP3 artifact the
// pipeline persists. Conversion wraps the samples into a WAV container and
// transcodes with ffmpeg; a conversion failure indicates corrupt input and
// is never retried.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ConvertError reports a failed codec invocation with captured stderr.
type ConvertError struct {
	Op     string
	Stderr string
	Err    error
}

func (e *ConvertError) Error() string {
	msg := fmt.Sprintf("%s failed", e.Op)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += " (" + s + ")"
	}
	return msg
}

func (e *ConvertError) Unwrap() error {
	return e.Err
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) (stdout []byte, stderr string, err error)
}

// execRunner executes commands via os/exec, feeding stdin and capturing
// both output streams.
type execRunner struct{}

func (r *execRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.String(), err
}

// Codec performs PCM-to-MP3 conversion and duration probing.
type Codec struct {
	ffmpegPath  string
	ffprobePath string
	runner      commandRunner
}

// NewCodec constructs the production codec using ffmpeg/ffprobe from PATH.
func NewCodec() *Codec {
	return &Codec{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		runner:      &execRunner{},
	}
}

// NewCodecForTests constructs a codec with injectable binaries and runner.
func NewCodecForTests(ffmpegPath, ffprobePath string, runner commandRunner) *Codec {
	return &Codec{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		runner:      runner,
	}
}

// PCMToMP3 wraps raw PCM (mono, 16-bit, sampleRate) into WAV and transcodes
// it to MP3 at the given bitrate with maximum encoder quality.
func (c *Codec) PCMToMP3(ctx context.Context, pcm []byte, sampleRate int, bitrate string) ([]byte, error) {
	if len(pcm) == 0 {
		return nil, &ConvertError{Op: "pcm to mp3", Err: errors.New("empty PCM input")}
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if bitrate == "" {
		bitrate = DefaultBitrate
	}

	wav := WAVFromPCM(pcm, sampleRate)
	args := buildTranscodeArgs(bitrate)

	out, stderr, err := c.runner.Run(ctx, wav, c.ffmpegPath, args...)
	if err != nil {
		return nil, &ConvertError{Op: "pcm to mp3", Stderr: stderr, Err: err}
	}
	if len(out) == 0 {
		return nil, &ConvertError{Op: "pcm to mp3", Stderr: stderr, Err: errors.New("ffmpeg produced no output")}
	}

	return out, nil
}

// Duration probes the encoded audio and returns its length in seconds.
// Probing failures are returned as errors; callers treat the duration as
// unknown rather than failing the job.
func (c *Codec) Duration(ctx context.Context, data []byte, format string) (float64, error) {
	args := buildProbeArgs(format)

	out, stderr, err := c.runner.Run(ctx, data, c.ffprobePath, args...)
	if err != nil {
		return 0, &ConvertError{Op: "probe duration", Stderr: stderr, Err: err}
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, &ConvertError{Op: "probe duration", Err: fmt.Errorf("unparseable ffprobe output %q", strings.TrimSpace(string(out)))}
	}

	return seconds, nil
}

// buildTranscodeArgs builds the ffmpeg CLI args for WAV-on-stdin to
// MP3-on-stdout transcoding.
func buildTranscodeArgs(bitrate string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "wav",
		"-i", "pipe:0",
		"-codec:a", "libmp3lame",
		"-b:a", bitrate,
		"-q:a", "0",
		"-f", "mp3",
		"pipe:1",
	}
}

// buildProbeArgs builds the ffprobe CLI args for duration-only output.
func buildProbeArgs(format string) []string {
	return []string{
		"-hide_banner",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		"-f", format,
		"pipe:0",
	}
}
