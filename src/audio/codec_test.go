package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// fakeRunner simulates ffmpeg/ffprobe invocations.
type fakeRunner struct {
	run func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, string, error)
}

func (f *fakeRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, string, error) {
	return f.run(ctx, stdin, name, args...)
}

func TestWAVFromPCMHeader(t *testing.T) {
	// One second of silence at 24kHz mono 16-bit.
	pcm := make([]byte, 48000)
	wav := WAVFromPCM(pcm, 24000)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("wav length = %d, want %d", len(wav), 44+len(pcm))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatalf("bad RIFF header: %q %q", wav[0:4], wav[8:12])
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != 1 {
		t.Errorf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 24000 {
		t.Errorf("sample rate = %d, want 24000", got)
	}
	if got := binary.LittleEndian.Uint32(wav[28:32]); got != 48000 {
		t.Errorf("byte rate = %d, want 48000", got)
	}
	if got := binary.LittleEndian.Uint16(wav[34:36]); got != 16 {
		t.Errorf("bits per sample = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Errorf("data size = %d, want %d", got, len(pcm))
	}
}

func TestPCMDurationOneSecond(t *testing.T) {
	// 24000 samples at 24kHz mono = 1.0s.
	if d := PCMDuration(48000, 24000); math.Abs(d-1.0) > 0.1 {
		t.Fatalf("PCMDuration = %f, want 1.0", d)
	}
}

func TestPCMToMP3InvokesFFmpegWithWAVOnStdin(t *testing.T) {
	pcm := make([]byte, 48000)
	wantMP3 := []byte("mp3-bytes")

	var gotName string
	var gotArgs []string
	var gotStdin []byte
	runner := &fakeRunner{
		run: func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, string, error) {
			gotName = name
			gotArgs = args
			gotStdin = stdin
			return wantMP3, "", nil
		},
	}

	codec := NewCodecForTests("ffmpeg-test", "ffprobe-test", runner)
	out, err := codec.PCMToMP3(context.Background(), pcm, 24000, "192k")
	if err != nil {
		t.Fatalf("PCMToMP3() error = %v", err)
	}
	if !bytes.Equal(out, wantMP3) {
		t.Fatalf("PCMToMP3() = %q, want %q", out, wantMP3)
	}
	if gotName != "ffmpeg-test" {
		t.Fatalf("command = %q, want ffmpeg-test", gotName)
	}
	if !bytes.Equal(gotStdin, WAVFromPCM(pcm, 24000)) {
		t.Fatal("stdin should be the WAV-wrapped PCM")
	}
	if !hasArgPair(gotArgs, "-b:a", "192k") {
		t.Fatalf("args missing bitrate, args = %v", gotArgs)
	}
	if !hasArgPair(gotArgs, "-q:a", "0") {
		t.Fatalf("args missing max quality flag, args = %v", gotArgs)
	}
}

func TestPCMToMP3RejectsEmptyInput(t *testing.T) {
	codec := NewCodecForTests("ffmpeg", "ffprobe", &fakeRunner{
		run: func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, string, error) {
			t.Fatal("runner should not be invoked for empty input")
			return nil, "", nil
		},
	})

	_, err := codec.PCMToMP3(context.Background(), nil, 24000, "192k")
	var convErr *ConvertError
	if !errors.As(err, &convErr) {
		t.Fatalf("error = %v, want ConvertError", err)
	}
}

func TestPCMToMP3FailureIsNotRetried(t *testing.T) {
	calls := 0
	codec := NewCodecForTests("ffmpeg", "ffprobe", &fakeRunner{
		run: func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, string, error) {
			calls++
			return nil, "pipe:0: Invalid data found", errors.New("exit status 1")
		},
	})

	_, err := codec.PCMToMP3(context.Background(), make([]byte, 10), 24000, "192k")
	if err == nil {
		t.Fatal("PCMToMP3() should fail when ffmpeg fails")
	}
	if calls != 1 {
		t.Fatalf("ffmpeg calls = %d, want exactly 1", calls)
	}
}

func TestDurationParsesProbeOutput(t *testing.T) {
	codec := NewCodecForTests("ffmpeg", "ffprobe-test", &fakeRunner{
		run: func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, string, error) {
			if name != "ffprobe-test" {
				t.Fatalf("command = %q, want ffprobe-test", name)
			}
			if !hasArgPair(args, "-f", "mp3") {
				t.Fatalf("args missing format, args = %v", args)
			}
			return []byte("1.044898\n"), "", nil
		},
	})

	seconds, err := codec.Duration(context.Background(), []byte("mp3"), "mp3")
	if err != nil {
		t.Fatalf("Duration() error = %v", err)
	}
	if math.Abs(seconds-1.044898) > 0.0001 {
		t.Fatalf("Duration() = %f", seconds)
	}
}

func TestDurationProbeFailureReturnsError(t *testing.T) {
	codec := NewCodecForTests("ffmpeg", "ffprobe", &fakeRunner{
		run: func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, string, error) {
			return nil, "invalid input", errors.New("exit status 1")
		},
	})

	if _, err := codec.Duration(context.Background(), []byte("junk"), "mp3"); err == nil {
		t.Fatal("Duration() should surface probe failures")
	}
}

func hasArgPair(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}
