package speech

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"aipod/src/generation"
	"aipod/src/podcastctrl"
)

type fakeStream struct {
	chunks [][]byte
	pos    int
}

func (s *fakeStream) Recv() ([]byte, error) {
	if s.pos >= len(s.chunks) {
		return nil, io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return chunk, nil
}

func (s *fakeStream) Close() error { return nil }

type fakeSynth struct {
	speak func(ctx context.Context, voice, text string) (Stream, error)
	calls []string // recorded as "voice|text"
}

func (f *fakeSynth) Speak(ctx context.Context, voice, text string) (Stream, error) {
	f.calls = append(f.calls, voice+"|"+text)
	return f.speak(ctx, voice, text)
}

func testPolicy() generation.Policy {
	return generation.Policy{MaxRetries: 0, Delay: time.Millisecond, Timeout: time.Second}
}

func TestSynthesizeSingleSpeakerConcatenatesChunks(t *testing.T) {
	synth := &fakeSynth{}
	synth.speak = func(ctx context.Context, voice, text string) (Stream, error) {
		return &fakeStream{chunks: [][]byte{[]byte("aa"), []byte("bb"), []byte("cc")}}, nil
	}

	gen := NewGenerator(synth).WithPolicy(testPolicy())
	pcm, err := gen.Synthesize(context.Background(), "Hello world", podcastctrl.ModeSingle, podcastctrl.VoiceMale)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if !bytes.Equal(pcm, []byte("aabbcc")) {
		t.Fatalf("pcm = %q, want aabbcc", pcm)
	}
	if len(synth.calls) != 1 || synth.calls[0] != DefaultMaleVoice+"|Hello world" {
		t.Fatalf("calls = %v", synth.calls)
	}
}

func TestSynthesizeSingleSpeakerVoiceSelection(t *testing.T) {
	synth := &fakeSynth{}
	synth.speak = func(ctx context.Context, voice, text string) (Stream, error) {
		return &fakeStream{chunks: [][]byte{[]byte("x")}}, nil
	}

	gen := NewGenerator(synth).WithPolicy(testPolicy())
	if _, err := gen.Synthesize(context.Background(), "hi", podcastctrl.ModeSingle, podcastctrl.VoiceFemale); err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if synth.calls[0] != DefaultFemaleVoice+"|hi" {
		t.Fatalf("female voice not selected, calls = %v", synth.calls)
	}
}

func TestSynthesizeSingleSpeakerNoChunksFails(t *testing.T) {
	synth := &fakeSynth{}
	synth.speak = func(ctx context.Context, voice, text string) (Stream, error) {
		return &fakeStream{}, nil
	}

	gen := NewGenerator(synth).WithPolicy(testPolicy())
	if _, err := gen.Synthesize(context.Background(), "hi", podcastctrl.ModeSingle, podcastctrl.VoiceMale); err == nil {
		t.Fatal("Synthesize() should fail when no audio is received")
	}
}

func TestSynthesizeTwoSpeakersAlternatesVoices(t *testing.T) {
	synth := &fakeSynth{}
	synth.speak = func(ctx context.Context, voice, text string) (Stream, error) {
		return &fakeStream{chunks: [][]byte{[]byte(text)}}, nil
	}

	gen := NewGenerator(synth).WithPolicy(testPolicy())
	pcm, err := gen.Synthesize(context.Background(), "Alex: Hello\nSarah: Hi there", podcastctrl.ModeTwo, "")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if !bytes.Equal(pcm, []byte("HelloHi there")) {
		t.Fatalf("pcm = %q", pcm)
	}
	want := []string{DefaultMaleVoice + "|Hello", DefaultFemaleVoice + "|Hi there"}
	if len(synth.calls) != 2 || synth.calls[0] != want[0] || synth.calls[1] != want[1] {
		t.Fatalf("calls = %v, want %v", synth.calls, want)
	}
}

func TestSynthesizeTwoSpeakersSkipsFailedSegment(t *testing.T) {
	synth := &fakeSynth{}
	synth.speak = func(ctx context.Context, voice, text string) (Stream, error) {
		if text == "boom" {
			return nil, errors.New("provider error")
		}
		return &fakeStream{chunks: [][]byte{[]byte(text)}}, nil
	}

	gen := NewGenerator(synth).WithPolicy(testPolicy())
	pcm, err := gen.Synthesize(context.Background(), "Alex: one\nSarah: boom\nAlex: three", podcastctrl.ModeTwo, "")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if !bytes.Equal(pcm, []byte("onethree")) {
		t.Fatalf("pcm = %q, want onethree", pcm)
	}
}

func TestSynthesizeTwoSpeakersAllSegmentsFailedErrors(t *testing.T) {
	synth := &fakeSynth{}
	synth.speak = func(ctx context.Context, voice, text string) (Stream, error) {
		return nil, errors.New("provider error")
	}

	gen := NewGenerator(synth).WithPolicy(testPolicy())
	if _, err := gen.Synthesize(context.Background(), "Alex: one\nSarah: two", podcastctrl.ModeTwo, ""); err == nil {
		t.Fatal("Synthesize() should fail when every segment fails")
	}
}

func TestSynthesizeTwoSpeakersUnparseableScriptFails(t *testing.T) {
	synth := &fakeSynth{}
	synth.speak = func(ctx context.Context, voice, text string) (Stream, error) {
		t.Fatal("Speak should not be called for an empty script")
		return nil, nil
	}

	gen := NewGenerator(synth).WithPolicy(testPolicy())
	if _, err := gen.Synthesize(context.Background(), "\n\n", podcastctrl.ModeTwo, ""); err == nil {
		t.Fatal("Synthesize() should fail when the script has no segments")
	}
}

func TestSynthesizeRetriesWholeOperation(t *testing.T) {
	attempts := 0
	synth := &fakeSynth{}
	synth.speak = func(ctx context.Context, voice, text string) (Stream, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("transient")
		}
		return &fakeStream{chunks: [][]byte{[]byte("ok")}}, nil
	}

	gen := NewGenerator(synth).WithPolicy(generation.Policy{MaxRetries: 1, Delay: time.Millisecond, Timeout: time.Second})
	pcm, err := gen.Synthesize(context.Background(), "hi", podcastctrl.ModeSingle, podcastctrl.VoiceMale)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if !bytes.Equal(pcm, []byte("ok")) {
		t.Fatalf("pcm = %q", pcm)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
}
