package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"aipod/src/generation"
	"aipod/src/log"
	"aipod/src/podcastctrl"
)

// Default provider voices for the two podcast hosts.
const (
	DefaultMaleVoice   = "Puck"
	DefaultFemaleVoice = "Kore"
)

// Generator produces the full PCM audio track for a podcast script. The
// whole synthesis, including all two-speaker turns, is bounded and retried
// as one unit.
type Generator struct {
	synth       Synthesizer
	maleVoice   string
	femaleVoice string
	policy      generation.Policy
}

func NewGenerator(synth Synthesizer) *Generator {
	return &Generator{
		synth:       synth,
		maleVoice:   DefaultMaleVoice,
		femaleVoice: DefaultFemaleVoice,
		policy:      generation.AudioPolicy(),
	}
}

// WithVoices overrides the provider voices used for the two hosts.
func (g *Generator) WithVoices(male, female string) *Generator {
	g.maleVoice = male
	g.femaleVoice = female
	return g
}

// WithPolicy overrides the retry and timeout policy.
func (g *Generator) WithPolicy(p generation.Policy) *Generator {
	g.policy = p
	return g
}

// Synthesize renders the script to raw PCM according to the speaker mode.
func (g *Generator) Synthesize(ctx context.Context, script, speakerMode, voiceType string) ([]byte, error) {
	log.Info("generating audio", "mode", speakerMode, "voice", voiceType)

	return generation.Do(ctx, g.policy, "generate audio", func(ctx context.Context) ([]byte, error) {
		if speakerMode == podcastctrl.ModeSingle {
			voice := g.femaleVoice
			if voiceType == podcastctrl.VoiceMale {
				voice = g.maleVoice
			}
			return g.speakSingle(ctx, script, voice)
		}
		return g.speakConversation(ctx, script)
	})
}

func (g *Generator) speakSingle(ctx context.Context, script, voice string) ([]byte, error) {
	log.Info("generating single speaker audio", "voice", voice, "script_chars", len(script))

	pcm, err := g.speakTurn(ctx, voice, script)
	if err != nil {
		return nil, err
	}
	if len(pcm) == 0 {
		return nil, errors.New("no audio data received")
	}

	log.Info("combined audio size", "bytes", len(pcm))
	return pcm, nil
}

// speakConversation voices each parsed segment separately. A segment that
// fails or yields no audio is skipped so one bad turn does not lose the
// whole episode.
func (g *Generator) speakConversation(ctx context.Context, script string) ([]byte, error) {
	segments := ParseScript(script)
	if len(segments) == 0 {
		return nil, errors.New("failed to parse script: no speaker segments found")
	}

	log.Info("parsed script", "segments", len(segments))

	var combined []byte
	for i, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}

		voice := g.maleVoice
		if seg.Speaker == 2 {
			voice = g.femaleVoice
		}

		pcm, err := g.speakTurn(ctx, voice, seg.Text)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Error(err, "segment synthesis failed, skipping", "segment", i+1, "speaker", seg.Speaker)
			continue
		}
		if len(pcm) == 0 {
			log.Info("segment produced no audio", "segment", i+1, "speaker", seg.Speaker)
			continue
		}

		combined = append(combined, pcm...)
	}

	if len(combined) == 0 {
		return nil, errors.New("no audio chunks were generated from the script")
	}

	log.Info("combined all segments", "bytes", len(combined))
	return combined, nil
}

func (g *Generator) speakTurn(ctx context.Context, voice, text string) ([]byte, error) {
	stream, err := g.synth.Speak(ctx, voice, text)
	if err != nil {
		return nil, fmt.Errorf("failed to open synthesis stream: %w", err)
	}
	defer stream.Close()

	var pcm []byte
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return pcm, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to receive audio chunk: %w", err)
		}
		pcm = append(pcm, chunk...)
	}
}
