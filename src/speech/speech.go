// Package speech turns podcast scripts into raw PCM audio through a
// streaming text-to-speech provider. Two-speaker scripts are split into
// per-speaker segments and voiced turn by turn.
package speech

import "context"

// Stream delivers synthesized audio chunks for a single spoken turn.
// Recv returns io.EOF when the turn is complete.
type Stream interface {
	Recv() ([]byte, error)
	Close() error
}

// Synthesizer opens a streaming synthesis session for one piece of text
// spoken with the named provider voice.
type Synthesizer interface {
	Speak(ctx context.Context, voice, text string) (Stream, error)
}
