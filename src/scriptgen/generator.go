// Package scriptgen produces podcast scripts from a text generation
// provider, with prompts tuned per speaker mode and conversation style.
package scriptgen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aipod/src/generation"
	"aipod/src/log"
)

// Provider generates text from a prompt.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Request carries the podcast parameters a script is built from.
type Request struct {
	Topic             string
	Description       string
	Duration          int
	SpeakerMode       string
	VoiceType         string
	ConversationStyle string
}

// Generator wraps a text provider with the script retry policy.
type Generator struct {
	provider Provider
	policy   generation.Policy
}

func NewGenerator(provider Provider) *Generator {
	return &Generator{provider: provider, policy: generation.ScriptPolicy()}
}

// WithPolicy overrides the retry and timeout policy.
func (g *Generator) WithPolicy(p generation.Policy) *Generator {
	g.policy = p
	return g
}

// Generate builds the prompt for the request and runs the provider under
// the script policy. An empty response is treated as a provider failure.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	log.Info("generating script", "topic", req.Topic, "duration_min", req.Duration, "mode", req.SpeakerMode)

	prompt, err := BuildPrompt(req)
	if err != nil {
		return "", fmt.Errorf("failed to build script prompt: %w", err)
	}

	script, err := generation.Do(ctx, g.policy, "generate script", func(ctx context.Context) (string, error) {
		out, err := g.provider.Generate(ctx, prompt)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(out) == "" {
			return "", errors.New("provider returned an empty script")
		}
		return out, nil
	})
	if err != nil {
		return "", err
	}

	log.Info("script generated", "chars", len(script))
	return script, nil
}
