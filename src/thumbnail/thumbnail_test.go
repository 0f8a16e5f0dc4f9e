package thumbnail

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeProvider struct {
	generate func(ctx context.Context, prompt string) ([]byte, error)
}

func (f *fakeProvider) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	return f.generate(ctx, prompt)
}

func TestBuildPromptPicksTopicScene(t *testing.T) {
	tests := []struct {
		topic    string
		wantHint string
	}{
		{"The Future of AI", "neural network visualizations"},
		{"Renewable Energy at Home", "wind turbines and solar panels"},
		{"Cooking on a Budget", "cheerful chef"},
		{"Exploring the Cosmos", "astronomer in an observatory"},
		{"Knitting for Beginners", "thoughtful person working on a laptop"},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			prompt := BuildPrompt(tt.topic, "")
			if !strings.Contains(prompt, tt.wantHint) {
				t.Errorf("prompt for %q missing scene hint %q", tt.topic, tt.wantHint)
			}
			if !strings.Contains(prompt, "Studio Ghibli") {
				t.Error("prompt missing base style")
			}
			if strings.Contains(prompt, "  ") {
				t.Error("prompt contains doubled whitespace")
			}
		})
	}
}

func TestGeneratePassesPromptToProvider(t *testing.T) {
	var gotPrompt string
	gen := NewGenerator(&fakeProvider{
		generate: func(ctx context.Context, prompt string) ([]byte, error) {
			gotPrompt = prompt
			return []byte("png"), nil
		},
	})

	data, err := gen.Generate(context.Background(), "ocean life", "deep sea creatures")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if string(data) != "png" {
		t.Fatalf("data = %q", data)
	}
	if !strings.Contains(gotPrompt, "ocean life") {
		t.Fatal("provider prompt missing topic")
	}
}

func TestGeneratePropagatesProviderError(t *testing.T) {
	gen := NewGenerator(&fakeProvider{
		generate: func(ctx context.Context, prompt string) ([]byte, error) {
			return nil, errors.New("quota exceeded")
		},
	})

	if _, err := gen.Generate(context.Background(), "t", "d"); err == nil {
		t.Fatal("Generate() should propagate provider errors")
	}
}
