// Package gemini wraps the Google Gemini API for text, image, and
// streaming audio generation.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"aipod/src/log"
)

const (
	DefaultTextModel  = "models/gemini-2.0-flash-exp"
	DefaultAudioModel = "models/gemini-2.0-flash-exp"
	DefaultImageModel = "imagen-4.0-generate-001"
)

type Client struct {
	client     *genai.Client
	apiKey     string
	textModel  string
	audioModel string
	imageModel string
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %v", err)
	}

	return &Client{
		client:     client,
		apiKey:     apiKey,
		textModel:  DefaultTextModel,
		audioModel: DefaultAudioModel,
		imageModel: DefaultImageModel,
	}, nil
}

// WithModels overrides the default model names.
func (c *Client) WithModels(textModel, audioModel, imageModel string) *Client {
	if textModel != "" {
		c.textModel = textModel
	}
	if audioModel != "" {
		c.audioModel = audioModel
	}
	if imageModel != "" {
		c.imageModel = imageModel
	}
	return c
}

// Generate produces text from a prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.textModel, []*genai.Content{
		{Parts: []*genai.Part{{Text: prompt}}, Role: "user"},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	var sb strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("gemini returned no text candidates")
	}

	return sb.String(), nil
}

// GenerateImage produces a single square image from a prompt and returns
// the raw image bytes.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := c.client.Models.GenerateImages(ctx, c.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    "1:1",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}

	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, errors.New("gemini returned no images")
	}
	img := resp.GeneratedImages[0].Image
	if img == nil || len(img.ImageBytes) == 0 {
		return nil, errors.New("gemini image response carries no bytes")
	}

	log.Debug("generated image", "bytes", len(img.ImageBytes))
	return img.ImageBytes, nil
}
