// Package thumbnail generates podcast cover art from the episode topic.
package thumbnail

import (
	"context"
	"fmt"
	"strings"

	"aipod/src/log"
)

// ImageProvider renders a single image from a prompt.
type ImageProvider interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

type Generator struct {
	provider ImageProvider
}

func NewGenerator(provider ImageProvider) *Generator {
	return &Generator{provider: provider}
}

// Generate produces cover art for the episode. Failures are returned to
// the caller, which treats thumbnails as optional.
func (g *Generator) Generate(ctx context.Context, topic, description string) ([]byte, error) {
	prompt := BuildPrompt(topic, description)
	log.Info("generating thumbnail", "topic", topic)

	data, err := g.provider.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate thumbnail: %w", err)
	}
	return data, nil
}

// sceneRule maps topic keywords to an illustrated scene description.
type sceneRule struct {
	keywords []string
	scene    string
}

var sceneRules = []sceneRule{
	{
		keywords: []string{"ai", "artificial intelligence"},
		scene:    "Scene: A friendly researcher in a cozy modern lab using a laptop at a glass desk, surrounded by gentle glowing AI holograms and floating neural network visualizations in blue and purple, large windows with natural light, indoor plants, warm and inviting tech atmosphere, anime-style character with curious expression",
	},
	{
		keywords: []string{"renewable energy", "solar", "wind energy", "clean energy"},
		scene:    "Scene: An engineer overlooking a beautiful landscape with modern wind turbines and solar panels integrated into rolling green hills, bright sunny day with blue sky and white clouds, birds flying, hopeful sustainable future vision, anime-style character looking confident and optimistic",
	},
	{
		keywords: []string{"environment", "sustainability", "climate", "nature"},
		scene:    "Scene: A person planting a young tree in a lush green forest, sunlight filtering through leaves creating dappled light, gentle morning mist, butterflies and small animals nearby, hopeful environmental restoration theme, anime-style character with caring expression",
	},
	{
		keywords: []string{"business", "entrepreneur", "startup", "company"},
		scene:    "Scene: Young entrepreneurs brainstorming with sticky notes and whiteboards in a bright creative office space, large windows with city view, laptops and coffee cups on wooden table, collaborative energy and excitement, modern casual office with plants, anime-style characters with enthusiastic expressions",
	},
	{
		keywords: []string{"health", "wellness", "medical", "healthcare"},
		scene:    "Scene: A caring doctor in a peaceful medical office with large windows bringing natural light, medical charts on digital screens, potted plants creating calm atmosphere, warm and reassuring healthcare setting, anime-style character with kind expression",
	},
	{
		keywords: []string{"education", "learning", "school", "teaching"},
		scene:    "Scene: A warm classroom with a friendly teacher and engaged students, books and papers floating magically around them like in a dream, large windows with natural sunlight, wooden desks, chalkboard with colorful diagrams, inspiring learning atmosphere, anime-style characters with excited expressions",
	},
	{
		keywords: []string{"music", "musician", "sound", "audio"},
		scene:    "Scene: A musician in a cozy home studio with acoustic guitar in hands, surrounded by vintage microphones and musical equipment, vinyl records on shelves, warm ambient lighting from string lights, intimate recording space, anime-style character with peaceful expression",
	},
	{
		keywords: []string{"food", "cooking", "restaurant", "cuisine", "chef"},
		scene:    "Scene: A cheerful chef in a warm kitchen preparing fresh ingredients on a wooden cutting board, steam rising from pots on stove, herbs hanging to dry, copper pots on walls, natural light from window, inviting and delicious atmosphere, anime-style character with happy expression",
	},
	{
		keywords: []string{"travel", "adventure", "journey", "explore"},
		scene:    "Scene: A traveler with a backpack standing at a scenic mountain viewpoint overlooking valleys and distant peaks, golden hour lighting creating warm glow, map in hand, camera around neck, sense of wonder and freedom, anime-style character with adventurous smile",
	},
	{
		keywords: []string{"science", "research", "discovery", "laboratory"},
		scene:    "Scene: A scientist in a bright laboratory examining samples under a microscope, beakers with colorful liquids bubbling gently, large windows with natural light, notebooks and equipment organized neatly, sense of discovery and wonder, anime-style character with curious expression",
	},
	{
		keywords: []string{"space", "astronomy", "cosmos", "universe"},
		scene:    "Scene: An astronomer in an observatory at night looking through a large telescope, starry sky visible through dome opening, constellation charts on walls, warm lamp light on desk, magical and wondrous atmosphere, anime-style character with awe-struck expression",
	},
	{
		keywords: []string{"finance", "economics", "money", "investment", "market"},
		scene:    "Scene: A professional analyst in a modern office reviewing holographic financial charts floating in air, floor-to-ceiling windows showing city skyline at dusk, sleek desk with multiple screens, confident and prosperous atmosphere, anime-style character with professional appearance",
	},
	{
		keywords: []string{"history", "historical", "ancient"},
		scene:    "Scene: A historian in a beautiful old library examining ancient books and scrolls on a wooden desk, towering bookshelves filled with leather-bound tomes, warm lamp light creating cozy atmosphere, magnifying glass and old documents, anime-style character with scholarly appearance",
	},
}

// BuildPrompt composes the image generation prompt, picking a scene that
// matches the topic.
func BuildPrompt(topic, description string) string {
	scene := sceneForTopic(strings.ToLower(topic))
	prompt := fmt.Sprintf("Create a podcast thumbnail about %s. %s, in the style of Studio Ghibli animation, soft lighting, warm inviting colors, detailed painterly textures, anime-style characters, include human characters, cinematic composition, center focus on main character, clear space at top for title text, bright and optimistic tone, visually balanced and not cluttered, perfect for podcast cover art.", topic, scene)
	return strings.Join(strings.Fields(prompt), " ")
}

func sceneForTopic(topic string) string {
	for _, rule := range sceneRules {
		for _, kw := range rule.keywords {
			if strings.Contains(topic, kw) {
				return rule.scene
			}
		}
	}
	return fmt.Sprintf("Scene: A thoughtful person working on a laptop in a bright inspiring workspace, large windows with natural light and green view, indoor plants nearby, notebooks and coffee cup on wooden desk, warm and hopeful atmosphere related to %s, anime-style character with engaged expression", topic)
}
