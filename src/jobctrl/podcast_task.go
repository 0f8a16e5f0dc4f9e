// Package jobctrl runs the podcast generation pipeline: script, audio,
// encoding, and artifact persistence, with progress written to the
// podcast record at each stage.
package jobctrl

import (
	"context"
	"encoding/json"
	"fmt"

	"aipod/src/audio"
	"aipod/src/log"
	"aipod/src/podcastctrl"
	"aipod/src/scriptgen"
	"aipod/src/storage"
)

const TaskTypePodcastGeneration = "podcast_generation"

type GeneratePayload struct {
	PodcastID string `json:"podcast_id"`
}

// PodcastStore is the slice of the podcast service the pipeline mutates.
type PodcastStore interface {
	GetByID(ctx context.Context, id string) (*podcastctrl.Podcast, error)
	BeginGeneration(ctx context.Context, id string) error
	SetStage(ctx context.Context, id string, stage podcastctrl.Stage) error
	SaveScript(ctx context.Context, id, script string) error
	SetThumbnail(ctx context.Context, id, thumbnailURL string) error
	Complete(ctx context.Context, id, audioURL string, audioDuration *int) error
	MarkFailed(ctx context.Context, id, message string) error
}

type ScriptGenerator interface {
	Generate(ctx context.Context, req scriptgen.Request) (string, error)
}

type AudioSynthesizer interface {
	Synthesize(ctx context.Context, script, speakerMode, voiceType string) ([]byte, error)
}

type AudioCodec interface {
	PCMToMP3(ctx context.Context, pcm []byte, sampleRate int, bitrate string) ([]byte, error)
	Duration(ctx context.Context, data []byte, format string) (float64, error)
}

// Thumbnailer produces cover art. It is optional; a nil Thumbnailer
// skips the step entirely.
type Thumbnailer interface {
	Generate(ctx context.Context, topic, description string) ([]byte, error)
}

type PodcastTask struct {
	podcasts    PodcastStore
	scripts     ScriptGenerator
	synthesizer AudioSynthesizer
	codec       AudioCodec
	artifacts   storage.ArtifactStore
	thumbnailer Thumbnailer
}

func NewPodcastTask(
	podcasts PodcastStore,
	scripts ScriptGenerator,
	synthesizer AudioSynthesizer,
	codec AudioCodec,
	artifacts storage.ArtifactStore,
	thumbnailer Thumbnailer,
) *PodcastTask {
	return &PodcastTask{
		podcasts:    podcasts,
		scripts:     scripts,
		synthesizer: synthesizer,
		codec:       codec,
		artifacts:   artifacts,
		thumbnailer: thumbnailer,
	}
}

// HandleGenerateTask drives one podcast through the full pipeline. Any
// stage failure marks the record failed and is returned to the queue
// layer.
func (task *PodcastTask) HandleGenerateTask(ctx context.Context, payload json.RawMessage) error {
	var generatePayload GeneratePayload
	if err := json.Unmarshal(payload, &generatePayload); err != nil {
		return fmt.Errorf("failed to unmarshal generation payload: %w", err)
	}
	if generatePayload.PodcastID == "" {
		return fmt.Errorf("generation payload carries no podcast id")
	}

	id := generatePayload.PodcastID
	if err := task.run(ctx, id); err != nil {
		if markErr := task.podcasts.MarkFailed(ctx, id, err.Error()); markErr != nil {
			log.Error(markErr, "failed to mark podcast as failed", "podcast_id", id)
		}
		return fmt.Errorf("failed to generate podcast %s: %w", id, err)
	}

	return nil
}

func (task *PodcastTask) run(ctx context.Context, id string) error {
	podcast, err := task.podcasts.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get podcast: %w", err)
	}
	if podcast == nil {
		return fmt.Errorf("podcast not found: %s", id)
	}

	log.Info("starting podcast generation", "podcast_id", id, "topic", podcast.Topic)

	if err := task.podcasts.BeginGeneration(ctx, id); err != nil {
		return fmt.Errorf("failed to begin generation: %w", err)
	}

	// Script stage.
	if err := task.podcasts.SetStage(ctx, id, podcastctrl.StageScript); err != nil {
		return err
	}
	script, err := task.scripts.Generate(ctx, scriptgen.Request{
		Topic:             podcast.Topic,
		Description:       podcast.Description,
		Duration:          podcast.Duration,
		SpeakerMode:       podcast.SpeakerMode,
		VoiceType:         podcast.VoiceType,
		ConversationStyle: podcast.ConversationStyle,
	})
	if err != nil {
		return err
	}
	if err := task.podcasts.SaveScript(ctx, id, script); err != nil {
		return fmt.Errorf("failed to save script: %w", err)
	}

	// Audio stage.
	if err := task.podcasts.SetStage(ctx, id, podcastctrl.StageAudio); err != nil {
		return err
	}
	pcm, err := task.synthesizer.Synthesize(ctx, script, podcast.SpeakerMode, podcast.VoiceType)
	if err != nil {
		return err
	}

	// Encode stage.
	if err := task.podcasts.SetStage(ctx, id, podcastctrl.StageConverting); err != nil {
		return err
	}
	mp3, err := task.codec.PCMToMP3(ctx, pcm, audio.DefaultSampleRate, audio.DefaultBitrate)
	if err != nil {
		return err
	}

	// Persist stage.
	if err := task.podcasts.SetStage(ctx, id, podcastctrl.StageSaving); err != nil {
		return err
	}
	audioURL, err := task.artifacts.SaveAudio(ctx, mp3, id, podcast.UserID, "mp3")
	if err != nil {
		return fmt.Errorf("failed to save audio: %w", err)
	}

	task.generateThumbnail(ctx, podcast)

	// Duration probing is best effort; an unreadable duration does not
	// fail an otherwise complete episode.
	if err := task.podcasts.SetStage(ctx, id, podcastctrl.StageFinalizing); err != nil {
		return err
	}
	var audioDuration *int
	if seconds, err := task.codec.Duration(ctx, mp3, "mp3"); err != nil {
		log.Error(err, "failed to probe audio duration", "podcast_id", id)
	} else {
		d := int(seconds)
		audioDuration = &d
	}

	if err := task.podcasts.Complete(ctx, id, audioURL, audioDuration); err != nil {
		return fmt.Errorf("failed to complete podcast: %w", err)
	}

	log.Info("podcast generation complete", "podcast_id", id, "audio_url", audioURL)
	return nil
}

// generateThumbnail renders and stores cover art. Thumbnails are
// decorative, so failures only log.
func (task *PodcastTask) generateThumbnail(ctx context.Context, podcast *podcastctrl.Podcast) {
	if task.thumbnailer == nil {
		return
	}

	image, err := task.thumbnailer.Generate(ctx, podcast.Topic, podcast.Description)
	if err != nil {
		log.Error(err, "failed to generate thumbnail", "podcast_id", podcast.ID)
		return
	}

	ref, err := task.artifacts.SaveThumbnail(ctx, image, podcast.ID, podcast.UserID, "png")
	if err != nil {
		log.Error(err, "failed to save thumbnail", "podcast_id", podcast.ID)
		return
	}

	if err := task.podcasts.SetThumbnail(ctx, podcast.ID, ref); err != nil {
		log.Error(err, "failed to record thumbnail", "podcast_id", podcast.ID)
	}
}
