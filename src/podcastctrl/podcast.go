package podcastctrl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the lifecycle state of a podcast record.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Speaker modes, voices and conversation styles accepted by the pipeline.
const (
	ModeSingle = "single"
	ModeTwo    = "two"

	VoiceMale   = "male"
	VoiceFemale = "female"

	StyleCasual       = "casual"
	StyleProfessional = "professional"
	StyleEducational  = "educational"
)

// Podcast is the durable generation job record. It is created as a draft
// by the API layer and exclusively mutated by the worker afterwards.
type Podcast struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID int64  `gorm:"not null;index" json:"user_id"`

	Title       string `gorm:"not null" json:"title"`
	Topic       string `gorm:"not null" json:"topic"`
	Description string `gorm:"not null;type:text" json:"description"`

	// Duration is the requested duration in minutes.
	Duration          int    `gorm:"not null" json:"duration"`
	SpeakerMode       string `gorm:"not null;default:single" json:"speaker_mode"`
	VoiceType         string `json:"voice_type,omitempty"`
	ConversationStyle string `json:"conversation_style,omitempty"`

	Status   Status `gorm:"not null;default:draft;index" json:"status"`
	Progress int    `gorm:"not null;default:0" json:"progress"`
	Stage    string `gorm:"not null;default:''" json:"stage"`
	IsPublic bool   `gorm:"not null;default:false;index" json:"is_public"`

	Script        *string `gorm:"type:text" json:"script,omitempty"`
	AudioURL      *string `gorm:"column:audio_url;type:text" json:"audio_url,omitempty"`
	AudioDuration *int    `json:"audio_duration,omitempty"`
	ThumbnailURL  *string `gorm:"column:thumbnail_url;type:text" json:"thumbnail_url,omitempty"`
	ErrorMessage  *string `gorm:"type:text" json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PodcastService persists podcast records. Every mutation is a single-row
// update so status pollers never observe a torn write.
type PodcastService struct {
	db *gorm.DB
}

func NewPodcastService(db *gorm.DB) (*PodcastService, error) {
	return &PodcastService{db: db}, nil
}

// CreateParams holds the fields the API layer supplies for a new draft.
type CreateParams struct {
	UserID            int64
	Title             string
	Topic             string
	Description       string
	Duration          int
	SpeakerMode       string
	VoiceType         string
	ConversationStyle string
}

func (s *PodcastService) Create(ctx context.Context, params CreateParams) (*Podcast, error) {
	podcast := &Podcast{
		ID:                uuid.NewString(),
		UserID:            params.UserID,
		Title:             params.Title,
		Topic:             params.Topic,
		Description:       params.Description,
		Duration:          params.Duration,
		SpeakerMode:       params.SpeakerMode,
		VoiceType:         params.VoiceType,
		ConversationStyle: params.ConversationStyle,
		Status:            StatusDraft,
	}

	result := s.db.WithContext(ctx).Create(podcast)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create podcast: %v", result.Error)
	}

	return podcast, nil
}

func (s *PodcastService) GetByID(ctx context.Context, id string) (*Podcast, error) {
	var podcast Podcast
	result := s.db.WithContext(ctx).First(&podcast, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get podcast: %v", result.Error)
	}
	return &podcast, nil
}

// ListByUser returns a page of the user's podcasts, newest first,
// optionally filtered by status.
func (s *PodcastService) ListByUser(ctx context.Context, userID int64, status Status, limit, offset int) ([]Podcast, error) {
	var podcasts []Podcast

	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	result := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&podcasts)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list podcasts: %v", result.Error)
	}

	return podcasts, nil
}

// ListPublic returns completed public podcasts for the discover feed.
func (s *PodcastService) ListPublic(ctx context.Context, limit, offset int) ([]Podcast, error) {
	var podcasts []Podcast

	result := s.db.WithContext(ctx).
		Where("is_public = ? AND status = ?", true, StatusCompleted).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&podcasts)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list public podcasts: %v", result.Error)
	}

	return podcasts, nil
}

// CountActiveByUser counts the user's podcasts that are still being
// produced. The API layer uses it for its generation rate limit.
func (s *PodcastService) CountActiveByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&Podcast{}).
		Where("user_id = ? AND status IN ?", userID, []Status{StatusDraft, StatusGenerating}).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count active podcasts: %v", result.Error)
	}
	return count, nil
}

func (s *PodcastService) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&Podcast{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete podcast: %v", result.Error)
	}
	return nil
}

// BeginGeneration moves the record into the generating state and resets
// every output field from a prior attempt, so a queue redelivery starts
// from a clean slate.
func (s *PodcastService) BeginGeneration(ctx context.Context, id string) error {
	progress, err := StageInitializing.Progress()
	if err != nil {
		return err
	}
	return s.update(ctx, id, map[string]interface{}{
		"status":         StatusGenerating,
		"progress":       progress,
		"stage":          string(StageInitializing),
		"script":         nil,
		"audio_url":      nil,
		"audio_duration": nil,
		"error_message":  nil,
	})
}

// SetStage persists a stage/progress pair from the fixed table.
func (s *PodcastService) SetStage(ctx context.Context, id string, stage Stage) error {
	progress, err := stage.Progress()
	if err != nil {
		return err
	}
	return s.update(ctx, id, map[string]interface{}{
		"progress": progress,
		"stage":    string(stage),
	})
}

// SaveScript stores the generated script. The script is immutable input
// to the audio stage once written.
func (s *PodcastService) SaveScript(ctx context.Context, id, script string) error {
	return s.update(ctx, id, map[string]interface{}{
		"script": script,
	})
}

// SetThumbnail records the stored thumbnail reference.
func (s *PodcastService) SetThumbnail(ctx context.Context, id, thumbnailURL string) error {
	return s.update(ctx, id, map[string]interface{}{
		"thumbnail_url": thumbnailURL,
	})
}

// Complete writes the terminal success state. audioDuration may be nil
// when probing failed; the job still completes.
func (s *PodcastService) Complete(ctx context.Context, id, audioURL string, audioDuration *int) error {
	progress, err := StageCompleted.Progress()
	if err != nil {
		return err
	}
	return s.update(ctx, id, map[string]interface{}{
		"status":         StatusCompleted,
		"progress":       progress,
		"stage":          string(StageCompleted),
		"audio_url":      audioURL,
		"audio_duration": audioDuration,
		"error_message":  nil,
	})
}

// MarkFailed writes the terminal failure state with a human-readable cause.
func (s *PodcastService) MarkFailed(ctx context.Context, id, message string) error {
	return s.update(ctx, id, map[string]interface{}{
		"status":         StatusFailed,
		"progress":       0,
		"stage":          string(StageFailed),
		"error_message":  message,
		"audio_url":      nil,
		"audio_duration": nil,
	})
}

// Publish flips the public flag of a completed podcast.
func (s *PodcastService) Publish(ctx context.Context, id string, public bool) error {
	return s.update(ctx, id, map[string]interface{}{
		"is_public": public,
	})
}

// SweepStale marks podcasts stuck in the generating state for longer than
// olderThan as failed. It reconciles jobs whose worker was killed past its
// execution budget and never reached a terminal write.
func (s *PodcastService) SweepStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result := s.db.WithContext(ctx).Model(&Podcast{}).
		Where("status = ? AND updated_at < ?", StatusGenerating, cutoff).
		Updates(map[string]interface{}{
			"status":        StatusFailed,
			"progress":      0,
			"stage":         string(StageFailed),
			"error_message": "generation timed out: worker exceeded its execution budget",
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to sweep stale podcasts: %v", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *PodcastService) update(ctx context.Context, id string, values map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(&Podcast{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("podcast not found")
	}
	return nil
}
