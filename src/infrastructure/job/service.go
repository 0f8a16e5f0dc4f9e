package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"aipod/src/jobctrl"
)

// JobsTopic is the queue topic generation jobs are published to.
const JobsTopic = "jobs"

type JobService struct {
	publisher   message.Publisher
	repo        JobRepository
	logger      watermill.LoggerAdapter
	podcastTask *jobctrl.PodcastTask
}

type JobMessage struct {
	JobID    int64           `json:"job_id"`
	TaskType string          `json:"task_type"`
	Payload  json.RawMessage `json:"payload"`
}

func NewJobService(
	publisher message.Publisher,
	repo JobRepository,
	logger watermill.LoggerAdapter,
	podcastTask *jobctrl.PodcastTask,
) *JobService {
	return &JobService{
		publisher:   publisher,
		repo:        repo,
		logger:      logger,
		podcastTask: podcastTask,
	}
}

// EnqueueJob creates a new job and publishes it to the message queue
func (s *JobService) EnqueueJob(ctx context.Context, taskType string, payload json.RawMessage) (*Job, error) {
	job, err := s.repo.Create(ctx, taskType, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	jobMsg := JobMessage{
		JobID:    job.ID,
		TaskType: job.TaskType,
		Payload:  job.Payload,
	}

	msgPayload, err := json.Marshal(jobMsg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job message: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), msgPayload)
	if err := s.publisher.Publish(JobsTopic, msg); err != nil {
		return nil, fmt.Errorf("failed to publish job message: %w", err)
	}

	return job, nil
}

// EnqueueGeneration enqueues a podcast generation job.
func (s *JobService) EnqueueGeneration(ctx context.Context, podcastID string) (*Job, error) {
	payload, err := json.Marshal(jobctrl.GeneratePayload{PodcastID: podcastID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generation payload: %w", err)
	}
	return s.EnqueueJob(ctx, jobctrl.TaskTypePodcastGeneration, payload)
}

// ProcessJobMessage processes a job message from the queue
func (s *JobService) ProcessJobMessage(msg *message.Message) error {
	var jobMsg JobMessage
	if err := json.Unmarshal(msg.Payload, &jobMsg); err != nil {
		return fmt.Errorf("failed to unmarshal job message: %w", err)
	}

	ctx := msg.Context()

	job, err := s.repo.Get(ctx, jobMsg.JobID)
	if err != nil {
		return fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return fmt.Errorf("job not found: %d", jobMsg.JobID)
	}

	if err := s.repo.UpdateStatus(ctx, job.ID, JobStatusRunning, nil); err != nil {
		return fmt.Errorf("failed to update job status to running: %w", err)
	}

	err = s.processJob(ctx, job)

	if err != nil {
		errStr := err.Error()
		if updateErr := s.repo.UpdateStatus(ctx, job.ID, JobStatusFailed, &errStr); updateErr != nil {
			s.logger.Error("Failed to update job status to failed", updateErr, watermill.LogFields{
				"job_id": job.ID,
			})
		}
		return fmt.Errorf("failed to process job: %w", err)
	}

	if err := s.repo.UpdateStatus(ctx, job.ID, JobStatusCompleted, nil); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	return nil
}

// processJob handles different types of jobs
func (s *JobService) processJob(ctx context.Context, job *Job) error {
	switch job.TaskType {
	case jobctrl.TaskTypePodcastGeneration:
		return s.podcastTask.HandleGenerateTask(ctx, job.Payload)
	default:
		return fmt.Errorf("unknown task type: %s", job.TaskType)
	}
}
