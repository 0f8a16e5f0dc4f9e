package podcastctrl_test

import (
	"testing"

	"aipod/src/podcastctrl"
)

func TestStageProgressTable(t *testing.T) {
	tests := []struct {
		stage        podcastctrl.Stage
		wantProgress int
	}{
		{podcastctrl.StageInitializing, 5},
		{podcastctrl.StageScript, 10},
		{podcastctrl.StageAudio, 40},
		{podcastctrl.StageConverting, 80},
		{podcastctrl.StageSaving, 85},
		{podcastctrl.StageFinalizing, 95},
		{podcastctrl.StageCompleted, 100},
		{podcastctrl.StageFailed, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			got, err := tt.stage.Progress()
			if err != nil {
				t.Fatalf("Progress() error = %v", err)
			}
			if got != tt.wantProgress {
				t.Errorf("Progress() = %d, want %d", got, tt.wantProgress)
			}
		})
	}
}

func TestStageProgressRejectsUnknownStage(t *testing.T) {
	if _, err := podcastctrl.Stage("Uploading").Progress(); err == nil {
		t.Fatal("Progress() on unknown stage should error")
	}
}
