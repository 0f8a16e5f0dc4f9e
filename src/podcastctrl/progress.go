package podcastctrl

import "fmt"

// Stage is one step of the generation pipeline. Every stage maps to a
// fixed progress value; writes with a pair outside the table are rejected.
type Stage string

const (
	StageInitializing Stage = "Initializing"
	StageScript       Stage = "Generating script"
	StageAudio        Stage = "Creating audio"
	StageConverting   Stage = "Converting"
	StageSaving       Stage = "Saving"
	StageFinalizing   Stage = "Finalizing"
	StageCompleted    Stage = "Completed"
	StageFailed       Stage = "Failed"
)

var stageProgress = map[Stage]int{
	StageInitializing: 5,
	StageScript:       10,
	StageAudio:        40,
	StageConverting:   80,
	StageSaving:       85,
	StageFinalizing:   95,
	StageCompleted:    100,
	StageFailed:       0,
}

// Progress returns the progress value bound to the stage.
func (s Stage) Progress() (int, error) {
	p, ok := stageProgress[s]
	if !ok {
		return 0, fmt.Errorf("unknown generation stage: %q", s)
	}
	return p, nil
}
