package pipeline

import "fmt"

// Stage names a pipeline step.
type Stage string

const (
	StageDownload  Stage = "download"
	StageCover     Stage = "cover"
	StageTransform Stage = "cover transform"
	StageMux       Stage = "mux"
)

// ItemError is the failure of one track. It carries the track identity so
// report lines are self-explanatory.
type ItemError struct {
	Title string
	ID    string
	Stage Stage
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s (%s): %s: %v", e.Title, e.ID, e.Stage, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
