package model

// Outcome is the result of running the pipeline for one track.
//
// Err is nil on success. On failure Actions holds whatever ran before the
// failing stage; it is informational only.
type Outcome struct {
	Track   Track
	Actions Actions
	Err     error
}

// Failed reports whether the track could not be processed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Skipped reports whether the track succeeded without doing anything.
func (o Outcome) Skipped() bool {
	return o.Err == nil && len(o.Actions) == 0
}
