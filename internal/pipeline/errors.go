package pipeline

import (
	"errors"
	"fmt"
)

// Stage names a step of a run. Fatal errors carry the stage they stopped.
type Stage string

const (
	StageLayout     Stage = "layout"
	StageRead       Stage = "read"
	StageDecode     Stage = "decode"
	StageProfile    Stage = "profile"
	StageSynthesize Stage = "synthesize"
	StageTrailer    Stage = "trailer"
	StageWrite      Stage = "write"
)

// StageError is a fatal run error tagged with its stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// fail tags err with stage unless it already carries one.
func fail(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}
