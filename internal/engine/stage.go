// Package engine implements the durable triage workflow. Each inbound item
// gets one Instance that moves through a fixed stage sequence, checkpointed
// after every transition so a restarted process can pick up where the last
// one stopped. The workflow suspends at awaiting_decision and is driven the
// rest of the way by a human decision delivered through Resume.
package engine

import (
	"errors"
	"fmt"
	"slices"
)

// Stage identifies a workflow instance's position in the triage sequence.
type Stage string

// Workflow stages, in execution order. failed is reachable from any
// non-terminal stage.
const (
	StageExtracting       Stage = "extracting"
	StageAssembling       Stage = "assembling_context"
	StageClassifying      Stage = "classifying"
	StageAwaitingDecision Stage = "awaiting_decision"
	StageExecuting        Stage = "executing"
	StageConfirming       Stage = "confirming"
	StageDone             Stage = "done"
	StageFailed           Stage = "failed"
)

var stages = []Stage{
	StageExtracting,
	StageAssembling,
	StageClassifying,
	StageAwaitingDecision,
	StageExecuting,
	StageConfirming,
	StageDone,
	StageFailed,
}

// ErrUnknownStage indicates a stage name outside the workflow vocabulary.
var ErrUnknownStage = errors.New("unknown workflow stage")

// ParseStage validates a stage name.
func ParseStage(s string) (Stage, error) {
	stage := Stage(s)
	if !slices.Contains(stages, stage) {
		return "", fmt.Errorf("%w: %q", ErrUnknownStage, s)
	}
	return stage, nil
}

// Terminal reports whether the stage ends the workflow.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// Suspended reports whether the stage waits on an external decision.
func (s Stage) Suspended() bool {
	return s == StageAwaitingDecision
}

func (s Stage) String() string {
	return string(s)
}
