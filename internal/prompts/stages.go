package prompts

import (
	"encoding/json"
	"slices"
)

// Stage is a pipeline step whose model instructions can be overridden.
type Stage string

const (
	StageClassify Stage = "classify"
	StageVerify   Stage = "verify"
	StageChat     Stage = "chat"
)

var stages = []Stage{
	StageClassify,
	StageVerify,
	StageChat,
}

// Stages returns the list of valid pipeline stages.
func Stages() []Stage {
	return slices.Clone(stages)
}

// UnmarshalJSON validates that the decoded string is a known stage value.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStage validates a string as a known pipeline stage.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}
