package vskia

import (
	"encoding/json"
	"fmt"
)

// Script step actions.
const (
	ActionAppend       = "append"
	ActionInsertBefore = "insertBefore"
	ActionRemove       = "remove"
	ActionSetShape     = "setShape"
)

// Step is one host command in a script.
type Step struct {
	Action    string          `json:"action"`
	Child     NodeID          `json:"child,omitempty"`
	Container NodeID          `json:"container,omitempty"`
	Before    NodeID          `json:"before,omitempty"`
	Node      NodeID          `json:"node,omitempty"`
	Shape     json.RawMessage `json:"shape,omitempty"`
}

// Script is a recorded sequence of host commands against an instance whose
// root has id Root.
type Script struct {
	Root  NodeID `json:"root"`
	Steps []Step `json:"steps"`
}

// LoadScript parses a JSON script.
func LoadScript(jsonData []byte) (*Script, error) {
	var s Script
	if err := json.Unmarshal(jsonData, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("parse script: step %d: %w", i, err)
		}
	}
	return &s, nil
}

func (st Step) validate() error {
	switch st.Action {
	case ActionAppend, ActionInsertBefore, ActionRemove:
		return nil
	case ActionSetShape:
		if len(st.Shape) == 0 {
			return fmt.Errorf("%s without shape", st.Action)
		}
		return nil
	}
	return fmt.Errorf("unknown action %q", st.Action)
}

// NewInstance creates an instance rooted at the script's root id.
func (s *Script) NewInstance() *Instance {
	return NewInstance(s.Root)
}

// ApplyStep executes a single command.
func (in *Instance) ApplyStep(st Step) error {
	switch st.Action {
	case ActionAppend:
		return in.AppendChild(st.Child, st.Container)
	case ActionInsertBefore:
		return in.InsertChildBefore(st.Child, st.Before, st.Container)
	case ActionRemove:
		in.RemoveChild(st.Child, st.Container)
		return nil
	case ActionSetShape:
		return in.ApplyShapePayload(st.Node, st.Shape)
	}
	return fmt.Errorf("unknown action %q", st.Action)
}

// ApplyScript executes every step in order, stopping at the first error.
func (in *Instance) ApplyScript(s *Script) error {
	for i, st := range s.Steps {
		if err := in.ApplyStep(st); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, st.Action, err)
		}
	}
	return nil
}
