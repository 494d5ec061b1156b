package api

import (
	"errors"
	"fmt"
)

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

var (
	ErrProtocolMismatch = errors.New("protocol id mismatch")
	ErrMissingTarget    = errors.New("target is required")
)

func (h Handshake) Validate() error {
	if h.ProtocolID != ProtocolID {
		return fmt.Errorf("%w: got %d, want %d", ErrProtocolMismatch, h.ProtocolID, ProtocolID)
	}
	return nil
}

func (c ClientCommand) Validate() error {
	if c.Action.String() == "UNKNOWN" {
		return fmt.Errorf("unknown action %d", c.Action)
	}
	return nil
}

func (p TargetPayload) Validate() error {
	if p.Target.IsNil() {
		return ErrMissingTarget
	}
	return nil
}

func (m UpdateMessage) Validate() error {
	if !m.Component.Valid() {
		return fmt.Errorf("update for %v carries malformed %v component", m.Entity, m.Component.Kind)
	}
	return nil
}
