package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTransition EventType = "transition"
	EventRejected   EventType = "rejected"
	EventFlagChange EventType = "flag_change"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	FormName  string    `json:"form_name,omitempty"`
}

// TransitionEvent describes an applied (or rejected) transition.
type TransitionEvent struct {
	EventBase
	Action ActionType `json:"action"`
	Diff   *StateDiff `json:"diff,omitempty"`
	Err    error      `json:"-"`
}

// FlagName names a derived flag.
type FlagName string

const (
	FlagDirty    FlagName = "dirty"
	FlagSaveable FlagName = "saveable"
)

// FlagEvent is emitted when a recomputation pass flips a derived flag.
type FlagEvent struct {
	EventBase
	Flag  FlagName  `json:"flag"`
	Value bool      `json:"value"`
	State FormState `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnRejected   func(context.Context, *TransitionEvent)
	OnFlagChange func(context.Context, *FlagEvent)
}
