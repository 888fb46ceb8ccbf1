package domain

// ActionType names a state machine transition.
type ActionType string

// Transitions understood by the reducer.
const (
	ActionChangeValue  ActionType = "CHANGE_VALUE"
	ActionSetDirty     ActionType = "SET_DIRTY"
	ActionSetSaveable  ActionType = "SET_SAVEABLE"
	ActionReset        ActionType = "RESET"
	ActionReinitialize ActionType = "REINITIALIZE"
)

// Action is a typed transition request. Only the fields relevant to Type are read.
type Action struct {
	Type  ActionType
	Key   string           // ChangeValue
	Value Value            // ChangeValue
	Flag  bool             // SetDirty, SetSaveable
	Data  map[string]Value // Reinitialize
}

// AffectsData reports whether the transition touches field data and
// therefore requires a recomputation pass.
func (a Action) AffectsData() bool {
	switch a.Type {
	case ActionChangeValue, ActionReset, ActionReinitialize:
		return true
	default:
		return false
	}
}

func ChangeValue(key string, value Value) Action {
	return Action{Type: ActionChangeValue, Key: key, Value: value}
}

func SetDirty(dirty bool) Action {
	return Action{Type: ActionSetDirty, Flag: dirty}
}

func SetSaveable(saveable bool) Action {
	return Action{Type: ActionSetSaveable, Flag: saveable}
}

func Reset() Action {
	return Action{Type: ActionReset}
}

func Reinitialize(data map[string]Value) Action {
	return Action{Type: ActionReinitialize, Data: data}
}
