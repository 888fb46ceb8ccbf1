/*
Package domain contains the core domain models of the form-state engine.

It defines the field model, the aggregate FormState, the typed transitions and
the events emitted around them. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Value: An opaque comparable scalar (string, number, boolean or null).
  - FieldDescriptor: The declarative input describing one field and its policy flags.
  - FieldState: The engine's record for a field (current value, baseline, baseline-ok flag).
  - FormState: The aggregate snapshot (field map plus the derived dirty/saveable flags).
  - Action: A typed transition (ChangeValue, SetDirty, SetSaveable, Reset, Reinitialize).
  - Session: A persisted snapshot used by host adapters.
*/
package domain
