/*
Package formstate is a form-state engine: it tracks field mutations against a
baseline and keeps two derived flags, dirty and saveable, up to date.

# Concept

A form is declared as a list of field descriptors. Each field carries a current
value, a baseline (the value it started from) and optional policy flags. After
every transition that touches field data the engine recomputes:

  - Dirty: at least one checked field differs from its baseline.
  - Saveable: every checked field either differs from its baseline or has a
    baseline marked as acceptable (InitialValueIsOk).

Listeners are notified only when a flag actually flips.

The engine does not persist state, perform I/O or render anything. Persistence
(pkg/adapters), transport (HTTP, MCP) and presentation are host adapters built
around it.

# Usage

	form, err := formstate.New([]domain.FieldDescriptor{
		{Key: "name", Value: domain.String("")},
		{Key: "email", Value: domain.String("a@b.com"), InitialValueIsOk: domain.Flag(true)},
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	_ = form.ChangeValue(ctx, "name", domain.String("Ada"))
	fmt.Println(form.IsDirty(), form.IsSaveable()) // true true

	_ = form.Reset(ctx)
	fmt.Println(form.IsDirty()) // false

Forms can also be loaded from YAML or JSON definition files with Load, and
restored from a persisted session with Restore.
*/
package formstate
