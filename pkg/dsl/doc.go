/*
Package dsl provides a Go DSL for programmatically constructing forms.

It is the code alternative to YAML/JSON form definitions: a fluent builder
with IDE autocompletion, useful for dynamic forms and tests.

Example usage:

	form, err := dsl.New("signup").
		Field("name").Value("").
		Field("email").Value("a@b.com").InitialValueIsOk().
		Field("newsletter").Value(false).SkipSaveable().
		Done().
		Build()
*/
package dsl
