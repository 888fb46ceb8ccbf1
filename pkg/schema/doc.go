// Package schema validates the shape of untyped form documents before they are decoded.
//
// Documents coming from YAML files, JSON request bodies or MCP tool arguments are
// plain maps. The engine requires a well-formed descriptor list at construction,
// so every violation (missing key, non-scalar value, non-boolean flag, unknown
// attribute) is collected and reported together:
//
//	if err := schema.ValidateDefinition(raw); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        log.Println(e)
//	    }
//	}
package schema
