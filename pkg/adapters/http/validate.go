package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/formstate/api"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// newRouter indexes the operations of the embedded OpenAPI document.
func newRouter() (routers.Router, error) {
	doc, err := api.Document()
	if err != nil {
		return nil, err
	}
	return legacy.NewRouter(doc)
}

// validateRequests checks every request that matches a documented operation
// against the OpenAPI document. Malformed bodies are answered with 400 and
// bodies that do not match their schema with 422. Undocumented routes pass
// through to chi.
func (s *Server) validateRequests(router routers.Router) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options: &openapi3filter.Options{
					MultiError: true,
				},
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				s.writeRequestError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) writeRequestError(w http.ResponseWriter, err error) {
	var schemaErrs []*openapi3.SchemaError
	collectSchemaErrors(err, &schemaErrs)

	if len(schemaErrs) == 0 {
		s.writeError(w, http.StatusBadRequest, "invalid request", err)
		return
	}

	details := make([]string, len(schemaErrs))
	for i, e := range schemaErrs {
		details[i] = describeSchemaError(e)
	}
	s.logger.Warn("request rejected", "status", http.StatusUnprocessableEntity, "details", details)
	s.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "request does not match the API schema",
		Details: details,
	})
}

// collectSchemaErrors flattens the multi errors produced by openapi3filter.
func collectSchemaErrors(err error, out *[]*openapi3.SchemaError) {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, e := range multi {
			collectSchemaErrors(e, out)
		}
		return
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		*out = append(*out, schemaErr)
	}
}

func describeSchemaError(e *openapi3.SchemaError) string {
	path := strings.Join(e.JSONPointer(), ".")
	if path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", path, e.Reason)
}

// pathParam binds a path parameter the way generated oapi-codegen servers do,
// unescaping it.
func pathParam(r *http.Request, name string) (string, error) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &value,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	return value, err
}
