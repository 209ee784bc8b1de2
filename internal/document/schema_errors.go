package document

import (
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaIssue is a single location rejected by the document schema.
type SchemaIssue struct {
	Location string
	Message  string
}

// SchemaError lists every schema violation found while decoding. It matches
// ErrInvalidSchema with errors.Is.
type SchemaError struct {
	Issues []SchemaIssue
	Cause  error
}

func (e *SchemaError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", ErrInvalidSchema, e.Cause)
		}
		return ErrInvalidSchema.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, location+": "+issue.Message)
	}
	return ErrInvalidSchema.Error() + ": " + strings.Join(parts, "; ")
}

func (e *SchemaError) Unwrap() error {
	return ErrInvalidSchema
}

// SchemaIssues extracts the schema violations carried by err.
func SchemaIssues(err error) []SchemaIssue {
	if err == nil {
		return nil
	}
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) && schemaErr != nil {
		return schemaErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectSchemaIssues(validationErr)
	}
	return []SchemaIssue{{Message: err.Error()}}
}

func newSchemaError(err error) *SchemaError {
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		return &SchemaError{Issues: collectSchemaIssues(validationErr), Cause: err}
	}
	return &SchemaError{Cause: err}
}

// collectSchemaIssues flattens the cause tree to its leaves.
func collectSchemaIssues(err *jsonschema.ValidationError) []SchemaIssue {
	if err == nil {
		return nil
	}
	issues := []SchemaIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, SchemaIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
