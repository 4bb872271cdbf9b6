package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/openfoodfacts-mcp/backend/internal/domain"
)

var argsValidator = newArgsValidator()

func newArgsValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON name, as callers see them.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func newSchemaReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		Anonymous:                  true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
		AllowAdditionalProperties:  true,
	}
}

// inputSchema reflects an args struct into the JSON Schema published to
// clients.
func inputSchema(r *jsonschema.Reflector, args any) (json.RawMessage, error) {
	schema := r.Reflect(args)
	schema.Version = ""
	schema.ID = ""
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// decodeArgs decodes raw arguments over the pre-populated defaults in args
// and validates the result.
func decodeArgs(raw json.RawMessage, args any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, args); err != nil {
			return domain.NewInvalidArgument("malformed arguments: %v", err)
		}
	}

	if err := argsValidator.Struct(args); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return domain.NewInvalidArgument("%v", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describeFieldError(fe))
		}
		return domain.NewInvalidArgument("%s", strings.Join(msgs, "; "))
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Missing required argument: %s", fe.Field())
	case "min":
		return fmt.Sprintf("argument %s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("argument %s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("argument %s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("argument %s failed %s validation", fe.Field(), fe.Tag())
	}
}
