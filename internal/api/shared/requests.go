package shared

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Validate is the global validator instance shared by request handling.
var Validate = validator.New()

// DecodeJSON decodes the request body into the given struct.
// Unknown fields in the body are silently ignored, matching the partial
// update contract.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v interface{}) error {
	return Validate.Struct(v)
}
