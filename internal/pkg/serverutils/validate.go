package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError carries the field-level failures of one request so the
// error handler can map it to a 400 with details.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// ValidateRequest checks the struct tags of a bound request DTO.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make([]string, 0, len(invalid))
	for _, fe := range invalid {
		fields = append(fields, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
	}
	return &ValidationError{Fields: fields}
}
