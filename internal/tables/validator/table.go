package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"reservio/pkg/logger"
	"reservio/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type TableValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewTableValidator(log *logger.Logger) *TableValidator {
	return &TableValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *TableValidator) Validate(table *model.Table) error {
	return v.translate(v.validate.Struct(table))
}

func (v *TableValidator) ValidateUpdate(update *model.TableUpdate) error {
	return v.translate(v.validate.Struct(update))
}

func (v *TableValidator) translate(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	var out ValidationErrors
	for _, verr := range validationErrs {
		message := verr.Error()
		switch verr.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", verr.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", verr.Field(), verr.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", verr.Field(), verr.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", verr.Field())
		}
		out = append(out, ValidationError{Field: verr.Field(), Message: message})
	}
	return out
}
