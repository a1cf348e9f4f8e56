package comment

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Form-level error messages.
const (
	msgExtraFields = "This form should not contain extra fields."
	msgInvalidJSON = "Invalid JSON payload."
	msgInvalidType = "This value is not valid."
)

// Input is the writable part of a comment (the api_write group).
type Input struct {
	Name    string  `json:"name" validate:"required,max=255"`
	Email   string  `json:"email" validate:"required,email,max=255"`
	URL     string  `json:"url" validate:"omitempty,url,max=255"`
	Message string  `json:"message" validate:"required"`
	Status  *Status `json:"status" validate:"required,oneof=0 1 2"`
}

// ValidationFailure describes why a submitted payload was rejected.
type ValidationFailure struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
	Global  []string            `json:"global,omitempty"`
}

func newValidationFailure() *ValidationFailure {
	return &ValidationFailure{
		Code:    http.StatusBadRequest,
		Message: "Validation Failed",
		Errors:  map[string][]string{},
	}
}

// Error summarizes the failure in one line.
func (f *ValidationFailure) Error() string {
	parts := append([]string(nil), f.Global...)

	fields := make([]string, 0, len(f.Errors))
	for field := range f.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(f.Errors[field], " ")))
	}

	if len(parts) == 0 {
		return strings.ToLower(f.Message)
	}
	return strings.ToLower(f.Message) + ": " + strings.Join(parts, "; ")
}

func (f *ValidationFailure) addField(field, msg string) {
	f.Errors[field] = append(f.Errors[field], msg)
}

func (f *ValidationFailure) empty() bool {
	return len(f.Errors) == 0 && len(f.Global) == 0
}

// BindResult is the outcome of binding a payload onto a comment.
// Exactly one of Comment and Failure is set.
type BindResult struct {
	Comment *Comment
	Failure *ValidationFailure
}

// Valid reports whether the payload passed validation.
func (r BindResult) Valid() bool {
	return r.Failure == nil
}

// Form binds client payloads onto comments and validates them.
type Form struct {
	validate *validator.Validate
}

// NewForm creates a comment form.
func NewForm() *Form {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Form{validate: v}
}

// Bind applies a JSON payload onto a copy of existing and validates it.
// The submission replaces every writable field: fields absent from the
// payload are cleared. existing is never modified.
func (f *Form) Bind(payload []byte, existing *Comment) BindResult {
	failure := newValidationFailure()

	var raw map[string]jsoniter.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		failure.Global = append(failure.Global, msgInvalidJSON)
		return BindResult{Failure: failure}
	}

	var in Input
	targets := map[string]interface{}{
		"name":    &in.Name,
		"email":   &in.Email,
		"url":     &in.URL,
		"message": &in.Message,
		"status":  &in.Status,
	}

	for key, value := range raw {
		target, ok := targets[key]
		if !ok {
			if len(failure.Global) == 0 {
				failure.Global = append(failure.Global, msgExtraFields)
			}
			continue
		}
		if err := json.Unmarshal(value, target); err != nil {
			failure.addField(key, msgInvalidType)
		}
	}
	if !failure.empty() {
		return BindResult{Failure: failure}
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.URL = strings.TrimSpace(in.URL)
	in.Message = strings.TrimSpace(in.Message)

	if vf := f.check(&in); vf != nil {
		return BindResult{Failure: vf}
	}

	updated := *existing
	updated.Name = in.Name
	updated.Email = in.Email
	updated.URL = in.URL
	updated.Message = in.Message
	updated.Status = *in.Status

	return BindResult{Comment: &updated}
}

// Validate checks a fully built comment against the write rules.
// It returns nil when the comment is valid.
func (f *Form) Validate(c *Comment) *ValidationFailure {
	status := c.Status
	return f.check(&Input{
		Name:    c.Name,
		Email:   c.Email,
		URL:     c.URL,
		Message: c.Message,
		Status:  &status,
	})
}

func (f *Form) check(in *Input) *ValidationFailure {
	err := f.validate.Struct(in)
	if err == nil {
		return nil
	}

	failure := newValidationFailure()
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		failure.Global = append(failure.Global, err.Error())
		return failure
	}
	for _, fe := range verrs {
		failure.addField(fe.Field(), fieldMessage(fe))
	}
	return failure
}

// fieldMessage turns a validator failure into a client-facing message.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This value should not be blank."
	case "email":
		return "This value is not a valid email address."
	case "url":
		return "This value is not a valid URL."
	case "max":
		return fmt.Sprintf("This value is too long. It should have %s characters or less.", fe.Param())
	case "oneof":
		return "The value you selected is not a valid choice."
	default:
		return msgInvalidType
	}
}
