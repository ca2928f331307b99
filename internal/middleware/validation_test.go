package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Listing-shaped payload with the validation tags the handlers use
type listingRequest struct {
	Description string `json:"description" validate:"required,max=300"`
	Gender      string `json:"gender" validate:"required,oneof=MAN WOMAN UNISEX"`
	Brand       string `json:"brand" validate:"omitempty,max=50"`
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeDescription bool, includeGender bool) bool {
			// Create request with some fields missing
			reqMap := make(map[string]interface{})

			if includeDescription {
				reqMap["description"] = "Linen summer shirt"
			}
			if includeGender {
				reqMap["gender"] = "UNISEX"
			}

			allFieldsPresent := includeDescription && includeGender

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var listing listingRequest
			err := DecodeAndValidate(req, &listing)

			if allFieldsPresent {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Test that validation errors are properly formatted
func TestProperty_ValidationErrorsAreFormatted(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("validation errors include field information", prop.ForAll(
		func(badGender string) bool {
			reqMap := map[string]interface{}{
				"description": "Wool coat",
				"gender":      badGender,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var listing listingRequest
			err := DecodeAndValidate(req, &listing)

			if err == nil {
				return false // Should have validation error
			}

			validationErrors := FormatValidationErrors(err)
			if len(validationErrors) == 0 {
				return false
			}

			// Each error should have a field and message
			for _, ve := range validationErrors {
				if ve.Field == "" || ve.Message == "" {
					return false
				}
			}

			return true
		},
		gen.OneConstOf("man", "MALE", "OTHER", "unisex "),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Test that valid requests pass validation
func TestProperty_ValidRequestsPassValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid requests pass validation", prop.ForAll(
		func(description string, gender string) bool {
			reqMap := map[string]interface{}{
				"description": description,
				"gender":      gender,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var listing listingRequest
			err := DecodeAndValidate(req, &listing)

			return err == nil
		},
		gen.RegexMatch(`[A-Za-z0-9 ]{1,100}`),
		gen.OneConstOf("MAN", "WOMAN", "UNISEX"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Test length limit validation
func TestProperty_DescriptionLengthValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("descriptions over the limit are rejected", prop.ForAll(
		func(length int) bool {
			description := make([]byte, length)
			for i := range description {
				description[i] = 'a'
			}

			reqMap := map[string]interface{}{
				"description": string(description),
				"gender":      "MAN",
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var listing listingRequest
			err := DecodeAndValidate(req, &listing)

			if length >= 1 && length <= 300 {
				return err == nil // Should pass
			}
			return err != nil // Empty or over the limit should fail
		},
		gen.IntRange(0, 400),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
