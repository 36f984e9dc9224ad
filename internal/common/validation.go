package common

import (
	"regexp"
	"strings"
	"time"
)

var (
	gstinPattern   = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}$`)
	pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	emailPattern   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidateGSTIN validates GSTIN format
func ValidateGSTIN(gstin, fieldName string) error {
	if strings.TrimSpace(gstin) == "" {
		return nil // GSTIN is optional
	}

	// GSTIN format: 22AAAAA0000A1Z5 (15 characters)
	if len(gstin) != 15 {
		return FieldValidation(fieldName, "%s must be exactly 15 characters", fieldName)
	}
	if !gstinPattern.MatchString(gstin) {
		return FieldValidation(fieldName, "%s has invalid GSTIN format", fieldName)
	}
	return nil
}

// ValidatePincode accepts six digit Indian postal codes
func ValidatePincode(pincode, fieldName string) error {
	if !pincodePattern.MatchString(strings.TrimSpace(pincode)) {
		return FieldValidation(fieldName, "%s must be a 6 digit postal code", fieldName)
	}
	return nil
}

func ValidateEmail(email *string, fieldName string) error {
	if email == nil || strings.TrimSpace(*email) == "" {
		return nil
	}
	if !emailPattern.MatchString(*email) {
		return FieldValidation(fieldName, "%s is not a valid email address", fieldName)
	}
	return nil
}

// ValidateRequiredString validates required string fields
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return FieldValidation(fieldName, "%s is required", fieldName)
	}
	return nil
}

// ValidateOptionalString validates optional string fields
func ValidateOptionalString(value *string, fieldName string, maxLength int) error {
	if value != nil {
		if len(*value) > maxLength {
			return FieldValidation(fieldName, "%s cannot exceed %d characters", fieldName, maxLength)
		}
		*value = strings.TrimSpace(*value)
	}
	return nil
}

// ValidatePaginationParams validates pagination parameters
func ValidatePaginationParams(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = 50 // Default
	}
	if limit > 1000 {
		limit = 1000 // Maximum
	}

	if offset < 0 {
		offset = 0
	}
	if offset > 1000000 {
		return 0, 0, Validation("offset cannot exceed 1,000,000")
	}

	return limit, offset, nil
}

// ValidateDateRange validates date ranges to prevent abuse
func ValidateDateRange(startDate, endDate time.Time) error {
	if endDate.Before(startDate) {
		return Validation("end date cannot be before start date")
	}

	// Prevent querying unreasonably large date ranges
	duration := endDate.Sub(startDate)
	maxDuration := time.Hour * 24 * 365 * 10 // 10 years
	if duration > maxDuration {
		return Validation("date range cannot exceed 10 years")
	}

	return nil
}

// ValidateYear bounds report years to something a ledger can hold
func ValidateYear(year int) error {
	if year < 1900 || year > 9999 {
		return Validation("year %d is out of range", year)
	}
	return nil
}
