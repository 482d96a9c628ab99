// Package core provides the dataset ingestion, validation and caching logic.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When a client receives an error, the code can be quoted to an operator for
// faster diagnosis.
//
// # File Errors (FILE001-FILE099)
//
// Errors related to locating and reading the dataset file:
//
//	FILE001 - Dataset not found: The dataset file does not exist
//	          Action: Check DATASET_PATH and that the file was published
//	          Patterns: "dataset not found"
//
//	FILE002 - Unsupported format: The dataset is not .xlsx or .csv
//	          Action: Save the dataset as .xlsx or .csv
//	          Patterns: "unsupported dataset format"
//
//	FILE003 - Invalid file: The dataset could not be parsed
//	          Action: Re-export the spreadsheet and try again
//	          Patterns: "invalid csv", "invalid spreadsheet"
//
//	FILE004 - Empty file: The dataset has no header row
//	          Action: Add the header row and at least one data row
//	          Patterns: "empty file"
//
//	FILE005 - Read failure: The dataset could not be read
//	          Action: Check file permissions and try again
//	          Patterns: "read dataset"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Missing columns: Required columns are missing from the header
//	VAL002 - Invalid number: A numeric cell could not be parsed
//	VAL003 - Invalid status: Status is not available or sold
//	VAL004 - Empty identifier: The identifier cell only holds spaces
//	VAL005 - Duplicate identifier: The identifier appears more than once
//	VAL006 - Missing status: The status cell is empty
//
// # Record Errors (REC001-REC099)
//
//	REC001 - Record not found: No record has the requested identifier
//
// # Request Errors (REQ001-REQ099, AUTH001, RATE001)
//
//	REQ001 - Request cancelled
//	REQ002 - Request timed out
//	AUTH001 - Missing or invalid API key
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check the server logs for the
// original technical error.
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns are defined
// before general ones ("invalid csv" before "read dataset").
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE005)
	// =========================================================================
	{
		pattern: "dataset not found",
		msg: UserMessage{
			Message: "The dataset file does not exist",
			Action:  "Check DATASET_PATH and that the file was published",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported dataset format",
		msg: UserMessage{
			Message: "The dataset must be a .xlsx or .csv file",
			Action:  "Save the dataset as .xlsx or .csv",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The dataset is not a valid CSV file",
			Action:  "Ensure the file is comma-separated and re-export it",
			Code:    "FILE003",
		},
	},
	{
		pattern: "invalid spreadsheet",
		msg: UserMessage{
			Message: "The dataset is not a valid spreadsheet",
			Action:  "Re-save the workbook as .xlsx and try again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The dataset is empty",
			Action:  "Add the header row and at least one data row",
			Code:    "FILE004",
		},
	},
	{
		pattern: "read dataset",
		msg: UserMessage{
			Message: "The dataset could not be read",
			Action:  "Check file permissions and try again",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Validation Errors (VAL001-VAL006)
	// =========================================================================
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "Required columns are missing from the dataset",
			Action:  "Check that every required column is present in the header",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid numeric field",
		msg: UserMessage{
			Message: "A numeric value could not be read",
			Action:  "Use plain numbers for credit, installments and down payment",
			Code:    "VAL002",
		},
	},
	{
		pattern: "invalid status",
		msg: UserMessage{
			Message: "Status must be available or sold",
			Action:  "Fix the status value in the dataset",
			Code:    "VAL003",
		},
	},
	{
		pattern: "empty identifier",
		msg: UserMessage{
			Message: "The identifier is blank",
			Action:  "Give every row a unique identifier",
			Code:    "VAL004",
		},
	},
	{
		pattern: "duplicate identifier",
		msg: UserMessage{
			Message: "The identifier appears more than once",
			Action:  "Give every row a unique identifier",
			Code:    "VAL005",
		},
	},
	{
		pattern: "missing status",
		msg: UserMessage{
			Message: "The status is empty",
			Action:  "Set the status to available or sold",
			Code:    "VAL006",
		},
	},

	// =========================================================================
	// Record Errors (REC001)
	// =========================================================================
	{
		pattern: "record not found",
		msg: UserMessage{
			Message: "No record has this identifier",
			Action:  "Check the identifier and try again",
			Code:    "REC001",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ002, AUTH001, RATE001)
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again in a few moments",
			Code:    "REQ002",
		},
	},
	{
		pattern: "api key",
		msg: UserMessage{
			Message: "Missing or invalid API key",
			Action:  "Send a valid key in the X-API-Key header",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or the ERR000 fallback.
//
// Example:
//
//	err := errors.New("record not found: A9")
//	msg := MapError(err)
//	// msg.Code == "REC001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
