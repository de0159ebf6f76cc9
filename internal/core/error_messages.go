package core

// error_messages.go maps technical errors to messages a vendor can act on.
//
// Codes are grouped by category so support staff can tell at a glance where
// a failure came from:
//
//	DB001-DB007   database constraints and connectivity
//	VAL001-VAL005 row and request validation
//	FILE001-FILE004 uploaded file handling
//	IMP001-IMP004 import, export and batch operations
//	PRD001        product lookups
//	RATE001       request throttling
//	AUTH001       API key checks
//	ERR000        anything else; check the logs for the original error
//
// Sentinel errors are matched first with errors.Is. Everything else falls
// through to a case-insensitive substring table where the first match wins,
// so specific patterns must precede general ones.

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnauthorized is returned when a request carries no valid API key.
var ErrUnauthorized = errors.New("invalid or missing api key")

// ErrRateLimited is returned when a client exceeds its request budget.
var ErrRateLimited = errors.New("rate limit exceeded")

// ErrFileTooLarge is returned when an upload exceeds the configured size.
var ErrFileTooLarge = errors.New("file too large")

// ErrNoFile is returned when an import request carries no CSV body.
var ErrNoFile = errors.New("no file provided")

// ErrBadRequest is returned when a JSON request body cannot be decoded.
var ErrBadRequest = errors.New("invalid request body")

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type sentinelMessage struct {
	target error
	msg    UserMessage
}

var sentinelMessages = []sentinelMessage{
	{ErrStoreUnavailable, UserMessage{"Product database is not available", "Please try again in a few moments", "DB004"}},
	{ErrTooManyImports, UserMessage{"System is busy processing other imports", "Please wait a moment and try again", "IMP002"}},
	{ErrNotFound, UserMessage{"Product not found", "Check the product id belongs to this vendor", "PRD001"}},
	{ErrUnauthorized, UserMessage{"Missing or invalid API key", "Send a valid key in the X-API-Key header", "AUTH001"}},
	{ErrRateLimited, UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
	{ErrFileTooLarge, UserMessage{"File exceeds the maximum upload size", "Split the file into smaller chunks", "FILE001"}},
	{ErrNoFile, UserMessage{"No CSV file was provided", "Attach a CSV file or send CSV text as the request body", "FILE004"}},
	{ErrVendorRequired, UserMessage{"Vendor id is required", "Include the vendor id in the request path", "IMP001"}},
	{ErrBadRequest, UserMessage{"Request body is not valid JSON", "Check the request body against the API documentation", "VAL005"}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Database constraints
	{"duplicate key", UserMessage{"A product with this key already exists", "Check for duplicate names in your CSV", "DB001"}},
	{"unique constraint", UserMessage{"This value must be unique but already exists", "Check for duplicate entries in your CSV", "DB002"}},
	{"violates check", UserMessage{"A value was outside the allowed range", "Check prices are not negative", "DB003"}},

	// Connectivity
	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB004"}},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB005"}},
	{"deadlock", UserMessage{"Database was busy with conflicting operations", "Please try again", "DB007"}},
	{"database is locked", UserMessage{"Database was busy with conflicting operations", "Please try again", "DB007"}},

	// Validation
	{"name is required", UserMessage{"Product name is empty", "Give every row a name", "VAL001"}},
	{"invalid price", UserMessage{"Invalid price format detected", "Use a plain number such as 5000 or 1,250.50", "VAL002"}},
	{"price cannot be negative", UserMessage{"Price cannot be negative", "Correct the price and import again", "VAL003"}},
	{"invalid percent", UserMessage{"Percent change is not a number", "Send percent as a number such as 10 or -5", "VAL004"}},

	// Files
	{"csv parse error", UserMessage{"File is not a valid CSV", "Check that quoted cells are closed", "FILE002"}},
	{"encoding error", UserMessage{"File contains invalid characters", "Save file as UTF-8 encoding", "FILE003"}},

	// Requests
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "IMP003"}},
	{"context deadline exceeded", UserMessage{"Request timed out", "Try a smaller file or try again later", "IMP004"}},
	{"timeout", UserMessage{"Operation timed out", "Try a smaller file or try again later", "DB006"}},
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the zero UserMessage for a nil error.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
