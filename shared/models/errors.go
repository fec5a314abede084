package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/Store Errors
	ErrChoiceNotFound   = errors.New("choice not found")
	ErrStoreUnavailable = errors.New("choice store is not available")
	ErrCorruptKeyIndex  = errors.New("choice key index is corrupt")

	// Codec Errors
	ErrDecodeFailed = errors.New("token could not be decoded to a number")

	// Submission Errors
	ErrEmptyDescriptionOrWeight = errors.New("description and weight are required")
	ErrInvalidChapter           = errors.New("chapter is out of range")

	// Reveal Errors
	ErrProofRejected = errors.New("proof of possession rejected")

	// Identity & Token Errors
	ErrUnauthorized   = errors.New("unauthorized") // Authentication required or failed
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// General Request Errors
	ErrInvalidInput = errors.New("invalid input data")
)
