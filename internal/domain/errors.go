package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrConfig indicates missing or invalid configuration
	ErrConfig = errors.New("invalid configuration")

	// ErrConfigCreated indicates a default config file was written and must be edited first
	ErrConfigCreated = errors.New("config file created, edit it with your Plex credentials")

	// ErrServerOffline indicates the media server is unreachable
	ErrServerOffline = errors.New("media server is unreachable")

	// ErrAuthFailed indicates authentication failed
	ErrAuthFailed = errors.New("authentication token is invalid")

	// ErrServerNotFound indicates no server resource matched the configured name
	ErrServerNotFound = errors.New("media server not found for account")

	// ErrLibraryNotFound indicates the requested library does not exist
	ErrLibraryNotFound = errors.New("library not found")
)
