package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrGenerationInProgress = errors.New("course generation is already in progress")
	ErrNothingExtracted     = errors.New("no pending document could be processed")
	ErrRefreshNotConfigured = errors.New("credential refresh is not configured")
	ErrNotionNotConfigured  = errors.New("notion integration is not configured")
)
