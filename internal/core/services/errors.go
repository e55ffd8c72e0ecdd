package services

import "errors"

// User errors
var (
	ErrUserNotFound     = errors.New("user: not found")
	ErrUserInvalidInput = errors.New("user: invalid input")
)

// Export errors
var (
	ErrExportInvalidFormat = errors.New("export: invalid format")
)

// Import errors
var (
	ErrImportInvalidFile    = errors.New("import: invalid file")
	ErrImportEmptyFile      = errors.New("import: file contains no records")
	ErrImportUnsupported    = errors.New("import: unsupported file type")
	ErrImportFileUnreadable = errors.New("import: file unreadable")
)
