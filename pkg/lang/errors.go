package lang

import (
	"errors"

	"github.com/itsatony/go-cuserr"
)

// Error codes for language resolution failures.
const (
	ErrCodeMissingExtension = "CFB_MISSING_EXTENSION"
	ErrCodeUnknownLanguage  = "CFB_UNKNOWN_LANGUAGE"
	ErrCodeIO               = "CFB_WORKSPACE_IO"
)

// Metadata keys attached to language errors.
const (
	MetaKeySource    = "source"
	MetaKeyExtension = "extension"
	MetaKeyPath      = "path"
)

var (
	// ErrMissingExtension is returned for a source path without an extension.
	ErrMissingExtension = errors.New("source file has no extension")

	// ErrUnknownLanguage is returned when no configuration covers an extension.
	ErrUnknownLanguage = errors.New("no language config for extension")

	// ErrIO is returned when the workspace cannot be prepared or inspected.
	ErrIO = errors.New("workspace i/o failed")
)

func newMissingExtensionError(source string) error {
	return cuserr.WrapStdError(ErrMissingExtension, ErrCodeMissingExtension,
		"no extension on source file "+source).
		WithMetadata(MetaKeySource, source)
}

func newUnknownLanguageError(source, ext string) error {
	return cuserr.WrapStdError(ErrUnknownLanguage, ErrCodeUnknownLanguage,
		"no language config for extension "+ext).
		WithMetadata(MetaKeySource, source).
		WithMetadata(MetaKeyExtension, ext)
}

func newIOError(path string, cause error) error {
	return cuserr.WrapStdError(errors.Join(ErrIO, cause), ErrCodeIO, path+": "+cause.Error()).
		WithMetadata(MetaKeyPath, path)
}
