package config

import (
	"errors"

	"github.com/itsatony/go-cuserr"
)

// Error codes for configuration failures.
const (
	ErrCodeParse = "CFB_CONFIG_PARSE"
	ErrCodeIO    = "CFB_CONFIG_IO"
)

// Metadata keys attached to configuration errors.
const (
	MetaKeyPath   = "path"
	MetaKeyReason = "reason"
)

var (
	// ErrParse is returned when a cfb.toml file is malformed.
	ErrParse = errors.New("malformed config file")

	// ErrIO is returned when a config file or directory cannot be read.
	ErrIO = errors.New("config file unreadable")
)

func newParseError(path, reason string) error {
	return cuserr.WrapStdError(ErrParse, ErrCodeParse, "failed to parse config file: "+path+": "+reason).
		WithMetadata(MetaKeyPath, path).
		WithMetadata(MetaKeyReason, reason)
}

func newIOError(path string, cause error) error {
	return cuserr.WrapStdError(errors.Join(ErrIO, cause), ErrCodeIO, "failed to read config file: "+path+": "+cause.Error()).
		WithMetadata(MetaKeyPath, path)
}
