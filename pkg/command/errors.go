package command

import (
	"errors"

	"github.com/itsatony/go-cuserr"
)

// ErrCodeTemplate categorizes template formatting failures.
const ErrCodeTemplate = "CFB_TEMPLATE"

// MetaKeyTemplate is the metadata key holding the offending template.
const MetaKeyTemplate = "template"

// ErrTemplate is returned when a command template cannot be formatted.
var ErrTemplate = errors.New("invalid command template")

func newTemplateError(template, reason string) error {
	return cuserr.WrapStdError(ErrTemplate, ErrCodeTemplate, "invalid format string `"+template+"`: "+reason).
		WithMetadata(MetaKeyTemplate, template)
}
