package store

import (
	"errors"

	"github.com/gardenhub/backend/internal/apperr"
)

// AppErr converts store sentinels into API errors. what names the entity for the message
// ("garden", "event"). Other errors pass through unchanged.
func AppErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperr.Missing(what + " not found")
	case errors.Is(err, ErrConflict):
		return apperr.Wrap(apperr.Conflict, what+" already exists", err)
	case errors.Is(err, ErrUnknownField):
		return apperr.Wrap(apperr.Unexpected, "unsupported "+what+" field", err)
	}
	return err
}
