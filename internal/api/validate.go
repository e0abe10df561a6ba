package api

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/validation"
)

// localeFromRequest resolves spec.md §7's response locale from the
// Accept-Language header, grounded on
// original_source/backend/app/validation/messages.py's three supported
// locales. Defaults to en_US for anything unrecognized or absent.
func localeFromRequest(c echo.Context) validation.Locale {
	header := strings.ToLower(c.Request().Header.Get("Accept-Language"))
	switch {
	case strings.HasPrefix(header, "es"):
		return validation.LocaleEsES
	case strings.HasPrefix(header, "fr"):
		return validation.LocaleFrFR
	default:
		return validation.LocaleEnUS
	}
}

// requiredField names one request field and whether it was left empty.
type requiredField struct {
	name  string
	empty bool
}

// required collects a validation.RuleRequired FieldError, in the
// request's locale, for each field reported empty, preserving the order
// the caller listed them in.
func required(c echo.Context, fields ...requiredField) []validation.FieldError {
	locale := localeFromRequest(c)
	var errs []validation.FieldError
	for _, f := range fields {
		if f.empty {
			errs = append(errs, validation.NewFieldError(locale, validation.RuleRequired, f.name, nil))
		}
	}
	return errs
}

func isZeroTime(t time.Time) bool {
	return t.IsZero()
}
