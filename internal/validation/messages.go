package validation

import (
	"fmt"
	"strings"
)

// Locale selects the language a FieldError's message is rendered in.
// Grounded on original_source/backend/app/validation/messages.py, which
// carries the same three locales.
type Locale string

const (
	LocaleEnUS Locale = "en_US"
	LocaleEsES Locale = "es_ES"
	LocaleFrFR Locale = "fr_FR"
)

// messageTemplates mirrors messages.py's ERROR_MESSAGES table: one format
// string per (locale, rule type), using Go's {field}-style placeholders
// rendered by RenderMessage.
var messageTemplates = map[Locale]map[RuleErrorType]string{
	LocaleEnUS: {
		RuleRequired:     "{field} is required",
		RuleStringLength: "{field} must be between {min_length} and {max_length} characters",
		RuleNumericRange: "{field} must be between {min_value} and {max_value}",
		RuleEnumValues:   "{field} must be one of: {allowed_values}",
		RuleRegexPattern: "{field} does not match required pattern",
		RuleEmailFormat:  "{field} must be a valid email address",
		RuleUUIDFormat:   "{field} must be a valid UUID",
		RuleDateRange:    "{field} must be between {min_date} and {max_date}",
	},
	LocaleEsES: {
		RuleRequired:     "{field} es requerido",
		RuleStringLength: "{field} debe tener entre {min_length} y {max_length} caracteres",
		RuleNumericRange: "{field} debe estar entre {min_value} y {max_value}",
		RuleEnumValues:   "{field} debe ser uno de: {allowed_values}",
		RuleRegexPattern: "{field} no coincide con el patrón requerido",
		RuleEmailFormat:  "{field} debe ser una dirección de correo válida",
		RuleUUIDFormat:   "{field} debe ser un UUID válido",
		RuleDateRange:    "{field} debe estar entre {min_date} y {max_date}",
	},
	LocaleFrFR: {
		RuleRequired:     "{field} est requis",
		RuleStringLength: "{field} doit contenir entre {min_length} et {max_length} caractères",
		RuleNumericRange: "{field} doit être entre {min_value} et {max_value}",
		RuleEnumValues:   "{field} doit être l'un de: {allowed_values}",
		RuleRegexPattern: "{field} ne correspond pas au modèle requis",
		RuleEmailFormat:  "{field} doit être une adresse e-mail valide",
		RuleUUIDFormat:   "{field} doit être un UUID valide",
		RuleDateRange:    "{field} doit être entre {min_date} et {max_date}",
	},
}

// RenderMessage formats a FieldError's human-readable message for the given
// locale, substituting {field} and any keys present in params. Falls back
// to en_US if the locale is unknown, and to the raw rule type if no
// template exists for it.
func RenderMessage(locale Locale, ruleType RuleErrorType, field string, params map[string]interface{}) string {
	templates, ok := messageTemplates[locale]
	if !ok {
		templates = messageTemplates[LocaleEnUS]
	}

	tmpl, ok := templates[ruleType]
	if !ok {
		return fmt.Sprintf("%s: validation failed for %s", ruleType, field)
	}

	out := strings.ReplaceAll(tmpl, "{field}", field)
	for k, v := range params {
		out = strings.ReplaceAll(out, "{"+k+"}", fmt.Sprintf("%v", v))
	}
	return out
}

// NewFieldError builds a FieldError with its message rendered for locale.
func NewFieldError(locale Locale, ruleType RuleErrorType, field string, params map[string]interface{}) FieldError {
	return FieldError{
		Type:    ruleType,
		Field:   field,
		Message: RenderMessage(locale, ruleType, field, params),
		Params:  params,
	}
}
