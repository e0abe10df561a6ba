package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationResultCreation(t *testing.T) {
	result := NewResult()

	assert.NotNil(t, result)
	assert.Empty(t, result.Messages)
	assert.True(t, result.IsValid())
	assert.True(t, result.CanImport())
	assert.True(t, result.CanPromote())
}

func TestAddError(t *testing.T) {
	result := NewResult()

	result.AddError(Code80HourRule, "resident exceeded 80 hour weekly average")

	assert.Len(t, result.Messages, 1)
	assert.False(t, result.IsValid())
	assert.False(t, result.CanImport())
	assert.False(t, result.CanPromote())
	assert.Equal(t, 1, result.ErrorCount())
}

func TestAddWarning(t *testing.T) {
	result := NewResult()

	result.AddWarning(CodeAbsenceOverlap, "assignment overlaps an absence")

	assert.Len(t, result.Messages, 1)
	assert.True(t, result.IsValid())
	assert.True(t, result.CanImport())
	assert.False(t, result.CanPromote())
	assert.Equal(t, 1, result.WarningCount())
}

func TestAddInfo(t *testing.T) {
	result := NewResult()

	result.AddInfo("INFO_CODE", "This is informational")

	assert.Len(t, result.Messages, 1)
	assert.True(t, result.IsValid())
	assert.True(t, result.CanImport())
	assert.True(t, result.CanPromote())
	assert.Equal(t, 1, result.InfoCount())
}

func TestMultipleMessages(t *testing.T) {
	result := NewResult()

	result.
		AddError(Code1In7Rule, "resident worked 8 consecutive duty days").
		AddWarning(CodeAbsenceOverlap, "assignment overlaps an absence").
		AddInfo("INFO_CODE", "processing completed with warnings")

	assert.Len(t, result.Messages, 3)
	assert.Equal(t, 1, result.ErrorCount())
	assert.Equal(t, 1, result.WarningCount())
	assert.Equal(t, 1, result.InfoCount())
	assert.False(t, result.IsValid())
	assert.False(t, result.CanImport())
	assert.False(t, result.CanPromote())
}

func TestMessagesByCode(t *testing.T) {
	result := NewResult()

	result.
		AddError(CodeSupervisionRatio, "deficit on block 1").
		AddError(CodeSupervisionRatio, "deficit on block 2")

	messages := result.MessagesByCode(CodeSupervisionRatio)

	assert.Len(t, messages, 2)
	for _, msg := range messages {
		assert.Equal(t, CodeSupervisionRatio, msg.Code)
	}
}

func TestMessagesBySeverity(t *testing.T) {
	result := NewResult()

	result.
		AddError(Code80HourRule, "error 1").
		AddError(Code80HourRule, "error 2").
		AddWarning(CodeAbsenceOverlap, "warning 1").
		AddInfo("CODE", "info 1")

	errors := result.MessagesBySeverity(SeverityError)
	warnings := result.MessagesBySeverity(SeverityWarning)
	infos := result.MessagesBySeverity(SeverityInfo)

	assert.Len(t, errors, 2)
	assert.Len(t, warnings, 1)
	assert.Len(t, infos, 1)
}

func TestHasErrorsAndWarnings(t *testing.T) {
	resultClean := NewResult()
	assert.False(t, resultClean.HasErrors())
	assert.False(t, resultClean.HasWarnings())

	resultWithError := NewResult().AddError("CODE", "Error")
	assert.True(t, resultWithError.HasErrors())
	assert.False(t, resultWithError.HasWarnings())

	resultWithWarning := NewResult().AddWarning("CODE", "Warning")
	assert.False(t, resultWithWarning.HasErrors())
	assert.True(t, resultWithWarning.HasWarnings())

	resultWithBoth := NewResult().
		AddError("ERR", "Error").
		AddWarning("WARN", "Warning")
	assert.True(t, resultWithBoth.HasErrors())
	assert.True(t, resultWithBoth.HasWarnings())
}

func TestWithContext(t *testing.T) {
	result := NewResult()

	context := map[string]interface{}{
		"rule_type": "80_hour_rule",
		"date":      "2025-01-06",
	}

	result.AddErrorWithContext(Code80HourRule, "80 hour rule violated", context)

	assert.Len(t, result.Messages, 1)
	msg := result.Messages[0]
	assert.Equal(t, context, msg.Context)
	assert.Equal(t, "80_hour_rule", msg.Context["rule_type"])
}

func TestToJSON(t *testing.T) {
	result := NewResult()

	result.
		AddError(Code80HourRule, "exceeded 80 hours").
		AddWarning(CodeAbsenceOverlap, "overlap detected")

	json, err := result.ToJSON()

	assert.NoError(t, err)
	assert.NotEmpty(t, json)
	assert.Contains(t, json, "80_HOUR_RULE")
	assert.Contains(t, json, "ABSENCE_OVERLAP")
	assert.Contains(t, json, "ERROR")
	assert.Contains(t, json, "WARNING")
}

func TestFromJSON(t *testing.T) {
	original := NewResult()
	original.
		AddError(Code80HourRule, "exceeded 80 hours").
		AddWarning(CodeAbsenceOverlap, "overlap detected")

	jsonStr, err := original.ToJSON()
	require.NoError(t, err)

	restored, err := FromJSON(jsonStr)
	require.NoError(t, err)

	assert.Len(t, restored.Messages, 2)
	assert.Equal(t, original.ErrorCount(), restored.ErrorCount())
	assert.Equal(t, original.WarningCount(), restored.WarningCount())
}

func TestSummary(t *testing.T) {
	result := NewResult()
	result.
		AddError(Code80HourRule, "exceeded 80 hours").
		AddWarning(CodeAbsenceOverlap, "overlap detected").
		AddInfo("INFO", "done")

	summary := result.Summary()

	assert.Contains(t, summary, "1 errors")
	assert.Contains(t, summary, "1 warnings")
	assert.Contains(t, summary, "1 info")
	assert.Contains(t, summary, "80_HOUR_RULE")
	assert.Contains(t, summary, "ABSENCE_OVERLAP")
}

func TestChaining(t *testing.T) {
	result := NewResult().
		AddError("CODE1", "Error 1").
		AddWarning("CODE2", "Warning 1").
		AddInfo("CODE3", "Info 1")

	assert.Len(t, result.Messages, 3)
	assert.Equal(t, 1, result.ErrorCount())
	assert.Equal(t, 1, result.WarningCount())
	assert.Equal(t, 1, result.InfoCount())
}

func TestRenderMessageLocales(t *testing.T) {
	fe := NewFieldError(LocaleEnUS, RuleRequired, "person_name", nil)
	assert.Equal(t, "person_name is required", fe.Message)

	fe = NewFieldError(LocaleEsES, RuleRequired, "person_name", nil)
	assert.Equal(t, "person_name es requerido", fe.Message)

	fe = NewFieldError(LocaleFrFR, RuleNumericRange, "pgy_level", map[string]interface{}{
		"min_value": 1, "max_value": 3,
	})
	assert.Equal(t, "pgy_level doit être entre 1 et 3", fe.Message)
}

func TestRenderMessageUnknownLocaleFallsBackToEnglish(t *testing.T) {
	fe := NewFieldError(Locale("de_DE"), RuleRequired, "email", nil)
	assert.Equal(t, "email is required", fe.Message)
}
