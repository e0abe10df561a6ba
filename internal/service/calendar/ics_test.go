package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

func TestRenderIncludesVTimezoneAndEvent(t *testing.T) {
	exp, err := NewExporter("America/New_York")
	require.NoError(t, err)

	block := &entity.Block{
		ID:        uuid.New(),
		Date:      time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC),
		TimeOfDay: entity.TimeOfDayAM,
	}
	rotation := &entity.RotationTemplate{
		Name:           "Trauma Call",
		ActivityType:   "trauma",
		ClinicLocation: "Main OR",
	}
	assignment := &entity.Assignment{
		ID:   uuid.New(),
		Role: entity.AssignmentRolePrimary,
	}

	out := exp.Render("Dr. Smith's Schedule", []AssignmentEvent{
		{Assignment: assignment, Block: block, Rotation: rotation, PersonName: "Dr. Smith"},
	})

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))
	assert.Contains(t, out, "TZID:America/New_York")
	assert.Contains(t, out, "TZNAME:EDT")
	assert.Contains(t, out, "TZNAME:EST")
	assert.Contains(t, out, "BEGIN:VEVENT")
	assert.Contains(t, out, "LOCATION:Main OR")
	assert.Contains(t, out, "DTSTART;TZID=America/New_York:20260720T080000")
	assert.Contains(t, out, "DTEND;TZID=America/New_York:20260720T120000")
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"))
}

func TestRenderPMBlockUsesAfternoonHours(t *testing.T) {
	exp, err := NewExporter("America/New_York")
	require.NoError(t, err)

	block := &entity.Block{
		Date:      time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		TimeOfDay: entity.TimeOfDayPM,
	}
	out := exp.Render("cal", []AssignmentEvent{
		{Assignment: &entity.Assignment{ID: uuid.New()}, Block: block, PersonName: "Dr. Lee"},
	})

	assert.Contains(t, out, "DTSTART;TZID=America/New_York:20260105T130000")
	assert.Contains(t, out, "DTEND;TZID=America/New_York:20260105T170000")
}

func TestRenderEscapesSpecialCharacters(t *testing.T) {
	exp, err := NewExporter("America/New_York")
	require.NoError(t, err)

	block := &entity.Block{Date: time.Now(), TimeOfDay: entity.TimeOfDayAM}
	out := exp.Render("cal, with; special\\chars", nil)
	_ = block

	assert.Contains(t, out, `cal\, with\; special\\chars`)
}

func TestNewExporterRejectsUnknownTimezone(t *testing.T) {
	_, err := NewExporter("Not/A/Real/Zone")
	assert.Error(t, err)
}

func TestWriteLineFoldsLongLines(t *testing.T) {
	var b strings.Builder
	writeLine(&b, "SUMMARY:"+strings.Repeat("x", 100))

	lines := strings.Split(b.String(), "\r\n")
	// First line plus one folded continuation, plus trailing empty from split.
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], " "))
}
