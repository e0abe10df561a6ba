// Package calendar renders a Person's Assignments as an RFC 5545
// iCalendar feed and resolves webcal subscription access (spec.md §6).
//
// No iCalendar library appears anywhere in the retrieval pack, so this
// builds the feed directly against stdlib time/strings/fmt: a fixed,
// small output template that a string builder is the direct fit for.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

// Exporter renders ICS feeds for a Person's assignments.
type Exporter struct {
	location *time.Location
}

// NewExporter builds an Exporter for the given IANA timezone name
// (spec.md §6 requires America/New_York).
func NewExporter(tzName string) (*Exporter, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", tzName, err)
	}
	return &Exporter{location: loc}, nil
}

// AssignmentEvent is the denormalized view the caller supplies per
// Assignment: the service layer joins Assignment+Block+RotationTemplate+
// Person before calling Render, since this package only renders.
type AssignmentEvent struct {
	Assignment *entity.Assignment
	Block      *entity.Block
	Rotation   *entity.RotationTemplate // nil if unassigned to a rotation
	PersonName string
}

// blockTimes returns the local start/end wall-clock time for a Block's
// half-day slot (spec.md §6: AM 08:00-12:00, PM 13:00-17:00).
func (e *Exporter) blockTimes(b *entity.Block) (start, end time.Time) {
	date := time.Date(b.Date.Year(), b.Date.Month(), b.Date.Day(), 0, 0, 0, 0, e.location)
	switch b.TimeOfDay {
	case entity.TimeOfDayAM:
		return date.Add(8 * time.Hour), date.Add(12 * time.Hour)
	default: // PM
		return date.Add(13 * time.Hour), date.Add(17 * time.Hour)
	}
}

// Render builds a complete VCALENDAR document for the given events.
func (e *Exporter) Render(calendarName string, events []AssignmentEvent) string {
	var b strings.Builder
	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, "PRODID:-//Scheduling and Resilience Core//ICS Export//EN")
	writeLine(&b, "CALSCALE:GREGORIAN")
	writeLine(&b, "X-WR-CALNAME:"+escapeText(calendarName))

	b.WriteString(vtimezoneNewYork())

	for _, ev := range events {
		writeEvent(&b, e, ev)
	}

	writeLine(&b, "END:VCALENDAR")
	return b.String()
}

func writeEvent(b *strings.Builder, e *Exporter, ev AssignmentEvent) {
	start, end := e.blockTimes(ev.Block)

	summary := ev.PersonName
	if ev.Rotation != nil {
		summary = fmt.Sprintf("%s — %s", ev.Rotation.Name, ev.PersonName)
	}

	writeLine(b, "BEGIN:VEVENT")
	writeLine(b, "UID:"+ev.Assignment.ID.String()+"@scheduling-core")
	writeLine(b, "DTSTAMP:"+formatUTC(entity.Now()))
	writeLine(b, "DTSTART;TZID=America/New_York:"+formatLocal(start))
	writeLine(b, "DTEND;TZID=America/New_York:"+formatLocal(end))
	writeLine(b, "SUMMARY:"+escapeText(summary))
	if ev.Rotation != nil && ev.Rotation.ClinicLocation != "" {
		writeLine(b, "LOCATION:"+escapeText(ev.Rotation.ClinicLocation))
	}
	writeLine(b, "DESCRIPTION:"+escapeText(describeAssignment(ev)))
	writeLine(b, "END:VEVENT")
}

func describeAssignment(ev AssignmentEvent) string {
	role := string(ev.Assignment.Role)
	if ev.Rotation != nil {
		return fmt.Sprintf("%s assignment on %s (%s)", role, ev.Rotation.Name, ev.Rotation.ActivityType)
	}
	return fmt.Sprintf("%s assignment", role)
}

// vtimezoneNewYork emits the fixed VTIMEZONE block spec.md §6 requires:
// TZID:America/New_York with EDT/EST daylight+standard subcomponents.
// The US DST rule (second Sunday in March / first Sunday in November,
// unchanged since 2007) is hardcoded as RRULE, matching how fixed
// VTIMEZONE blocks are conventionally authored rather than computed.
func vtimezoneNewYork() string {
	var b strings.Builder
	writeLine(&b, "BEGIN:VTIMEZONE")
	writeLine(&b, "TZID:America/New_York")
	writeLine(&b, "BEGIN:DAYLIGHT")
	writeLine(&b, "TZOFFSETFROM:-0500")
	writeLine(&b, "TZOFFSETTO:-0400")
	writeLine(&b, "TZNAME:EDT")
	writeLine(&b, "DTSTART:19700308T020000")
	writeLine(&b, "RRULE:FREQ=YEARLY;BYMONTH=3;BYDAY=2SU")
	writeLine(&b, "END:DAYLIGHT")
	writeLine(&b, "BEGIN:STANDARD")
	writeLine(&b, "TZOFFSETFROM:-0400")
	writeLine(&b, "TZOFFSETTO:-0500")
	writeLine(&b, "TZNAME:EST")
	writeLine(&b, "DTSTART:19701101T020000")
	writeLine(&b, "RRULE:FREQ=YEARLY;BYMONTH=11;BYDAY=1SU")
	writeLine(&b, "END:STANDARD")
	writeLine(&b, "END:VTIMEZONE")
	return b.String()
}

// writeLine appends an RFC 5545 content line terminated by CRLF, folding
// lines longer than 75 octets onto continuation lines per the spec.
func writeLine(b *strings.Builder, line string) {
	const maxLen = 75
	if len(line) <= maxLen {
		b.WriteString(line)
		b.WriteString("\r\n")
		return
	}
	b.WriteString(line[:maxLen])
	b.WriteString("\r\n")
	rest := line[maxLen:]
	for len(rest) > 0 {
		chunk := maxLen - 1 // leading space counts toward the 75 octets
		if chunk > len(rest) {
			chunk = len(rest)
		}
		b.WriteString(" ")
		b.WriteString(rest[:chunk])
		b.WriteString("\r\n")
		rest = rest[chunk:]
	}
}

func escapeText(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`;`, `\;`,
		`,`, `\,`,
		"\n", `\n`,
	)
	return r.Replace(s)
}

func formatUTC(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func formatLocal(t time.Time) string {
	return t.Format("20060102T150405")
}
