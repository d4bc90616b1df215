package intent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/wolfman30/clinic-chat-assistant/internal/textnorm"
)

var (
	dayFirstDate = regexp.MustCompile(`\b(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4}|\d{2})\b`)
	isoDate      = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	clockTime    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	phoneNumber  = regexp.MustCompile(`\+?\b\d{3,4}[\s-]?\d{4}\b(?:[\s-]?\d{4})?`)
	yearMention  = regexp.MustCompile(`\b(?:ano|anio|del|de|en|periodo)\s+(?:19|20)\d{2}\b`)
	moneyAmount  = regexp.MustCompile(`(?:\b(?:gtq|q)\s?|\$\s?)\d[\d.,]*|\b\d[\d.,]*\s*quetzal(?:es)?\b`)
	fourDigits   = regexp.MustCompile(`\b(\d{4})\b`)
)

// ExtractDate returns the first calendar date in text as YYYY-MM-DD.
// Day-first forms accept "/", "-" or "." separators; two-digit years are 20YY.
func ExtractDate(text string) (string, bool) {
	if m := isoDate.FindStringSubmatch(text); m != nil {
		if d, ok := buildDate(m[1], m[2], m[3]); ok {
			return d, true
		}
	}
	if m := dayFirstDate.FindStringSubmatch(text); m != nil {
		year := m[3]
		if len(year) == 2 {
			year = "20" + year
		}
		if d, ok := buildDate(year, m[2], m[1]); ok {
			return d, true
		}
	}
	return "", false
}

func buildDate(y, m, d string) (string, bool) {
	year, err1 := strconv.Atoi(y)
	month, err2 := strconv.Atoi(m)
	day, err3 := strconv.Atoi(d)
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// ExtractTime returns the first HH:MM time in text, zero padded.
func ExtractTime(text string) (string, bool) {
	for _, m := range clockTime.FindAllStringSubmatch(text, -1) {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		if h < 24 && min < 60 {
			return fmt.Sprintf("%02d:%02d", h, min), true
		}
	}
	return "", false
}

// ExtractCode returns the first standalone 4-digit run that is not part of
// a date, a time, a phone number, an amount of money or a year reference.
func ExtractCode(text string) (string, bool) {
	masked := textnorm.Normalize(text)
	for _, re := range []*regexp.Regexp{isoDate, dayFirstDate, clockTime, phoneNumber, moneyAmount, yearMention} {
		masked = re.ReplaceAllStringFunc(masked, func(s string) string {
			return strings.Repeat(" ", len(s))
		})
	}
	if m := fourDigits.FindStringSubmatch(masked); m != nil {
		return m[1], true
	}
	return "", false
}

var (
	doctorNamePattern  = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:doctora|doctor|dra\.?|dr\.?)\s+([\p{L}]+(?:\s+[\p{L}]+){0,2})`)
	patientNamePattern = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:a nombre de|paciente|me llamo|mi nombre es)\s+([\p{L}]+(?:\s+[\p{L}]+){0,3})`)
	selfIntroPattern   = regexp.MustCompile(`(?:^|[^\p{L}])[Ss]oy\s+([\p{Lu}][\p{L}]*(?:\s+[\p{Lu}][\p{L}]*){0,3})`)
)

// nameStopwords end a captured name.
var nameStopwords = map[string]struct{}{
	"y": {}, "e": {}, "con": {}, "para": {}, "que": {}, "tengo": {}, "tiene": {}, "quiero": {},
	"necesito": {}, "busco": {}, "mi": {}, "el": {}, "la": {}, "los": {}, "las": {}, "en": {},
	"a": {}, "al": {}, "por": {}, "cita": {}, "citas": {}, "consulta": {}, "hoy": {},
	"manana": {}, "es": {}, "esta": {}, "atiende": {}, "sobre": {}, "del": {}, "de": {},
	"olvide": {}, "no": {}, "se": {}, "recuerdo": {}, "numero": {}, "pero": {}, "tuve": {},
}

// Words that follow "doctor" without naming one.
var doctorNonNames = map[string]struct{}{
	"especialista": {}, "general": {}, "disponible": {}, "disponibles": {}, "hay": {},
	"atiende": {}, "para": {}, "de": {}, "que": {}, "en": {}, "con": {},
}

// ExtractDoctorName returns the name following doctor/doctora/dr./dra.
func ExtractDoctorName(text string) string {
	for _, m := range doctorNamePattern.FindAllStringSubmatch(text, -1) {
		words := strings.Fields(m[1])
		if len(words) == 0 {
			continue
		}
		first := textnorm.Normalize(words[0])
		if _, skip := doctorNonNames[first]; skip {
			continue
		}
		if ExtractSpecialty(first) != nil {
			continue
		}
		if name := trimName(words); name != "" {
			return name
		}
	}
	return ""
}

// ExtractPatientName returns a patient or self-introduced name.
func ExtractPatientName(text string) string {
	for _, m := range patientNamePattern.FindAllStringSubmatch(text, -1) {
		if name := trimName(strings.Fields(m[1])); name != "" {
			return name
		}
	}
	if m := selfIntroPattern.FindStringSubmatch(text); m != nil {
		return trimName(strings.Fields(m[1]))
	}
	return ""
}

func trimName(words []string) string {
	var kept []string
	for _, w := range words {
		if _, stop := nameStopwords[textnorm.Normalize(w)]; stop {
			break
		}
		kept = append(kept, titleCase(w))
	}
	return strings.Join(kept, " ")
}

func titleCase(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
}

var (
	windowToday    = regexp.MustCompile(`\bhoy\b`)
	windowUpcoming = regexp.MustCompile(`\b(proxima|proximas|futuras|siguientes|por venir)\b`)
	windowPast     = regexp.MustCompile(`\b(pasadas?|anteriores|historial)\b`)

	statusPending   = regexp.MustCompile(`\bpendientes?\b`)
	statusCompleted = regexp.MustCompile(`\b(completadas?|realizadas?|atendidas?)\b`)
	statusCancelled = regexp.MustCompile(`\bcanceladas?\b`)
)

// ExtractWindow returns the schedule window named in normalized text.
func ExtractWindow(norm string) Window {
	switch {
	case windowToday.MatchString(norm):
		return WindowToday
	case windowUpcoming.MatchString(norm):
		return WindowUpcoming
	case windowPast.MatchString(norm):
		return WindowPast
	}
	return ""
}

// ExtractStatus returns the appointment status named in normalized text.
func ExtractStatus(norm string) string {
	switch {
	case statusPending.MatchString(norm):
		return StatusPending
	case statusCompleted.MatchString(norm):
		return StatusCompleted
	case statusCancelled.MatchString(norm):
		return StatusCancelled
	}
	return ""
}
