package intent

import (
	"regexp"

	"github.com/wolfman30/clinic-chat-assistant/internal/textnorm"
)

var (
	greetingPattern  = regexp.MustCompile(`^\W*(hola|buen(os|as) (dias|tardes|noches)|buenas|saludos|que tal|hey)\b`)
	emergencyPattern = regexp.MustCompile(`\b(emergencia|urgencia|urgente|no puedo respirar|dolor (fuerte )?(de|en el) pecho|desmay\w*|convulsi\w*|sangrado (abundante|fuerte)|infarto)\b`)
)

// IsGreeting reports whether text opens with a greeting.
func IsGreeting(text string) bool {
	return greetingPattern.MatchString(textnorm.Normalize(text))
}

// IsEmergency reports whether text describes an urgent situation.
func IsEmergency(text string) bool {
	return emergencyPattern.MatchString(textnorm.Normalize(text))
}
