package topic

import "strings"

// Topic is one of the supported helpline categories. Unknown is a transient
// classification outcome and is never stored as an active topic.
type Topic string

const (
	MentalHealth     Topic = "mental health"
	DomesticViolence Topic = "domestic violence"
	CareerGuidance   Topic = "career guidance"
	EmergencyContact Topic = "emergency contact"
	Unknown          Topic = "unknown"
)

// Valid lists the four routable topics in menu order.
func Valid() []Topic {
	return []Topic{MentalHealth, DomesticViolence, CareerGuidance, EmergencyContact}
}

// IsValid reports whether t is one of the four routable topics.
func (t Topic) IsValid() bool {
	switch t {
	case MentalHealth, DomesticViolence, CareerGuidance, EmergencyContact:
		return true
	}
	return false
}

// Normalize maps a raw classifier result onto a Topic. The matching is
// intentionally loose: after an exact match it accepts substring matches and
// then any single word shared with a topic label, so common words like
// "health" can pull a result toward a topic. Callers that need stricter
// behavior must tighten the classifier prompt, not this function.
func Normalize(raw string) Topic {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return Unknown
	}

	for _, t := range Valid() {
		if normalized == string(t) {
			return t
		}
	}

	for _, t := range Valid() {
		if strings.Contains(normalized, string(t)) {
			return t
		}
		for _, word := range strings.Fields(string(t)) {
			if strings.Contains(normalized, word) {
				return t
			}
		}
	}

	if strings.Contains(normalized, "emergency") || strings.Contains(normalized, "urgent") {
		return EmergencyContact
	}

	return Unknown
}
