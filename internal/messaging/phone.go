package messaging

import "strings"

// WhatsAppPrefix is the transport prefix on WhatsApp-channel addresses.
const WhatsAppPrefix = "whatsapp:"

// UserIDFromAddress derives the stable user identity from a transport
// address by stripping the channel prefix.
func UserIDFromAddress(address string) string {
	return strings.TrimPrefix(strings.TrimSpace(address), WhatsAppPrefix)
}

// NormalizeWhatsApp ensures the value carries the whatsapp: prefix and an
// E.164-shaped number.
func NormalizeWhatsApp(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	value = strings.TrimPrefix(value, WhatsAppPrefix)
	digits := sanitizePhone(value)
	if digits == "" {
		return ""
	}
	return WhatsAppPrefix + "+" + digits
}

func sanitizePhone(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
