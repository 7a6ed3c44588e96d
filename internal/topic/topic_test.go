package topic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeExactMatch(t *testing.T) {
	for _, valid := range Valid() {
		assert.Equal(t, valid, Normalize(string(valid)))
		assert.Equal(t, valid, Normalize("  "+strings.ToUpper(string(valid))+"  "))
	}
}

func TestNormalizePartialMatch(t *testing.T) {
	cases := map[string]Topic{
		"Mental Health issues":            MentalHealth,
		"the topic is domestic violence.": DomesticViolence,
		"career":                          CareerGuidance,
		"guidance needed":                 CareerGuidance,
		"health concerns":                 MentalHealth,
	}
	for raw, want := range cases {
		assert.Equal(t, want, Normalize(raw), "raw=%q", raw)
	}
}

func TestNormalizeEmergencyKeywords(t *testing.T) {
	assert.Equal(t, EmergencyContact, Normalize("please help, urgent!"))
	assert.Equal(t, EmergencyContact, Normalize("this is an EMERGENCY"))
}

func TestNormalizeUnknown(t *testing.T) {
	assert.Equal(t, Unknown, Normalize("I like cats"))
	assert.Equal(t, Unknown, Normalize(""))
	assert.Equal(t, Unknown, Normalize("   "))
}

func TestPersonaFallback(t *testing.T) {
	assert.Equal(t, personas[MentalHealth], Persona(Unknown))
	assert.Equal(t, personas[MentalHealth], Persona(Topic("weather")))
	for _, valid := range Valid() {
		assert.Equal(t, personas[valid], Persona(valid))
	}
}

func TestIsValid(t *testing.T) {
	for _, valid := range Valid() {
		assert.True(t, valid.IsValid())
	}
	assert.False(t, Unknown.IsValid())
	assert.False(t, Topic("").IsValid())
}
