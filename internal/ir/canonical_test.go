package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", IRString("hello"), `"hello"`},
		{"null", IRNull{}, "null"},
		{"int", IRNumber("42"), "42"},
		{"trailing zero", IRNumber("2.50"), "2.5"},
		{"integral float", IRNumber("2.0"), "2"},
		{"negative zero", IRNumber("-0"), "0"},
		{"large", IRNumber("1e21"), "1e+21"},
		{"large plain", IRNumber("1e20"), "100000000000000000000"},
		{"small plain", IRNumber("0.000001"), "0.000001"},
		{"small exp", IRNumber("1e-7"), "1e-7"},
		{"bool", IRBool(false), "false"},
		{"array", IRArray{IRNumber("1"), IRNull{}}, "[1,null]"},
		{"object", IRObject{"b": IRNumber("1"), "a": IRString("x")}, `{"a":"x","b":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalStrings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no html escaping", "<a&b>", `"<a&b>"`},
		{"line separator literal", "a\u2028b", "\"a\u2028b\""},
		{"control char", "a\x01b", `"a\u0001b"`},
		{"short escapes", "a\n\t\"\\", `"a\n\t\"\\"`},
		{"nfc", "e\u0301", "\"\u00e9\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(IRString(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalRejectsUnknownTypes(t *testing.T) {
	_, err := MarshalCanonical(3.5)
	assert.Error(t, err)
	_, err = MarshalCanonical(IRNumber("x"))
	assert.Error(t, err)
}

func TestDocumentHash(t *testing.T) {
	mk := func(num string) Document {
		wait := NewNode("Wait").SetShadow("SECONDS", NewNode("Number").SetField("NUM", IRNumber(num)))
		return NewDocument([]*Node{NewNode("ruleBlock").SetBlock("ACTIONS", wait)})
	}

	h1, err := DocumentHash(mk("2.5"))
	require.NoError(t, err)
	h2, err := DocumentHash(mk("2.50"))
	require.NoError(t, err)
	h3, err := DocumentHash(mk("3"))
	require.NoError(t, err)

	assert.Len(t, h1, 64)
	assert.Equal(t, h1, h2, "equal numbers hash equal")
	assert.NotEqual(t, h1, h3)
}

func TestBuildIDSeparatesDomains(t *testing.T) {
	script := ScriptHash("x")
	id, err := BuildID("doc", script, ToolVersion)
	require.NoError(t, err)
	other, err := BuildID("doc", script, "9.9.9")
	require.NoError(t, err)

	assert.NotEqual(t, id, other)
	assert.NotEqual(t, ScriptHash("x"), hashWithDomain(DomainDocument, []byte("x")))
}
