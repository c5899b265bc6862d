package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseXMLDirective(t *testing.T) {
	call, ok := ParseDirective(`<getPrice>{"service": "Repaint", "size": "M"}</getPrice>`)
	require.True(t, ok)
	assert.Equal(t, "getPrice", call.Name)
	assert.Equal(t, "Repaint", call.Args["service"])
	assert.Equal(t, "M", call.Args["size"])
}

func TestParseXMLDirectiveMismatchedTags(t *testing.T) {
	_, ok := ParseDirective(`<getPrice>{"service": "Repaint"}</checkSlot>`)
	assert.False(t, ok)
}

func TestParseToolCodeDirective(t *testing.T) {
	call, ok := ParseDirective(`tool_code print(getPrice(service="Repaint", size="M"))`)
	require.True(t, ok)
	assert.Equal(t, "getPrice", call.Name)
	assert.Equal(t, "Repaint", call.Args["service"])
	assert.Equal(t, "M", call.Args["size"])
}

func TestParseToolCodeDirectiveInFence(t *testing.T) {
	text := "Sebentar ya.\n```tool_code\nprint(checkAvailability(service=\"Coating Motor Doff\", date=\"2025-06-10\", time=\"10:00\"))\n```"
	call, ok := ParseDirective(text)
	require.True(t, ok)
	assert.Equal(t, "checkAvailability", call.Name)
	assert.Equal(t, "2025-06-10", call.Args["date"])
}

func TestParseToolCodeValueKinds(t *testing.T) {
	call, ok := ParseDirective(`tool_code print(bookAppointment(service="Ganti Oli", qty=2, urgent=true, note='pakai oli bawaan'))`)
	require.True(t, ok)
	assert.Equal(t, "Ganti Oli", call.Args["service"])
	assert.Equal(t, float64(2), call.Args["qty"])
	assert.Equal(t, true, call.Args["urgent"])
	assert.Equal(t, "pakai oli bawaan", call.Args["note"])
}

func TestParseToolCodeJSONFallback(t *testing.T) {
	call, ok := ParseDirective(`tool_code print(getPrice({"service": "Repaint", "size": "L"}))`)
	require.True(t, ok)
	assert.Equal(t, "Repaint", call.Args["service"])
	assert.Equal(t, "L", call.Args["size"])
}

func TestParseDirectiveNone(t *testing.T) {
	for _, text := range []string{
		"Harga repaint bodi halus mulai dari 450rb.",
		"print this out",
		"", // nothing at all
	} {
		_, ok := ParseDirective(text)
		assert.False(t, ok, "text %q", text)
	}
}

func TestSanitizeDirectives(t *testing.T) {
	cases := []struct {
		in       string
		contains string
	}{
		{`Tunggu sebentar <lookupThing>{"a": 1}</lookupThing> ya kak`, "Tunggu sebentar"},
		{"Sebentar.\n```tool_code\nprint(unknownTool(x=1))\n```", "Sebentar."},
		{`tool_code print(mysteryTool(a="b"))`, ""},
	}
	for _, tc := range cases {
		out := SanitizeDirectives(tc.in)
		assert.NotContains(t, out, "tool_code")
		assert.NotContains(t, out, "print(")
		assert.NotContains(t, out, "</")
		if tc.contains != "" {
			assert.Contains(t, out, tc.contains)
		} else {
			assert.Empty(t, out)
		}
	}
}
