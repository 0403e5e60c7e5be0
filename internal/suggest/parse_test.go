package suggest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brd-tui/internal/brd"
)

func TestExtractLastJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"prose around", "Sure! Here it is:\n{\"a\":\"x\"}\nHope this helps.", `{"a":"x"}`},
		{"last of two", `{"a":1} and then {"b":2}`, `{"b":2}`},
		{"nested", `{"a":{"b":[1,2]}}`, `{"a":{"b":[1,2]}}`},
		{"brace in string", `{"a":"}{"}`, `{"a":"}{"}`},
		{"escaped quote", `{"a":"say \"hi\" }"}`, `{"a":"say \"hi\" }"}`},
		{"invalid then valid", `{"a":1} {broken}`, `{"a":1}`},
		{"array", `[{"a":1}]`, `[{"a":1}]`},
		{"none", "no json here", ""},
		{"quote in trailing prose", `{"a":1} and a stray " here`, `{"a":1}`},
		{"stray closer after", `{"a":1} :-}`, `{"a":1}`},
		{"valid inside unclosed", strings.Repeat(`{"a":[`, 5000) + `{"b":1}`, `{"b":1}`},
		{"only closers", strings.Repeat("}", 1<<20), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractLastJSON(tc.in))
		})
	}
}

func TestParseFieldsMapsKeysLoosely(t *testing.T) {
	text := "Here you go:\n" + `{
		"Screen Component": "Order List",
		"requirement_description": "Shows orders",
		"Priority (MoSCoW)": "must",
		"master_detail": "Sidebar",
		"unexpected": "ignored"
	}`
	got := parseFields(brd.KindUISpec, text)

	require.Len(t, got, len(brd.Schema(brd.KindUISpec)))
	assert.Equal(t, "Order List", got["screen_component"])
	assert.Equal(t, "Shows orders", got["requirement_description"])
	assert.Equal(t, "Must", got["priority"])
	assert.Equal(t, "", got["master_detail"], "values outside the enum are dropped")
	assert.Equal(t, "", got["requirement_id"])
	assert.NotContains(t, got, "unexpected")
}

func TestParseFieldsStringifiesValues(t *testing.T) {
	got := parseFields(brd.KindLLMPrompt, `{"prompt_id":"LLM-1","temperature":0.3,"input_variables":["order","customer"],"model_name":"Mistral"}`)
	assert.Equal(t, "0.3", got["temperature"])
	assert.Equal(t, "order, customer", got["input_variables"])
	assert.Equal(t, "mistral", got["model_name"])

	got = parseFields(brd.KindLLMPrompt, `{"prompt_id":"LLM-2","temperature":"NaN"}`)
	assert.Equal(t, "", got["temperature"], "non-finite floats are dropped")
	got = parseFields(brd.KindLLMPrompt, `{"temperature":"-Inf"}`)
	assert.Equal(t, "", got["temperature"])

	got = parseFields(brd.KindAgentConfig, `{"required":"yes","parameter_value":42}`)
	assert.Equal(t, "true", got["required"])
	assert.Equal(t, "42", got["parameter_value"])
}

func TestParseFieldsFallsBackToPrimaryText(t *testing.T) {
	text := "<think>internal reasoning {not json}</think>\nThe screen lists every open order."
	got := parseFields(brd.KindUISpec, text)
	assert.Equal(t, "The screen lists every open order.", got["requirement_description"])
	for name, v := range got {
		if name != "requirement_description" {
			assert.Empty(t, v, name)
		}
	}
}

func TestParseFieldsTakesFirstOfArray(t *testing.T) {
	got := parseFields(brd.KindTechStack, `[{"category":"Backend","technology_tool":"Go"},{"category":"DB"}]`)
	assert.Equal(t, "Backend", got["category"])
	assert.Equal(t, "Go", got["technology_tool"])
}

func TestPromptListsEveryField(t *testing.T) {
	for _, k := range brd.AllKinds {
		p := Prompt(k, "  order tracking  ")
		assert.Contains(t, p, "order tracking")
		assert.Contains(t, p, k.Label())
		for _, f := range brd.Schema(k) {
			assert.Contains(t, p, `"`+f.Name+`"`, "%s missing %s", k, f.Name)
		}
	}
	p := Prompt(brd.KindAPISpec, "orders")
	assert.True(t, strings.Contains(p, "GET, POST"), p)
}
