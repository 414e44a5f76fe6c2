package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	var testCases = []struct {
		description string
		env         map[string]string
		input       string
		expect      string
	}{
		{
			description: "no expressions",
			input:       "maxPayload: 40",
			expect:      "maxPayload: 40",
		},
		{
			description: "single expression",
			env:         map[string]string{"PAYLOAD": "64"},
			input:       "maxPayload: ${env.PAYLOAD}",
			expect:      "maxPayload: 64",
		},
		{
			description: "multiple expressions",
			env:         map[string]string{"A": "1", "B": "2"},
			input:       "${env.A}-${env.B}-${env.A}",
			expect:      "1-2-1",
		},
		{
			description: "unset variable becomes empty",
			input:       "unset=${env.NOTSET}-end",
			expect:      "unset=-end",
		},
		{
			description: "malformed missing closing brace",
			env:         map[string]string{"X": "x"},
			input:       "start ${env.X and ${env.Y} end",
			expect:      "start ${env.X and  end",
		},
		{
			description: "unterminated",
			input:       "tail ${env.X",
			expect:      "tail ${env.X",
		},
		{
			description: "prefix only no key",
			input:       "oops ${env.} done",
			expect:      "oops  done",
		},
	}

	for _, testCase := range testCases {
		lookup := func(key string) string { return testCase.env[key] }
		assert.Equal(t, testCase.expect, ExpandEnv(testCase.input, lookup), testCase.description)
	}
}
