package skills

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatName(t *testing.T) {
	tests := []struct {
		identifier string
		expected   string
	}{
		{"ash", "Ash"},
		{"ex_doc", "Ex Doc"},
		{"phoenix_live_view", "Phoenix Live View"},
		{"usage_rules", "Usage Rules"},
		{"myXML_parser", "MyXML Parser"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatName(tt.identifier))
		})
	}
}

func TestFormat(t *testing.T) {
	output := Format("phoenix_live_view", "", "# LiveView Rules\n\nSome guidance.\n")

	expected := `---
name: phoenix_live_view
description: Guidance on working with Phoenix Live View
---

# LiveView Rules

Some guidance.
`
	assert.Equal(t, expected, output)
}

func TestFormat_DiscardsCallerDescription(t *testing.T) {
	output := Format("ash", "A declarative application framework", "content")

	assert.Contains(t, output, "description: Guidance on working with Ash\n")
	assert.NotContains(t, output, "declarative application framework")
}

func TestFormat_ContentPreserved(t *testing.T) {
	t.Run("verbatim body", func(t *testing.T) {
		content := "  leading spaces\n\n\ttabs\ntrailing newline missing"
		output := Format("ash", "", content)

		header := "---\nname: ash\ndescription: Guidance on working with Ash\n---\n\n"
		assert.True(t, strings.HasPrefix(output, header))
		assert.Equal(t, content, strings.TrimPrefix(output, header))
	})

	t.Run("empty content", func(t *testing.T) {
		output := Format("ash", "", "")
		assert.Equal(t, "---\nname: ash\ndescription: Guidance on working with Ash\n---\n\n", output)
	})
}
