package provider

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// defaultExtractMaxTokens bounds structured-extraction responses.
const defaultExtractMaxTokens = 2048

// DecodeStructured parses model output as JSON, tolerating markdown code
// fences and surrounding chatter, then validates it against the output
// schema. A structural mismatch is a provider error regardless of backend.
func DecodeStructured(content string, schemaRaw json.RawMessage) (json.RawMessage, error) {
	parsed, err := parseJSON(content)
	if err != nil {
		return nil, eris.Wrap(err, "provider: parse structured output")
	}
	if err := validateSchema(schemaRaw, parsed); err != nil {
		return nil, eris.Wrap(err, "provider: structured output does not match schema")
	}
	return parsed, nil
}

func parseJSON(content string) (json.RawMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, eris.New("empty response")
	}

	for _, candidate := range []string{content, stripCodeFences(content), extractJSONCandidate(content)} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		var parsed any
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			return json.RawMessage(candidate), nil
		}
	}

	return nil, eris.New("no valid JSON found in response")
}

func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return ""
	}
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func extractJSONCandidate(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

func validateSchema(schemaRaw, parsed json.RawMessage) error {
	if len(schemaRaw) == 0 {
		return nil
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(schemaRaw)); err != nil {
		return eris.Wrap(err, "load schema")
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return eris.Wrap(err, "compile schema")
	}

	var doc any
	if err := json.Unmarshal(parsed, &doc); err != nil {
		return eris.Wrap(err, "decode for validation")
	}

	return schema.Validate(doc)
}
