package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Tool calls arrive embedded in free-form model text. Parsing cascades
// through strategies from strictest to loosest and never fails: when no
// strategy recovers a call, the response carries the raw text and a nil
// ToolCall so the caller can treat it as plain reasoning.
var fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// ParseResponse decodes one model completion into a Response.
func ParseResponse(text string) *Response {
	resp := &Response{Reasoning: text}
	for _, parse := range []func(string) *ToolCall{
		parseFencedBlock,
		parseInlineObject,
	} {
		if call := parse(text); call != nil {
			resp.ToolCall = call
			resp.IsDone = call.Name == DoneToolName
			return resp
		}
	}
	return resp
}

// parseFencedBlock extracts a tool call from the first ```json fenced block.
func parseFencedBlock(text string) *ToolCall {
	m := fencedJSONRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return decodeToolCall(m[1])
}

// parseInlineObject scans forward from a literal {"tool" marker and decodes
// the balanced JSON object starting there. Handles models that skip the
// fence but still emit the object.
func parseInlineObject(text string) *ToolCall {
	start := strings.Index(text, `{"tool"`)
	if start < 0 {
		return nil
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return decodeToolCall(text[start : i+1])
			}
		}
	}
	return nil
}

func decodeToolCall(raw string) *ToolCall {
	var call ToolCall
	if err := json.Unmarshal([]byte(raw), &call); err != nil {
		return nil
	}
	if call.Name == "" {
		return nil
	}
	if call.Arguments == nil {
		call.Arguments = map[string]any{}
	}
	return &call
}
