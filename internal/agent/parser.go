package agent

import (
	"encoding/xml"
	"regexp"
	"strings"
)

// ToolCall is a single tool invocation extracted from a model response.
type ToolCall struct {
	Name   string
	Params map[string]string
}

var toolCallPattern = regexp.MustCompile(`(?s)<tool_call>.*?</tool_call>`)

type rawToolCall struct {
	XMLName xml.Name   `xml:"tool_call"`
	Name    string     `xml:"name"`
	Params  *rawParams `xml:"params"`
}

type rawParams struct {
	Fields []rawField `xml:",any"`
}

type rawField struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// ParseToolCall extracts the first <tool_call> block from a model
// response. Returns nil when the response contains no block, the block
// is not well-formed XML, or the tool name is empty. Parameter values
// are kept verbatim; an empty element yields an empty string.
func ParseToolCall(response string) *ToolCall {
	block := toolCallPattern.FindString(response)
	if block == "" {
		return nil
	}

	var raw rawToolCall
	if err := xml.Unmarshal([]byte(block), &raw); err != nil {
		return nil
	}

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return nil
	}

	call := &ToolCall{
		Name:   name,
		Params: make(map[string]string),
	}

	if raw.Params != nil {
		for _, field := range raw.Params.Fields {
			call.Params[field.XMLName.Local] = field.Value
		}
	}

	return call
}
