package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"docent/internal/tool"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolAdapter exposes an MCP server tool through the agent's tool
// interface, with the tool name namespaced by server.
type ToolAdapter struct {
	client         *Client
	mcpTool        *mcp.Tool
	namespacedName string // e.g. "filesystem_read_file"
}

// NewToolAdapter creates an adapter for an MCP tool
func NewToolAdapter(client *Client, mcpTool *mcp.Tool) *ToolAdapter {
	return &ToolAdapter{
		client:         client,
		mcpTool:        mcpTool,
		namespacedName: fmt.Sprintf("%s_%s", client.Name(), mcpTool.Name),
	}
}

// Name returns the namespaced tool name (server_tool)
func (a *ToolAdapter) Name() string {
	return a.namespacedName
}

// Description renders the MCP tool description plus a usage block
// built from the tool's input schema, so the model calls it the same
// way as the builtin tools.
func (a *ToolAdapter) Description() string {
	desc := a.mcpTool.Description
	if desc == "" {
		desc = fmt.Sprintf("MCP tool from %s server", a.client.Name())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Tool: %s\nDescription: %s\nUsage:\n<tool_call>\n<name>%s</name>\n<params>\n", a.namespacedName, desc, a.namespacedName)

	for _, prop := range a.schemaProperties() {
		fmt.Fprintf(&sb, "<%s>value</%s>\n", prop, prop)
	}

	sb.WriteString("</params>\n</tool_call>\n\n")
	fmt.Fprintf(&sb, "[MCP Server: %s]", a.client.Name())
	return sb.String()
}

// schemaProperties lists the input schema's parameter names, sorted
func (a *ToolAdapter) schemaProperties() []string {
	if a.mcpTool.InputSchema == nil {
		return nil
	}

	schemaBytes, err := json.Marshal(a.mcpTool.InputSchema)
	if err != nil {
		return nil
	}

	var schema struct {
		Properties map[string]any `json:"properties"`
	}
	if err := json.Unmarshal(schemaBytes, &schema); err != nil {
		return nil
	}

	props := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		props = append(props, name)
	}
	sort.Strings(props)
	return props
}

// Execute calls the MCP server to execute the tool. String parameters
// pass through unchanged; the remote server coerces types per its
// schema.
func (a *ToolAdapter) Execute(ctx context.Context, params map[string]string) (*tool.Result, error) {
	args := make(map[string]any, len(params))
	for k, v := range params {
		args[k] = v
	}

	result, err := a.client.CallTool(ctx, a.mcpTool.Name, args)
	if err != nil {
		return &tool.Result{
			Success: false,
			Error:   fmt.Sprintf("MCP tool execution failed: %v", err),
		}, nil
	}

	if result.IsError {
		return &tool.Result{
			Success: false,
			Error:   formatMCPError(result),
		}, nil
	}

	return &tool.Result{
		Success: true,
		Output:  formatMCPContent(result.Content),
		Data: map[string]any{
			"mcp_server": a.client.Name(),
			"mcp_tool":   a.mcpTool.Name,
		},
	}, nil
}

// formatMCPContent converts MCP content array to string
func formatMCPContent(content []mcp.Content) string {
	var parts []string

	for _, item := range content {
		switch c := item.(type) {
		case *mcp.TextContent:
			parts = append(parts, c.Text)

		case *mcp.ImageContent:
			parts = append(parts, fmt.Sprintf("[Image: %s]", c.MIMEType))

		case *mcp.AudioContent:
			parts = append(parts, fmt.Sprintf("[Audio: %s]", c.MIMEType))

		default:
			data, err := json.Marshal(item)
			if err != nil {
				parts = append(parts, fmt.Sprintf("[Unknown content type: %T]", item))
			} else {
				parts = append(parts, string(data))
			}
		}
	}

	return strings.Join(parts, "\n")
}

// formatMCPError extracts error message from MCP result
func formatMCPError(result *mcp.CallToolResult) string {
	if len(result.Content) > 0 {
		return formatMCPContent(result.Content)
	}
	return "MCP tool returned an error"
}
