package builtin

import (
	"context"
	"fmt"
	"strings"

	"docent/internal/segment"
	"docent/internal/tool"
)

// SegmentDocumentTool exposes document segmentation to the agent.
type SegmentDocumentTool struct {
	segmenter *segment.Segmenter
}

// NewSegmentDocumentTool creates a segment_document tool
func NewSegmentDocumentTool(segmenter *segment.Segmenter) *SegmentDocumentTool {
	return &SegmentDocumentTool{segmenter: segmenter}
}

func (t *SegmentDocumentTool) Name() string {
	return "segment_document"
}

func (t *SegmentDocumentTool) Description() string {
	return `Tool: segment_document
Description: Analyze document structure and create a table of contents with sections
Usage:
<tool_call>
<name>segment_document</name>
<params>
<file_path>path/to/document.txt</file_path>
</params>
</tool_call>

Features:
- Caches results to avoid re-processing same documents
- Returns structured sections with line numbers
- Helps navigate large documents efficiently`
}

func (t *SegmentDocumentTool) Execute(ctx context.Context, params map[string]string) (*tool.Result, error) {
	filePath := params["file_path"]
	if filePath == "" {
		return &tool.Result{Success: false, Error: "file_path parameter is required"}, nil
	}

	doc, err := t.segmenter.Segment(ctx, filePath)
	if err != nil {
		return &tool.Result{Success: false, Error: fmt.Sprintf("Error segmenting document: %v", err)}, nil
	}

	var sb strings.Builder
	sb.WriteString("Document Structure Analysis:\n")
	sb.WriteString(strings.Repeat("=", 50))
	sb.WriteByte('\n')

	for i, sec := range doc.Sections {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, sec.Title)
		fmt.Fprintf(&sb, "   Lines: %d - %d\n", sec.StartIndex, sec.EndIndex)
	}

	sb.WriteString(strings.Repeat("=", 50))
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "Total sections identified: %d", len(doc.Sections))

	return &tool.Result{
		Success: true,
		Output:  sb.String(),
		Data:    map[string]any{"section_count": len(doc.Sections)},
	}, nil
}
