package model

// ToolCall is an assistant-issued tool invocation extracted from content.
type ToolCall struct {
	ID    string
	Name  string
	Input string // raw JSON
}

// ToolResult is the user-side completion record for a tool call.
type ToolResult struct {
	ToolUseID string
	Content   string
	IsError   bool
}

// ExtractToolCalls returns the ordered tool invocations found in blocks.
func ExtractToolCalls(blocks []ContentBlock) []ToolCall {
	var calls []ToolCall
	for _, b := range blocks {
		if b.Type != BlockToolUse {
			continue
		}
		calls = append(calls, ToolCall{ID: b.ID, Name: b.Name, Input: b.Input})
	}
	return calls
}

// ExtractToolResults returns the ordered tool results found in blocks.
func ExtractToolResults(blocks []ContentBlock) []ToolResult {
	var results []ToolResult
	for _, b := range blocks {
		if b.Type != BlockToolResult {
			continue
		}
		results = append(results, ToolResult{
			ToolUseID: b.ToolUseID,
			Content:   b.Content,
			IsError:   b.IsError,
		})
	}
	return results
}
