package tool

import (
	"context"
	"strings"
)

// TextInput is the parameter shape shared by the built-in tools.
type TextInput struct {
	Input string `json:"input" description:"Text to process"`
}

// NewEchoTool returns a tool that echoes its input.
func NewEchoTool() *FunctionTool {
	return NewFunctionToolFromStruct("echo", "Return the input text unchanged", TextInput{},
		func(_ context.Context, args map[string]any) (any, error) {
			return args["input"], nil
		})
}

// NewAdminEchoTool returns an echo tool that requires the admin permission.
func NewAdminEchoTool() *FunctionTool {
	return NewFunctionToolFromStruct("admin_echo", "Echo the input text (requires admin permission)", TextInput{},
		func(_ context.Context, args map[string]any) (any, error) {
			return args["input"], nil
		})
}

// NewWordCountTool returns a tool that counts whitespace separated words.
func NewWordCountTool() *FunctionTool {
	return NewFunctionToolFromStruct("word_count", "Count the words in the input text", TextInput{},
		func(_ context.Context, args map[string]any) (any, error) {
			s, _ := args["input"].(string)
			return map[string]any{"words": len(strings.Fields(s))}, nil
		})
}

// NewFileProcessorTool returns a tool reporting line, word and byte counts of
// its input.
func NewFileProcessorTool() *FunctionTool {
	return NewFunctionToolFromStruct("file_processor", "Summarize the size of a text document", TextInput{},
		func(_ context.Context, args map[string]any) (any, error) {
			s, _ := args["input"].(string)
			lines := 0
			if s != "" {
				lines = strings.Count(s, "\n") + 1
			}
			return map[string]any{
				"lines": lines,
				"words": len(strings.Fields(s)),
				"bytes": len(s),
			}, nil
		})
}

// Builtins returns the built-in demo tools.
func Builtins() []Tool {
	return []Tool{NewEchoTool(), NewWordCountTool(), NewAdminEchoTool(), NewFileProcessorTool()}
}
