package ir

// Version constants for the document model and the tool.
const (
	// LanguageVersion is written into documents this tool creates.
	LanguageVersion = 0

	// ToolVersion is the blockc version recorded with every build.
	ToolVersion = "0.1.0"
)
