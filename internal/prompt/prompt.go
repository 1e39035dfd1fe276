package prompt

import (
	"strings"
)

// DefaultContextLines is the number of lines kept on each side of a matched line
// when the caller does not choose a value.
const DefaultContextLines = 5

const (
	noImportsPlaceholder = "No existing imports"
	noContextPlaceholder = "No relevant code context found"
)

// Request holds everything needed to assemble a code-generation prompt.
// FunctionName is optional; an empty string disables context extraction
// and the implementation guidance section.
type Request struct {
	SourceText      string
	TaskDescription string
	FunctionName    string
	ContextLines    int
	// Profile drives the header language and the guidance bullets.
	// A nil Profile uses DefaultProfile.
	Profile *Profile
}

// Extraction is what Extract pulls out of the source text.
type Extraction struct {
	Imports   []string `json:"imports"`
	Context   []string `json:"context"`
	MatchLine int      `json:"match_line"` // zero-based index of the last matching line, -1 when nothing matched
	LineCount int      `json:"line_count"`
}

// splitLines splits source text on line breaks. Empty input yields a single empty line.
func splitLines(sourceText string) []string {
	return strings.Split(strings.ReplaceAll(sourceText, "\r\n", "\n"), "\n")
}

func isImportLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "from ")
}

// Extract scans the source once, collecting import lines and the context window
// around the last line that mentions functionName (case-insensitive).
// The window is [i-contextLines, i+contextLines) clamped to the file; a negative
// contextLines is treated as zero.
func Extract(sourceText, functionName string, contextLines int) Extraction {
	if contextLines < 0 {
		contextLines = 0
	}

	lines := splitLines(sourceText)
	ex := Extraction{
		Imports:   []string{},
		Context:   []string{},
		MatchLine: -1,
		LineCount: len(lines),
	}

	needle := strings.ToLower(functionName)
	for i, line := range lines {
		if isImportLine(line) {
			ex.Imports = append(ex.Imports, line)
		}
		if functionName == "" || !strings.Contains(strings.ToLower(line), needle) {
			continue
		}

		// Each match replaces the previous window, so only the last one survives.
		start := max(0, i-contextLines)
		end := min(len(lines), i+contextLines)
		ex.Context = append([]string{}, lines[start:end]...)
		ex.MatchLine = i
	}

	return ex
}

// Build assembles the prompt for sourceText and taskDescription using the default profile.
// functionName may be empty.
func Build(sourceText, taskDescription, functionName string, contextLines int) string {
	return BuildWithOptions(Request{
		SourceText:      sourceText,
		TaskDescription: taskDescription,
		FunctionName:    functionName,
		ContextLines:    contextLines,
	})
}

// BuildWithOptions assembles the prompt described by req.
// It never fails; degenerate inputs produce placeholder sections.
func BuildWithOptions(req Request) string {
	return Render(req, Extract(req.SourceText, req.FunctionName, req.ContextLines))
}

// Render formats an already computed extraction into the final prompt.
func Render(req Request, ex Extraction) string {
	profile := req.Profile
	if profile == nil {
		profile = DefaultProfile()
	}

	parts := []string{
		profile.header(),
		"\n## Context",
		"Existing imports:",
		joinOr(ex.Imports, noImportsPlaceholder),
		"\nRelevant code context:",
		joinOr(ex.Context, noContextPlaceholder),
		"\n## Requirements",
		"Task description: " + req.TaskDescription,
	}

	if req.FunctionName != "" {
		parts = append(parts,
			"\nFunction name to implement: "+req.FunctionName,
			"\n"+profile.intro(),
		)
		for _, g := range profile.guidelines() {
			parts = append(parts, "- "+g)
		}
	}

	parts = append(parts,
		"\n## Generated Code",
		"Please provide the implementation below:",
	)

	return strings.Join(parts, "\n\n")
}

func joinOr(lines []string, placeholder string) string {
	if len(lines) == 0 {
		return placeholder
	}
	return strings.Join(lines, "\n")
}
