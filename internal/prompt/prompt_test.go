package prompt

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultBullets = []string{
	"- Include type hints",
	"- Add comprehensive docstring",
	"- Follow PEP 8 style guidelines",
	"- Include error handling where appropriate",
	"- Add comments for complex logic",
}

func TestBuild_FullPrompt(t *testing.T) {
	got := Build("import os\ndef foo():\n    pass", "add bar", "foo", 1)

	want := strings.Join([]string{
		"# Task: Generate code based on the following requirements",
		"\n## Context",
		"Existing imports:",
		"import os",
		"\nRelevant code context:",
		"import os\ndef foo():",
		"\n## Requirements",
		"Task description: add bar",
		"\nFunction name to implement: foo",
		"\nPlease implement this function following best practices:",
		"- Include type hints",
		"- Add comprehensive docstring",
		"- Follow PEP 8 style guidelines",
		"- Include error handling where appropriate",
		"- Add comments for complex logic",
		"\n## Generated Code",
		"Please provide the implementation below:",
	}, "\n\n")

	assert.Equal(t, want, got)
	assert.Contains(t, got, "Existing imports:\n\nimport os")
	assert.Contains(t, got, "Function name to implement: foo")
}

func TestBuild_EmptySourceNoFunction(t *testing.T) {
	got := Build("", "x", "", DefaultContextLines)

	assert.Contains(t, got, "Task description: x")
	assert.Contains(t, got, "No existing imports")
	assert.Contains(t, got, "No relevant code context found")
	assert.NotContains(t, got, "Function name to implement")
	for _, bullet := range defaultBullets {
		assert.NotContains(t, got, bullet)
	}
}

func TestBuild_FunctionWithoutMatch(t *testing.T) {
	got := Build("x = 1\ny = 2", "make baz", "baz", 2)

	assert.Contains(t, got, "No relevant code context found")
	assert.Contains(t, got, "Function name to implement: baz")
	assert.Contains(t, got, "- Include type hints")
}

func TestBuild_TaskDescriptionVerbatim(t *testing.T) {
	tasks := []string{"", "add bar", "multi\nline task", "  padded  ", "unicode: ünïcødé"}
	for _, task := range tasks {
		got := Build("import os", task, "", 3)
		assert.Contains(t, got, "Task description: "+task)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	src := "import os\nfrom sys import argv\ndef main():\n    run()\n"
	first := Build(src, "wire main", "main", 2)
	second := Build(src, "wire main", "main", 2)
	assert.Equal(t, first, second)
}

func TestBuild_ConcurrentCallers(t *testing.T) {
	src := "import os\ndef foo():\n    pass"
	want := Build(src, "task", "foo", 1)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Build(src, "task", "foo", 1)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, want, r)
	}
}

func TestExtract(t *testing.T) {
	testCases := []struct {
		name          string
		source        string
		function      string
		contextLines  int
		wantImports   []string
		wantContext   []string
		wantMatchLine int
		wantLineCount int
	}{
		{
			name:          "Empty_Source",
			source:        "",
			function:      "foo",
			contextLines:  5,
			wantImports:   []string{},
			wantContext:   []string{},
			wantMatchLine: -1,
			wantLineCount: 1,
		},
		{
			name:          "Imports_In_Order",
			source:        "import os\nx = 1\nfrom typing import List\nimport sys",
			function:      "",
			contextLines:  5,
			wantImports:   []string{"import os", "from typing import List", "import sys"},
			wantContext:   []string{},
			wantMatchLine: -1,
			wantLineCount: 4,
		},
		{
			name:          "Indented_Import_Kept_Verbatim",
			source:        "def f():\n    import json\n\tfrom re import sub",
			function:      "",
			contextLines:  5,
			wantImports:   []string{"    import json", "\tfrom re import sub"},
			wantContext:   []string{},
			wantMatchLine: -1,
			wantLineCount: 3,
		},
		{
			name:          "Import_Prefix_Needs_Space",
			source:        "important = 1\nfromage = 2\nimports = []",
			function:      "",
			contextLines:  5,
			wantImports:   []string{},
			wantContext:   []string{},
			wantMatchLine: -1,
			wantLineCount: 3,
		},
		{
			name:          "Single_Match_Window",
			source:        "l0\nl1\nl2\nl3 target\nl4\nl5\nl6",
			function:      "target",
			contextLines:  2,
			wantImports:   []string{},
			wantContext:   []string{"l1", "l2", "l3 target", "l4"},
			wantMatchLine: 3,
			wantLineCount: 7,
		},
		{
			name:          "Window_Clamped_At_Start",
			source:        "def foo():\n    pass\nx\ny",
			function:      "foo",
			contextLines:  3,
			wantImports:   []string{},
			wantContext:   []string{"def foo():", "    pass", "x"},
			wantMatchLine: 0,
			wantLineCount: 4,
		},
		{
			name:          "Window_Clamped_At_End",
			source:        "a\nb\nfoo()",
			function:      "foo",
			contextLines:  5,
			wantImports:   []string{},
			wantContext:   []string{"a", "b", "foo()"},
			wantMatchLine: 2,
			wantLineCount: 3,
		},
		{
			name:          "Last_Match_Wins_Case_Insensitive",
			source:        "a foo\nb\nc\nd FOO\ne",
			function:      "Foo",
			contextLines:  1,
			wantImports:   []string{},
			wantContext:   []string{"c", "d FOO"},
			wantMatchLine: 3,
			wantLineCount: 5,
		},
		{
			name:          "Duplicate_Lines_Use_Own_Index",
			source:        "call()\nx\ny\nz\ncall()\nw",
			function:      "call",
			contextLines:  1,
			wantImports:   []string{},
			wantContext:   []string{"z", "call()"},
			wantMatchLine: 4,
			wantLineCount: 6,
		},
		{
			name:          "Zero_Context_Lines",
			source:        "a\nfoo\nb",
			function:      "foo",
			contextLines:  0,
			wantImports:   []string{},
			wantContext:   []string{},
			wantMatchLine: 1,
			wantLineCount: 3,
		},
		{
			name:          "Negative_Context_Lines_Clamped",
			source:        "a\nfoo\nb",
			function:      "foo",
			contextLines:  -4,
			wantImports:   []string{},
			wantContext:   []string{},
			wantMatchLine: 1,
			wantLineCount: 3,
		},
		{
			name:          "CRLF_Line_Endings",
			source:        "import os\r\ndef foo():\r\n    pass",
			function:      "foo",
			contextLines:  1,
			wantImports:   []string{"import os"},
			wantContext:   []string{"import os", "def foo():"},
			wantMatchLine: 1,
			wantLineCount: 3,
		},
		{
			name:          "Import_Line_Can_Match",
			source:        "from foo import bar\nx",
			function:      "foo",
			contextLines:  1,
			wantImports:   []string{"from foo import bar"},
			wantContext:   []string{"from foo import bar"},
			wantMatchLine: 0,
			wantLineCount: 2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ex := Extract(tc.source, tc.function, tc.contextLines)
			assert.Equal(t, tc.wantImports, ex.Imports)
			assert.Equal(t, tc.wantContext, ex.Context)
			assert.Equal(t, tc.wantMatchLine, ex.MatchLine)
			assert.Equal(t, tc.wantLineCount, ex.LineCount)
			assert.LessOrEqual(t, len(ex.Context), 2*max(tc.contextLines, 0))
		})
	}
}

func TestBuild_ContextSectionMatchesWindow(t *testing.T) {
	src := "l0\nl1\nl2\nl3\nneedle here\nl5\nl6\nl7"
	got := Build(src, "task", "needle", 2)

	// window is [2, 6)
	assert.Contains(t, got, "Relevant code context:\n\nl2\nl3\nneedle here\nl5\n\n\n## Requirements")
}

func TestBuild_ContextWindowDoesNotAlias(t *testing.T) {
	src := "a\nfoo\nb"
	ex := Extract(src, "foo", 1)
	require.Equal(t, []string{"a", "foo"}, ex.Context)

	ex.Context[0] = "changed"
	again := Extract(src, "foo", 1)
	assert.Equal(t, []string{"a", "foo"}, again.Context)
}

func TestBuildWithOptions_Profiles(t *testing.T) {
	t.Run("Go_Profile", func(t *testing.T) {
		p, err := LookupProfile("go", nil)
		require.NoError(t, err)

		got := BuildWithOptions(Request{
			SourceText:      "import \"fmt\"\nfunc Foo() {}",
			TaskDescription: "implement Foo",
			FunctionName:    "Foo",
			ContextLines:    2,
			Profile:         p,
		})

		assert.True(t, strings.HasPrefix(got, "# Task: Generate Go code based on the following requirements"))
		assert.Contains(t, got, "Please implement this function following Go best practices:")
		assert.Contains(t, got, "- Follow Effective Go and gofmt formatting")
		assert.NotContains(t, got, "- Include type hints")
	})

	t.Run("Python_Profile", func(t *testing.T) {
		p, err := LookupProfile("python", nil)
		require.NoError(t, err)

		got := BuildWithOptions(Request{TaskDescription: "t", FunctionName: "f", Profile: p})
		assert.True(t, strings.HasPrefix(got, "# Task: Generate Python code based on the following requirements"))
		assert.Contains(t, got, "- Follow PEP 8 style guidelines")
	})

	t.Run("Custom_Style_Guide", func(t *testing.T) {
		p := &Profile{Name: "py-google", Language: "Python", StyleGuide: "Google Python Style Guide"}
		got := BuildWithOptions(Request{TaskDescription: "t", FunctionName: "f", Profile: p})
		assert.Contains(t, got, "- Follow Google Python Style Guide style guidelines")
	})

	t.Run("Nil_Profile_Matches_Build", func(t *testing.T) {
		src := "import os\ndef foo():\n    pass"
		assert.Equal(t, Build(src, "t", "foo", 1), BuildWithOptions(Request{
			SourceText:      src,
			TaskDescription: "t",
			FunctionName:    "foo",
			ContextLines:    1,
		}))
	})
}

func TestExample(t *testing.T) {
	got := Example()

	assert.Contains(t, got, "Existing imports:\n\nimport pandas as pd\nfrom typing import List, Dict")
	assert.Contains(t, got, "Task description: Create a function to aggregate data by category and calculate statistics")
	assert.Contains(t, got, "Function name to implement: aggregate_by_category")
	// aggregate_by_category does not exist yet, so nothing matches
	assert.Contains(t, got, "No relevant code context found")
	assert.True(t, strings.HasSuffix(got, "Please provide the implementation below:"))
}
