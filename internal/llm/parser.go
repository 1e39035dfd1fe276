package llm

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// CodeBlock is the code pulled out of a model reply.
type CodeBlock struct {
	Language string `json:"language,omitempty"` // info string of the fence, e.g. "python"
	Code     string `json:"code"`
	Fenced   bool   `json:"fenced"`
}

// fenceRegex matches the first markdown code fence and captures its info string and body.
// \x60 is a backtick.
var fenceRegex = regexp.MustCompile("(?s)\x60{3}([\\w+#.-]*)[ \\t]*\\r?\\n(.*?)\\r?\\n?\x60{3}")

// ExtractCode returns the body of the first fenced code block in rawResponse.
// Replies without a fence are returned trimmed, since models often answer with bare code.
// It returns ErrLLMEmptyCode when nothing but whitespace remains.
func ExtractCode(rawResponse string) (CodeBlock, error) {
	log.Debug().Int("raw_length", len(rawResponse)).Msg("Attempting to extract code from LLM response")

	// Only the first fence counts; later blocks are usually usage examples.
	if match := fenceRegex.FindStringSubmatch(rawResponse); len(match) == 3 {
		block := CodeBlock{
			Language: strings.ToLower(match[1]),
			Code:     strings.TrimRight(match[2], " \t\r\n"),
			Fenced:   true,
		}
		// A fence with nothing inside is a refusal or a truncated reply.
		if strings.TrimSpace(block.Code) == "" {
			log.Error().Msg("Code fence in LLM response is empty")
			return CodeBlock{}, ErrLLMEmptyCode
		}
		log.Debug().Str("language", block.Language).Int("code_length", len(block.Code)).Msg("Extracted fenced code block")
		return block, nil
	}

	// Unfenced reply: treat the whole text as code.
	trimmed := strings.TrimSpace(rawResponse)
	if trimmed == "" {
		log.Error().Msg("LLM response is empty after trimming")
		return CodeBlock{}, ErrLLMEmptyCode
	}

	log.Debug().Msg("No code fence found, using trimmed response as code")
	return CodeBlock{Code: trimmed}, nil
}
