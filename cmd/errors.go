package cmd

import "errors"

// errUnsupportedProvider indicates config.yaml names an LLM provider this build cannot talk to.
var errUnsupportedProvider = errors.New("unsupported LLM provider")

// errUnsupportedOutput indicates an unknown value for --output.
var errUnsupportedOutput = errors.New("unsupported output format")
