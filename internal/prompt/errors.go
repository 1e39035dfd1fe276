package prompt

import "errors"

// ErrUnknownProfile indicates a requested profile is neither user defined nor built in.
var ErrUnknownProfile = errors.New("unknown prompt profile")
