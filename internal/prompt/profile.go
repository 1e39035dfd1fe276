package prompt

import (
	"fmt"
	"strings"
)

// Profile describes the language-specific wording of a prompt: the language named
// in the header and the guidance bullets appended when a function name is given.
type Profile struct {
	Name       string   `yaml:"name" json:"name"`
	Language   string   `yaml:"language,omitempty" json:"language,omitempty"`       // Shown in the header, e.g. "Python". Empty keeps the header generic.
	StyleGuide string   `yaml:"style_guide,omitempty" json:"style_guide,omitempty"` // Referenced by the default guidelines, e.g. "PEP 8"
	Guidelines []string `yaml:"guidelines,omitempty" json:"guidelines,omitempty"`   // Replaces the default bullets when set
}

// DefaultProfileName is the profile used when none is requested.
const DefaultProfileName = "default"

const defaultStyleGuide = "PEP 8"

// DefaultProfile returns the profile behind Build: generic header, PEP 8 guidance.
func DefaultProfile() *Profile {
	return &Profile{Name: DefaultProfileName, StyleGuide: defaultStyleGuide}
}

// BuiltinProfiles returns the profiles shipped with the binary, keyed by name.
func BuiltinProfiles() map[string]*Profile {
	return map[string]*Profile{
		DefaultProfileName: DefaultProfile(),
		"python": {
			Name:       "python",
			Language:   "Python",
			StyleGuide: defaultStyleGuide,
		},
		"go": {
			Name:       "go",
			Language:   "Go",
			StyleGuide: "Effective Go",
			Guidelines: []string{
				"Use explicit, descriptive types in signatures",
				"Add a doc comment starting with the function name",
				"Follow Effective Go and gofmt formatting",
				"Return errors instead of panicking and wrap them with context",
				"Add comments for complex logic",
			},
		},
	}
}

// LookupProfile resolves name against the user supplied profiles first and the
// built-in profiles second. An empty name selects DefaultProfileName.
func LookupProfile(name string, userProfiles []Profile) (*Profile, error) {
	if name == "" {
		name = DefaultProfileName
	}
	for i := range userProfiles {
		if strings.EqualFold(userProfiles[i].Name, name) {
			p := userProfiles[i]
			return &p, nil
		}
	}
	if p, ok := BuiltinProfiles()[strings.ToLower(name)]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}

func (p *Profile) header() string {
	if p.Language == "" {
		return "# Task: Generate code based on the following requirements"
	}
	return fmt.Sprintf("# Task: Generate %s code based on the following requirements", p.Language)
}

func (p *Profile) intro() string {
	if p.Language == "" {
		return "Please implement this function following best practices:"
	}
	return fmt.Sprintf("Please implement this function following %s best practices:", p.Language)
}

func (p *Profile) guidelines() []string {
	if len(p.Guidelines) > 0 {
		return p.Guidelines
	}
	styleGuide := p.StyleGuide
	if styleGuide == "" {
		styleGuide = defaultStyleGuide
	}
	return []string{
		"Include type hints",
		"Add comprehensive docstring",
		fmt.Sprintf("Follow %s style guidelines", styleGuide),
		"Include error handling where appropriate",
		"Add comments for complex logic",
	}
}
