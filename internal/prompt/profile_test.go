package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupProfile(t *testing.T) {
	user := []Profile{
		{Name: "python", Language: "Python 3", StyleGuide: "Black"},
		{Name: "rust", Language: "Rust", Guidelines: []string{"Prefer Result over panics"}},
	}

	t.Run("Empty_Name_Selects_Default", func(t *testing.T) {
		p, err := LookupProfile("", nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultProfileName, p.Name)
		assert.Empty(t, p.Language)
	})

	t.Run("Builtin_Case_Insensitive", func(t *testing.T) {
		p, err := LookupProfile("GO", nil)
		require.NoError(t, err)
		assert.Equal(t, "Go", p.Language)
	})

	t.Run("User_Profile_Overrides_Builtin", func(t *testing.T) {
		p, err := LookupProfile("python", user)
		require.NoError(t, err)
		assert.Equal(t, "Python 3", p.Language)
		assert.Equal(t, "Black", p.StyleGuide)
	})

	t.Run("User_Only_Profile", func(t *testing.T) {
		p, err := LookupProfile("Rust", user)
		require.NoError(t, err)
		assert.Equal(t, []string{"Prefer Result over panics"}, p.guidelines())
	})

	t.Run("User_Profile_Is_Copied", func(t *testing.T) {
		p, err := LookupProfile("rust", user)
		require.NoError(t, err)
		p.Language = "changed"
		assert.Equal(t, "Rust", user[1].Language)
	})

	t.Run("Unknown_Profile", func(t *testing.T) {
		_, err := LookupProfile("cobol", user)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownProfile)
		assert.Contains(t, err.Error(), `"cobol"`)
	})
}

func TestProfile_DefaultGuidelines(t *testing.T) {
	p := &Profile{Name: "bare"}
	assert.Equal(t, []string{
		"Include type hints",
		"Add comprehensive docstring",
		"Follow PEP 8 style guidelines",
		"Include error handling where appropriate",
		"Add comments for complex logic",
	}, p.guidelines())
}
