package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONAcceptsLenientShapes(t *testing.T) {
	raw := []byte(`{
		"title": "Backend",
		"experience_type": "project",
		"personal_info": {"full_name": "Jane Doe", "email": null},
		"projects": [
			{"name": "Kit", "technologies": "Go, Redis", "start_date": ""},
			{"name": "Site", "technologies": ["Hugo"]}
		],
		"section_visibility": {"languages": false}
	}`)
	rawDoc, err := DecodeJSON(raw)
	require.NoError(t, err)

	doc, issues := Normalize(rawDoc)
	assert.Empty(t, issues)
	assert.Equal(t, ExperienceProject, doc.ExperienceType)
	require.Len(t, doc.Projects, 2)
	assert.Equal(t, []string{"Go", "Redis"}, doc.Projects[0].Technologies)
	assert.Nil(t, doc.Projects[0].StartDate)
	assert.Equal(t, []string{"Hugo"}, doc.Projects[1].Technologies)
	assert.False(t, doc.Visibility.Shows(VisibleLanguages))
}

func TestValidateJSONRejectsWrongTypes(t *testing.T) {
	err := ValidateJSON([]byte(`{"skills": [{"category": "Go"}], "experience": "none"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestValidateJSONRejectsMalformed(t *testing.T) {
	err := ValidateJSON([]byte(`{"title": `))
	assert.ErrorIs(t, err, ErrInvalidDocument)
}
