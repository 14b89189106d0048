package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeKit/internal/resume"
)

type fakeGenerator struct {
	reply  string
	err    error
	system string
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, system, prompt string) (string, error) {
	f.system, f.prompt = system, prompt
	return f.reply, f.err
}

func sampleDocument() resume.Document {
	start := resume.Date{Year: 2020, Month: 1, Day: 1}
	return resume.Document{
		Title:        "Backend",
		Summary:      "Original summary.",
		PersonalInfo: &resume.PersonalInfo{FullName: "Jane Doe", Email: "jane@example.com"},
		Experience: []resume.Experience{
			{Company: "Acme", Position: "Engineer", StartDate: &start, Current: true,
				Description: "Built things.", Achievements: []string{"Shipped v1"}},
			{Company: "Globex", Position: "Intern", Description: "Fixed bugs."},
		},
		Projects: []resume.Project{
			{Name: "Ledger", Description: "Bookkeeping.", Technologies: []string{"Go"}},
		},
		Skills: []resume.Skill{{Name: "Go"}, {Name: "SQL"}},
	}
}

func TestSuggestParsesWrappedJSON(t *testing.T) {
	gen := &fakeGenerator{reply: "Here you go:\n```json\n" +
		`{"summary":"Sharp summary.","experience":[{"description":"Owned the platform.","achievements":["Cut costs 30%"]}],"projects":[{"description":"Ledger rewrite."}]}` +
		"\n```"}
	svc := NewService(gen, nil)

	sug, err := svc.Suggest(context.Background(), ProfileFromDocument(sampleDocument(), "Staff role"))
	require.NoError(t, err)
	assert.Equal(t, "Sharp summary.", sug.Summary)
	require.Len(t, sug.Experience, 1)
	assert.Equal(t, []string{"Cut costs 30%"}, sug.Experience[0].Achievements)

	assert.Equal(t, systemPrompt, gen.system)
	assert.Contains(t, gen.prompt, "Name: Jane Doe")
	assert.Contains(t, gen.prompt, "- Engineer at Acme")
	assert.Contains(t, gen.prompt, "Go, SQL")
	assert.Contains(t, gen.prompt, "CAREER GOALS:\nStaff role")
	assert.NotContains(t, gen.prompt, "Phone:")
}

func TestSuggestFallsBackOnGeneratorError(t *testing.T) {
	svc := NewService(&fakeGenerator{err: errors.New("503")}, nil)
	p := ProfileFromDocument(sampleDocument(), "")

	sug, err := svc.Suggest(context.Background(), p)
	require.Error(t, err)
	assert.Equal(t, Fallback(p), sug)
	assert.Len(t, sug.Experience, 2)
	assert.Len(t, sug.Projects, 1)
	assert.Equal(t, fallbackExperience, sug.Experience[1].Description)
}

func TestSuggestFallsBackOnMalformedReply(t *testing.T) {
	svc := NewService(&fakeGenerator{reply: "sorry, I cannot help with that"}, nil)
	p := ProfileFromDocument(sampleDocument(), "")

	sug, err := svc.Suggest(context.Background(), p)
	assert.ErrorIs(t, err, ErrMalformedReply)
	assert.Equal(t, fallbackSummary, sug.Summary)
}

func TestSuggestWithoutGenerator(t *testing.T) {
	sug, err := NewService(nil, nil).Suggest(context.Background(), Profile{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, fallbackSummary, sug.Summary)
	assert.Empty(t, sug.Experience)
}

func TestApplyReturnsModifiedCopy(t *testing.T) {
	doc := sampleDocument()
	pristine := sampleDocument()

	out := Apply(doc, Suggestion{
		Summary: "New summary.",
		Experience: []ExperienceSuggestion{
			{Description: "Owned the platform.", Achievements: []string{" Cut costs ", ""}},
			{Description: "  "},
			{Description: "ignored extra entry"},
		},
		Projects: []ProjectSuggestion{{Description: "Ledger rewrite."}},
	})

	assert.Equal(t, pristine, doc)
	assert.Equal(t, "New summary.", out.Summary)
	assert.Equal(t, "Owned the platform.", out.Experience[0].Description)
	assert.Equal(t, []string{"Cut costs"}, out.Experience[0].Achievements)
	assert.Equal(t, "Fixed bugs.", out.Experience[1].Description)
	assert.Len(t, out.Experience, 2)
	assert.Equal(t, "Ledger rewrite.", out.Projects[0].Description)

	out.Projects[0].Technologies[0] = "Rust"
	assert.Equal(t, "Go", doc.Projects[0].Technologies[0])
}

func TestApplyEmptySuggestionKeepsContent(t *testing.T) {
	doc := sampleDocument()
	out := Apply(doc, Suggestion{})
	assert.Equal(t, doc, out)
}

func TestProfileFromDocumentWithoutPersonalInfo(t *testing.T) {
	p := ProfileFromDocument(resume.Document{}, "  ")
	assert.Empty(t, p.Goals)
	assert.Contains(t, buildPrompt(p), "CAREER GOALS:\nNot specified")
}
