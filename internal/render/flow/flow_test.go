package flow

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeKit/internal/resume"
	"resumeKit/internal/sections"
)

type nanMeasurer struct{}

func (nanMeasurer) Width(string, float64, Style) float64 { return math.NaN() }

func scenarioDocument(t *testing.T) resume.Document {
	t.Helper()
	doc, issues := resume.Normalize(resume.RawDocument{
		Title:        "Café Engineer",
		Summary:      "Senior engineer.",
		PersonalInfo: &resume.PersonalInfo{FullName: "José Núñez", Email: "jose@example.com", Phone: "+34 600 000 000"},
		Experience: []resume.RawExperience{
			{Position: "Engineer", Company: "Acme", Current: true, StartDate: "2020-01-01",
				Achievements: resume.StringList{"Shipped (v2) \\ stable"}},
		},
		Skills: []resume.Skill{{Name: "Go", Category: "Programming"}, {Name: "Listening", Category: "Soft Skills"}},
	})
	require.Empty(t, issues)
	return doc
}

func TestRenderScenarioTexts(t *testing.T) {
	doc := scenarioDocument(t)
	out, err := Render(doc, sections.Order(doc), FixedMeasurer{Advance: 0.5})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"José Núñez",
		"+34 600 000 000 | jose@example.com",
		"PROFESSIONAL SUMMARY",
		"Senior engineer.",
		"CORE COMPETENCIES",
		"Go • Listening",
		"WORK EXPERIENCE",
		"Engineer",
		"Acme",
		"Jan 2020 - Present",
		"• Shipped (v2) \\ stable",
		"TECHNICAL SKILLS",
		"Programming: Go",
		"SOFT SKILLS",
		"Listening",
	}, out.Texts())
	assert.Equal(t, 1, out.Pages)

	var rules int
	for _, op := range out.Ops {
		if op.Kind == OpRule {
			rules++
			assert.Equal(t, Margin, op.X)
			assert.Equal(t, PageWidth-Margin, op.X2)
		}
	}
	assert.Equal(t, 5, rules)
}

func TestRenderCentersHeader(t *testing.T) {
	doc := scenarioDocument(t)
	out, err := Render(doc, sections.Order(doc), FixedMeasurer{Advance: 0.5})
	require.NoError(t, err)
	name := out.Ops[0]
	w := FixedMeasurer{Advance: 0.5}.Width(name.Text, 20, Bold)
	assert.InDelta(t, (PageWidth-w)/2, name.X, 1e-9)
	assert.Equal(t, Margin, name.Y)
}

func TestWrapGreedy(t *testing.T) {
	m := FixedMeasurer{Advance: 1}
	lines, err := wrap(m, "aa bb cc dd", 1, Normal, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"aa bb", "cc dd"}, lines)

	lines, err = wrap(m, "abcdefghijk x", 1, Normal, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"abcd", "efgh", "ijk", "x"}, lines)

	lines, err = wrap(m, "one\n\ntwo", 1, Normal, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, lines)
}

func TestPaginationBreaksBeforeLine(t *testing.T) {
	l := newLayout(FixedMeasurer{Advance: 0.1})
	f := Font{Size: 10}
	lead := f.Size * LeadingRatio

	// 下一行刚好不越过下边距：不换页
	l.y = l.bottom() - lead - 0.01
	l.addText("fits", f)
	require.Len(t, l.ops, 1)
	assert.Equal(t, 0, l.ops[0].Page)
	assert.InDelta(t, l.bottom()-0.01, l.y, 1e-9)

	// 再推进就会越界：必须先换页再输出
	l.addText("next", f)
	require.Len(t, l.ops, 2)
	assert.Equal(t, 1, l.ops[1].Page)
	assert.Equal(t, Margin, l.ops[1].Y)
	assert.Equal(t, 2, l.pages)
}

func TestPaginationMovesWholeBlock(t *testing.T) {
	l := newLayout(FixedMeasurer{Advance: 1})
	f := Font{Size: 10}
	l.y = l.bottom() - 12
	// 折成多行，整块放不下，整体移到下一页
	l.addText(strings.Repeat("word ", 200), f)
	require.NotEmpty(t, l.ops)
	assert.Equal(t, 1, l.ops[0].Page)
	assert.Equal(t, Margin, l.ops[0].Y)
	for _, op := range l.ops {
		assert.LessOrEqual(t, op.Y+f.Size*LeadingRatio, l.bottom())
	}
}

func TestLongDocumentPaginates(t *testing.T) {
	raw := resume.RawDocument{}
	for i := 0; i < 60; i++ {
		raw.Experience = append(raw.Experience, resume.RawExperience{
			Position: "Engineer", Company: "Acme", StartDate: "2010-01-01", EndDate: "2011-01-01",
			Description: "Built and operated services.",
		})
	}
	doc, _ := resume.Normalize(raw)
	out, err := Render(doc, sections.Order(doc), NewFontMeasurer(FontSet{}))
	require.NoError(t, err)
	assert.Greater(t, out.Pages, 1)
	for _, op := range out.Ops {
		if op.Kind == OpText {
			assert.LessOrEqual(t, op.Y, PageHeight-Margin)
			assert.GreaterOrEqual(t, op.Y, Margin)
		}
	}
}

func TestRenderLayoutFailure(t *testing.T) {
	doc := scenarioDocument(t)
	_, err := Render(doc, sections.Order(doc), nanMeasurer{})
	assert.ErrorIs(t, err, ErrLayout)
}

func TestWritePDFExtractRoundTrip(t *testing.T) {
	doc := scenarioDocument(t)
	out, err := Render(doc, sections.Order(doc), NewFontMeasurer(FontSet{}))
	require.NoError(t, err)

	for _, compress := range []bool{false, true} {
		var buf bytes.Buffer
		require.NoError(t, WritePDF(out, &buf, WriteOptions{Compress: compress}))
		texts, err := ExtractText(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, out.Texts(), texts, "compress=%v", compress)
		assert.NotContains(t, buf.String(), "/Image")
	}
}

func TestWritePDFDeterministic(t *testing.T) {
	doc := scenarioDocument(t)
	out, err := Render(doc, sections.Order(doc), NewFontMeasurer(FontSet{}))
	require.NoError(t, err)

	var a, b bytes.Buffer
	require.NoError(t, WritePDF(out, &a, WriteOptions{Compress: true}))
	require.NoError(t, WritePDF(out, &b, WriteOptions{Compress: true}))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestWritePDFEmptyDocumentHasOnePage(t *testing.T) {
	out, err := Render(resume.Document{}, sections.List{}, NewFontMeasurer(FontSet{}))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WritePDF(out, &buf, WriteOptions{}))
	assert.Contains(t, buf.String(), "/Count 1")
}

func TestExtractTextRejectsNonPDF(t *testing.T) {
	_, err := ExtractText([]byte("PK\x03\x04"))
	assert.ErrorIs(t, err, ErrNotPDF)
}

func TestHex(t *testing.T) {
	assert.Equal(t, Color{R: 0x1a, G: 0x91, B: 0xf0}, Hex("#1a91f0"))
	assert.Equal(t, Color{}, Hex("blue"))
}

func TestSectionTitleOpsMatchOrder(t *testing.T) {
	doc, issues := resume.Normalize(resume.RawDocument{
		Summary:      "Builds reliable systems.",
		PersonalInfo: &resume.PersonalInfo{FullName: "Jane Doe", Email: "jane@example.com"},
		Experience: []resume.RawExperience{
			{Position: "Engineer", Company: "Acme", StartDate: "2020-01-01", Current: true},
		},
		Education: []resume.RawEducation{{Institution: "MIT", Degree: "BSc", GraduationDate: "2016"}},
		Skills: []resume.Skill{
			{Name: "Go", Category: "Programming"},
			{Name: "Communication", Category: resume.SoftSkillsCategory},
		},
		Certifications: []resume.RawCertification{{Name: "CKA", IssuingOrganization: "CNCF"}},
		Languages:      []resume.RawLanguage{{Name: "English", Proficiency: "Native"}},
		References:     []resume.Reference{{Name: "John Roe", Company: "Acme"}},
	})
	require.Empty(t, issues)
	list := sections.Order(doc)
	require.Len(t, list.Titles(), 9)

	for _, m := range []Measurer{FixedMeasurer{Advance: 0.5}, NewFontMeasurer(FontSet{})} {
		out, err := Render(doc, list, m)
		require.NoError(t, err)
		var titles []string
		for _, op := range out.Ops {
			if op.Kind == OpText && op.Font == fontSection {
				titles = append(titles, op.Text)
			}
		}
		assert.Equal(t, list.Titles(), titles)
	}
}

func TestWritePDFExtractRoundTripNonLatin(t *testing.T) {
	doc, issues := resume.Normalize(resume.RawDocument{
		Title:        "Zoë Łukasiewicz",
		Summary:      "Ingénieur logiciel à Łódź, 负责后端. Опыт работы в Москве, Αθήνα.",
		PersonalInfo: &resume.PersonalInfo{FullName: "Zoë Łukasiewicz", Email: "zoe@example.com"},
		Experience: []resume.RawExperience{
			{Position: "Inżynier", Company: "Żabka", Current: true, StartDate: "2021-06-01",
				Achievements: resume.StringList{"Migrację (ß → ẞ) ukończono"}},
		},
	})
	require.Empty(t, issues)
	out, err := Render(doc, sections.Order(doc), NewFontMeasurer(FontSet{}))
	require.NoError(t, err)

	for _, compress := range []bool{false, true} {
		var buf bytes.Buffer
		require.NoError(t, WritePDF(out, &buf, WriteOptions{Compress: compress}))
		texts, err := ExtractText(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, out.Texts(), texts, "compress=%v", compress)
		assert.Contains(t, texts, "Zoë Łukasiewicz")
		assert.Contains(t, strings.Join(texts, " "), "Łódź, 负责后端")
	}
}

func TestFontMeasurerRejectsInvalidFont(t *testing.T) {
	m := NewFontMeasurer(FontSet{Regular: []byte("not a font")})
	assert.True(t, math.IsNaN(m.Width("x", 10, Normal)))

	doc := scenarioDocument(t)
	_, err := Render(doc, sections.Order(doc), m)
	assert.ErrorIs(t, err, ErrLayout)

	out, err := Render(doc, sections.Order(doc), FixedMeasurer{Advance: 0.5})
	require.NoError(t, err)
	var buf bytes.Buffer
	assert.Error(t, WritePDF(out, &buf, WriteOptions{Fonts: FontSet{Regular: []byte("not a font")}}))
}

func TestLoadFontSet(t *testing.T) {
	_, err := LoadFontSet("fonts/missing.ttf", "")
	assert.Error(t, err)

	fs, err := LoadFontSet("fonts/DejaVuSansCondensed.ttf", "fonts/DejaVuSansCondensed-Bold.ttf")
	require.NoError(t, err)
	assert.Equal(t, dejavuRegular, fs.Regular)
	assert.Empty(t, fs.Italic)
	assert.Greater(t, NewFontMeasurer(fs).Width("Łódź", 10, Italic), 0.0)
}
