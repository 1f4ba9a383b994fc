package portfolio

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-site/portfolio-api/internal/apperror"
)

func TestParseSectionReplacesWholeSection(t *testing.T) {
	c := Content{Skills: []Skill{{Name: "Go"}, {Name: "Rust"}}}

	u, err := ParseSection(SectionSkills, json.RawMessage(`[{"name":"Python","icon":"fab fa-python"}]`))
	require.NoError(t, err)
	u.Apply(&c)

	require.Len(t, c.Skills, 1)
	assert.Equal(t, "Python", c.Skills[0].Name)
}

func TestParseSectionAcceptsNumericAndStringIDs(t *testing.T) {
	u, err := ParseSection(SectionPortfolio, json.RawMessage(`[{"id":1700000000000,"title":"A"},{"id":"p2","title":"B"}]`))
	require.NoError(t, err)
	var c Content
	u.Apply(&c)
	assert.Equal(t, ItemID("1700000000000"), c.Portfolio[0].ID)
	assert.Equal(t, ItemID("p2"), c.Portfolio[1].ID)
}

func TestParseSectionRejects(t *testing.T) {
	cases := []struct {
		name    string
		section string
		data    string
		field   string
	}{
		{"unknown section", "hobbies", `[]`, "section"},
		{"missing section", "", `{}`, "section"},
		{"null data", SectionBio, `null`, "data"},
		{"missing data", SectionBio, ``, "data"},
		{"unknown field", SectionBio, `{"heading":"hi","extra":1}`, "data"},
		{"wrong shape", SectionSkills, `{"name":"Go"}`, "data"},
		{"empty cv url", SectionCVURL, `""`, "data"},
		{"bad id", SectionServices, `[{"id":true}]`, "data"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSection(tc.section, json.RawMessage(tc.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrValidation))
			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tc.field, appErr.Fields[0].Field)
		})
	}
}

func TestEmptyListIsDistinctFromMissing(t *testing.T) {
	u, err := ParseSection(SectionTestimonials, json.RawMessage(`[]`))
	require.NoError(t, err)
	var c Content
	u.Apply(&c)
	assert.NotNil(t, c.Testimonials)
	assert.Empty(t, c.Testimonials)
}

func TestPublicDefaultsMissingSections(t *testing.T) {
	raw, err := json.Marshal(Content{}.Public("https://api.example.com"))
	require.NoError(t, err)

	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.JSONEq(t, `{}`, string(got["bio"]))
	assert.JSONEq(t, `[]`, string(got["skills"]))
	assert.JSONEq(t, `[]`, string(got["testimonials"]))
	assert.JSONEq(t, `{}`, string(got["contactInfo"]))
}

func TestPublicRewritesUploadPaths(t *testing.T) {
	c := Content{
		Bio:          &Bio{Heading: "Hi", Image: "/uploads/images/me-1.png"},
		Skills:       []Skill{{Name: "Go", Image: "https://cdn.example.com/go.png"}},
		Portfolio:    []PortfolioItem{{Title: "X", Image: "/uploads/images/x-2.jpg"}},
		Testimonials: []Testimonial{{Name: "Ann", Image: "/uploads/images/ann-3.webp"}},
		CVURL:        "/uploads/cv/cv-4.pdf",
	}
	p := c.Public("https://api.example.com/")

	assert.Equal(t, "https://api.example.com/uploads/images/me-1.png", p.Bio.Image)
	assert.Equal(t, "https://cdn.example.com/go.png", p.Skills[0].Image)
	assert.Equal(t, "https://api.example.com/uploads/images/x-2.jpg", p.Portfolio[0].Image)
	assert.Equal(t, "https://api.example.com/uploads/images/ann-3.webp", p.Testimonials[0].Image)
	assert.Equal(t, "https://api.example.com/uploads/cv/cv-4.pdf", p.CVURL)

	// stored values untouched
	assert.Equal(t, "/uploads/images/me-1.png", c.Bio.Image)
	assert.Equal(t, "/uploads/images/x-2.jpg", c.Portfolio[0].Image)
}

func TestAddSubmissionKeepsNewestFirstAndCaps(t *testing.T) {
	d := New("hash", time.Now())
	for i := 0; i < MaxSubmissions+1; i++ {
		d.AddSubmission(Submission{ID: strconv.Itoa(i)})
	}
	require.Len(t, d.Submissions, MaxSubmissions)
	assert.Equal(t, strconv.Itoa(MaxSubmissions), d.Submissions[0].ID)
	assert.Equal(t, "1", d.Submissions[MaxSubmissions-1].ID, "oldest entry dropped")
}

func TestRemoveSubmission(t *testing.T) {
	d := New("hash", time.Now())
	d.AddSubmission(Submission{ID: "a"})
	d.AddSubmission(Submission{ID: "b"})

	assert.True(t, d.RemoveSubmission("a"))
	assert.False(t, d.RemoveSubmission("a"))
	require.Len(t, d.Submissions, 1)
	assert.Equal(t, "b", d.Submissions[0].ID)
}
