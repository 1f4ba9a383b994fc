package portfolio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/portfolio-site/portfolio-api/internal/apperror"
)

const (
	SectionBio          = "bio"
	SectionSkills       = "skills"
	SectionPortfolio    = "portfolio"
	SectionServices     = "services"
	SectionExperience   = "experience"
	SectionEducation    = "education"
	SectionTestimonials = "testimonials"
	SectionContactInfo  = "contactInfo"
	SectionCVURL        = "cvUrl"
)

// Sections lists every section name accepted by UpdateSection, in display order.
var Sections = []string{
	SectionBio, SectionSkills, SectionPortfolio, SectionServices, SectionExperience,
	SectionEducation, SectionTestimonials, SectionContactInfo, SectionCVURL,
}

type Bio struct {
	Heading    string   `json:"heading,omitempty" bson:"heading,omitempty"`
	Image      string   `json:"image,omitempty" bson:"image,omitempty"`
	Paragraphs []string `json:"paragraphs,omitempty" bson:"paragraphs,omitempty"`
}

type Skill struct {
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
	Icon  string `json:"icon,omitempty" bson:"icon,omitempty"`
	Image string `json:"image,omitempty" bson:"image,omitempty"`
}

type PortfolioItem struct {
	ID          ItemID `json:"id,omitempty" bson:"id,omitempty"`
	Title       string `json:"title,omitempty" bson:"title,omitempty"`
	Category    string `json:"category,omitempty" bson:"category,omitempty"`
	Image       string `json:"image,omitempty" bson:"image,omitempty"`
	Link        string `json:"link,omitempty" bson:"link,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

type Service struct {
	ID          ItemID `json:"id,omitempty" bson:"id,omitempty"`
	Title       string `json:"title,omitempty" bson:"title,omitempty"`
	Icon        string `json:"icon,omitempty" bson:"icon,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// TimelineEntry is one experience or education row. Company is used for
// experience, Institution for education; Date holds the free-form duration.
type TimelineEntry struct {
	ID          ItemID `json:"id,omitempty" bson:"id,omitempty"`
	Title       string `json:"title,omitempty" bson:"title,omitempty"`
	Company     string `json:"company,omitempty" bson:"company,omitempty"`
	Institution string `json:"institution,omitempty" bson:"institution,omitempty"`
	Type        string `json:"type,omitempty" bson:"type,omitempty"`
	Date        string `json:"date,omitempty" bson:"date,omitempty"`
	Location    string `json:"location,omitempty" bson:"location,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// Testimonial: Title is the author's role, Image the avatar URL.
type Testimonial struct {
	ID    ItemID `json:"id,omitempty" bson:"id,omitempty"`
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
	Title string `json:"title,omitempty" bson:"title,omitempty"`
	Text  string `json:"text,omitempty" bson:"text,omitempty"`
	Image string `json:"image,omitempty" bson:"image,omitempty"`
}

type ContactInfo struct {
	Email    string            `json:"email,omitempty" bson:"email,omitempty"`
	Phone    string            `json:"phone,omitempty" bson:"phone,omitempty"`
	Location string            `json:"location,omitempty" bson:"location,omitempty"`
	Social   map[string]string `json:"social,omitempty" bson:"social,omitempty"`
}

// Content is the set of editable site sections. A nil pointer or slice means
// the section was never written.
type Content struct {
	Bio          *Bio            `json:"bio,omitempty" bson:"bio,omitempty"`
	Skills       []Skill         `json:"skills,omitempty" bson:"skills,omitempty"`
	Portfolio    []PortfolioItem `json:"portfolio,omitempty" bson:"portfolio,omitempty"`
	Services     []Service       `json:"services,omitempty" bson:"services,omitempty"`
	Experience   []TimelineEntry `json:"experience,omitempty" bson:"experience,omitempty"`
	Education    []TimelineEntry `json:"education,omitempty" bson:"education,omitempty"`
	Testimonials []Testimonial   `json:"testimonials,omitempty" bson:"testimonials,omitempty"`
	ContactInfo  *ContactInfo    `json:"contactInfo,omitempty" bson:"contactInfo,omitempty"`
	CVURL        string          `json:"cvUrl,omitempty" bson:"cvUrl,omitempty"`
}

// SectionUpdate is a decoded, schema-checked replacement for one section.
type SectionUpdate struct {
	Name  string
	apply func(*Content)
}

// Apply overwrites the section in c. There is no merge with the previous value.
func (u SectionUpdate) Apply(c *Content) {
	if u.apply != nil {
		u.apply(c)
	}
}

// ParseSection validates the section name and decodes raw strictly into that
// section's schema. Unknown fields and wrong shapes are validation errors.
func ParseSection(name string, raw json.RawMessage) (SectionUpdate, error) {
	var fields []apperror.FieldError
	known := false
	for _, s := range Sections {
		if s == name {
			known = true
			break
		}
	}
	if name == "" {
		fields = append(fields, apperror.FieldError{Field: "section", Message: "Section is required"})
	} else if !known {
		fields = append(fields, apperror.FieldError{Field: "section", Message: "Invalid section"})
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`)) {
		fields = append(fields, apperror.FieldError{Field: "data", Message: "Data is required"})
	}
	if len(fields) > 0 {
		return SectionUpdate{}, apperror.Validation(fields...)
	}

	u := SectionUpdate{Name: name}
	var err error
	switch name {
	case SectionBio:
		var v Bio
		err = decodeStrict(trimmed, &v)
		u.apply = func(c *Content) { c.Bio = &v }
	case SectionSkills:
		var v []Skill
		err = decodeStrict(trimmed, &v)
		u.apply = func(c *Content) { c.Skills = nonNil(v) }
	case SectionPortfolio:
		var v []PortfolioItem
		err = decodeStrict(trimmed, &v)
		u.apply = func(c *Content) { c.Portfolio = nonNil(v) }
	case SectionServices:
		var v []Service
		err = decodeStrict(trimmed, &v)
		u.apply = func(c *Content) { c.Services = nonNil(v) }
	case SectionExperience:
		var v []TimelineEntry
		err = decodeStrict(trimmed, &v)
		u.apply = func(c *Content) { c.Experience = nonNil(v) }
	case SectionEducation:
		var v []TimelineEntry
		err = decodeStrict(trimmed, &v)
		u.apply = func(c *Content) { c.Education = nonNil(v) }
	case SectionTestimonials:
		var v []Testimonial
		err = decodeStrict(trimmed, &v)
		u.apply = func(c *Content) { c.Testimonials = nonNil(v) }
	case SectionContactInfo:
		var v ContactInfo
		err = decodeStrict(trimmed, &v)
		u.apply = func(c *Content) { c.ContactInfo = &v }
	case SectionCVURL:
		var v string
		err = decodeStrict(trimmed, &v)
		if err == nil && v == "" {
			err = errors.New("must not be empty")
		}
		u.apply = func(c *Content) { c.CVURL = v }
	}
	if err != nil {
		return SectionUpdate{}, apperror.Invalid("data", fmt.Sprintf("invalid %s payload: %v", name, err))
	}
	return u, nil
}

func decodeStrict(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected trailing data")
	}
	return nil
}

// nonNil keeps an explicitly written empty list distinguishable from a missing one.
func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
