package portfolio

import "strings"

// UploadsPrefix is the URL path under which locally stored files are served.
const UploadsPrefix = "/uploads/"

// PublicContent is the visitor-facing view of Content: every section is
// present and relative media paths are made absolute.
type PublicContent struct {
	Bio          Bio             `json:"bio"`
	Skills       []Skill         `json:"skills"`
	Portfolio    []PortfolioItem `json:"portfolio"`
	Services     []Service       `json:"services"`
	Experience   []TimelineEntry `json:"experience"`
	Education    []TimelineEntry `json:"education"`
	Testimonials []Testimonial   `json:"testimonials"`
	ContactInfo  ContactInfo     `json:"contactInfo"`
	CVURL        string          `json:"cvUrl,omitempty"`
}

// Public builds the visitor view. Inputs are copied, never modified.
func (c Content) Public(baseURL string) PublicContent {
	base := strings.TrimRight(baseURL, "/")
	out := PublicContent{
		Skills:       make([]Skill, 0, len(c.Skills)),
		Portfolio:    make([]PortfolioItem, 0, len(c.Portfolio)),
		Services:     nonNil(append([]Service(nil), c.Services...)),
		Experience:   nonNil(append([]TimelineEntry(nil), c.Experience...)),
		Education:    nonNil(append([]TimelineEntry(nil), c.Education...)),
		Testimonials: make([]Testimonial, 0, len(c.Testimonials)),
		CVURL:        resolveMedia(base, c.CVURL),
	}
	if c.Bio != nil {
		out.Bio = Bio{
			Heading:    c.Bio.Heading,
			Image:      resolveMedia(base, c.Bio.Image),
			Paragraphs: append([]string(nil), c.Bio.Paragraphs...),
		}
	}
	for _, s := range c.Skills {
		s.Image = resolveMedia(base, s.Image)
		out.Skills = append(out.Skills, s)
	}
	for _, p := range c.Portfolio {
		p.Image = resolveMedia(base, p.Image)
		out.Portfolio = append(out.Portfolio, p)
	}
	for _, t := range c.Testimonials {
		t.Image = resolveMedia(base, t.Image)
		out.Testimonials = append(out.Testimonials, t)
	}
	if c.ContactInfo != nil {
		out.ContactInfo = *c.ContactInfo
		if c.ContactInfo.Social != nil {
			out.ContactInfo.Social = make(map[string]string, len(c.ContactInfo.Social))
			for k, v := range c.ContactInfo.Social {
				out.ContactInfo.Social[k] = v
			}
		}
	}
	return out
}

// resolveMedia prefixes base onto paths served from the local uploads directory.
// Absolute URLs and empty values pass through.
func resolveMedia(base, p string) string {
	if base == "" || !strings.HasPrefix(p, UploadsPrefix) {
		return p
	}
	return base + p
}
