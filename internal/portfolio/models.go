package portfolio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// MaxSubmissions caps the stored contact submissions; the oldest are dropped first.
const MaxSubmissions = 1000

// DocumentID is the fixed identifier of the singleton portfolio document.
const DocumentID = "portfolio"

// Document is the single persisted portfolio record: site content, contact
// submissions (newest first) and the admin credential.
type Document struct {
	ID            string        `json:"-" bson:"_id,omitempty"`
	Content       Content       `json:"content" bson:"content"`
	Submissions   []Submission  `json:"submissions" bson:"submissions"`
	AdminSettings AdminSettings `json:"adminSettings" bson:"adminSettings"`
	CreatedAt     time.Time     `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt     time.Time     `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// AdminSettings holds the bcrypt hash of the shared admin password and
// bookkeeping about the last edit.
type AdminSettings struct {
	PasswordHash       string `json:"passwordHash" bson:"passwordHash"`
	LastUpdated        string `json:"lastUpdated,omitempty" bson:"lastUpdated,omitempty"`
	LastUpdatedBy      string `json:"lastUpdatedBy,omitempty" bson:"lastUpdatedBy,omitempty"`
	LastPasswordChange string `json:"lastPasswordChange,omitempty" bson:"lastPasswordChange,omitempty"`
}

// Submission is an immutable contact-form entry.
type Submission struct {
	ID          string    `json:"id" bson:"id"`
	FirstName   string    `json:"firstName" bson:"firstName"`
	LastName    string    `json:"lastName" bson:"lastName"`
	Email       string    `json:"email" bson:"email"`
	Subject     string    `json:"subject" bson:"subject"`
	Message     string    `json:"message" bson:"message"`
	SubmittedAt time.Time `json:"submittedAt" bson:"submittedAt"`
	SourceIP    string    `json:"sourceIp,omitempty" bson:"sourceIp,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
}

// New returns an empty document protected by passwordHash.
func New(passwordHash string, now time.Time) *Document {
	return &Document{
		ID:          DocumentID,
		Submissions: []Submission{},
		AdminSettings: AdminSettings{
			PasswordHash:  passwordHash,
			LastUpdated:   now.UTC().Format(time.RFC3339),
			LastUpdatedBy: "system",
		},
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

// AddSubmission prepends s and truncates the list to MaxSubmissions.
func (d *Document) AddSubmission(s Submission) {
	out := make([]Submission, 0, min(len(d.Submissions)+1, MaxSubmissions))
	out = append(out, s)
	for _, existing := range d.Submissions {
		if len(out) == MaxSubmissions {
			break
		}
		out = append(out, existing)
	}
	d.Submissions = out
}

// RemoveSubmission deletes the submission with the given id and reports whether it existed.
func (d *Document) RemoveSubmission(id string) bool {
	for i, s := range d.Submissions {
		if s.ID == id {
			d.Submissions = append(d.Submissions[:i], d.Submissions[i+1:]...)
			return true
		}
	}
	return false
}

// Touch stamps the admin bookkeeping fields after an edit.
func (d *Document) Touch(by string, now time.Time) {
	d.AdminSettings.LastUpdated = now.UTC().Format(time.RFC3339)
	d.AdminSettings.LastUpdatedBy = by
	d.UpdatedAt = now.UTC()
}

// ItemID identifies a list item. The admin UI generates numeric ids
// (milliseconds since epoch) while seeded data uses strings; both decode.
type ItemID string

func (id *ItemID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or a number")
	}
	*id = ItemID(n.String())
	return nil
}
