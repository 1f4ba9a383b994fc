package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/xid"

	"github.com/portfolio-site/portfolio-api/internal/portfolio"
	"github.com/portfolio-site/portfolio-api/internal/portfolio/repository"
)

var (
	errNotEmpty   = errors.New("store already holds a portfolio document (use -force to overwrite)")
	errNoPassword = errors.New("the portfolio document has no admin password: pass -password or set ADMIN_PASSWORD")
)

// export is the shape of a JSON data file. Older exports stamp submissions
// with "date" instead of "submittedAt" and use numeric ids.
type export struct {
	Content     *portfolio.Content `json:"content"`
	Submissions []exportSubmission `json:"submissions"`
}

type exportSubmission struct {
	ID          portfolio.ItemID `json:"id"`
	FirstName   string           `json:"firstName"`
	LastName    string           `json:"lastName"`
	Email       string           `json:"email"`
	Subject     string           `json:"subject"`
	Message     string           `json:"message"`
	SubmittedAt *time.Time       `json:"submittedAt"`
	Date        *time.Time       `json:"date"`
}

func (s exportSubmission) submission(now time.Time) portfolio.Submission {
	at := now
	switch {
	case s.SubmittedAt != nil:
		at = *s.SubmittedAt
	case s.Date != nil:
		at = *s.Date
	}
	id := string(s.ID)
	if id == "" {
		id = xid.New().String()
	}
	return portfolio.Submission{
		ID:          id,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		Email:       s.Email,
		Subject:     s.Subject,
		Message:     s.Message,
		SubmittedAt: at.UTC(),
	}
}

func readExport(r io.Reader) (*export, error) {
	var ex export
	dec := json.NewDecoder(r)
	if err := dec.Decode(&ex); err != nil {
		return nil, fmt.Errorf("decode data file: %w", err)
	}
	return &ex, nil
}

type seedOptions struct {
	data  *export // nil: only the password is touched
	hash  string  // empty: keep the stored hash
	force bool
	now   time.Time
}

// seed writes opts into store. Importing content into a store that already
// has a document requires force; setting only the password never does.
func seed(ctx context.Context, store repository.Store, opts seedOptions) (*portfolio.Document, error) {
	doc, err := store.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		doc = portfolio.New("", opts.now)
	case err != nil:
		return nil, fmt.Errorf("load portfolio: %w", err)
	case opts.data != nil && !opts.force:
		return nil, errNotEmpty
	}

	if ex := opts.data; ex != nil {
		if ex.Content != nil {
			doc.Content = *ex.Content
		}
		subs := make([]portfolio.Submission, 0, min(len(ex.Submissions), portfolio.MaxSubmissions))
		for _, s := range ex.Submissions {
			if len(subs) == portfolio.MaxSubmissions {
				break
			}
			subs = append(subs, s.submission(opts.now))
		}
		doc.Submissions = subs
	}
	if opts.hash != "" {
		doc.AdminSettings.PasswordHash = opts.hash
		doc.AdminSettings.LastPasswordChange = opts.now.UTC().Format(time.RFC3339)
	}
	if doc.AdminSettings.PasswordHash == "" {
		return nil, errNoPassword
	}
	doc.Touch("seed", opts.now)

	if err := store.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save portfolio: %w", err)
	}
	return doc, nil
}
