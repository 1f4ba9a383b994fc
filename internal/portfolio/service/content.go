package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/portfolio-site/portfolio-api/internal/apperror"
	"github.com/portfolio-site/portfolio-api/internal/portfolio"
	"github.com/portfolio-site/portfolio-api/internal/portfolio/repository"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ContentService serves the public site content and the admin edits to it.
type ContentService struct {
	docs    *repository.Guard
	baseURL string
}

func NewContentService(docs *repository.Guard, publicBaseURL string) *ContentService {
	return &ContentService{docs: docs, baseURL: publicBaseURL}
}

func (s *ContentService) GetPublicContent(ctx context.Context) (portfolio.PublicContent, error) {
	doc, err := s.docs.Load(ctx)
	if err != nil {
		return portfolio.PublicContent{}, fmt.Errorf("get content: %w", err)
	}
	return doc.Content.Public(s.baseURL), nil
}

// Pagination is the page metadata returned with a submissions page.
type Pagination struct {
	CurrentPage      int  `json:"currentPage"`
	TotalPages       int  `json:"totalPages"`
	TotalSubmissions int  `json:"totalSubmissions"`
	HasMore          bool `json:"hasMore"`
}

type SubmissionPage struct {
	Submissions []portfolio.Submission `json:"submissions"`
	Pagination  Pagination             `json:"pagination"`
}

// NormalizePage applies the paging defaults: page < 1 becomes 1, limit < 1
// becomes DefaultPageSize and limit is capped at MaxPageSize.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// GetSubmissions returns one page of submissions, newest first.
func (s *ContentService) GetSubmissions(ctx context.Context, page, limit int) (*SubmissionPage, error) {
	page, limit = NormalizePage(page, limit)
	doc, err := s.docs.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("get submissions: %w", err)
	}
	total := len(doc.Submissions)
	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	items := make([]portfolio.Submission, end-start)
	copy(items, doc.Submissions[start:end])
	return &SubmissionPage{
		Submissions: items,
		Pagination: Pagination{
			CurrentPage:      page,
			TotalPages:       (total + limit - 1) / limit,
			TotalSubmissions: total,
			HasMore:          end < total,
		},
	}, nil
}

func (s *ContentService) DeleteSubmission(ctx context.Context, id string) error {
	err := s.docs.Update(ctx, func(doc *portfolio.Document) error {
		if !doc.RemoveSubmission(id) {
			return apperror.NotFound("Submission", "")
		}
		return nil
	})
	if err != nil {
		return wrap("delete submission", err)
	}
	return nil
}

// UpdateSection replaces one content section wholesale and returns the time
// of the change.
func (s *ContentService) UpdateSection(ctx context.Context, section string, data json.RawMessage) (time.Time, error) {
	upd, err := portfolio.ParseSection(section, data)
	if err != nil {
		return time.Time{}, err
	}
	var at time.Time
	err = s.docs.Update(ctx, func(doc *portfolio.Document) error {
		upd.Apply(&doc.Content)
		at = s.docs.Now().UTC()
		doc.Touch("admin", at)
		return nil
	})
	if err != nil {
		return time.Time{}, wrap("update section", err)
	}
	logger.Infof("content section %q updated", section)
	return at, nil
}

// wrap leaves client-facing errors untouched and adds context to the rest.
func wrap(op string, err error) error {
	if _, ok := err.(*apperror.AppError); ok {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
