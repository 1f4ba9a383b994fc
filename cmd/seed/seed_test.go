package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-site/portfolio-api/internal/portfolio"
	"github.com/portfolio-site/portfolio-api/internal/portfolio/repository"
)

const sample = `{
  "content": {"bio": {"heading": "Hello"}, "cvUrl": "/uploads/cv.pdf"},
  "submissions": [
    {"id": 1700000000000, "firstName": "Ada", "lastName": "L", "email": "ada@example.com",
     "subject": "Hi", "message": "Legacy entry", "date": "2023-11-14T22:13:20Z"},
    {"firstName": "Alan", "lastName": "T", "email": "alan@example.com",
     "subject": "Yo", "message": "New entry", "submittedAt": "2024-01-02T03:04:05Z"}
  ]
}`

var now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestSeedEmptyStore(t *testing.T) {
	ex, err := readExport(strings.NewReader(sample))
	require.NoError(t, err)
	store := repository.NewMemoryStore()

	_, err = seed(context.Background(), store, seedOptions{data: ex, hash: "$2a$hash", now: now})
	require.NoError(t, err)

	doc, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, doc.Content.Bio)
	assert.Equal(t, "Hello", doc.Content.Bio.Heading)
	assert.Equal(t, "/uploads/cv.pdf", doc.Content.CVURL)
	assert.Equal(t, "$2a$hash", doc.AdminSettings.PasswordHash)
	assert.Equal(t, "seed", doc.AdminSettings.LastUpdatedBy)

	require.Len(t, doc.Submissions, 2)
	assert.Equal(t, "1700000000000", doc.Submissions[0].ID)
	assert.Equal(t, time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC), doc.Submissions[0].SubmittedAt)
	assert.NotEmpty(t, doc.Submissions[1].ID)
	assert.Equal(t, 2024, doc.Submissions[1].SubmittedAt.Year())
}

func TestSeedRefusesToOverwrite(t *testing.T) {
	store := repository.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), portfolio.New("old", now)))
	ex, err := readExport(strings.NewReader(sample))
	require.NoError(t, err)

	_, err = seed(context.Background(), store, seedOptions{data: ex, now: now})
	require.ErrorIs(t, err, errNotEmpty)

	_, err = seed(context.Background(), store, seedOptions{data: ex, force: true, now: now})
	require.NoError(t, err)
	doc, _ := store.Load(context.Background())
	assert.Len(t, doc.Submissions, 2)
	assert.Equal(t, "old", doc.AdminSettings.PasswordHash)
}

func TestSeedPasswordOnly(t *testing.T) {
	store := repository.NewMemoryStore()
	orig := portfolio.New("old", now)
	orig.Content.CVURL = "/uploads/keep.pdf"
	require.NoError(t, store.Save(context.Background(), orig))

	_, err := seed(context.Background(), store, seedOptions{hash: "new", now: now})
	require.NoError(t, err)
	doc, _ := store.Load(context.Background())
	assert.Equal(t, "new", doc.AdminSettings.PasswordHash)
	assert.Equal(t, now.Format(time.RFC3339), doc.AdminSettings.LastPasswordChange)
	assert.Equal(t, "/uploads/keep.pdf", doc.Content.CVURL)
}

func TestReadExportRejectsGarbage(t *testing.T) {
	_, err := readExport(strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestSeedRequiresPasswordForNewDocument(t *testing.T) {
	ex, err := readExport(strings.NewReader(sample))
	require.NoError(t, err)
	store := repository.NewMemoryStore()

	_, err = seed(context.Background(), store, seedOptions{data: ex, now: now})
	require.ErrorIs(t, err, errNoPassword)
	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
