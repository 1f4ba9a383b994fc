package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/portfolio-site/portfolio-api/internal/portfolio"
)

// MongoStore keeps the document in a collection under the fixed _id "portfolio".
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(col *mongo.Collection) *MongoStore {
	return &MongoStore{col: col}
}

func (m *MongoStore) Load(ctx context.Context) (*portfolio.Document, error) {
	var d portfolio.Document
	err := m.col.FindOne(ctx, bson.M{"_id": portfolio.DocumentID}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find portfolio: %w", err)
	}
	if d.Submissions == nil {
		d.Submissions = []portfolio.Submission{}
	}
	return &d, nil
}

func (m *MongoStore) Save(ctx context.Context, doc *portfolio.Document) error {
	doc.ID = portfolio.DocumentID
	_, err := m.col.ReplaceOne(ctx, bson.M{"_id": portfolio.DocumentID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace portfolio: %w", err)
	}
	return nil
}
