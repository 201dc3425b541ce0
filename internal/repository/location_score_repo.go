package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gta-invest/propertymap/internal/platform/apperr"
	fs "github.com/gta-invest/propertymap/internal/platform/firestore"
	"github.com/gta-invest/propertymap/pkg/model"
)

// LocationScoreRepository handles Firestore read/write for location scores.
type LocationScoreRepository struct {
	client *firestore.Client
}

func NewLocationScoreRepository(client *firestore.Client) *LocationScoreRepository {
	return &LocationScoreRepository{client: client}
}

func (r *LocationScoreRepository) doc(id int64) *firestore.DocumentRef {
	return r.client.Collection(fs.LocationScoresCollection).Doc(strconv.FormatInt(id, 10))
}

// ListLocationScores loads every location score ordered by id.
func (r *LocationScoreRepository) ListLocationScores(ctx context.Context) ([]model.LocationScore, error) {
	iter := r.client.Collection(fs.LocationScoresCollection).Documents(ctx)
	defer iter.Stop()
	out := []model.LocationScore{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate location scores: %w", err)
		}
		var s model.LocationScore
		if err := doc.DataTo(&s); err != nil {
			return nil, fmt.Errorf("decode location score %s: %w", doc.Ref.ID, err)
		}
		if s.ID == 0 {
			s.ID, _ = strconv.ParseInt(doc.Ref.ID, 10, 64)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetLocationScore loads one location score by id.
func (r *LocationScoreRepository) GetLocationScore(ctx context.Context, id int64) (model.LocationScore, error) {
	snap, err := r.doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return model.LocationScore{}, apperr.NotFound(fmt.Sprintf("location score %d not found", id))
	}
	if err != nil {
		return model.LocationScore{}, fmt.Errorf("get location score %d: %w", id, err)
	}
	var s model.LocationScore
	if err := snap.DataTo(&s); err != nil {
		return model.LocationScore{}, fmt.Errorf("decode location score %d: %w", id, err)
	}
	s.ID = id
	return s, nil
}

// BatchUpsert writes location scores in batches.
func (r *LocationScoreRepository) BatchUpsert(ctx context.Context, scores []model.LocationScore) error {
	for start := 0; start < len(scores); start += batchSize {
		end := min(start+batchSize, len(scores))
		batch := r.client.Batch()
		for _, s := range scores[start:end] {
			if s.ID == 0 {
				return fmt.Errorf("location score %q has no id", s.Address)
			}
			batch.Set(r.doc(s.ID), s)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("commit batch [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}
