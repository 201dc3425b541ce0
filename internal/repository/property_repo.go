package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gta-invest/propertymap/internal/platform/apperr"
	fs "github.com/gta-invest/propertymap/internal/platform/firestore"
	"github.com/gta-invest/propertymap/pkg/model"
)

const (
	batchSize          = 400
	countersCollection = "counters"
)

// PropertyRepository handles Firestore read/write for properties.
type PropertyRepository struct {
	client *firestore.Client
}

func NewPropertyRepository(client *firestore.Client) *PropertyRepository {
	return &PropertyRepository{client: client}
}

func (r *PropertyRepository) doc(id int64) *firestore.DocumentRef {
	return r.client.Collection(fs.PropertiesCollection).Doc(strconv.FormatInt(id, 10))
}

// ListProperties loads every property ordered by id.
func (r *PropertyRepository) ListProperties(ctx context.Context) ([]model.Property, error) {
	iter := r.client.Collection(fs.PropertiesCollection).Documents(ctx)
	defer iter.Stop()
	out := []model.Property{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate properties: %w", err)
		}
		var p model.Property
		if err := doc.DataTo(&p); err != nil {
			return nil, fmt.Errorf("decode property %s: %w", doc.Ref.ID, err)
		}
		if p.ID == 0 {
			p.ID, _ = strconv.ParseInt(doc.Ref.ID, 10, 64)
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetProperty loads one property by id.
func (r *PropertyRepository) GetProperty(ctx context.Context, id int64) (model.Property, error) {
	snap, err := r.doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return model.Property{}, apperr.NotFound(fmt.Sprintf("property %d not found", id))
	}
	if err != nil {
		return model.Property{}, fmt.Errorf("get property %d: %w", id, err)
	}
	var p model.Property
	if err := snap.DataTo(&p); err != nil {
		return model.Property{}, fmt.Errorf("decode property %d: %w", id, err)
	}
	p.ID = id
	return p, nil
}

// CreateProperty assigns the next id from the counter document and stores p.
func (r *PropertyRepository) CreateProperty(ctx context.Context, p model.Property) (model.Property, error) {
	counter := r.client.Collection(countersCollection).Doc(fs.PropertiesCollection)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		next, err := readCounter(tx, counter)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		p.ID = next
		p.CreatedAt = now
		p.UpdatedAt = now
		if err := tx.Set(counter, map[string]any{"next": next + 1}); err != nil {
			return err
		}
		return tx.Create(r.doc(p.ID), p)
	})
	if err != nil {
		return model.Property{}, fmt.Errorf("create property: %w", err)
	}
	return p, nil
}

// UpdateProperty replaces an existing property, keeping its creation time.
func (r *PropertyRepository) UpdateProperty(ctx context.Context, p model.Property) (model.Property, error) {
	existing, err := r.GetProperty(ctx, p.ID)
	if err != nil {
		return model.Property{}, err
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	if _, err := r.doc(p.ID).Set(ctx, p); err != nil {
		return model.Property{}, fmt.Errorf("update property %d: %w", p.ID, err)
	}
	return p, nil
}

// DeleteProperty removes a property; a missing id is a NotFound error.
func (r *PropertyRepository) DeleteProperty(ctx context.Context, id int64) error {
	_, err := r.doc(id).Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return apperr.NotFound(fmt.Sprintf("property %d not found", id))
	}
	if err != nil {
		return fmt.Errorf("delete property %d: %w", id, err)
	}
	return nil
}

// BatchUpsert writes properties in batches to reduce round trips and moves the
// id counter past the highest written id.
func (r *PropertyRepository) BatchUpsert(ctx context.Context, properties []model.Property) error {
	if len(properties) == 0 {
		return nil
	}
	var maxID int64
	for start := 0; start < len(properties); start += batchSize {
		end := min(start+batchSize, len(properties))
		batch := r.client.Batch()
		for _, p := range properties[start:end] {
			if p.ID == 0 {
				return fmt.Errorf("property %q has no id", p.Address)
			}
			maxID = max(maxID, p.ID)
			batch.Set(r.doc(p.ID), p)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("commit batch [%d:%d]: %w", start, end, err)
		}
	}
	return bumpCounter(ctx, r.client, r.client.Collection(countersCollection).Doc(fs.PropertiesCollection), maxID+1)
}

func readCounter(tx *firestore.Transaction, ref *firestore.DocumentRef) (int64, error) {
	snap, err := tx.Get(ref)
	if status.Code(err) == codes.NotFound {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	v, err := snap.DataAt("next")
	if err != nil {
		return 1, nil
	}
	if n, ok := v.(int64); ok && n > 0 {
		return n, nil
	}
	return 1, nil
}

func bumpCounter(ctx context.Context, client *firestore.Client, ref *firestore.DocumentRef, atLeast int64) error {
	err := client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		next, err := readCounter(tx, ref)
		if err != nil {
			return err
		}
		if next >= atLeast {
			return nil
		}
		return tx.Set(ref, map[string]any{"next": atLeast})
	})
	if err != nil {
		return fmt.Errorf("bump counter %s: %w", ref.ID, err)
	}
	return nil
}
