package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gta-invest/propertymap/internal/platform/apperr"
	fs "github.com/gta-invest/propertymap/internal/platform/firestore"
	"github.com/gta-invest/propertymap/pkg/model"
)

// SnapshotRepository manages the stats/dashboard singleton document.
type SnapshotRepository struct {
	client *firestore.Client
}

func NewSnapshotRepository(client *firestore.Client) *SnapshotRepository {
	return &SnapshotRepository{client: client}
}

func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, snap model.DashboardSnapshot) (model.DashboardSnapshot, error) {
	snap.LastUpdated = time.Now().UTC()
	ref := r.client.Collection(fs.StatsCollection).Doc("dashboard")
	if _, err := ref.Set(ctx, snap); err != nil {
		return model.DashboardSnapshot{}, fmt.Errorf("save dashboard snapshot: %w", err)
	}
	return snap, nil
}

func (r *SnapshotRepository) GetSnapshot(ctx context.Context) (model.DashboardSnapshot, error) {
	ref := r.client.Collection(fs.StatsCollection).Doc("dashboard")
	doc, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return model.DashboardSnapshot{}, apperr.NotFound("dashboard snapshot has not been computed")
	}
	if err != nil {
		return model.DashboardSnapshot{}, fmt.Errorf("get dashboard snapshot: %w", err)
	}
	var snap model.DashboardSnapshot
	if err := doc.DataTo(&snap); err != nil {
		return model.DashboardSnapshot{}, fmt.Errorf("decode dashboard snapshot: %w", err)
	}
	return snap, nil
}
