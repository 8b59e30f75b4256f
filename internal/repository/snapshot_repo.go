package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/weiwei-tsao/laisee-map/apps/api/pkg/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	snapshotCollection = "stats_snapshots"
	latestSnapshotID   = "latest"
	snapshotIDLayout   = "20060102T150405Z"
)

// ErrSnapshotNotFound is returned when no snapshot has been saved yet.
var ErrSnapshotNotFound = errors.New("stats snapshot not found")

// SnapshotRepository persists point-in-time summaries of the survey data.
// Each save writes a dated history document and overwrites stats_snapshots/latest.
type SnapshotRepository struct {
	client *firestore.Client
	now    func() time.Time
}

func NewSnapshotRepository(client *firestore.Client) *SnapshotRepository {
	return &SnapshotRepository{client: client, now: time.Now}
}

// Save stamps and stores a snapshot, returning it as stored.
func (r *SnapshotRepository) Save(ctx context.Context, summary model.Summary, sourceRows int) (model.StatsSnapshot, error) {
	takenAt := r.now().UTC()
	snap := model.StatsSnapshot{
		ID:         takenAt.Format(snapshotIDLayout),
		TakenAt:    takenAt,
		Summary:    summary,
		SourceRows: sourceRows,
	}

	col := r.client.Collection(snapshotCollection)
	batch := r.client.Batch()
	batch.Set(col.Doc(snap.ID), snap)
	batch.Set(col.Doc(latestSnapshotID), snap)
	if _, err := batch.Commit(ctx); err != nil {
		return model.StatsSnapshot{}, fmt.Errorf("save stats snapshot %s: %w", snap.ID, err)
	}
	return snap, nil
}

// Latest returns the most recently saved snapshot.
func (r *SnapshotRepository) Latest(ctx context.Context) (model.StatsSnapshot, error) {
	doc, err := r.client.Collection(snapshotCollection).Doc(latestSnapshotID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return model.StatsSnapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return model.StatsSnapshot{}, fmt.Errorf("get latest snapshot: %w", err)
	}
	var snap model.StatsSnapshot
	if err := doc.DataTo(&snap); err != nil {
		return model.StatsSnapshot{}, fmt.Errorf("decode latest snapshot: %w", err)
	}
	return snap, nil
}

// History lists dated snapshots, newest first.
func (r *SnapshotRepository) History(ctx context.Context, limit int) ([]model.StatsSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	iter := r.client.Collection(snapshotCollection).
		OrderBy("takenAt", firestore.Desc).
		Limit(limit + 1).
		Documents(ctx)
	defer iter.Stop()

	var out []model.StatsSnapshot
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate snapshots: %w", err)
		}
		if doc.Ref.ID == latestSnapshotID {
			continue
		}
		var snap model.StatsSnapshot
		if err := doc.DataTo(&snap); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", doc.Ref.ID, err)
		}
		out = append(out, snap)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
