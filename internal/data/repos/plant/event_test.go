package plant

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/loopyhq/loopy-backend/internal/data/repos/testutil"
	"github.com/loopyhq/loopy-backend/internal/domain/plant"
)

func TestPlantEventRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewPlantEventRepo(db, testutil.Logger(t))
	userID := uuid.New()

	phase := 1
	variant := plant.VariantPot
	rows := []*plant.PlantEvent{
		{
			ID:           uuid.New(),
			UserID:       userID,
			EventType:    plant.EventPlantInit,
			PhaseAfter:   &phase,
			VariantAfter: &variant,
		},
		{
			ID:        uuid.New(),
			UserID:    userID,
			EventType: plant.EventTaskCompleted,
		},
		{
			ID:        uuid.New(),
			UserID:    userID,
			EventType: plant.EventTaskCompleted,
		},
	}
	if err := repo.Append(ctx, tx, rows); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := repo.Append(ctx, tx, nil); err != nil {
		t.Fatalf("Append empty: %v", err)
	}

	got, err := repo.ListByUserID(ctx, tx, userID, 10)
	if err != nil || len(got) != 3 {
		t.Fatalf("ListByUserID: err=%v len=%d", err, len(got))
	}

	if got, err := repo.ListByUserID(ctx, tx, userID, 2); err != nil || len(got) != 2 {
		t.Fatalf("ListByUserID limit 2: err=%v len=%d", err, len(got))
	}

	n, err := repo.CountByUserIDAndType(ctx, tx, userID, plant.EventTaskCompleted)
	if err != nil || n != 2 {
		t.Fatalf("CountByUserIDAndType: n=%d err=%v", n, err)
	}
	n, err = repo.CountByUserIDAndType(ctx, tx, userID, plant.EventPlantDeleted)
	if err != nil || n != 0 {
		t.Fatalf("CountByUserIDAndType absent type: n=%d err=%v", n, err)
	}
}
