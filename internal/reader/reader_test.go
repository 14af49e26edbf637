package reader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"fulfillment-engine/internal/domain"
	"fulfillment-engine/internal/repository"
)

func TestReader_Current(t *testing.T) {
	store := repository.NewMemoryStore()
	rd := New(store)
	ctx := context.Background()

	// case 1: empty store.
	overview, err := rd.Current(ctx)
	assert.NoError(t, err)
	assert.Equal(t, Overview{AccuracyRate: 0, Total: 0, Status: StatusNoData}, overview)

	// case 2: all successes -> GREEN.
	for i := 0; i < 20; i++ {
		store.Record(ctx, true, nil)
	}
	overview, err = rd.Current(ctx)
	assert.NoError(t, err)
	assert.Equal(t, StatusGreen, overview.Status)
	assert.Equal(t, 100.0, overview.AccuracyRate)
	assert.Equal(t, 20, overview.Total)

	// case 3: accuracy dropping below 95 -> AMBER.
	for i := 0; i < 3; i++ {
		store.Record(ctx, false, &domain.ErrorInfo{Code: "DeliveryFailed"})
	}
	overview, err = rd.Current(ctx)
	assert.NoError(t, err)
	assert.Equal(t, StatusAmber, overview.Status)

	// case 4: below 80 -> RED.
	for i := 0; i < 10; i++ {
		store.Record(ctx, false, &domain.ErrorInfo{Code: "DeliveryFailed"})
	}
	overview, err = rd.Current(ctx)
	assert.NoError(t, err)
	assert.Equal(t, StatusRed, overview.Status)
}
