package job

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"

	"monetization-backend/internal/domains/promocode/service"
	"monetization-backend/internal/shared"
)

type fakePromos struct {
	service.ServiceInterface
	refreshed int
	err       error
}

func (f *fakePromos) RecountAll(context.Context) (int, error) {
	return f.refreshed, f.err
}

func TestRecountHandler(t *testing.T) {
	task := asynq.NewTask(shared.TypePromoCodeRecount, nil)

	assert.NoError(t, NewRecountHandler(&fakePromos{refreshed: 4}).ProcessTask(context.Background(), task))

	err := NewRecountHandler(&fakePromos{refreshed: 1, err: context.DeadlineExceeded}).ProcessTask(context.Background(), task)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
