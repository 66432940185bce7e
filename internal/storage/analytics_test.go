package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/medical-contacts/internal/lib/displayid"
	"github.com/magabrotheeeer/medical-contacts/internal/models"
)

func TestStorage_PatientGrowth(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	u := createTestUser(t)

	dates := []time.Time{
		time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC),
		time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		p, err := models.NewPatient(u.ID, displayid.Format(int64(i+1)), models.PatientInput{Name: "P"}, d)
		require.NoError(t, err)
		_, err = testStorage.CreatePatient(ctx, p)
		require.NoError(t, err)
	}

	growth, err := testStorage.PatientGrowth(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.MonthlyGrowth{
		{Year: 2023, Month: 12, Count: 1},
		{Year: 2024, Month: 1, Count: 1},
		{Year: 2024, Month: 2, Count: 2},
	}, growth)

	empty := createTestUser(t)
	growth, err = testStorage.PatientGrowth(ctx, empty.ID)
	require.NoError(t, err)
	assert.Empty(t, growth)
}
