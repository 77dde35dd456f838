package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtmetrics/marginflow/internal/models"
)

func TestSeasonIDFromLabel(t *testing.T) {
	id, err := models.SeasonIDFromLabel("2022-23")
	require.NoError(t, err)
	assert.Equal(t, 22022, id)

	id, err = models.SeasonIDFromLabel("1999-00")
	require.NoError(t, err)
	assert.Equal(t, 21999, id)

	_, err = models.SeasonIDFromLabel("22")
	assert.Error(t, err)

	_, err = models.SeasonIDFromLabel("abcd-ef")
	assert.Error(t, err)
}

func TestIsScoringPlay(t *testing.T) {
	tests := []struct {
		name       string
		eventType  int
		actionType int
		scoring    bool
	}{
		{"made 2-pt shot", models.EventTypeMadeShot, 2, true},
		{"made 3-pt shot", models.EventTypeMadeShot, 3, true},
		{"made free throw", models.EventTypeFreeThrow, 1, true},
		{"missed free throw", models.EventTypeFreeThrow, 0, false},
		{"missed shot", models.EventTypeMissShot, 0, false},
		{"rebound or other", models.EventTypeOther, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := models.PlayEvent{EventType: tt.eventType, EventActionType: tt.actionType}
			assert.Equal(t, tt.scoring, e.IsScoringPlay())
		})
	}
}
