package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/eventsync/internal/common"
	"github.com/dmitrijs2005/eventsync/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventList(t *testing.T) {
	l := EventList{
		{ID: "a", RecurrenceGroupID: "s", RelatedGroupID: "g1"},
		{ID: "b", RecurrenceGroupID: "s"},
		{ID: "c", RelatedGroupID: "g1"},
	}
	ctx := context.Background()

	series, err := l.Series(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, series, 2)

	linked, err := l.Linked(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []*models.Event{l[0], l[2]}, linked)

	none, err := l.Linked(ctx, "g2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAnswers(t *testing.T) {
	a := Answers{PromptDeleteLinkedGroup: true}

	yes, err := a.Confirm(context.Background(), PromptDeleteLinkedGroup)
	require.NoError(t, err)
	assert.True(t, yes)

	_, err = a.Confirm(context.Background(), PromptDeleteSeriesForward)
	assert.ErrorIs(t, err, common.ErrConfirmationRequired)
}
