package summaryrepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matevzk/povzetek/internal/domain/summaries"
)

func TestMemoryRepositoryInsertAssignsIDs(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	first, err := repo.Insert(ctx, summaries.Record{Input: "prvi"})
	require.NoError(t, err)
	second, err := repo.Insert(ctx, summaries.Record{Input: "drugi"})
	require.NoError(t, err)

	require.Equal(t, int64(1), first.ID)
	require.Equal(t, int64(2), second.ID)
}

func TestMemoryRepositoryListPagination(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	for _, input := range []string{"a", "b", "c", "d", "e"} {
		_, err := repo.Insert(ctx, summaries.Record{Input: input})
		require.NoError(t, err)
	}

	page, err := repo.List(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "b", page[0].Input)
	require.Equal(t, "c", page[1].Input)

	tail, err := repo.List(ctx, 4, 10)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	require.Equal(t, "e", tail[0].Input)

	empty, err := repo.List(ctx, 99, 10)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestMemoryRepositoryUpdateOutput(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	record, err := repo.Insert(ctx, summaries.Record{Input: "izvirnik"})
	require.NoError(t, err)

	updated, found, err := repo.UpdateOutput(ctx, record.ID, "povzetek")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "povzetek", updated.Output)

	_, found, err = repo.UpdateOutput(ctx, 99, "nič")
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryRepositoryUpdateParameters(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	record, err := repo.Insert(ctx, summaries.Record{Input: "izvirnik", NumWords: 50})
	require.NoError(t, err)

	updated, found, err := repo.UpdateParameters(ctx, record.ID, summaries.Parameters{
		NumWords:        200,
		IsBullet:        true,
		SummaryCategory: "dolg",
		NumBulletPoints: 9,
	})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 200, updated.NumWords)
	require.True(t, updated.IsBullet)

	// Other fields survive the parameter update.
	require.Equal(t, "izvirnik", updated.Input)
}

func TestMemoryRepositorySettings(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, found, err := repo.GetSetting(ctx, "api_endpoint")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, repo.PutSetting(ctx, "api_endpoint", "http://localhost:8080"))
	require.NoError(t, repo.PutSetting(ctx, "api_endpoint", "http://localhost:9090"))

	value, found, err := repo.GetSetting(ctx, "api_endpoint")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "http://localhost:9090", value)
}
