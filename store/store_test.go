// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/featurevotes/testutil"
)

func TestCreateThenList(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := New(conn)
	ctx := context.Background()

	for _, title := range []string{"Dark mode", "Export to CSV", "Émoji ✨ support"} {
		created, err := s.Create(ctx, title)
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, title, created.Title)
		assert.Equal(t, 0, created.Votes)
		assert.False(t, created.CreatedAt.IsZero())

		features, err := s.List(ctx)
		require.NoError(t, err)

		var found bool
		for _, f := range features {
			if f.ID == created.ID {
				found = true
				assert.Equal(t, 0, f.Votes)
				assert.Equal(t, title, f.Title)
			}
		}
		assert.True(t, found, "created feature %q missing from list", title)
	}
}

func TestListEmptyReturnsEmptySlice(t *testing.T) {
	conn := testutil.SetupTestDB(t)

	features, err := New(conn).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, features)
	assert.Empty(t, features)
}

func TestListOrdering(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	old := testutil.CreateTestFeature(t, conn, "old popular", 5, base)
	newer := testutil.CreateTestFeature(t, conn, "new popular", 5, base.Add(time.Hour))
	low := testutil.CreateTestFeature(t, conn, "unpopular", 1, base.Add(2*time.Hour))

	features, err := New(conn).List(context.Background())
	require.NoError(t, err)
	require.Len(t, features, 3)

	assert.Equal(t, []int64{newer.ID, old.ID, low.ID},
		[]int64{features[0].ID, features[1].ID, features[2].ID})
	assert.True(t, features[1].CreatedAt.Equal(base))
}

func TestUpvoteIncrementsByOne(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := New(conn)
	ctx := context.Background()

	f, err := s.Create(ctx, "Dark mode")
	require.NoError(t, err)

	for want := 1; want <= 3; want++ {
		up, err := s.Upvote(ctx, f.ID)
		require.NoError(t, err)
		assert.Equal(t, want, up.Votes)
		assert.Equal(t, f.ID, up.ID)
		assert.True(t, up.CreatedAt.Equal(f.CreatedAt), "created_at must not change")
	}
}

func TestUpvoteUnknownMutatesNothing(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := New(conn)
	ctx := context.Background()

	f := testutil.CreateTestFeature(t, conn, "Dark mode", 2, time.Now())

	_, err := s.Upvote(ctx, f.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, testutil.GetVotes(t, conn, f.ID))
}

func TestConcurrentUpvotesAllCount(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := New(conn)
	f := testutil.CreateTestFeature(t, conn, "Dark mode", 0, time.Now())

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Upvote(context.Background(), f.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, n, testutil.GetVotes(t, conn, f.ID))
}

func TestStoreFailuresAreWrapped(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	boom := errors.New("disk on fire")
	mock.ExpectQuery(regexp.QuoteMeta("FROM features")).WillReturnError(boom)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO features")).WillReturnError(boom)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE features")).WillReturnError(boom)
	mock.ExpectRollback()

	s := New(conn)
	ctx := context.Background()

	_, err = s.List(ctx)
	assert.ErrorIs(t, err, boom)

	_, err = s.Create(ctx, "Dark mode")
	assert.ErrorIs(t, err, boom)

	_, err = s.Upvote(ctx, 1)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUsesInjectedClock(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO features")).
		WithArgs("Dark mode", at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	s := New(conn)
	s.now = func() time.Time { return at }

	f, err := s.Create(context.Background(), "Dark mode")
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.ID)
	assert.True(t, f.CreatedAt.Equal(at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpvoteNotFoundRollsBack(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE features")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err = New(conn).Upvote(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
