package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/vgb/internal/apperror"
	"github.com/sakif/vgb/internal/model"
)

type commentFixture struct {
	svc      *CommentService
	comments *fakeCommentRepo
	users    *fakeUserRepo
	gameID   string
}

func newCommentFixture(t *testing.T) commentFixture {
	t.Helper()
	ctx := context.Background()

	games := newFakeGameRepo()
	g := &model.Game{Title: "Halo", ReleaseDate: "2025-01-01", Genre: "Shooter", Platforms: model.Platforms{"Xbox"}}
	require.NoError(t, games.Create(ctx, g))

	users := newFakeUserRepo()
	users.users[aliceID.UserID] = &model.User{ID: aliceID.UserID, Username: "alice", Email: "a@x.io"}
	users.users[bobID.UserID] = &model.User{ID: bobID.UserID, Username: "bob", Email: "b@x.io"}

	comments := newFakeCommentRepo()
	return commentFixture{
		svc:      NewCommentService(comments, games, users, discardLogger()),
		comments: comments,
		users:    users,
		gameID:   g.ID,
	}
}

func TestCommentCreate(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, aliceID, f.gameID, "  can't wait  ")
	require.NoError(t, err)
	assert.Equal(t, "can't wait", c.Content)
	assert.Equal(t, "alice", c.Username)
	assert.Equal(t, aliceID.UserID, c.UserID)

	_, err = f.svc.Create(ctx, aliceID, f.gameID, "   ")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.Create(ctx, aliceID, "no-such-game", "hi")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCommentList_NewestFirstWithUsernames(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, c := range []*model.Comment{
		{GameID: f.gameID, UserID: aliceID.UserID, Content: "first", Timestamp: base},
		{GameID: f.gameID, UserID: bobID.UserID, Content: "third", Timestamp: base.Add(2 * time.Hour)},
		{GameID: f.gameID, UserID: "deleted-user", Content: "second", Timestamp: base.Add(time.Hour)},
	} {
		require.NoError(t, f.comments.Create(ctx, c), "comment %d", i)
	}

	list, err := f.svc.ListForGame(ctx, f.gameID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Content)
	assert.Equal(t, "bob", list[0].Username)
	assert.Equal(t, "second", list[1].Content)
	assert.Equal(t, UnknownUsername, list[1].Username)
	assert.Equal(t, "first", list[2].Content)
	assert.Equal(t, "alice", list[2].Username)

	empty, err := f.svc.ListForGame(ctx, "other-game")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestCommentList_UsernameResolvedAtReadTime(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, aliceID, f.gameID, "hello")
	require.NoError(t, err)

	f.users.users[aliceID.UserID].Username = "alice2"

	list, err := f.svc.ListForGame(ctx, f.gameID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alice2", list[0].Username)
}

func TestCommentDelete_OwnerOrAdmin(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	c1, err := f.svc.Create(ctx, aliceID, f.gameID, "mine")
	require.NoError(t, err)
	c2, err := f.svc.Create(ctx, aliceID, f.gameID, "also mine")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, bobID, c1.ID), apperror.ErrForbidden)
	assert.ErrorIs(t, f.svc.Delete(ctx, aliceID, "missing"), apperror.ErrNotFound)

	require.NoError(t, f.svc.Delete(ctx, aliceID, c1.ID))
	require.NoError(t, f.svc.Delete(ctx, adminID, c2.ID))

	list, err := f.svc.ListForGame(ctx, f.gameID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
