package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamup-campus/teamup/internal/cache"
	"github.com/teamup-campus/teamup/internal/models"
	"github.com/teamup-campus/teamup/internal/utils"
	"gorm.io/datatypes"
)

func newTestPostService(posts *fakePosts, tracker InteractionTracker) (PostService, *cache.MemoryCache) {
	log, _ := test.NewNullLogger()
	c := cache.NewMemoryCache()
	return NewPostService(posts, c, time.Minute, tracker, log), c
}

func TestPostService_CreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	posts := &fakePosts{}
	svc, _ := newTestPostService(posts, nil)

	_, err := svc.Create(ctx, "u1", PostInput{})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument), "title required")

	_, err = svc.Create(ctx, "u1", PostInput{Title: strptr("x"), Skills: datatypes.JSON(`[oops`)})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument), "facet must be json")

	p, err := svc.Create(ctx, "u1", PostInput{
		Title:    strptr("  Hackathon team  "),
		Skills:   datatypes.JSON(`"Go, SQL"`),
		TeamSize: intptr(4),
	})
	require.NoError(t, err)
	assert.Equal(t, "Hackathon team", p.Title)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, 4, *p.TeamSize)

	_, err = svc.Update(ctx, "u2", p.ID, PostInput{Title: strptr("mine now")})
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))

	updated, err := svc.Update(ctx, "u1", p.ID, PostInput{Interests: datatypes.JSON(`["infra"]`)})
	require.NoError(t, err)
	assert.Equal(t, "Hackathon team", updated.Title, "omitted fields unchanged")
	assert.JSONEq(t, `["infra"]`, string(updated.Interests))
	assert.JSONEq(t, `"Go, SQL"`, string(updated.Skills))

	_, err = svc.Update(ctx, "u1", p.ID, PostInput{Title: strptr(" ")})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	assert.True(t, utils.IsCode(svc.Delete(ctx, "u2", p.ID), utils.CodeForbidden))
	require.NoError(t, svc.Delete(ctx, "u1", p.ID))
	assert.True(t, utils.IsCode(svc.Delete(ctx, "u1", p.ID), utils.CodeNotFound))
}

func TestPostService_GetTracksViews(t *testing.T) {
	ctx := context.Background()
	posts := &fakePosts{rows: []models.Post{{ID: "p1", UserID: "author"}}}
	tracker := &fakeTracker{}
	svc, _ := newTestPostService(posts, tracker)

	_, err := svc.Get(ctx, "viewer", "p1")
	require.NoError(t, err)
	_, err = svc.Get(ctx, "author", "p1")
	require.NoError(t, err)

	require.Len(t, tracker.calls, 1, "self views are not tracked")
	assert.Equal(t, tracked{from: "viewer", to: "author", action: "view", meta: map[string]any{"post_id": "p1"}}, tracker.calls[0])

	_, err = svc.Get(ctx, "viewer", "missing")
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestPostService_FeedFilters(t *testing.T) {
	ctx := context.Background()
	posts := &fakePosts{rows: []models.Post{
		{ID: "p1", UserID: "a", Skills: datatypes.JSON(`["Go","SQL"]`), Interests: datatypes.JSON(`"infra, web"`)},
		{ID: "p2", UserID: "b", Skills: datatypes.JSON(`{"Python":true}`)},
		{ID: "p3", UserID: "c", Skills: datatypes.JSON(`"go"`), Interests: datatypes.JSON(`null`)},
	}}
	svc, _ := newTestPostService(posts, nil)

	got, err := svc.Feed(ctx, FeedQuery{Skill: "GO"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p3"}, postIDs(got))
	assert.Equal(t, feedScanLimit, posts.lastList.Limit)

	got, err = svc.Feed(ctx, FeedQuery{Skill: "go", Interest: "web"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, postIDs(got))

	got, err = svc.Feed(ctx, FeedQuery{Skill: "python", Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, postIDs(got))

	got, err = svc.Feed(ctx, FeedQuery{Limit: 2, Department: "CS"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "CS", posts.lastList.Department)
}

func TestPostService_FeedCache(t *testing.T) {
	ctx := context.Background()
	posts := &fakePosts{rows: []models.Post{{ID: "p1", UserID: "a"}}}
	svc, _ := newTestPostService(posts, nil)

	_, err := svc.Feed(ctx, FeedQuery{})
	require.NoError(t, err)
	got, err := svc.Feed(ctx, FeedQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, posts.listCalls, "second read served from cache")
	assert.Len(t, got, 1)

	_, err = svc.Create(ctx, "a", PostInput{Title: strptr("new")})
	require.NoError(t, err)

	got, err = svc.Feed(ctx, FeedQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, posts.listCalls, "writes invalidate the feed")
	assert.Len(t, got, 2)
}

func postIDs(ps []models.Post) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestPostService_Latest(t *testing.T) {
	ctx := context.Background()
	posts := &fakePosts{rows: []models.Post{
		{ID: "p-new", UserID: "u1", Title: "new"},
		{ID: "p-old", UserID: "u1", Title: "old"},
	}}
	svc, _ := newTestPostService(posts, nil)

	p, err := svc.Latest(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "p-new", p.ID)

	_, err = svc.Latest(ctx, "u2")
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	_, err = svc.Latest(ctx, "")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestPostService_TitleLengthCountsCharacters(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestPostService(&fakePosts{}, nil)

	korean := strings.Repeat("팀", maxTitleLen)
	p, err := svc.Create(ctx, "u1", PostInput{Title: strptr(korean)})
	require.NoError(t, err)
	assert.Equal(t, korean, p.Title)

	_, err = svc.Create(ctx, "u1", PostInput{Title: strptr(korean + "원")})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}
