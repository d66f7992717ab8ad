package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/teamup-campus/teamup/internal/events"
	"github.com/teamup-campus/teamup/internal/models"
	mongorepo "github.com/teamup-campus/teamup/internal/repositories/mongo"
	pgrepo "github.com/teamup-campus/teamup/internal/repositories/postgres"
	"github.com/teamup-campus/teamup/internal/utils"
)

type fakeProfiles struct {
	rows   map[string]models.Profile
	getErr error
	upErr  error
}

func newFakeProfiles(ps ...models.Profile) *fakeProfiles {
	f := &fakeProfiles{rows: map[string]models.Profile{}}
	for _, p := range ps {
		f.rows[p.ID] = p
	}
	return f
}

func (f *fakeProfiles) GetByID(_ context.Context, id string) (*models.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.rows[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProfiles) Upsert(_ context.Context, p *models.Profile) error {
	if f.upErr != nil {
		return f.upErr
	}
	f.rows[p.ID] = *p
	return nil
}

func (f *fakeProfiles) ListByIDs(_ context.Context, ids []string) ([]models.Profile, error) {
	var out []models.Profile
	for _, id := range ids {
		if p, ok := f.rows[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakePosts struct {
	rows      []models.Post // newest first
	listCalls int
	lastList  pgrepo.PostFilter
}

func (f *fakePosts) Create(_ context.Context, p *models.Post) error {
	f.rows = append([]models.Post{*p}, f.rows...)
	return nil
}

func (f *fakePosts) Update(_ context.Context, p *models.Post) error {
	for i := range f.rows {
		if f.rows[i].ID == p.ID {
			f.rows[i] = *p
			return nil
		}
	}
	return utils.ErrNotFound
}

func (f *fakePosts) Delete(_ context.Context, id string) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return utils.ErrNotFound
}

func (f *fakePosts) GetByID(_ context.Context, id string) (*models.Post, error) {
	for _, p := range f.rows {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakePosts) List(_ context.Context, flt pgrepo.PostFilter) ([]models.Post, error) {
	f.listCalls++
	f.lastList = flt
	out := append([]models.Post(nil), f.rows...)
	if flt.Limit > 0 && len(out) > flt.Limit {
		out = out[:flt.Limit]
	}
	return out, nil
}

func (f *fakePosts) LatestPerUser(_ context.Context) ([]models.Post, error) {
	seen := map[string]bool{}
	var out []models.Post
	for _, p := range f.rows {
		if seen[p.UserID] {
			continue
		}
		seen[p.UserID] = true
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePosts) LatestByUser(ctx context.Context, userID string) (*models.Post, error) {
	for _, p := range f.rows {
		if p.UserID == userID {
			return &p, nil
		}
	}
	return nil, utils.ErrNotFound
}

type fakeInteractions struct {
	mu   sync.Mutex
	rows []models.Interaction
	err  error
}

func (f *fakeInteractions) Insert(_ context.Context, in *models.Interaction) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.rows = append(f.rows, *in)
	f.mu.Unlock()
	return nil
}

func (f *fakeInteractions) ListByActor(_ context.Context, from string) ([]models.Interaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Interaction
	for _, r := range f.rows {
		if r.FromUserID == from {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeAudits struct {
	rows []models.RecommendationLog
	err  error
}

func (f *fakeAudits) Insert(_ context.Context, rec *models.RecommendationLog) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, *rec)
	return nil
}

func (f *fakeAudits) ListByUser(_ context.Context, userID string, limit int) ([]models.RecommendationLog, error) {
	var out []models.RecommendationLog
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeChats struct {
	byID map[string]*models.Chat
}

func newFakeChats() *fakeChats { return &fakeChats{byID: map[string]*models.Chat{}} }

func (f *fakeChats) GetOrCreateDirect(_ context.Context, chatID, a, b string) (*models.Chat, error) {
	key, members := mongorepo.PairKey(a, b)
	for _, c := range f.byID {
		if c.PairKey == key {
			return c, nil
		}
	}
	c := &models.Chat{ChatID: chatID, MemberIDs: members, PairKey: key, CreatedAt: time.Now().UTC()}
	f.byID[chatID] = c
	return c, nil
}

func (f *fakeChats) GetByChatID(_ context.Context, id string) (*models.Chat, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return c, nil
}

func (f *fakeChats) ListByMember(_ context.Context, userID string, _ int64) ([]models.Chat, error) {
	out := []models.Chat{}
	for _, c := range f.byID {
		if c.HasMember(userID) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChatID < out[j].ChatID })
	return out, nil
}

func (f *fakeChats) Touch(_ context.Context, id string, at time.Time) error {
	if c, ok := f.byID[id]; ok {
		c.LastMessageAt = &at
	}
	return nil
}

type fakeMessages struct {
	rows []models.Message
}

func (f *fakeMessages) Insert(_ context.Context, m *models.Message) error {
	f.rows = append(f.rows, *m)
	return nil
}

func (f *fakeMessages) ListByChat(_ context.Context, chatID string, limit int64) ([]models.Message, error) {
	out := []models.Message{}
	for _, m := range f.rows {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	if int64(len(out)) > limit {
		out = out[int64(len(out))-limit:]
	}
	return out, nil
}

type published struct {
	channel string
	payload any
}

type fakePublisher struct {
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, payload any) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{channel, payload})
	return nil
}

type tracked struct {
	from, to, action string
	meta             map[string]any
}

type fakeTracker struct {
	calls []tracked
}

func (f *fakeTracker) Track(_ context.Context, from, to, action string, meta map[string]any) {
	f.calls = append(f.calls, tracked{from, to, action, meta})
}

type fakeQueue struct {
	events []events.InteractionEvent
	err    error
}

func (f *fakeQueue) EnqueueInteraction(_ context.Context, ev events.InteractionEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}
