package usecase

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"fanvault/pkg/logger"
	"fanvault/pkg/queue"
	"fanvault/services/platform/internal/entitlement"
	"fanvault/services/platform/internal/entity"
	"fanvault/services/platform/internal/repo/memory"
	"fanvault/services/platform/internal/repo/repotest"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 4, 10, 15, 0, 0, 0, time.UTC)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}

type env struct {
	store     *memory.Store
	clock     *clock
	publisher *recordingPublisher
	log       *logger.Logger
	evaluator *entitlement.Evaluator
	creator   *entity.Creator
	supporter *entity.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	c := &clock{t: testNow}
	store := memory.New(memory.WithClock(c.Now))
	creator := repotest.SeedCreator(t, store, "creator")

	return &env{
		store:     store,
		clock:     c,
		publisher: &recordingPublisher{},
		log:       logger.NewWithOptions("error", true, io.Discard),
		evaluator: entitlement.NewEvaluator(store, entitlement.WithClock(c.Now)),
		creator:   creator,
		supporter: newUser(t, store, "fan@example.com"),
	}
}

func newUser(t *testing.T, store *memory.Store, email string) *entity.User {
	t.Helper()
	user := &entity.User{Email: email, PasswordHash: "x", Role: entity.RoleSupporter}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func (e *env) membership() MembershipUseCase {
	return NewMembershipUseCase(e.store, e.publisher, e.log, WithClock(e.clock.Now))
}

func (e *env) content() ContentUseCase {
	return NewContentUseCase(e.store, e.evaluator, nil, e.log)
}

func (e *env) comments() CommentUseCase {
	return NewCommentUseCase(e.store, e.evaluator, e.log)
}

func (e *env) post(t *testing.T, visibility entity.Visibility, price int64) *entity.Post {
	t.Helper()
	content := "full content of the post"
	media := "https://cdn.example.com/p.jpg"
	post := &entity.Post{
		CreatorID:  e.creator.ID,
		Title:      "post",
		Content:    &content,
		MediaURL:   &media,
		MediaType:  entity.MediaTypeImage,
		Visibility: visibility,
		Price:      price,
		Published:  true,
	}
	require.NoError(t, e.store.CreatePost(context.Background(), post))
	return post
}

func (e *env) reloadCreator(t *testing.T) *entity.Creator {
	t.Helper()
	c, err := e.store.GetCreator(context.Background(), e.creator.ID)
	require.NoError(t, err)
	return c
}

func (e *env) otherCreator(t *testing.T) *entity.Creator {
	t.Helper()
	return repotest.SeedCreator(t, e.store, "rival")
}
