package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/inventory/internal/db"
	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/repo"
	"github.com/Skotchmaster/inventory/internal/tokens"
)

type publishedEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: event.(map[string]any)})
	return nil
}

func (p *fakePublisher) last(t *testing.T) publishedEvent {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.events)
	return p.events[len(p.events)-1]
}

type fakeIndex struct {
	docs      map[uuid.UUID]models.Product
	searchErr error
	searched  bool
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[uuid.UUID]models.Product{}}
}

func (f *fakeIndex) IndexProduct(_ context.Context, p models.Product) error {
	f.docs[p.ID] = p
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id uuid.UUID) error {
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, owner uuid.UUID, _ string, _, _ int) (int64, []models.Product, error) {
	f.searched = true
	if f.searchErr != nil {
		return 0, nil, f.searchErr
	}
	var out []models.Product
	for _, p := range f.docs {
		if p.OwnerID == owner {
			out = append(out, p)
		}
	}
	return int64(len(out)), out, nil
}

type testEnv struct {
	Repo     *repo.GormRepo
	Auth     *AuthService
	Products *ProductService
	Events   *fakePublisher
	Index    *fakeIndex
	Tokens   *tokens.Issuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	gdb, err := db.Open(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := &repo.GormRepo{DB: gdb}
	events := &fakePublisher{}
	index := newFakeIndex()
	issuer := tokens.NewIssuer([]byte("test-secret"), 0)

	return &testEnv{
		Repo:     r,
		Auth:     &AuthService{Repo: r, Tokens: issuer, Events: events},
		Products: &ProductService{Repo: r, Index: index, Events: events, StrictDelete: true},
		Events:   events,
		Index:    index,
		Tokens:   issuer,
	}
}

var errBroker = errors.New("broker down")
