package handlers_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jmfallon/beepbeep/internal/store"
	domain "github.com/jmfallon/beepbeep/pkg/types"
)

// memStore is an in-memory stand-in for the datastore slices the handlers
// consume.
type memStore struct {
	mu       sync.Mutex
	drafts   map[string]*domain.DraftListing
	keywords map[string]bool
	sku      *domain.SkuSettings
	policies *domain.BusinessPolicies
	discount *domain.DiscountSettings
	override *domain.DescriptionOverride
	tokens   map[string]*domain.OAuthToken
	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		drafts:   make(map[string]*domain.DraftListing),
		keywords: make(map[string]bool),
		tokens:   make(map[string]*domain.OAuthToken),
	}
}

func (m *memStore) CreateDraft(_ context.Context, d *domain.DraftListing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	cp := *d
	m.drafts[d.ID] = &cp
	return nil
}

func (m *memStore) GetDraft(_ context.Context, _, id string) (*domain.DraftListing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	d, ok := m.drafts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memStore) ListDrafts(context.Context, string) ([]domain.DraftListing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]domain.DraftListing, 0, len(m.drafts))
	for _, d := range m.drafts {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateDraft(_ context.Context, d *domain.DraftListing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	m.drafts[d.ID] = &cp
	return nil
}

func (m *memStore) DeleteDraft(_ context.Context, _, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drafts[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.drafts, id)
	return nil
}

func (m *memStore) ListBannedKeywords(context.Context, string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.keywords))
	for kw := range m.keywords {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) AddBannedKeyword(_ context.Context, _, kw string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.keywords[strings.ToLower(kw)] = true
	return nil
}

func (m *memStore) RemoveBannedKeyword(_ context.Context, _, kw string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keywords, strings.ToLower(kw))
	return nil
}

func (m *memStore) GetSkuSettings(context.Context, string) (*domain.SkuSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sku == nil {
		return nil, store.ErrNotFound
	}
	cp := *m.sku
	return &cp, nil
}

func (m *memStore) SetSkuSettings(_ context.Context, s *domain.SkuSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	// Mirror the store semantics: the counter never decreases.
	if m.sku != nil && m.sku.Counter > cp.Counter {
		cp.Counter = m.sku.Counter
	}
	m.sku = &cp
	return nil
}

func (m *memStore) GetPolicies(context.Context, string) (*domain.BusinessPolicies, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.policies == nil {
		return nil, store.ErrNotFound
	}
	cp := *m.policies
	return &cp, nil
}

func (m *memStore) SetPolicies(_ context.Context, p *domain.BusinessPolicies) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.policies = &cp
	return nil
}

func (m *memStore) GetDiscountSettings(context.Context, string) (*domain.DiscountSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.discount == nil {
		return nil, store.ErrNotFound
	}
	cp := *m.discount
	return &cp, nil
}

func (m *memStore) SetDiscountSettings(_ context.Context, s *domain.DiscountSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.discount = &cp
	return nil
}

func (m *memStore) GetDescriptionOverride(context.Context, string) (*domain.DescriptionOverride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.override == nil {
		return nil, store.ErrNotFound
	}
	cp := *m.override
	return &cp, nil
}

func (m *memStore) SetDescriptionOverride(_ context.Context, o *domain.DescriptionOverride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.override = &cp
	return nil
}

func (m *memStore) SetToken(_ context.Context, tok *domain.OAuthToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tok
	m.tokens[tok.UserID] = &cp
	return nil
}

func (m *memStore) DeleteToken(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, userID)
	return nil
}

func (m *memStore) Ping(context.Context) error {
	return m.failWith
}
