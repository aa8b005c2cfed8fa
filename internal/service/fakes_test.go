package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/digkill/PromptLibrary/internal/billing"
	"github.com/digkill/PromptLibrary/internal/entitlement"
	"github.com/digkill/PromptLibrary/internal/models"
	"github.com/digkill/PromptLibrary/internal/usage"
)

var errStore = errors.New("store failure")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTracker() *usage.Tracker {
	return usage.NewTracker(usage.NewMemoryStore(), discardLogger(), time.UTC)
}

func accountFor(id int64, role entitlement.Role) Account {
	plan := models.PlanFree
	switch role {
	case entitlement.RoleStandard:
		plan = models.PlanStandard
	case entitlement.RolePremium:
		plan = models.PlanPremium
	}
	return Account{
		User:        &models.User{ID: id, Email: "user@example.com", IsAdmin: role == entitlement.RoleAdmin},
		Plan:        plan,
		Role:        role,
		Permissions: entitlement.ResolvePermissions(role),
	}
}

func catalogPrompt(id, category string, plan models.PlanType, tags ...string) models.Prompt {
	return models.Prompt{
		ID:       id,
		Title:    "Prompt " + id,
		Content:  "Write about {{topic}} for " + id,
		Category: category,
		UseCase:  []string{},
		Tags:     tags,
		PlanType: plan,
	}
}

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[int64]*models.User{}}
}

func (m *memUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memUsers) Create(_ context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	copied := *user
	copied.ID = m.nextID
	m.users[copied.ID] = &copied
	out := copied
	return &out, nil
}

func (m *memUsers) List(_ context.Context, limit, offset int) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memUsers) SetAdmin(_ context.Context, userID int64, isAdmin bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.IsAdmin = isAdmin
	}
	return nil
}

type memSubs struct {
	byUser map[int64]models.Subscription
}

func newMemSubs() *memSubs {
	return &memSubs{byUser: map[int64]models.Subscription{}}
}

func (m *memSubs) GetByUserID(_ context.Context, userID int64) (*models.Subscription, error) {
	if s, ok := m.byUser[userID]; ok {
		return &s, nil
	}
	return nil, nil
}

func (m *memSubs) GetByCustomerID(_ context.Context, customerID string) (*models.Subscription, error) {
	for _, s := range m.byUser {
		if s.StripeCustomerID == customerID {
			return &s, nil
		}
	}
	return nil, nil
}

func (m *memSubs) Upsert(_ context.Context, s *models.Subscription) error {
	next := *s
	if prev, ok := m.byUser[s.UserID]; ok && next.StripeCustomerID == "" {
		next.StripeCustomerID = prev.StripeCustomerID
	}
	m.byUser[s.UserID] = next
	return nil
}

type memPrompts struct {
	items   []models.Prompt
	failGet bool
}

func newMemPrompts(prompts ...models.Prompt) *memPrompts {
	return &memPrompts{items: slices.Clone(prompts)}
}

func (m *memPrompts) ListCatalog(_ context.Context) ([]models.Prompt, error) {
	out := []models.Prompt{}
	for _, p := range m.items {
		if p.OwnerID == nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPrompts) ListByOwner(_ context.Context, ownerID int64) ([]models.Prompt, error) {
	out := []models.Prompt{}
	for _, p := range m.items {
		if p.OwnerID != nil && *p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPrompts) ListByIDs(_ context.Context, ids []string) ([]models.Prompt, error) {
	out := []models.Prompt{}
	for _, p := range m.items {
		if slices.Contains(ids, p.ID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPrompts) GetByID(_ context.Context, id string) (*models.Prompt, error) {
	if m.failGet {
		return nil, errStore
	}
	for _, p := range m.items {
		if p.ID == id {
			copied := p
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memPrompts) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	owned, _ := m.ListByOwner(ctx, ownerID)
	return len(owned), nil
}

func (m *memPrompts) Upsert(_ context.Context, p *models.Prompt) (*models.Prompt, error) {
	for i := range m.items {
		if m.items[i].ID == p.ID {
			m.items[i] = *p
			copied := *p
			return &copied, nil
		}
	}
	m.items = append(m.items, *p)
	copied := *p
	return &copied, nil
}

func (m *memPrompts) Delete(_ context.Context, id string) error {
	m.items = slices.DeleteFunc(m.items, func(p models.Prompt) bool { return p.ID == id })
	return nil
}

type memFavorites struct {
	byUser map[int64][]string
}

func newMemFavorites() *memFavorites {
	return &memFavorites{byUser: map[int64][]string{}}
}

func (m *memFavorites) List(_ context.Context, userID int64) ([]string, error) {
	return append([]string{}, m.byUser[userID]...), nil
}

func (m *memFavorites) Add(_ context.Context, userID int64, promptID string) error {
	if !slices.Contains(m.byUser[userID], promptID) {
		m.byUser[userID] = append(m.byUser[userID], promptID)
	}
	return nil
}

func (m *memFavorites) Remove(_ context.Context, userID int64, promptID string) error {
	m.byUser[userID] = slices.DeleteFunc(m.byUser[userID], func(v string) bool { return v == promptID })
	return nil
}

type memFolders struct {
	items []models.FavoriteFolder
}

func (m *memFolders) List(_ context.Context, userID int64) ([]models.FavoriteFolder, error) {
	out := []models.FavoriteFolder{}
	for _, f := range m.items {
		if f.UserID == userID {
			f.PromptIDs = slices.Clone(f.PromptIDs)
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memFolders) Get(_ context.Context, userID int64, id string) (*models.FavoriteFolder, error) {
	for _, f := range m.items {
		if f.UserID == userID && f.ID == id {
			f.PromptIDs = slices.Clone(f.PromptIDs)
			return &f, nil
		}
	}
	return nil, nil
}

func (m *memFolders) FindByName(_ context.Context, userID int64, name string) (*models.FavoriteFolder, error) {
	for _, f := range m.items {
		if f.UserID == userID && f.Name == name {
			return &f, nil
		}
	}
	return nil, nil
}

func (m *memFolders) Save(ctx context.Context, f *models.FavoriteFolder) (*models.FavoriteFolder, error) {
	saved := *f
	saved.PromptIDs = slices.Clone(f.PromptIDs)
	for i := range m.items {
		if m.items[i].ID == f.ID {
			m.items[i] = saved
			return m.Get(ctx, f.UserID, f.ID)
		}
	}
	m.items = append(m.items, saved)
	return m.Get(ctx, f.UserID, f.ID)
}

func (m *memFolders) Delete(_ context.Context, userID int64, id string) error {
	m.items = slices.DeleteFunc(m.items, func(f models.FavoriteFolder) bool { return f.UserID == userID && f.ID == id })
	return nil
}

type memArticles struct {
	nextID int64
	items  map[int64]models.Article
}

func newMemArticles() *memArticles {
	return &memArticles{items: map[int64]models.Article{}}
}

func (m *memArticles) List(_ context.Context, publishedOnly bool, category models.ArticleCategory) ([]models.Article, error) {
	out := []models.Article{}
	for id := int64(1); id <= m.nextID; id++ {
		a, ok := m.items[id]
		if !ok || (publishedOnly && !a.IsPublished) || (category != "" && a.Category != category) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memArticles) GetByID(_ context.Context, id int64) (*models.Article, error) {
	if a, ok := m.items[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (m *memArticles) Create(ctx context.Context, a *models.Article) (*models.Article, error) {
	m.nextID++
	saved := *a
	saved.ID = m.nextID
	m.items[saved.ID] = saved
	return m.GetByID(ctx, saved.ID)
}

func (m *memArticles) Update(ctx context.Context, a *models.Article) (*models.Article, error) {
	m.items[a.ID] = *a
	return m.GetByID(ctx, a.ID)
}

func (m *memArticles) Delete(_ context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

type memPlans struct {
	nextID int64
	items  []models.Plan
}

func (m *memPlans) List(_ context.Context) ([]models.Plan, error) {
	return slices.Clone(m.items), nil
}

func (m *memPlans) GetByID(_ context.Context, id int64) (*models.Plan, error) {
	for _, p := range m.items {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *memPlans) GetByStripePrice(_ context.Context, priceID string) (*models.Plan, error) {
	for _, p := range m.items {
		if p.StripePriceID == priceID {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *memPlans) GetActiveByType(_ context.Context, planType models.PlanType) (*models.Plan, error) {
	for _, p := range m.items {
		if p.PlanType == planType && p.IsActive {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *memPlans) Create(_ context.Context, plan *models.Plan) (*models.Plan, error) {
	m.nextID++
	saved := *plan
	saved.ID = m.nextID
	m.items = append(m.items, saved)
	return &saved, nil
}

func (m *memPlans) Update(_ context.Context, plan *models.Plan) (*models.Plan, error) {
	for i := range m.items {
		if m.items[i].ID == plan.ID {
			m.items[i] = *plan
		}
	}
	return plan, nil
}

func (m *memPlans) Delete(_ context.Context, id int64) error {
	m.items = slices.DeleteFunc(m.items, func(p models.Plan) bool { return p.ID == id })
	return nil
}

type memEvents struct {
	seen map[string]bool
}

func newMemEvents() *memEvents {
	return &memEvents{seen: map[string]bool{}}
}

func (m *memEvents) Record(_ context.Context, ev *models.BillingEvent) (bool, error) {
	if m.seen[ev.StripeEventID] {
		return false, nil
	}
	m.seen[ev.StripeEventID] = true
	return true, nil
}

func (m *memEvents) Forget(_ context.Context, id string) error {
	delete(m.seen, id)
	return nil
}

type fakeGateway struct {
	customers int
	checkouts []billing.CheckoutRequest
	latest    *billing.Snapshot
}

func (g *fakeGateway) CreateCustomer(_ context.Context, _ string, _ int64) (string, error) {
	g.customers++
	return "cus_new", nil
}

func (g *fakeGateway) CheckoutURL(_ context.Context, req billing.CheckoutRequest) (string, error) {
	g.checkouts = append(g.checkouts, req)
	return "https://checkout.example/" + req.PriceID, nil
}

func (g *fakeGateway) PortalURL(_ context.Context, customerID, _ string) (string, error) {
	return "https://portal.example/" + customerID, nil
}

func (g *fakeGateway) LatestSubscription(_ context.Context, _ string) (*billing.Snapshot, error) {
	return g.latest, nil
}

type fakeUploader struct {
	calls int
}

func (u *fakeUploader) Upload(_ context.Context, _ []byte, _ string) (string, error) {
	u.calls++
	return "https://cdn.example/cover.png", nil
}

type fakeAnnouncer struct {
	announced []int64
	err       error
}

func (a *fakeAnnouncer) AnnounceArticle(_ context.Context, article *models.Article) error {
	a.announced = append(a.announced, article.ID)
	return a.err
}
