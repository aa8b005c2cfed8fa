package server

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/digkill/PromptLibrary/internal/billing"
	"github.com/digkill/PromptLibrary/internal/config"
	"github.com/digkill/PromptLibrary/internal/models"
	"github.com/digkill/PromptLibrary/internal/service"
	"github.com/digkill/PromptLibrary/internal/usage"
)

type stores struct {
	users    *userStore
	subs     *subStore
	prompts  *promptStore
	favs     *favoriteStore
	folders  *folderStore
	articles *articleStore
	plans    *planStore
	events   *eventStore
}

func newStores() *stores {
	return &stores{
		users:    &userStore{byID: map[int64]*models.User{}},
		subs:     &subStore{byUser: map[int64]models.Subscription{}},
		prompts:  &promptStore{},
		favs:     &favoriteStore{byUser: map[int64][]string{}},
		folders:  &folderStore{},
		articles: &articleStore{byID: map[int64]models.Article{}},
		plans:    &planStore{},
		events:   &eventStore{seen: map[string]bool{}},
	}
}

const testWebhookSecret = "whsec_test"

func testConfig() config.Config {
	return config.Config{
		ListenAddr:          ":0",
		FrontendURL:         "https://prompts.example",
		RequestTimeout:      5 * time.Second,
		StripeWebhookSecret: testWebhookSecret,
		StripePriceStandard: "price_std",
		StripePricePremium:  "price_pro",
		PaymentCurrency:     "usd",
	}
}

// newTestServer wires real services over in-memory stores. A nil gateway
// leaves billing disabled.
func newTestServer(st *stores, gateway billing.Gateway) *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testConfig()
	plans := service.NewPlanService(cfg, st.plans)
	_ = plans.EnsureDefaultPlans(context.Background())
	tracker := usage.NewTracker(usage.NewMemoryStore(), log, time.UTC)
	return NewServer(cfg, log, Services{
		Auth:          service.NewAuthService(st.users, "test-secret", time.Hour),
		Accounts:      service.NewAccountService(st.users, st.subs),
		Library:       service.NewLibraryService(st.prompts, st.favs, st.folders, tracker, language.English),
		Favorites:     service.NewFavoriteService(st.favs, st.prompts),
		Folders:       service.NewFolderService(st.folders, st.prompts),
		CustomPrompts: service.NewCustomPromptService(st.prompts),
		Import:        service.NewImportService(st.favs, st.folders, st.prompts),
		Articles:      service.NewArticleService(st.articles, nil, nil, log),
		PromptAdmin:   service.NewPromptAdminService(st.prompts),
		Plans:         plans,
		Billing:       service.NewBillingService(gateway, st.subs, plans, st.events, cfg.FrontendURL, log),
	})
}

type userStore struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.User
}

func (s *userStore) FindByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (s *userStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *userStore) Create(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	saved := *user
	saved.ID = s.nextID
	s.byID[saved.ID] = &saved
	out := saved
	return &out, nil
}

func (s *userStore) List(_ context.Context, limit, offset int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for id := int64(1); id <= s.nextID; id++ {
		if u, ok := s.byID[id]; ok {
			out = append(out, *u)
		}
	}
	if offset >= len(out) {
		return []models.User{}, nil
	}
	out = out[offset:]
	return out[:min(limit, len(out))], nil
}

func (s *userStore) SetAdmin(_ context.Context, userID int64, isAdmin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID[userID]; ok {
		u.IsAdmin = isAdmin
	}
	return nil
}

type subStore struct {
	mu     sync.Mutex
	byUser map[int64]models.Subscription
}

func (s *subStore) GetByUserID(_ context.Context, userID int64) (*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub, ok := s.byUser[userID]; ok {
		return &sub, nil
	}
	return nil, nil
}

func (s *subStore) GetByCustomerID(_ context.Context, customerID string) (*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.byUser {
		if sub.StripeCustomerID == customerID {
			return &sub, nil
		}
	}
	return nil, nil
}

func (s *subStore) Upsert(_ context.Context, sub *models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[sub.UserID] = *sub
	return nil
}

type promptStore struct {
	mu    sync.Mutex
	items []models.Prompt
}

func (s *promptStore) filter(keep func(models.Prompt) bool) []models.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Prompt{}
	for _, p := range s.items {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (s *promptStore) ListCatalog(_ context.Context) ([]models.Prompt, error) {
	return s.filter(func(p models.Prompt) bool { return p.OwnerID == nil }), nil
}

func (s *promptStore) ListByOwner(_ context.Context, ownerID int64) ([]models.Prompt, error) {
	return s.filter(func(p models.Prompt) bool { return p.OwnerID != nil && *p.OwnerID == ownerID }), nil
}

func (s *promptStore) ListByIDs(_ context.Context, ids []string) ([]models.Prompt, error) {
	return s.filter(func(p models.Prompt) bool { return slices.Contains(ids, p.ID) }), nil
}

func (s *promptStore) GetByID(_ context.Context, id string) (*models.Prompt, error) {
	found := s.filter(func(p models.Prompt) bool { return p.ID == id })
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (s *promptStore) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	owned, _ := s.ListByOwner(ctx, ownerID)
	return len(owned), nil
}

func (s *promptStore) Upsert(_ context.Context, p *models.Prompt) (*models.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := *p
	for i := range s.items {
		if s.items[i].ID == p.ID {
			s.items[i] = saved
			return &saved, nil
		}
	}
	s.items = append(s.items, saved)
	return &saved, nil
}

func (s *promptStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.DeleteFunc(s.items, func(p models.Prompt) bool { return p.ID == id })
	return nil
}

type favoriteStore struct {
	mu     sync.Mutex
	byUser map[int64][]string
}

func (s *favoriteStore) List(_ context.Context, userID int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.byUser[userID]), nil
}

func (s *favoriteStore) Add(_ context.Context, userID int64, promptID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.byUser[userID], promptID) {
		s.byUser[userID] = append(s.byUser[userID], promptID)
	}
	return nil
}

func (s *favoriteStore) Remove(_ context.Context, userID int64, promptID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[userID] = slices.DeleteFunc(s.byUser[userID], func(v string) bool { return v == promptID })
	return nil
}

type folderStore struct {
	mu    sync.Mutex
	items []models.FavoriteFolder
}

func (s *folderStore) List(_ context.Context, userID int64) ([]models.FavoriteFolder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.FavoriteFolder{}
	for _, f := range s.items {
		if f.UserID == userID {
			f.PromptIDs = slices.Clone(f.PromptIDs)
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *folderStore) find(match func(models.FavoriteFolder) bool) *models.FavoriteFolder {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.items {
		if match(f) {
			f.PromptIDs = slices.Clone(f.PromptIDs)
			return &f
		}
	}
	return nil
}

func (s *folderStore) Get(_ context.Context, userID int64, id string) (*models.FavoriteFolder, error) {
	return s.find(func(f models.FavoriteFolder) bool { return f.UserID == userID && f.ID == id }), nil
}

func (s *folderStore) FindByName(_ context.Context, userID int64, name string) (*models.FavoriteFolder, error) {
	return s.find(func(f models.FavoriteFolder) bool { return f.UserID == userID && f.Name == name }), nil
}

func (s *folderStore) Save(ctx context.Context, f *models.FavoriteFolder) (*models.FavoriteFolder, error) {
	s.mu.Lock()
	saved := *f
	saved.PromptIDs = slices.Clone(f.PromptIDs)
	replaced := false
	for i := range s.items {
		if s.items[i].ID == f.ID {
			s.items[i] = saved
			replaced = true
		}
	}
	if !replaced {
		s.items = append(s.items, saved)
	}
	s.mu.Unlock()
	return s.Get(ctx, f.UserID, f.ID)
}

func (s *folderStore) Delete(_ context.Context, userID int64, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.DeleteFunc(s.items, func(f models.FavoriteFolder) bool { return f.UserID == userID && f.ID == id })
	return nil
}

type articleStore struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]models.Article
}

func (s *articleStore) List(_ context.Context, publishedOnly bool, category models.ArticleCategory) ([]models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Article{}
	for id := int64(1); id <= s.nextID; id++ {
		a, ok := s.byID[id]
		if !ok || (publishedOnly && !a.IsPublished) || (category != "" && a.Category != category) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *articleStore) GetByID(_ context.Context, id int64) (*models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.byID[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (s *articleStore) Create(_ context.Context, a *models.Article) (*models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	saved := *a
	saved.ID = s.nextID
	s.byID[saved.ID] = saved
	return &saved, nil
}

func (s *articleStore) Update(_ context.Context, a *models.Article) (*models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[a.ID] = *a
	saved := *a
	return &saved, nil
}

func (s *articleStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

type planStore struct {
	mu     sync.Mutex
	nextID int64
	items  []models.Plan
}

func (s *planStore) find(match func(models.Plan) bool) *models.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.items {
		if match(p) {
			return &p
		}
	}
	return nil
}

func (s *planStore) List(_ context.Context) ([]models.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items), nil
}

func (s *planStore) GetByID(_ context.Context, id int64) (*models.Plan, error) {
	return s.find(func(p models.Plan) bool { return p.ID == id }), nil
}

func (s *planStore) GetByStripePrice(_ context.Context, priceID string) (*models.Plan, error) {
	return s.find(func(p models.Plan) bool { return p.StripePriceID == priceID }), nil
}

func (s *planStore) GetActiveByType(_ context.Context, planType models.PlanType) (*models.Plan, error) {
	return s.find(func(p models.Plan) bool { return p.PlanType == planType && p.IsActive }), nil
}

func (s *planStore) Create(_ context.Context, plan *models.Plan) (*models.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	saved := *plan
	saved.ID = s.nextID
	s.items = append(s.items, saved)
	return &saved, nil
}

func (s *planStore) Update(_ context.Context, plan *models.Plan) (*models.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == plan.ID {
			s.items[i] = *plan
		}
	}
	return plan, nil
}

func (s *planStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.DeleteFunc(s.items, func(p models.Plan) bool { return p.ID == id })
	return nil
}

type eventStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (s *eventStore) Record(_ context.Context, ev *models.BillingEvent) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[ev.StripeEventID] {
		return false, nil
	}
	s.seen[ev.StripeEventID] = true
	return true, nil
}

func (s *eventStore) Forget(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, id)
	return nil
}

type stubGateway struct{}

func (stubGateway) CreateCustomer(context.Context, string, int64) (string, error) {
	return "cus_test", nil
}

func (stubGateway) CheckoutURL(_ context.Context, req billing.CheckoutRequest) (string, error) {
	return "https://checkout.example/" + req.PriceID, nil
}

func (stubGateway) PortalURL(_ context.Context, customerID, _ string) (string, error) {
	return "https://portal.example/" + customerID, nil
}

func (stubGateway) LatestSubscription(context.Context, string) (*billing.Snapshot, error) {
	return nil, nil
}
