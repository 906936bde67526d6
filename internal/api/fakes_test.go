package api

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Spok95/foodgram/internal/auth"
	"github.com/Spok95/foodgram/internal/domain/ingredients"
	"github.com/Spok95/foodgram/internal/domain/recipes"
	"github.com/Spok95/foodgram/internal/domain/subscriptions"
	"github.com/Spok95/foodgram/internal/domain/tags"
	"github.com/Spok95/foodgram/internal/domain/users"
	"github.com/Spok95/foodgram/internal/shopping"
	"github.com/Spok95/foodgram/internal/shortlink"
)

type memTags struct {
	mu    sync.Mutex
	list  []tags.Tag
	calls int
}

func (m *memTags) List(context.Context) ([]tags.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return append([]tags.Tag(nil), m.list...), nil
}

func (m *memTags) GetByID(_ context.Context, id int64) (*tags.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	for _, t := range m.list {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, nil
}

func (m *memTags) CountExisting(_ context.Context, ids []int64) (int, error) {
	n := 0
	for _, id := range ids {
		for _, t := range m.list {
			if t.ID == id {
				n++
			}
		}
	}
	return n, nil
}

type memIngredients struct {
	mu    sync.Mutex
	list  []ingredients.Ingredient
	calls int
}

func (m *memIngredients) List(_ context.Context, prefix string) ([]ingredients.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	var out []ingredients.Ingredient
	for _, in := range m.list {
		if strings.HasPrefix(strings.ToLower(in.Name), strings.ToLower(prefix)) {
			out = append(out, in)
		}
	}
	return out, nil
}

func (m *memIngredients) GetByID(_ context.Context, id int64) (*ingredients.Ingredient, error) {
	for _, in := range m.list {
		if in.ID == id {
			return &in, nil
		}
	}
	return nil, nil
}

func (m *memIngredients) CountExisting(_ context.Context, ids []int64) (int, error) {
	n := 0
	for _, id := range ids {
		if in, _ := m.GetByID(context.Background(), id); in != nil {
			n++
		}
	}
	return n, nil
}

type memUsers struct {
	mu   sync.Mutex
	byID map[int64]*users.User
	next int64
}

func newMemUsers() *memUsers { return &memUsers{byID: map[int64]*users.User{}} }

func (m *memUsers) Create(_ context.Context, nu users.NewUser) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == nu.Email || u.Username == nu.Username {
			return nil, users.ErrTaken
		}
	}
	m.next++
	u := &users.User{
		ID: m.next, Email: nu.Email, Username: nu.Username,
		FirstName: nu.FirstName, LastName: nu.LastName,
		PasswordHash: nu.PasswordHash, Role: users.RoleUser, CreatedAt: time.Now(),
	}
	m.byID[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByIDs(_ context.Context, ids []int64) (map[int64]users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[int64]users.User{}
	for _, id := range ids {
		if u, ok := m.byID[id]; ok {
			out[id] = *u
		}
	}
	return out, nil
}

func (m *memUsers) List(_ context.Context, limit, offset int) ([]users.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]users.User, 0, len(m.byID))
	for _, u := range m.byID {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return window(all, limit, offset), len(all), nil
}

func (m *memUsers) SetPassword(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[id].PasswordHash = hash
	return nil
}

func (m *memUsers) SetAvatar(_ context.Context, id int64, avatar string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[id].Avatar = avatar
	return nil
}

func window[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}

type pairKey [2]int64

type memSubs struct {
	mu    sync.Mutex
	users *memUsers
	set   map[pairKey]bool
	order []pairKey
}

func (m *memSubs) Subscribe(_ context.Context, follower, author int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if follower == author {
		return subscriptions.ErrSelf
	}
	k := pairKey{follower, author}
	if m.set[k] {
		return subscriptions.ErrAlreadySubscribed
	}
	m.set[k] = true
	m.order = append(m.order, k)
	return nil
}

func (m *memSubs) Unsubscribe(_ context.Context, follower, author int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := pairKey{follower, author}
	if !m.set[k] {
		return false, nil
	}
	delete(m.set, k)
	return true, nil
}

func (m *memSubs) SubscribedTo(_ context.Context, follower int64, ids []int64) (map[int64]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[int64]bool{}
	for _, id := range ids {
		if m.set[pairKey{follower, id}] {
			out[id] = true
		}
	}
	return out, nil
}

func (m *memSubs) ListAuthors(ctx context.Context, follower int64, limit, offset int) ([]users.User, int, error) {
	m.mu.Lock()
	var ids []int64
	for _, k := range m.order {
		if k[0] == follower && m.set[k] {
			ids = append(ids, k[1])
		}
	}
	m.mu.Unlock()

	all := make([]users.User, 0, len(ids))
	for _, id := range ids {
		u, _ := m.users.GetByID(ctx, id)
		all = append(all, *u)
	}
	return window(all, limit, offset), len(all), nil
}

type memRecipes struct {
	mu    sync.Mutex
	tags  *memTags
	ings  *memIngredients
	byID  map[int64]recipes.Recipe
	next  int64
	fav   map[pairKey]bool
	cart  map[pairKey]bool
	order []pairKey // порядок добавления в корзину
}

func (m *memRecipes) build(id, author int64, in recipes.Input) recipes.Recipe {
	rc := recipes.Recipe{
		ID: id, AuthorID: author, Name: in.Name, Image: in.Image, Text: in.Text,
		CookingTime: in.CookingTime, PubDate: time.Now(),
	}
	for _, tid := range in.TagIDs {
		t, _ := m.tags.GetByID(context.Background(), tid)
		rc.Tags = append(rc.Tags, *t)
	}
	for _, a := range in.Ingredients {
		ing, _ := m.ings.GetByID(context.Background(), a.IngredientID)
		rc.Ingredients = append(rc.Ingredients, recipes.IngredientAmount{
			ID: ing.ID, Name: ing.Name, MeasurementUnit: ing.MeasurementUnit, Amount: a.Amount,
		})
	}
	return rc
}

func (m *memRecipes) Create(ctx context.Context, author int64, in recipes.Input) (*recipes.Recipe, error) {
	m.mu.Lock()
	m.next++
	rc := m.build(m.next, author, in)
	rc.ShortLink, _ = shortlink.Encode(rc.ID)
	m.byID[rc.ID] = rc
	m.mu.Unlock()
	return m.GetByID(ctx, rc.ID, author)
}

func (m *memRecipes) Update(ctx context.Context, id, viewer int64, in recipes.Input) (*recipes.Recipe, error) {
	m.mu.Lock()
	old := m.byID[id]
	rc := m.build(id, old.AuthorID, in)
	rc.ShortLink, rc.PubDate = old.ShortLink, old.PubDate
	if rc.Image == "" {
		rc.Image = old.Image
	}
	m.byID[id] = rc
	m.mu.Unlock()
	return m.GetByID(ctx, id, viewer)
}

func (m *memRecipes) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

func (m *memRecipes) annotate(rc recipes.Recipe, viewer int64) recipes.Recipe {
	rc.IsFavorited = m.fav[pairKey{viewer, rc.ID}]
	rc.IsInShoppingCart = m.cart[pairKey{viewer, rc.ID}]
	return rc
}

func (m *memRecipes) GetByID(_ context.Context, id, viewer int64) (*recipes.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rc, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	rc = m.annotate(rc, viewer)
	return &rc, nil
}

func (m *memRecipes) GetByShortLink(_ context.Context, token string, viewer int64) (*recipes.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rc := range m.byID {
		if rc.ShortLink == token {
			rc = m.annotate(rc, viewer)
			return &rc, nil
		}
	}
	return nil, nil
}

func (m *memRecipes) sorted(viewer int64) []recipes.Recipe {
	all := make([]recipes.Recipe, 0, len(m.byID))
	for _, rc := range m.byID {
		all = append(all, m.annotate(rc, viewer))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return all
}

func (m *memRecipes) List(_ context.Context, f recipes.Filter) ([]recipes.Recipe, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.Viewer == 0 && (f.IsFavorited != nil || f.IsInShoppingCart != nil) {
		return []recipes.Recipe{}, 0, nil
	}
	var out []recipes.Recipe
	for _, rc := range m.sorted(f.Viewer) {
		if f.AuthorID != 0 && rc.AuthorID != f.AuthorID {
			continue
		}
		if f.IsFavorited != nil && rc.IsFavorited != *f.IsFavorited {
			continue
		}
		if f.IsInShoppingCart != nil && rc.IsInShoppingCart != *f.IsInShoppingCart {
			continue
		}
		if len(f.TagSlugs) > 0 && !hasTag(rc, f.TagSlugs) {
			continue
		}
		out = append(out, rc)
	}
	return window(out, f.Limit, f.Offset), len(out), nil
}

func hasTag(rc recipes.Recipe, slugs []string) bool {
	for _, t := range rc.Tags {
		for _, s := range slugs {
			if t.Slug == s {
				return true
			}
		}
	}
	return false
}

func (m *memRecipes) ListByAuthor(_ context.Context, author int64, limit int, viewer int64) ([]recipes.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []recipes.Recipe
	for _, rc := range m.sorted(viewer) {
		if rc.AuthorID == author {
			out = append(out, rc)
		}
	}
	return window(out, limit, 0), nil
}

func (m *memRecipes) CountByAuthor(_ context.Context, ids []int64) (map[int64]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[int64]int{}
	for _, rc := range m.byID {
		for _, id := range ids {
			if rc.AuthorID == id {
				out[id]++
			}
		}
	}
	return out, nil
}

func (m *memRecipes) AddFavorite(_ context.Context, user, recipe int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fav[pairKey{user, recipe}] {
		return recipes.ErrAlreadyFavorited
	}
	m.fav[pairKey{user, recipe}] = true
	return nil
}

func (m *memRecipes) RemoveFavorite(_ context.Context, user, recipe int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ok := m.fav[pairKey{user, recipe}]
	delete(m.fav, pairKey{user, recipe})
	return ok, nil
}

func (m *memRecipes) AddToCart(_ context.Context, user, recipe int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := pairKey{user, recipe}
	if m.cart[k] {
		return recipes.ErrAlreadyInCart
	}
	m.cart[k] = true
	m.order = append(m.order, k)
	return nil
}

func (m *memRecipes) RemoveFromCart(_ context.Context, user, recipe int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ok := m.cart[pairKey{user, recipe}]
	delete(m.cart, pairKey{user, recipe})
	return ok, nil
}

func (m *memRecipes) CartContents(_ context.Context, user int64) ([]shopping.CartRecipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []shopping.CartRecipe
	for _, k := range m.order {
		if k[0] != user || !m.cart[k] {
			continue
		}
		rc, ok := m.byID[k[1]]
		if !ok {
			continue
		}
		cr := shopping.CartRecipe{ID: rc.ID, Name: rc.Name}
		for _, a := range rc.Ingredients {
			cr.Lines = append(cr.Lines, shopping.Line{Ingredient: a.Name, Unit: a.MeasurementUnit, Amount: float64(a.Amount)})
		}
		out = append(out, cr)
	}
	return out, nil
}

type memMedia struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *memMedia) Save(_ context.Context, name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	url := "http://foodgram.test/media/" + name
	m.files[url] = data
	return url, nil
}

func (m *memMedia) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, url)
	return nil
}

func (m *memMedia) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

type sentMessage struct{ name, link string }

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeNotifier) RecipePublished(_ context.Context, name, link string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{name, link})
}

type fakeTokens map[string]int64

func (f fakeTokens) Verify(token string) (int64, error) {
	if id, ok := f[token]; ok {
		return id, nil
	}
	return 0, auth.ErrInvalidToken
}
