// Package api — HTTP API foodgram на chi.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Spok95/foodgram/internal/domain/ingredients"
	"github.com/Spok95/foodgram/internal/domain/recipes"
	"github.com/Spok95/foodgram/internal/domain/tags"
	"github.com/Spok95/foodgram/internal/domain/users"
	"github.com/Spok95/foodgram/internal/infra/cache"
	"github.com/Spok95/foodgram/internal/infra/media"
	"github.com/Spok95/foodgram/internal/shopping"
)

type TagStore interface {
	List(ctx context.Context) ([]tags.Tag, error)
	GetByID(ctx context.Context, id int64) (*tags.Tag, error)
	CountExisting(ctx context.Context, ids []int64) (int, error)
}

type IngredientStore interface {
	List(ctx context.Context, prefix string) ([]ingredients.Ingredient, error)
	GetByID(ctx context.Context, id int64) (*ingredients.Ingredient, error)
	CountExisting(ctx context.Context, ids []int64) (int, error)
}

type UserStore interface {
	Create(ctx context.Context, nu users.NewUser) (*users.User, error)
	GetByID(ctx context.Context, id int64) (*users.User, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]users.User, error)
	List(ctx context.Context, limit, offset int) ([]users.User, int, error)
	SetPassword(ctx context.Context, id int64, hash string) error
	SetAvatar(ctx context.Context, id int64, avatar string) error
}

type SubscriptionStore interface {
	Subscribe(ctx context.Context, followerID, authorID int64) error
	Unsubscribe(ctx context.Context, followerID, authorID int64) (bool, error)
	SubscribedTo(ctx context.Context, followerID int64, authorIDs []int64) (map[int64]bool, error)
	ListAuthors(ctx context.Context, followerID int64, limit, offset int) ([]users.User, int, error)
}

type RecipeStore interface {
	Create(ctx context.Context, authorID int64, in recipes.Input) (*recipes.Recipe, error)
	Update(ctx context.Context, id, viewer int64, in recipes.Input) (*recipes.Recipe, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id, viewer int64) (*recipes.Recipe, error)
	GetByShortLink(ctx context.Context, token string, viewer int64) (*recipes.Recipe, error)
	List(ctx context.Context, f recipes.Filter) ([]recipes.Recipe, int, error)
	ListByAuthor(ctx context.Context, authorID int64, limit int, viewer int64) ([]recipes.Recipe, error)
	CountByAuthor(ctx context.Context, authorIDs []int64) (map[int64]int, error)
	AddFavorite(ctx context.Context, userID, recipeID int64) error
	RemoveFavorite(ctx context.Context, userID, recipeID int64) (bool, error)
	AddToCart(ctx context.Context, userID, recipeID int64) error
	RemoveFromCart(ctx context.Context, userID, recipeID int64) (bool, error)
	CartContents(ctx context.Context, userID int64) ([]shopping.CartRecipe, error)
}

type Notifier interface {
	RecipePublished(ctx context.Context, name, link string)
}

type TokenVerifier interface {
	Verify(token string) (int64, error)
}

type Deps struct {
	Tags          TagStore
	Ingredients   IngredientStore
	Users         UserStore
	Subscriptions SubscriptionStore
	Recipes       RecipeStore
	Media         media.Store
	Notifier      Notifier
	Tokens        TokenVerifier // nil — все запросы анонимные
	Cache         *cache.ReadThrough
	Log           *slog.Logger

	Host        string // внешний адрес: короткие ссылки и пагинация
	CORSOrigins []string
}

type Server struct {
	tags     TagStore
	ings     IngredientStore
	users    UserStore
	subs     SubscriptionStore
	recipes  RecipeStore
	media    media.Store
	notifier Notifier
	tokens   TokenVerifier
	cache    *cache.ReadThrough
	log      *slog.Logger

	host        string
	corsOrigins []string
}

func New(d Deps) *Server {
	return &Server{
		tags:        d.Tags,
		ings:        d.Ingredients,
		users:       d.Users,
		subs:        d.Subscriptions,
		recipes:     d.Recipes,
		media:       d.Media,
		notifier:    d.Notifier,
		tokens:      d.Tokens,
		cache:       d.Cache,
		log:         d.Log,
		host:        strings.TrimRight(d.Host, "/"),
		corsOrigins: d.CORSOrigins,
	}
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle регистрирует маршрут: сначала проверка прав по таблице actions, потом обработчик.
func (s *Server) handle(r chi.Router, method, pattern string, a Action, h handlerFunc) {
	r.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if err := check(a, viewerID(req)); err != nil {
			s.fail(w, req, err)
			return
		}
		if err := h(w, req); err != nil {
			s.fail(w, req, err)
		}
	}))
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.observe)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	r.Use(s.authenticate)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) { s.fail(w, req, errNotFound) })
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) { s.fail(w, req, errMethodNotAllowed) })

	r.Route("/api", func(r chi.Router) {
		s.handle(r, http.MethodGet, "/tags", ActionTagList, s.listTags)
		s.handle(r, http.MethodGet, "/tags/{id}", ActionTagDetail, s.getTag)
		s.handle(r, http.MethodGet, "/ingredients", ActionIngredientList, s.listIngredients)
		s.handle(r, http.MethodGet, "/ingredients/{id}", ActionIngredientDetail, s.getIngredient)

		s.handle(r, http.MethodGet, "/recipes", ActionRecipeList, s.listRecipes)
		s.handle(r, http.MethodPost, "/recipes", ActionRecipeCreate, s.createRecipe)
		s.handle(r, http.MethodGet, "/recipes/download_shopping_cart", ActionCartDownload, s.downloadCart)
		s.handle(r, http.MethodGet, "/recipes/{id}", ActionRecipeRetrieve, s.getRecipe)
		s.handle(r, http.MethodPatch, "/recipes/{id}", ActionRecipeUpdate, s.updateRecipe)
		s.handle(r, http.MethodDelete, "/recipes/{id}", ActionRecipeDestroy, s.deleteRecipe)
		s.handle(r, http.MethodPost, "/recipes/{id}/favorite", ActionFavoriteAdd, s.addFavorite)
		s.handle(r, http.MethodDelete, "/recipes/{id}/favorite", ActionFavoriteRemove, s.removeFavorite)
		s.handle(r, http.MethodPost, "/recipes/{id}/shopping_cart", ActionCartAdd, s.addToCart)
		s.handle(r, http.MethodDelete, "/recipes/{id}/shopping_cart", ActionCartRemove, s.removeFromCart)
		s.handle(r, http.MethodGet, "/recipes/{id}/get-link", ActionRecipeLink, s.getLink)
		s.handle(r, http.MethodGet, "/s/{token}", ActionShortLinkResolve, s.resolveShortLink)

		s.handle(r, http.MethodGet, "/users", ActionUserList, s.listUsers)
		s.handle(r, http.MethodPost, "/users", ActionUserCreate, s.createUser)
		s.handle(r, http.MethodGet, "/users/me", ActionUserMe, s.me)
		s.handle(r, http.MethodPut, "/users/me/avatar", ActionAvatarSet, s.setAvatar)
		s.handle(r, http.MethodDelete, "/users/me/avatar", ActionAvatarDelete, s.deleteAvatar)
		s.handle(r, http.MethodPost, "/users/set_password", ActionSetPassword, s.setPassword)
		s.handle(r, http.MethodGet, "/users/subscriptions", ActionSubscriptions, s.listSubscriptions)
		s.handle(r, http.MethodGet, "/users/{id}", ActionUserDetail, s.getUser)
		s.handle(r, http.MethodPost, "/users/{id}/subscribe", ActionSubscribe, s.subscribe)
		s.handle(r, http.MethodDelete, "/users/{id}/subscribe", ActionUnsubscribe, s.unsubscribe)
	})
	return r
}

// viewerContext собирает контекст смотрящего для render.
func (s *Server) viewerContext(r *http.Request, authorIDs []int64) (ViewerContext, error) {
	vc := ViewerContext{Viewer: viewerID(r), Query: r.URL.Query(), Subscribed: map[int64]bool{}}
	if vc.Viewer == 0 || len(authorIDs) == 0 {
		return vc, nil
	}
	subs, err := s.subs.SubscribedTo(r.Context(), vc.Viewer, authorIDs)
	if err != nil {
		return vc, err
	}
	vc.Subscribed = subs
	return vc, nil
}

func (s *Server) shortLinkURL(token string) string {
	return s.host + "/api/s/" + token
}
