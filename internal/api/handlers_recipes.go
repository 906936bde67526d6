package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Spok95/foodgram/internal/domain/recipes"
	"github.com/Spok95/foodgram/internal/infra/media"
	"github.com/Spok95/foodgram/internal/infra/metrics"
	"github.com/Spok95/foodgram/internal/shopping"
	"github.com/Spok95/foodgram/internal/shortlink"
	"github.com/Spok95/foodgram/internal/validation"
)

type ingredientAmountInput struct {
	ID     int64 `json:"id" validate:"required"`
	Amount int   `json:"amount" validate:"required,min=1,max=32000"`
}

type recipeInput struct {
	Ingredients []ingredientAmountInput `json:"ingredients" validate:"required,min=1,unique=ID,dive"`
	Tags        []int64                 `json:"tags" validate:"required,min=1,unique,dive,gt=0"`
	Image       string                  `json:"image"`
	Name        string                  `json:"name" validate:"required,max=256"`
	Text        string                  `json:"text" validate:"required"`
	CookingTime int                     `json:"cooking_time" validate:"required,min=1,max=32000"`
}

// validateRecipe: поля, затем существование тегов и ингредиентов. Картинка обязательна только при создании.
func (s *Server) validateRecipe(ctx context.Context, in recipeInput, requireImage bool) error {
	errs := validation.Errors{}
	if err := validation.Struct(in); err != nil {
		var verrs validation.Errors
		if !errors.As(err, &verrs) {
			return err
		}
		errs = verrs
	}
	if requireImage && in.Image == "" {
		errs.Add("image", "Обязательное поле.")
	}
	if len(errs) > 0 {
		return errs
	}

	n, err := s.tags.CountExisting(ctx, in.Tags)
	if err != nil {
		return err
	}
	if n != len(in.Tags) {
		errs.Add("tags", "Указан несуществующий тег.")
	}
	ids := make([]int64, len(in.Ingredients))
	for i, a := range in.Ingredients {
		ids[i] = a.ID
	}
	n, err = s.ings.CountExisting(ctx, ids)
	if err != nil {
		return err
	}
	if n != len(ids) {
		errs.Add("ingredients", "Указан несуществующий ингредиент.")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (in recipeInput) toDomain(image string) recipes.Input {
	amounts := make([]recipes.Amount, len(in.Ingredients))
	for i, a := range in.Ingredients {
		amounts[i] = recipes.Amount{IngredientID: a.ID, Amount: a.Amount}
	}
	return recipes.Input{
		Name:        in.Name,
		Image:       image,
		Text:        in.Text,
		CookingTime: in.CookingTime,
		TagIDs:      in.Tags,
		Ingredients: amounts,
	}
}

// saveImage сохраняет data URI в каталог dir и возвращает URL.
func (s *Server) saveImage(ctx context.Context, field, dir, dataURI string) (string, error) {
	ext, data, err := media.DecodeDataURI(dataURI)
	if err != nil {
		return "", fieldError(field, "Некорректное изображение.")
	}
	return s.media.Save(ctx, media.FileName(dir, ext), data)
}

func (s *Server) dropImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.media.Delete(ctx, url); err != nil {
		s.log.Warn("media delete failed", "url", url, "err", err)
	}
}

// renderRecipes подтягивает авторов и подписки одним запросом на страницу.
func (s *Server) renderRecipes(r *http.Request, list []recipes.Recipe) ([]RecipeDTO, error) {
	ids := make([]int64, 0, len(list))
	seen := map[int64]bool{}
	for _, rc := range list {
		if !seen[rc.AuthorID] {
			seen[rc.AuthorID] = true
			ids = append(ids, rc.AuthorID)
		}
	}
	authors, err := s.users.GetByIDs(r.Context(), ids)
	if err != nil {
		return nil, err
	}
	vc, err := s.viewerContext(r, ids)
	if err != nil {
		return nil, err
	}
	out := make([]RecipeDTO, len(list))
	for i, rc := range list {
		out[i] = renderRecipe(rc, authors[rc.AuthorID], vc)
	}
	return out, nil
}

func (s *Server) renderOne(r *http.Request, rc *recipes.Recipe) (RecipeDTO, error) {
	out, err := s.renderRecipes(r, []recipes.Recipe{*rc})
	if err != nil {
		return RecipeDTO{}, err
	}
	return out[0], nil
}

func boolParam(v string) *bool {
	var b bool
	switch v {
	case "1", "true", "True":
		b = true
	case "0", "false", "False":
		b = false
	default:
		return nil
	}
	return &b
}

func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	p, err := parsePager(q)
	if err != nil {
		return err
	}
	f := recipes.Filter{
		Viewer:           viewerID(r),
		TagSlugs:         q["tags"],
		IsFavorited:      boolParam(q.Get("is_favorited")),
		IsInShoppingCart: boolParam(q.Get("is_in_shopping_cart")),
		Limit:            p.limit,
		Offset:           p.offset(),
	}
	if v := q.Get("author"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return fieldError("author", "Введите правильный идентификатор автора.")
		}
		f.AuthorID = id
	}

	list, total, err := s.recipes.List(r.Context(), f)
	if err != nil {
		return err
	}
	dtos, err := s.renderRecipes(r, list)
	if err != nil {
		return err
	}
	page, err := paginate(s.host, r.URL.Path, q, p, total, dtos)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, page)
	return nil
}

func (s *Server) loadRecipe(r *http.Request) (*recipes.Recipe, error) {
	id, err := idParam(r)
	if err != nil {
		return nil, err
	}
	rc, err := s.recipes.GetByID(r.Context(), id, viewerID(r))
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, errNotFound
	}
	return rc, nil
}

func (s *Server) getRecipe(w http.ResponseWriter, r *http.Request) error {
	rc, err := s.loadRecipe(r)
	if err != nil {
		return err
	}
	dto, err := s.renderOne(r, rc)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, dto)
	return nil
}

func (s *Server) createRecipe(w http.ResponseWriter, r *http.Request) error {
	var in recipeInput
	if err := decodeJSON(w, r, &in); err != nil {
		return err
	}
	if err := s.validateRecipe(r.Context(), in, true); err != nil {
		return err
	}
	image, err := s.saveImage(r.Context(), "image", "recipes", in.Image)
	if err != nil {
		return err
	}

	rc, err := s.recipes.Create(r.Context(), viewerID(r), in.toDomain(image))
	if err != nil {
		s.dropImage(r.Context(), image)
		return err
	}
	s.log.Info("recipe created", "recipe_id", rc.ID, "author_id", rc.AuthorID)
	s.notifier.RecipePublished(r.Context(), rc.Name, s.shortLinkURL(rc.ShortLink))

	dto, err := s.renderOne(r, rc)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, dto)
	return nil
}

func (s *Server) updateRecipe(w http.ResponseWriter, r *http.Request) error {
	rc, err := s.loadRecipe(r)
	if err != nil {
		return err
	}
	if err := checkObject(ActionRecipeUpdate, viewerID(r), rc.AuthorID); err != nil {
		return err
	}

	var in recipeInput
	if err := decodeJSON(w, r, &in); err != nil {
		return err
	}
	if err := s.validateRecipe(r.Context(), in, false); err != nil {
		return err
	}
	var image string
	if in.Image != "" {
		if image, err = s.saveImage(r.Context(), "image", "recipes", in.Image); err != nil {
			return err
		}
	}

	updated, err := s.recipes.Update(r.Context(), rc.ID, viewerID(r), in.toDomain(image))
	if err != nil {
		s.dropImage(r.Context(), image)
		return err
	}
	if image != "" {
		s.dropImage(r.Context(), rc.Image)
	}

	dto, err := s.renderOne(r, updated)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, dto)
	return nil
}

func (s *Server) deleteRecipe(w http.ResponseWriter, r *http.Request) error {
	rc, err := s.loadRecipe(r)
	if err != nil {
		return err
	}
	if err := checkObject(ActionRecipeDestroy, viewerID(r), rc.AuthorID); err != nil {
		return err
	}
	if err := s.recipes.Delete(r.Context(), rc.ID); err != nil {
		return err
	}
	s.dropImage(r.Context(), rc.Image)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

/* избранное и корзина */

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request) error {
	return s.link(w, r, s.recipes.AddFavorite)
}

func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request) error {
	return s.unlink(w, r, s.recipes.RemoveFavorite)
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) error {
	return s.link(w, r, s.recipes.AddToCart)
}

func (s *Server) removeFromCart(w http.ResponseWriter, r *http.Request) error {
	return s.unlink(w, r, s.recipes.RemoveFromCart)
}

func (s *Server) link(w http.ResponseWriter, r *http.Request, add func(context.Context, int64, int64) error) error {
	rc, err := s.loadRecipe(r)
	if err != nil {
		return err
	}
	if err := add(r.Context(), viewerID(r), rc.ID); err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, renderRecipeShort(*rc))
	return nil
}

// unlink: рецепта нет в списке — 404.
func (s *Server) unlink(w http.ResponseWriter, r *http.Request, remove func(context.Context, int64, int64) (bool, error)) error {
	rc, err := s.loadRecipe(r)
	if err != nil {
		return err
	}
	ok, err := remove(r.Context(), viewerID(r), rc.ID)
	if err != nil {
		return err
	}
	if !ok {
		return errNotFound
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) downloadCart(w http.ResponseWriter, r *http.Request) error {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "txt"
	}
	if format != "txt" && format != "xlsx" {
		return fieldError("format", "Допустимые форматы: txt, xlsx.")
	}

	cart, err := s.recipes.CartContents(r.Context(), viewerID(r))
	if err != nil {
		return err
	}

	var body []byte
	contentType := "text/plain; charset=utf-8"
	if format == "xlsx" {
		if body, err = shopping.XLSX(cart); err != nil {
			return err
		}
		contentType = xlsxContentType
	} else {
		body = []byte(shopping.Text(cart))
	}
	metrics.ShoppingListDownloads.WithLabelValues(format).Inc()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="shopping_list.`+format+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
	return nil
}

/* короткие ссылки */

func (s *Server) getLink(w http.ResponseWriter, r *http.Request) error {
	rc, err := s.loadRecipe(r)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, ShortLinkDTO{ShortLink: s.shortLinkURL(rc.ShortLink)})
	return nil
}

// resolveShortLink отдаёт сам рецепт; неразборчивый токен — 404.
func (s *Server) resolveShortLink(w http.ResponseWriter, r *http.Request) error {
	token := chi.URLParam(r, "token")
	id, err := shortlink.Decode(token)
	if err != nil {
		return errNotFound
	}
	rc, err := s.recipes.GetByShortLink(r.Context(), token, viewerID(r))
	if err != nil {
		return err
	}
	if rc == nil {
		// токен с ведущими "a" указывает на тот же id
		if rc, err = s.recipes.GetByID(r.Context(), id, viewerID(r)); err != nil {
			return err
		}
	}
	if rc == nil {
		return errNotFound
	}
	dto, err := s.renderOne(r, rc)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, dto)
	return nil
}
