package api

import (
	"context"
	"net/http"

	"github.com/Spok95/foodgram/internal/infra/cache"
)

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) error {
	out, err := cache.Fetch(r.Context(), s.cache, r.Method, r.URL.Path, func(ctx context.Context) ([]TagDTO, error) {
		list, err := s.tags.List(ctx)
		if err != nil {
			return nil, err
		}
		return renderTags(list), nil
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) getTag(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r)
	if err != nil {
		return err
	}
	out, err := cache.Fetch(r.Context(), s.cache, r.Method, r.URL.Path, func(ctx context.Context) (TagDTO, error) {
		t, err := s.tags.GetByID(ctx, id)
		if err != nil {
			return TagDTO{}, err
		}
		if t == nil {
			return TagDTO{}, errNotFound
		}
		return renderTag(*t), nil
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

// listIngredients: ?name= — поиск по началу названия, такие ответы не кэшируются.
func (s *Server) listIngredients(w http.ResponseWriter, r *http.Request) error {
	load := func(ctx context.Context, prefix string) ([]IngredientDTO, error) {
		list, err := s.ings.List(ctx, prefix)
		if err != nil {
			return nil, err
		}
		return renderIngredients(list), nil
	}

	if name := r.URL.Query().Get("name"); name != "" {
		out, err := load(r.Context(), name)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, out)
		return nil
	}

	out, err := cache.Fetch(r.Context(), s.cache, r.Method, r.URL.Path, func(ctx context.Context) ([]IngredientDTO, error) {
		return load(ctx, "")
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) getIngredient(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r)
	if err != nil {
		return err
	}
	out, err := cache.Fetch(r.Context(), s.cache, r.Method, r.URL.Path, func(ctx context.Context) (IngredientDTO, error) {
		in, err := s.ings.GetByID(ctx, id)
		if err != nil {
			return IngredientDTO{}, err
		}
		if in == nil {
			return IngredientDTO{}, errNotFound
		}
		return renderIngredient(*in), nil
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}
