package api

import (
	"errors"
	"net/http"

	"github.com/Spok95/foodgram/internal/auth"
	"github.com/Spok95/foodgram/internal/domain/recipes"
	"github.com/Spok95/foodgram/internal/domain/users"
	"github.com/Spok95/foodgram/internal/validation"
)

type userCreateInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,max=128"`
}

type setPasswordInput struct {
	NewPassword     string `json:"new_password" validate:"required,max=128"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

type avatarInput struct {
	Avatar string `json:"avatar" validate:"required"`
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	p, err := parsePager(q)
	if err != nil {
		return err
	}
	list, total, err := s.users.List(r.Context(), p.limit, p.offset())
	if err != nil {
		return err
	}
	ids := make([]int64, len(list))
	for i, u := range list {
		ids[i] = u.ID
	}
	vc, err := s.viewerContext(r, ids)
	if err != nil {
		return err
	}
	dtos := make([]UserDTO, len(list))
	for i, u := range list {
		dtos[i] = renderUser(u, vc)
	}
	page, err := paginate(s.host, r.URL.Path, q, p, total, dtos)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, page)
	return nil
}

func hashPassword(field, password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", fieldError(field, "Пароль слишком длинный.")
	}
	return hash, err
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) error {
	var in userCreateInput
	if err := decodeJSON(w, r, &in); err != nil {
		return err
	}
	if err := validation.Struct(in); err != nil {
		return err
	}
	hash, err := hashPassword("password", in.Password)
	if err != nil {
		return err
	}
	u, err := s.users.Create(r.Context(), users.NewUser{
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}
	s.log.Info("user registered", "user_id", u.ID)
	writeJSON(w, http.StatusCreated, renderUserCreated(*u))
	return nil
}

func (s *Server) loadUser(r *http.Request) (*users.User, error) {
	id, err := idParam(r)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errNotFound
	}
	return u, nil
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) error {
	u, err := s.loadUser(r)
	if err != nil {
		return err
	}
	vc, err := s.viewerContext(r, []int64{u.ID})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, renderUser(*u, vc))
	return nil
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) error {
	vc, err := s.viewerContext(r, nil)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, renderUser(*viewer(r), vc))
	return nil
}

func (s *Server) setAvatar(w http.ResponseWriter, r *http.Request) error {
	var in avatarInput
	if err := decodeJSON(w, r, &in); err != nil {
		return err
	}
	if err := validation.Struct(in); err != nil {
		return err
	}
	u := viewer(r)
	url, err := s.saveImage(r.Context(), "avatar", "avatars", in.Avatar)
	if err != nil {
		return err
	}
	if err := s.users.SetAvatar(r.Context(), u.ID, url); err != nil {
		s.dropImage(r.Context(), url)
		return err
	}
	s.dropImage(r.Context(), u.Avatar)
	writeJSON(w, http.StatusOK, AvatarDTO{Avatar: url})
	return nil
}

func (s *Server) deleteAvatar(w http.ResponseWriter, r *http.Request) error {
	u := viewer(r)
	if err := s.users.SetAvatar(r.Context(), u.ID, ""); err != nil {
		return err
	}
	s.dropImage(r.Context(), u.Avatar)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) setPassword(w http.ResponseWriter, r *http.Request) error {
	var in setPasswordInput
	if err := decodeJSON(w, r, &in); err != nil {
		return err
	}
	if err := validation.Struct(in); err != nil {
		return err
	}
	u := viewer(r)
	if err := auth.CheckPassword(u.PasswordHash, in.CurrentPassword); err != nil {
		return fieldError("current_password", "Неверный пароль.")
	}
	hash, err := hashPassword("new_password", in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.SetPassword(r.Context(), u.ID, hash); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

/* подписки */

// authorCards рендерит авторов вместе с их рецептами (не больше recipes_limit).
func (s *Server) authorCards(r *http.Request, authors []users.User) ([]UserWithRecipesDTO, error) {
	limit, err := positiveParam(r.URL.Query(), "recipes_limit")
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}
	counts, err := s.recipes.CountByAuthor(r.Context(), ids)
	if err != nil {
		return nil, err
	}
	vc, err := s.viewerContext(r, ids)
	if err != nil {
		return nil, err
	}

	out := make([]UserWithRecipesDTO, len(authors))
	for i, a := range authors {
		var list []recipes.Recipe
		if list, err = s.recipes.ListByAuthor(r.Context(), a.ID, limit, vc.Viewer); err != nil {
			return nil, err
		}
		out[i] = renderUserWithRecipes(a, list, counts[a.ID], vc)
	}
	return out, nil
}

func (s *Server) listSubscriptions(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	p, err := parsePager(q)
	if err != nil {
		return err
	}
	authors, total, err := s.subs.ListAuthors(r.Context(), viewerID(r), p.limit, p.offset())
	if err != nil {
		return err
	}
	cards, err := s.authorCards(r, authors)
	if err != nil {
		return err
	}
	page, err := paginate(s.host, r.URL.Path, q, p, total, cards)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, page)
	return nil
}

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) error {
	author, err := s.loadUser(r)
	if err != nil {
		return err
	}
	// recipes_limit проверяем до записи
	if _, err := positiveParam(r.URL.Query(), "recipes_limit"); err != nil {
		return err
	}
	if err := s.subs.Subscribe(r.Context(), viewerID(r), author.ID); err != nil {
		return err
	}
	cards, err := s.authorCards(r, []users.User{*author})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, cards[0])
	return nil
}

func (s *Server) unsubscribe(w http.ResponseWriter, r *http.Request) error {
	author, err := s.loadUser(r)
	if err != nil {
		return err
	}
	ok, err := s.subs.Unsubscribe(r.Context(), viewerID(r), author.ID)
	if err != nil {
		return err
	}
	if !ok {
		return errNotFound
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
