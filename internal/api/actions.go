package api

import "fmt"

// Action — операция API. Права проверяются по таблице actions, без разбора имён.
type Action int

const (
	ActionUnknown Action = iota
	ActionTagList
	ActionTagDetail
	ActionIngredientList
	ActionIngredientDetail
	ActionRecipeList
	ActionRecipeRetrieve
	ActionRecipeCreate
	ActionRecipeUpdate
	ActionRecipeDestroy
	ActionFavoriteAdd
	ActionFavoriteRemove
	ActionCartAdd
	ActionCartRemove
	ActionCartDownload
	ActionRecipeLink
	ActionShortLinkResolve
	ActionUserList
	ActionUserCreate
	ActionUserDetail
	ActionUserMe
	ActionAvatarSet
	ActionAvatarDelete
	ActionSetPassword
	ActionSubscriptions
	ActionSubscribe
	ActionUnsubscribe
)

type Permission int

const (
	AllowAny Permission = iota
	Authenticated
	AuthorOnly // аутентифицирован и является автором объекта
)

type actionSpec struct {
	name string
	perm Permission
}

var actions = map[Action]actionSpec{
	ActionTagList:          {"tag_list", AllowAny},
	ActionTagDetail:        {"tag_detail", AllowAny},
	ActionIngredientList:   {"ingredient_list", AllowAny},
	ActionIngredientDetail: {"ingredient_detail", AllowAny},
	ActionRecipeList:       {"recipe_list", AllowAny},
	ActionRecipeRetrieve:   {"recipe_retrieve", AllowAny},
	ActionRecipeCreate:     {"recipe_create", Authenticated},
	ActionRecipeUpdate:     {"recipe_update", AuthorOnly},
	ActionRecipeDestroy:    {"recipe_destroy", AuthorOnly},
	ActionFavoriteAdd:      {"favorite_add", Authenticated},
	ActionFavoriteRemove:   {"favorite_remove", Authenticated},
	ActionCartAdd:          {"cart_add", Authenticated},
	ActionCartRemove:       {"cart_remove", Authenticated},
	ActionCartDownload:     {"cart_download", Authenticated},
	ActionRecipeLink:       {"recipe_link", AllowAny},
	ActionShortLinkResolve: {"short_link_resolve", AllowAny},
	ActionUserList:         {"user_list", AllowAny},
	ActionUserCreate:       {"user_create", AllowAny},
	ActionUserDetail:       {"user_detail", AllowAny},
	ActionUserMe:           {"user_me", Authenticated},
	ActionAvatarSet:        {"avatar_set", Authenticated},
	ActionAvatarDelete:     {"avatar_delete", Authenticated},
	ActionSetPassword:      {"set_password", Authenticated},
	ActionSubscriptions:    {"subscriptions", Authenticated},
	ActionSubscribe:        {"subscribe", Authenticated},
	ActionUnsubscribe:      {"unsubscribe", Authenticated},
}

func (a Action) String() string {
	if s, ok := actions[a]; ok {
		return s.name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Permission возвращает права действия; ok=false для неизвестного действия.
func (a Action) Permission() (Permission, bool) {
	s, ok := actions[a]
	return s.perm, ok
}

// check — проверка прав до загрузки объекта.
func check(a Action, viewer int64) error {
	perm, ok := a.Permission()
	if !ok {
		return errMethodNotAllowed
	}
	if perm != AllowAny && viewer == 0 {
		return errUnauthorized
	}
	return nil
}

// checkObject — объектная проверка для AuthorOnly.
func checkObject(a Action, viewer, ownerID int64) error {
	if err := check(a, viewer); err != nil {
		return err
	}
	if perm, _ := a.Permission(); perm == AuthorOnly && viewer != ownerID {
		return errForbidden
	}
	return nil
}
