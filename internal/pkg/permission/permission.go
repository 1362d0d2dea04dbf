package permission

import "errors"

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
)

// Viewer identifies the requesting user. The zero Viewer is anonymous.
type Viewer struct {
	ID         int64
	Privileged bool
}

func (v Viewer) Authenticated() bool { return v.ID != 0 }

// Action names an operation guarded by the tables below.
type Action string

const (
	ActionList             Action = "list"
	ActionRetrieve         Action = "retrieve"
	ActionCreate           Action = "create"
	ActionUpdate           Action = "update"
	ActionDelete           Action = "delete"
	ActionFavorite         Action = "favorite"
	ActionShoppingCart     Action = "shopping_cart"
	ActionDownloadCart     Action = "download_shopping_cart"
	ActionGetLink          Action = "get_link"
	ActionSubscribe        Action = "subscribe"
	ActionSubscriptions    Action = "subscriptions"
	ActionSetPassword      Action = "set_password"
	ActionSetAvatar        Action = "set_avatar"
	ActionCurrentUser      Action = "me"
)

// Checker decides whether a viewer may run an action against a resource
// owned by ownerID. Pass ownerID 0 for resources with no author; only a
// privileged viewer then passes the author check (user IDs start at 1).
type Checker func(v Viewer, ownerID int64) error

// AllowAny admits everyone, including anonymous viewers.
func AllowAny(Viewer, int64) error { return nil }

// RequireAuthenticated admits any logged-in viewer.
func RequireAuthenticated(v Viewer, _ int64) error {
	if !v.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

// RequireAuthorOrPrivileged admits the resource owner and admins.
func RequireAuthorOrPrivileged(v Viewer, ownerID int64) error {
	if !v.Authenticated() {
		return ErrUnauthenticated
	}
	if v.Privileged || v.ID == ownerID {
		return nil
	}
	return ErrForbidden
}

// ReadOnly rejects every mutation regardless of viewer.
func ReadOnly(Viewer, int64) error { return ErrForbidden }

// Recipes maps recipe actions to their required capability. Actions
// absent from the table fall back to AllowAny.
var Recipes = map[Action]Checker{
	ActionCreate:       RequireAuthenticated,
	ActionUpdate:       RequireAuthorOrPrivileged,
	ActionDelete:       RequireAuthorOrPrivileged,
	ActionFavorite:     RequireAuthenticated,
	ActionShoppingCart: RequireAuthenticated,
	ActionDownloadCart: RequireAuthenticated,
}

// Users maps user/profile actions.
var Users = map[Action]Checker{
	ActionCurrentUser:   RequireAuthenticated,
	ActionSetPassword:   RequireAuthenticated,
	ActionSetAvatar:     RequireAuthenticated,
	ActionSubscribe:     RequireAuthenticated,
	ActionSubscriptions: RequireAuthenticated,
}

// Reference guards tag/ingredient data: writes are admin-only, handled
// as author checks against ownerless rows.
var Reference = map[Action]Checker{
	ActionCreate: RequireAuthorOrPrivileged,
	ActionUpdate: ReadOnly,
	ActionDelete: ReadOnly,
}

// Check looks the action up in the table and applies the checker.
func Check(table map[Action]Checker, action Action, v Viewer, ownerID int64) error {
	checker, ok := table[action]
	if !ok {
		checker = AllowAny
	}
	return checker(v, ownerID)
}
