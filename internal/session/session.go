// Package session handles saving/loading users to/from sessions
package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/dense-analysis/stockwarp/internal/store"
	"github.com/gorilla/sessions"
)

const sessionName = "sessionid"

var sessionStore *sessions.CookieStore

// UserGetter loads a user by ID.
type UserGetter interface {
	GetUser(ctx context.Context, userID int64) (model.User, error)
}

// InitSessionStorage starts up cookie session storage signed with secretKey.
func InitSessionStorage(secretKey string) error {
	if len(secretKey) == 0 {
		return errors.New("no session secret key set")
	}

	sessionStore = sessions.NewCookieStore([]byte(secretKey))
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	return nil
}

// LoadUserFromSession loads the logged in user into user.
//
// false is returned when nobody is logged in or the user no longer exists.
func LoadUserFromSession(users UserGetter, request *http.Request, user *model.User) (bool, error) {
	session, sessionError := sessionStore.Get(request, sessionName)

	if sessionError != nil {
		return false, nil
	}

	userID, ok := session.Values["userID"].(int64)

	if !ok {
		return false, nil
	}

	loaded, err := users.GetUser(request.Context(), userID)

	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	*user = loaded

	return true, nil
}

func SaveUserInSession(writer http.ResponseWriter, request *http.Request, user *model.User) error {
	session, _ := sessionStore.Get(request, sessionName)
	session.Values["userID"] = user.ID

	return session.Save(request, writer)
}

func ClearSession(writer http.ResponseWriter, request *http.Request) error {
	session, _ := sessionStore.Get(request, sessionName)

	for key := range session.Values {
		delete(session.Values, key)
	}

	session.Options.MaxAge = -1

	return session.Save(request, writer)
}
