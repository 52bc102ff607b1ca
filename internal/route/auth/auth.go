package auth

import (
	"errors"
	"net/http"

	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/dense-analysis/stockwarp/internal/route/util"
	"github.com/dense-analysis/stockwarp/internal/session"
	"github.com/dense-analysis/stockwarp/internal/store"
	"github.com/dense-analysis/stockwarp/internal/template"
	"golang.org/x/crypto/bcrypt"
)

type LoginPageData struct {
	template.Page
	Failed bool
}

func renderLoginForm(app *util.App, writer http.ResponseWriter, request *http.Request, failed bool) {
	if failed {
		writer.WriteHeader(http.StatusUnauthorized)
	}

	data := LoginPageData{Page: template.Page{Title: "Log in"}, Failed: failed}

	app.Render(writer, template.Login, data)
}

// HandleIndex sends users to their portfolio, or to the login page.
func HandleIndex(app *util.App, writer http.ResponseWriter, request *http.Request) {
	var user model.User
	found, failed := app.LoadUser(writer, request, &user)

	if failed {
		return
	}

	if found {
		http.Redirect(writer, request, "/portfolio", http.StatusFound)
	} else {
		http.Redirect(writer, request, "/login", http.StatusFound)
	}
}

func HandleViewLoginForm(app *util.App, writer http.ResponseWriter, request *http.Request) {
	renderLoginForm(app, writer, request, false)
}

// checkLogin returns the user for a username and password pair.
func checkLogin(app *util.App, request *http.Request, username, password string) (model.User, bool, error) {
	if len(username) == 0 || len(password) == 0 {
		return model.User{}, false, nil
	}

	user, err := app.Store.FindUserByUsername(request.Context(), username)

	if errors.Is(err, store.ErrNotFound) {
		return user, false, nil
	}

	if err != nil {
		return user, false, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return user, false, nil
	}

	return user, true, nil
}

func HandleLogin(app *util.App, writer http.ResponseWriter, request *http.Request) {
	request.ParseForm()
	username := request.Form.Get("username")
	password := request.Form.Get("password")

	user, loginValid, err := checkLogin(app, request, username, password)

	if err != nil {
		app.RespondInternalServerError(writer, request, err)

		return
	}

	if !loginValid {
		app.Log.Info().Str("username", username).Msg("failed login")
		renderLoginForm(app, writer, request, true)

		return
	}

	if err := session.SaveUserInSession(writer, request, &user); err != nil {
		app.RespondInternalServerError(writer, request, err)

		return
	}

	http.Redirect(writer, request, "/portfolio", http.StatusFound)
}

func HandleLogout(app *util.App, writer http.ResponseWriter, request *http.Request) {
	if err := session.ClearSession(writer, request); err != nil {
		app.RespondInternalServerError(writer, request, err)

		return
	}

	http.Redirect(writer, request, "/login", http.StatusFound)
}
