package webauth

import "net/http"

// HandleRegister creates a local account and logs it in
func (a *App) HandleRegister(w http.ResponseWriter, r *http.Request) {
	values, err := parseBody(r, "name", "email", "password")
	if err != nil {
		writeError(w, NewValidationError(msgMissingFields))
		return
	}

	user, authErr := RegisterUser(r.Context(), a.Users, Registration{
		Name:     values["name"],
		Email:    values["email"],
		Password: values["password"],
	})
	if authErr != nil {
		a.fail(w, authErr)
		return
	}

	if err := a.Sessions.Establish(r.Context(), user); err != nil {
		a.fail(w, NewSessionError(msgSessionAfterRegister, err))
		return
	}

	a.Logger.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Registration successful",
		"user":    user.Public(),
	})
}
