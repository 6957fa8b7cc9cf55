package api

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/laurfratila/microblog/internal/httpx"
	"github.com/laurfratila/microblog/internal/models"
	"github.com/laurfratila/microblog/internal/tasks"
)

var errNoQueue = errors.New("no worker pool configured")

// PasswordsResetRequest schedules a password reset mail for the given
// address. The response is the same whether or not the address is
// registered, so the endpoint cannot be used to enumerate accounts.
func PasswordsResetRequest(env *Env, w http.ResponseWriter, r *http.Request) error {
	var params struct {
		Email string `json:"email" schema:"email"`
	}
	if err := httpx.Params(r, &params); err != nil {
		return err
	}
	user, err := models.NewUsers(env.DB).FindByEmail(params.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			w.WriteHeader(http.StatusAccepted)
			return nil
		}
		return err
	}
	if env.Queue == nil {
		return httpx.Error(http.StatusServiceUnavailable, errNoQueue)
	}
	if _, err := env.Queue.Enqueue(r.Context(), "reset_password", tasks.Args{UserID: user.ID}); err != nil {
		return mapError(err)
	}
	env.Metrics.RecordJobEnqueued()
	w.WriteHeader(http.StatusAccepted)
	return nil
}

// PasswordsUpdate exchanges a valid reset token for a new password.
func PasswordsUpdate(env *Env, w http.ResponseWriter, r *http.Request) error {
	var params struct {
		Token    string `json:"token" schema:"token"`
		Password string `json:"password" schema:"password"`
	}
	if err := httpx.Params(r, &params); err != nil {
		return err
	}
	users := models.NewUsers(env.DB)
	user, err := users.VerifyResetPasswordToken(params.Token, env.Secret)
	if err != nil {
		return httpx.Error(http.StatusBadRequest, err)
	}
	if err := users.SetPassword(user, params.Password); err != nil {
		return mapError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
