// internal/app/features/authn/handler.go
package authn

import (
	"errors"
	"net/http"

	apierrors "github.com/dalemusser/sidequest/internal/app/features/errors"
	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	userstore "github.com/dalemusser/sidequest/internal/app/store/users"
	"github.com/dalemusser/sidequest/internal/app/system/auth"
	"github.com/dalemusser/sidequest/internal/app/system/inputval"
	"github.com/dalemusser/sidequest/internal/app/system/limits"
	"github.com/dalemusser/sidequest/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	ErrLog     *apierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Log:        logger,
	}
}

type signupInput struct {
	DisplayName string `json:"display_name" validate:"notblank,max=60" label:"Display name"`
	Email       string `json:"email" validate:"required,emailaddr" label:"Email"`
	Password    string `json:"password" validate:"required,min=8,max=128" label:"Password"`
}

type loginInput struct {
	Email    string `json:"email" validate:"required" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
}

// HandleSignup handles POST /auth/signup. The new user starts with the
// default preference profile and is signed in.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var in signupInput
	if err := inputval.Decode(w, r, &in, limits.MaxJSONBody); err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}

	u, err := h.Users.Create(r.Context(), models.User{
		DisplayName:  in.DisplayName,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		apierrors.Write(w, http.StatusConflict, "email_taken", err.Error())
		return
	}
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}

	if err := h.startSession(w, r, u); err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	h.Log.Info("user signed up", zap.String("user_id", u.ID))
	apierrors.JSON(w, http.StatusCreated, u)
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := inputval.Decode(w, r, &in, limits.MaxJSONBody); err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}

	u, err := h.Users.GetByEmail(r.Context(), in.Email)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		h.ErrLog.Render(w, r, err)
		return
	}
	if err != nil || auth.CheckPassword(u.PasswordHash, in.Password) != nil {
		h.Log.Warn("login failed", zap.String("email", in.Email))
		apierrors.Write(w, http.StatusUnauthorized, "invalid_credentials", auth.ErrBadCredentials.Error())
		return
	}

	if err := h.startSession(w, r, u); err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	h.Log.Info("user logged in", zap.String("user_id", u.ID))
	apierrors.JSON(w, http.StatusOK, u)
}

// HandleLogout handles POST /auth/logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.Logout(w, r); err != nil {
		h.Log.Warn("logout: clear session", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, u models.User) error {
	return h.SessionMgr.Login(w, r, auth.SessionUser{
		ID:      u.ID,
		Name:    u.DisplayName,
		LoginID: u.Email,
	})
}
