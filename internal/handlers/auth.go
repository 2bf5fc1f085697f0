package handlers

import (
	"errors"
	"net/http"
	"strings"

	"blogroll/internal/logger"
	"blogroll/internal/middleware"
	"blogroll/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	users *services.UserService
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

func (h *AuthHandler) ShowSignup(c *gin.Context) {
	Render(c, http.StatusOK, "users/signup.html", gin.H{"Title": "Sign up", "Form": SignupForm{}, "Errors": FieldErrors{}})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var form SignupForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderSignup(c, form, bindErrors(err))
		return
	}

	user, err := h.users.Register(c.Request.Context(), services.SignupInput{
		Username:  form.Username,
		Email:     form.Email,
		Password:  form.Password,
		FirstName: form.FirstName,
		LastName:  form.LastName,
	})
	if errors.Is(err, services.ErrUsernameTaken) {
		h.renderSignup(c, form, FieldErrors{"username": "A user with that username already exists."})
		return
	}
	if errors.Is(err, services.ErrInvalidUsername) {
		h.renderSignup(c, form, FieldErrors{"username": "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	if err := middleware.Login(c, user); err != nil {
		fail(c, err)
		return
	}
	logger.Log.Info("user registered", zap.String("username", user.Username))
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) renderSignup(c *gin.Context, form SignupForm, errs FieldErrors) {
	form.Password, form.Password2 = "", ""
	Render(c, http.StatusOK, "users/signup.html", gin.H{"Title": "Sign up", "Form": form, "Errors": errs})
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "users/login.html", gin.H{
		"Title":  "Log in",
		"Next":   safeNext(c.Query("next")),
		"Errors": FieldErrors{},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	next := safeNext(c.PostForm("next"))
	if next == "" {
		next = safeNext(c.Query("next"))
	}

	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		Render(c, http.StatusOK, "users/login.html", gin.H{
			"Title": "Log in", "Next": next, "Username": form.Username, "Errors": bindErrors(err),
		})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil && !errors.Is(err, services.ErrInvalidCredentials) {
		fail(c, err)
		return
	}
	if err != nil {
		Render(c, http.StatusOK, "users/login.html", gin.H{
			"Title": "Log in", "Next": next, "Username": form.Username, "Errors": FieldErrors{},
			"Error": "Please enter a correct username and password.",
		})
		return
	}

	if err := middleware.Login(c, user); err != nil {
		fail(c, err)
		return
	}
	if next == "" {
		next = "/"
	}
	c.Redirect(http.StatusFound, next)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	_ = middleware.Logout(c)
	c.Redirect(http.StatusFound, "/")
}

// safeNext only accepts local paths so login cannot redirect off-site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
