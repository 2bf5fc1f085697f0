package handlers

import (
	"errors"
	"net/http"

	"blogroll/internal/middleware"
	"blogroll/internal/services"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct {
	follows *services.FollowService
	users   *services.UserService
}

func NewFollowHandler(follows *services.FollowService, users *services.UserService) *FollowHandler {
	return &FollowHandler{follows: follows, users: users}
}

// Follow 关注作者。关注自己或重复关注都不报错
func (h *FollowHandler) Follow(c *gin.Context) {
	ctx := c.Request.Context()
	author, err := h.users.ByUsername(ctx, c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	viewer := middleware.CurrentUser(c)
	if _, err := h.follows.Follow(ctx, viewer.ID, author.ID); err != nil && !errors.Is(err, services.ErrSelfFollow) {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/profile/"+author.Username+"/")
}

// Unfollow 取消关注，未关注时返回 404
func (h *FollowHandler) Unfollow(c *gin.Context) {
	ctx := c.Request.Context()
	author, err := h.users.ByUsername(ctx, c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	viewer := middleware.CurrentUser(c)
	if err := h.follows.Unfollow(ctx, viewer.ID, author.ID); err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/profile/"+author.Username+"/")
}
