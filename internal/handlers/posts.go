package handlers

import (
	"net/http"
	"strconv"

	"blogroll/internal/logger"
	"blogroll/internal/middleware"
	"blogroll/internal/models"
	"blogroll/internal/services"
	"blogroll/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PostHandler struct {
	posts   *services.PostService
	follows *services.FollowService
	users   *services.UserService
}

func NewPostHandler(posts *services.PostService, follows *services.FollowService, users *services.UserService) *PostHandler {
	return &PostHandler{posts: posts, follows: follows, users: users}
}

// Index 首页，所有帖子
func (h *PostHandler) Index(c *gin.Context) {
	page, err := h.posts.Index(c.Request.Context(), c.Query("page"))
	if err != nil {
		fail(c, err)
		return
	}
	Render(c, http.StatusOK, "posts/index.html", gin.H{
		"Title": "Latest posts",
		"Page":  page.Page,
		"Posts": page.Posts,
	})
}

// GroupPosts 分组下的帖子
func (h *PostHandler) GroupPosts(c *gin.Context) {
	ctx := c.Request.Context()
	group, err := h.posts.GroupBySlug(ctx, c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	page, err := h.posts.GroupPosts(ctx, group, c.Query("page"))
	if err != nil {
		fail(c, err)
		return
	}
	Render(c, http.StatusOK, "posts/group_list.html", gin.H{
		"Title": group.Title,
		"Group": group,
		"Page":  page.Page,
		"Posts": page.Posts,
	})
}

// Profile 用户主页
func (h *PostHandler) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	author, err := h.users.ByUsername(ctx, c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	page, err := h.posts.AuthorPosts(ctx, author, c.Query("page"))
	if err != nil {
		fail(c, err)
		return
	}

	following := false
	if viewer := middleware.CurrentUser(c); viewer != nil {
		if following, err = h.follows.IsFollowing(ctx, viewer.ID, author.ID); err != nil {
			fail(c, err)
			return
		}
	}
	followers, followingCount, err := h.follows.Counts(ctx, author.ID)
	if err != nil {
		fail(c, err)
		return
	}

	Render(c, http.StatusOK, "posts/profile.html", gin.H{
		"Title":          author.FullName(),
		"Author":         author,
		"Page":           page.Page,
		"Posts":          page.Posts,
		"PostCount":      page.Page.Count,
		"Following":      following,
		"FollowerCount":  followers,
		"FollowingCount": followingCount,
	})
}

// PostDetail 帖子详情和评论
func (h *PostHandler) PostDetail(c *gin.Context) {
	ctx := c.Request.Context()
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	comments, err := h.posts.Comments(ctx, post.ID)
	if err != nil {
		fail(c, err)
		return
	}
	authorPosts, err := h.posts.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		fail(c, err)
		return
	}

	viewer := middleware.CurrentUser(c)
	Render(c, http.StatusOK, "posts/post_detail.html", gin.H{
		"Title":       utils.Truncate(post.Text, 30),
		"Post":        post,
		"Comments":    comments,
		"AuthorPosts": authorPosts,
		"IsEdit":      viewer != nil && viewer.ID == post.AuthorID,
		"Form":        CommentForm{},
	})
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	h.renderPostForm(c, http.StatusOK, nil, PostForm{}, nil)
}

func (h *PostHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	form, in, errs := postInput(c)
	if len(errs) > 0 {
		h.renderPostForm(c, http.StatusOK, nil, form, errs)
		return
	}

	post, err := h.posts.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		if ferrs, ok := serviceFieldErrors(err); ok {
			h.renderPostForm(c, http.StatusOK, nil, form, ferrs)
			return
		}
		fail(c, err)
		return
	}
	logger.Log.Info("post created", zap.Uint("post_id", post.ID), zap.String("author", user.Username))
	c.Redirect(http.StatusFound, "/profile/"+user.Username+"/")
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	post, ok := h.ownPost(c)
	if !ok {
		return
	}
	form := PostForm{Text: post.Text, Group: groupValue(post.GroupID)}
	h.renderPostForm(c, http.StatusOK, post, form, nil)
}

func (h *PostHandler) Update(c *gin.Context) {
	post, ok := h.ownPost(c)
	if !ok {
		return
	}
	form, in, errs := postInput(c)
	if len(errs) > 0 {
		h.renderPostForm(c, http.StatusOK, post, form, errs)
		return
	}

	if err := h.posts.Update(c.Request.Context(), post, in); err != nil {
		if ferrs, ok := serviceFieldErrors(err); ok {
			h.renderPostForm(c, http.StatusOK, post, form, ferrs)
			return
		}
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, postURL(post.ID))
}

// AddComment 发表评论，无效内容直接忽略
func (h *PostHandler) AddComment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := utils.ParseID(c.Param("post_id"))
	if !ok {
		NotFound(c)
		return
	}
	ctx := c.Request.Context()
	if _, err := h.posts.Get(ctx, id); err != nil {
		fail(c, err)
		return
	}

	var form CommentForm
	if err := c.ShouldBind(&form); err != nil {
		logger.Log.Debug("comment dropped", zap.Uint("post_id", id), zap.Error(err))
		c.Redirect(http.StatusFound, postURL(id))
		return
	}
	if _, err := h.posts.AddComment(ctx, id, user.ID, form.Text); err != nil {
		if _, invalid := serviceFieldErrors(err); !invalid {
			fail(c, err)
			return
		}
		logger.Log.Debug("comment dropped", zap.Uint("post_id", id), zap.Error(err))
	}
	c.Redirect(http.StatusFound, postURL(id))
}

// FollowIndex 关注作者的帖子流
func (h *PostHandler) FollowIndex(c *gin.Context) {
	user := middleware.CurrentUser(c)
	page, err := h.posts.Feed(c.Request.Context(), user.ID, c.Query("page"))
	if err != nil {
		fail(c, err)
		return
	}
	Render(c, http.StatusOK, "posts/follow.html", gin.H{
		"Title": "Following",
		"Page":  page.Page,
		"Posts": page.Posts,
	})
}

func (h *PostHandler) loadPost(c *gin.Context) (*models.Post, bool) {
	id, ok := utils.ParseID(c.Param("post_id"))
	if !ok {
		NotFound(c)
		return nil, false
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return post, true
}

// ownPost loads the post and redirects to its page when the viewer is not the author.
func (h *PostHandler) ownPost(c *gin.Context) (*models.Post, bool) {
	post, ok := h.loadPost(c)
	if !ok {
		return nil, false
	}
	if post.AuthorID != middleware.CurrentUser(c).ID {
		c.Redirect(http.StatusFound, postURL(post.ID))
		return nil, false
	}
	return post, true
}

func (h *PostHandler) renderPostForm(c *gin.Context, code int, post *models.Post, form PostForm, errs FieldErrors) {
	groups, err := h.posts.Groups(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	title := "New post"
	if post != nil {
		title = "Edit post"
	}
	Render(c, code, "posts/create_post.html", gin.H{
		"Title":  title,
		"IsEdit": post != nil,
		"Post":   post,
		"Form":   form,
		"Errors": errs,
		"Groups": groups,
	})
}

func postURL(id uint) string {
	return "/posts/" + strconv.FormatUint(uint64(id), 10) + "/"
}
