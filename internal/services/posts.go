package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"blogroll/internal/models"
	"blogroll/internal/paginator"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// PostsPerPage is the page size of every post listing.
	PostsPerPage = 10
	// ExcerptLength is how many characters of a post listings show.
	ExcerptLength = 200
)

// PostPage is one page of a post listing.
type PostPage struct {
	Page  paginator.Page
	Posts []models.Post
}

// PostInput carries the editable fields of a post.
type PostInput struct {
	Text       string
	GroupID    *uint
	Image      *multipart.FileHeader
	ClearImage bool
}

type PostService struct {
	db    *gorm.DB
	media *MediaStore
}

func NewPostService(db *gorm.DB, media *MediaStore) *PostService {
	return &PostService{db: db, media: media}
}

func (s *PostService) list(tx *gorm.DB, rawPage string) (*PostPage, error) {
	page, q, err := paginator.FromQuery(tx.Model(&models.Post{}), rawPage, PostsPerPage)
	if err != nil {
		return nil, err
	}
	var posts []models.Post
	err = q.Preload("Author").Preload("Group").
		Order("created_at DESC").Order("id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return &PostPage{Page: page, Posts: posts}, nil
}

// Index 所有帖子，最新的在前
func (s *PostService) Index(ctx context.Context, rawPage string) (*PostPage, error) {
	return s.list(s.db.WithContext(ctx), rawPage)
}

func (s *PostService) GroupPosts(ctx context.Context, group *models.Group, rawPage string) (*PostPage, error) {
	return s.list(s.db.WithContext(ctx).Where("group_id = ?", group.ID), rawPage)
}

func (s *PostService) AuthorPosts(ctx context.Context, author *models.User, rawPage string) (*PostPage, error) {
	return s.list(s.db.WithContext(ctx).Where("author_id = ?", author.ID), rawPage)
}

// Feed 当前用户关注的作者发布的帖子
func (s *PostService) Feed(ctx context.Context, viewerID uint, rawPage string) (*PostPage, error) {
	tx := s.db.WithContext(ctx)
	followed := tx.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", viewerID)
	return s.list(tx.Where("author_id IN (?)", followed), rawPage)
}

func (s *PostService) GroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error
	if err != nil {
		return nil, notFound(err, "group %q", slug)
	}
	return &group, nil
}

// Groups 发帖表单里的分组选项
func (s *PostService) Groups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := s.db.WithContext(ctx).Order("title").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Preload("Author").Preload("Group").First(&post, id).Error
	if err != nil {
		return nil, notFound(err, "post %d", id)
	}
	return &post, nil
}

// Recent returns up to limit newest posts without pagination.
func (s *PostService) Recent(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("recent posts: %w", err)
	}
	return posts, nil
}

func (s *PostService) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// Comments 帖子的全部评论，最新的在前
func (s *PostService) Comments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at DESC").Order("id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (s *PostService) AddComment(ctx context.Context, postID, authorID uint, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	tx := s.db.WithContext(ctx)
	var exists int64
	if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("post %d: %w", postID, ErrNotFound)
	}

	comment := models.Comment{PostID: postID, AuthorID: authorID, Text: text}
	if err := tx.Omit(clause.Associations).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &comment, nil
}

// Create 保存新帖子，作者为 authorID
func (s *PostService) Create(ctx context.Context, authorID uint, in PostInput) (*models.Post, error) {
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}
	post := models.Post{Text: in.Text, AuthorID: authorID, GroupID: in.GroupID}
	if in.Image != nil {
		name, err := s.media.Save(in.Image)
		if err != nil {
			return nil, err
		}
		post.Image = name
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&post).Error; err != nil {
		s.media.Delete(post.Image)
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &post, nil
}

// Update 修改帖子。新图片替换旧图片，未上传则保留，ClearImage 时删除
func (s *PostService) Update(ctx context.Context, post *models.Post, in PostInput) error {
	if err := s.validate(ctx, &in); err != nil {
		return err
	}

	oldImage, image := post.Image, post.Image
	switch {
	case in.Image != nil:
		name, err := s.media.Save(in.Image)
		if err != nil {
			return err
		}
		image = name
	case in.ClearImage:
		image = ""
	}

	err := s.db.WithContext(ctx).Model(post).Omit(clause.Associations).Updates(map[string]any{
		"text":     in.Text,
		"group_id": in.GroupID,
		"image":    image,
	}).Error
	if err != nil {
		if image != oldImage {
			s.media.Delete(image)
		}
		return fmt.Errorf("update post %d: %w", post.ID, err)
	}

	if image != oldImage {
		s.media.Delete(oldImage)
	}
	post.Text, post.GroupID, post.Image = in.Text, in.GroupID, image
	post.Group = nil
	return nil
}

func (s *PostService) validate(ctx context.Context, in *PostInput) error {
	in.Text = strings.TrimSpace(in.Text)
	if in.Text == "" {
		return ErrEmptyText
	}
	if in.GroupID == nil {
		return nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Group{}).Where("id = ?", *in.GroupID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("group %d: %w", *in.GroupID, ErrUnknownGroup)
	}
	return nil
}

// notFound maps gorm.ErrRecordNotFound to ErrNotFound and wraps everything else.
func notFound(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}
