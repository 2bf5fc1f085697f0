// Command seed fills the database with demo users, groups, posts, comments
// and follows.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	"unicode"

	"blogroll/internal/config"
	"blogroll/internal/db"
	"blogroll/internal/logger"
	"blogroll/internal/models"
	"blogroll/internal/services"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const demoPassword = "blogroll-demo"

func main() {
	configPath := flag.String("config", os.Getenv("BLOG_CONFIG"), "path to the YAML config file")
	users := flag.Int("users", 10, "number of users")
	groups := flag.Int("groups", 4, "number of groups")
	posts := flag.Int("posts", 60, "number of posts")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	zl, err := logger.Init(cfg.Logs.Level, true)
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	gdb, err := db.Open(cfg.Database)
	if err != nil {
		zl.Fatal("database init failed", zap.Error(err))
	}
	if err := seed(context.Background(), gdb, *users, *groups, *posts); err != nil {
		zl.Fatal("seed failed", zap.Error(err))
	}
	zl.Info("seed finished", zap.Int("users", *users), zap.Int("groups", *groups), zap.Int("posts", *posts))
}

func seed(ctx context.Context, gdb *gorm.DB, userCount, groupCount, postCount int) error {
	userSvc := services.NewUserService(gdb)
	follows := services.NewFollowService(gdb)

	authors := make([]*models.User, 0, userCount)
	for i := 0; i < userCount; i++ {
		first := gofakeit.FirstName()
		handle := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, first)
		u, err := userSvc.Register(ctx, services.SignupInput{
			Username:  fmt.Sprintf("%s_%s", handle, gofakeit.Numerify("####")),
			Email:     handle + "@example.com",
			Password:  demoPassword,
			FirstName: first,
			LastName:  gofakeit.LastName(),
		})
		if err != nil {
			return fmt.Errorf("user %d: %w", i, err)
		}
		authors = append(authors, u)
	}
	if len(authors) == 0 {
		return nil
	}

	groupIDs := make([]uint, 0, groupCount)
	for i := 0; i < groupCount; i++ {
		title := strings.Title(gofakeit.Adjective() + " " + gofakeit.Noun())
		g := models.Group{
			Title:       title,
			Slug:        strings.ToLower(strings.ReplaceAll(title, " ", "-")) + "-" + gofakeit.Numerify("###"),
			Description: gofakeit.Quote(),
		}
		if err := gdb.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&g).Error; err != nil {
			return fmt.Errorf("group %d: %w", i, err)
		}
		if g.ID != 0 {
			groupIDs = append(groupIDs, g.ID)
		}
	}

	start := time.Now().Add(-time.Duration(postCount) * time.Hour)
	for i := 0; i < postCount; i++ {
		author := authors[gofakeit.Number(0, len(authors)-1)]
		p := models.Post{
			Text:      gofakeit.Phrase() + ". " + gofakeit.Quote(),
			AuthorID:  author.ID,
			CreatedAt: start.Add(time.Duration(i) * time.Hour),
		}
		if len(groupIDs) > 0 && gofakeit.Bool() {
			id := groupIDs[gofakeit.Number(0, len(groupIDs)-1)]
			p.GroupID = &id
		}
		if err := gdb.WithContext(ctx).Omit(clause.Associations).Create(&p).Error; err != nil {
			return fmt.Errorf("post %d: %w", i, err)
		}

		for n := gofakeit.Number(0, 3); n > 0; n-- {
			commenter := authors[gofakeit.Number(0, len(authors)-1)]
			c := models.Comment{PostID: p.ID, AuthorID: commenter.ID, Text: gofakeit.Phrase()}
			if err := gdb.WithContext(ctx).Omit(clause.Associations).Create(&c).Error; err != nil {
				return fmt.Errorf("comment on post %d: %w", p.ID, err)
			}
		}
	}

	for _, u := range authors {
		for n := gofakeit.Number(0, 3); n > 0; n-- {
			author := authors[gofakeit.Number(0, len(authors)-1)]
			if _, err := follows.Follow(ctx, u.ID, author.ID); err != nil && !errors.Is(err, services.ErrSelfFollow) {
				return fmt.Errorf("follow: %w", err)
			}
		}
	}
	return nil
}
