package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/weiawesome/wes-io-blog/internal/config"
	"github.com/weiawesome/wes-io-blog/internal/domain"
	"github.com/weiawesome/wes-io-blog/internal/repository"
	"github.com/weiawesome/wes-io-blog/pkg/database"
	"github.com/weiawesome/wes-io-blog/pkg/jwt"
	pkglog "github.com/weiawesome/wes-io-blog/pkg/log"
)

func main() {
	users := flag.Int("users", 5, "number of users")
	postsPerUser := flag.Int("posts", 4, "posts per user")
	seed := flag.Int64("seed", 0, "random seed, 0 uses the clock")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}
	pkglog.Init(pkglog.Config{Level: cfg.Log.Level, Pretty: true, ServiceName: "blog-seed"})
	logger := pkglog.L()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	gofakeit.Seed(*seed)

	db, err := database.New(&database.Config{
		Driver:   cfg.Database.Driver,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
		FilePath: cfg.Database.FilePath,
		LogLevel: cfg.Database.LogLevel,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.AutoMigrate(db, domain.Models()...); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}

	var tokens *jwt.Manager
	if cfg.Auth.JWTSecret != "" {
		tokens, err = jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.Issuer)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create token manager")
		}
	}

	ctx := context.Background()
	userRepo := repository.NewGormUserRepository(db)
	groupRepo := repository.NewGormGroupRepository(db)
	postRepo := repository.NewGormPostRepository(db)
	followRepo := repository.NewGormFollowRepository(db)

	groups := make([]domain.Group, 0, 3)
	for _, slug := range []string{gofakeit.Word(), gofakeit.Word(), "empty-group"} {
		slug = strings.ToLower(slug)
		g := domain.Group{Title: strings.ToUpper(slug[:1]) + slug[1:], Slug: slug, Description: gofakeit.Sentence(8)}
		if err := groupRepo.Create(ctx, &g); err != nil {
			existing, getErr := groupRepo.GetBySlug(ctx, slug)
			if getErr != nil {
				logger.Fatal().Err(err).Str("slug", slug).Msg("failed to create group")
			}
			g = *existing
		}
		groups = append(groups, g)
	}

	seeded := make([]domain.User, 0, *users)
	for i := 0; i < *users; i++ {
		u := domain.User{ID: uuid.NewString(), Username: strings.ToLower(gofakeit.Username())}
		if err := userRepo.Ensure(ctx, u.ID, u.Username); err != nil {
			logger.Warn().Err(err).Str("username", u.Username).Msg("skipping user")
			continue
		}
		seeded = append(seeded, u)

		for j := 0; j < *postsPerUser; j++ {
			post := domain.Post{AuthorID: u.ID, Text: gofakeit.Paragraph(1, 3, 12, " ")}
			// Leave the last group empty.
			if g := gofakeit.Number(0, len(groups)); g < len(groups)-1 {
				post.GroupID = &groups[g].ID
			}
			if err := postRepo.Create(ctx, &post); err != nil {
				logger.Fatal().Err(err).Msg("failed to create post")
			}
		}
	}

	follows := 0
	for _, u := range seeded {
		for _, author := range seeded {
			if u.ID == author.ID || !gofakeit.Bool() {
				continue
			}
			created, err := followRepo.Follow(ctx, u.ID, author.ID)
			if err != nil {
				logger.Fatal().Err(err).Msg("failed to create follow")
			}
			if created {
				follows++
			}
		}
	}

	logger.Info().
		Int("users", len(seeded)).
		Int("groups", len(groups)).
		Int("follows", follows).
		Int64("seed", *seed).
		Msg("seed completed")

	if tokens == nil {
		logger.Warn().Msg("JWT_SECRET not set; no tokens printed")
		return
	}
	for i, u := range seeded {
		var roles []string
		if i == 0 {
			roles = []string{"admin"}
		}
		token, _, err := tokens.GenerateAccessToken(u.ID, u.Username, roles)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to generate token")
		}
		fmt.Printf("%s\t%s\n", u.Username, token)
	}
}
