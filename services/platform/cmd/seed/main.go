package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"fanvault/pkg/apperror"
	"fanvault/pkg/config"
	"fanvault/pkg/database"
	"fanvault/pkg/jwt"
	"fanvault/pkg/logger"
	"fanvault/services/platform/internal/entity"
	"fanvault/services/platform/internal/entitlement"
	"fanvault/services/platform/internal/repo/persistent"
	"fanvault/services/platform/internal/usecase"
)

const seedPassword = "password123"

type seedCreator struct {
	email  string
	handle string
	fandom string
	tiers  []entity.Tier
	posts  []seedPost
}

type seedPost struct {
	title      string
	content    string
	visibility entity.Visibility
	price      int64
}

var creators = []seedCreator{
	{
		email:  "ava@test.com",
		handle: "ava_draws",
		fandom: "Sketchbook Club",
		tiers:  []entity.Tier{{ID: "sketch", Name: "Sketch", Price: 500, Perks: []string{"members posts"}}},
		posts: []seedPost{
			{"Welcome!", "Thanks for stopping by, here is what I am working on.", entity.VisibilityPublic, 0},
			{"Weekly WIP", "Line art for the next commission batch.", entity.VisibilityMembers, 0},
			{"Full timelapse", "Three hours of painting in ten minutes.", entity.VisibilityPPV, 400},
		},
	},
	{
		email:  "milo@test.com",
		handle: "milo_beats",
		fandom: "Night Shift",
		tiers:  []entity.Tier{{ID: "listener", Name: "Listener", Price: 300, Perks: []string{"early tracks"}}},
		posts: []seedPost{
			{"New loop pack", "Free loops for everyone.", entity.VisibilityPublic, 0},
			{"Unreleased track", "Members get it a week early.", entity.VisibilityMembers, 0},
			{"Stems", "Project files for the last single.", entity.VisibilityPPV, 900},
		},
	},
}

var supporters = []string{"alice@test.com", "bob@test.com", "charlie@test.com"}

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.NewWithOptions(cfg.LogLevel, cfg.IsProduction(), os.Stdout).With("seed")

	db, err := database.Open(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}
	if cfg.DBDriver == "sqlite" {
		if err := persistent.AutoMigrate(db); err != nil {
			log.Error("Failed to migrate database: %v", err)
			panic(err)
		}
	}

	store := persistent.NewStore(db)
	evaluator := entitlement.NewEvaluator(store)
	s := &seeder{
		auth:       usecase.NewAuthUseCase(store, jwt.NewService(cfg.JWTSecret), nil, log),
		creators:   usecase.NewCreatorUseCase(store, log),
		content:    usecase.NewContentUseCase(store, evaluator, nil, log),
		membership: usecase.NewMembershipUseCase(store, nil, log),
		log:        log,
	}

	if err := s.run(context.Background()); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}
	log.Info("Database seeded successfully!")
}

// seeder goes through the usecases so seeded earnings match the ledger.
type seeder struct {
	auth       usecase.AuthUseCase
	creators   usecase.CreatorUseCase
	content    usecase.ContentUseCase
	membership usecase.MembershipUseCase
	log        *logger.Logger
}

func (s *seeder) user(ctx context.Context, email string) (string, bool, error) {
	res, err := s.auth.Register(ctx, email, seedPassword, "")
	if err == nil {
		return res.User.ID, true, nil
	}
	if !apperror.Is(err, apperror.ValidationError) {
		return "", false, err
	}

	res, err = s.auth.Login(ctx, email, seedPassword)
	if err != nil {
		return "", false, err
	}
	return res.User.ID, false, nil
}

func (s *seeder) run(ctx context.Context) error {
	supporterIDs := make([]string, 0, len(supporters))
	for _, email := range supporters {
		id, _, err := s.user(ctx, email)
		if err != nil {
			return err
		}
		supporterIDs = append(supporterIDs, id)
	}

	for _, c := range creators {
		userID, created, err := s.user(ctx, c.email)
		if err != nil {
			return err
		}
		if !created {
			s.log.Info("Creator %s already exists, skipping", c.handle)
			continue
		}

		creator, err := s.creators.BecomeCreator(ctx, userID, usecase.CreatorInput{
			Handle:     c.handle,
			FandomName: c.fandom,
			Tiers:      c.tiers,
		})
		if err != nil {
			return err
		}

		var ppvPostID string
		for _, p := range c.posts {
			content := p.content
			post, err := s.content.CreatePost(ctx, userID, usecase.PostInput{
				Title:      p.title,
				Content:    &content,
				Visibility: p.visibility,
				Price:      p.price,
				Published:  true,
			}, nil)
			if err != nil {
				return err
			}
			if p.visibility == entity.VisibilityPPV {
				ppvPostID = post.ID
			}
		}
		s.log.Info("Created creator @%s with %d posts", creator.Handle, len(c.posts))

		if err := s.supporterActivity(ctx, creator, supporterIDs, ppvPostID); err != nil {
			return err
		}
	}
	return nil
}

// supporterActivity gives every creator one subscriber, one tipper and one
// unlock so the earnings views have something to show.
func (s *seeder) supporterActivity(ctx context.Context, creator *entity.Creator, supporterIDs []string, ppvPostID string) error {
	if len(supporterIDs) < 3 {
		return errors.New("seeding needs three supporters")
	}

	tier := creator.Tiers[0]
	if _, err := s.membership.Subscribe(ctx, supporterIDs[0], creator.ID, tier.ID, tier.Price); err != nil {
		return err
	}

	creatorID := creator.ID
	if _, err := s.membership.Tip(ctx, supporterIDs[1], usecase.TipInput{
		CreatorID: &creatorID,
		Amount:    250,
		Message:   "Love your work!",
	}); err != nil {
		return err
	}

	if ppvPostID != "" {
		if _, err := s.membership.UnlockPost(ctx, supporterIDs[2], ppvPostID); err != nil {
			return err
		}
	}
	return nil
}
