package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"fanvault/pkg/apperror"
	"fanvault/pkg/logger"
	"fanvault/services/platform/internal/entitlement"
	"fanvault/services/platform/internal/entity"
	"fanvault/services/platform/internal/repo"

	"github.com/google/uuid"
)

// MediaStore stores post media. *s3.Client satisfies it.
type MediaStore interface {
	Upload(key string, body io.ReadSeeker, contentType string) (string, error)
	Delete(key string) error
}

type MediaUpload struct {
	Filename    string
	ContentType string
	Body        io.ReadSeeker
}

type PostInput struct {
	Title      string
	Content    *string
	Visibility entity.Visibility
	Price      int64
	Published  bool
}

type PostPatch struct {
	Title      *string
	Content    *string
	Visibility *entity.Visibility
	Price      *int64
	Published  *bool
}

type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

type ContentUseCase interface {
	ListPosts(ctx context.Context, viewerID string) ([]entity.PostView, error)
	ListCreatorPosts(ctx context.Context, creatorID, viewerID string) ([]entity.PostView, error)
	GetPost(ctx context.Context, postID, viewerID string) (*entity.PostView, error)
	CreatePost(ctx context.Context, userID string, input PostInput, media *MediaUpload) (*entity.Post, error)
	UpdatePost(ctx context.Context, userID, postID string, patch PostPatch) (*entity.Post, error)
	DeletePost(ctx context.Context, userID, postID string) error
	LikePost(ctx context.Context, userID, postID string) (*LikeResult, error)
}

type contentUseCase struct {
	store     repo.Store
	evaluator *entitlement.Evaluator
	media     MediaStore
	logger    *logger.Logger
}

func NewContentUseCase(store repo.Store, evaluator *entitlement.Evaluator, media MediaStore, logger *logger.Logger) ContentUseCase {
	return &contentUseCase{
		store:     store,
		evaluator: evaluator,
		media:     media,
		logger:    logger,
	}
}

// validatePost enforces the visibility and price rules: ppv needs a
// positive price, everything else is free.
func validatePost(post *entity.Post) error {
	if strings.TrimSpace(post.Title) == "" {
		return invalid("title is required")
	}
	if !post.Visibility.Valid() {
		return invalid("visibility must be one of public, members, ppv")
	}
	if post.Visibility == entity.VisibilityPPV {
		if post.Price <= 0 {
			return invalid("pay-per-view posts require a price greater than zero")
		}
	} else {
		post.Price = 0
	}
	return nil
}

func (uc *contentUseCase) ListPosts(ctx context.Context, viewerID string) ([]entity.PostView, error) {
	posts, err := uc.store.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return uc.evaluator.EvaluateAll(ctx, posts, viewerID)
}

func (uc *contentUseCase) ListCreatorPosts(ctx context.Context, creatorID, viewerID string) ([]entity.PostView, error) {
	if _, err := uc.store.GetCreator(ctx, creatorID); err != nil {
		return nil, lookup(err, "Creator")
	}

	posts, err := uc.store.ListPostsByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list creator posts: %w", err)
	}
	return uc.evaluator.EvaluateAll(ctx, posts, viewerID)
}

// GetPost always answers with a view; denied viewers get the redacted form.
func (uc *contentUseCase) GetPost(ctx context.Context, postID, viewerID string) (*entity.PostView, error) {
	post, err := uc.store.GetPost(ctx, postID)
	if err != nil {
		return nil, lookup(err, "Post")
	}

	decision, err := uc.evaluator.Evaluate(ctx, post, viewerID)
	if err != nil {
		return nil, err
	}
	view := entitlement.Redact(post, decision)
	return &view, nil
}

func (uc *contentUseCase) ownedCreator(ctx context.Context, userID string) (*entity.Creator, error) {
	creator, err := uc.store.GetCreatorByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.New(apperror.AccessDenied, "Only creators can manage posts")
		}
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}
	return creator, nil
}

func (uc *contentUseCase) CreatePost(ctx context.Context, userID string, input PostInput, media *MediaUpload) (*entity.Post, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}

	creator, err := uc.ownedCreator(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := &entity.Post{
		CreatorID:  creator.ID,
		Title:      strings.TrimSpace(input.Title),
		Content:    input.Content,
		Visibility: input.Visibility,
		Price:      input.Price,
		Published:  input.Published,
	}
	if post.Visibility == "" {
		post.Visibility = entity.VisibilityPublic
	}
	if err := validatePost(post); err != nil {
		return nil, err
	}

	var mediaKey string
	if media != nil {
		if uc.media == nil {
			return nil, invalid("media uploads are not enabled")
		}
		mediaType, err := mediaTypeOf(media.ContentType)
		if err != nil {
			return nil, err
		}

		mediaKey = fmt.Sprintf("posts/%s/%s%s", creator.ID, uuid.New().String(), strings.ToLower(filepath.Ext(media.Filename)))
		url, err := uc.media.Upload(mediaKey, media.Body, media.ContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to upload media: %w", err)
		}
		post.MediaURL = &url
		post.MediaType = mediaType
	}

	if err := uc.store.CreatePost(ctx, post); err != nil {
		if mediaKey != "" {
			if delErr := uc.media.Delete(mediaKey); delErr != nil {
				uc.logger.Warn("Failed to remove orphaned media %s: %v", mediaKey, delErr)
			}
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	uc.logger.Info("Creator %s published %s post %s", creator.ID, post.Visibility, post.ID)
	return post, nil
}

func mediaTypeOf(contentType string) (entity.MediaType, error) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return entity.MediaTypeImage, nil
	case strings.HasPrefix(contentType, "video/"):
		return entity.MediaTypeVideo, nil
	}
	return entity.MediaTypeNone, invalid("unsupported media type %q", contentType)
}

func (uc *contentUseCase) UpdatePost(ctx context.Context, userID, postID string, patch PostPatch) (*entity.Post, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}

	creator, err := uc.ownedCreator(ctx, userID)
	if err != nil {
		return nil, err
	}

	var updated *entity.Post
	err = uc.store.WithTx(ctx, func(tx repo.Store) error {
		post, err := tx.LockPost(ctx, postID)
		if err != nil {
			return lookup(err, "Post")
		}
		if post.CreatorID != creator.ID {
			return apperror.New(apperror.AccessDenied, "You can only edit your own posts")
		}

		if patch.Title != nil {
			post.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Content != nil {
			post.Content = patch.Content
		}
		if patch.Visibility != nil {
			post.Visibility = *patch.Visibility
		}
		if patch.Price != nil {
			post.Price = *patch.Price
		}
		if patch.Published != nil {
			post.Published = *patch.Published
		}
		if err := validatePost(post); err != nil {
			return err
		}

		if err := tx.UpdatePost(ctx, post); err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}
		updated = post
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeletePost removes the post together with its comments, their votes and
// its likes. Tips and unlocks stay as the purchase record.
func (uc *contentUseCase) DeletePost(ctx context.Context, userID, postID string) error {
	if err := requireViewer(userID); err != nil {
		return err
	}

	creator, err := uc.ownedCreator(ctx, userID)
	if err != nil {
		return err
	}

	post, err := uc.store.GetPost(ctx, postID)
	if err != nil {
		return lookup(err, "Post")
	}
	if post.CreatorID != creator.ID {
		return apperror.New(apperror.AccessDenied, "You can only delete your own posts")
	}

	if err := uc.store.DeletePost(ctx, postID); err != nil {
		return lookup(err, "Post")
	}

	uc.logger.Info("Creator %s deleted post %s", creator.ID, postID)
	return nil
}

// LikePost toggles the caller's like. The like row and the counter move
// together and the counter never drops below zero.
func (uc *contentUseCase) LikePost(ctx context.Context, userID, postID string) (*LikeResult, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}

	result := &LikeResult{}
	err := uc.store.WithTx(ctx, func(tx repo.Store) error {
		post, err := tx.LockPost(ctx, postID)
		if err != nil {
			return lookup(err, "Post")
		}

		like, err := tx.GetLike(ctx, postID, userID)
		switch {
		case err == nil:
			if err := tx.DeleteLike(ctx, like.ID); err != nil {
				return fmt.Errorf("failed to remove like: %w", err)
			}
			if post.Likes > 0 {
				post.Likes--
			}
		case errors.Is(err, repo.ErrNotFound):
			if err := tx.CreateLike(ctx, &entity.Like{PostID: postID, UserID: userID}); err != nil {
				return fmt.Errorf("failed to add like: %w", err)
			}
			post.Likes++
			result.Liked = true
		default:
			return fmt.Errorf("failed to load like: %w", err)
		}

		if err := tx.UpdatePost(ctx, post); err != nil {
			return fmt.Errorf("failed to update like count: %w", err)
		}
		result.Likes = post.Likes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
