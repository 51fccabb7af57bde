package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fanvault/pkg/apperror"
	"fanvault/pkg/logger"
	"fanvault/services/platform/internal/entitlement"
	"fanvault/services/platform/internal/entity"
	"fanvault/services/platform/internal/repo"
)

type VoteResult struct {
	Comment  *entity.Comment  `json:"comment"`
	UserVote *entity.VoteType `json:"user_vote"`
}

type CommentUseCase interface {
	ListComments(ctx context.Context, viewerID, postID string) ([]*entity.Comment, error)
	CreateComment(ctx context.Context, userID, postID, content string) (*entity.Comment, error)
	VoteComment(ctx context.Context, userID, commentID string, voteType entity.VoteType) (*VoteResult, error)
	HideComment(ctx context.Context, userID, commentID string, hidden bool) (*entity.Comment, error)
	DeleteComment(ctx context.Context, userID, commentID string) error
}

type commentUseCase struct {
	store     repo.Store
	evaluator *entitlement.Evaluator
	logger    *logger.Logger
}

func NewCommentUseCase(store repo.Store, evaluator *entitlement.Evaluator, logger *logger.Logger) CommentUseCase {
	return &commentUseCase{store: store, evaluator: evaluator, logger: logger}
}

// TallyVotes counts up and down votes. Comment tallies are always rebuilt
// from this, never adjusted in place.
func TallyVotes(votes []*entity.CommentVote) (up, down int) {
	for _, v := range votes {
		switch v.VoteType {
		case entity.VoteUp:
			up++
		case entity.VoteDown:
			down++
		}
	}
	return up, down
}

// isPostCreator reports whether userID owns the creator profile behind post.
func isPostCreator(ctx context.Context, store repo.CreatorRepository, userID string, post *entity.Post) (bool, error) {
	if userID == "" {
		return false, nil
	}
	creator, err := store.GetCreatorByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load creator: %w", err)
	}
	return creator.ID == post.CreatorID, nil
}

// ListComments hides moderated comments from everyone but the post's creator.
func (uc *commentUseCase) ListComments(ctx context.Context, viewerID, postID string) ([]*entity.Comment, error) {
	post, err := uc.store.GetPost(ctx, postID)
	if err != nil {
		return nil, lookup(err, "Post")
	}

	comments, err := uc.store.ListCommentsByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	owner, err := isPostCreator(ctx, uc.store, viewerID, post)
	if err != nil {
		return nil, err
	}
	if owner {
		return comments, nil
	}

	visible := make([]*entity.Comment, 0, len(comments))
	for _, c := range comments {
		if !c.IsHidden {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// CreateComment requires the same entitlement as viewing the post.
func (uc *commentUseCase) CreateComment(ctx context.Context, userID, postID, content string) (*entity.Comment, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("comment content is required")
	}

	post, err := uc.store.GetPost(ctx, postID)
	if err != nil {
		return nil, lookup(err, "Post")
	}

	decision, err := uc.evaluator.Evaluate(ctx, post, userID)
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}

	comment := &entity.Comment{PostID: postID, UserID: userID, Content: content}
	if err := uc.store.CreateComment(ctx, comment); err != nil {
		return nil, lookup(err, "Post")
	}
	return comment, nil
}

// VoteComment applies the toggle rule: the same vote again removes it, the
// opposite vote replaces it. Tallies are recomputed from the stored votes.
func (uc *commentUseCase) VoteComment(ctx context.Context, userID, commentID string, voteType entity.VoteType) (*VoteResult, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}
	if !voteType.Valid() {
		return nil, invalid("vote type must be upvote or downvote")
	}

	result := &VoteResult{}
	err := uc.store.WithTx(ctx, func(tx repo.Store) error {
		comment, err := tx.LockComment(ctx, commentID)
		if err != nil {
			return lookup(err, "Comment")
		}

		existing, err := tx.GetCommentVote(ctx, commentID, userID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			existing = nil
		case err != nil:
			return fmt.Errorf("failed to load vote: %w", err)
		}

		if existing != nil {
			if err := tx.DeleteCommentVote(ctx, existing.ID); err != nil {
				return fmt.Errorf("failed to remove vote: %w", err)
			}
		}
		if existing == nil || existing.VoteType != voteType {
			vote := &entity.CommentVote{CommentID: commentID, UserID: userID, VoteType: voteType}
			if err := tx.CreateCommentVote(ctx, vote); err != nil {
				if errors.Is(err, repo.ErrConflict) {
					return apperror.New(apperror.DuplicateVote, "Vote already recorded")
				}
				return fmt.Errorf("failed to record vote: %w", err)
			}
			result.UserVote = ptr(voteType)
		}

		votes, err := tx.ListCommentVotesByComment(ctx, commentID)
		if err != nil {
			return fmt.Errorf("failed to load votes: %w", err)
		}
		comment.Upvotes, comment.Downvotes = TallyVotes(votes)
		if err := tx.UpdateComment(ctx, comment); err != nil {
			return fmt.Errorf("failed to update tallies: %w", err)
		}
		result.Comment = comment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *commentUseCase) HideComment(ctx context.Context, userID, commentID string, hidden bool) (*entity.Comment, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}

	var updated *entity.Comment
	err := uc.store.WithTx(ctx, func(tx repo.Store) error {
		comment, err := tx.LockComment(ctx, commentID)
		if err != nil {
			return lookup(err, "Comment")
		}
		post, err := tx.GetPost(ctx, comment.PostID)
		if err != nil {
			return lookup(err, "Post")
		}

		owner, err := isPostCreator(ctx, tx, userID, post)
		if err != nil {
			return err
		}
		if !owner {
			return apperror.New(apperror.AccessDenied, "Only the post's creator can hide comments")
		}

		comment.IsHidden = hidden
		if err := tx.UpdateComment(ctx, comment); err != nil {
			return fmt.Errorf("failed to update comment: %w", err)
		}
		updated = comment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteComment is allowed for the comment's author and the post's creator.
func (uc *commentUseCase) DeleteComment(ctx context.Context, userID, commentID string) error {
	if err := requireViewer(userID); err != nil {
		return err
	}

	comment, err := uc.store.GetComment(ctx, commentID)
	if err != nil {
		return lookup(err, "Comment")
	}

	if comment.UserID != userID {
		post, err := uc.store.GetPost(ctx, comment.PostID)
		if err != nil {
			return lookup(err, "Post")
		}
		owner, err := isPostCreator(ctx, uc.store, userID, post)
		if err != nil {
			return err
		}
		if !owner {
			return apperror.New(apperror.AccessDenied, "You can only delete your own comments")
		}
	}

	if err := uc.store.DeleteComment(ctx, commentID); err != nil {
		return lookup(err, "Comment")
	}
	return nil
}
