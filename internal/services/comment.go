package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/socialapp/socialapp/internal/models"
	"github.com/socialapp/socialapp/internal/repository"
	"github.com/socialapp/socialapp/pkg/logger"
	"github.com/socialapp/socialapp/pkg/queue"
)

const maxCommentLength = 300

type CommentService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
	producer    queue.Publisher
	logger      *logger.Logger
}

func NewCommentService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	producer queue.Publisher,
	logger *logger.Logger,
) *CommentService {
	return &CommentService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
		producer:    producer,
		logger:      logger,
	}
}

type AddCommentRequest struct {
	Text     string  `json:"text"`
	ParentID *string `json:"parent_id"`
}

type CommentResult struct {
	Comment      *models.Comment `json:"comment"`
	CommentCount int64           `json:"comment_count"`
}

// AddComment stores a comment (optionally threaded under a parent from
// the same post) and returns it with the recomputed comment count.
// Comments are immutable; there is no edit or delete.
func (s *CommentService) AddComment(ctx context.Context, userID, postID string, req *AddCommentRequest) (*CommentResult, error) {
	if req.Text == "" {
		return nil, ErrTextRequired
	}
	if utf8.RuneCountInString(req.Text) > maxCommentLength {
		return nil, ErrTextTooLong
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	postUUID, err := uuid.Parse(postID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	post, err := s.postRepo.GetByID(ctx, postUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	var parentUUID *uuid.UUID
	if req.ParentID != nil {
		parentID, err := uuid.Parse(*req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("invalid parent comment ID: %w", err)
		}

		parent, err := s.commentRepo.GetByID(ctx, parentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get parent comment: %w", err)
		}
		if parent == nil {
			return nil, ErrCommentNotFound
		}
		if parent.PostID != postUUID {
			return nil, ErrParentInvalid
		}

		parentUUID = &parentID
	}

	comment := &models.Comment{
		UserID:   userUUID,
		PostID:   postUUID,
		Text:     req.Text,
		ParentID: parentUUID,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	comment.User = *user

	if err := s.postRepo.UpdateCommentCount(ctx, postUUID, 1); err != nil {
		s.logger.WithError(err).Error("Failed to update post comment count")
	}

	count, err := s.commentRepo.CountByPostID(ctx, postUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	event, err := queue.NewEvent(queue.EventCommentCreated, comment.CreatedAt, queue.CommentEventData{
		CommentID: comment.ID.String(),
		ActorID:   userID,
		ActorName: user.Username,
		PostID:    postID,
		OwnerID:   post.UserID.String(),
		Text:      comment.Text,
	})
	if err == nil {
		if err := s.producer.Publish(ctx, userID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish comment created event")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"comment_id": comment.ID,
		"user_id":    userID,
		"post_id":    postID,
	}).Info("Comment created successfully")

	return &CommentResult{Comment: comment, CommentCount: count}, nil
}

func (s *CommentService) GetPostComments(ctx context.Context, postID string, offset, limit int) ([]*models.Comment, error) {
	postUUID, err := uuid.Parse(postID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID: %w", err)
	}

	comments, err := s.commentRepo.GetByPostID(ctx, postUUID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get post comments: %w", err)
	}
	return comments, nil
}
