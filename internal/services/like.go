package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/socialapp/socialapp/internal/models"
	"github.com/socialapp/socialapp/internal/repository"
	"github.com/socialapp/socialapp/pkg/logger"
	"github.com/socialapp/socialapp/pkg/queue"
)

type LikeService struct {
	postRepo repository.PostRepository
	likeRepo repository.LikeRepository
	userRepo repository.UserRepository
	producer queue.Publisher
	logger   *logger.Logger
}

func NewLikeService(
	postRepo repository.PostRepository,
	likeRepo repository.LikeRepository,
	userRepo repository.UserRepository,
	producer queue.Publisher,
	logger *logger.Logger,
) *LikeService {
	return &LikeService{
		postRepo: postRepo,
		likeRepo: likeRepo,
		userRepo: userRepo,
		producer: producer,
		logger:   logger,
	}
}

type LikeStatus struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// ToggleLike creates the (user, post) like if absent and deletes it if
// present. The returned count is recomputed rather than derived from a
// delta, so concurrent toggles by other users cannot drift it.
func (s *LikeService) ToggleLike(ctx context.Context, userID, postID string) (*LikeStatus, error) {
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

	existing, err := s.likeRepo.Get(ctx, userUUID, postUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to check like status: %w", err)
	}

	liked := false
	if existing != nil {
		if err := s.likeRepo.Delete(ctx, userUUID, postUUID); err != nil {
			return nil, fmt.Errorf("failed to delete like: %w", err)
		}
		if err := s.postRepo.UpdateLikeCount(ctx, postUUID, -1); err != nil {
			s.logger.WithError(err).Error("Failed to update post like count")
		}
	} else {
		like := &models.Like{
			UserID: userUUID,
			PostID: postUUID,
		}
		if err := s.likeRepo.Create(ctx, like); err != nil {
			return nil, fmt.Errorf("failed to create like: %w", err)
		}
		if err := s.postRepo.UpdateLikeCount(ctx, postUUID, 1); err != nil {
			s.logger.WithError(err).Error("Failed to update post like count")
		}
		liked = true
	}

	count, err := s.likeRepo.CountByPostID(ctx, postUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}

	event, err := queue.NewEvent(queue.EventLikeToggled, time.Now(), queue.LikeEventData{
		ActorID:   userID,
		ActorName: user.Username,
		PostID:    postID,
		OwnerID:   post.UserID.String(),
		Liked:     liked,
	})
	if err == nil {
		if err := s.producer.Publish(ctx, userID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish like toggled event")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"post_id": postID,
		"liked":   liked,
	}).Info("Like toggled")

	return &LikeStatus{Liked: liked, LikeCount: count}, nil
}
