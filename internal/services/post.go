package services

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/socialapp/socialapp/internal/config"
	"github.com/socialapp/socialapp/internal/models"
	"github.com/socialapp/socialapp/internal/repository"
	"github.com/socialapp/socialapp/pkg/cache"
	"github.com/socialapp/socialapp/pkg/logger"
	"github.com/socialapp/socialapp/pkg/queue"
)

const maxCaptionLength = 300

const feedCacheKey = "feed:recent"

type PostService struct {
	postRepo   repository.PostRepository
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	cache      *cache.RedisClient
	producer   queue.Publisher
	feedCfg    *config.FeedConfig
	logger     *logger.Logger
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	cache *cache.RedisClient,
	producer queue.Publisher,
	feedCfg *config.FeedConfig,
	logger *logger.Logger,
) *PostService {
	return &PostService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		followRepo: followRepo,
		cache:      cache,
		producer:   producer,
		feedCfg:    feedCfg,
		logger:     logger,
	}
}

type PostRequest struct {
	Caption  string `json:"caption"`
	ImageURL string `json:"image_url"`
	VideoURL string `json:"video_url"`
}

type PostView struct {
	*models.Post
	Hashtags []string `json:"hashtags"`
}

type FeedView struct {
	Posts          []*PostView     `json:"posts"`
	FollowStatuses map[string]bool `json:"follow_statuses"`
}

// validatePost runs the submission checks in a fixed order and reports
// the first failure: both media, then neither, then the caption.
func validatePost(req *PostRequest) error {
	if req.ImageURL != "" && req.VideoURL != "" {
		return ErrBothMedia
	}
	if req.ImageURL == "" && req.VideoURL == "" {
		return ErrNoMedia
	}
	if req.Caption == "" {
		return ErrCaptionRequired
	}
	if utf8.RuneCountInString(req.Caption) > maxCaptionLength {
		return ErrCaptionTooLong
	}
	return nil
}

func (s *PostService) CreatePost(ctx context.Context, userID string, req *PostRequest) (*models.Post, error) {
	if err := validatePost(req); err != nil {
		return nil, err
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	post := &models.Post{
		UserID:   userUUID,
		Caption:  req.Caption,
		ImageURL: req.ImageURL,
		VideoURL: req.VideoURL,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	post.User = *user

	s.invalidateFeedCache(ctx)

	event, err := queue.NewEvent(queue.EventPostCreated, post.CreatedAt, queue.PostEventData{
		PostID:   post.ID.String(),
		UserID:   userID,
		Username: user.Username,
		Caption:  post.Caption,
	})
	if err == nil {
		if err := s.producer.Publish(ctx, userID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish post created event")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"post_id": post.ID,
		"user_id": userID,
	}).Info("Post created successfully")

	return post, nil
}

// UpdatePost replaces the caption and media of an existing post. Only
// the owner may edit; the owner itself is immutable.
func (s *PostService) UpdatePost(ctx context.Context, userID, postID string, req *PostRequest) (*models.Post, error) {
	if err := validatePost(req); err != nil {
		return nil, err
	}

	post, err := s.getOwnedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	post.Caption = req.Caption
	post.ImageURL = req.ImageURL
	post.VideoURL = req.VideoURL

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	s.invalidateFeedCache(ctx)

	event, err := queue.NewEvent(queue.EventPostUpdated, time.Now(), queue.PostEventData{
		PostID:  postID,
		UserID:  userID,
		Caption: post.Caption,
	})
	if err == nil {
		if err := s.producer.Publish(ctx, userID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish post updated event")
		}
	}

	s.logger.WithField("post_id", postID).Info("Post updated successfully")
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := s.getOwnedPost(ctx, userID, postID)
	if err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.invalidateFeedCache(ctx)

	event, err := queue.NewEvent(queue.EventPostDeleted, time.Now(), queue.PostEventData{
		PostID: postID,
		UserID: userID,
	})
	if err == nil {
		if err := s.producer.Publish(ctx, userID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish post deleted event")
		}
	}

	s.logger.WithField("post_id", postID).Info("Post deleted successfully")
	return nil
}

func (s *PostService) getOwnedPost(ctx context.Context, userID, postID string) (*models.Post, error) {
	postUUID, err := uuid.Parse(postID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID: %w", err)
	}

	post, err := s.postRepo.GetByID(ctx, postUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.UserID.String() != userID {
		return nil, ErrPermissionDenied
	}
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	postUUID, err := uuid.Parse(postID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID: %w", err)
	}

	post, err := s.postRepo.GetByID(ctx, postUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// Feed returns all posts newest first, annotated with the viewer's
// follow status per author. The post list for the first page is cached;
// follow statuses are always viewer-specific and fetched fresh.
func (s *PostService) Feed(ctx context.Context, viewerID string, offset, limit int) (*FeedView, error) {
	var posts []*models.Post

	cacheable := offset == 0 && s.cache != nil
	if cacheable {
		var cached []*models.Post
		if err := s.cache.GetJSON(ctx, feedCacheKey, &cached); err == nil {
			posts = cached
		}
	}

	if posts == nil {
		var err error
		posts, err = s.postRepo.ListRecent(ctx, offset, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list posts: %w", err)
		}
		if cacheable {
			if err := s.cache.SetJSON(ctx, feedCacheKey, posts, s.feedCfg.CacheTTL); err != nil {
				s.logger.WithError(err).Warn("Failed to cache feed")
			}
		}
	}

	followStatuses := make(map[string]bool)
	if viewerID != "" {
		viewerUUID, err := uuid.Parse(viewerID)
		if err != nil {
			return nil, fmt.Errorf("invalid viewer ID: %w", err)
		}
		usernames, err := s.followRepo.FollowedUsernames(ctx, viewerUUID)
		if err != nil {
			return nil, fmt.Errorf("failed to get follow statuses: %w", err)
		}
		for _, username := range usernames {
			followStatuses[username] = true
		}
	}

	views := make([]*PostView, len(posts))
	for i, post := range posts {
		views[i] = &PostView{Post: post, Hashtags: post.Hashtags()}
	}

	return &FeedView{Posts: views, FollowStatuses: followStatuses}, nil
}

func (s *PostService) GetUserPosts(ctx context.Context, userID string, offset, limit int) ([]*models.Post, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	posts, err := s.postRepo.GetByUserID(ctx, userUUID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get user posts: %w", err)
	}
	return posts, nil
}

func (s *PostService) Search(ctx context.Context, query string, offset, limit int) ([]*models.Post, error) {
	posts, err := s.postRepo.Search(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	return posts, nil
}

func (s *PostService) invalidateFeedCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, feedCacheKey); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate feed cache")
	}
}
