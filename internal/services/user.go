package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/socialapp/socialapp/internal/models"
	"github.com/socialapp/socialapp/internal/repository"
	"github.com/socialapp/socialapp/internal/throttle"
	"github.com/socialapp/socialapp/pkg/logger"
	"github.com/socialapp/socialapp/pkg/queue"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo         repository.UserRepository
	profileRepo      repository.ProfileRepository
	followRepo       repository.FollowRepository
	postRepo         repository.PostRepository
	loginThrottle    *throttle.LoginThrottle
	userProducer     queue.Publisher
	activityProducer queue.Publisher
	logger           *logger.Logger

	// failureDelay slows down brute-force probing; zero in tests.
	failureDelay time.Duration
}

func NewUserService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	followRepo repository.FollowRepository,
	postRepo repository.PostRepository,
	loginThrottle *throttle.LoginThrottle,
	userProducer queue.Publisher,
	activityProducer queue.Publisher,
	failureDelay time.Duration,
	logger *logger.Logger,
) *UserService {
	return &UserService{
		userRepo:         userRepo,
		profileRepo:      profileRepo,
		followRepo:       followRepo,
		postRepo:         postRepo,
		loginThrottle:    loginThrottle,
		userProducer:     userProducer,
		activityProducer: activityProducer,
		failureDelay:     failureDelay,
		logger:           logger,
	}
}

type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=30"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6,max=50"`
	DisplayName string `json:"display_name" binding:"max=50"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Bio      *string `json:"bio" binding:"omitempty,max=500"`
	Location *string `json:"location" binding:"omitempty,max=100"`
	Avatar   *string `json:"avatar"`
}

type FollowStatus struct {
	FollowingStatus bool  `json:"following_status"`
	FollowersCount  int64 `json:"followers_count"`
	FollowingCount  int64 `json:"following_count"`
}

type ProfileView struct {
	User        *models.User    `json:"user"`
	Profile     *models.Profile `json:"profile"`
	Posts       []*models.Post  `json:"posts"`
	Followers   []*models.User  `json:"followers"`
	Following   []*models.User  `json:"following"`
	IsFollowing bool            `json:"is_following"`
	FollowsBack bool            `json:"follows_back"`
}

// Register creates the account and its profile in one synchronous
// operation; a user never exists without a profile row.
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	existingUser, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existingUser != nil {
		return nil, ErrUsernameTaken
	}

	existingUser, err = s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		Password:    string(hashedPassword),
		DisplayName: req.DisplayName,
		IsActive:    true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	profile := &models.Profile{UserID: user.ID}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	user.Profile = profile

	event, err := queue.NewEvent(queue.EventUserRegistered, user.CreatedAt, queue.UserEventData{
		UserID:   user.ID.String(),
		Username: user.Username,
	})
	if err == nil {
		if err := s.userProducer.Publish(ctx, user.ID.String(), event); err != nil {
			s.logger.WithError(err).Error("Failed to publish user registered event")
		}
	}

	s.logger.WithField("user_id", user.ID).Info("User registered successfully")
	return user, nil
}

// Login checks the throttle before the credentials: a locked identifier
// is rejected without a credential check. Each failure is counted,
// refreshes the lockout window, and is answered after a short delay.
// A successful login does not reset the counter; only window expiry
// does.
func (s *UserService) Login(ctx context.Context, req *LoginRequest) (*models.User, error) {
	locked, err := s.loginThrottle.IsLocked(ctx, req.Username)
	if err != nil {
		s.logger.WithError(err).Warn("Login throttle check failed, allowing attempt")
	}
	if locked {
		return nil, ErrTooManyAttempts
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, s.recordFailure(ctx, req.Username)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, s.recordFailure(ctx, req.Username)
	}

	if !user.IsActive {
		return nil, ErrAccountBlocked
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in successfully")
	return user, nil
}

func (s *UserService) recordFailure(ctx context.Context, username string) error {
	attempts, err := s.loginThrottle.RecordFailure(ctx, username)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to record login failure")
	} else {
		s.logger.WithFields(map[string]interface{}{
			"username": username,
			"attempts": attempts,
		}).Info("Login failed")
	}

	if s.failureDelay > 0 {
		time.Sleep(s.failureDelay)
	}
	return ErrInvalidCredentials
}

func (s *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

// GetProfile assembles the profile page bundle: the user's posts,
// follower and following lists, and the relationship with the viewer.
func (s *UserService) GetProfile(ctx context.Context, username, viewerID string) (*ProfileView, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	profile, err := s.profileRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	posts, err := s.postRepo.GetByUserID(ctx, user.ID, 0, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts: %w", err)
	}

	followers, err := s.followRepo.GetFollowers(ctx, user.ID, 0, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}

	following, err := s.followRepo.GetFollowing(ctx, user.ID, 0, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}

	view := &ProfileView{
		User:      user,
		Profile:   profile,
		Posts:     posts,
		Followers: followers,
		Following: following,
	}

	if viewerID != "" && viewerID != user.ID.String() {
		viewerUUID, err := uuid.Parse(viewerID)
		if err != nil {
			return nil, fmt.Errorf("invalid viewer ID: %w", err)
		}

		view.IsFollowing, err = s.followRepo.IsFollowing(ctx, viewerUUID, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check follow status: %w", err)
		}

		view.FollowsBack, err = s.followRepo.IsFollowing(ctx, user.ID, viewerUUID)
		if err != nil {
			return nil, fmt.Errorf("failed to check follow-back status: %w", err)
		}
	}

	return view, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.Profile, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	profile, err := s.profileRepo.GetByUserID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, ErrUserNotFound
	}

	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Location != nil {
		profile.Location = *req.Location
	}
	if req.Avatar != nil {
		profile.Avatar = *req.Avatar
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	event, err := queue.NewEvent(queue.EventProfileUpdated, profile.UpdatedAt, queue.UserEventData{
		UserID: userID,
	})
	if err == nil {
		if err := s.userProducer.Publish(ctx, userID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish profile updated event")
		}
	}

	s.logger.WithField("user_id", userID).Info("Profile updated successfully")
	return profile, nil
}

// ToggleFollow creates the follow relation if absent and deletes it if
// present. Counts in the result are recomputed from the store so the
// caller always gets an authoritative snapshot.
func (s *UserService) ToggleFollow(ctx context.Context, followerID, targetUsername string) (*FollowStatus, error) {
	followerUUID, err := uuid.Parse(followerID)
	if err != nil {
		return nil, fmt.Errorf("invalid follower ID: %w", err)
	}

	follower, err := s.userRepo.GetByID(ctx, followerUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get follower: %w", err)
	}
	if follower == nil {
		return nil, ErrUserNotFound
	}

	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to get target user: %w", err)
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	if follower.ID == target.ID {
		return nil, ErrSelfFollow
	}

	existing, err := s.followRepo.Get(ctx, follower.ID, target.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check follow status: %w", err)
	}

	following := false
	if existing != nil {
		if err := s.followRepo.Delete(ctx, follower.ID, target.ID); err != nil {
			return nil, fmt.Errorf("failed to delete follow: %w", err)
		}
	} else {
		follow := &models.Follow{
			FollowerID: follower.ID,
			FollowedID: target.ID,
		}
		if err := s.followRepo.Create(ctx, follow); err != nil {
			return nil, fmt.Errorf("failed to create follow: %w", err)
		}
		following = true
	}

	followersCount, err := s.followRepo.CountFollowers(ctx, target.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count followers: %w", err)
	}

	followingCount, err := s.followRepo.CountFollowing(ctx, target.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count following: %w", err)
	}

	event, err := queue.NewEvent(queue.EventFollowToggled, time.Now(), queue.FollowEventData{
		FollowerID:   follower.ID.String(),
		FollowerName: follower.Username,
		FollowedID:   target.ID.String(),
		Following:    following,
	})
	if err == nil {
		if err := s.activityProducer.Publish(ctx, followerID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish follow toggled event")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"follower_id": followerID,
		"followed":    targetUsername,
		"following":   following,
	}).Info("Follow toggled")

	return &FollowStatus{
		FollowingStatus: following,
		FollowersCount:  followersCount,
		FollowingCount:  followingCount,
	}, nil
}

func (s *UserService) FollowedUsernames(ctx context.Context, viewerID string) ([]string, error) {
	viewerUUID, err := uuid.Parse(viewerID)
	if err != nil {
		return nil, fmt.Errorf("invalid viewer ID: %w", err)
	}
	return s.followRepo.FollowedUsernames(ctx, viewerUUID)
}

func (s *UserService) Search(ctx context.Context, query string, offset, limit int) ([]*models.User, error) {
	users, err := s.userRepo.Search(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}
