package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/socialapp/socialapp/internal/config"
	"github.com/socialapp/socialapp/internal/models"
	"github.com/socialapp/socialapp/internal/throttle"
	"github.com/socialapp/socialapp/pkg/logger"
	"github.com/socialapp/socialapp/pkg/queue"
)

// fakeStore backs all repository fakes with shared state so services
// under test observe each other's writes, like they would through a
// real database.
type fakeStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*models.User
	profiles map[uuid.UUID]*models.Profile
	follows  map[[2]uuid.UUID]*models.Follow
	posts    map[uuid.UUID]*models.Post
	likes    map[[2]uuid.UUID]*models.Like
	comments map[uuid.UUID]*models.Comment
	chats    map[uuid.UUID]*models.Chat
	members  map[uuid.UUID][]uuid.UUID
	messages []*models.Message

	base time.Time
	seq  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[uuid.UUID]*models.User),
		profiles: make(map[uuid.UUID]*models.Profile),
		follows:  make(map[[2]uuid.UUID]*models.Follow),
		posts:    make(map[uuid.UUID]*models.Post),
		likes:    make(map[[2]uuid.UUID]*models.Like),
		comments: make(map[uuid.UUID]*models.Comment),
		chats:    make(map[uuid.UUID]*models.Chat),
		members:  make(map[uuid.UUID][]uuid.UUID),
		base:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick hands out strictly increasing timestamps so ordering assertions
// are deterministic.
func (s *fakeStore) tick() time.Time {
	s.seq++
	return s.base.Add(time.Duration(s.seq) * time.Millisecond)
}

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.ID = uuid.New()
	user.CreatedAt = r.s.tick()
	r.s.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.users[id], nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Search(_ context.Context, query string, _, _ int) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var users []*models.User
	for _, u := range r.s.users {
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(query)) ||
			strings.Contains(strings.ToLower(u.DisplayName), strings.ToLower(query)) {
			users = append(users, u)
		}
	}
	return users, nil
}

type fakeProfileRepo struct{ s *fakeStore }

func (r *fakeProfileRepo) Create(_ context.Context, profile *models.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	profile.ID = uuid.New()
	profile.CreatedAt = r.s.tick()
	r.s.profiles[profile.UserID] = profile
	return nil
}

func (r *fakeProfileRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.profiles[userID], nil
}

func (r *fakeProfileRepo) Update(_ context.Context, profile *models.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	profile.UpdatedAt = r.s.tick()
	r.s.profiles[profile.UserID] = profile
	return nil
}

type fakeFollowRepo struct{ s *fakeStore }

func (r *fakeFollowRepo) Create(_ context.Context, follow *models.Follow) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	follow.ID = uuid.New()
	follow.CreatedAt = r.s.tick()
	r.s.follows[[2]uuid.UUID{follow.FollowerID, follow.FollowedID}] = follow
	return nil
}

func (r *fakeFollowRepo) Delete(_ context.Context, followerID, followedID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.follows, [2]uuid.UUID{followerID, followedID})
	return nil
}

func (r *fakeFollowRepo) Get(_ context.Context, followerID, followedID uuid.UUID) (*models.Follow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.follows[[2]uuid.UUID{followerID, followedID}], nil
}

func (r *fakeFollowRepo) GetFollowers(_ context.Context, userID uuid.UUID, _, _ int) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var users []*models.User
	for key := range r.s.follows {
		if key[1] == userID {
			users = append(users, r.s.users[key[0]])
		}
	}
	return users, nil
}

func (r *fakeFollowRepo) GetFollowing(_ context.Context, userID uuid.UUID, _, _ int) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var users []*models.User
	for key := range r.s.follows {
		if key[0] == userID {
			users = append(users, r.s.users[key[1]])
		}
	}
	return users, nil
}

func (r *fakeFollowRepo) CountFollowers(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for key := range r.s.follows {
		if key[1] == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeFollowRepo) CountFollowing(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for key := range r.s.follows {
		if key[0] == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeFollowRepo) IsFollowing(_ context.Context, followerID, followedID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.follows[[2]uuid.UUID{followerID, followedID}]
	return ok, nil
}

func (r *fakeFollowRepo) FollowedUsernames(_ context.Context, followerID uuid.UUID) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var usernames []string
	for key := range r.s.follows {
		if key[0] == followerID {
			usernames = append(usernames, r.s.users[key[1]].Username)
		}
	}
	return usernames, nil
}

type fakePostRepo struct{ s *fakeStore }

func (r *fakePostRepo) Create(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	post.ID = uuid.New()
	post.CreatedAt = r.s.tick()
	r.s.posts[post.ID] = post
	return nil
}

func (r *fakePostRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	post, ok := r.s.posts[id]
	if !ok || post.IsDeleted {
		return nil, nil
	}
	return post, nil
}

func (r *fakePostRepo) GetByUserID(_ context.Context, userID uuid.UUID, _, _ int) ([]*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var posts []*models.Post
	for _, p := range r.s.posts {
		if p.UserID == userID && !p.IsDeleted {
			posts = append(posts, p)
		}
	}
	sortPostsDesc(posts)
	return posts, nil
}

func (r *fakePostRepo) ListRecent(_ context.Context, _, _ int) ([]*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var posts []*models.Post
	for _, p := range r.s.posts {
		if !p.IsDeleted {
			posts = append(posts, p)
		}
	}
	sortPostsDesc(posts)
	return posts, nil
}

func (r *fakePostRepo) Update(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	post.UpdatedAt = r.s.tick()
	r.s.posts[post.ID] = post
	return nil
}

func (r *fakePostRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if post, ok := r.s.posts[id]; ok {
		post.IsDeleted = true
	}
	return nil
}

func (r *fakePostRepo) UpdateLikeCount(_ context.Context, postID uuid.UUID, delta int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if post, ok := r.s.posts[postID]; ok {
		post.LikeCount += delta
	}
	return nil
}

func (r *fakePostRepo) UpdateCommentCount(_ context.Context, postID uuid.UUID, delta int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if post, ok := r.s.posts[postID]; ok {
		post.CommentCount += delta
	}
	return nil
}

func (r *fakePostRepo) Search(_ context.Context, query string, _, _ int) ([]*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var posts []*models.Post
	for _, p := range r.s.posts {
		if !p.IsDeleted && strings.Contains(strings.ToLower(p.Caption), strings.ToLower(query)) {
			posts = append(posts, p)
		}
	}
	sortPostsDesc(posts)
	return posts, nil
}

func sortPostsDesc(posts []*models.Post) {
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

type fakeLikeRepo struct{ s *fakeStore }

func (r *fakeLikeRepo) Create(_ context.Context, like *models.Like) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	like.ID = uuid.New()
	like.CreatedAt = r.s.tick()
	r.s.likes[[2]uuid.UUID{like.UserID, like.PostID}] = like
	return nil
}

func (r *fakeLikeRepo) Delete(_ context.Context, userID, postID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.likes, [2]uuid.UUID{userID, postID})
	return nil
}

func (r *fakeLikeRepo) Get(_ context.Context, userID, postID uuid.UUID) (*models.Like, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.likes[[2]uuid.UUID{userID, postID}], nil
}

func (r *fakeLikeRepo) CountByPostID(_ context.Context, postID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for key := range r.s.likes {
		if key[1] == postID {
			count++
		}
	}
	return count, nil
}

type fakeCommentRepo struct{ s *fakeStore }

func (r *fakeCommentRepo) Create(_ context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	comment.ID = uuid.New()
	comment.CreatedAt = r.s.tick()
	r.s.comments[comment.ID] = comment
	return nil
}

func (r *fakeCommentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.comments[id], nil
}

func (r *fakeCommentRepo) GetByPostID(_ context.Context, postID uuid.UUID, _, _ int) ([]*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var comments []*models.Comment
	for _, c := range r.s.comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (r *fakeCommentRepo) CountByPostID(_ context.Context, postID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, c := range r.s.comments {
		if c.PostID == postID {
			count++
		}
	}
	return count, nil
}

type fakeChatRepo struct{ s *fakeStore }

func (r *fakeChatRepo) Create(_ context.Context, chat *models.Chat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	chat.ID = uuid.New()
	chat.CreatedAt = r.s.tick()
	r.s.chats[chat.ID] = chat
	return nil
}

func (r *fakeChatRepo) AddParticipants(_ context.Context, chatID uuid.UUID, userIDs ...uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.members[chatID] = append(r.s.members[chatID], userIDs...)
	return nil
}

func (r *fakeChatRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	chat, ok := r.s.chats[id]
	if !ok {
		return nil, nil
	}
	return r.withParticipants(chat), nil
}

func (r *fakeChatRepo) GetByParticipants(_ context.Context, userA, userB uuid.UUID) (*models.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var match *models.Chat
	for id, chat := range r.s.chats {
		hasA, hasB := false, false
		for _, uid := range r.s.members[id] {
			if uid == userA {
				hasA = true
			}
			if uid == userB {
				hasB = true
			}
		}
		if hasA && hasB {
			if match == nil || chat.CreatedAt.Before(match.CreatedAt) {
				match = chat
			}
		}
	}
	if match == nil {
		return nil, nil
	}
	return r.withParticipants(match), nil
}

func (r *fakeChatRepo) GetUserChats(_ context.Context, userID uuid.UUID) ([]*models.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var chats []*models.Chat
	for id, chat := range r.s.chats {
		for _, uid := range r.s.members[id] {
			if uid == userID {
				chats = append(chats, r.withParticipants(chat))
				break
			}
		}
	}
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].CreatedAt.After(chats[j].CreatedAt)
	})
	return chats, nil
}

func (r *fakeChatRepo) withParticipants(chat *models.Chat) *models.Chat {
	copied := *chat
	copied.Participants = nil
	for _, uid := range r.s.members[chat.ID] {
		if u, ok := r.s.users[uid]; ok {
			copied.Participants = append(copied.Participants, *u)
		}
	}
	return &copied
}

type fakeMessageRepo struct{ s *fakeStore }

func (r *fakeMessageRepo) Create(_ context.Context, message *models.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	message.ID = uuid.New()
	message.CreatedAt = r.s.tick()
	r.s.messages = append(r.s.messages, message)
	return nil
}

func (r *fakeMessageRepo) GetByChatID(_ context.Context, chatID uuid.UUID) ([]*models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var messages []*models.Message
	for _, m := range r.s.messages {
		if m.ChatID == chatID {
			messages = append(messages, m)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []queue.Event
}

func (p *capturePublisher) Publish(_ context.Context, _ string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if event, ok := value.(queue.Event); ok {
		p.events = append(p.events, event)
	}
	return nil
}

func (p *capturePublisher) types() []queue.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]queue.EventType, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}

// fixture wires every service against the shared fake store.
type fixture struct {
	store     *fakeStore
	memStore  *throttle.MemoryStore
	published *capturePublisher

	users    *UserService
	posts    *PostService
	likes    *LikeService
	comments *CommentService
	chats    *ChatService
}

func newFixture() *fixture {
	store := newFakeStore()
	memStore := throttle.NewMemoryStore()
	published := &capturePublisher{}
	log := logger.NewLogger()

	userRepo := &fakeUserRepo{s: store}
	profileRepo := &fakeProfileRepo{s: store}
	followRepo := &fakeFollowRepo{s: store}
	postRepo := &fakePostRepo{s: store}
	likeRepo := &fakeLikeRepo{s: store}
	commentRepo := &fakeCommentRepo{s: store}
	chatRepo := &fakeChatRepo{s: store}
	messageRepo := &fakeMessageRepo{s: store}

	loginThrottle := throttle.NewLoginThrottle(memStore, 5, 5*time.Minute)

	feedCfg := &config.FeedConfig{CacheTTL: time.Minute, PageSize: 20}

	return &fixture{
		store:     store,
		memStore:  memStore,
		published: published,
		users: NewUserService(
			userRepo, profileRepo, followRepo, postRepo,
			loginThrottle, published, published, 0, log,
		),
		posts:    NewPostService(postRepo, userRepo, followRepo, nil, published, feedCfg, log),
		likes:    NewLikeService(postRepo, likeRepo, userRepo, published, log),
		comments: NewCommentService(postRepo, commentRepo, userRepo, published, log),
		chats:    NewChatService(chatRepo, messageRepo, userRepo, published, log),
	}
}

func (f *fixture) register(t testingT, username string) *models.User {
	user, err := f.users.Register(context.Background(), &RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password1",
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}

// testingT is the slice of *testing.T the fixture helpers need.
type testingT interface {
	Fatalf(format string, args ...interface{})
}
