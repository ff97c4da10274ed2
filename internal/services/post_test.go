package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePost(t *testing.T) {
	tests := []struct {
		name string
		req  PostRequest
		want error
	}{
		{
			name: "both media rejected",
			req:  PostRequest{Caption: "hi", ImageURL: "i.png", VideoURL: "v.mp4"},
			want: ErrBothMedia,
		},
		{
			name: "no media rejected",
			req:  PostRequest{Caption: "hi"},
			want: ErrNoMedia,
		},
		{
			name: "empty caption rejected",
			req:  PostRequest{ImageURL: "i.png"},
			want: ErrCaptionRequired,
		},
		{
			name: "caption too long rejected",
			req:  PostRequest{Caption: strings.Repeat("a", 301), ImageURL: "i.png"},
			want: ErrCaptionTooLong,
		},
		{
			name: "image with caption accepted",
			req:  PostRequest{Caption: "hi", ImageURL: "i.png"},
		},
		{
			name: "video with caption accepted",
			req:  PostRequest{Caption: "hi", VideoURL: "v.mp4"},
		},
		{
			name: "caption at limit accepted",
			req:  PostRequest{Caption: strings.Repeat("a", 300), ImageURL: "i.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePost(&tt.req)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestValidatePostChecksMediaBeforeCaption(t *testing.T) {
	// A submission that breaks several rules reports the media conflict
	// first, then the missing media, then the caption.
	err := validatePost(&PostRequest{ImageURL: "i.png", VideoURL: "v.mp4"})
	assert.ErrorIs(t, err, ErrBothMedia)

	err = validatePost(&PostRequest{})
	assert.ErrorIs(t, err, ErrNoMedia)
}

func TestCreatePost(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.register(t, "alice")

	post, err := f.posts.CreatePost(ctx, alice.ID.String(), &PostRequest{
		Caption:  "first #hello post",
		ImageURL: "img.png",
	})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, post.UserID)
	assert.Equal(t, []string{"#hello"}, post.Hashtags())
	assert.False(t, post.IsDeleted)
}

func TestCreatePostInvalidSubmissionPersistsNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.register(t, "alice")

	_, err := f.posts.CreatePost(ctx, alice.ID.String(), &PostRequest{Caption: "hi"})
	assert.ErrorIs(t, err, ErrNoMedia)
	assert.Empty(t, f.store.posts)
}

func TestUpdatePostOwnership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	post, err := f.posts.CreatePost(ctx, alice.ID.String(), &PostRequest{
		Caption:  "original",
		ImageURL: "img.png",
	})
	require.NoError(t, err)

	_, err = f.posts.UpdatePost(ctx, bob.ID.String(), post.ID.String(), &PostRequest{
		Caption:  "hijacked",
		ImageURL: "img.png",
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	updated, err := f.posts.UpdatePost(ctx, alice.ID.String(), post.ID.String(), &PostRequest{
		Caption:  "edited",
		VideoURL: "v.mp4",
	})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Caption)
	assert.Equal(t, "", updated.ImageURL)
	assert.Equal(t, "v.mp4", updated.VideoURL)
	assert.Equal(t, alice.ID, updated.UserID)
}

func TestDeletePost(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	post, err := f.posts.CreatePost(ctx, alice.ID.String(), &PostRequest{
		Caption:  "bye",
		ImageURL: "img.png",
	})
	require.NoError(t, err)

	err = f.posts.DeletePost(ctx, bob.ID.String(), post.ID.String())
	assert.ErrorIs(t, err, ErrPermissionDenied)

	err = f.posts.DeletePost(ctx, alice.ID.String(), post.ID.String())
	require.NoError(t, err)

	_, err = f.posts.GetPost(ctx, post.ID.String())
	assert.ErrorIs(t, err, ErrPostNotFound)

	// Deleting twice reports not found, not a second delete.
	err = f.posts.DeletePost(ctx, alice.ID.String(), post.ID.String())
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestFeedOrderAndFollowStatuses(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	carol := f.register(t, "carol")

	_, err := f.posts.CreatePost(ctx, bob.ID.String(), &PostRequest{Caption: "from bob", ImageURL: "b.png"})
	require.NoError(t, err)
	second, err := f.posts.CreatePost(ctx, carol.ID.String(), &PostRequest{Caption: "from carol", ImageURL: "c.png"})
	require.NoError(t, err)

	_, err = f.users.ToggleFollow(ctx, alice.ID.String(), "bob")
	require.NoError(t, err)

	feed, err := f.posts.Feed(ctx, alice.ID.String(), 0, 20)
	require.NoError(t, err)
	require.Len(t, feed.Posts, 2)

	// Newest first.
	assert.Equal(t, second.ID, feed.Posts[0].ID)
	assert.True(t, feed.FollowStatuses["bob"])
	assert.False(t, feed.FollowStatuses["carol"])
}

func TestSearchPosts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.register(t, "alice")

	_, err := f.posts.CreatePost(ctx, alice.ID.String(), &PostRequest{Caption: "sunset at the beach", ImageURL: "a.png"})
	require.NoError(t, err)
	_, err = f.posts.CreatePost(ctx, alice.ID.String(), &PostRequest{Caption: "mountain hike", ImageURL: "b.png"})
	require.NoError(t, err)

	posts, err := f.posts.Search(ctx, "beach", 0, 20)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "sunset at the beach", posts[0].Caption)
}
