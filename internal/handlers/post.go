package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/socialapp/socialapp/internal/middleware"
	"github.com/socialapp/socialapp/internal/services"
)

type PostHandler struct {
	postService    *services.PostService
	likeService    *services.LikeService
	commentService *services.CommentService
	userService    *services.UserService
}

func NewPostHandler(
	postService *services.PostService,
	likeService *services.LikeService,
	commentService *services.CommentService,
	userService *services.UserService,
) *PostHandler {
	return &PostHandler{
		postService:    postService,
		likeService:    likeService,
		commentService: commentService,
		userService:    userService,
	}
}

// GetFeed lists all posts newest first, annotated with the viewer's
// follow status per author.
func (h *PostHandler) GetFeed(c *gin.Context) {
	viewerID := middleware.GetUserID(c)
	offset, limit := pagination(c)

	feed, err := h.postService.Feed(c.Request.Context(), viewerID, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, feed)
}

// Search covers both post captions (substring and hashtag) and user
// names on a single endpoint.
func (h *PostHandler) Search(c *gin.Context) {
	query := c.Query("q")
	offset, limit := pagination(c)

	posts, err := h.postService.Search(c.Request.Context(), query, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	users, err := h.userService.Search(c.Request.Context(), query, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query": query,
		"posts": posts,
		"users": users,
	})
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req services.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.postService.CreatePost(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"post":    post,
	})
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	userID := middleware.GetUserID(c)
	postID := c.Param("id")

	var req services.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.postService.UpdatePost(c.Request.Context(), userID, postID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post updated successfully",
		"post":    post,
	})
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	userID := middleware.GetUserID(c)
	postID := c.Param("id")

	if err := h.postService.DeletePost(c.Request.Context(), userID, postID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postService.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

// ToggleLike is the single like endpoint: first call likes, second
// call un-likes.
func (h *PostHandler) ToggleLike(c *gin.Context) {
	userID := middleware.GetUserID(c)
	postID := c.Param("id")

	status, err := h.likeService.ToggleLike(c.Request.Context(), userID, postID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *PostHandler) AddComment(c *gin.Context) {
	userID := middleware.GetUserID(c)
	postID := c.Param("id")

	var req services.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.commentService.AddComment(c.Request.Context(), userID, postID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            result.Comment.ID,
		"username":      result.Comment.User.Username,
		"text":          result.Comment.Text,
		"parent_id":     result.Comment.ParentID,
		"created_at":    result.Comment.CreatedAt.Format(time.RFC3339),
		"comment_count": result.CommentCount,
	})
}

func (h *PostHandler) GetPostComments(c *gin.Context) {
	postID := c.Param("id")
	offset, limit := pagination(c)

	comments, err := h.commentService.GetPostComments(c.Request.Context(), postID, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
