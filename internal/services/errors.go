package services

import "errors"

// Domain outcomes handlers translate to HTTP statuses.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrChatNotFound    = errors.New("chat not found")

	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountBlocked     = errors.New("account has been blocked by an admin")
	ErrTooManyAttempts    = errors.New("too many failed attempts, please try again later")

	ErrPermissionDenied = errors.New("permission denied")
	ErrSelfFollow       = errors.New("you cannot follow yourself")

	ErrBothMedia       = errors.New("a post cannot have both an image and a video")
	ErrNoMedia         = errors.New("a post must have either an image or a video")
	ErrCaptionRequired = errors.New("caption is required")
	ErrCaptionTooLong  = errors.New("caption is too long")

	ErrTextRequired  = errors.New("text is required")
	ErrTextTooLong   = errors.New("text is too long")
	ErrParentInvalid = errors.New("parent comment does not belong to this post")

	ErrContentRequired = errors.New("content is required")
	ErrNotParticipant  = errors.New("sender is not a chat participant")
)
