package domain

type (
	UserId    = string
	Username  = string
	Password  = string
	TopicId   = string
	CommentId = string

	TopicTitle  = string
	CommentText = string

	// Timestamp is milliseconds since the Unix epoch.
	Timestamp = int64
)
