package domain

import (
	"fmt"
	"time"
)

type Comment struct {
	Id        CommentId   `json:"id"`
	Content   CommentText `json:"content"`
	AuthorId  UserId      `json:"authorId"`
	Timestamp Timestamp   `json:"timestamp"`
}

// Topic always carries at least one comment: the opening post.
type Topic struct {
	Id        TopicId    `json:"id"`
	Title     TopicTitle `json:"title"`
	AuthorId  UserId     `json:"authorId"`
	Timestamp Timestamp  `json:"timestamp"`
	Comments  []Comment  `json:"comments"`
}

// Replies is the number of comments after the opening post.
func (t *Topic) Replies() int {
	if len(t.Comments) == 0 {
		return 0
	}
	return len(t.Comments) - 1
}

// OpeningPost returns the first comment, or false for a malformed topic.
func (t *Topic) OpeningPost() (Comment, bool) {
	if len(t.Comments) == 0 {
		return Comment{}, false
	}
	return t.Comments[0], true
}

// WithComment returns a copy of t with c appended. t is left untouched.
func (t Topic) WithComment(c Comment) Topic {
	comments := make([]Comment, len(t.Comments), len(t.Comments)+1)
	copy(comments, t.Comments)
	t.Comments = append(comments, c)
	return t
}

func TimestampOf(t time.Time) Timestamp {
	return t.UnixMilli()
}

func TimeOf(ts Timestamp) time.Time {
	return time.UnixMilli(ts)
}

// for debug
func (c *Comment) String() string {
	return fmt.Sprintf("[id:%s, author:%s, content:%s, created:%s]", c.Id, c.AuthorId, c.Content, TimeOf(c.Timestamp).Format(time.StampMilli))
}

func (t *Topic) String() string {
	s := fmt.Sprintf("[id:%s, title:%s, author:%s, replies:%d, comments:[", t.Id, t.Title, t.AuthorId, t.Replies())
	for i, c := range t.Comments {
		if i > 0 {
			s += ", "
		}
		s += c.String()
	}
	return s + "]]"
}
