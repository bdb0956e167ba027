package service

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/itchan-dev/foro/shared/domain"
	"github.com/itchan-dev/foro/shared/errors"
	"github.com/itchan-dev/foro/shared/logger"
)

var (
	topicsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foro_topics_created_total",
		Help: "Topics created",
	})
	commentsAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foro_comments_added_total",
		Help: "Replies appended to existing topics",
	})
)

type ForumService interface {
	CreateTopic(title domain.TopicTitle, content domain.CommentText, author *domain.User) (domain.Topic, error)
	AddComment(topicId domain.TopicId, content domain.CommentText, author *domain.User) (domain.Topic, error)
	Topic(id domain.TopicId) (domain.Topic, error)
}

type Forum struct {
	storage   ForumStorage
	validator TopicValidator
	newId     func(prefix string) string
	now       func() time.Time
}

type ForumStorage interface {
	Topics() []domain.Topic
	CommitTopics(topics []domain.Topic)
}

type TopicValidator interface {
	Title(title string) error
	Content(content string) error
}

func NewForum(storage ForumStorage, validator TopicValidator, newId func(prefix string) string, now func() time.Time) *Forum {
	return &Forum{
		storage:   storage,
		validator: validator,
		newId:     newId,
		now:       now,
	}
}

// CreateTopic stores a topic with its opening post at the front of the list.
func (f *Forum) CreateTopic(title domain.TopicTitle, content domain.CommentText, author *domain.User) (domain.Topic, error) {
	if author == nil {
		return domain.Topic{}, errors.ErrNotAuthenticated
	}
	if err := f.validator.Title(title); err != nil {
		return domain.Topic{}, err
	}
	if err := f.validator.Content(content); err != nil {
		return domain.Topic{}, err
	}

	ts := domain.TimestampOf(f.now())
	topic := domain.Topic{
		Id:        f.newId("topic"),
		Title:     strings.TrimSpace(title),
		AuthorId:  author.Id,
		Timestamp: ts,
		Comments: []domain.Comment{{
			Id:        f.newId("comment"),
			Content:   strings.TrimSpace(content),
			AuthorId:  author.Id,
			Timestamp: ts,
		}},
	}

	topics := f.storage.Topics()
	updated := make([]domain.Topic, 0, len(topics)+1)
	updated = append(updated, topic)
	updated = append(updated, topics...)
	f.storage.CommitTopics(updated)

	topicsCreated.Inc()
	logger.Log.Info("topic created", "topic_id", topic.Id, "author_id", author.Id)
	return topic, nil
}

// AddComment appends a reply to the topic and returns the updated topic. Nothing is
// committed when the topic does not exist.
func (f *Forum) AddComment(topicId domain.TopicId, content domain.CommentText, author *domain.User) (domain.Topic, error) {
	if author == nil {
		return domain.Topic{}, errors.ErrNotAuthenticated
	}

	topics := f.storage.Topics()
	idx := indexOfTopic(topics, topicId)
	if idx < 0 {
		return domain.Topic{}, errors.ErrTopicNotFound
	}
	if err := f.validator.Content(content); err != nil {
		return domain.Topic{}, err
	}

	comment := domain.Comment{
		Id:        f.newId("comment"),
		Content:   strings.TrimSpace(content),
		AuthorId:  author.Id,
		Timestamp: domain.TimestampOf(f.now()),
	}
	topic := topics[idx].WithComment(comment)

	updated := make([]domain.Topic, len(topics))
	copy(updated, topics)
	updated[idx] = topic
	f.storage.CommitTopics(updated)

	commentsAdded.Inc()
	logger.Log.Debug("comment added", "topic_id", topicId, "comment_id", comment.Id, "author_id", author.Id)
	return topic, nil
}

func (f *Forum) Topic(id domain.TopicId) (domain.Topic, error) {
	topics := f.storage.Topics()
	idx := indexOfTopic(topics, id)
	if idx < 0 {
		return domain.Topic{}, errors.ErrTopicNotFound
	}
	return topics[idx], nil
}

func indexOfTopic(topics []domain.Topic, id domain.TopicId) int {
	for i := range topics {
		if topics[i].Id == id {
			return i
		}
	}
	return -1
}
