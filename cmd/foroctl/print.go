package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/itchan-dev/foro/internal/store"
	"github.com/itchan-dev/foro/shared/domain"
	"github.com/itchan-dev/foro/shared/errors"
)

const timeLayout = time.DateTime

type userRow struct {
	Id       domain.UserId   `json:"id"`
	Username domain.Username `json:"username"`
	Current  bool            `json:"current"`
}

type topicRow struct {
	Id        domain.TopicId    `json:"id"`
	Title     domain.TopicTitle `json:"title"`
	Author    domain.Username   `json:"author"`
	Timestamp domain.Timestamp  `json:"timestamp"`
	Replies   int               `json:"replies"`
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatTime(ts domain.Timestamp) string {
	return domain.TimeOf(ts).UTC().Format(timeLayout)
}

// printUsers lists users without their password field.
func printUsers(w io.Writer, st *store.Store, asJSON bool) error {
	current, loggedIn := st.CurrentUser()
	rows := make([]userRow, 0, len(st.Users()))
	for _, u := range st.Users() {
		rows = append(rows, userRow{Id: u.Id, Username: u.Username, Current: loggedIn && u.Id == current.Id})
	}
	if asJSON {
		return printJSON(w, rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tSESSION")
	for _, r := range rows {
		session := ""
		if r.Current {
			session = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Id, r.Username, session)
	}
	return tw.Flush()
}

func printTopics(w io.Writer, st *store.Store, asJSON bool) error {
	users := st.UserIndex()
	topics := st.Topics()
	rows := make([]topicRow, len(topics))
	for i, t := range topics {
		rows[i] = topicRow{Id: t.Id, Title: t.Title, Author: users.Name(t.AuthorId), Timestamp: t.Timestamp, Replies: t.Replies()}
	}
	if asJSON {
		return printJSON(w, rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tCREATED\tREPLIES")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", r.Id, r.Title, r.Author, formatTime(r.Timestamp), r.Replies)
	}
	return tw.Flush()
}

func printTopic(w io.Writer, st *store.Store, id domain.TopicId, asJSON bool) error {
	topic, ok := st.Topic(id)
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrTopicNotFound, id)
	}
	if asJSON {
		return printJSON(w, topic)
	}

	users := st.UserIndex()
	fmt.Fprintf(w, "%s\nby %s on %s, %d replies\n", topic.Title, users.Name(topic.AuthorId), formatTime(topic.Timestamp), topic.Replies())
	for _, c := range topic.Comments {
		fmt.Fprintf(w, "\n[%s] %s:\n%s\n", formatTime(c.Timestamp), users.Name(c.AuthorId), c.Content)
	}
	return nil
}
