// Package view tracks which forum screen is active.
//
// The router is ephemeral: it lives in memory for one session and starts at the topic
// list. Transitions that do not apply to the current screen are ignored and reported
// as false.
package view

import (
	"fmt"

	"github.com/itchan-dev/foro/shared/domain"
)

type Screen int

const (
	TopicList Screen = iota
	TopicView
	NewTopic
)

func (s Screen) String() string {
	switch s {
	case TopicList:
		return "topic_list"
	case TopicView:
		return "topic_view"
	case NewTopic:
		return "new_topic"
	default:
		return fmt.Sprintf("screen(%d)", int(s))
	}
}

func (s Screen) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Screen) UnmarshalText(text []byte) error {
	for _, candidate := range []Screen{TopicList, TopicView, NewTopic} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown screen %q", text)
}

// State is the active screen. TopicId is set only for TopicView.
type State struct {
	Screen  Screen         `json:"screen"`
	TopicId domain.TopicId `json:"topicId,omitempty"`
}

func (s State) String() string {
	if s.Screen == TopicView {
		return fmt.Sprintf("%s(%s)", s.Screen, s.TopicId)
	}
	return s.Screen.String()
}

type Router struct {
	state State
}

func NewRouter() *Router {
	return &Router{}
}

func (r *Router) State() State {
	return r.state
}

// SelectTopic opens a topic from the list.
func (r *Router) SelectTopic(id domain.TopicId) bool {
	if r.state.Screen != TopicList || id == "" {
		return false
	}
	r.state = State{Screen: TopicView, TopicId: id}
	return true
}

func (r *Router) OpenNewTopic() bool {
	if r.state.Screen != TopicList {
		return false
	}
	r.state = State{Screen: NewTopic}
	return true
}

// Submitted returns to the list after a topic was created.
func (r *Router) Submitted() bool {
	return r.leave(NewTopic)
}

func (r *Router) Cancel() bool {
	return r.leave(NewTopic)
}

func (r *Router) Back() bool {
	return r.leave(TopicView)
}

// Reset forces the topic list. Called on login and logout.
func (r *Router) Reset() {
	r.state = State{}
}

// Resolve guards TopicView: when exists reports the selected topic as missing the router
// falls back to the list. It returns the state to render.
func (r *Router) Resolve(exists func(domain.TopicId) bool) State {
	if r.state.Screen == TopicView && !exists(r.state.TopicId) {
		r.state = State{}
	}
	return r.state
}

func (r *Router) leave(from Screen) bool {
	if r.state.Screen != from {
		return false
	}
	r.state = State{}
	return true
}
