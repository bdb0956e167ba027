package store

import "github.com/itchan-dev/foro/shared/domain"

// UserIndex is an immutable id → User projection of one Users collection.
type UserIndex struct {
	byId    map[domain.UserId]domain.User
	version uint64
}

func newUserIndex(users []domain.User, version uint64) *UserIndex {
	byId := make(map[domain.UserId]domain.User, len(users))
	for _, u := range users {
		byId[u.Id] = u
	}
	return &UserIndex{byId: byId, version: version}
}

func (ix *UserIndex) Lookup(id domain.UserId) (domain.User, bool) {
	u, ok := ix.byId[id]
	return u, ok
}

// Resolve returns the user with id, or domain.UnknownUser.
func (ix *UserIndex) Resolve(id domain.UserId) domain.User {
	if u, ok := ix.byId[id]; ok {
		return u
	}
	return domain.UnknownUser
}

func (ix *UserIndex) Name(id domain.UserId) domain.Username {
	return ix.Resolve(id).Username
}

func (ix *UserIndex) Len() int {
	return len(ix.byId)
}
