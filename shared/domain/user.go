package domain

import "strings"

// UnknownUserName is shown for authors whose id no longer resolves.
const UnknownUserName = "Unknown User"

// User is stored as entered; Password holds a bcrypt hash, or the plaintext value
// for records written before hashing was introduced.
type User struct {
	Id       UserId   `json:"id"`
	Username Username `json:"username"`
	Password Password `json:"password"`
}

// UnknownUser is the placeholder returned by author lookups that miss.
var UnknownUser = User{Username: UnknownUserName}

// SameUsername compares usernames the way registration and login do.
func SameUsername(a, b Username) bool {
	return strings.EqualFold(a, b)
}
