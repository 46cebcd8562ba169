// Package session stores the authenticated user's credentials for CLI
// use.
//
// A session holds the access token issued by the cloud API together
// with the user it belongs to. The CLI keeps exactly one session in a
// JSON file under the config directory; a missing file simply means
// "not logged in". Expiry is not checked locally; the cloud store is
// the authority, and an expired token surfaces as a session-expired
// error on the next remote call.
package session

import "time"

// User identifies an authenticated account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session stores the credentials for one authenticated user.
type Session struct {
	AccessToken string    `json:"access_token"`
	User        User      `json:"user"`
	CreatedAt   time.Time `json:"created_at"`
}

// New creates a session for the given token and user.
func New(accessToken string, user User) *Session {
	return &Session{
		AccessToken: accessToken,
		User:        user,
		CreatedAt:   time.Now(),
	}
}
