// Package model defines domain entities for the application.
package model

import "time"

// User is a registered account. Username and email are unique.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// UserProfile is a user as seen by a specific viewer.
type UserProfile struct {
	User
	IsSubscribed bool `json:"is_subscribed"`
}

// Subscription is an author the viewer follows, with a preview of their
// newest recipes and a total count.
type Subscription struct {
	UserProfile
	Recipes      []RecipeSummary `json:"recipes"`
	RecipesCount int64           `json:"recipes_count"`
}

// Viewer identifies who is reading. ID 0 is the anonymous viewer.
type Viewer struct {
	UserID  int64
	IsAdmin bool
}

// Anonymous is the viewer used for unauthenticated requests.
var Anonymous = Viewer{}

// IsAnonymous reports whether the viewer is unauthenticated.
func (v Viewer) IsAnonymous() bool {
	return v.UserID == 0
}

// CanModify reports whether the viewer may change a resource owned by ownerID.
func (v Viewer) CanModify(ownerID int64) bool {
	if v.IsAnonymous() {
		return false
	}
	return v.IsAdmin || v.UserID == ownerID
}
