package model

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// TeamUsernamePrefix marks team member accounts whose email addresses
// receive update notifications.
const TeamUsernamePrefix = "tmis."

// User represents a staff account.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	Role         string             `bson:"role" json:"role"`

	ResetTokenHash   string     `bson:"reset_token_hash,omitempty" json:"-"`
	ResetTokenExpiry *time.Time `bson:"reset_token_expiry,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// IsTeamMember reports whether the account belongs to the notification team.
func (u *User) IsTeamMember() bool {
	return strings.HasPrefix(strings.ToLower(u.Username), TeamUsernamePrefix)
}
