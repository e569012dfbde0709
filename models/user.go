package models

import "time"

type User struct {
	UserID    string    `json:"userid" bson:"userid"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Mobile    string    `json:"mobile" bson:"mobile"`
	Password  string    `json:"-" bson:"password"`
	Role      string    `json:"role" bson:"role"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	LastLogin time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
}

// UserSummary is what login/signup and admin listings return.
type UserSummary struct {
	UserID string `json:"userid" bson:"userid"`
	Name   string `json:"name" bson:"name"`
	Email  string `json:"email" bson:"email"`
	Mobile string `json:"mobile" bson:"mobile"`
	Role   string `json:"role" bson:"role"`
}

func (u User) Summary() UserSummary {
	return UserSummary{
		UserID: u.UserID,
		Name:   u.Name,
		Email:  u.Email,
		Mobile: u.Mobile,
		Role:   u.Role,
	}
}
