package model

import "time"

// User is a user record, addressed by its unique username.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Response messages of the delete-user endpoint.
const (
	MsgUsernameRequired = "Username is required"
	MsgUserDeleted      = "User deleted successfully"
	MsgUserNotFound     = "User not found"
	MsgInternalError    = "Internal server error"
)

// DeleteUserRequest is the body of POST /auth/delete/user.
type DeleteUserRequest struct {
	Username string `json:"username"`
}

// MessageResponse is the body of every delete-user response.
type MessageResponse struct {
	Message string `json:"message"`
}
