package user

import "time"

type User struct {
	ID             int       `json:"id"`
	Username       string    `json:"username"`
	Password       string    `json:"-"`
	Contact        string    `json:"contact"`
	ContactType    string    `json:"contactType"`
	ProfilePicture *string   `json:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt"`
}

type SignupRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Contact     string `json:"contact"`
	ContactType string `json:"contactType"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ProfilePictureResponse struct {
	ProfilePicture *string `json:"profilePicture"`
}
