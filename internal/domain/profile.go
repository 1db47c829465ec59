package domain

import "time"

type Profile struct {
	UserID       string    `json:"user_id" dynamodbav:"user_id"`
	Username     *string   `json:"username" dynamodbav:"username,omitempty"`
	Bio          *string   `json:"bio" dynamodbav:"bio,omitempty"`
	Website      *string   `json:"website" dynamodbav:"website,omitempty"`
	AvatarFileID *string   `json:"-" dynamodbav:"avatar_file_id,omitempty"`
	AvatarObject *string   `json:"-" dynamodbav:"avatar_object,omitempty"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,max=20"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
	Website  *string `json:"website" validate:"omitempty,url,max=255"`
}
