package domain

import "time"

type Post struct {
	PostID      string    `json:"id" dynamodbav:"post_id"`
	UserID      string    `json:"user_id" dynamodbav:"user_id"`
	Content     string    `json:"content" dynamodbav:"content"`
	ImageFileID *string   `json:"-" dynamodbav:"image_file_id,omitempty"`
	ImageObject *string   `json:"-" dynamodbav:"image_object,omitempty"`
	Category    *string   `json:"category" dynamodbav:"category,omitempty"`
	Tags        []string  `json:"tags" dynamodbav:"tags,stringset,omitempty"`
	LikeCount   int       `json:"count_like" dynamodbav:"like_count"`
	Enable      int       `json:"-" dynamodbav:"enable"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
	Author      *User     `json:"-" dynamodbav:"-"`
}

type CreatePostRequest struct {
	Content  string   `json:"content" validate:"required,max=5000"`
	Category *string  `json:"category" validate:"omitempty,max=100"`
	Tags     []string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
}

type UpdatePostRequest struct {
	Content  *string  `json:"content" validate:"omitempty,max=5000"`
	Category *string  `json:"category" validate:"omitempty,max=100"`
	Tags     []string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
}
