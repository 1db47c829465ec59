package domain

import "time"

type Comment struct {
	CommentID string    `json:"id" dynamodbav:"comment_id"`
	PostID    string    `json:"post_id" dynamodbav:"post_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Content   string    `json:"content" dynamodbav:"content"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}
