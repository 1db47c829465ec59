package domain

import "time"

// Like marks that a user liked a post. PK: post_id, SK: user_id.
type Like struct {
	PostID    string    `json:"post_id" dynamodbav:"post_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"count_like"`
}
