package domain

import "time"

// Term is a tag or a category. Both are keyed by their slug.
type Term struct {
	Slug      string    `json:"slug" dynamodbav:"slug"`
	Name      string    `json:"name" dynamodbav:"name"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}

type TermInput struct {
	Name string `json:"name" validate:"required,max=50"`
}
