package domain

// VerificationTypeEmail marks a signed email verification link.
const VerificationTypeEmail = "email"

// LinkVerification is the latest verification link issued to a user. Issuing
// a new link overwrites the record, so only the most recent link redeems.
// PK: user_id, SK: type. ExpiresAt is Unix seconds and doubles as the TTL.
type LinkVerification struct {
	UserID    string `json:"user_id" dynamodbav:"user_id"`
	Type      string `json:"type" dynamodbav:"type"`
	LinkID    string `json:"link_id" dynamodbav:"link_id"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"`
}
