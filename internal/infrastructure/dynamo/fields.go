package dynamo

// DynamoDB attribute names used in update expressions across all repos.
const (
	fieldUserID           = "user_id"
	fieldPostID           = "post_id"
	fieldEnable           = "enable"
	fieldDeletedAt        = "deleted_at"
	fieldUpdatedAt        = "updated_at"
	fieldReaded           = "readed"
	fieldRefreshToken     = "refresh_token"
	fieldRefreshExpiresAt = "refresh_expires_at"
	fieldLikeCount        = "like_count"
	fieldTags             = "tags"

	fieldOTPCodeHash  = "otp_code_hash"
	fieldOTPExpiresAt = "otp_expires_at"
	fieldOTPAttempts  = "otp_attempts"
	fieldVerifiedAt   = "verified_at"

	fieldVerificationType      = "type"
	fieldVerificationExpiresAt = "expires_at"
)
