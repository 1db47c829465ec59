package domain

import "time"

type User struct {
	UserID       string     `json:"id" dynamodbav:"user_id"`
	Username     string     `json:"username" dynamodbav:"username"`
	Email        string     `json:"email" dynamodbav:"email"`
	Phone        *string    `json:"phone" dynamodbav:"phone"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash"`
	Role         string     `json:"role" dynamodbav:"role"`
	FirstName    string     `json:"first_name" dynamodbav:"first_name"`
	LastName     string     `json:"last_name" dynamodbav:"last_name"`
	VerifiedAt   *time.Time `json:"verified_at" dynamodbav:"verified_at,omitempty"`
	Enable       int        `json:"enable" dynamodbav:"enable"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at,omitempty"`
	CreatedAt    time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated" dynamodbav:"updated_at"`

	// One-time code state. The hash and expiry are written together and
	// removed together; ExpiresAt is Unix seconds.
	OTPCodeHash  *string `json:"-" dynamodbav:"otp_code_hash,omitempty"`
	OTPExpiresAt *int64  `json:"-" dynamodbav:"otp_expires_at,omitempty"`
	OTPAttempts  int     `json:"-" dynamodbav:"otp_attempts"`
}

// Verified reports whether the user has completed email verification.
func (u *User) Verified() bool { return u.VerifiedAt != nil }

// OTPExpired reports whether no code is outstanding or the outstanding one
// is no longer valid at now.
func (u *User) OTPExpired(now time.Time) bool {
	return u.OTPExpiresAt == nil || now.Unix() >= *u.OTPExpiresAt
}

type CreateUserRequest struct {
	Username   string  `json:"username" validate:"required,max=255"`
	Password   string  `json:"password" validate:"required,min=8,max=72"`
	Email      string  `json:"email" validate:"required,email"`
	Phone      *string `json:"phone" validate:"omitempty,e164"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	DeviceUUID *string `json:"device_uuid"`
}

type UpdateUserRequest struct {
	Username  *string `json:"username" validate:"omitempty,max=255"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone" validate:"omitempty,e164"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Password  *string `json:"password" validate:"omitempty,min=8,max=72"`
	Role      *string `json:"role" validate:"omitempty,oneof=admin user"`
}
