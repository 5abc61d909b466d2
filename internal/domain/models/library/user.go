package library

type User struct {
	ID              string  `json:"id" yaml:"id"`
	Email           string  `json:"email" yaml:"email"`
	Username        *string `json:"username" yaml:"username,omitempty"`
	ProfileImageURL *string `json:"profile_image_url" yaml:"profile_image_url,omitempty"`
}

// LoginResponse is returned by POST /api/auth/login
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
