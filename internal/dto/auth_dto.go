package dto

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateProfileRequest uses pointer fields so omitted keys are
// distinguishable from empty values; only supplied fields are applied.
type UpdateProfileRequest struct {
	Nickname     *string `json:"nickname"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	Location     *string `json:"location"`
	ProfileImage *string `json:"profile_image"`
}

type AuthData struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}
