package domain

// User 회원 레코드 (user/<push-key>)
// ID is the login id chosen at signup; the storage key is generated by the store.
type User struct {
	ID         string `json:"id"`
	PW         string `json:"pw"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	ProfileImg string `json:"profile_img"`
}

// UserResponse omits the password hash
type UserResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	ProfileImg string `json:"profile_img"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Phone:      u.Phone,
		ProfileImg: u.ProfileImg,
	}
}

// SignupForm 회원가입 요청
type SignupForm struct {
	ID    string `json:"id" form:"id" validate:"required,min=3,max=30,excludesall=.$#[]/"`
	PW    string `json:"pw" form:"pw" validate:"required,min=4,max=64"`
	Email string `json:"email" form:"email" validate:"required,email"`
	Phone string `json:"phone" form:"phone" validate:"omitempty,max=20"`
}

// LoginForm 로그인 요청
type LoginForm struct {
	ID string `json:"id" form:"id" validate:"required"`
	PW string `json:"pw" form:"pw" validate:"required"`
}

// UserInfoForm 회원정보 수정 요청
// An empty PW keeps the current password.
type UserInfoForm struct {
	PW    string `json:"pw" form:"pw" validate:"omitempty,min=4,max=64"`
	Email string `json:"email" form:"email" validate:"required,email"`
	Phone string `json:"phone" form:"phone" validate:"omitempty,max=20"`
}
