package model

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	Region       string
	PasswordHash string
	RefreshToken *string
	Favorites    []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the projection of User safe to return to clients. It never
// carries the password hash or the refresh token.
type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Region    string    `json:"region"`
	Favorites []string  `json:"favorites"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) Public() *PublicUser {
	favorites := u.Favorites
	if favorites == nil {
		favorites = []string{}
	}
	return &PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Region:    u.Region,
		Favorites: favorites,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
