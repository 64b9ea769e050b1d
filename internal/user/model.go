package user

import "time"

// User represents a registered account. Password holds the stored credential
// string: either a tagged pbkdf2 hash or, transitionally, legacy plaintext.
type User struct {
	ID        int64
	Name      string
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile is the outward-facing representation of a user. It never carries
// the stored credential.
type Profile struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile derives the public view of the user.
func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// PublicProfile is Profile with the email withheld, served to anonymous
// callers on listing endpoints.
type PublicProfile struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PublicProfile derives the anonymous view of the user.
func (u User) PublicProfile() PublicProfile {
	return PublicProfile{ID: u.ID, Name: u.Name, CreatedAt: u.CreatedAt}
}
