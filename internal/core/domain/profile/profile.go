package profile

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Profile joins a row of users with its profiles details row.
type Profile struct {
	UserID      uuid.UUID   `json:"user_id" db:"user_id"`
	Name        string      `json:"name" db:"name"`
	ProfileURL  *string     `json:"profile_url" db:"profile_url"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	Handle      string      `json:"handle" db:"handle"`
	Bio         *string     `json:"bio" db:"bio"`
	Location    *string     `json:"location" db:"location"`
	Website     *string     `json:"website" db:"website"`
	Private     bool        `json:"private" db:"private"`
	SocialLinks SocialLinks `json:"social_links" db:"social_links"`
}

// PublicProfile is what a viewer receives. Extended fields are nil when hidden.
type PublicProfile struct {
	UserID      uuid.UUID    `json:"user_id"`
	Name        string       `json:"name"`
	ProfileURL  *string      `json:"profile_url"`
	Handle      string       `json:"handle"`
	Bio         *string      `json:"bio"`
	Private     bool         `json:"private"`
	Location    *string      `json:"location,omitempty"`
	Website     *string      `json:"website,omitempty"`
	SocialLinks []SocialLink `json:"social_links,omitempty"`
	// ExtendedHidden tells the client to render the "private profile" notice.
	ExtendedHidden bool `json:"extended_hidden"`
}

// Public copies every field a viewer may see.
func (p *Profile) Public() *PublicProfile {
	return &PublicProfile{
		UserID:      p.UserID,
		Name:        p.Name,
		ProfileURL:  p.ProfileURL,
		Handle:      p.Handle,
		Bio:         p.Bio,
		Private:     p.Private,
		Location:    p.Location,
		Website:     p.Website,
		SocialLinks: p.SocialLinks,
	}
}

// Redacted is Public without location, website and social links.
func (p *Profile) Redacted() *PublicProfile {
	pub := p.Public()
	pub.Location = nil
	pub.Website = nil
	pub.SocialLinks = nil
	pub.ExtendedHidden = true
	return pub
}

// ErrNotFound is returned when no profile matches a lookup.
var ErrNotFound = errors.New("profile not found")
