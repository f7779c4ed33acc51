package profile

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SocialLink is one platform handle shown on a profile.
type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// SocialLinks is stored as a JSONB array on profiles.
type SocialLinks []SocialLink

func (l SocialLinks) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *SocialLinks) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("social_links: unsupported scan type %T", src)
	}
}
