package models

// UserRole distinguishes dancers from choreographers.
type UserRole string

const (
	RoleDancer        UserRole = "dancer"
	RoleChoreographer UserRole = "choreographer"
	RoleBoth          UserRole = "both"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == RoleDancer || r == RoleChoreographer || r == RoleBoth
}

// CanTeach reports whether the role may own classes.
func (r UserRole) CanTeach() bool {
	return r == RoleChoreographer || r == RoleBoth
}

// SocialLinks holds optional social handles.
type SocialLinks struct {
	Instagram *string `json:"instagram,omitempty"`
	TikTok    *string `json:"tiktok,omitempty"`
	YouTube   *string `json:"youtube,omitempty"`
	Website   *string `json:"website,omitempty"`
}

// User is a dancer or choreographer.
type User struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Username      string       `json:"username"`
	Role          UserRole     `json:"role"`
	Pronouns      *string      `json:"pronouns,omitempty"`
	Bio           *string      `json:"bio,omitempty"`
	ProfilePhoto  *string      `json:"profile_photo,omitempty"`
	Website       *string      `json:"website,omitempty"`
	SocialLinks   *SocialLinks `json:"social_links,omitempty"`
	FeaturedVideo *string      `json:"featured_video,omitempty"`
	Achievements  []string     `json:"achievements,omitempty"`
	TeachingStyle *string      `json:"teaching_style,omitempty"`
}

// Clone returns a deep copy.
func (u User) Clone() User {
	out := u
	out.Pronouns = cloneString(u.Pronouns)
	out.Bio = cloneString(u.Bio)
	out.ProfilePhoto = cloneString(u.ProfilePhoto)
	out.Website = cloneString(u.Website)
	out.FeaturedVideo = cloneString(u.FeaturedVideo)
	out.TeachingStyle = cloneString(u.TeachingStyle)
	out.Achievements = append([]string(nil), u.Achievements...)
	if u.SocialLinks != nil {
		links := SocialLinks{
			Instagram: cloneString(u.SocialLinks.Instagram),
			TikTok:    cloneString(u.SocialLinks.TikTok),
			YouTube:   cloneString(u.SocialLinks.YouTube),
			Website:   cloneString(u.SocialLinks.Website),
		}
		out.SocialLinks = &links
	}
	return out
}

// DefaultUserID identifies the fallback demo account.
const DefaultUserID = "default-user"

// DemoUser is used when the catalog has no choreographers.
func DemoUser() User {
	return User{ID: DefaultUserID, Name: "Demo User", Username: "demo", Role: RoleChoreographer}
}

// ProfileOverride holds profile edits persisted per user. Nil fields keep
// the catalog value.
type ProfileOverride struct {
	Name          *string      `json:"name,omitempty"`
	Pronouns      *string      `json:"pronouns,omitempty"`
	Bio           *string      `json:"bio,omitempty"`
	ProfilePhoto  *string      `json:"profile_photo,omitempty"`
	Website       *string      `json:"website,omitempty"`
	SocialLinks   *SocialLinks `json:"social_links,omitempty"`
	FeaturedVideo *string      `json:"featured_video,omitempty"`
	Achievements  []string     `json:"achievements,omitempty"`
	TeachingStyle *string      `json:"teaching_style,omitempty"`
}

// Apply returns u with the override's non-nil fields applied.
func (o ProfileOverride) Apply(u User) User {
	out := u.Clone()
	if o.Name != nil && *o.Name != "" {
		out.Name = *o.Name
	}
	if o.Pronouns != nil {
		out.Pronouns = cloneString(o.Pronouns)
	}
	if o.Bio != nil {
		out.Bio = cloneString(o.Bio)
	}
	if o.ProfilePhoto != nil {
		out.ProfilePhoto = cloneString(o.ProfilePhoto)
	}
	if o.Website != nil {
		out.Website = cloneString(o.Website)
	}
	if o.SocialLinks != nil {
		links := *o.SocialLinks
		out.SocialLinks = &links
	}
	if o.FeaturedVideo != nil {
		out.FeaturedVideo = cloneString(o.FeaturedVideo)
	}
	if o.Achievements != nil {
		out.Achievements = append([]string(nil), o.Achievements...)
	}
	if o.TeachingStyle != nil {
		out.TeachingStyle = cloneString(o.TeachingStyle)
	}
	return out
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
