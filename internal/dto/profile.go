package dto

import "github.com/noah-isme/dance-class-api/internal/models"

// UpdateProfileRequest captures PUT /profile. Omitted fields keep their value;
// empty strings clear optional fields.
type UpdateProfileRequest struct {
	Name          *string             `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Pronouns      *string             `json:"pronouns,omitempty" validate:"omitempty,max=40"`
	Bio           *string             `json:"bio,omitempty" validate:"omitempty,max=2000"`
	ProfilePhoto  *string             `json:"profile_photo,omitempty" validate:"omitempty,url"`
	Website       *string             `json:"website,omitempty" validate:"omitempty,url"`
	SocialLinks   *models.SocialLinks `json:"social_links,omitempty"`
	FeaturedVideo *string             `json:"featured_video,omitempty"`
	Achievements  []string            `json:"achievements,omitempty" validate:"omitempty,max=50,dive,max=200"`
	TeachingStyle *string             `json:"teaching_style,omitempty" validate:"omitempty,max=500"`
}

// VideoValidateRequest captures POST /videos/validate.
type VideoValidateRequest struct {
	URL    string `json:"url"`
	Origin string `json:"origin,omitempty"`
}
