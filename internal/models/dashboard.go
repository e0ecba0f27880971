package models

// DashboardStats are the headline counters.
type DashboardStats struct {
	Interested int `json:"interested"`
	Attending  int `json:"attending"`
	Favorites  int `json:"favorites"`
	Teaching   int `json:"teaching"`
}

// Dashboard is the personal overview for the session user.
type Dashboard struct {
	User       User           `json:"user"`
	Stats      DashboardStats `json:"stats"`
	Interested []ClassView    `json:"interested"`
	Attending  []ClassView    `json:"attending"`
	Featured   []ClassView    `json:"featured"`
	Teaching   []ClassView    `json:"teaching,omitempty"`
}

// ChoreographerProfile is the public page for a choreographer.
type ChoreographerProfile struct {
	User            User        `json:"user"`
	UpcomingClasses []ClassView `json:"upcoming_classes"`
	Video           *VideoEmbed `json:"video,omitempty"`
	IsFavorited     bool        `json:"is_favorited"`
}

// VideoEmbed describes a featured video ready to embed.
type VideoEmbed struct {
	VideoID      string `json:"video_id"`
	EmbedURL     string `json:"embed_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}
