package model

// NewsCategory separates editorial news from promotions.
type NewsCategory string

const (
	CategoryNews      NewsCategory = "news"
	CategoryPromotion NewsCategory = "promotion"
)

// News is a news article or promotion shown on the home page.
type News struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Summary     string       `json:"summary,omitempty"`
	Content     string       `json:"content,omitempty"`
	Image       string       `json:"image,omitempty"`
	Category    NewsCategory `json:"category"`
	PublishDate string       `json:"publish_date,omitempty"`
	IsActive    bool         `json:"is_active"`
}
