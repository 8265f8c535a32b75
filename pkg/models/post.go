package models

// Post is a single content item. SeriesID is nil for standalone posts;
// the public listing only ever shows those.
type Post struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"uniqueIndex;not null"`
	Content     string `json:"content"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	Hidden      bool   `json:"hidden" gorm:"not null;default:false"`
	SeriesID    *uint  `json:"series_id" gorm:"index"`

	Tags []Tag `json:"-" gorm:"many2many:post_tags"`
}

func (Post) TableName() string {
	return "posts"
}
