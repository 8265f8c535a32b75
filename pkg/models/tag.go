package models

// Tag labels posts and series through the post_tags / series_tags join
// tables. Both sides are declared so either end can clear the edges.
type Tag struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`

	Posts  []Post   `json:"-" gorm:"many2many:post_tags"`
	Series []Series `json:"-" gorm:"many2many:series_tags"`
}

func (Tag) TableName() string {
	return "tags"
}
