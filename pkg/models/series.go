package models

// Series groups posts under shared metadata. A post points back via
// Post.SeriesID; deleting a series detaches its posts instead of
// removing them.
type Series struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	Hidden      bool   `json:"hidden" gorm:"not null;default:false"`

	Posts []Post `json:"-" gorm:"foreignKey:SeriesID"`
	Tags  []Tag  `json:"-" gorm:"many2many:series_tags"`
}

func (Series) TableName() string {
	return "series"
}
