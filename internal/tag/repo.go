package tag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"bloghub/pkg/models"
)

const pageSize = 10

var ErrNotFound = errors.New("tag not found")

type Repo struct {
	DB *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{DB: db}
}

type ListQuery struct {
	Page int
	Name string
}

// List returns one page of tags (newest first) plus the max page
// number. Tags have no hidden flag, so admin and public share this.
func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Tag, int, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}

	base := func() *gorm.DB {
		tx := r.DB.WithContext(ctx).Model(&models.Tag{})
		if q.Name != "" {
			tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q.Name)+"%")
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count tags: %w", err)
	}

	var tags []models.Tag
	err := base().
		Order("id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&tags).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list tags: %w", err)
	}

	return tags, int(total)/pageSize + 1, nil
}

func (r *Repo) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	var t models.Tag
	if err := r.DB.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return &t, nil
}

func (r *Repo) Create(ctx context.Context, name string) (*models.Tag, error) {
	tag := &models.Tag{Name: name}
	if err := r.DB.WithContext(ctx).Create(tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return tag, nil
}

func (r *Repo) Update(ctx context.Context, id uint, name *string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.DB.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}

	if name != nil {
		tag.Name = *name
	}
	if err := r.DB.WithContext(ctx).Save(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		return nil, fmt.Errorf("save tag: %w", err)
	}
	return &tag, nil
}

// Delete detaches the tag from every post and series that carries it,
// then removes the row. The posts and series themselves survive.
func (r *Repo) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag models.Tag
		if err := tx.First(&tag, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get tag: %w", err)
		}
		if err := tx.Model(&tag).Association("Posts").Clear(); err != nil {
			return fmt.Errorf("clear tag posts: %w", err)
		}
		if err := tx.Model(&tag).Association("Series").Clear(); err != nil {
			return fmt.Errorf("clear tag series: %w", err)
		}
		if err := tx.Delete(&tag).Error; err != nil {
			return fmt.Errorf("delete tag: %w", err)
		}
		return nil
	})
}

func (r *Repo) SearchByName(ctx context.Context, query string) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.DB.WithContext(ctx).
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(query)+"%").
		Order("id DESC").
		Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("search tags: %w", err)
	}
	return tags, nil
}

// UniqueName reports whether no tag currently holds the exact name.
// Advisory only; the unique index is the real guarantee.
func (r *Repo) UniqueName(ctx context.Context, name string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.Tag{}).
		Where("name = ?", name).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("probe name: %w", err)
	}
	return n == 0, nil
}
