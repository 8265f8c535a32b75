package series

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"bloghub/pkg/models"
)

const pageSize = 10

var (
	ErrNotFound    = errors.New("series not found")
	ErrTagNotFound = errors.New("tag not found")
)

type Repo struct {
	DB *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{DB: db}
}

type ListQuery struct {
	Page   int
	Name   string
	TagIDs []uint
	Public bool // hide hidden series
}

// List mirrors the post listing: substring filter, tag intersection
// through series_tags, newest first, pages of ten.
func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Series, int, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}

	base := func() *gorm.DB {
		tx := r.DB.WithContext(ctx).Model(&models.Series{})
		if q.Public {
			tx = tx.Where("series.hidden = ?", false)
		}
		if q.Name != "" {
			tx = tx.Where("LOWER(series.name) LIKE ?", "%"+strings.ToLower(q.Name)+"%")
		}
		if len(q.TagIDs) > 0 {
			tx = tx.Select("series.*").
				Joins("JOIN series_tags ON series_tags.series_id = series.id").
				Where("series_tags.tag_id IN ?", q.TagIDs).
				Group("series.id").
				Having("COUNT(DISTINCT series_tags.tag_id) = ?", len(q.TagIDs))
		}
		return tx
	}

	var total int64
	if len(q.TagIDs) > 0 {
		sub := base().Select("series.id")
		if err := r.DB.WithContext(ctx).Table("(?) AS matched", sub).Count(&total).Error; err != nil {
			return nil, 0, fmt.Errorf("count series: %w", err)
		}
	} else {
		if err := base().Count(&total).Error; err != nil {
			return nil, 0, fmt.Errorf("count series: %w", err)
		}
	}

	var series []models.Series
	err := base().
		Order("series.id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&series).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list series: %w", err)
	}

	return series, int(total)/pageSize + 1, nil
}

func (r *Repo) GetByID(ctx context.Context, id uint) (*models.Series, error) {
	var s models.Series
	if err := r.DB.WithContext(ctx).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get series: %w", err)
	}
	return &s, nil
}

type CreateParams struct {
	Name        string
	Description string
	Thumbnail   string
	Hidden      bool
	PostIDs     []uint
	TagIDs      []uint
}

// Create inserts the series, pulls the listed posts under it and
// attaches the given tags, all in one transaction. Unknown post ids
// are a silent no-op; unknown tag ids roll everything back.
func (r *Repo) Create(ctx context.Context, p CreateParams) (*models.Series, error) {
	series := &models.Series{
		Name:        p.Name,
		Description: p.Description,
		Thumbnail:   p.Thumbnail,
		Hidden:      p.Hidden,
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(series).Error; err != nil {
			return fmt.Errorf("create series: %w", err)
		}
		if len(p.PostIDs) > 0 {
			if err := attachPosts(tx, series.ID, p.PostIDs); err != nil {
				return err
			}
		}
		if len(p.TagIDs) > 0 {
			return replaceTags(tx, series, p.TagIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return series, nil
}

type UpdateParams struct {
	ID          uint
	Name        *string
	Description *string
	Thumbnail   *string
	Hidden      *bool
	PostIDs     []uint // nil leaves membership alone, non-nil replaces it wholesale
	TagIDs      []uint // same semantics for tags
}

// Update overwrites only provided fields. A non-nil post list detaches
// every current member first, then attaches the listed ones — full
// replacement, not a merge.
func (r *Repo) Update(ctx context.Context, p UpdateParams) (*models.Series, error) {
	var series models.Series

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&series, p.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get series: %w", err)
		}

		if p.Name != nil {
			series.Name = *p.Name
		}
		if p.Description != nil {
			series.Description = *p.Description
		}
		if p.Thumbnail != nil {
			series.Thumbnail = *p.Thumbnail
		}
		if p.Hidden != nil {
			series.Hidden = *p.Hidden
		}

		if err := tx.Save(&series).Error; err != nil {
			return fmt.Errorf("save series: %w", err)
		}

		if p.PostIDs != nil {
			if err := detachPosts(tx, series.ID); err != nil {
				return err
			}
			if err := attachPosts(tx, series.ID, p.PostIDs); err != nil {
				return err
			}
		}
		if p.TagIDs != nil {
			return replaceTags(tx, &series, p.TagIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &series, nil
}

// Delete detaches the series' posts (they survive with a null series
// reference) and clears its tag associations before removing the row.
func (r *Repo) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var series models.Series
		if err := tx.First(&series, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get series: %w", err)
		}
		if err := detachPosts(tx, series.ID); err != nil {
			return err
		}
		if err := tx.Model(&series).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("clear series tags: %w", err)
		}
		if err := tx.Delete(&series).Error; err != nil {
			return fmt.Errorf("delete series: %w", err)
		}
		return nil
	})
}

// IDs lists every non-hidden series id for the sitemap feed.
func (r *Repo) IDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).
		Model(&models.Series{}).
		Where("hidden = ?", false).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list series ids: %w", err)
	}
	return ids, nil
}

// PostIDs returns the ids of the series' non-hidden posts.
func (r *Repo) PostIDs(ctx context.Context, seriesID uint) ([]uint, error) {
	if err := r.exists(ctx, seriesID); err != nil {
		return nil, err
	}
	var ids []uint
	err := r.DB.WithContext(ctx).
		Model(&models.Post{}).
		Where("series_id = ?", seriesID).
		Where("hidden = ?", false).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list series post ids: %w", err)
	}
	return ids, nil
}

// TagIDs returns the ids of the series' tags.
func (r *Repo) TagIDs(ctx context.Context, seriesID uint) ([]uint, error) {
	if err := r.exists(ctx, seriesID); err != nil {
		return nil, err
	}
	var ids []uint
	err := r.DB.WithContext(ctx).
		Table("series_tags").
		Where("series_id = ?", seriesID).
		Order("tag_id").
		Pluck("tag_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list series tag ids: %w", err)
	}
	return ids, nil
}

func (r *Repo) SearchByName(ctx context.Context, query string) ([]models.Series, error) {
	var series []models.Series
	err := r.DB.WithContext(ctx).
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(query)+"%").
		Order("id DESC").
		Find(&series).Error
	if err != nil {
		return nil, fmt.Errorf("search series: %w", err)
	}
	return series, nil
}

// UniqueName reports whether no series currently holds the exact name.
// Advisory only; the unique index is the real guarantee.
func (r *Repo) UniqueName(ctx context.Context, name string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.Series{}).
		Where("name = ?", name).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("probe name: %w", err)
	}
	return n == 0, nil
}

func (r *Repo) exists(ctx context.Context, id uint) error {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Series{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("probe series: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// attachPosts points the listed posts at the series. Ids that match no
// post are skipped silently.
func attachPosts(tx *gorm.DB, seriesID uint, postIDs []uint) error {
	if len(postIDs) == 0 {
		return nil
	}
	err := tx.Model(&models.Post{}).
		Where("id IN ?", postIDs).
		Update("series_id", seriesID).Error
	if err != nil {
		return fmt.Errorf("attach posts: %w", err)
	}
	return nil
}

func detachPosts(tx *gorm.DB, seriesID uint) error {
	err := tx.Model(&models.Post{}).
		Where("series_id = ?", seriesID).
		Update("series_id", nil).Error
	if err != nil {
		return fmt.Errorf("detach posts: %w", err)
	}
	return nil
}

func replaceTags(tx *gorm.DB, series *models.Series, ids []uint) error {
	tags, err := fetchTags(tx, ids)
	if err != nil {
		return err
	}
	assoc := tx.Model(series).Association("Tags")
	if len(tags) == 0 {
		if err := assoc.Clear(); err != nil {
			return fmt.Errorf("clear series tags: %w", err)
		}
		return nil
	}
	if err := assoc.Replace(&tags); err != nil {
		return fmt.Errorf("replace series tags: %w", err)
	}
	return nil
}

func fetchTags(tx *gorm.DB, ids []uint) ([]models.Tag, error) {
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return nil, nil
	}

	var tags []models.Tag
	if err := tx.Find(&tags, unique).Error; err != nil {
		return nil, fmt.Errorf("fetch tags: %w", err)
	}
	if len(tags) != len(unique) {
		return nil, ErrTagNotFound
	}
	return tags, nil
}
