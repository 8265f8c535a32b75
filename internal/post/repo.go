package post

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
	ErrNotFound       = errors.New("post not found")
	ErrTagNotFound    = errors.New("tag not found")
	ErrSeriesNotFound = errors.New("series not found")
)

type Repo struct {
	DB *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{DB: db}
}

type ListQuery struct {
	Page   int    // 1-indexed
	Title  string // case-insensitive contains
	TagIDs []uint // intersection: a post must carry every id
	Public bool   // hide hidden posts and posts attached to a series
}

// List returns one page of matching posts plus the max page number.
// Tag filtering joins post_tags and keeps only posts whose distinct
// matched tag count equals the requested set size, which is what makes
// the filter an intersection rather than an any-match.
func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Post, int, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}

	base := func() *gorm.DB {
		tx := r.DB.WithContext(ctx).Model(&models.Post{})
		if q.Public {
			tx = tx.Where("posts.hidden = ?", false).Where("posts.series_id IS NULL")
		}
		if q.Title != "" {
			tx = tx.Where("LOWER(posts.title) LIKE ?", "%"+strings.ToLower(q.Title)+"%")
		}
		if len(q.TagIDs) > 0 {
			tx = tx.Select("posts.*").
				Joins("JOIN post_tags ON post_tags.post_id = posts.id").
				Where("post_tags.tag_id IN ?", q.TagIDs).
				Group("posts.id").
				Having("COUNT(DISTINCT post_tags.tag_id) = ?", len(q.TagIDs))
		}
		return tx
	}

	var total int64
	if len(q.TagIDs) > 0 {
		// counting a grouped query means counting its groups
		sub := base().Select("posts.id")
		if err := r.DB.WithContext(ctx).Table("(?) AS matched", sub).Count(&total).Error; err != nil {
			return nil, 0, fmt.Errorf("count posts: %w", err)
		}
	} else {
		if err := base().Count(&total).Error; err != nil {
			return nil, 0, fmt.Errorf("count posts: %w", err)
		}
	}

	var posts []models.Post
	err := base().
		Order("posts.id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&posts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}

	return posts, int(total)/pageSize + 1, nil
}

func (r *Repo) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var p models.Post
	if err := r.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &p, nil
}

type CreateParams struct {
	Title       string
	Content     string
	Description string
	Thumbnail   string
	Hidden      bool
	SeriesID    *uint
	TagIDs      []uint
}

// Create inserts the post and attaches the given tags in one
// transaction. Unknown tag or series ids roll everything back.
func (r *Repo) Create(ctx context.Context, p CreateParams) (*models.Post, error) {
	post := &models.Post{
		Title:       p.Title,
		Content:     p.Content,
		Description: p.Description,
		Thumbnail:   p.Thumbnail,
		Hidden:      p.Hidden,
		SeriesID:    p.SeriesID,
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p.SeriesID != nil {
			if err := seriesExists(tx, *p.SeriesID); err != nil {
				return err
			}
		}
		if err := tx.Create(post).Error; err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		if len(p.TagIDs) > 0 {
			return replaceTags(tx, post, p.TagIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

type UpdateParams struct {
	ID          uint
	Title       *string
	Content     *string
	Description *string
	Thumbnail   *string
	Hidden      *bool
	SeriesID    *uint
	TagIDs      []uint // nil leaves tags alone, non-nil replaces the whole set
}

// Update overwrites only the fields that were provided. A non-nil tag
// list fully replaces the association set; an empty one clears it.
func (r *Repo) Update(ctx context.Context, p UpdateParams) (*models.Post, error) {
	var post models.Post

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, p.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get post: %w", err)
		}

		if p.Title != nil {
			post.Title = *p.Title
		}
		if p.Content != nil {
			post.Content = *p.Content
		}
		if p.Description != nil {
			post.Description = *p.Description
		}
		if p.Thumbnail != nil {
			post.Thumbnail = *p.Thumbnail
		}
		if p.Hidden != nil {
			post.Hidden = *p.Hidden
		}
		if p.SeriesID != nil {
			if err := seriesExists(tx, *p.SeriesID); err != nil {
				return err
			}
			post.SeriesID = p.SeriesID
		}

		if err := tx.Save(&post).Error; err != nil {
			return fmt.Errorf("save post: %w", err)
		}
		if p.TagIDs != nil {
			return replaceTags(tx, &post, p.TagIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete clears the post's tag associations before removing the row so
// no orphaned join rows survive.
func (r *Repo) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get post: %w", err)
		}
		if err := tx.Model(&post).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("clear post tags: %w", err)
		}
		if err := tx.Delete(&post).Error; err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		return nil
	})
}

// IDs lists every non-hidden post id, series-attached ones included;
// the sitemap feed wants all reachable posts.
func (r *Repo) IDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).
		Model(&models.Post{}).
		Where("hidden = ?", false).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list post ids: %w", err)
	}
	return ids, nil
}

// TagIDs returns the ids of the post's tags.
func (r *Repo) TagIDs(ctx context.Context, postID uint) ([]uint, error) {
	if err := r.exists(ctx, postID); err != nil {
		return nil, err
	}
	var ids []uint
	err := r.DB.WithContext(ctx).
		Table("post_tags").
		Where("post_id = ?", postID).
		Order("tag_id").
		Pluck("tag_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list post tag ids: %w", err)
	}
	return ids, nil
}

// SeriesID returns the owning series id, nil for standalone posts.
func (r *Repo) SeriesID(ctx context.Context, postID uint) (*uint, error) {
	post, err := r.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	return post.SeriesID, nil
}

// SearchByTitle is the admin picker behind the series composer: it
// only offers posts that are not attached to a series yet.
func (r *Repo) SearchByTitle(ctx context.Context, query string) ([]models.Post, error) {
	var posts []models.Post
	err := r.DB.WithContext(ctx).
		Where("LOWER(title) LIKE ?", "%"+strings.ToLower(query)+"%").
		Where("series_id IS NULL").
		Order("id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return posts, nil
}

// UniqueTitle reports whether no post currently holds the exact title.
// Advisory only; the unique index is the real guarantee.
func (r *Repo) UniqueTitle(ctx context.Context, title string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.Post{}).
		Where("title = ?", title).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("probe title: %w", err)
	}
	return n == 0, nil
}

func (r *Repo) exists(ctx context.Context, id uint) error {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("probe post: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func seriesExists(tx *gorm.DB, id uint) error {
	var n int64
	if err := tx.Model(&models.Series{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("probe series: %w", err)
	}
	if n == 0 {
		return ErrSeriesNotFound
	}
	return nil
}

// replaceTags swaps the post's tag set for the given ids. Every id
// must name an existing tag.
func replaceTags(tx *gorm.DB, post *models.Post, ids []uint) error {
	tags, err := fetchTags(tx, ids)
	if err != nil {
		return err
	}
	assoc := tx.Model(post).Association("Tags")
	if len(tags) == 0 {
		if err := assoc.Clear(); err != nil {
			return fmt.Errorf("clear post tags: %w", err)
		}
		return nil
	}
	if err := assoc.Replace(&tags); err != nil {
		return fmt.Errorf("replace post tags: %w", err)
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
