// Package search finds posts matching a free text query. A Searcher
// returns ranked post ids and a total count; materialising the posts
// in that order is the timeline composer's job.
//
// The index is maintained by an external engine with its own
// (eventually consistent) lag; when none is configured the database
// fallback below answers queries directly, mirroring the upstream
// behaviour of running with search disabled.
package search

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/laurfratila/microblog/internal/models"
	"github.com/laurfratila/microblog/internal/snowflake"
)

// A Result is one page of ranked post ids plus the total number of
// matches across all pages.
type Result struct {
	IDs   []snowflake.ID
	Total int64
}

type Searcher interface {
	Search(ctx context.Context, query string, page, perPage int) (*Result, error)
}

// DB answers search queries straight from the posts table with a
// substring match, ranked newest first.
type DB struct {
	db *gorm.DB
}

func NewDB(db *gorm.DB) *DB {
	return &DB{db: db}
}

func (s *DB) Search(ctx context.Context, query string, page, perPage int) (*Result, error) {
	if page < 1 || perPage < 1 {
		return nil, fmt.Errorf("%w: page and page size must be positive", models.ErrInvalidOperation)
	}
	scope := s.db.WithContext(ctx).Model(&models.Post{}).Where("body LIKE ?", "%"+query+"%")

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, err
	}

	var ids []snowflake.ID
	err := scope.Order("id desc").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return &Result{IDs: ids, Total: total}, nil
}
