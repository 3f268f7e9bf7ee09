package store

import (
	"github.com/kubev2v/coach-importer/internal/store/model"
	"gorm.io/gorm"
)

type SortOrder int

const (
	Unsorted SortOrder = iota
	SortByCreatedTime
	SortByUpdatedTime
	SortByCreatedTimeDesc
)

type BaseQuerier struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
}

type ImportJobQueryFilter BaseQuerier

func NewImportJobQueryFilter() *ImportJobQueryFilter {
	return &ImportJobQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *ImportJobQueryFilter) ByStatus(statuses ...model.ImportJobStatus) *ImportJobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status IN ?", statuses)
	})
	return qf
}

func (qf *ImportJobQueryFilter) ByFileURL(fileURL string) *ImportJobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("file_url = ?", fileURL)
	})
	return qf
}

type ImportJobQueryOptions BaseQuerier

func NewImportJobQueryOptions() *ImportJobQueryOptions {
	return &ImportJobQueryOptions{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (o *ImportJobQueryOptions) WithSortOrder(sort SortOrder) *ImportJobQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		switch sort {
		case SortByCreatedTime:
			return tx.Order("created_at")
		case SortByUpdatedTime:
			return tx.Order("updated_at")
		case SortByCreatedTimeDesc:
			return tx.Order("created_at DESC")
		default:
			return tx
		}
	})
	return o
}

// Limit results
func (o *ImportJobQueryOptions) WithLimit(limit int) *ImportJobQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Limit(limit)
	})
	return o
}

// Offset results
func (o *ImportJobQueryOptions) WithOffset(offset int) *ImportJobQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Offset(offset)
	})
	return o
}
