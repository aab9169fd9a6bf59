package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned by Get* lookups when no row matches. Find* lookups
// return a nil record and a nil error instead.
var ErrNotFound = errors.New("record not found")

// findOne returns the first row of query, or nil when there is none
func findOne[T any](query *gorm.DB) (*T, error) {
	var out T
	err := query.First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// getOne returns the first row of query, or ErrNotFound
func getOne[T any](query *gorm.DB) (*T, error) {
	out, err := findOne[T](query)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ErrNotFound
	}
	return out, nil
}
