// Package types provides shared types used across neurocat packages.
package types

import "errors"

// ErrNotFound is returned when a requested color or word does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateKey is returned when inserting a word that is already stored.
var ErrDuplicateKey = errors.New("duplicate key")

// StoreStats summarizes the contents of a word store.
type StoreStats struct {
	Driver    string `json:"driver"`
	Words     int64  `json:"words"`
	Dimension int    `json:"dimension,omitempty"`
	Extension string `json:"extension,omitempty"`
}
