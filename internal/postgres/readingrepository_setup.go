// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

package postgres

import (
	"log/slog"
)

type ReadingRepository struct {
	options *readingRepositoryOptions
}

// NewReadingRepository creates a new [ReadingRepository].
func NewReadingRepository(options ...ReadingRepositoryOption) (*ReadingRepository, error) {
	opts := defaultReadingRepositoryOptions
	for _, opt := range GlobalReadingRepositoryOptions {
		opt.apply(&opts)
	}
	for _, opt := range options {
		opt.apply(&opts)
	}

	return &ReadingRepository{
		options: &opts,
	}, nil
}

type readingRepositoryOptions struct {
	Logger *slog.Logger
	Db     PgxPoolInterface
}

var defaultReadingRepositoryOptions = readingRepositoryOptions{
	Logger: slog.Default(),
}

// GlobalReadingRepositoryOptions is a list of [ReadingRepositoryOption]s that are applied to all [ReadingRepository]s.
var GlobalReadingRepositoryOptions []ReadingRepositoryOption

// ReadingRepositoryOption is an option for configuring a [ReadingRepository].
type ReadingRepositoryOption interface {
	apply(*readingRepositoryOptions)
}

// funcReadingRepositoryOption is a [ReadingRepositoryOption] that calls a function.
// It is used to wrap a function, so it satisfies the [ReadingRepositoryOption] interface.
type funcReadingRepositoryOption struct {
	f func(*readingRepositoryOptions)
}

func (fro *funcReadingRepositoryOption) apply(opts *readingRepositoryOptions) {
	fro.f(opts)
}

func newFuncReadingRepositoryOption(f func(*readingRepositoryOptions)) *funcReadingRepositoryOption {
	return &funcReadingRepositoryOption{
		f: f,
	}
}

// WithReadingRepositoryLogger returns a [ReadingRepositoryOption] that uses the provided logger.
func WithReadingRepositoryLogger(logger *slog.Logger) ReadingRepositoryOption {
	return newFuncReadingRepositoryOption(func(opts *readingRepositoryOptions) {
		opts.Logger = logger
	})
}

// WithReadingRepositoryDb returns a [ReadingRepositoryOption] that uses the provided database connection.
func WithReadingRepositoryDb(db PgxPoolInterface) ReadingRepositoryOption {
	return newFuncReadingRepositoryOption(func(opts *readingRepositoryOptions) {
		opts.Db = db
	})
}
