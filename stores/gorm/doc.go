//go:build !wasm
// +build !wasm

// Package gorm provides a GORM-backed webauth.UserStore.  It works with any
// database GORM supports (PostgreSQL, MySQL, SQLite, etc.).
//
// The users table carries a unique index on email.  Open the database with
// TranslateError enabled so that violations surface as gorm.ErrDuplicatedKey
// and are reported as webauth.ErrDuplicateUser:
//
//	db, _ := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
//	if err := gormstore.AutoMigrate(db); err != nil { ... }
//	users := gormstore.NewUserStore(db)
package gorm
