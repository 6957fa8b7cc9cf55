// package models contains the database models for the microblog.
// Urgh, a package called models, I know, I know.
package models

import (
	"errors"

	"gorm.io/gorm"
)

// ErrInvalidOperation is returned when a request is well formed but not
// permitted; a user following themselves, a non positive page size, a
// post body over the limit. Callers are expected to reject the
// operation before it touches the store.
var ErrInvalidOperation = errors.New("invalid operation")

// AllTables returns a slice of all the tables in the database, in an
// order suitable for AutoMigrate.
func AllTables() []any {
	return []any{
		&User{},
		&Token{},
		&Relationship{},
		&Post{},
		&Notification{},
	}
}

// forEach runs each function in the slice within the supplied transaction.
func forEach(tx *gorm.DB, fns ...func(tx *gorm.DB) error) error {
	for _, fn := range fns {
		if err := fn(tx); err != nil {
			return err
		}
	}
	return nil
}
