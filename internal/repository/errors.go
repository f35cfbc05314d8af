package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when a record does not exist or is not owned
	// by the requesting user.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned on unique-key violations and stale versions.
	ErrConflict = errors.New("record conflict")
)

// AnyVersion disables the optimistic version check on journey updates.
const AnyVersion int64 = -1

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrConflict
	}
	return err
}
