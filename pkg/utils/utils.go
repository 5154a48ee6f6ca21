package utils

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	NewID() string
}

type utils struct{}

func New() IUtils {
	return &utils{}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(t), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// NewID returns a ULID for now. It panics only if the system entropy source
// fails.
func (u *utils) NewID() string {
	return ulid.Make().String()
}
