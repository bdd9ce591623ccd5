package util

import (
	"github.com/google/uuid"
	"github.com/rs/xid"
)

func GetUUID() string {
	return uuid.New().String()
}

// GetSortableID returns a short, time ordered unique id.
func GetSortableID() string {
	return xid.New().String()
}
