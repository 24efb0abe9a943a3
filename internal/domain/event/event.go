package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/similar/internal/domain"
)

// Name identifies a content mutation.
type Name string

// Tracked mutations. Any of them can change any item's ranking.
const (
	PageCreate       Name = "page.create"
	PageUpdate       Name = "page.update"
	PageDelete       Name = "page.delete"
	PageChangeSlug   Name = "page.changeSlug"
	PageChangeStatus Name = "page.changeStatus"
	FileCreate       Name = "file.create"
	FileUpdate       Name = "file.update"
	FileDelete       Name = "file.delete"
	FileChangeName   Name = "file.changeName"
	FileReplace      Name = "file.replace"
	UserCreate       Name = "user.create"
	UserUpdate       Name = "user.update"
	UserDelete       Name = "user.delete"
)

var known = map[Name]struct{}{
	PageCreate: {}, PageUpdate: {}, PageDelete: {}, PageChangeSlug: {}, PageChangeStatus: {},
	FileCreate: {}, FileUpdate: {}, FileDelete: {}, FileChangeName: {}, FileReplace: {},
	UserCreate: {}, UserUpdate: {}, UserDelete: {},
}

// ParseName validates a mutation name.
func ParseName(s string) (Name, error) {
	n := Name(s)
	if _, ok := known[n]; !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownEvent, s)
	}
	return n, nil
}

// Event is one content mutation notification.
type Event struct {
	ID     string
	Name   Name
	ItemID string // informational only
	At     time.Time
}

// New stamps a mutation with a fresh id and time.
func New(name Name, itemID string) Event {
	return Event{
		ID:     uuid.New().String(),
		Name:   name,
		ItemID: itemID,
		At:     time.Now().UTC(),
	}
}
