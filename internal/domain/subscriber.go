// Package domain defines the core entities of the news cluster bot.
package domain

import (
	"fmt"
	"time"
)

// Subscriber represents a Telegram user with stored digest preferences.
type Subscriber struct {
	ID           int64
	FirstName    string
	LastName     string
	FullName     string
	Username     string
	Link         string
	Preferences  Preferences
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastActiveAt time.Time
}

// DeepLink returns the tg:// link addressing the subscriber.
func DeepLink(id int64) string {
	return fmt.Sprintf("tg://user?id=%d", id)
}

// Preferences captures what news a subscriber wants and how to deliver it.
type Preferences struct {
	Topic      string
	Language   string
	Location   string
	AutoDigest bool
}

// DefaultPreferences returns the preference defaults applied to new subscribers.
func DefaultPreferences() Preferences {
	return Preferences{
		Language: DefaultLanguage,
		Location: DefaultLocation,
	}
}

// Validate checks topic presence and membership of location and language in the supported sets.
func (p Preferences) Validate() error {
	if p.Topic == "" {
		return fmt.Errorf("preferences: topic is empty")
	}
	if _, ok := Locations[p.Location]; !ok {
		return fmt.Errorf("preferences: unsupported location %q", p.Location)
	}
	if _, ok := Languages[p.Language]; !ok {
		return fmt.Errorf("preferences: unsupported language %q", p.Language)
	}

	return nil
}
