package engagement

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nfrund/parley/internal/chat"
)

// HourUsers is the number of distinct users who wrote during one hour.
type HourUsers struct {
	Hour  int `json:"hour"`
	Users int `json:"users"`
}

// Activity is one day of hourly chat activity.
type Activity struct {
	Day   time.Time   `json:"day"`
	Hours []HourUsers `json:"hours"`
}

// Bin is a group of consecutive hours labelled by its first hour.
type Bin struct {
	Hour  string `json:"hour"`
	Users int    `json:"users"`
}

// HourlyActivity counts distinct message authors for each hour of the day
// that lies displacement days before now. Hours are taken in UTC when utc is
// set, otherwise in now's location.
func HourlyActivity(ctx context.Context, store chat.Store, now time.Time, displacement int, utc bool) (Activity, error) {
	if displacement < 0 {
		return Activity{}, fmt.Errorf("displacement %d: %w", displacement, chat.ErrInvalidParameter)
	}
	if utc {
		now = now.UTC()
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -displacement)
	end := day.AddDate(0, 0, 1)

	msgs, err := store.MessagesBetween(ctx, day, end)
	if err != nil {
		return Activity{}, err
	}

	var seen [24]map[string]struct{}
	for _, m := range msgs {
		h := m.Timestamp.In(day.Location()).Hour()
		if seen[h] == nil {
			seen[h] = make(map[string]struct{})
		}
		seen[h][m.User.ID] = struct{}{}
	}

	hours := make([]HourUsers, 24)
	for h := range hours {
		hours[h] = HourUsers{Hour: h, Users: len(seen[h])}
	}
	return Activity{Day: day, Hours: hours}, nil
}

// Bucket folds hourly counts into 24/divider bins. A divider that does not
// split the day evenly falls back to 2.
func Bucket(hours []HourUsers, divider int) []Bin {
	if divider <= 0 || 24%divider != 0 {
		divider = 2
	}
	bins := make([]Bin, 24/divider)
	for i := range bins {
		bins[i].Hour = strconv.Itoa(i * divider)
	}
	for _, h := range hours {
		if h.Hour < 0 || h.Hour > 23 {
			continue
		}
		bins[h.Hour/divider].Users += h.Users
	}
	return bins
}
