package versionstore

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/homeledger/internal/common"
)

// Store key layout:
//
//	<type>/<id_field>=<id>/year=<YYYY>/month=<MM>/day=<DD>/<singular>-<id>-<timestamp>-<rand>.parquet
//
// The timestamp is UTC with microsecond precision; the random hex suffix
// keeps two near-simultaneous writes for the same id from colliding.

const timestampLayout = "20060102T150405"

func (d Descriptor) idPrefix(id string) string {
	return fmt.Sprintf("%s/%s=%s/", d.Name, d.IDField, id)
}

func (d Descriptor) typePrefix() string {
	return d.Name + "/"
}

func (d Descriptor) objectKey(id string, now time.Time) (string, error) {
	suffix, err := common.MakeRandHexString(2)
	if err != nil {
		return "", fmt.Errorf("key suffix: %w", err)
	}

	now = now.UTC()
	ts := fmt.Sprintf("%s%06dZ", now.Format(timestampLayout), now.Nanosecond()/1000)

	return fmt.Sprintf("%syear=%04d/month=%02d/day=%02d/%s-%s-%s-%s.parquet",
		d.idPrefix(id), now.Year(), int(now.Month()), now.Day(),
		d.Singular, id, ts, suffix), nil
}

// dayFromKey extracts the day partition from an object key. It returns false
// for keys that do not carry the year/month/day segments.
func dayFromKey(key string) (time.Time, bool) {
	var year, month, day int
	var found int

	for _, seg := range strings.Split(key, "/") {
		name, value, ok := strings.Cut(seg, "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		switch name {
		case "year":
			year, found = n, found|1
		case "month":
			month, found = n, found|2
		case "day":
			day, found = n, found|4
		}
	}

	if found != 7 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// inDayRange reports whether the key's day partition falls inside the
// inclusive [start, end] range, compared at day granularity.
func inDayRange(key string, start, end time.Time) bool {
	day, ok := dayFromKey(key)
	if !ok {
		return false
	}

	startDay := start.UTC().Truncate(24 * time.Hour)
	endDay := end.UTC().Truncate(24 * time.Hour)
	return !day.Before(startDay) && !day.After(endDay)
}
