package store

import (
	"database/sql"
	"fmt"
)

// DefaultSettings are bootstrapped on first read of an empty settings table.
var DefaultSettings = Settings{
	ShuffleEnabled:    false,
	TransitionSeconds: 10,
	SleepEnabled:      false,
	SleepStart:        "23:00",
	SleepEnd:          "06:00",
	Brightness:        70,
}

func (d *Database) GetSettings() (*Settings, error) {
	const query = `
		SELECT shuffle_photos,
		       photo_change_time,
		       sleep_enabled,
		       COALESCE(sleep_start, ''),
		       COALESCE(sleep_end, ''),
		       brightness
		FROM settings
		WHERE singleton = 1
	`

	var shuffleInt, sleepEnabledInt int
	var s Settings

	err := d.db.QueryRow(query).Scan(
		&shuffleInt,
		&s.TransitionSeconds,
		&sleepEnabledInt,
		&s.SleepStart,
		&s.SleepEnd,
		&s.Brightness,
	)
	if err == sql.ErrNoRows {
		// Bootstrap defaults if no settings row exists yet
		defaults := DefaultSettings
		if err := d.UpsertSettings(&defaults); err != nil {
			return nil, err
		}
		return &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	s.ShuffleEnabled = shuffleInt != 0
	s.SleepEnabled = sleepEnabledInt != 0
	return &s, nil
}

func (d *Database) UpsertSettings(s *Settings) error {
	const stmt = `
		INSERT INTO settings (
			singleton,
			shuffle_photos,
			photo_change_time,
			sleep_enabled,
			sleep_start,
			sleep_end,
			brightness
		) VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(singleton) DO UPDATE SET
			shuffle_photos    = excluded.shuffle_photos,
			photo_change_time = excluded.photo_change_time,
			sleep_enabled     = excluded.sleep_enabled,
			sleep_start       = excluded.sleep_start,
			sleep_end         = excluded.sleep_end,
			brightness        = excluded.brightness
	`

	_, err := d.db.Exec(
		stmt,
		boolToInt(s.ShuffleEnabled),
		s.TransitionSeconds,
		boolToInt(s.SleepEnabled),
		s.SleepStart,
		s.SleepEnd,
		s.Brightness,
	)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
