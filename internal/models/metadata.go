package models

import "time"

// EntryMetadata is the persisted per-entry fingerprint used to decide what
// changed between two runs. A zero time means the value is absent.
type EntryMetadata struct {
	Created        time.Time `yaml:"created" json:"created"`
	LatestUpdate   time.Time `yaml:"latest_update" json:"latest_update"`
	FirstPublished time.Time `yaml:"first_published" json:"first_published"`
	Checksum       string    `yaml:"checksum" json:"checksum"`
	Title          string    `yaml:"title" json:"title"`
	Category       Category  `yaml:"category" json:"category"`
}
