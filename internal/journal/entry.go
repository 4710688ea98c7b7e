// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package journal

import "time"

// Entry is one journal entry, keyed by calendar date: the backend holds at
// most one per user per day.
type Entry struct {
	ID        string    `json:"id,omitempty"`
	Date      string    `json:"date"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	Mood      int       `json:"mood,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MoodPoint is one day's aggregated mood score.
type MoodPoint struct {
	Date string  `json:"date"`
	Mood float64 `json:"mood"`
}

// MoodTrend is the server-computed mood aggregate over a trailing window.
type MoodTrend struct {
	Days    int         `json:"days"`
	Average float64     `json:"average"`
	Points  []MoodPoint `json:"points"`
}
