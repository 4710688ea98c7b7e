// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package journal

import (
	"time"

	"github.com/taibuivan/joury-go/internal/cache"
)

// # Cache Policy

// Fixed TTLs per data class. Entries change rarely once written, analytics
// are recomputed server-side and go stale fast, static settings never change
// within a release.
const (
	// TTLEntry caches journal entries for a day.
	TTLEntry = 24 * time.Hour

	// TTLAnalytics caches mood analytics for five minutes.
	TTLAnalytics = 5 * time.Minute

	// TTLStaticSettings marks configuration that never expires.
	TTLStaticSettings = cache.Never
)

// dateLayout is the wire format for journal dates.
const dateLayout = "2006-01-02"

// Cache key prefixes. entryKeyPrefix is on the persistence allow-list and
// survives restarts; analytics stay memory-only.
const (
	entryKeyPrefix     = "journal_"
	analyticsKeyPrefix = "analytics_mood_"
)
