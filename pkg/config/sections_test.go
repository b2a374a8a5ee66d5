package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendSection(t *testing.T) {
	s := NewBackendSection()
	require.NoError(t, s.Validate())

	require.NoError(t, s.SetData(map[string]any{"base_url": "https://backend.local:8443", "plugin": "panel", "extra": 1}))
	baseURL, plugin := s.Endpoint()
	assert.Equal(t, "https://backend.local:8443", baseURL)
	assert.Equal(t, "panel", plugin)

	assert.Error(t, s.SetData(map[string]any{"plugin": 7}))

	s.SetBaseURL("ftp://nope")
	assert.Error(t, s.Validate())
	s.SetBaseURL("http://")
	assert.Error(t, s.Validate())

	s.Reset()
	assert.Equal(t, map[string]any{"base_url": defaultBaseURL, "plugin": defaultPlugin}, s.Data())
}

func TestBinderSection(t *testing.T) {
	s := NewBinderSection()
	require.NoError(t, s.Validate())

	selectors, idPattern, urls, tick := s.Snapshot()
	assert.Equal(t, defaultAnchorSelectors, selectors)
	assert.Equal(t, `app/(\d+)`, idPattern)
	assert.Equal(t, defaultURLPatterns, urls)
	assert.Equal(t, 2*time.Second, tick)

	t.Run("json values", func(t *testing.T) {
		s := NewBinderSection()
		require.NoError(t, s.SetData(map[string]any{
			"anchor_selectors": []any{"#panel", ".fallback"},
			"id_pattern":       `item/(\d+)`,
			"url_patterns":     []any{"http://localhost:*/**"},
			"tick_interval":    "500ms",
		}))
		require.NoError(t, s.Validate())

		selectors, idPattern, urls, tick := s.Snapshot()
		assert.Equal(t, []string{"#panel", ".fallback"}, selectors)
		assert.Equal(t, `item/(\d+)`, idPattern)
		assert.Equal(t, []string{"http://localhost:*/**"}, urls)
		assert.Equal(t, 500*time.Millisecond, tick)
	})

	t.Run("rejects bad values", func(t *testing.T) {
		assert.Error(t, NewBinderSection().SetData(map[string]any{"anchor_selectors": []any{1}}))
		assert.Error(t, NewBinderSection().SetData(map[string]any{"anchor_selectors": "x"}))

		noGroup := NewBinderSection()
		require.NoError(t, noGroup.SetData(map[string]any{"id_pattern": `app/\d+`}))
		assert.Error(t, noGroup.Validate())

		badGlob := NewBinderSection()
		require.NoError(t, badGlob.SetData(map[string]any{"url_patterns": []any{"https://[a-"}}))
		assert.Error(t, badGlob.Validate())

		empty := NewBinderSection()
		require.NoError(t, empty.SetData(map[string]any{"anchor_selectors": []any{}}))
		assert.Error(t, empty.Validate())

		fast := NewBinderSection()
		require.NoError(t, fast.SetData(map[string]any{"tick_interval": "1ms"}))
		assert.Error(t, fast.Validate())
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		s := NewBinderSection()
		selectors, _, _, _ := s.Snapshot()
		selectors[0] = "mutated"
		again, _, _, _ := s.Snapshot()
		assert.Equal(t, defaultAnchorSelectors[0], again[0])
	})
}

func TestTrackerSection(t *testing.T) {
	s := NewTrackerSection()
	require.NoError(t, s.Validate())

	acquire, fix, settle := s.Timings()
	assert.Equal(t, 600*time.Millisecond, acquire)
	assert.Equal(t, 1500*time.Millisecond, fix)
	assert.Equal(t, time.Second, settle)

	require.NoError(t, s.SetData(map[string]any{
		"acquire_interval": "1s",
		"fix_interval":     float64(2 * time.Second),
	}))
	acquire, fix, _ = s.Timings()
	assert.Equal(t, time.Second, acquire)
	assert.Equal(t, 2*time.Second, fix)

	assert.Error(t, s.SetData(map[string]any{"settle_delay": "soon"}))
	assert.Error(t, s.SetData(map[string]any{"settle_delay": true}))

	require.NoError(t, s.SetData(map[string]any{"settle_delay": "10ms"}))
	assert.Error(t, s.Validate())

	s.Reset()
	assert.Equal(t, map[string]any{
		"acquire_interval": "600ms",
		"fix_interval":     "1.5s",
		"settle_delay":     "1s",
	}, s.Data())
}

func TestUpdateSection(t *testing.T) {
	s := NewUpdateSection()
	require.NoError(t, s.Validate())

	enabled, delay, interval := s.Settings()
	assert.True(t, enabled)
	assert.Equal(t, 3*time.Second, delay)
	assert.Zero(t, interval)
	assert.NotContains(t, s.Data(), "last_checked")

	require.NoError(t, s.SetData(map[string]any{
		"enabled":            false,
		"min_check_interval": "6h",
		"last_checked":       "2026-05-01T10:00:00Z",
	}))
	enabled, _, interval = s.Settings()
	assert.False(t, enabled)
	assert.Equal(t, 6*time.Hour, interval)
	assert.Equal(t, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), s.LastChecked())
	assert.Equal(t, "2026-05-01T10:00:00Z", s.Data()["last_checked"])

	assert.Error(t, s.SetData(map[string]any{"last_checked": "yesterday"}))
	assert.Error(t, s.SetData(map[string]any{"enabled": "yes"}))

	require.NoError(t, s.SetData(map[string]any{"startup_delay": "-1s"}))
	assert.Error(t, s.Validate())

	s.Reset()
	assert.True(t, s.LastChecked().IsZero())
}
