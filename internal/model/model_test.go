package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCacheEntry_Fresh(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := CacheEntry{CachedAt: now.Add(-48 * time.Hour)}

	assert.True(t, entry.Fresh(now, 0), "zero ttl never expires")
	assert.True(t, entry.Fresh(now, 72*time.Hour))
	assert.False(t, entry.Fresh(now, 24*time.Hour))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "abc", TruncateString("abc", 10))
	assert.Equal(t, "ab", TruncateString("abc", 2))
	// "中" is three bytes, never split it
	assert.Equal(t, "a", TruncateString("a中", 3))
	assert.Equal(t, "a中", TruncateString("a中", 4))
}

func TestFormatISO(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 6_000_000, time.FixedZone("CST", 8*3600))
	assert.Equal(t, "2025-01-01T19:04:05.006Z", FormatISO(ts))
}

func TestDeveloper_JSONShape(t *testing.T) {
	dev := Developer{
		Login:     "octo",
		Name:      "Octo",
		Followers: 10,
		Bio:       strPtr("hi"),
		Type:      KindCode,
	}
	raw, err := json.Marshal(dev)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "hi", fields["bio"])
	assert.Nil(t, fields["company"])
	assert.Equal(t, "code", fields["type"])
	assert.Contains(t, fields, "public_repos")
	assert.Contains(t, fields, "twitter_username")
}

func TestProfilesFromMessages(t *testing.T) {
	now := time.Now()
	messages := []DeveloperMessage{
		{RunID: "r1", Developer: Developer{Login: "a", Followers: 1, Type: KindCode}},
		{RunID: "r1", Developer: Developer{Login: ""}},
		{RunID: "r1", Developer: Developer{Login: "b", Company: strPtr("acme"), Type: KindMarkdown}},
		{RunID: "r2", Developer: Developer{Login: "a", Followers: 5, Type: KindCode}},
	}

	profiles := ProfilesFromMessages(messages, now)
	require.Len(t, profiles, 2)

	assert.Equal(t, "a", profiles[0].Login)
	assert.Equal(t, 5, profiles[0].Followers)
	assert.Equal(t, "r2", profiles[0].LastRunID)
	assert.Equal(t, "acme", profiles[1].Company)
	assert.Equal(t, "markdown", profiles[1].Kind)
	assert.Equal(t, now, profiles[1].UpdatedAt)
}
