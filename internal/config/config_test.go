package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORTAL_KNOWN_HOSTS", "")
	t.Setenv("PORTAL_PLATFORM_SUFFIXES", "")
	t.Setenv("SESSION_TTL_MINUTES", "")
	t.Setenv("SLA_URGENT_HOURS", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"localhost", "127.0.0.1"}, cfg.Domain.KnownHosts)
	require.Equal(t, []string{".dpp-hub.app"}, cfg.Domain.PlatformSuffixes)
	require.Equal(t, 12*time.Hour, cfg.Session.TTL())
	require.Equal(t, 4, cfg.SLA.UrgentHours)
}

func TestLoadDomainLists(t *testing.T) {
	t.Setenv("PORTAL_KNOWN_HOSTS", " app.example.com, ,admin.example.com ")
	t.Setenv("PORTAL_PLATFORM_SUFFIXES", "*.preview.example.com")
	t.Setenv("SESSION_TTL_MINUTES", "30")
	t.Setenv("SLA_LOW_HOURS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"app.example.com", "admin.example.com"}, cfg.Domain.KnownHosts)
	require.Equal(t, []string{"*.preview.example.com"}, cfg.Domain.PlatformSuffixes)
	require.Equal(t, 30*time.Minute, cfg.Session.TTL())
	require.Equal(t, 72, cfg.SLA.LowHours)
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "one")

	_, err := Load()
	require.Error(t, err)
}
