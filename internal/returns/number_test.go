package returns_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dpp-hub/portal-core/internal/returns"
)

func TestNewNumberFormat(t *testing.T) {
	now := time.Date(2026, 3, 15, 23, 30, 0, 0, time.FixedZone("CET", 3600))
	number := returns.NewNumber(now)

	require.Regexp(t, regexp.MustCompile(`^RET-20260315-[0-9A-F]{6}$`), number)
}

func TestNewNumberIsRandom(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{}, 50)
	for i := 0; i < 50; i++ {
		seen[returns.NewNumber(now)] = struct{}{}
	}
	require.Greater(t, len(seen), 45)
}
