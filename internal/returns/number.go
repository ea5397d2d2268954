// Package returns generates Returns Hub case numbers.
package returns

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prefix starts every returns number.
const Prefix = "RET-"

// NewNumber returns a number like RET-20260315-4F1A9C. The date part is the
// UTC day of now; the suffix is random.
func NewNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return Prefix + now.UTC().Format("20060102") + "-" + suffix
}
