package documents

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestToMillisNumeric(t *testing.T) {
	require.Equal(t, int64(1700000000000), ToMillis(int64(1700000000000)))
	require.Equal(t, int64(1700000000000), ToMillis(float64(1700000000000)))
	require.Equal(t, int64(1500), ToMillis(1500))
	require.Equal(t, int64(1500), ToMillis(json.Number("1500")))
}

func TestToMillisString(t *testing.T) {
	ref := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	require.Equal(t, ref.UnixMilli(), ToMillis("2024-03-01T12:30:00Z"))

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, day.UnixMilli(), ToMillis("2024-03-01"))

	require.Equal(t, int64(0), ToMillis("not a date"))
	require.Equal(t, int64(0), ToMillis(""))
}

func TestToMillisTimestampObject(t *testing.T) {
	obj := map[string]any{"seconds": float64(1700000000), "nanoseconds": float64(500000000)}
	require.Equal(t, int64(1700000000500), ToMillis(obj))

	require.Equal(t, int64(1700000000000), ToMillis(map[string]any{"seconds": float64(1700000000)}))
	require.Equal(t, int64(0), ToMillis(map[string]any{"other": 1}))
}

func TestToMillisTime(t *testing.T) {
	now := time.Now()
	require.Equal(t, now.UnixMilli(), ToMillis(now))
	require.Equal(t, int64(0), ToMillis(time.Time{}))
}

func TestToMillisUnresolvable(t *testing.T) {
	require.Equal(t, int64(0), ToMillis(nil))
	require.Equal(t, int64(0), ToMillis([]any{1, 2}))
	require.Equal(t, int64(0), ToMillis(true))
}
