package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJoinList(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Tokyo, Kyoto", JoinList([]string{"Tokyo", " ", " Kyoto "}))
	require.Equal(t, "", JoinList(nil))
	require.Equal(t, "Bali", JoinList([]string{"Bali"}))
}

func TestOr(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Year-round", Or("  ", "Year-round"))
	require.Equal(t, "Spring", Or(" Spring", "Year-round"))
}

func TestFmtDate(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)
	require.Equal(t, "2024-03-09 14:05", FmtDate(ts, "ja"))
	require.Equal(t, "Mar 9, 2024 14:05", FmtDate(ts, "en"))
	require.Equal(t, "", FmtDate(time.Time{}, "en"))
}
