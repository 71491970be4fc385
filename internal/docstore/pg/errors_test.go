package pg

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestClassifyRetryablePgCodes(t *testing.T) {
	cases := []struct {
		name      string
		code      string
		retryable bool
	}{
		{"connection failure", "08006", true},
		{"serialization failure", "40001", true},
		{"deadlock detected", "40P01", true},
		{"too many connections", "53300", true},
		{"admin shutdown", "57P01", true},
		{"unique violation", "23505", false},
		{"undefined table", "42P01", false},
		{"invalid text representation", "22P02", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := &pgconn.PgError{Code: tc.code}
			require.Equal(t, tc.retryable, classifyRetryable(err))
		})
	}
}

func TestClassifyRetryableContext(t *testing.T) {
	require.False(t, classifyRetryable(context.Canceled))
	require.True(t, classifyRetryable(context.DeadlineExceeded))
	require.False(t, classifyRetryable(nil))
	require.False(t, classifyRetryable(errors.New("opaque")))
}

func TestClassifyRetryableNetError(t *testing.T) {
	var err error = &net.OpError{Op: "dial", Err: &timeoutError{}}
	require.True(t, classifyRetryable(err))
}

type timeoutError struct{}

func (*timeoutError) Error() string { return "i/o timeout" }
func (*timeoutError) Timeout() bool { return true }

func TestChangeChannelNaming(t *testing.T) {
	require.Equal(t, "docstore:changed:orders", changeChannel("orders"))
}
