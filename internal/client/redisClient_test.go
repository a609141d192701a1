package client

import (
	"errors"
	"testing"

	"github.com/go-redsync/redsync/v4"
)

func TestLockError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		held bool
	}{
		{"taken", &redsync.ErrTaken{Nodes: []int{0}}, true},
		{"failed", redsync.ErrFailed, true},
		{"redis down", &redsync.RedisError{Node: 0, Err: errors.New("dial tcp: connection refused")}, false},
	}
	for _, tc := range cases {
		err := lockError("subscription:alice", tc.err)
		if errors.Is(err, ErrLockHeld) != tc.held {
			t.Fatalf("%s: held = %v, want %v (%v)", tc.name, !tc.held, tc.held, err)
		}
	}
}
