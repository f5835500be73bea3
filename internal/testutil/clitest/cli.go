package clitest

import (
	"bytes"
	"testing"
	"time"

	"github.com/julianstephens/medweek/internal/cli"
	"github.com/julianstephens/medweek/internal/config"
	"github.com/julianstephens/medweek/internal/identity"
	"github.com/julianstephens/medweek/internal/testutil"
)

// NewCLIContext returns a command context over an in-memory store, signed in
// as userID with the clock frozen at now. Command output is captured in the
// returned buffer.
func NewCLIContext(t *testing.T, userID string, now time.Time) (*cli.Context, *bytes.Buffer) {
	t.Helper()

	store := testutil.NewTestStore(t)
	ctx := cli.NewContext(config.DefaultConfig(), store, identity.Static(userID), now.Location())
	ctx.Clock = func() time.Time { return now }

	out := &bytes.Buffer{}
	ctx.Out = out
	return ctx, out
}
