package catalogtui_test

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/require"

	"github.com/k8s-schemas/crdcat/pkg/catalogcmd"
	"github.com/k8s-schemas/crdcat/pkg/catalogtui"
)

func TestActionModel_Success(t *testing.T) {
	t.Parallel()

	m := catalogtui.NewActionModel("resolve", "resolving")
	tm := teatest.NewTestModel(
		t, m,
		teatest.WithInitialTermSize(300, 100),
	)
	time.Sleep(100 * time.Millisecond)

	teatest.WaitFor(
		t, tm.Output(),
		func(bts []byte) bool {
			return bytes.Contains(bts, []byte("Resolving"))
		},
	)

	tm.Send(catalogcmd.EventDone{})

	out, err := io.ReadAll(tm.FinalOutput(t, teatest.WithFinalTimeout(10*time.Second)))
	require.NoError(t, err)
	require.Contains(t, string(out), "Resolve complete.")
}

func TestActionModel_Error(t *testing.T) {
	t.Parallel()

	m := catalogtui.NewActionModel("index", "indexing")
	tm := teatest.NewTestModel(
		t, m,
		teatest.WithInitialTermSize(300, 100),
	)
	time.Sleep(100 * time.Millisecond)

	teatest.WaitFor(
		t, tm.Output(),
		func(bts []byte) bool {
			return bytes.Contains(bts, []byte("Indexing"))
		},
	)

	tm.Send(catalogcmd.EventDone{Err: errors.New("permission denied")})

	out, err := io.ReadAll(tm.FinalOutput(t, teatest.WithFinalTimeout(10*time.Second)))
	require.NoError(t, err)
	require.Contains(t, string(out), "permission denied")
	require.NotContains(t, string(out), "Index complete.")
}

func TestActionModel_WritesLogs(t *testing.T) {
	t.Parallel()

	m := catalogtui.NewActionModel("seed", "seeding")
	tm := teatest.NewTestModel(
		t, m,
		teatest.WithInitialTermSize(300, 100),
	)
	time.Sleep(100 * time.Millisecond)

	tm.Send(catalogcmd.EventLog("imported group external-secrets.io"))
	teatest.WaitFor(
		t, tm.Output(),
		func(bts []byte) bool {
			return bytes.Contains(bts, []byte("imported group external-secrets.io"))
		},
	)

	tm.Send(catalogcmd.EventDone{})

	out, err := io.ReadAll(tm.FinalOutput(t, teatest.WithFinalTimeout(10*time.Second)))
	require.NoError(t, err)
	require.Contains(t, string(out), "Seed complete.")
}
