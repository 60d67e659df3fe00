package baseline

import (
	"testing"

	"github.com/bradleyjkemp/cupaloy"
)

// SnapshotDirectory is where Snapshot keeps its snapshots, relative to the
// package under test.
const SnapshotDirectory = ".snapshots"

// Snapshot matches the whole recorded log, rendered with FormatFixture,
// against a cupaloy snapshot named after the test. Snapshots are created and
// updated through cupaloy's UPDATE_SNAPSHOTS workflow. Configurators are
// applied after the defaults.
func (v *Verifier) Snapshot(t *testing.T, configurators ...cupaloy.Configurator) {
	t.Helper()

	var snapshotter = cupaloy.New(append(
		[]cupaloy.Configurator{cupaloy.SnapshotSubdirectory(SnapshotDirectory)},
		configurators...,
	)...)
	snapshotter.SnapshotT(t, FormatFixture(v.Actual()))
}
