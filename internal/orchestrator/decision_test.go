package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rsyncapp/synccore/internal/delta"
	"github.com/rsyncapp/synccore/internal/synctypes"
)

func TestDecideActionUnchangedAlwaysSkips(t *testing.T) {
	d := delta.Info{Status: synctypes.EDelta.Unchanged(), DestPath: "/d/a"}
	act, dest := decideAction(d, Options{})
	assert.Equal(t, actionSkip, act)
	assert.Equal(t, "/d/a", dest)
}

func TestDecideActionNewAlwaysCopies(t *testing.T) {
	d := delta.Info{Status: synctypes.EDelta.New(), DestPath: "/d/a"}
	act, _ := decideAction(d, Options{ConflictResolution: synctypes.EConflict.Skip()})
	assert.Equal(t, actionCopy, act)
}

func TestDecideActionSkipExistingWinsOverConflictResolution(t *testing.T) {
	d := delta.Info{Status: synctypes.EDelta.Modified(), DestPath: "/d/a"}
	act, _ := decideAction(d, Options{SkipExisting: true, ConflictResolution: synctypes.EConflict.Overwrite()})
	assert.Equal(t, actionSkip, act)
}

func TestDecideActionOverwriteNewerRespectsDirection(t *testing.T) {
	older := delta.Info{Status: synctypes.EDelta.Modified(), SourceOlder: true, DestPath: "/d/a"}
	act, _ := decideAction(older, Options{OverwriteNewer: true})
	assert.Equal(t, actionSkip, act)

	newer := delta.Info{Status: synctypes.EDelta.Modified(), SourceNewer: true, DestPath: "/d/a"}
	act, _ = decideAction(newer, Options{OverwriteNewer: true})
	assert.Equal(t, actionCopy, act)
}

func TestDecideActionConflictResolutionRename(t *testing.T) {
	d := delta.Info{Status: synctypes.EDelta.Modified(), DestPath: "/d/a.txt"}
	act, dest := decideAction(d, Options{ConflictResolution: synctypes.EConflict.Rename()})
	assert.Equal(t, actionCopy, act)
	assert.NotEqual(t, "/d/a.txt", dest)
	assert.True(t, strings.HasSuffix(dest, ".txt"))
	assert.Contains(t, dest, "a_")
}

func TestDecideActionConflictResolutionAsk(t *testing.T) {
	d := delta.Info{Status: synctypes.EDelta.Modified(), DestPath: "/d/a"}
	act, _ := decideAction(d, Options{ConflictResolution: synctypes.EConflict.Ask()})
	assert.Equal(t, actionAsk, act)
}

func TestDecideActionDefaultConflictResolutionSkips(t *testing.T) {
	d := delta.Info{Status: synctypes.EDelta.Modified(), DestPath: "/d/a"}
	act, _ := decideAction(d, Options{ConflictResolution: synctypes.EConflict.Skip()})
	assert.Equal(t, actionSkip, act)
}

func TestConflictRenamePathPreservesExtensionAndDir(t *testing.T) {
	got := conflictRenamePath("/d/sub/report.csv")
	assert.True(t, strings.HasPrefix(got, "/d/sub/report_"))
	assert.True(t, strings.HasSuffix(got, ".csv"))
}
