package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rsyncapp/synccore/internal/synctypes"
)

func TestParseConflictResolution(t *testing.T) {
	cases := map[string]synctypes.ConflictResolution{
		"overwrite": synctypes.EConflict.Overwrite(),
		"rename":    synctypes.EConflict.Rename(),
		"ask":       synctypes.EConflict.Ask(),
		"skip":      synctypes.EConflict.Skip(),
		"garbage":   synctypes.EConflict.Skip(),
		"":          synctypes.EConflict.Skip(),
	}
	for in, want := range cases {
		assert.Equal(t, want, parseConflictResolution(in), "input %q", in)
	}
}
