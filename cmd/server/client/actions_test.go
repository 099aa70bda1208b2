package client_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-battle/cmd/server/client"
	"github.com/KirkDiggler/rpg-battle/internal/engine"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

func TestParseAction(t *testing.T) {
	testCases := []struct {
		name string
		spec string
		want engine.Action
	}{
		{
			name: "move with auto target",
			spec: "p1a:move:earthquake",
			want: engine.Action{CombatantID: "p1a", Kind: engine.ActionMove, MoveID: "earthquake", TargetSlot: -1},
		},
		{
			name: "move at a slot",
			spec: "p2b:move:surf:1",
			want: engine.Action{CombatantID: "p2b", Kind: engine.ActionMove, MoveID: "surf", TargetSlot: 1},
		},
		{
			name: "switch",
			spec: "p1a:switch:p1c",
			want: engine.Action{CombatantID: "p1a", Kind: engine.ActionSwitch, SwitchTo: "p1c", TargetSlot: -1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := client.ParseAction(tc.spec)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseActionRejectsMalformed(t *testing.T) {
	for _, spec := range []string{
		"",
		"p1a",
		"p1a:move",
		"p1a:move:",
		":move:tackle",
		"p1a:attack:tackle",
		"p1a:move:tackle:left",
		"p1a:move:tackle:-2",
		"p1a:move:tackle:0:extra",
		"p1a:switch:p1b:0",
	} {
		t.Run(spec, func(t *testing.T) {
			_, err := client.ParseAction(spec)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidArgument(err))
		})
	}
}
