package roster_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-battle/internal/engine"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
	"github.com/KirkDiggler/rpg-battle/internal/roster"
)

type RosterTestSuite struct {
	suite.Suite
}

func TestRosterSuite(t *testing.T) {
	suite.Run(t, new(RosterTestSuite))
}

func (s *RosterTestSuite) TestDefault() {
	f := roster.Default()

	s.Equal(engine.FormatSingles, f.Format)
	s.Equal(int64(20260314), f.Seed)
	s.Require().Len(f.Parties, 2)
	s.Len(f.Parties[0], 3)
	s.Equal("zoroark", f.Parties[0][0].Species)
	s.Equal("leftovers", f.Parties[0][2].Items[0].ID)
	s.Equal([]string{"earthquake", "dragon_claw", "rock_slide", "stealth_rock"}, f.Parties[1][0].Moves)
}

func (s *RosterTestSuite) TestParse() {
	testCases := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name: "doubles with rules",
			doc: `
format: doubles
rules: {disable_crits: true}
parties:
  - [{species: pikachu, level: 30, moves: [thunderbolt]}, {species: magikarp, level: 5, moves: [splash]}]
  - [{species: weezing, level: 40, moves: [sludge_bomb]}]
`,
		},
		{name: "unknown key", doc: "format: singles\nweather: rain\n", wantErr: "malformed roster"},
		{name: "unknown format", doc: "format: triples\nparties: [[{species: a}], [{species: b}]]\n", wantErr: "format"},
		{name: "one side", doc: "format: singles\nparties: [[{species: a}]]\n", wantErr: "parties"},
		{
			name:    "empty party",
			doc:     "format: singles\nparties: [[{species: a}], []]\n",
			wantErr: "party 1 has 0 members",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			f, err := roster.Parse([]byte(tc.doc))
			if tc.wantErr == "" {
				s.Require().NoError(err)
				s.True(f.Rules.DisableCrits)
				s.Len(f.Parties[0], 2)
				return
			}
			s.Require().Error(err)
			s.True(errors.IsInvalidArgument(err))
			s.Contains(err.Error(), tc.wantErr)
		})
	}
}

func (s *RosterTestSuite) TestLoad() {
	dir := s.T().TempDir()
	path := filepath.Join(dir, "battle.yaml")
	s.Require().NoError(os.WriteFile(path, []byte("format: singles\nseed: 9\nparties: [[{species: axew, level: 20, moves: [tackle]}], [{species: zorua, level: 20, moves: [tackle]}]]\n"), 0o600))

	f, err := roster.Load(path)
	s.Require().NoError(err)
	s.Equal(int64(9), f.Seed)

	cfg := f.BattleConfig()
	s.Equal(engine.FormatSingles, cfg.Format)
	s.Equal("zorua", cfg.Parties[1][0].Species)

	_, err = roster.Load(filepath.Join(dir, "missing.yaml"))
	s.True(errors.IsNotFound(err))
}
