package client

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/handlers/battle/v1alpha1"
	"github.com/KirkDiggler/rpg-battle/internal/orchestrators/encounter"
	"github.com/KirkDiggler/rpg-battle/internal/repositories/encounters"
	"github.com/KirkDiggler/rpg-battle/internal/roster"
)

var (
	dealWave       int
	dealRoster     string
	dealFainted    []string
	dealSingleType string

	dealEncounterID string
	dealOption      string
	dealSeed        int64
)

var darkDealCmd = &cobra.Command{
	Use:   "dark-deal",
	Short: "Offer and resolve Dark Deal encounters",
}

var darkDealOfferCmd = &cobra.Command{
	Use:   "offer",
	Short: "Offer a Dark Deal to a run",
	Long: `Offer a Dark Deal at a wave. The run's party is the first party of the
roster file, or the built-in demo roster when --roster is not set.`,
	RunE: runDarkDealOffer,
}

var darkDealResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Accept or refuse an offered Dark Deal",
	RunE:  runDarkDealResolve,
}

func init() {
	darkDealOfferCmd.Flags().IntVar(&dealWave, "wave", encounter.DarkDealMinWave, "current wave")
	darkDealOfferCmd.Flags().StringVar(&dealRoster, "roster", "", "roster YAML file holding the run's party")
	darkDealOfferCmd.Flags().StringSliceVar(&dealFainted, "fainted", nil, "IDs of fainted party members")
	darkDealOfferCmd.Flags().StringVar(&dealSingleType, "single-type", "", "type of an active single-type challenge")

	darkDealResolveCmd.Flags().StringVar(&dealEncounterID, "encounter-id", "", "Encounter ID (required)")
	darkDealResolveCmd.Flags().StringVar(&dealOption, "option", string(encounter.OptionAccept), "accept or refuse")
	darkDealResolveCmd.Flags().Int64Var(&dealSeed, "seed", 0, "seed for the boss battle, 0 picks one")
	_ = darkDealResolveCmd.MarkFlagRequired("encounter-id") // nolint:errcheck // safe to ignore in init

	darkDealCmd.AddCommand(darkDealOfferCmd)
	darkDealCmd.AddCommand(darkDealResolveCmd)
}

func runDarkDealOffer(_ *cobra.Command, _ []string) error {
	file := roster.Default()
	if dealRoster != "" {
		var err error
		file, err = roster.Load(dealRoster)
		if err != nil {
			return err
		}
	}

	party := make([]encounters.PartyMember, 0, len(file.Parties[0]))
	for _, m := range file.Parties[0] {
		party = append(party, encounters.PartyMember{
			Member:  m,
			Fainted: slices.Contains(dealFainted, m.ID),
		})
	}

	req := &v1alpha1.OfferDarkDealRequest{
		Wave:       dealWave,
		Party:      party,
		SingleType: content.Type(dealSingleType),
	}
	return call("offer dark deal", req, method(v1alpha1.BattleServiceClient.OfferDarkDeal))
}

func runDarkDealResolve(_ *cobra.Command, _ []string) error {
	req := &v1alpha1.ResolveDarkDealRequest{
		EncounterID: dealEncounterID,
		Option:      encounter.Option(dealOption),
		Seed:        dealSeed,
	}
	return call("resolve dark deal", req, method(v1alpha1.BattleServiceClient.ResolveDarkDeal))
}
