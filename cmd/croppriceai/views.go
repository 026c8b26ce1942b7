package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/croppriceai/internal/cascade"
	"github.com/hyperengineering/croppriceai/internal/form"
	"github.com/hyperengineering/croppriceai/internal/pages"
	"github.com/hyperengineering/croppriceai/pkg/geo"
)

var (
	setValues []string
	noWeather bool
	geoState  string
	geoDist   string
	wxState   string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict a crop price (dashboard)",
	Long: "Predict the market price of a crop. Fields are set with --set name=value; " +
		"weather is looked up for the region when any reading is missing.",
	Args: cobra.NoArgs,
	RunE: withApp("predict", runPredict),
}

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show historical price analytics",
	Args:  cobra.NoArgs,
	RunE:  withApp("analytics", runAnalytics),
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend crops",
}

var recommendRankedCmd = &cobra.Command{
	Use:   "ranked",
	Short: "Rank crops by predicted price for a soil and season",
	Args:  cobra.NoArgs,
	RunE:  withApp("recommend", runRecommendRanked),
}

var recommendSoilCmd = &cobra.Command{
	Use:   "soil",
	Short: "Find the best crop for soil nutrients",
	Args:  cobra.NoArgs,
	RunE:  withApp("recommend", suitabilityRunner(pages.SoilMode)),
}

var recommendGeoCmd = &cobra.Command{
	Use:   "geo",
	Short: "Find the best crop for a state and district",
	Args:  cobra.NoArgs,
	RunE:  withApp("recommend", suitabilityRunner(pages.GeoMode)),
}

var recommendCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether a crop suits the soil",
	Args:  cobra.NoArgs,
	RunE:  withApp("recommend", suitabilityRunner(pages.CheckMode)),
}

var pestCmd = &cobra.Command{
	Use:   "pest",
	Short: "Forecast pest risk for the next 7 days",
	Args:  cobra.NoArgs,
	RunE:  withApp("pest", runPest),
}

var weatherCmd = &cobra.Command{
	Use:   "weather <district>",
	Short: "Look up current weather for a district",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp("", runWeather),
}

var geoCmd = &cobra.Command{
	Use:   "geo",
	Short: "List states and districts",
}

var geoStatesCmd = &cobra.Command{
	Use:   "states",
	Short: "List the states of the configured country",
	Args:  cobra.NoArgs,
	RunE:  withApp("", runGeoStates),
}

var geoDistrictsCmd = &cobra.Command{
	Use:   "districts <state>",
	Short: "List the districts of a state",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp("", runGeoDistricts),
}

func init() {
	for _, c := range []*cobra.Command{predictCmd, recommendRankedCmd, recommendSoilCmd, recommendGeoCmd, recommendCheckCmd, pestCmd} {
		c.Flags().StringArrayVarP(&setValues, "set", "s", nil, "Set a field (name=value, repeatable)")
		c.Flags().BoolVar(&noWeather, "no-weather", false, "Never look up weather")
	}
	recommendGeoCmd.Flags().StringVar(&geoState, "state", "", "State (lists states when omitted)")
	recommendGeoCmd.Flags().StringVar(&geoDist, "district", "", "District (lists districts when omitted)")
	weatherCmd.Flags().StringVar(&wxState, "state", "", "State of the district")

	recommendCmd.AddCommand(recommendRankedCmd, recommendSoilCmd, recommendGeoCmd, recommendCheckCmd)
	geoCmd.AddCommand(geoStatesCmd, geoDistrictsCmd)
}

func missingWeather(f *form.Form) bool {
	for _, name := range []string{"temperature", "humidity", "rainfall"} {
		if strings.TrimSpace(f.Get(name)) == "" {
			return true
		}
	}
	return false
}

// maybeFetchWeather runs fetch when a reading is missing. A failed lookup is
// only a notice; submission validation reports what is still missing.
func (a *app) maybeFetchWeather(cmd *cobra.Command, f *form.Form, fetch func(context.Context) error, notice func() string) {
	if noWeather || !missingWeather(f) {
		return
	}
	if err := fetch(cmd.Context()); err != nil {
		a.notice(cmd, notice())
	}
}

func runPredict(cmd *cobra.Command, _ []string, a *app) error {
	d := pages.NewDashboard(a.client)
	if err := applySets(d, setValues); err != nil {
		return err
	}
	a.maybeFetchWeather(cmd, d.Form(), d.FetchWeather, func() string { return d.Snapshot().Notice })

	res, err := d.Submit(cmd.Context())
	if err != nil {
		return a.report(cmd, err, d.FailureMessage())
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.out.Price(res))
	return nil
}

func runAnalytics(cmd *cobra.Command, _ []string, a *app) error {
	p := pages.NewAnalytics(a.client)
	res, err := p.Load(cmd.Context())
	if err != nil {
		return a.report(cmd, err, p.FailureMessage())
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.out.Analytics(res))
	return nil
}

func runRecommendRanked(cmd *cobra.Command, _ []string, a *app) error {
	p := pages.NewRanked(a.client)
	if err := applySets(p, setValues); err != nil {
		return err
	}
	a.maybeFetchWeather(cmd, p.Form(), p.FetchWeather, func() string { return p.Snapshot().Notice })

	res, err := p.Submit(cmd.Context())
	if err != nil {
		return a.report(cmd, err, p.FailureMessage())
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.out.Recommendations(res))
	return nil
}

func (a *app) geoClient() *geo.Client {
	return geo.New(a.cfg.Geography.BaseURL, a.cfg.Geography.Country, &http.Client{
		Timeout: time.Duration(a.cfg.Backend.Timeout),
	})
}

func suitabilityRunner(mode pages.SuitabilityMode) func(*cobra.Command, []string, *app) error {
	return func(cmd *cobra.Command, _ []string, a *app) error {
		var sel *cascade.Select
		if mode == pages.GeoMode {
			sel = cascade.New(a.geoClient())
		}
		p := pages.NewSuitability(a.client, mode, sel)
		if err := applySets(p, setValues); err != nil {
			return err
		}

		if mode == pages.GeoMode {
			if done, err := a.chooseLocation(cmd, p); done || err != nil {
				return err
			}
		}
		a.maybeFetchWeather(cmd, p.Form(), p.FetchWeather, func() string { return p.Snapshot().Notice })

		res, err := p.Submit(cmd.Context())
		if err != nil {
			return a.report(cmd, err, p.FailureMessage())
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.out.Suitability(*res))
		return nil
	}
}

// chooseLocation walks the state/district cascade. When a choice is missing
// it prints the options and reports done.
func (a *app) chooseLocation(cmd *cobra.Command, p *pages.Suitability) (done bool, err error) {
	states, err := p.LoadStates(cmd.Context())
	switch {
	case errors.Is(err, geo.ErrEmpty):
		fmt.Fprintln(cmd.OutOrStdout(), a.out.Placeholder("No states found."))
		return true, nil
	case err != nil:
		return true, a.report(cmd, err, "Failed to load states")
	}
	if geoState == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Choose a state with --state:")
		printList(cmd, states)
		return true, nil
	}

	districts, err := p.SelectState(cmd.Context(), geoState)
	switch {
	case errors.Is(err, cascade.ErrUnknownState):
		fmt.Fprintln(cmd.ErrOrStderr(), a.errOut.Failure(fmt.Sprintf("Unknown state %q", geoState)))
		return true, errReported
	case errors.Is(err, geo.ErrEmpty):
		fmt.Fprintln(cmd.OutOrStdout(), a.out.Placeholder(fmt.Sprintf("No districts found for %s.", geoState)))
		return true, nil
	case err != nil:
		return true, a.report(cmd, err, "Failed to load districts")
	}
	if geoDist == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Choose a district of %s with --district:\n", geoState)
		printList(cmd, districts)
		return true, nil
	}

	if err := p.SelectDistrict(geoDist); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), a.errOut.Failure(fmt.Sprintf("Unknown district %q in %s", geoDist, geoState)))
		return true, errReported
	}
	return false, nil
}

func printList(cmd *cobra.Command, items []string) {
	for _, it := range items {
		fmt.Fprintln(cmd.OutOrStdout(), "  "+it)
	}
}

func runPest(cmd *cobra.Command, _ []string, a *app) error {
	p := pages.NewPest(a.client)
	if err := applySets(p, setValues); err != nil {
		return err
	}
	a.maybeFetchWeather(cmd, p.Form(), p.FetchWeather, func() string { return p.Snapshot().Notice })

	res, err := p.Submit(cmd.Context())
	if err != nil {
		return a.report(cmd, err, p.FailureMessage())
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.out.Pest(res))
	return nil
}

func runWeather(cmd *cobra.Command, args []string, a *app) error {
	w, err := a.client.FetchWeather(cmd.Context(), args[0], wxState)
	if err != nil {
		return a.report(cmd, err, "Failed to fetch weather")
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.out.Weather(w))
	return nil
}

func runGeoStates(cmd *cobra.Command, _ []string, a *app) error {
	states, err := a.geoClient().States(cmd.Context())
	switch {
	case errors.Is(err, geo.ErrEmpty):
		fmt.Fprintln(cmd.OutOrStdout(), a.out.Placeholder("No states found."))
		return nil
	case err != nil:
		return a.report(cmd, err, "Failed to load states")
	}
	printList(cmd, states)
	return nil
}

func runGeoDistricts(cmd *cobra.Command, args []string, a *app) error {
	districts, err := a.geoClient().Districts(cmd.Context(), args[0])
	switch {
	case errors.Is(err, geo.ErrEmpty):
		fmt.Fprintln(cmd.OutOrStdout(), a.out.Placeholder(fmt.Sprintf("No districts found for %s.", args[0])))
		return nil
	case err != nil:
		return a.report(cmd, err, "Failed to load districts")
	}
	printList(cmd, districts)
	return nil
}
