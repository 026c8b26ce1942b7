package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/croppriceai/internal/alerts"
	"github.com/hyperengineering/croppriceai/pkg/agriapi"
)

var (
	alertCrop      string
	alertPrice     string
	alertCondition string
	alertContact   string
	deleteYes      bool
)

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Show the live market ticker",
	Args:  cobra.NoArgs,
	RunE:  withApp("alerts", runMarket),
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List price alerts",
	Args:  cobra.NoArgs,
	RunE:  withApp("alerts", runAlertsList),
}

var alertsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a price alert",
	Args:  cobra.NoArgs,
	RunE:  withApp("alerts", runAlertsCreate),
}

var alertsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a price alert",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp("alerts", runAlertsDelete),
}

func init() {
	f := alertsCreateCmd.Flags()
	f.StringVar(&alertCrop, "crop", "Wheat", "Crop to watch")
	f.StringVar(&alertPrice, "target-price", "", "Target price in rupees")
	f.StringVar(&alertCondition, "condition", agriapi.ConditionAbove,
		"Trigger when the price is "+strings.Join(alerts.Conditions, " or ")+" the target")
	f.StringVar(&alertContact, "contact", "", "Phone number or email to notify")

	alertsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Delete without asking")

	alertsCmd.AddCommand(alertsCreateCmd, alertsDeleteCmd)
}

func runMarket(cmd *cobra.Command, _ []string, a *app) error {
	tiles, err := alerts.NewMonitor(a.client).MarketStatus(cmd.Context())
	if err != nil {
		// The ticker stays empty rather than failing the command.
		fmt.Fprintln(cmd.ErrOrStderr(), a.errOut.Notice("Market data unavailable."))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.out.Market(tiles))
	return nil
}

func runAlertsList(cmd *cobra.Command, _ []string, a *app) error {
	list, err := alerts.NewMonitor(a.client).Refresh(cmd.Context())
	if err != nil {
		return a.report(cmd, err, "Failed to load alerts")
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.out.Alerts(list))
	return nil
}

func runAlertsCreate(cmd *cobra.Command, _ []string, a *app) error {
	m := alerts.NewMonitor(a.client)
	created, err := m.Create(cmd.Context(), map[string]string{
		"crop":         alertCrop,
		"target_price": alertPrice,
		"condition":    alertCondition,
		"contact":      alertContact,
	})
	if created == nil {
		return a.report(cmd, err, "Failed to create alert")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (#%d)\n", created.Message, created.ID)
	if err != nil {
		a.notice(cmd, "Alert list could not be refreshed.")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.out.Alerts(m.Alerts()))
	return nil
}

func runAlertsDelete(cmd *cobra.Command, args []string, a *app) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid alert id %q", args[0])
	}

	m := alerts.NewMonitor(a.client)
	if _, err := m.Refresh(cmd.Context()); err != nil {
		return a.report(cmd, err, "Failed to load alerts")
	}

	p := newPrompter(cmd)
	confirm := func(al agriapi.Alert) bool {
		if deleteYes {
			return true
		}
		label := fmt.Sprintf("Delete alert #%d", al.ID)
		if al.Crop != "" {
			label += fmt.Sprintf(" (%s %s %s)", al.Crop, al.Condition, a.out.Rupees(al.TargetPrice))
		}
		answer, err := p.line(label + "? [y/N] ")
		if err != nil {
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}

	err = m.Delete(cmd.Context(), id, confirm)
	var apiErr *agriapi.APIError
	switch {
	case errors.Is(err, alerts.ErrNotConfirmed):
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return nil
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound:
		fmt.Fprintln(cmd.ErrOrStderr(), a.errOut.Failure(fmt.Sprintf("Alert #%d not found", id)))
		return errReported
	case err != nil:
		return a.report(cmd, err, "Failed to delete alert")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Alert #%d deleted.\n", id)
	fmt.Fprintln(cmd.OutOrStdout(), a.out.Alerts(m.Alerts()))
	return nil
}
