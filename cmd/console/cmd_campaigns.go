// cmd/console/cmd_campaigns.go
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/unclebandit/smsleopard-console/internal/backend"
	appErrors "github.com/unclebandit/smsleopard-console/internal/errors"
	"github.com/unclebandit/smsleopard-console/internal/lifecycle"
	"github.com/unclebandit/smsleopard-console/internal/listing"
	"github.com/unclebandit/smsleopard-console/internal/model"
	"github.com/unclebandit/smsleopard-console/internal/service"
)

var campaignsCmd = &cobra.Command{
	Use:   "campaigns",
	Short: "Inspect and manage campaigns",
}

var (
	listPageFlag    int
	listStatusFlag  string
	listChannelFlag string
	listSearchFlag  string
)

var campaignsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaigns with filters, search and pagination",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		engine := listing.NewEngine(newClient(), cfg.PageSize, log)
		engine.SetStatusFilter(listStatusFlag)
		engine.SetChannelFilter(listChannelFlag)
		engine.SetSearch(listSearchFlag)

		if err := engine.Load(ctx); err != nil {
			return err
		}
		if listPageFlag > 1 {
			engine.SetPage(listPageFlag)
			if engine.Query().Page != 1 {
				if err := engine.Load(ctx); err != nil {
					return err
				}
			}
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCHANNEL\tSTATUS\tMESSAGES\tDELIVERY")
		for _, c := range engine.Rows() {
			m := lifecycle.Derive(&c)
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d/%d\t%d%%\n",
				c.ID, c.Name, c.Channel, c.Status,
				c.SentMessages, c.TotalMessages, m.DeliveryRate)
		}
		w.Flush()

		q := engine.Query()
		fmt.Printf("\npage %d/%d, %d campaigns total\n", q.Page, engine.TotalPages(), engine.Total())
		return nil
	},
}

var campaignsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one campaign with its delivery metrics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid campaign id %q", args[0])
		}

		campaign, err := newService().Get(cmd.Context(), id)
		if err != nil {
			if appErrors.IsNotFound(err) {
				return fmt.Errorf("campaign %d not found", id)
			}
			return err
		}
		printCampaign(campaign)
		return nil
	},
}

var (
	createNameFlag     string
	createTemplateFlag string
	createChannelFlag  string
	createScheduleFlag string
)

var campaignsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a campaign (status is assigned by the backend)",
	RunE: func(cmd *cobra.Command, args []string) error {
		campaign, err := newService().Create(cmd.Context(), service.CreateInput{
			Name:        createNameFlag,
			Template:    createTemplateFlag,
			Channel:     model.Channel(createChannelFlag),
			ScheduledAt: createScheduleFlag,
		})
		if err != nil {
			return err
		}
		fmt.Printf("created campaign %d with status %s\n", campaign.ID, campaign.Status)
		return nil
	},
}

var sendCustomersFlag string

var campaignsSendCmd = &cobra.Command{
	Use:   "send <id>",
	Short: "Dispatch a campaign to a comma-separated list of customer ids",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid campaign id %q", args[0])
		}
		ids, err := parseIDList(sendCustomersFlag)
		if err != nil {
			return err
		}

		result, refreshed, err := newService().Dispatch(cmd.Context(), id, ids)
		if err != nil {
			if rejected, ok := appErrors.AsBackendRejected(err); ok {
				return fmt.Errorf("backend rejected the dispatch: %s", rejected.Error())
			}
			return err
		}

		fmt.Printf("%d messages queued\n\n", result.QueuedCount)
		printCampaign(refreshed)
		return nil
	},
}

var (
	previewCustomerFlag int
	previewTemplateFlag string
)

var previewCmd = &cobra.Command{
	Use:   "preview <campaign-id>",
	Short: "Render the personalized message for one customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid campaign id %q", args[0])
		}
		var override *string
		if previewTemplateFlag != "" {
			override = &previewTemplateFlag
		}
		rendered, err := newService().Preview(cmd.Context(), id, previewCustomerFlag, override)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	},
}

func printCampaign(c *model.Campaign) {
	m := lifecycle.Derive(c)
	fmt.Printf("#%d %s [%s] %s\n", c.ID, c.Name, c.Channel, c.Status)
	fmt.Printf("template: %s\n", c.Template)
	if c.ScheduledAt != nil {
		fmt.Printf("scheduled: %s\n", c.ScheduledAt.Local())
	}
	fmt.Printf("progress %d%% (%d/%d, %d pending), delivered %d%%, failed %d%%\n",
		m.Progress, c.SentMessages, c.TotalMessages, m.Pending, m.DeliveryRate, m.FailureRate)
}

func parseIDList(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("--customers is required, e.g. --customers 1,2,3")
	}
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid customer id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func init() {
	campaignsListCmd.Flags().IntVar(&listPageFlag, "page", 1, "page number")
	campaignsListCmd.Flags().StringVar(&listStatusFlag, "status", backend.FilterAll, "status filter")
	campaignsListCmd.Flags().StringVar(&listChannelFlag, "channel", backend.FilterAll, "channel filter")
	campaignsListCmd.Flags().StringVar(&listSearchFlag, "search", "", "search name and template")

	campaignsCreateCmd.Flags().StringVar(&createNameFlag, "name", "", "campaign name")
	campaignsCreateCmd.Flags().StringVar(&createTemplateFlag, "template", "", "message template, e.g. \"Hi {first_name}\"")
	campaignsCreateCmd.Flags().StringVar(&createChannelFlag, "channel", "", "whatsapp or sms")
	campaignsCreateCmd.Flags().StringVar(&createScheduleFlag, "schedule", "", "local time YYYY-MM-DDTHH:MM")

	campaignsSendCmd.Flags().StringVar(&sendCustomersFlag, "customers", "", "comma-separated customer ids")

	previewCmd.Flags().IntVar(&previewCustomerFlag, "customer", 0, "customer id")
	previewCmd.Flags().StringVar(&previewTemplateFlag, "template", "", "override template")

	campaignsCmd.AddCommand(campaignsListCmd, campaignsShowCmd, campaignsCreateCmd, campaignsSendCmd)
	rootCmd.AddCommand(campaignsCmd, previewCmd)
}
