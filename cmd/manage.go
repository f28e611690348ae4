package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rentcare/rentcare-gobackend/internal/models"
)

// Owner commands against a running API. Each needs the token of an owner
// login.

func propertyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "property",
		Short: "Manage properties",
	}

	rename := &cobra.Command{
		Use:   "rename [propertyId]",
		Short: "Change a property's name and location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := authedClient(cmd)
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("name")
			location, _ := cmd.Flags().GetString("location")

			p, err := api.UpdateDetails(cmd.Context(), args[0], name, location)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Property %s is now %q in %q\n", p.ID, p.Name, p.Location)
			return nil
		},
	}
	rename.Flags().String("name", "", "property name")
	rename.Flags().String("location", "", "property location")
	rename.MarkFlagRequired("name")
	rename.MarkFlagRequired("location")

	cmd.AddCommand(rename)
	return cmd
}

func tenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage the tenants of a property",
	}

	add := &cobra.Command{
		Use:   "add [propertyId]",
		Short: "Add a tenant to a flat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := authedClient(cmd)
			if err != nil {
				return err
			}
			var t models.Tenant
			t.FlatNo, _ = cmd.Flags().GetString("flat")
			t.Name, _ = cmd.Flags().GetString("name")
			t.Username, _ = cmd.Flags().GetString("username")
			t.Email, _ = cmd.Flags().GetString("email")
			t.Password, _ = cmd.Flags().GetString("password")
			t.RentAmount, _ = cmd.Flags().GetFloat64("rent")

			added, err := api.AddTenant(cmd.Context(), args[0], t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tenant %s added to flat %s, rent %.2f\n", added.Name, added.FlatNo, added.RentAmount)
			return nil
		},
	}
	add.Flags().String("flat", "", "flat number")
	add.Flags().String("name", "", "tenant name")
	add.Flags().String("username", "", "login username")
	add.Flags().String("email", "", "email address")
	add.Flags().StringP("password", "p", "", "login password")
	add.Flags().Float64("rent", 0, "monthly rent")
	add.MarkFlagRequired("flat")

	remove := &cobra.Command{
		Use:   "remove [propertyId] [flatNo]",
		Short: "Remove the tenant of a flat",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := authedClient(cmd)
			if err != nil {
				return err
			}
			if err := api.RemoveTenant(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tenant of flat %s removed\n", args[1])
			return nil
		},
	}

	notify := &cobra.Command{
		Use:   "notify [propertyId] [flatNo] [message...]",
		Short: "Send a notification to a tenant",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := authedClient(cmd)
			if err != nil {
				return err
			}
			n, err := api.NotifyTenant(cmd.Context(), args[0], args[1], strings.Join(args[2:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Notification %s sent to flat %s\n", n.ID, args[1])
			return nil
		},
	}

	cmd.AddCommand(add, remove, notify)
	return cmd
}

func requestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Manage maintenance requests",
	}

	update := &cobra.Command{
		Use:   "update [propertyId] [requestId]",
		Short: "Set the status and remarks of a maintenance request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			if !models.ValidRequestStatus(status) {
				return fmt.Errorf("invalid status %q, want %s, %s or %s",
					status, models.RequestPending, models.RequestInProgress, models.RequestResolved)
			}
			api, err := authedClient(cmd)
			if err != nil {
				return err
			}
			remarks, _ := cmd.Flags().GetString("remarks")
			if err := api.UpdateMaintenanceRequest(cmd.Context(), args[0], args[1], status, remarks); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Request %s is now %s\n", args[1], status)
			return nil
		},
	}
	update.Flags().String("status", "", "Pending, In Progress or Resolved")
	update.Flags().String("remarks", "", "remarks for the tenant")
	update.MarkFlagRequired("status")

	cmd.AddCommand(update)
	return cmd
}
