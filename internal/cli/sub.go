package cli

import (
	"fmt"

	"github.com/pfrederiksen/subwatch/internal/subscription"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/guregu/null.v3"
)

var (
	flagMaxPrice float64
	flagSort     string
)

func newSubCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sub",
		Short: "Inspect and edit subscriptions in the state file",
	}

	addCmd := &cobra.Command{
		Use:   "add <user> <category>",
		Short: "Subscribe a user to a category",
		Args:  cobra.ExactArgs(2),
		RunE:  runSubAdd,
	}
	addCmd.Flags().Float64Var(&flagMaxPrice, "max-price", 0, "Only notify at or below this price")

	rmCmd := &cobra.Command{
		Use:   "rm <user> <category>",
		Short: "Unsubscribe a user from a category",
		Args:  cobra.ExactArgs(2),
		RunE:  runSubRemove,
	}

	clearCmd := &cobra.Command{
		Use:   "clear <user>",
		Short: "Remove all of a user's subscriptions",
		Args:  cobra.ExactArgs(1),
		RunE:  runSubClear,
	}

	listCmd := &cobra.Command{
		Use:   "list <user>",
		Short: "Show a user's status for every category",
		Args:  cobra.ExactArgs(1),
		RunE:  runSubList,
	}
	addFormatFlag(listCmd)

	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "List users with subscriptions",
		Args:  cobra.NoArgs,
		RunE:  runSubUsers,
	}
	addFormatFlag(usersCmd)
	usersCmd.Flags().StringVar(&flagSort, "sort", string(SortByUser), "Sort order: user or count")

	cmd.AddCommand(addCmd, rmCmd, clearCmd, listCmd, usersCmd)
	return cmd
}

func runSubAdd(cmd *cobra.Command, args []string) error {
	maxPrice := null.Float{}
	if cmd.Flags().Changed("max-price") {
		maxPrice = null.FloatFrom(flagMaxPrice)
		if err := subscription.ValidatePrice(maxPrice); err != nil {
			return errors.Wrap(err, "--max-price")
		}
	}

	registry, err := openFromFlags(cmd)
	if err != nil {
		return err
	}

	userID, category := args[0], args[1]
	if err := registry.Add(userID, category, maxPrice); err != nil {
		return errors.Wrapf(err, "subscribing %s to %s", userID, category)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Subscribed %s to %s\n", userID, category)
	return nil
}

func runSubRemove(cmd *cobra.Command, args []string) error {
	registry, err := openFromFlags(cmd)
	if err != nil {
		return err
	}

	userID, category := args[0], args[1]
	if err := registry.Remove(userID, category); err != nil {
		return errors.Wrapf(err, "unsubscribing %s from %s", userID, category)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Unsubscribed %s from %s\n", userID, category)
	return nil
}

func runSubClear(cmd *cobra.Command, args []string) error {
	registry, err := openFromFlags(cmd)
	if err != nil {
		return err
	}

	userID := args[0]
	if err := registry.Clear(userID); err != nil {
		return errors.Wrapf(err, "clearing %s", userID)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared subscriptions for %s\n", userID)
	return nil
}

func runSubList(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	registry, err := openFromFlags(cmd)
	if err != nil {
		return err
	}

	userID := args[0]
	sub, _ := registry.Get(userID)
	result := newSubListResult(userID, registry.List(userID), sub)
	return WriteSubList(cmd.OutOrStdout(), result, format)
}

func runSubUsers(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	order, err := parseSortOrder(flagSort)
	if err != nil {
		return err
	}
	registry, err := openFromFlags(cmd)
	if err != nil {
		return err
	}

	snapshot := registry.Snapshot()
	rows := make([]UserRow, 0, len(snapshot))
	for userID, sub := range snapshot {
		rows = append(rows, UserRow{UserID: userID, Categories: sub.Categories()})
	}
	sortUsers(rows, order)
	return WriteUsers(cmd.OutOrStdout(), rows, format)
}

func openFromFlags(cmd *cobra.Command) (*subscription.Registry, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openRegistry(cfg)
}
