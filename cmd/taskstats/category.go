package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// categoryCmd implements the 'taskstats category' command group.
func categoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage task categories",
	}

	cmd.AddCommand(
		categoryAddCmd(),
		categoryListCmd(),
		categoryRmCmd(),
	)

	return cmd
}

// categoryAddCmd implements 'taskstats category add'.
func categoryAddCmd() *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}

			c, err := store.CreateCategory(args[0], color)
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatCategory(c))
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "Display color (e.g. #7D56F4)")
	return cmd
}

// categoryListCmd implements 'taskstats category list'.
func categoryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Run: func(_ *cobra.Command, _ []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}

			categories, err := store.ListCategories()
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatCategoryList(categories))
		},
	}
}

// categoryRmCmd implements 'taskstats category rm'.
func categoryRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id-or-name>",
		Short: "Remove a category",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}
			if err = store.DeleteCategory(args[0]); err != nil {
				printError(err)
			}
			printOutput(formatter.FormatMessage(fmt.Sprintf("Removed category %s", args[0])))
		},
	}
}
