package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alainbeyonder/aia-regenord/internal/classify"
	"github.com/alainbeyonder/aia-regenord/internal/cli"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Inspect the category rule set",
		Long:  `List the configured categories and try the classifier against individual account names.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(checkCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configured categories",
		Long:  `Display every category in matching-priority order, with its domain and keywords.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			set, err := loadRules()
			if err != nil {
				return err
			}

			fmt.Println(cli.TitleStyle.Render("Category rule set"))
			fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("fingerprint: %s", set.Fingerprint[:12])))

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprint(w, "KEY\tLABEL\tDOMAIN\tKEYWORDS\n")
			for _, cat := range set.Categories {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					cat.Key, cat.Label, cat.Domain, strings.Join(cat.Keywords, ", "))
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf(
				"fallbacks: revenue → %s, expense → %s",
				set.Fallbacks.Revenue, set.Fallbacks.Expense)))
			return nil
		},
	}
}

func checkCategoryCmd() *cobra.Command {
	var nativeType string

	cmd := &cobra.Command{
		Use:   "check <account name>",
		Short: "Classify a single account name",
		Long:  `Run the classifier on one account name and show the matched category, tier, and confidence.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			set, err := loadRules()
			if err != nil {
				return err
			}

			name := strings.Join(args, " ")
			result := classify.New(set.Categories, set.Fallbacks).Classify(name, nativeType, "")

			fmt.Printf("%s → %s\n",
				cli.BoldStyle.Render(name),
				cli.InfoStyle.Render(set.Label(result.CategoryKey)))
			detail := fmt.Sprintf("tier=%s confidence=%.1f", result.Tier, result.Confidence)
			if result.Keyword != "" {
				detail += fmt.Sprintf(" keyword=%q", result.Keyword)
			}
			fmt.Println(cli.SubtleStyle.Render(detail))
			return nil
		},
	}

	cmd.Flags().StringVar(&nativeType, "type", "", "native account type hint (e.g. Expense, Income)")
	return cmd
}
