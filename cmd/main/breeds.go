package main

import (
	"fmt"
	"text/tabwriter"

	"petmarket/catalog/internal/container"
	"petmarket/catalog/internal/domain"

	"github.com/spf13/cobra"
)

var breedsCmd = &cobra.Command{
	Use:   "breeds",
	Short: "Look breeds up through the catalog API",
	Long: `Loads the breed directory from the catalog API and prints the breeds
matching the filters. Without filters every breed is printed.`,
	RunE: runBreeds,
}

func init() {
	breedsCmd.Flags().String("category", "", "only breeds of this category code")
	breedsCmd.Flags().StringP("query", "q", "", "case-insensitive substring of the breed name")
	breedsCmd.Flags().Bool("categories", false, "print the category list instead of breeds")
}

func runBreeds(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")
	query, _ := cmd.Flags().GetString("query")
	listCategories, _ := cmd.Flags().GetBool("categories")

	dir, catalogClient := container.NewDirectory(cfg.Catalog)
	defer catalogClient.Close()

	if err := dir.Init(cmd.Context()); err != nil {
		return fmt.Errorf("failed to load breed directory: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer w.Flush()

	if listCategories {
		fmt.Fprintln(w, "CODE\tCATEGORY")
		for _, c := range dir.Categories() {
			fmt.Fprintf(w, "%s\t%s\n", c.Code, c.DisplayName)
		}
		return nil
	}

	fmt.Fprintln(w, "CODE\tBREED\tCATEGORY")
	for _, b := range dir.FindBreedByName(domain.BreedFilter{CategoryCode: category, Subtext: query}) {
		fmt.Fprintf(w, "%s\t%s\t%s\n", b.Code, b.DisplayName, b.CategoryDisplayName)
	}
	return nil
}
