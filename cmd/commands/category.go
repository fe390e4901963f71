package commands

import (
	"fmt"

	"rukami/internal/database"
	"rukami/internal/repositories"
	"rukami/internal/services"

	"github.com/spf13/cobra"
)

var (
	// Category flags
	categoryName        string
	categorySlug        string
	categoryDescription string
	categoryImage       string
	categorySortOrder   int
)

// categoryCmd groups catalog administration
var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage catalog categories",
	Long: `Manage catalog categories.

Subcommands:
  add      - Create a category
  disable  - Hide a category and its products from the catalog
  enable   - Show a disabled category again`,
}

var categoryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a category",
	Long: `Create a category.

Examples:
  rukami category add --name "Керамика" --slug ceramics --sort 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeDB, err := categoryService()
		if err != nil {
			return err
		}
		defer closeDB()

		category, err := svc.Create(cmd.Context(), services.CategoryInput{
			Name:        categoryName,
			Slug:        categorySlug,
			Description: categoryDescription,
			ImageURL:    categoryImage,
			SortOrder:   categorySortOrder,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created category %d (%s)\n", category.ID, category.Slug)
		return nil
	},
}

func setActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " SLUG",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := categoryService()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := svc.SetActive(cmd.Context(), args[0], active); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Category %s %sd\n", args[0], use)
			return nil
		},
	}
}

func categoryService() (*services.CategoryService, func(), error) {
	db, err := openDatabase()
	if err != nil {
		return nil, nil, err
	}
	svc := services.NewCategoryService(repositories.NewGORMCategoryRepository(db))
	return svc, func() { database.Close(db) }, nil
}

func init() {
	categoryAddCmd.Flags().StringVar(&categoryName, "name", "", "Category name (required)")
	categoryAddCmd.Flags().StringVar(&categorySlug, "slug", "", "URL slug, lowercase letters, digits and dashes (required)")
	categoryAddCmd.Flags().StringVar(&categoryDescription, "description", "", "Description")
	categoryAddCmd.Flags().StringVar(&categoryImage, "image", "", "Image URL")
	categoryAddCmd.Flags().IntVar(&categorySortOrder, "sort", 0, "Sort order in the catalog")
	_ = categoryAddCmd.MarkFlagRequired("name")
	_ = categoryAddCmd.MarkFlagRequired("slug")

	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(setActiveCmd("disable", "Hide a category from the catalog", false))
	categoryCmd.AddCommand(setActiveCmd("enable", "Show a disabled category again", true))
	rootCmd.AddCommand(categoryCmd)
}
