package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/metastore-labs/metasync/internal/recipes"
)

var recipesDir string

// recipesCmd represents the recipes command group.
var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Manage ingestion recipe files",
}

var recipesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recipe files in the recipes directory",
	RunE:  runRecipesList,
}

var recipesValidateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Validate recipe files",
	Long: `Validate parses each recipe file and checks the fields every ingestion
executor requires. With no arguments, every recipe in the recipes
directory is validated.`,
	RunE: runRecipesValidate,
}

func init() {
	rootCmd.AddCommand(recipesCmd)
	recipesCmd.AddCommand(recipesListCmd, recipesValidateCmd)
	recipesCmd.PersistentFlags().StringVar(&recipesDir, "dir", "recipes", "Recipes directory")
}

func runRecipesList(_ *cobra.Command, _ []string) error {
	paths, err := recipes.List(recipesDir)
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Println(path)
	}
	return nil
}

func runRecipesValidate(_ *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		var err error
		paths, err = recipes.List(recipesDir)
		if err != nil {
			return err
		}
	}

	failed := 0
	for _, path := range paths {
		recipe, err := recipes.Read(path)
		if err != nil {
			failed++
			fmt.Printf("  %s: %v\n", filepath.Base(path), err)
			continue
		}
		name := recipe.PipelineName
		if name == "" {
			name = recipe.Source.Type
		}
		fmt.Printf("  %s: ok (%s)\n", filepath.Base(path), name)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d recipes invalid", failed, len(paths))
	}
	fmt.Printf("%d recipes valid\n", len(paths))
	return nil
}
