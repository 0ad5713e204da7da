package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage income and expense categories",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			return listCategories(cmd, a)
		}),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			return listCategories(cmd, a)
		}),
	}

	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			t, err := categoryType(cmd)
			if err != nil {
				return err
			}
			return a.mutate(cmd.Context(), func() error {
				cat, err := a.ledger.AddCategory(args[0], t)
				if err != nil {
					return err
				}
				a.success(fmt.Sprintf("Added %s category %s", cat.Type, cat.Name))
				return nil
			})
		}),
	}
	add.Flags().StringP("type", "t", string(model.CategoryTypeExpense), "income or expense")

	rename := &cobra.Command{
		Use:   "rename ID NAME",
		Short: "Rename a category and the transactions using it",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			return a.mutate(cmd.Context(), func() error {
				cat, ok := a.store.State().Category(args[0])
				if !ok {
					return common.NewUserError("Category not found: "+args[0], common.ErrNotFound)
				}
				cat.Name = args[1]
				if err := a.ledger.UpdateCategory(cat); err != nil {
					return err
				}
				a.success("Renamed category to " + args[1])
				return nil
			})
		}),
	}

	del := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a category, moving its transactions to the fallback category",
		Args:    cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			return a.mutate(cmd.Context(), func() error {
				cat, ok := a.store.State().Category(args[0])
				if !ok {
					return common.NewUserError("Category not found: "+args[0], common.ErrNotFound)
				}
				if err := a.ledger.DeleteCategory(args[0]); err != nil {
					return err
				}
				a.success(fmt.Sprintf("Deleted %s, its transactions now use %s", cat.Name, model.FallbackCategory(cat.Type)))
				return nil
			})
		}),
	}

	cmd.AddCommand(list, add, rename, del)
	return cmd
}

func categoryType(cmd *cobra.Command) (model.CategoryType, error) {
	s, _ := cmd.Flags().GetString("type")
	t := model.CategoryType(s)
	if !t.Valid() {
		return "", common.NewUserError(fmt.Sprintf("Invalid category type %q, use income or expense", s), common.ErrInvalidInput)
	}
	return t, nil
}

func listCategories(cmd *cobra.Command, a *app) error {
	st, err := a.view(cmd.Context())
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(st.Categories))
	for _, t := range []model.CategoryType{model.CategoryTypeIncome, model.CategoryTypeExpense} {
		for _, cat := range st.Categories {
			if cat.Type != t {
				continue
			}
			rows = append(rows, []string{cat.ID, cat.Name, string(cat.Type), yesNo(cat.IsDefault)})
		}
	}
	a.println(cli.RenderTable([]string{"ID", "Name", "Type", "Default"}, rows))
	return nil
}
