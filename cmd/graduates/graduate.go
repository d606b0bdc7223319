package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/graduates/internal/application"
	"github.com/ericfisherdev/graduates/internal/domain/model"
)

func newGraduateCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graduate",
		Short: "Manage graduate records",
	}

	cmd.AddCommand(newGraduateAddCmd(st))
	cmd.AddCommand(newGraduateListCmd(st))

	return cmd
}

func newGraduateAddCmd(st *cliState) *cobra.Command {
	var (
		in     application.GraduateInput
		status string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a graduate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Status = model.PostStatus(status)
			return withApp(cmd, st, func(ctx context.Context, a *app) error {
				g, err := a.graduates.Save(ctx, in)
				if err != nil {
					return err
				}
				printf(cmd, "%d\t%s\n", g.ID, g.Title)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&in.Content, "content", "", "Description (Markdown)")
	cmd.Flags().StringVar(&in.Excerpt, "excerpt", "", "Manual excerpt")
	cmd.Flags().StringVar(&status, "status", string(model.PostStatusPublish), "publish, draft or private")
	cmd.Flags().Int64Var(&in.FeaturedMediaID, "featured-media", 0, "Photo media ID")

	return cmd
}

func newGraduateListCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all graduates, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, st, func(ctx context.Context, a *app) error {
				graduates, err := a.graduates.ListForAdmin(ctx)
				if err != nil {
					return err
				}
				for _, g := range graduates {
					printf(cmd, "%d\t%s\t%s\n", g.ID, g.Status, g.Title)
				}
				return nil
			})
		},
	}
}
