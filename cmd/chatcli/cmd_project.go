package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Rrens/chat-client/internal/domain"
)

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectListCmd, projectShowCmd, projectCreateCmd, projectUpdateCmd,
		projectDeleteCmd, projectUploadCmd, projectRemoveFileCmd)

	projectCreateCmd.Flags().StringP("description", "d", "", "project description")

	projectUpdateCmd.Flags().StringP("title", "t", "", "new title")
	projectUpdateCmd.Flags().StringP("description", "d", "", "new description")
	projectUpdateCmd.Flags().String("instructions", "", "new instructions")
}

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects"},
	Short:   "Manage projects and their files",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.requireSession(cmd.Context()); err != nil {
			return err
		}

		projects := app.stores.Projects.FetchProjects(cmd.Context())
		if len(projects) == 0 {
			fmt.Println("No projects found.")
			return nil
		}

		w := newTable(os.Stdout)
		fmt.Fprintln(w, "ID\tTITLE\tDESCRIPTION\tUPDATED")
		for _, p := range projects {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Title, deref(p.Description), formatTime(p.UpdatedAt))
		}
		return w.Flush()
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a project with its files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := app.requireSession(ctx); err != nil {
			return err
		}

		p, err := app.stores.Projects.FetchProject(ctx, domain.ID(args[0]))
		if err != nil {
			return fmt.Errorf("load project: %w", err)
		}

		fmt.Printf("%s  ", p.Title)
		dimColor.Println(p.ID)
		if p.Description != nil {
			fmt.Println(*p.Description)
		}
		if p.Instructions != nil {
			systemColor.Println("Instructions:")
			fmt.Println(*p.Instructions)
		}
		fmt.Println()

		if len(p.Files) == 0 {
			dimColor.Println("No files.")
			return nil
		}
		w := newTable(os.Stdout)
		fmt.Fprintln(w, "FILE ID\tNAME\tTYPE\tSIZE")
		for _, f := range p.Files {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.ID, f.Filename, f.FileType, formatSize(f.FileSize))
		}
		return w.Flush()
	},
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := app.requireSession(ctx); err != nil {
			return err
		}

		desc, _ := cmd.Flags().GetString("description")
		p, err := app.stores.Projects.CreateProject(ctx, args[0], strPtr(desc))
		if err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		okColor.Printf("Created project %s\n", p.ID)
		return nil
	},
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a project's title, description or instructions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := app.requireSession(ctx); err != nil {
			return err
		}

		var update domain.ProjectUpdate
		flags := cmd.Flags()
		if flags.Changed("title") {
			v, _ := flags.GetString("title")
			update.Title = &v
		}
		if flags.Changed("description") {
			v, _ := flags.GetString("description")
			update.Description = &v
		}
		if flags.Changed("instructions") {
			v, _ := flags.GetString("instructions")
			update.Instructions = &v
		}
		if update == (domain.ProjectUpdate{}) {
			return fmt.Errorf("nothing to update, pass --title, --description or --instructions")
		}

		if _, err := app.stores.Projects.UpdateProject(ctx, domain.ID(args[0]), update); err != nil {
			return fmt.Errorf("update project: %w", err)
		}
		fmt.Println("Project updated.")
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := app.requireSession(ctx); err != nil {
			return err
		}

		if err := app.stores.Projects.DeleteProject(ctx, domain.ID(args[0])); err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		fmt.Println("Project deleted.")
		return nil
	},
}

var projectUploadCmd = &cobra.Command{
	Use:   "upload <project-id> <file>",
	Short: "Attach a file to a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := app.requireSession(ctx); err != nil {
			return err
		}

		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()

		pf, err := app.stores.Projects.UploadFile(ctx, domain.ID(args[0]), filepath.Base(args[1]), f)
		if err != nil {
			return fmt.Errorf("upload file: %w", err)
		}
		okColor.Printf("Attached %s as %s\n", pf.Filename, pf.ID)
		return nil
	},
}

var projectRemoveFileCmd = &cobra.Command{
	Use:   "rm-file <project-id> <file-id>",
	Short: "Remove a file from a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := app.requireSession(ctx); err != nil {
			return err
		}

		if err := app.stores.Projects.DeleteFile(ctx, domain.ID(args[0]), domain.ID(args[1])); err != nil {
			return fmt.Errorf("remove file: %w", err)
		}
		fmt.Println("File removed.")
		return nil
	},
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
