package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rrens/chat-client/internal/domain"
)

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.AddCommand(docsListCmd, docsUploadCmd, docsDeleteCmd, docsDownloadCmd, docsSearchCmd)

	docsUploadCmd.Flags().StringP("title", "t", "", "document title (default file name)")
	docsDownloadCmd.Flags().StringP("output", "o", "", "write the document to this file")
	docsDownloadCmd.Flags().Bool("open", false, "open the download in the browser")
	docsSearchCmd.Flags().IntP("limit", "n", 0, "maximum number of results (default chat.search_limit)")
}

var docsCmd = &cobra.Command{
	Use:     "docs",
	Aliases: []string{"knowledge"},
	Short:   "Manage the knowledge base",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.requireSession(cmd.Context()); err != nil {
			return err
		}

		docs := app.stores.Knowledge.FetchDocuments(cmd.Context())
		if len(docs) == 0 {
			fmt.Println("No documents found.")
			return nil
		}

		w := newTable(os.Stdout)
		fmt.Fprintln(w, "ID\tTITLE\tTYPE\tSIZE\tUPLOADED")
		for _, d := range docs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				d.ID, d.Title, d.Metadata.FileType, formatSize(d.Metadata.FileSize), formatTime(d.CreatedAt))
		}
		return w.Flush()
	},
}

var docsUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := app.requireSession(ctx); err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		filename := filepath.Base(args[0])
		title, _ := cmd.Flags().GetString("title")
		if title == "" {
			title = strings.TrimSuffix(filename, filepath.Ext(filename))
		}

		doc, err := app.stores.Knowledge.UploadDocument(ctx, title, filename, f)
		if err != nil {
			return fmt.Errorf("upload document: %w", err)
		}
		okColor.Printf("Uploaded %q as %s\n", doc.Title, doc.ID)
		return nil
	},
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := app.requireSession(ctx); err != nil {
			return err
		}

		if err := app.stores.Knowledge.DeleteDocument(ctx, domain.ID(args[0])); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		fmt.Println("Document deleted.")
		return nil
	},
}

var docsDownloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Download a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := app.requireSession(ctx); err != nil {
			return err
		}
		id := domain.ID(args[0])

		if open, _ := cmd.Flags().GetBool("open"); open {
			app.stores.Knowledge.DownloadDocument(id)
			app.stores.Knowledge.Wait()
			return nil
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			_, err := app.client.DownloadDocument(ctx, id, os.Stdout)
			return err
		}

		f, err := os.Create(output)
		if err != nil {
			return err
		}
		n, err := app.client.DownloadDocument(ctx, id, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(output)
			return fmt.Errorf("download document: %w", err)
		}
		okColor.Printf("Saved %s to %s\n", formatSize(n), output)
		return nil
	},
}

var docsSearchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := app.requireSession(ctx); err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		results := app.stores.Knowledge.SearchDocuments(ctx, strings.Join(args, " "), limit)
		if len(results) == 0 {
			fmt.Println("No matches.")
			return nil
		}

		for i, r := range results {
			assistantColor.Printf("%d. %s", i+1, r.DocumentTitle)
			dimColor.Printf("  score %.2f  %s\n", r.RelevanceScore, r.DocumentID)
			fmt.Println(strings.TrimSpace(r.Chunk))
			fmt.Println()
		}
		return nil
	},
}
