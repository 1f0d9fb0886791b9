package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rrens/chat-client/internal/domain"
	"github.com/Rrens/chat-client/internal/store"
)

func init() {
	rootCmd.AddCommand(chatCmd, modelsCmd)
	chatCmd.AddCommand(chatListCmd, chatNewCmd, chatShowCmd, chatSendCmd, chatDeleteCmd)

	chatNewCmd.Flags().StringP("model", "m", "", "model id (default chat.default_model)")
	chatNewCmd.Flags().StringP("system", "s", "", "system prompt")
	chatNewCmd.Flags().BoolP("interactive", "i", false, "keep reading messages from stdin")

	chatShowCmd.Flags().BoolP("interactive", "i", false, "keep reading messages from stdin")
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Work with conversations",
}

var chatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.requireSession(cmd.Context()); err != nil {
			return err
		}

		chats := app.stores.Chat.FetchChats(cmd.Context())
		if len(chats) == 0 {
			fmt.Println("No conversations found.")
			return nil
		}

		w := newTable(os.Stdout)
		fmt.Fprintln(w, "ID\tTITLE\tMODEL\tUPDATED")
		for _, c := range chats {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Title, c.Model, formatTime(c.UpdatedAt))
		}
		return w.Flush()
	},
}

var chatNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a conversation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := app.requireSession(ctx); err != nil {
			return err
		}

		model, _ := cmd.Flags().GetString("model")
		if model != "" {
			app.stores.Models.FetchModels(ctx)
			if err := app.stores.Models.SelectModel(model); err != nil {
				return err
			}
		}
		system, _ := cmd.Flags().GetString("system")

		conv, err := app.stores.Chat.CreateChat(ctx, app.stores.Models.SelectedModel(), strPtr(system))
		if err != nil {
			return fmt.Errorf("create conversation: %w", err)
		}
		okColor.Printf("Created conversation %s (%s)\n", conv.ID, conv.Model)

		if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
			return converse(cmd, os.Stdin, os.Stdout)
		}
		return nil
	},
}

var chatShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a conversation with its messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := app.requireSession(ctx); err != nil {
			return err
		}

		conv, err := app.stores.Chat.FetchChat(ctx, domain.ID(args[0]))
		if err != nil {
			return fmt.Errorf("load conversation: %w", err)
		}
		printConversation(os.Stdout, *conv)

		if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
			return converse(cmd, os.Stdin, os.Stdout)
		}
		return nil
	},
}

var chatSendCmd = &cobra.Command{
	Use:   "send <id> <message...>",
	Short: "Send a message and print the reply",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := app.requireSession(ctx); err != nil {
			return err
		}

		if _, err := app.stores.Chat.FetchChat(ctx, domain.ID(args[0])); err != nil {
			return fmt.Errorf("load conversation: %w", err)
		}

		reply, err := app.stores.Chat.SendMessage(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return fmt.Errorf("send message: %w", err)
		}
		if reply == nil {
			return store.ErrNoConversation
		}
		printMessage(os.Stdout, *reply)
		return nil
	},
}

var chatDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := app.requireSession(ctx); err != nil {
			return err
		}

		if err := app.stores.Chat.DeleteChat(ctx, domain.ID(args[0])); err != nil {
			return fmt.Errorf("delete conversation: %w", err)
		}
		fmt.Println("Conversation deleted.")
		return nil
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models the backend offers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.requireSession(cmd.Context()); err != nil {
			return err
		}

		models := app.stores.Models.FetchModels(cmd.Context())
		if len(models) == 0 {
			fmt.Println("No models available.")
			return nil
		}

		selected := app.stores.Models.SelectedModel()
		w := newTable(os.Stdout)
		fmt.Fprintln(w, "MODEL ID\tNAME\tPROVIDER\tDEFAULT")
		for _, m := range models {
			mark := ""
			if m.ModelID == selected {
				mark = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.ModelID, m.Name, m.Provider, mark)
		}
		return w.Flush()
	},
}

// converse sends every line read from in to the current conversation until
// EOF or an empty "/quit"
func converse(cmd *cobra.Command, in io.Reader, out io.Writer) error {
	ctx := cmd.Context()
	conv, err := app.stores.Chat.RequireCurrent()
	if err != nil {
		return err
	}

	// progress marker while the reply is pending
	unsubscribe := app.stores.Chat.SubscribeCurrent(func(c domain.Conversation) {
		if c.IsLoading {
			dimColor.Fprintln(out, "...")
		}
	})
	defer unsubscribe()

	dimColor.Fprintf(out, "Talking to %s. Type /quit or press Ctrl-D to stop.\n", conv.Model)
	lines := newLineReader(in)
	for {
		userColor.Fprint(out, "> ")
		line, ok := lines.next()
		if !ok || strings.TrimSpace(line) == "/quit" {
			fmt.Fprintln(out)
			return nil
		}

		reply, err := app.stores.Chat.SendMessage(ctx, line)
		switch {
		case errors.Is(err, store.ErrEmptyMessage):
			continue
		case err != nil:
			printError(err)
			if ctx.Err() != nil {
				return nil
			}
			continue
		case reply == nil:
			// session was torn down under us
			return store.ErrNoConversation
		}
		printMessage(out, *reply)
	}
}
