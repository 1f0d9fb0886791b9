package main

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/Rrens/chat-client/internal/domain"
)

var (
	errColor       = color.New(color.FgRed)
	warnColor      = color.New(color.FgYellow)
	okColor        = color.New(color.FgGreen)
	userColor      = color.New(color.FgCyan, color.Bold)
	assistantColor = color.New(color.FgGreen, color.Bold)
	systemColor    = color.New(color.FgMagenta)
	dimColor       = color.New(color.Faint)
)

// terminalNavigator stands in for the router of a graphical client: the
// "location" is the command being run and a redirect to the login view is
// reported to the user once.
type terminalNavigator struct {
	mu       sync.Mutex
	location string
	out      io.Writer
	notified bool
}

func newTerminalNavigator(commandPath string, out io.Writer) *terminalNavigator {
	return &terminalNavigator{
		location: "/" + strings.ReplaceAll(strings.TrimPrefix(commandPath, "chatcli"), " ", "/"),
		out:      out,
	}
}

func (n *terminalNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

func (n *terminalNavigator) Redirect(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.location = path
	if n.notified {
		return
	}
	n.notified = true
	warnColor.Fprintln(n.out, "Your session has expired. Run `chatcli login` to sign in again.")
}

// browserOpener opens URLs with the desktop's default handler
type browserOpener struct{}

func (browserOpener) Open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Run()
}

func formatTime(ts domain.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printMessage(w io.Writer, m domain.Message) {
	c := systemColor
	switch m.Role {
	case domain.RoleUser:
		c = userColor
	case domain.RoleAssistant:
		c = assistantColor
	}

	c.Fprintf(w, "%s", m.Role)
	if !m.CreatedAt.IsZero() {
		dimColor.Fprintf(w, "  %s", m.CreatedAt.Local().Format(time.Kitchen))
	}
	if m.Status == domain.StatusFailed {
		errColor.Fprint(w, "  (not delivered)")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, m.Content)
	fmt.Fprintln(w)
}

func printConversation(w io.Writer, conv domain.Conversation) {
	fmt.Fprintf(w, "%s  ", conv.Title)
	dimColor.Fprintf(w, "[%s] %s\n\n", conv.Model, conv.ID)
	if len(conv.Messages) == 0 {
		dimColor.Fprintln(w, "No messages yet.")
		return
	}
	for _, m := range conv.Messages {
		printMessage(w, m)
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
