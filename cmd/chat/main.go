// Command chat is a terminal client for buyer/seller conversations. It logs in,
// opens the conversation with another user and keeps it current by polling.
// Each line typed on stdin is sent as a message; "/refresh" polls immediately
// and "/quit" exits.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"Homemade/pkg/chatclient"
	"Homemade/pkg/chatsync"
	"Homemade/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serverURL string
	username  string
	password  string
	otherID   uint
	interval  time.Duration
	verbose   bool

	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with another marketplace user from the terminal",
	Long: `chat logs in to the marketplace API and opens the conversation with
the user given by --with. The conversation is refreshed every --interval.

Type a line and press enter to send it.
  /refresh  poll now
  /quit     exit`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		var err error
		log, err = logger.New(level, false)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: runChat,
}

func init() {
	_ = godotenv.Load()

	defaultInterval := chatsync.DefaultInterval
	if v := os.Getenv("CHAT_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			defaultInterval = d
		}
	}
	defaultServer := os.Getenv("CHAT_SERVER_URL")
	if defaultServer == "" {
		defaultServer = "http://localhost:3000"
	}

	rootCmd.Flags().StringVar(&serverURL, "server", defaultServer, "API base URL (or set CHAT_SERVER_URL)")
	rootCmd.Flags().StringVarP(&username, "user", "u", "", "Username to log in as (required)")
	rootCmd.Flags().StringVarP(&password, "password", "p", "", "Password (or set CHAT_PASSWORD)")
	rootCmd.Flags().UintVar(&otherID, "with", 0, "User id of the other participant (required)")
	rootCmd.Flags().DurationVar(&interval, "interval", defaultInterval, "Polling interval (or set CHAT_POLL_INTERVAL)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	_ = rootCmd.MarkFlagRequired("user")
	_ = rootCmd.MarkFlagRequired("with")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	if password == "" {
		password = os.Getenv("CHAT_PASSWORD")
	}
	if interval <= 0 {
		return errors.New("--interval must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := chatclient.New(serverURL, nil)
	loginCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	session, err := client.Login(loginCtx, username, password)
	cancel()
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	log.Debug("logged in", zap.Uint("user_id", session.UserID), zap.String("role", session.Role))

	r := &renderer{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr(), me: session.UserID}
	loop := chatsync.New(client, chatsync.Options{
		Interval: interval,
		Logger:   log,
		OnUpdate: r.render,
	})
	defer loop.Close()

	fmt.Fprintf(r.out, "chatting as %s (#%d) with #%d\n", session.Username, session.UserID, otherID)
	loop.Open(session, otherID)

	lines := make(chan string)
	go readLines(cmd.InOrStdin(), lines)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			switch strings.TrimSpace(line) {
			case "":
				continue
			case "/quit":
				return nil
			case "/refresh":
				if err := loop.Refresh(ctx); err != nil {
					r.errorf("refresh failed: %v", err)
				}
				continue
			}
			loop.SetDraft(line)
			if _, err := loop.Submit(ctx); err != nil {
				r.errorf("message not sent")
			}
		}
	}
}

// readLines forwards stdin lines until EOF. It is not stopped on exit; the
// process ends with it.
func readLines(in io.Reader, out chan<- string) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		out <- sc.Text()
	}
	close(out)
}

// renderer prints messages it has not printed yet. A full replace that no
// longer contains the last printed id starts over.
type renderer struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	me      uint
	lastID  uint
	lastErr string
}

func (r *renderer) render(v chatsync.View) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v.Err != nil {
		if msg := v.Err.Error(); msg != r.lastErr {
			r.lastErr = msg
			fmt.Fprintf(r.errOut, "! %s\n", msg)
		}
		return
	}
	r.lastErr = ""
	if !v.ScrollToNewest {
		return
	}

	seen := false
	for _, m := range v.Messages {
		if m.ID == r.lastID {
			seen = true
		}
	}
	if !seen {
		r.lastID = 0
	}
	for _, m := range v.Messages {
		if m.ID <= r.lastID {
			continue
		}
		who := fmt.Sprintf("#%d", m.SenderID)
		if m.SenderID == r.me {
			who = "you"
		}
		fmt.Fprintf(r.out, "[%s] %s: %s\n", m.Timestamp.Local().Format("15:04:05"), who, m.Content)
		r.lastID = m.ID
	}
}

func (r *renderer) errorf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.errOut, "! "+format+"\n", args...)
}
