package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kamusis/kbot/internal/bot"
	"github.com/kamusis/kbot/internal/history"
	"github.com/kamusis/kbot/internal/match"
	"github.com/spf13/cobra"
)

var (
	flagChatThreshold float64
	flagChatNoHistory bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation on stdin.

Commands inside the chat:
  /test     run the knowledge base self test
  /clear    clear the conversation history
  /export   write the history to chatbot-conversation-<date>.json
  /quit     leave the chat`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().Float64Var(&flagChatThreshold, "threshold", match.DefaultThreshold, "Minimum similarity for a knowledge base answer")
	chatCmd.Flags().BoolVar(&flagChatNoHistory, "no-history", false, "Do not record the conversation")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	b, err := newBot(cfg, !flagChatNoHistory)
	if err != nil {
		return err
	}
	return chatLoop(os.Stdin, os.Stdout, b, isTerminal(os.Stdin))
}

// chatLoop reads one message per line from in until EOF or /quit.
func chatLoop(in io.Reader, out io.Writer, b *bot.Bot, interactive bool) error {
	fmt.Fprintln(out, b.Welcome())
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(out, "you> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := chatCommand(out, b, line)
			if err != nil {
				fmt.Fprintf(out, "  ✗  %v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}

		reply, err := b.Respond(line)
		if err != nil {
			fmt.Fprintf(out, "  ✗  %v\n", err)
			continue
		}
		fmt.Fprintf(out, "kbot> %s\n", reply.Text)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("cannot read input: %w", err)
	}
	return nil
}

func chatCommand(out io.Writer, b *bot.Bot, line string) (bool, error) {
	switch line {
	case "/quit", "/exit":
		fmt.Fprintln(out, "kbot> Goodbye! 👋")
		return true, nil
	case "/test":
		msg, _ := b.SelfTest()
		fmt.Fprintf(out, "kbot> %s\n", msg)
	case "/clear":
		st := b.History()
		if st == nil {
			return false, fmt.Errorf("history is disabled")
		}
		if err := st.Clear(); err != nil {
			return false, err
		}
		fmt.Fprintln(out, "  ✓  conversation cleared")
		fmt.Fprintln(out, b.Welcome())
	case "/export":
		st := b.History()
		if st == nil {
			return false, fmt.Errorf("history is disabled")
		}
		now := time.Now()
		name := history.ExportFileName(now)
		if err := exportHistory(st, name, now); err != nil {
			return false, err
		}
		fmt.Fprintf(out, "  ✓  conversation exported to %s\n", name)
	default:
		return false, fmt.Errorf("unknown command %s (try /test, /clear, /export, /quit)", line)
	}
	return false, nil
}
