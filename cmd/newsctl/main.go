package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"geo-news/internal/dispatcher"
	"geo-news/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// errAlerted marks a run whose response carried an error for the user.
var errAlerted = errors.New("request failed")

// settings resolves flags first, then NEWSCTL_* environment variables.
type settings struct {
	v *viper.Viper
}

func (s settings) server() string { return s.v.GetString("server") }

func (s settings) timeout() time.Duration { return s.v.GetDuration("timeout") }

func (s settings) html() bool { return s.v.GetBool("html") }

func newRootCmd() *cobra.Command {
	s := settings{v: viper.New()}
	s.v.SetEnvPrefix("NEWSCTL")
	s.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	s.v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "newsctl",
		Short:         "Scrape, fetch and summarize Geo News articles from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := s.v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			_, err := logger.Init(s.v.GetString("log-level"), "console")
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
	}
	root.PersistentFlags().String("server", "http://localhost:8000", "news server base URL")
	root.PersistentFlags().Duration("timeout", 2*time.Minute, "request timeout")
	root.PersistentFlags().String("log-level", "warn", "log level")
	root.PersistentFlags().Bool("html", false, "print the page as HTML")

	root.AddCommand(scrapeCmd(s), fetchCmd(s), summarizeCmd(s))
	return root
}

// session is one page plus the dispatcher driving it.
type session struct {
	d      *dispatcher.Dispatcher
	alerts []string
}

func newSession(cmd *cobra.Command, s settings) *session {
	sess := &session{}
	client := dispatcher.NewClient(s.server(), &http.Client{Timeout: s.timeout()})
	var opts []dispatcher.Option
	if u, err := url.Parse(s.server()); err == nil {
		opts = append(opts, dispatcher.WithBasePath(u.Path))
	}
	sess.d = dispatcher.New(client, dispatcher.NewPage(), dispatcher.AlertFunc(func(msg string) {
		sess.alerts = append(sess.alerts, msg)
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", msg)
	}), opts...)
	return sess
}

// click runs the handler bound to button and waits for it.
func (sess *session) click(cmd *cobra.Command, button string) error {
	if err := <-sess.d.Dispatch(cmd.Context(), button); err != nil {
		return err
	}
	if len(sess.alerts) > 0 {
		return errAlerted
	}
	return nil
}

func (sess *session) print(cmd *cobra.Command, s settings) error {
	if s.html() {
		return sess.d.Page().Render(cmd.OutOrStdout())
	}
	return sess.d.Page().RenderText(cmd.OutOrStdout())
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errAlerted) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
