// uniconfess 管理控制台：审核帖子、处理通知、维护 FAQ 与联系消息
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/config"
	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/output"
	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/store"
	"github.com/chhengkhim/Junior-project-sub002/pkg/apiclient"
	"github.com/chhengkhim/Junior-project-sub002/pkg/logger"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const usageText = `usage:
  uniconfess posts list [--status pending|approved|rejected] [--page n]
  uniconfess posts create --title t --content c [--tags a,b] [--emotion e] [--link url] [--anonymous] [--image file --alt text]
  uniconfess posts approve <post-id>
  uniconfess posts reject <post-id> --reason text
  uniconfess notifications list [--type t] [--read all|read|unread] [--search s] [--page n]
  uniconfess notifications read <notification-id>...
  uniconfess notifications read-all [--type t] [--search s]
  uniconfess notifications dismiss <notification-id>
  uniconfess faqs list [--search s] [--static]
  uniconfess faqs create --question q --answer a
  uniconfess faqs update <faq-id> --question q --answer a
  uniconfess faqs delete <faq-id>
  uniconfess messages list [--status all|unread|read|resolved] [--search s] [--order newest|oldest]
  uniconfess messages status <message-id> <unread|read|resolved>

every command accepts --format table|json (default: table on a terminal, json otherwise)`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.App.Env, cfg.App.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "error: init logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(apiclient.New(cfg.API.BaseURL, cfg.API.Token, cfg.API.Timeout), os.Stdout, os.Stderr)
	if err := a.run(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, output.ErrFailed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		logger.Sync()
		os.Exit(1)
	}
}

type app struct {
	client *apiclient.Client
	out    io.Writer
	errOut io.Writer
}

func newApp(client *apiclient.Client, out, errOut io.Writer) *app {
	return &app{client: client, out: out, errOut: errOut}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage()
	}
	logger.Log.Debug("command", zap.Strings("args", args))

	switch args[0] {
	case "posts":
		return a.cmdPosts(ctx, args[1:])
	case "notifications":
		return a.cmdNotifications(ctx, args[1:])
	case "faqs":
		return a.cmdFAQs(ctx, args[1:])
	case "messages":
		return a.cmdMessages(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Fprintln(a.out, usageText)
		return nil
	default:
		return usage()
	}
}

func usage() error {
	return errors.New(usageText)
}

func (a *app) flagSet(name string) (*pflag.FlagSet, *string) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.errOut)
	format := fs.String("format", "", "Output format: table|json")
	return fs, format
}

func (a *app) printer(format string) (*output.Printer, error) {
	f, err := output.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return output.New(a.out, a.errOut, f), nil
}

// settle 输出校验或请求错误，成功时返回 nil
func settle[T any](p *output.Printer, res store.Result[T], message, retry string) error {
	if res.Invalid != nil {
		fmt.Fprintln(p.Err, "invalid input:", res.Invalid.Error())
		return output.ErrFailed
	}
	if res.Err != nil {
		return p.Failure(message, retry)
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, s := range args {
		id, err := parseID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
