package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/chhengkhim/Junior-project-sub002/internal/domain/message/model"
	"github.com/chhengkhim/Junior-project-sub002/internal/domain/message/repository"
	"github.com/chhengkhim/Junior-project-sub002/internal/domain/message/service"
	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/output"
	"github.com/chhengkhim/Junior-project-sub002/pkg/filter"

	"github.com/pkg/errors"
)

func (a *app) messageService() service.MessageService {
	return service.NewMessageService(repository.NewMessageRepository(a.client))
}

func (a *app) cmdMessages(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.cmdMessagesList(ctx, nil)
	}
	switch args[0] {
	case "list":
		return a.cmdMessagesList(ctx, args[1:])
	case "status":
		return a.cmdMessagesStatus(ctx, args[1:])
	default:
		return usage()
	}
}

func (a *app) cmdMessagesList(ctx context.Context, args []string) error {
	fs, format := a.flagSet("messages list")
	status := fs.String("status", filter.StatusAll, "Status: all|unread|read|resolved")
	search := fs.String("search", "", "Search sender, email, subject and message")
	order := fs.String("order", string(filter.Newest), "Sort order: newest|oldest")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *status != filter.StatusAll {
		if _, ok := model.ParseStatus(*status); !ok {
			return errors.Errorf("invalid --status %q", *status)
		}
	}
	p, err := a.printer(*format)
	if err != nil {
		return err
	}

	svc := a.messageService()
	defer svc.Close()

	stop := p.Loading("messages")
	svc.Fetch(ctx)
	stop()

	q := service.Query{Status: *status, Search: *search, Order: filter.ParseOrder(*order)}
	items := svc.View(q)
	tbl := output.Table{Headers: []string{"ID", "FROM", "EMAIL", "SUBJECT", "STATUS", "RECEIVED"}}
	for _, m := range items {
		tbl.Rows = append(tbl.Rows, []string{
			strconv.FormatInt(m.ID, 10),
			output.Truncate(m.SenderName, 20),
			m.SenderEmail,
			output.Truncate(m.Subject, 40),
			string(m.Status),
			formatTime(m.ReceivedDate),
		})
	}
	retry := fmt.Sprintf("uniconfess messages list --status %s --search %q --order %s", *status, *search, q.Order)
	payload := map[string]any{"messages": items, "counts": svc.Counts()}
	if err := p.Render(svc.ViewState(q), svc.Error(), retry, tbl, payload); err != nil {
		return err
	}
	if p.Format == output.FormatTable && len(items) > 0 {
		c := svc.Counts()
		fmt.Fprintf(a.out, "%d unread, %d read, %d resolved\n",
			c[model.StatusUnread], c[model.StatusRead], c[model.StatusResolved])
	}
	return nil
}

func (a *app) cmdMessagesStatus(ctx context.Context, args []string) error {
	fs, format := a.flagSet("messages status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: uniconfess messages status <message-id> <unread|read|resolved>")
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	p, err := a.printer(*format)
	if err != nil {
		return err
	}

	svc := a.messageService()
	defer svc.Close()

	status, ok := model.ParseStatus(fs.Arg(1))
	if !ok {
		// 交给校验输出统一的错误提示
		status = model.Status(fs.Arg(1))
	}
	res := svc.SetStatus(ctx, id, status)
	retry := fmt.Sprintf("uniconfess messages status %d %s", id, status)
	if err := settle(p, res, svc.Error(), retry); err != nil {
		return err
	}
	return p.Done(fmt.Sprintf("message %d marked %s", id, status), res.Value)
}
