package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/chhengkhim/Junior-project-sub002/internal/domain/notification/model"
	"github.com/chhengkhim/Junior-project-sub002/internal/domain/notification/repository"
	"github.com/chhengkhim/Junior-project-sub002/internal/domain/notification/service"
	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/output"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

func (a *app) notificationService() service.NotificationService {
	return service.NewNotificationService(repository.NewNotificationRepository(a.client))
}

func (a *app) cmdNotifications(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.cmdNotificationsList(ctx, nil)
	}
	switch args[0] {
	case "list":
		return a.cmdNotificationsList(ctx, args[1:])
	case "read":
		return a.cmdNotificationsRead(ctx, args[1:])
	case "read-all":
		return a.cmdNotificationsReadAll(ctx, args[1:])
	case "dismiss":
		return a.cmdNotificationsDismiss(ctx, args[1:])
	default:
		return usage()
	}
}

type notificationFlags struct {
	typ    *string
	read   *string
	search *string
	page   *int
}

func bindNotificationFlags(fs *pflag.FlagSet) notificationFlags {
	return notificationFlags{
		typ:    fs.String("type", "all", "Notification type"),
		read:   fs.String("read", "all", "Read state: all|read|unread"),
		search: fs.String("search", "", "Search text"),
		page:   fs.Int("page", 1, "Page number"),
	}
}

func (nf notificationFlags) filters() (model.Filters, error) {
	typ, ok := model.ParseType(*nf.typ)
	if !ok {
		return model.Filters{}, errors.Errorf("invalid --type %q", *nf.typ)
	}
	read, ok := model.ParseReadState(*nf.read)
	if !ok {
		return model.Filters{}, errors.Errorf("invalid --read %q", *nf.read)
	}
	return model.Filters{Type: typ, Read: read, Search: *nf.search, Page: *nf.page}, nil
}

// retryHint 用本次解析到的筛选参数拼出可重发的命令
func (nf notificationFlags) retryHint(cmd string) string {
	return fmt.Sprintf("uniconfess notifications %s --type %s --read %s --search %q --page %d",
		cmd, *nf.typ, *nf.read, *nf.search, *nf.page)
}

func (a *app) cmdNotificationsList(ctx context.Context, args []string) error {
	fs, format := a.flagSet("notifications list")
	nf := bindNotificationFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := nf.filters()
	if err != nil {
		return err
	}
	p, err := a.printer(*format)
	if err != nil {
		return err
	}

	svc := a.notificationService()
	defer svc.Close()

	stop := p.Loading("notifications")
	svc.Fetch(ctx, f)
	stop()

	st := svc.State()
	tbl := output.Table{Headers: []string{"ID", "TYPE", "TITLE", "READ", "CREATED"}}
	for _, n := range st.Items {
		tbl.Rows = append(tbl.Rows, []string{
			strconv.FormatInt(n.ID, 10),
			string(n.Type),
			output.Truncate(n.Title, 40),
			yesNo(n.IsRead),
			formatTime(n.CreatedAt),
		})
	}
	payload := map[string]any{
		"notifications": st.Items,
		"pagination":    st.Pagination,
		"unread_count":  st.UnreadCount,
	}
	if err := p.Render(svc.ViewState(), st.Error, nf.retryHint("list"), tbl, payload); err != nil {
		return err
	}
	if p.Format == output.FormatTable && len(st.Items) > 0 {
		fmt.Fprintf(a.out, "%d unread\n", st.UnreadCount)
	}
	return nil
}

func (a *app) cmdNotificationsRead(ctx context.Context, args []string) error {
	fs, format := a.flagSet("notifications read")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("usage: uniconfess notifications read <notification-id>...")
	}
	ids, err := parseIDs(fs.Args())
	if err != nil {
		return err
	}
	p, err := a.printer(*format)
	if err != nil {
		return err
	}

	svc := a.notificationService()
	defer svc.Close()

	res := svc.MarkRead(ctx, ids...)
	if err := settle(p, res, svc.Error(), ""); err != nil {
		return err
	}
	return p.Done(fmt.Sprintf("marked %d notification(s) read", len(ids)), map[string]any{"ids": ids})
}

// cmdNotificationsReadAll 先按条件拉取，再标记其中未读的通知
func (a *app) cmdNotificationsReadAll(ctx context.Context, args []string) error {
	fs, format := a.flagSet("notifications read-all")
	nf := bindNotificationFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := nf.filters()
	if err != nil {
		return err
	}
	p, err := a.printer(*format)
	if err != nil {
		return err
	}

	svc := a.notificationService()
	defer svc.Close()

	if err := settle(p, svc.Fetch(ctx, f), svc.Error(), nf.retryHint("read-all")); err != nil {
		return err
	}
	res := svc.MarkAllRead(ctx)
	if res.Skipped {
		return p.Done("no unread notifications", map[string]any{"ids": []int64{}})
	}
	if err := settle(p, res, svc.Error(), nf.retryHint("read-all")); err != nil {
		return err
	}
	return p.Done(fmt.Sprintf("marked %d notification(s) read, %d unread", len(res.Value), svc.UnreadCount()),
		map[string]any{"ids": res.Value, "unread_count": svc.UnreadCount()})
}

func (a *app) cmdNotificationsDismiss(ctx context.Context, args []string) error {
	fs, format := a.flagSet("notifications dismiss")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: uniconfess notifications dismiss <notification-id>")
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	p, err := a.printer(*format)
	if err != nil {
		return err
	}

	svc := a.notificationService()
	defer svc.Close()

	res := svc.Dismiss(ctx, id)
	if err := settle(p, res.Result, svc.Error(), "uniconfess notifications dismiss "+fs.Arg(0)); err != nil {
		return err
	}
	return p.Done(
		fmt.Sprintf("notification %d marked read (the backend cannot delete notifications)", id),
		map[string]any{"id": id, "substituted": res.Substituted, "action": "mark-read"},
	)
}
