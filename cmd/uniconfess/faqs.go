package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/chhengkhim/Junior-project-sub002/internal/domain/faq/model"
	"github.com/chhengkhim/Junior-project-sub002/internal/domain/faq/repository"
	"github.com/chhengkhim/Junior-project-sub002/internal/domain/faq/service"
	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/output"

	"github.com/pkg/errors"
)

func (a *app) faqService(static bool) (service.FAQService, error) {
	if static {
		repo, err := repository.NewStaticRepository(nil)
		if err != nil {
			return nil, err
		}
		return service.NewFAQService(repo), nil
	}
	return service.NewFAQService(repository.NewFAQRepository(a.client)), nil
}

func (a *app) cmdFAQs(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.cmdFAQsList(ctx, nil)
	}
	switch args[0] {
	case "list":
		return a.cmdFAQsList(ctx, args[1:])
	case "create":
		return a.cmdFAQsCreate(ctx, args[1:])
	case "update":
		return a.cmdFAQsUpdate(ctx, args[1:])
	case "delete":
		return a.cmdFAQsDelete(ctx, args[1:])
	default:
		return usage()
	}
}

func (a *app) cmdFAQsList(ctx context.Context, args []string) error {
	fs, format := a.flagSet("faqs list")
	search := fs.String("search", "", "Search question and answer")
	static := fs.Bool("static", false, "Use the built-in FAQ list instead of the API")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := a.printer(*format)
	if err != nil {
		return err
	}
	svc, err := a.faqService(*static)
	if err != nil {
		return err
	}
	defer svc.Close()

	stop := p.Loading("FAQs")
	svc.Fetch(ctx, *search)
	stop()

	items := svc.Items()
	tbl := output.Table{Headers: []string{"ID", "QUESTION", "ANSWER"}}
	for _, f := range items {
		tbl.Rows = append(tbl.Rows, []string{
			strconv.FormatInt(f.ID, 10),
			output.Truncate(f.Question, 50),
			output.Truncate(f.Answer, 60),
		})
	}
	retry := fmt.Sprintf("uniconfess faqs list --search %q", *search)
	if *static {
		retry += " --static"
	}
	return p.Render(svc.ViewState(), svc.Error(), retry, tbl, map[string]any{"faqs": items})
}

func (a *app) cmdFAQsCreate(ctx context.Context, args []string) error {
	fs, format := a.flagSet("faqs create")
	question := fs.String("question", "", "Question")
	answer := fs.String("answer", "", "Answer")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := a.printer(*format)
	if err != nil {
		return err
	}
	svc, err := a.faqService(false)
	if err != nil {
		return err
	}
	defer svc.Close()

	res := svc.Create(ctx, model.Input{Question: *question, Answer: *answer})
	if err := settle(p, res, svc.Error(), ""); err != nil {
		return err
	}
	return p.Done(fmt.Sprintf("FAQ %d created", res.Value.ID), res.Value)
}

func (a *app) cmdFAQsUpdate(ctx context.Context, args []string) error {
	fs, format := a.flagSet("faqs update")
	question := fs.String("question", "", "Question")
	answer := fs.String("answer", "", "Answer")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: uniconfess faqs update <faq-id> --question q --answer a")
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	p, err := a.printer(*format)
	if err != nil {
		return err
	}
	svc, err := a.faqService(false)
	if err != nil {
		return err
	}
	defer svc.Close()

	res := svc.Update(ctx, id, model.Input{Question: *question, Answer: *answer})
	if err := settle(p, res, svc.Error(), ""); err != nil {
		return err
	}
	return p.Done(fmt.Sprintf("FAQ %d updated", id), res.Value)
}

func (a *app) cmdFAQsDelete(ctx context.Context, args []string) error {
	fs, format := a.flagSet("faqs delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: uniconfess faqs delete <faq-id>")
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	p, err := a.printer(*format)
	if err != nil {
		return err
	}
	svc, err := a.faqService(false)
	if err != nil {
		return err
	}
	defer svc.Close()

	res := svc.Delete(ctx, id)
	if err := settle(p, res, svc.Error(), "uniconfess faqs delete "+fs.Arg(0)); err != nil {
		return err
	}
	return p.Done(fmt.Sprintf("FAQ %d deleted", id), map[string]any{"id": id})
}
