package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chhengkhim/Junior-project-sub002/internal/domain/post/model"
	"github.com/chhengkhim/Junior-project-sub002/internal/domain/post/repository"
	"github.com/chhengkhim/Junior-project-sub002/internal/domain/post/service"
	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/output"

	"github.com/pkg/errors"
)

func (a *app) postService() service.PostService {
	return service.NewPostService(repository.NewPostRepository(a.client))
}

func (a *app) cmdPosts(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.cmdPostsList(ctx, nil)
	}
	switch args[0] {
	case "list":
		return a.cmdPostsList(ctx, args[1:])
	case "create":
		return a.cmdPostsCreate(ctx, args[1:])
	case "approve":
		return a.cmdPostsApprove(ctx, args[1:])
	case "reject":
		return a.cmdPostsReject(ctx, args[1:])
	default:
		return usage()
	}
}

func (a *app) cmdPostsList(ctx context.Context, args []string) error {
	fs, format := a.flagSet("posts list")
	status := fs.String("status", string(model.StatusPending), "Moderation status: pending|approved|rejected")
	page := fs.Int("page", 1, "Page number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	st, ok := model.ParseStatus(*status)
	if !ok {
		return errors.Errorf("invalid --status %q", *status)
	}
	p, err := a.printer(*format)
	if err != nil {
		return err
	}

	svc := a.postService()
	defer svc.Close()

	stop := p.Loading(string(st) + " posts")
	svc.FetchByStatus(ctx, st, *page)
	stop()

	part := svc.Partition(st)
	tbl := output.Table{Headers: []string{"ID", "TITLE", "TAGS", "AUTHOR", "CREATED"}}
	if st == model.StatusRejected {
		tbl.Headers = append(tbl.Headers, "NOTE")
	}
	for _, post := range part.Posts {
		row := []string{
			strconv.FormatInt(post.ID, 10),
			output.Truncate(post.Title, 40),
			strings.Join(post.Tags, ","),
			author(post),
			formatTime(post.CreatedAt),
		}
		if st == model.StatusRejected {
			row = append(row, output.Truncate(post.AdminNote, 30))
		}
		tbl.Rows = append(tbl.Rows, row)
	}

	retry := fmt.Sprintf("uniconfess posts list --status %s --page %d", st, *page)
	payload := map[string]any{"posts": part.Posts, "pagination": part.Pagination}
	if err := p.Render(svc.ViewState(st), svc.Error(), retry, tbl, payload); err != nil {
		return err
	}
	if p.Format == output.FormatTable && part.Pagination.LastPage > 1 {
		fmt.Fprintf(a.out, "page %d of %d\n", part.Pagination.CurrentPage, part.Pagination.LastPage)
	}
	return nil
}

func author(p model.Post) string {
	if p.IsAnonymous || p.Author == "" {
		return "anonymous"
	}
	return p.Author
}

func (a *app) cmdPostsCreate(ctx context.Context, args []string) error {
	fs, format := a.flagSet("posts create")
	title := fs.String("title", "", "Title (at least 5 characters)")
	content := fs.String("content", "", "Content (at least 10 characters)")
	tags := fs.StringSlice("tags", nil, "Comma separated tags")
	emotion := fs.String("emotion", "", "Emotion label")
	link := fs.String("link", "", "Related link")
	anonymous := fs.Bool("anonymous", false, "Hide the author")
	image := fs.String("image", "", "Image file to attach")
	alt := fs.String("alt", "", "Image description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := a.printer(*format)
	if err != nil {
		return err
	}

	in := model.CreateInput{
		Title:       *title,
		Content:     *content,
		Tags:        *tags,
		Emotion:     *emotion,
		Link:        *link,
		IsAnonymous: *anonymous,
	}
	if *image != "" {
		f, err := os.Open(*image)
		if err != nil {
			return errors.Wrap(err, "open image")
		}
		defer f.Close()
		in.Image = &model.ImageUpload{Filename: filepath.Base(*image), AltText: *alt, Reader: f}
	}

	svc := a.postService()
	defer svc.Close()

	stop := p.Loading("creating post")
	res := svc.Create(ctx, in)
	stop()
	if err := settle(p, res, svc.Error(), ""); err != nil {
		return err
	}
	if res.Value == nil {
		return p.Done("post submitted", nil)
	}
	return p.Done(fmt.Sprintf("post %d submitted (%s)", res.Value.ID, res.Value.Status), res.Value)
}

func (a *app) cmdPostsApprove(ctx context.Context, args []string) error {
	fs, format := a.flagSet("posts approve")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: uniconfess posts approve <post-id>")
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	p, err := a.printer(*format)
	if err != nil {
		return err
	}

	svc := a.postService()
	defer svc.Close()

	res := svc.Approve(ctx, id)
	if err := settle(p, res, svc.Error(), "uniconfess posts approve "+fs.Arg(0)); err != nil {
		return err
	}
	return p.Done(fmt.Sprintf("post %d approved", id), res.Value)
}

func (a *app) cmdPostsReject(ctx context.Context, args []string) error {
	fs, format := a.flagSet("posts reject")
	reason := fs.String("reason", "", "Reason shown to the author")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: uniconfess posts reject <post-id> --reason text")
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	p, err := a.printer(*format)
	if err != nil {
		return err
	}

	svc := a.postService()
	defer svc.Close()

	res := svc.Reject(ctx, id, *reason)
	retry := fmt.Sprintf("uniconfess posts reject %d --reason %q", id, *reason)
	if err := settle(p, res, svc.Error(), retry); err != nil {
		return err
	}
	return p.Done(fmt.Sprintf("post %d rejected", id), res.Value)
}
