// Package output 管理控制台的输出：终端下为表格，管道中为 JSON
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/store"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// ErrFailed 错误信息已经输出，调用方只需设置退出码
var ErrFailed = errors.New("command failed")

func DefaultFormat() string {
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return FormatTable
	}
	return FormatJSON
}

// ParseFormat 空值使用 DefaultFormat
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "":
		return DefaultFormat(), nil
	case FormatTable, FormatJSON:
		return f, nil
	default:
		return "", errors.Errorf("invalid --format value %q", s)
	}
}

// Table 一个列表视图的表头与行
type Table struct {
	Headers []string
	Rows    [][]string
}

type Printer struct {
	Out    io.Writer
	Err    io.Writer
	Format string
	// Interactive 为 true 时加载提示会在结束后被擦除
	Interactive bool
}

func New(out, errOut io.Writer, format string) *Printer {
	return &Printer{Out: out, Err: errOut, Format: format, Interactive: format == FormatTable}
}

// Loading 在 stderr 输出加载提示，返回的函数结束该状态
func (p *Printer) Loading(what string) func() {
	if !p.Interactive {
		return func() {}
	}
	fmt.Fprintf(p.Err, "Loading %s...", what)
	return func() { fmt.Fprint(p.Err, "\r\033[K") }
}

// Render 按视图状态输出：错误、空结果、数据三者只出现一个
func (p *Printer) Render(state store.ViewState, errMsg, retry string, t Table, v any) error {
	switch state {
	case store.ViewError:
		return p.Failure(errMsg, retry)
	case store.ViewEmpty:
		if p.Format == FormatJSON {
			return p.JSON(v)
		}
		fmt.Fprintln(p.Out, "Nothing found.")
		return nil
	case store.ViewLoading:
		fmt.Fprintln(p.Err, "Still loading, try again shortly.")
		return ErrFailed
	}
	if p.Format == FormatJSON {
		return p.JSON(v)
	}
	return p.Table(t)
}

// Failure 输出错误与重试提示
func (p *Printer) Failure(msg, retry string) error {
	if msg == "" {
		msg = "something went wrong"
	}
	fmt.Fprintln(p.Err, "error:", msg)
	if retry != "" {
		fmt.Fprintln(p.Err, "retry with:", retry)
	}
	return ErrFailed
}

// Done 单个操作成功：表格模式输出一句话，JSON 模式输出结果
func (p *Printer) Done(msg string, v any) error {
	if p.Format == FormatJSON {
		return p.JSON(v)
	}
	fmt.Fprintln(p.Out, msg)
	return nil
}

func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *Printer) Table(t Table) error {
	w := tabwriter.NewWriter(p.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(t.Headers, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

// Truncate 表格单元格按字符截断
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
