// Package repl is the interactive line-oriented query loop: one query per
// line, boolean or ranked by the query's own syntax, until "exit" or end
// of input.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/docstore"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/executor"
)

const exitCommand = "exit"

type Searcher interface {
	Execute(ctx context.Context, raw string, mode executor.Mode, limit int) (*executor.SearchResult, error)
}

type REPL struct {
	searcher Searcher
	docs     *docstore.Store
	limit    int
	prompt   string
	logger   *slog.Logger
}

// New creates a REPL. With a non-nil docs store results are printed as
// document payloads, otherwise as id:score pairs. limit <= 0 prints every
// match.
func New(searcher Searcher, docs *docstore.Store, limit int, prompt string) *REPL {
	return &REPL{
		searcher: searcher,
		docs:     docs,
		limit:    limit,
		prompt:   prompt,
		logger:   slog.Default().With("component", "repl"),
	}
}

type readResult struct {
	line string
	err  error
	eof  bool
}

// Run reads queries from in until "exit", end of input or ctx is
// cancelled. Cancellation also ends a read that is still blocked; the
// reading goroutine then exits when in returns. Query errors are printed
// and do not end the loop; only read and write failures are returned.
func (r *REPL) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	w := bufio.NewWriter(out)
	defer w.Flush()

	// One line is read per request on next, so nothing past "exit" is
	// consumed.
	next := make(chan struct{})
	lines := make(chan readResult, 1)
	defer close(next)
	go func() {
		for range next {
			if scanner.Scan() {
				lines <- readResult{line: scanner.Text()}
				continue
			}
			lines <- readResult{err: scanner.Err(), eof: true}
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if r.prompt != "" {
			fmt.Fprint(w, r.prompt)
			if err := w.Flush(); err != nil {
				return fmt.Errorf("writing prompt: %w", err)
			}
		}
		next <- struct{}{}
		var res readResult
		select {
		case <-ctx.Done():
			return nil
		case res = <-lines:
		}
		if res.eof {
			if res.err != nil {
				return fmt.Errorf("reading query: %w", res.err)
			}
			return nil
		}
		line := strings.TrimRight(res.line, "\r")
		if line == exitCommand {
			return nil
		}
		r.answer(ctx, w, line)
		if err := w.Flush(); err != nil {
			return fmt.Errorf("writing results: %w", err)
		}
	}
}

func (r *REPL) answer(ctx context.Context, w io.Writer, line string) {
	res, err := r.searcher.Execute(ctx, line, executor.ModeAuto, r.limit)
	if err != nil {
		fmt.Fprintf(w, "Query error: %v\n", err)
		return
	}
	if len(res.Results) == 0 {
		fmt.Fprintln(w, "No results")
		return
	}
	r.logger.Debug("answered", "query", line, "mode", res.Mode, "total_hits", res.TotalHits)
	if r.docs == nil {
		for _, d := range res.Results {
			fmt.Fprintf(w, "%d:%g ", d.DocID, d.Score)
		}
		fmt.Fprintln(w)
		return
	}
	for _, d := range res.Results {
		doc, ok := r.docs.Get(d.DocID)
		if !ok {
			fmt.Fprintf(w, "%d:%g\n", d.DocID, d.Score)
			continue
		}
		text := docstore.Render(doc)
		fmt.Fprint(w, text)
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(w)
		}
	}
}
