package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vietddude/catalog/internal/categories"
	"github.com/vietddude/catalog/internal/control"
	"github.com/vietddude/catalog/internal/core/domain"
	"github.com/vietddude/catalog/internal/infra/api"
)

var sublines []int

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the category options of one or more sublines",
	RunE:  runCategories,
}

func init() {
	categoriesCmd.Flags().IntSliceVar(&sublines, "subline", nil, "subline code (repeatable)")
	_ = categoriesCmd.MarkFlagRequired("subline")
	rootCmd.AddCommand(categoriesCmd)
}

// sublineResult is the outcome of listing one subline.
type sublineResult struct {
	subline    int
	categories []domain.Category
	err        error
}

func runCategories(cmd *cobra.Command, args []string) error {
	app, err := control.NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	results := fetchSublines(cmd.Context(), app.Categories(), sublines)
	return printSublines(os.Stdout, results, app.Displayer())
}

// fetchSublines lists every subline concurrently. Failures are kept per
// subline rather than cancelling the others.
func fetchSublines(ctx context.Context, q *categories.Query, codes []int) []sublineResult {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]sublineResult, len(codes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, code := range codes {
		g.Go(func() error {
			list, err := q.Get(ctx, code)
			results[i] = sublineResult{subline: code, categories: list, err: err}
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(results, func(i, j int) bool { return results[i].subline < results[j].subline })
	return results
}

func printSublines(out io.Writer, results []sublineResult, display *api.Displayer) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "SUBLINE\tVALUE\tLABEL")

	for _, r := range results {
		if r.err != nil {
			message, err := display.Render(r.err, nil)
			if err != nil {
				_ = w.Flush()
				return err
			}
			_, _ = fmt.Fprintf(w, "%d\t-\t%s\n", r.subline, message)
			continue
		}
		for _, opt := range categories.Options(r.categories) {
			_, _ = fmt.Fprintf(w, "%d\t%d\t%s\n", r.subline, opt.Value, opt.Label)
		}
	}
	return w.Flush()
}
