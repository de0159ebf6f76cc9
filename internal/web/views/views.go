// Package views renders the HTML fragments swapped in by HTMX clients.
package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/catalog/internal/core"
)

// maxListedErrors bounds the error list rendered in an import summary.
const maxListedErrors = 20

// ErrorAlert renders a dismissable error box.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="alert alert-error" role="alert">`)
		fmt.Fprintf(&b, `<p class="alert-message">%s</p>`, templ.EscapeString(message))
		if action != "" {
			fmt.Fprintf(&b, `<p class="alert-action">%s</p>`, templ.EscapeString(action))
		}
		if code != "" {
			fmt.Fprintf(&b, `<p class="alert-code">Code: %s</p>`, templ.EscapeString(code))
		}
		b.WriteString(`</div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ImportSummary renders the counts of an import and its first errors.
func ImportSummary(res *core.ImportResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		class := "import-summary"
		if res.ErrorCount > 0 {
			class += " has-errors"
		}
		fmt.Fprintf(&b, `<section class="%s" data-import-id="%s">`, class, templ.EscapeString(res.ImportID))
		fmt.Fprintf(&b, `<p><strong>%d</strong> imported, <strong>%d</strong> failed, <strong>%d</strong> skipped</p>`,
			res.SuccessCount, res.ErrorCount, res.SkippedCount)

		if len(res.Errors) > 0 {
			b.WriteString(`<table class="import-errors"><thead><tr><th>Row</th><th>Product</th><th>Error</th></tr></thead><tbody>`)
			for i, e := range res.Errors {
				if i == maxListedErrors {
					fmt.Fprintf(&b, `<tr><td colspan="3">and %d more</td></tr>`, len(res.Errors)-maxListedErrors)
					break
				}
				fmt.Fprintf(&b, `<tr><td>%d</td><td>%s</td><td>%s</td></tr>`,
					e.Row, templ.EscapeString(e.Product), templ.EscapeString(e.Message))
			}
			b.WriteString(`</tbody></table>`)
		}

		b.WriteString(`</section>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
