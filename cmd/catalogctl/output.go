package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"github.com/JonMunkholm/catalog/internal/core"
)

// maxTableRows bounds the error and plan tables printed to the terminal.
const maxTableRows = 25

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func startSpinner(text string) *pterm.SpinnerPrinter {
	if jsonOutput {
		return nil
	}
	spinner, _ := pterm.DefaultSpinner.WithWriter(os.Stderr).Start(text)
	return spinner
}

func stopSpinner(spinner *pterm.SpinnerPrinter, err error) {
	if spinner == nil {
		return
	}
	if err != nil {
		spinner.Fail("Failed")
		return
	}
	spinner.Success("Done")
}

func printImportResult(res *core.ImportResult) error {
	if jsonOutput {
		return printJSON(res)
	}

	pterm.DefaultSection.Println("Import " + res.ImportID)
	pterm.Info.Printfln("Imported: %d  Failed: %d  Skipped: %d  (%s)",
		res.SuccessCount, res.ErrorCount, res.SkippedCount, res.Duration.Round(time.Millisecond))

	if len(res.Errors) > 0 {
		rows := [][]string{{"Row", "Product", "Error"}}
		for i, e := range res.Errors {
			if i == maxTableRows {
				break
			}
			rows = append(rows, []string{strconv.Itoa(e.Row), e.Product, e.Message})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
			return err
		}
		if len(res.Errors) > maxTableRows {
			pterm.Warning.Printfln("%d more errors not shown; use --json for the full list", len(res.Errors)-maxTableRows)
		}
	}

	if res.ErrorCount == 0 {
		pterm.Success.Println("Import completed without errors")
	}
	return nil
}

func printPreview(p *core.ImportPreview) error {
	if jsonOutput {
		return printJSON(p)
	}

	pterm.DefaultSection.Println("Import preview")
	pterm.Info.Printfln("Rows: %d  Create: %d  Update: %d  Skip: %d  Errors: %d",
		p.TotalRows, p.CreateCount, p.UpdateCount, p.SkipCount, p.ErrorCount)

	rows := [][]string{{"Row", "Product", "Action"}}
	for i, r := range p.Records {
		if i == maxTableRows {
			break
		}
		rows = append(rows, []string{strconv.Itoa(r.Row), r.Product, string(r.Action)})
	}
	for _, e := range p.Errors {
		if len(rows) > maxTableRows {
			break
		}
		rows = append(rows, []string{strconv.Itoa(e.Row), e.Product, "error: " + e.Message})
	}
	if len(rows) > 1 {
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	}
	return nil
}

func printBatchSummary(title string, s *core.BatchSummary) error {
	if jsonOutput {
		return printJSON(s)
	}

	if !s.Success {
		pterm.Error.Printfln("%s failed: %s", title, s.Error)
		return nil
	}
	if s.Message != "" {
		pterm.Warning.Println(s.Message)
	}

	detail := ""
	if s.PercentChange != nil {
		detail = fmt.Sprintf(" (%+g%%, category %s)", *s.PercentChange, s.Category)
	}
	pterm.Success.Printfln("%s%s: %d updated, %d failed", title, detail, s.UpdatedCount, s.ErrorCount)
	for _, n := range s.Notes {
		pterm.Warning.Printfln("%s (%s): %s", n.Product, n.ProductID, n.Message)
	}

	if len(s.Errors) > 0 {
		rows := [][]string{{"Product ID", "Product", "Error"}}
		for i, e := range s.Errors {
			if i == maxTableRows {
				break
			}
			rows = append(rows, []string{e.ProductID, e.Product, e.Message})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	}
	return nil
}
