package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/born-ml/convlab/internal/envconfig"
	"github.com/born-ml/convlab/internal/format"
	"github.com/born-ml/convlab/internal/nn"
	"github.com/born-ml/convlab/internal/session"
	"github.com/born-ml/convlab/internal/tensor"
)

func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("  ")
	return table
}

func renderConfig(w io.Writer, cfg session.Config) {
	table := newTable(w)
	table.SetHeader([]string{"SETTING", "VALUE"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk([][]string{
		{"inputHeight", strconv.Itoa(cfg.InputHeight)},
		{"inputWidth", strconv.Itoa(cfg.InputWidth)},
		{"inputChannels", strconv.Itoa(cfg.InputChannels)},
		{"numFilters", strconv.Itoa(cfg.NumFilters)},
		{"kernelSize", strconv.Itoa(cfg.KernelSize)},
		{"stride", strconv.Itoa(cfg.Stride)},
		{"padding", strconv.Itoa(cfg.Padding)},
		{"sparsity", strconv.Itoa(cfg.Sparsity) + "%"},
	})
	table.Render()
	fmt.Fprintln(w)
}

// renderMatrix prints a titled grid. Empty matrices print a placeholder.
func renderMatrix(w io.Writer, title string, m tensor.Matrix) {
	rows, cols := m.Dims()
	fmt.Fprintf(w, "%s (%dx%d)\n", title, rows, cols)
	if m.IsEmpty() {
		fmt.Fprintln(w, "  no output")
		fmt.Fprintln(w)
		return
	}

	table := newTable(w)
	for _, row := range m {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = format.Cell(v)
		}
		table.Append(cells)
	}
	table.Render()
	fmt.Fprintln(w)
}

func renderSnapshot(w io.Writer, snap session.Snapshot, intermediates bool) {
	for i, in := range snap.Inputs {
		renderMatrix(w, fmt.Sprintf("input channel %d", i), in)
	}

	for i, f := range snap.Filters {
		for k, kernel := range f.Kernels {
			renderMatrix(w, fmt.Sprintf("filter %s kernel %d", f.ID, k), kernel.Weights)
		}
		fmt.Fprintf(w, "filter %s bias %s\n\n", f.ID, format.Cell(f.Bias))

		if i >= len(snap.Outputs) {
			continue
		}
		renderOutput(w, f, snap.Outputs[i], intermediates)
	}
}

func renderOutput(w io.Writer, f nn.Filter, out nn.FilterOutput, intermediates bool) {
	if !out.OK() {
		fmt.Fprintf(w, "feature map %s: %v\n\n", f.ID, out.Err)
		return
	}

	if intermediates {
		for k, partial := range out.Intermediates {
			renderMatrix(w, fmt.Sprintf("filter %s channel %d partial", f.ID, k), partial)
		}
	}
	renderMatrix(w, fmt.Sprintf("feature map %s", f.ID), out.Final)
}

func renderOps(w io.Writer, r nn.OpsReport) {
	table := newTable(w)
	table.SetHeader([]string{"OPERATIONS", "COUNT"})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	table.AppendBulk([][]string{
		{"output shape", r.OutputShape()},
		{"multiplications", format.HumanNumber(r.Mults)},
		{"additions", format.HumanNumber(r.Adds)},
		{"  kernel sums", format.HumanNumber(r.Breakdown.Conv)},
		{"  channel merge", format.HumanNumber(r.Breakdown.Merge)},
		{"  bias", format.HumanNumber(r.Breakdown.Bias)},
		{"total", format.HumanNumber(r.Total)},
		{"zero-weight operations", format.HumanNumber(r.ZeroTotal)},
	})
	table.Render()
}

func renderEnv(w io.Writer, vars map[string]envconfig.EnvVar) {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	slices.Sort(names)

	table := newTable(w)
	table.SetHeader([]string{"NAME", "VALUE", "DESCRIPTION"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, name := range names {
		v := vars[name]
		table.Append([]string{v.Name, fmt.Sprintf("%v", v.Value), v.Description})
	}
	table.Render()
}
