package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fishbone/pkg/diagram"
	"github.com/matzehuels/fishbone/pkg/pipeline"
	"github.com/matzehuels/fishbone/pkg/render/fishbone/sink"
	"github.com/matzehuels/fishbone/pkg/render/fishbone/tree"
	"github.com/matzehuels/fishbone/pkg/trigger"
)

const (
	previewStep     = 50.0
	previewMinWidth = 300.0
)

var (
	previewKeyStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	previewDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	previewWarnStyle = lipgloss.NewStyle().Foreground(colorYellow)
)

// previewCommand creates the preview command: an interactive terminal view
// of the layout that re-runs the engine as the viewport is resized.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		flags layoutFlags
		save  string
	)

	cmd := &cobra.Command{
		Use:   "preview [diagram]",
		Short: "Interactively resize a diagram and inspect its layout",
		Long: `Interactively resize a diagram and inspect its layout.

Preview keeps the visual tree in memory and re-runs the layout engine on
every resize, showing where each branch label and guide line ends up along
with any layout warnings. Edits to the diagram file are picked up live.

Keys: ←/→ resize  s save SVG  q quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.resolve(&flags)
			if err != nil {
				return err
			}
			if opts.IsTree() {
				return fmt.Errorf("preview supports the fishbone view only")
			}
			if args[0] == "-" {
				return fmt.Errorf("preview reads keys from stdin; pass a file or URL")
			}
			opts.Source = args[0]
			if save == "" {
				save = basePath("", opts.Source) + ".svg"
			}
			return c.runPreview(cmd.Context(), opts, save)
		},
	}

	cmd.Flags().StringVar(&save, "save", "", "SVG path written by the s key (default: <input>.svg)")
	flags.register(cmd, false)

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, opts pipeline.Options, save string) error {
	// The TUI owns the terminal; warnings are shown in the view instead.
	logger := newLogger(io.Discard, LogInfo)
	opts.Logger = logger

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session := &previewSession{opts: opts}
	model := newPreviewModel(opts.Source, opts.Width, save)
	prog := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	loop := trigger.NewLoop(func(ctx context.Context, ev trigger.Event) error {
		msg, err := session.pass(ctx, ev)
		if err != nil {
			return err
		}
		prog.Send(msg)
		return nil
	}, logger)
	loop.OnError = func(ev trigger.Event, err error) {
		prog.Send(previewErrMsg{err: err})
	}
	model.trigger = loop.Trigger

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = loop.Run(ctx)
	}()
	if !isRemote(opts.Source) {
		if w, err := trigger.NewFileWatcher(opts.Source, trigger.DefaultDebounce); err == nil {
			defer w.Close()
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = w.Run(ctx, loop.Trigger)
			}()
		}
	}

	final, err := prog.Run()
	interrupted := ctx.Err() != nil
	cancel()
	wg.Wait()
	if err != nil && !interrupted {
		return fmt.Errorf("preview: %w", err)
	}
	if m, ok := final.(*previewModel); ok && m.saved != "" {
		printSuccess("Saved")
		printFile(m.saved)
	}
	return nil
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// =============================================================================
// previewSession - tree state driven by the trigger loop
// =============================================================================

// previewSession owns the visual tree. The trigger loop runs passes one at
// a time, so no locking is needed.
type previewSession struct {
	opts pipeline.Options
	tree *tree.Tree
	d    *diagram.Diagram
}

type previewLayoutMsg struct {
	layout   diagram.Layout
	kind     trigger.Kind
	causes   int
	hidden   int
	duration time.Duration
}

type previewErrMsg struct{ err error }

func (s *previewSession) pass(ctx context.Context, ev trigger.Event) (previewLayoutMsg, error) {
	start := time.Now()
	if ev.Width > 0 {
		s.opts.Width = ev.Width
	}

	if s.tree == nil || ev.Kind != trigger.Resized {
		d, err := pipeline.Load(ctx, nil, s.opts)
		if err != nil {
			return previewLayoutMsg{}, err
		}
		t, err := pipeline.BuildTree(d, s.opts)
		if err != nil {
			return previewLayoutMsg{}, err
		}
		s.d, s.tree = d, t
	} else {
		s.tree.Resize(s.opts.Width)
	}

	l, err := pipeline.Relayout(ctx, s.tree, s.opts)
	if err != nil {
		return previewLayoutMsg{}, err
	}
	return previewLayoutMsg{
		layout:   l,
		kind:     ev.Kind,
		causes:   s.d.CauseCount(),
		hidden:   s.tree.Hidden,
		duration: time.Since(start),
	}, nil
}

// =============================================================================
// previewModel - bubbletea model
// =============================================================================

type previewModel struct {
	source  string
	width   float64
	save    string
	trigger func(trigger.Event)

	last   *previewLayoutMsg
	err    error
	status string
	saved  string
}

func newPreviewModel(source string, width float64, save string) *previewModel {
	return &previewModel{source: source, width: width, save: save}
}

func (m *previewModel) Init() tea.Cmd { return nil }

func (m *previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.resize(-previewStep)
		case "right", "l":
			m.resize(previewStep)
		case "s":
			m.saveSVG()
		}
	case previewLayoutMsg:
		m.last = &msg
		m.err = nil
	case previewErrMsg:
		m.err = msg.err
	}
	return m, nil
}

func (m *previewModel) resize(delta float64) {
	w := math.Min(pipeline.MaxWidth, math.Max(previewMinWidth, m.width+delta))
	if w == m.width {
		return
	}
	m.width = w
	m.status = ""
	if m.trigger != nil {
		m.trigger(trigger.Event{Kind: trigger.Resized, Width: w})
	}
}

func (m *previewModel) saveSVG() {
	if m.last == nil {
		return
	}
	if err := os.WriteFile(m.save, sink.RenderSVG(m.last.layout), 0o644); err != nil {
		m.err = err
		return
	}
	m.saved = m.save
	m.status = "saved " + m.save
}

func (m *previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Fishbone Preview"))
	b.WriteString("  ")
	b.WriteString(previewDimStyle.Render(m.source))
	b.WriteString("\n")
	b.WriteString(previewDimStyle.Render("←/→ resize  s save SVG  q quit"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("width %s", previewKeyStyle.Render(fmt.Sprintf("%.0fpx", m.width))))
	if m.last != nil {
		l := m.last.layout
		b.WriteString(previewDimStyle.Render(fmt.Sprintf("  ·  %.0f×%.0f  ·  %d causes  ·  %s pass in %s",
			l.Width, l.Height, m.last.causes, m.last.kind, m.last.duration.Round(time.Microsecond))))
		if m.last.hidden > 0 {
			b.WriteString(previewDimStyle.Render(fmt.Sprintf("  ·  %d hidden", m.last.hidden)))
		}
	}
	b.WriteString("\n\n")

	if m.last == nil && m.err == nil {
		b.WriteString(previewDimStyle.Render("laying out..."))
		return b.String()
	}
	if m.last != nil {
		b.WriteString(branchTable(m.last.layout).Render())
		b.WriteString("\n")
		for _, w := range m.last.layout.Warnings {
			b.WriteString(previewWarnStyle.Render(iconWarning + " " + w))
			b.WriteString("\n")
		}
	}
	if m.err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + m.err.Error() + "\n")
	}
	if m.status != "" {
		b.WriteString(styleIconSuccess.Render(iconSuccess) + " " + m.status + "\n")
	}
	return b.String()
}

// branchTable lists where the engine placed each branch label relative to
// the start of its guide line.
func branchTable(l diagram.Layout) *table.Table {
	type key struct {
		side   string
		branch int
	}
	lines := make(map[key]diagram.Node)
	for _, n := range l.NodesByRole(tree.RoleGuideLine.String()) {
		lines[key{n.Side, n.Branch}] = n
	}
	containers := make(map[key]int)
	for _, n := range l.NodesByRole(tree.RoleCauseContainer.String()) {
		containers[key{n.Side, n.Branch}]++
	}

	var rows [][]string
	for _, n := range l.NodesByRole(tree.RoleBranchLabel.String()) {
		k := key{n.Side, n.Branch}
		line, ok := lines[k]
		gap := "-"
		if ok {
			gap = fmt.Sprintf("%+.1f", line.X-(n.X+n.Width))
		}
		rows = append(rows, []string{
			n.Side,
			fmt.Sprintf("%d", n.Branch),
			truncate(n.Text, 28),
			fmt.Sprintf("%.1f", n.X),
			fmt.Sprintf("%.1f", line.X),
			gap,
			fmt.Sprintf("%d", containers[k]),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Side", "#", "Label", "Label x", "Line x", "Gap", "Causes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 2 {
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
