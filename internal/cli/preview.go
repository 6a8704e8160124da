package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/perimeter/pkg/animator"
	"github.com/matzehuels/perimeter/pkg/layout"
	"github.com/matzehuels/perimeter/pkg/render"
	"github.com/matzehuels/perimeter/pkg/scheduler"
)

// previewFooter is the number of terminal rows used by the status line.
const previewFooter = 1

var previewStatusStyle = lipgloss.NewStyle().Foreground(colorGray)

// refreshMsg is one host refresh callback.
type refreshMsg time.Time

// =============================================================================
// previewModel - interactive terminal animation
// =============================================================================

// previewModel drives an animator from terminal events. Mouse motion moves
// the cursor; losing focus or leaving the canvas counts as pointer leave.
type previewModel struct {
	anim    *animator.Animator
	loop    *scheduler.Loop
	refresh time.Duration
	color   bool

	cols, rows int
	paused     bool
	quitting   bool
}

func newPreviewModel(anim *animator.Animator, refresh time.Duration, color bool) previewModel {
	return previewModel{
		anim:    anim,
		loop:    scheduler.NewLoop(anim.Config().FPS, anim.Tick),
		refresh: refresh,
		color:   color,
		cols:    80,
		rows:    24,
	}
}

func (m previewModel) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

func (m previewModel) Init() tea.Cmd {
	return m.tick()
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "r":
			m.anim.Remeasure()
		}
	case tea.WindowSizeMsg:
		m.cols = max(1, msg.Width)
		m.rows = max(1, msg.Height-previewFooter)
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionMotion && msg.Action != tea.MouseActionPress {
			break
		}
		if msg.Y >= m.rows {
			m.anim.LeaveCursor()
			break
		}
		x, y := m.toContainer(msg.X, msg.Y)
		m.anim.MoveCursor(x, y, time.Now())
	case tea.BlurMsg:
		m.anim.LeaveCursor()
	case refreshMsg:
		if !m.paused {
			m.loop.Offer(time.Time(msg))
		}
		return m, m.tick()
	}
	return m, nil
}

// toContainer maps a terminal cell to the container point at its center.
func (m previewModel) toContainer(col, row int) (float64, float64) {
	c := m.anim.Frame().Container
	return (float64(col) + 0.5) * c.Width / float64(m.cols),
		(float64(row) + 0.5) * c.Height / float64(m.rows)
}

func (m previewModel) View() string {
	if m.quitting {
		return ""
	}
	f := m.anim.Frame()
	var opts []render.TextOption
	if !m.color {
		opts = append(opts, render.WithPlainText())
	}

	var b strings.Builder
	b.WriteString(render.RenderText(f, m.cols, m.rows, opts...))
	b.WriteByte('\n')

	frames, skipped := m.loop.Stats()
	status := fmt.Sprintf("%d sections · %d hinges · tick %d · %d/%d frames run",
		len(f.State.Boxes), len(f.State.Hinges), m.anim.Ticks(), frames, frames+skipped)
	if m.paused {
		status += " · paused"
	}
	status += "  (space pause · r remeasure · q quit)"
	b.WriteString(previewStatusStyle.MaxWidth(m.cols).Render(status))
	return b.String()
}

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		flags renderFlags
		plain bool
	)

	cmd := &cobra.Command{
		Use:   "preview SCENE",
		Short: "Animate a scene in the terminal",
		Long: `Preview runs the animation live in the terminal. Move the mouse over the
canvas to push the corner nodes; switch away from the terminal to release
the cursor.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			src, _, err := layout.Load(args[0])
			if err != nil {
				return err
			}
			anim, err := animator.New(src, flags.animatorConfig(cmd, cfg.Animator),
				animator.WithJitter(animator.NewJitter(flags.seed)),
				animator.WithLogger(loggerFromContext(cmd.Context())))
			if err != nil {
				return err
			}

			p := tea.NewProgram(newPreviewModel(anim, scheduler.DefaultRefresh, !plain),
				tea.WithContext(cmd.Context()),
				tea.WithAltScreen(),
				tea.WithMouseAllMotion(),
				tea.WithReportFocus())
			_, err = p.Run()
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&plain, "plain", false, "draw without colors")
	return cmd
}
