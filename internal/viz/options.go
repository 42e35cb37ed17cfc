package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/gridsearch/internal/config"
	"github.com/san-kum/gridsearch/internal/playback"
)

var optionFields = []string{"tile_x", "tile_y", "grid_x", "grid_y", "steps_per_second"}

// optionsForm edits a copy of the graph config. Nothing reaches the session
// until the form is applied and the copy validates.
type optionsForm struct {
	values  map[string]int
	cursor  int
	editing bool
	editBuf string
	err     error
}

func newOptionsForm(cfg config.GraphConfig) *optionsForm {
	return &optionsForm{values: map[string]int{
		"tile_x":           cfg.TileSize.X,
		"tile_y":           cfg.TileSize.Y,
		"grid_x":           cfg.GridSize.X,
		"grid_y":           cfg.GridSize.Y,
		"steps_per_second": cfg.StepsPerSecond,
	}}
}

func (f *optionsForm) config() config.GraphConfig {
	return config.GraphConfig{
		TileSize:       config.Size{X: f.values["tile_x"], Y: f.values["tile_y"]},
		GridSize:       config.Size{X: f.values["grid_x"], Y: f.values["grid_y"]},
		StepsPerSecond: f.values["steps_per_second"],
	}
}

func (m Model) optionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.options
	if f.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.Atoi(f.editBuf); err == nil {
				f.values[optionFields[f.cursor]] = v
			}
			f.editing, f.editBuf = false, ""
		case "esc":
			f.editing, f.editBuf = false, ""
		case "backspace":
			if len(f.editBuf) > 0 {
				f.editBuf = f.editBuf[:len(f.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
				f.editBuf += s
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.options = nil
	case "up", "k":
		if f.cursor > 0 {
			f.cursor--
		}
	case "down", "j":
		if f.cursor < len(optionFields)-1 {
			f.cursor++
		}
	case "enter", " ":
		f.editing, f.editBuf = true, strconv.Itoa(f.values[optionFields[f.cursor]])
	case "left", "h":
		f.values[optionFields[f.cursor]]--
	case "right", "l":
		f.values[optionFields[f.cursor]]++
	case "s", "a":
		cfg := f.config()
		if err := m.sess.Send(playback.ApplyOptions(cfg)); err != nil {
			f.err = err
			return m, nil
		}
		m.notice = fmt.Sprintf("applied %dx%d grid", cfg.GridSize.X, cfg.GridSize.Y)
		m.options = nil
	}
	return m, nil
}

func (f *optionsForm) View(theme Theme) string {
	var b strings.Builder
	h := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	b.WriteString("\n\n    " + h.Render("OPTIONS") + "\n    " + Subtle.Render("applying restarts the search") + "\n    " + Subtle.Render("─────────────────────────") + "\n\n")
	for i, name := range optionFields {
		valStr := fmt.Sprintf("%6d", f.values[name])
		if f.editing && i == f.cursor {
			valStr = fmt.Sprintf("%6s", f.editBuf+"_")
		}
		if i == f.cursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n",
				lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("▸"),
				lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(fmt.Sprintf("%-18s", name)),
				lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n",
				lipgloss.NewStyle().Foreground(theme.Muted).Render(fmt.Sprintf("  %-18s", name)),
				lipgloss.NewStyle().Foreground(theme.Muted).Render(valStr)))
		}
	}
	if f.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(theme.Error).Render(f.err.Error()) + "\n")
	}
	b.WriteString("\n    " + KeyHint.Render("j/k select  h/l adjust  enter edit  s apply  esc back") + "\n")
	return b.String()
}
