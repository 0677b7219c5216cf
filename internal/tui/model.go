package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MereWhiplash/neurocat/internal/ansi"
	"github.com/MereWhiplash/neurocat/internal/intensity"
	"github.com/MereWhiplash/neurocat/internal/rgb"
	"github.com/MereWhiplash/neurocat/internal/service"
	"github.com/MereWhiplash/neurocat/internal/types"
)

// Port is the TUI-facing subset of the neurocat service.
type Port interface {
	Colorize(ctx context.Context, text string, multicolor bool) (string, error)
	Scores(ctx context.Context, word string, limit int) (*service.WordScores, error)
	Spectrum(ctx context.Context, word string, mapping intensity.Strategy) (*service.SpectrumResult, error)
}

const (
	topColors  = 8
	gaugeWidth = 20
)

// Model is the Bubble Tea model for interactive colorizing. Typed text is
// colorized on Enter; a single word also shows its spectrum and strongest
// colors.
type Model struct {
	service    Port
	input      textinput.Model
	viewport   viewport.Model
	mapping    intensity.Strategy
	multicolor bool
	content    string
	status     string
	ready      bool
	lastText   string
}

// New creates a new TUI model instance.
func New(svc Port, mapping intensity.Strategy, multicolor bool) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a word or sentence and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:    svc,
		input:      ti,
		viewport:   vp,
		mapping:    mapping,
		multicolor: multicolor,
		content:    "Nothing colorized yet.",
		status:     "Tab: next mapping  Ctrl+T: toggle multicolor  Ctrl+C: quit",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.content)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text != "" {
				m.lastText = text
				m.render()
				m.input.SetValue("")
				return m, nil
			}
		case "tab":
			m.mapping = nextMapping(m.mapping)
			m.status = fmt.Sprintf("Mapping: %s", m.mapping)
			m.render()
			return m, nil
		case "ctrl+t":
			m.multicolor = !m.multicolor
			m.status = fmt.Sprintf("Multicolor: %v", m.multicolor)
			m.render()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and the latest result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("neurocat") +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(fmt.Sprintf("  mapping=%s multicolor=%v", m.mapping, m.multicolor))
	results := resultBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + results + "\n" + input + "\n" + status
}

// Content returns the text currently shown in the result pane.
func (m Model) Content() string { return m.content }

func (m *Model) render() {
	if m.lastText == "" {
		return
	}
	content, err := m.renderText(context.Background(), m.lastText)
	if err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	m.content = content
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

func (m Model) renderText(ctx context.Context, text string) (string, error) {
	colored, err := m.service.Colorize(ctx, text, m.multicolor)
	if err != nil {
		return "", err
	}
	if strings.ContainsAny(text, " \t") {
		return colored, nil
	}

	var sb strings.Builder
	sb.WriteString(colored)
	sb.WriteString("\n\n")

	scores, err := m.service.Scores(ctx, text, topColors)
	if errors.Is(err, types.ErrNotFound) {
		sb.WriteString(dimStyle.Render("not in the database"))
		return sb.String(), nil
	}
	if err != nil {
		return "", err
	}

	spec, err := m.service.Spectrum(ctx, scores.Key, m.mapping)
	switch {
	case err == nil:
		sb.WriteString(dimStyle.Render(spec.Statistics))
		sb.WriteString("\n")
		sb.WriteString(strings.Join(spec.Lines, "\n"))
		sb.WriteString("\n\n")
	case errors.Is(err, types.ErrNotFound):
		// palette without the reference colors; scores still apply
	default:
		return "", err
	}

	sb.WriteString(renderScores(scores))
	return sb.String(), nil
}

func renderScores(ws *service.WordScores) string {
	var sb strings.Builder
	title := fmt.Sprintf("%s  abstract=%.3f", ws.Key, ws.Abstract)
	if ws.Colorfulness != nil {
		title += fmt.Sprintf("  colorfulness=%.3f", *ws.Colorfulness)
	}
	sb.WriteString(titleStyle.Render(title))
	for _, cs := range ws.Colors {
		col, err := rgb.ParseHex(cs.Color)
		if err != nil {
			continue
		}
		fmt.Fprintf(&sb, "\n%s %s %s %+.4f",
			ansi.Colorize(col, col, "  "),
			cs.Color,
			ansi.Colorize(col, rgb.Black, ansi.Gauge(max(cs.Score, 0), gaugeWidth)),
			cs.Score)
	}
	return sb.String()
}

func nextMapping(cur intensity.Strategy) intensity.Strategy {
	all := intensity.Strategies()
	for i, s := range all {
		if s == cur {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
