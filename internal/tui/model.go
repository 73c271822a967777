package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docchat/internal/textutil"
	"docchat/internal/tool"
)

// RouterPort is the TUI-facing subset of the tool router.
type RouterPort interface {
	Decide(query string) string
	Run(ctx context.Context, query string) (tool.Result, error)
}

// routedMsg carries a finished router call back into Update.
type routedMsg struct {
	query  string
	tool   string
	result tool.Result
	err    error
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	router    RouterPort
	ctx       context.Context
	cancel    context.CancelFunc
	input     textinput.Model
	viewport  viewport.Model
	pages     []string
	toolName  string
	summary   string
	status    string
	cursor    int
	ready     bool
	busy      bool
	lastQuery string
}

// New creates a new TUI model instance.
func New(router RouterPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask something and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	return Model{router: router, ctx: ctx, cancel: cancel, input: ti, viewport: vp, summary: summary, status: "Loaded. Short queries go to the encyclopedia, longer ones to your documents."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// route runs the query off the update loop; quitting cancels it.
func (m Model) route(q string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		name := m.router.Decide(q)
		res, err := m.router.Run(ctx, q)
		return routedMsg{query: q, tool: name, result: res, err: err}
	}
}

// Update handles key, window and routing events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // header + summary
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentPage())
		return m, nil
	case routedMsg:
		m.busy = false
		m.toolName = msg.tool
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.pages = nil
		} else {
			m.status = fmt.Sprintf("%s answered %q", msg.tool, msg.query)
			m.pages = pagesOf(msg.result)
			m.cursor = 0
			m.lastQuery = msg.query
		}
		m.viewport.SetContent(m.renderCurrentPage())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			m.cancel()
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.busy {
				m.busy = true
				m.status = fmt.Sprintf("Asking %s...", m.router.Decide(q))
				return m, m.route(q)
			}
		case "down":
			if len(m.pages) > 0 {
				m.cursor = (m.cursor + 1) % len(m.pages)
				m.viewport.SetContent(m.renderCurrentPage())
				return m, nil
			}
		case "up":
			if len(m.pages) > 0 {
				m.cursor = (m.cursor - 1 + len(m.pages)) % len(m.pages)
				m.viewport.SetContent(m.renderCurrentPage())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Doc Chat")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

// pagesOf splits a result into pages: one per fragment, or the whole text.
func pagesOf(r tool.Result) []string {
	if len(r.Fragments) > 0 {
		return r.Fragments
	}
	if strings.TrimSpace(r.Text) == "" {
		return nil
	}
	return []string{r.Text}
}

func (m Model) renderCurrentPage() string {
	if len(m.pages) == 0 {
		return "No results yet."
	}
	title := fmt.Sprintf("[%s] %d/%d", m.toolName, m.cursor+1, len(m.pages))
	body := highlightBestSentence(m.pages[m.cursor], m.lastQuery)
	return title + "\n\n" + body
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// highlightBestSentence marks the sentence sharing the most words with query.
// Every sentence of text is kept, including an unterminated tail.
func highlightBestSentence(text, query string) string {
	sentences := textutil.Sentences(text)
	if len(sentences) == 0 {
		return text
	}
	qWords := textutil.WordSet(query)
	if len(qWords) == 0 {
		return strings.Join(sentences, " ")
	}
	best, bestScore := 0, -1
	for i, s := range sentences {
		score := 0
		for w := range textutil.WordSet(s) {
			if _, ok := qWords[w]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	sentences[best] = highlightStyle.Render(sentences[best])
	return strings.Join(sentences, " ")
}
