package tui

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rapport/internal/domain"
	"rapport/internal/quotes"
	"rapport/internal/service"
)

// AssistantPort is the TUI-facing subset of the analysis service.
type AssistantPort interface {
	Analyze(ctx context.Context, src domain.Source) (string, error)
	Ask(ctx context.Context, src domain.Source, question string, progress service.ProgressFunc) (service.AnswerResult, error)
}

// Exporter saves an answer to disk and returns the written path.
type Exporter interface {
	SaveText(filename, answer string) (string, error)
	SavePDF(filename, answer string) (string, error)
}

// Model is the Bubble Tea model for the report assistant.
type Model struct {
	service  AssistantPort
	exporter Exporter
	quotes   domain.QuoteProvider
	source   domain.Source
	ticker   string

	input    textinput.Model
	viewport viewport.Model
	summary  string
	status   string
	answer   string
	busy     bool
	ready    bool
	exportN  int

	progressDone  *atomic.Int64
	progressTotal *atomic.Int64
}

// New creates a TUI model for one loaded report. exporter and quotes may
// be nil; the corresponding commands then report themselves unavailable.
func New(svc AssistantPort, exporter Exporter, quotes domain.QuoteProvider, src domain.Source, summary, ticker string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ställ en fråga, eller skriv /analys för full analys"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:       svc,
		exporter:      exporter,
		quotes:        quotes,
		source:        src,
		ticker:        ticker,
		input:         ti,
		viewport:      vp,
		summary:       summary,
		status:        "Rapporten är laddad. Ställ en fråga.",
		progressDone:  &atomic.Int64{},
		progressTotal: &atomic.Int64{},
	}
}

type answerMsg struct {
	result service.AnswerResult
	err    error
}

type analysisMsg struct {
	text string
	err  error
}

type progressTickMsg struct{}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header, summary, status, query frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil

	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Fel: " + msg.err.Error()
		} else {
			m.answer = msg.result.Answer
			m.status = evaluationStatus(msg.result.Evaluation)
		}
		m.viewport.SetContent(m.renderAnswer())
		return m, nil

	case analysisMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Fel: " + msg.err.Error()
		} else {
			m.answer = msg.text
			m.status = "Full analys klar."
		}
		m.viewport.SetContent(m.renderAnswer())
		return m, nil

	case progressTickMsg:
		if !m.busy {
			return m, nil
		}
		if total := m.progressTotal.Load(); total > 0 {
			m.status = fmt.Sprintf("Indexerar rapporten... %d/%d", m.progressDone.Load(), total)
		}
		return m, tickProgress()

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if m.busy {
				return m, nil
			}
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return m, nil
			}
			m.input.SetValue("")
			if q == "/analys" {
				m.busy = true
				m.status = "Analyserar hela rapporten..."
				return m, m.analyzeCmd()
			}
			m.busy = true
			m.status = "Söker i rapporten..."
			m.progressDone.Store(0)
			m.progressTotal.Store(0)
			return m, tea.Batch(m.askCmd(q), tickProgress())
		case "ctrl+s":
			return m.export(false)
		case "ctrl+p":
			return m.export(true)
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) askCmd(question string) tea.Cmd {
	done, total := m.progressDone, m.progressTotal
	svc, src := m.service, m.source
	provider, ticker := m.quotes, m.ticker
	return func() tea.Msg {
		if ticker != "" && provider != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if quote, err := provider.Lookup(ctx, ticker); err == nil {
				question = quotes.Hint(quote) + question
			}
			cancel()
		}
		res, err := svc.Ask(context.Background(), src, question, func(d, t int) {
			done.Store(int64(d))
			total.Store(int64(t))
		})
		return answerMsg{result: res, err: err}
	}
}

func (m Model) analyzeCmd() tea.Cmd {
	svc, src := m.service, m.source
	return func() tea.Msg {
		text, err := svc.Analyze(context.Background(), src)
		return analysisMsg{text: text, err: err}
	}
}

func tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg { return progressTickMsg{} })
}

func (m Model) export(asPDF bool) (tea.Model, tea.Cmd) {
	if m.answer == "" {
		m.status = "Inget svar att exportera ännu."
		return m, nil
	}
	if m.exporter == nil {
		m.status = "Export är inte konfigurerad."
		return m, nil
	}
	m.exportN++
	name := fmt.Sprintf("svar_%d", m.exportN)
	var path string
	var err error
	if asPDF {
		path, err = m.exporter.SavePDF(name+".pdf", m.answer)
	} else {
		path, err = m.exporter.SaveText(name+".txt", m.answer)
	}
	if err != nil {
		m.status = "Export misslyckades: " + err.Error()
	} else {
		m.status = "Sparade " + path
	}
	return m, nil
}

// View renders the TUI layout and the current answer.
func (m Model) View() string {
	if !m.ready {
		return "Laddar..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Rapportassistenten")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	answer := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + answer + "\n" + input + "\n" + status
}

func (m Model) renderAnswer() string {
	if m.answer == "" {
		return "Inga svar ännu. Ställ en fråga om rapporten,\neller skriv /analys för en fullständig genomgång.\n\nctrl+s sparar svaret som text, ctrl+p som PDF."
	}
	return m.answer
}

func evaluationStatus(ev domain.EvaluationResult) string {
	if !ev.Available {
		if ev.Reason != "" {
			return "Svar klart. Utvärdering ej tillgänglig: " + ev.Reason
		}
		return "Svar klart."
	}
	return fmt.Sprintf("Svar klart. Faktatrohet %.2f, relevans %.2f", ev.Faithfulness, ev.AnswerRelevancy)
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
