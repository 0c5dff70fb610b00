package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tunepull/tunepull/internal/downloader"
)

// tuiSink renders download progress with Bubble Tea. It implements
// downloader.ProgressSink; events are forwarded to the running program.
type tuiSink struct {
	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
	level   downloader.LogLevel
}

// newTUISink starts the renderer on stderr. Call Stop when the batch ends.
func newTUISink(ctx context.Context, level downloader.LogLevel) *tuiSink {
	sink := &tuiSink{
		done:  make(chan struct{}),
		level: level,
	}
	program := tea.NewProgram(
		newBatchModel(),
		tea.WithOutput(os.Stderr),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	)
	sink.program = program

	go func() {
		defer close(sink.done)
		_, _ = program.Run()
	}()
	return sink
}

// Stop shuts the renderer down and waits for the final frame.
func (s *tuiSink) Stop() {
	s.send(batchDoneMsg{})
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
	}
}

func (s *tuiSink) send(msg tea.Msg) {
	s.mu.Lock()
	program := s.program
	s.mu.Unlock()
	if program != nil {
		program.Send(msg)
	}
}

func (s *tuiSink) BeginItem(index, total int, title string, size int64) {
	s.send(itemBeginMsg{index: index, total: total, title: title, size: size})
}

func (s *tuiSink) Progress(written, size int64) {
	s.send(itemProgressMsg{written: written, size: size})
}

func (s *tuiSink) EndItem(result downloader.DownloadResult) {
	s.send(itemEndMsg{result: result})
}

func (s *tuiSink) Log(level downloader.LogLevel, msg string) {
	if level < s.level {
		return
	}
	s.send(logLineMsg{level: level, text: msg})
}

func (s *tuiSink) Summary(total, ok, failed, skipped int, bytes int64) {
	s.send(summaryMsg{total: total, ok: ok, failed: failed, skipped: skipped, bytes: bytes})
}

type itemBeginMsg struct {
	index int
	total int
	title string
	size  int64
}

type itemProgressMsg struct {
	written int64
	size    int64
}

type itemEndMsg struct {
	result downloader.DownloadResult
}

type logLineMsg struct {
	level downloader.LogLevel
	text  string
}

type summaryMsg struct {
	total   int
	ok      int
	failed  int
	skipped int
	bytes   int64
}

type batchDoneMsg struct{}

var (
	tuiSpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FDBFF"))
	tuiTitleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F8F8F2")).Bold(true)
	tuiCountStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6ADC8"))
	tuiBytesStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6ADC8")).Faint(true)
)

// batchModel shows one active transfer plus a scrollback of finished items,
// one line each.
type batchModel struct {
	bar     progressbar.Model
	spin    spinner.Model
	width   int
	active  bool
	index   int
	total   int
	title   string
	written int64
	size    int64
	history []string
	summary string
	quit    bool
}

func newBatchModel() *batchModel {
	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = tuiSpinnerStyle
	bar := progressbar.New(
		progressbar.WithGradient("#FF006E", "#00F5FF"),
		progressbar.WithWidth(40),
	)
	return &batchModel{bar: bar, spin: spin, width: 80}
}

func (m *batchModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m *batchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		width := msg.Width - 20
		if width < 10 {
			width = 10
		}
		if width > 60 {
			width = 60
		}
		m.bar.Width = width
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.quit = true
			return m, tea.Quit
		}
	case itemBeginMsg:
		m.active = true
		m.index = msg.index
		m.total = msg.total
		m.title = msg.title
		m.written = 0
		m.size = msg.size
		return m, m.bar.SetPercent(0)
	case itemProgressMsg:
		m.written = msg.written
		m.size = msg.size
		if m.size > 0 {
			percent := float64(m.written) / float64(m.size)
			if percent > 1 {
				percent = 1
			}
			return m, m.bar.SetPercent(percent)
		}
	case itemEndMsg:
		m.active = false
		m.history = append(m.history, renderResultLine(msg.result))
		if len(m.history) > 200 {
			m.history = m.history[len(m.history)-200:]
		}
	case logLineMsg:
		m.history = append(m.history, renderLogLine(msg.level, msg.text))
	case summaryMsg:
		m.summary = fmt.Sprintf("%d items: %s %d, %s %d, %s %d (%s)",
			msg.total,
			okStyle.Render("ok"), msg.ok,
			errorStyle.Render("failed"), msg.failed,
			warnStyle.Render("skipped"), msg.skipped,
			humanBytes(msg.bytes))
	case batchDoneMsg:
		m.quit = true
		return m, tea.Quit
	case progressbar.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progressbar.Model)
		return m, cmd
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *batchModel) View() string {
	var b strings.Builder

	start := 0
	if len(m.history) > 12 {
		start = len(m.history) - 12
	}
	for _, line := range m.history[start:] {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if m.active {
		count := tuiCountStyle.Render(fmt.Sprintf("[%d/%d]", m.index, m.total))
		title := tuiTitleStyle.Render(truncateLine(m.title, 48))
		b.WriteString(fmt.Sprintf("%s %s %s\n", m.spin.View(), count, title))

		line := m.bar.View()
		if m.size > 0 {
			line += tuiBytesStyle.Render(fmt.Sprintf("  %s / %s", humanBytes(m.written), humanBytes(m.size)))
		} else if m.written > 0 {
			line += tuiBytesStyle.Render("  " + humanBytes(m.written))
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if m.summary != "" {
		b.WriteString(m.summary)
		b.WriteByte('\n')
	}
	return b.String()
}

func renderResultLine(result downloader.DownloadResult) string {
	title := truncateLine(result.Item.Title, 56)
	switch result.Status {
	case downloader.StatusOK:
		return fmt.Sprintf("%s %s %s", okStyle.Render("✓"), title,
			tuiBytesStyle.Render(humanBytes(result.Bytes)))
	case downloader.StatusSkipped:
		return fmt.Sprintf("%s %s %s", warnStyle.Render("-"), title,
			dimStyle.Render(result.SkipReason))
	default:
		reason := ""
		if result.Err != nil {
			reason = dimStyle.Render(truncateLine(result.Err.Error(), 60))
		}
		return fmt.Sprintf("%s %s %s", errorStyle.Render("✗"), title, reason)
	}
}

func renderLogLine(level downloader.LogLevel, text string) string {
	switch {
	case level >= downloader.LogError:
		return errorStyle.Render(level.String()) + " " + text
	case level == downloader.LogWarn:
		return warnStyle.Render(level.String()) + " " + text
	default:
		return dimStyle.Render(level.String() + " " + text)
	}
}

func truncateLine(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}
	if width <= 3 {
		return text[:width]
	}
	return text[:width-3] + "..."
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for n >= unit*div && exp < 4 {
		div *= unit
		exp++
	}
	value := float64(n) / float64(div)
	suffix := []string{"KB", "MB", "GB", "TB"}
	return fmt.Sprintf("%.1f%s", value, suffix[exp])
}
