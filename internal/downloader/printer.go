package downloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LogLevel orders diagnostic messages; the threshold comes from config.
type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
	LogCritical
)

// ParseLogLevel maps a config token (case-insensitive) to a LogLevel.
func ParseLogLevel(value string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "DEBUG":
		return LogDebug
	case "WARNING":
		return LogWarn
	case "ERROR":
		return LogError
	case "CRITICAL":
		return LogCritical
	default:
		return LogInfo
	}
}

func (l LogLevel) String() string {
	switch l {
	case LogDebug:
		return "DEBUG"
	case LogWarn:
		return "WARN"
	case LogError:
		return "ERROR"
	case LogCritical:
		return "CRITICAL"
	default:
		return "INFO"
	}
}

// Printer is the plain-terminal ProgressSink: one carriage-return progress
// line per item plus colored OK/FAIL/SKIP result lines on stderr.
type Printer struct {
	level        LogLevel
	showProgress bool
	color        bool
	columns      int
	titleWidth   int

	prefix  string
	started time.Time
	inLine  bool
}

// NewPrinter builds a Printer. showProgress=false still prints results and
// logs, it only drops the live transfer line.
func NewPrinter(level LogLevel, showProgress bool) *Printer {
	columns := terminalColumns()
	if columns <= 0 {
		columns = 100
	}

	titleWidth := columns - 44
	if titleWidth < 20 {
		titleWidth = 20
	}
	if titleWidth > 60 {
		titleWidth = 60
	}

	return &Printer{
		level:        level,
		showProgress: showProgress,
		color:        supportsColor(),
		columns:      columns,
		titleWidth:   titleWidth,
	}
}

func (p *Printer) BeginItem(index, total int, title string, size int64) {
	if total <= 0 {
		total = 1
	}
	width := len(strconv.Itoa(total))
	idx := fmt.Sprintf("%*d/%d", width, index, total)
	p.prefix = fmt.Sprintf("[%s] %-*s", idx, p.titleWidth, truncateText(title, p.titleWidth))
	p.started = time.Now()
}

func (p *Printer) Progress(written, size int64) {
	if !p.showProgress {
		return
	}
	elapsed := time.Since(p.started)
	speed := ""
	if elapsed > 0 {
		speed = humanBytes(int64(float64(written)/elapsed.Seconds())) + "/s"
	}

	var line string
	if size > 0 {
		percent := float64(written) * 100 / float64(size)
		line = fmt.Sprintf("%s %6.2f%% %s / %s %s",
			p.prefix,
			percent,
			padLeft(humanBytes(written), 9),
			padLeft(humanBytes(size), 9),
			padLeft(speed, 10),
		)
	} else {
		line = fmt.Sprintf("%s %s %s",
			p.prefix,
			padLeft(humanBytes(written), 9),
			padLeft(speed, 10),
		)
	}
	fmt.Fprintf(os.Stderr, "\r%s", truncateText(line, p.columns))
	p.inLine = true
}

func (p *Printer) EndItem(result DownloadResult) {
	p.clearLine()

	statusText := "OK"
	statusColor := colorGreen
	detail := fmt.Sprintf("%s %s", padLeft(humanBytes(result.Bytes), 9), result.OutputPath)

	switch result.Status {
	case StatusSkipped:
		statusText = "SKIP"
		statusColor = colorYellow
		detail = result.SkipReason
	case StatusFailed:
		statusText = "FAIL"
		statusColor = colorRed
		detail = ""
		if result.Err != nil {
			detail = result.Err.Error()
		}
	}

	status := p.colorize(statusText, statusColor)
	maxDetail := p.columns - len(p.prefix) - len(statusText) - 3
	if maxDetail < 0 {
		maxDetail = 0
	}
	fmt.Fprintf(os.Stderr, "%s %s %s\n", p.prefix, status, truncateText(detail, maxDetail))
}

func (p *Printer) Log(level LogLevel, msg string) {
	if level < p.level || msg == "" {
		return
	}
	p.clearLine()
	color := ""
	switch level {
	case LogWarn:
		color = colorYellow
	case LogError, LogCritical:
		color = colorRed
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", p.colorize(level.String(), color), msg)
}

func (p *Printer) Summary(total, ok, failed, skipped int, bytes int64) {
	p.clearLine()
	okLabel := p.colorize("OK", colorGreen)
	failLabel := p.colorize("FAIL", colorRed)
	skipLabel := p.colorize("SKIP", colorYellow)
	fmt.Fprintf(os.Stderr, "Summary: %s %d | %s %d | %s %d | TOTAL %d | SIZE %s\n",
		okLabel, ok, failLabel, failed, skipLabel, skipped, total, humanBytes(bytes))
}

func (p *Printer) colorize(text, color string) string {
	if !p.color || color == "" {
		return text
	}
	return color + text + colorReset
}

func (p *Printer) clearLine() {
	if !p.inLine {
		return
	}
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", p.columns))
	p.inLine = false
}

func padLeft(value string, width int) string {
	if len(value) >= width {
		return value
	}
	return strings.Repeat(" ", width-len(value)) + value
}

func truncateText(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	if max <= 3 {
		return text[:max]
	}
	return text[:max-3] + "..."
}

func terminalColumns() int {
	if columns := os.Getenv("COLUMNS"); columns != "" {
		if val, err := strconv.Atoi(columns); err == nil && val > 0 {
			return val
		}
	}
	return 0
}

func supportsColor() bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" || os.Getenv("CLICOLOR_FORCE") != "" {
		return true
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
)

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
