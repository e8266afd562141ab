package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/averden/mediapull/internal/progress"
	"github.com/averden/mediapull/internal/transfer"
	"github.com/averden/mediapull/internal/utils"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("37"))  // dark green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))   // red
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))  // yellow
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))  // cyan
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250")) // light grey
)

var styleSymbols = map[string]string{
	"pass":   "✓",
	"fail":   "✗",
	"skip":   "→",
	"bullet": "•",
	"hline":  "━",
}

func PrintSuccess(text string) {
	fmt.Println(successStyle.Render(text))
}
func PrintError(text string) {
	fmt.Println(errorStyle.Render(text))
}
func PrintWarning(text string) {
	fmt.Println(warningStyle.Render(text))
}
func PrintInfo(text string) {
	fmt.Println(infoStyle.Render(text))
}

// RenderResult formats a transfer result as a one-block styled summary.
func RenderResult(res *transfer.Result) string {
	var b strings.Builder
	switch res.Outcome {
	case transfer.OutcomeSuccess:
		b.WriteString(successStyle.Render(fmt.Sprintf("%s %s", styleSymbols["pass"], res.Destination)))
	case transfer.OutcomeSkipped:
		b.WriteString(warningStyle.Render(fmt.Sprintf("%s %s (%s)", styleSymbols["skip"], res.Destination, res.Description)))
		return b.String()
	default:
		b.WriteString(errorStyle.Render(fmt.Sprintf("%s %s (%s)", styleSymbols["fail"], res.Destination, res.Description)))
	}
	detail := fmt.Sprintf("  %s %s in %.2fs at %s",
		styleSymbols["bullet"],
		utils.FormatBytes(uint64(res.Size)),
		res.Elapsed.Seconds(),
		utils.FormatSpeed(res.Size, res.Elapsed.Seconds()))
	if res.CDN != "" {
		detail += fmt.Sprintf(" via %s", res.CDN)
	}
	if res.ChunkCount > 1 {
		detail += fmt.Sprintf(" (%d chunks, %d connections)", res.ChunkCount, res.Concurrency)
	}
	if res.Verified != nil {
		if *res.Verified {
			detail += ", checksum verified"
		} else {
			detail += ", checksum NOT verified"
		}
	}
	b.WriteString("\n")
	b.WriteString(detailStyle.Render(detail))
	return b.String()
}

// ProgressLine renders a progress event as a single terminal line.
func ProgressLine(ev progress.Event) string {
	bar := renderBar(ev.Percent, 30)
	line := fmt.Sprintf("%s %.2f%% %s", bar, ev.Percent, utils.FormatBytes(uint64(ev.BytesDownloaded)))
	if ev.Status == progress.StatusFailed {
		line += " " + errorStyle.Render(styleSymbols["fail"])
	}
	return detailStyle.Render(line)
}

func renderBar(percent float64, width int) string {
	if width <= 0 {
		width = 30
	}
	filled := int(percent / 100 * float64(width))
	filled = max(0, min(filled, width))
	bar := styleSymbols["bullet"]
	bar += strings.Repeat(styleSymbols["hline"], filled)
	if filled < width {
		bar += strings.Repeat(" ", width-filled)
	}
	bar += styleSymbols["bullet"]
	return bar
}
