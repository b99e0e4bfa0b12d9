// Package retention provides ascii reporter
package retention

import (
	"fmt"
	"strings"

	"github.com/syab726/project2-face-sub001/internal/infrastructure/tracking/store"
)

const (
	cyan       = "\033[38;2;86;182;194m"  // One Dark Cyan: #56B6C2
	cyanBright = "\033[38;2;97;228;240m"  // Brighter Cyan: #61E4F0
	dimCyan    = "\033[38;2;47;91;102m"   // Dim Cyan: #2F5B66
	grey       = "\033[38;2;110;118;129m" // Brighter Grey: #6E7681
	dimGrey    = "\033[38;2;75;82;99m"    // Darker Grey: #4B5263
	success    = "\033[38;2;62;130;144m"  // Dim Cyan: #3E8290
	errorRed   = "\033[38;2;224;108;117m" // One Dark Red: #E06C75
	white      = "\033[38;2;171;178;191m" // One Dark Foreground: #ABB2BF
	reset      = "\033[0m"
	bold       = "\033[1m"
)

type Reporter struct{}

func NewReporter() *Reporter {
	return &Reporter{}
}

func (r *Reporter) LogStage(message string, args ...any) {
	formattedMsg := fmt.Sprintf(message, args...)
	fmt.Printf("%s%s✦ %s%s%s\n", success, bold, grey, formattedMsg, reset)
}

func (r *Reporter) LogSuccess(message string, args ...any) {
	formattedMsg := fmt.Sprintf(message, args...)
	fmt.Printf("%s%s✦ %s%s%s\n", success, bold, white, formattedMsg, reset)
}

func (r *Reporter) LogError(message string, err error) {
	fmt.Printf("%s%s✖ ERROR: %s%s: %v%s\n", bold, errorRed, grey, message, err, reset)
}

func (r *Reporter) LogInfo(message string, args ...any) {
	formattedMsg := fmt.Sprintf(message, args...)
	fmt.Printf("%s▶ %s%s%s\n", dimGrey, grey, formattedMsg, reset)
}

// GenerateSweepReport renders a one-sweep summary block for the console.
func (r *Reporter) GenerateSweepReport(result store.SweepResult) string {
	var report strings.Builder
	timestamp := result.SweptAt.UTC().Format("2006-01-02 15:04:05 MST")

	report.WriteString(fmt.Sprintf("%s%s▓ %s | Retention sweep%s\n", bold, dimCyan, timestamp, reset))

	var line strings.Builder
	line.WriteString(fmt.Sprintf("%s✦ sessions:%s", cyanBright, reset))
	line.WriteString(formatCount("examined", result.Examined))
	line.WriteString(formatCount("removed", result.Removed))
	line.WriteString(formatCount("pinned", result.Pinned))
	line.WriteString(formatCount("retained", result.Retained))
	report.WriteString(line.String() + "\n")

	report.WriteString(fmt.Sprintf("%s✦ duration:%s %s%v%s\n", cyanBright, reset, white, result.Duration, reset))
	return report.String()
}

func formatCount(label string, count int) string {
	if count > 0 {
		return fmt.Sprintf(" %s%s:%s%d", dimCyan, label, cyan, count)
	}
	return fmt.Sprintf(" %s%s:%s--", dimGrey, label, dimGrey)
}
