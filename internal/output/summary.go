package output

import (
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

// Styles holds the lipgloss styles for the summary line.
type Styles struct {
	Label lipgloss.Style
	Count lipgloss.Style
	Human lipgloss.Style
}

// NewStyles creates the default color styles.
func NewStyles() Styles {
	return Styles{
		Label: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),             // cyan
		Count: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true), // bold green
		Human: lipgloss.NewStyle().Faint(true),
	}
}

// NoStyles returns styles with no coloring.
func NoStyles() Styles {
	return Styles{
		Label: lipgloss.NewStyle(),
		Count: lipgloss.NewStyle(),
		Human: lipgloss.NewStyle(),
	}
}

// Summary renders the final total line, e.g. "total bytes read 4096 (4.1 kB)".
func Summary(st Styles, total int64) string {
	return st.Label.Render("total bytes read") + " " +
		st.Count.Render(strconv.FormatInt(total, 10)) + " " +
		st.Human.Render("("+humanize.Bytes(uint64(total))+")") + "\n"
}

// IsTerminal checks if the given file descriptor is a terminal using ioctl.
func IsTerminal(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), unix.TCGETS)
	return err == nil
}

// StdoutIsTerminal returns true if stdout is a terminal.
func StdoutIsTerminal() bool {
	return IsTerminal(os.Stdout.Fd())
}
