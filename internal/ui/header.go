package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Header displays the dataset name, total weight, and deleted counters
type Header struct {
	dataset        string
	width          int
	scanning       bool
	scanProgress   string
	totalWeight    int64
	deletedSession int64
	deletedTotal   int64
	formatWeight   func(int64) string
}

// NewHeader creates a new header component
func NewHeader(dataset string, formatWeight func(int64) string) Header {
	if formatWeight == nil {
		formatWeight = FormatSize
	}
	return Header{
		dataset:      dataset,
		formatWeight: formatWeight,
	}
}

// SetScanning sets the scanning state
func (h *Header) SetScanning(scanning bool, progress string) {
	h.scanning = scanning
	h.scanProgress = progress
}

// ScanProgress returns the current scan progress text
func (h Header) ScanProgress() string {
	return h.scanProgress
}

// SetTotalWeight sets the root weight shown on the right
func (h *Header) SetTotalWeight(w int64) {
	h.totalWeight = w
}

// SetDeletedStats sets the deleted-weight counters
func (h *Header) SetDeletedStats(session, total int64) {
	h.deletedSession = session
	h.deletedTotal = total
}

// SetWidth sets the header width
func (h *Header) SetWidth(w int) {
	h.width = w
}

// View renders the header
func (h Header) View() string {
	appName := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#C084FC")).
		Bold(true).
		Render("SIZEMAP")

	sep := lipgloss.NewStyle().Foreground(ColorBorder).Render(" │ ")

	dataset := StatsStyle.Render(h.dataset)

	// Deleted counters (show in middle when either counter > 0)
	var deleted string
	if h.deletedSession > 0 || h.deletedTotal > 0 {
		label := lipgloss.NewStyle().Foreground(ColorMuted).Render("Deleted: ")
		session := lipgloss.NewStyle().Foreground(lipgloss.Color("#34D399")).Render(h.formatWeight(h.deletedSession) + " session")
		dsep := lipgloss.NewStyle().Foreground(ColorMuted).Render(" | ")
		total := lipgloss.NewStyle().Foreground(ColorMuted).Render(h.formatWeight(h.deletedTotal) + " total")
		deleted = label + session + dsep + total
	}

	// Right side: total weight, or scan progress while scanning
	var stats string
	if h.scanning {
		if h.scanProgress != "" {
			stats = StatsStyle.Render(h.scanProgress)
		}
	} else if h.totalWeight > 0 {
		stats = StatsStyle.Render("Total: " + h.formatWeight(h.totalWeight))
	}

	left := appName + sep + dataset
	leftWidth := lipgloss.Width(left)
	deletedWidth := lipgloss.Width(deleted)
	statsWidth := lipgloss.Width(stats)

	totalContent := leftWidth + deletedWidth + statsWidth + 4

	// For narrow terminals, drop the middle counters first
	if h.width < totalContent && deletedWidth > 0 {
		deleted = ""
		deletedWidth = 0
		totalContent = leftWidth + statsWidth + 2
	}
	if h.width < totalContent && statsWidth > 0 {
		stats = ""
	}

	remaining := h.width - leftWidth - deletedWidth - lipgloss.Width(stats)
	if remaining < 2 {
		remaining = 2
	}
	leftGap := remaining / 2
	rightGap := remaining - leftGap
	if leftGap < 1 {
		leftGap = 1
	}
	if rightGap < 1 {
		rightGap = 1
	}

	line := fmt.Sprintf("%s%s%s%s%s",
		left, strings.Repeat(" ", leftGap), deleted, strings.Repeat(" ", rightGap), stats)

	return HeaderStyle.MaxHeight(1).Render(line)
}
