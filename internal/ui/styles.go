package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/taskboard/taskboard/internal/domain/task"
)

var (
	appStyle     = lipgloss.NewStyle().Padding(1, 2)
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	confirmStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Width(12).Foreground(lipgloss.Color("245"))
	activeLabel  = labelStyle.Foreground(lipgloss.Color("170")).Bold(true)

	columnStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238"))
	columnHeaderStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)

	cardStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241"))
	focusedCardStyle = cardStyle.BorderForeground(lipgloss.Color("170"))
	cardTitleStyle   = lipgloss.NewStyle().Bold(true)
	overdueBadge     = lipgloss.NewStyle().
				Foreground(lipgloss.Color("231")).
				Background(lipgloss.Color("160")).
				Padding(0, 1).
				Bold(true)

	dialogStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("170"))

	statusColors = map[task.Status]lipgloss.Color{
		task.StatusNotStarted: lipgloss.Color("245"),
		task.StatusInProgress: lipgloss.Color("39"),
		task.StatusCompleted:  lipgloss.Color("42"),
		task.StatusCancelled:  lipgloss.Color("203"),
	}
)
