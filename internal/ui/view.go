package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"petmate/internal/chat"
	"petmate/internal/level"
	"petmate/internal/pet"
)

const chatPaneLines = 6

var styles = struct {
	title   lipgloss.Style
	status  lipgloss.Style
	stats   lipgloss.Style
	menu    lipgloss.Style
	muted   lipgloss.Style
	message lipgloss.Style
	owner   lipgloss.Style
	petMsg  lipgloss.Style
}{
	title: lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1),

	status: lipgloss.NewStyle().
		Width(36),

	stats: lipgloss.NewStyle().
		Width(36),

	menu: lipgloss.NewStyle().
		Padding(0, 2),

	muted: lipgloss.NewStyle().
		Faint(true),

	message: lipgloss.NewStyle().
		Bold(true),

	owner: lipgloss.NewStyle().
		Bold(true),

	petMsg: lipgloss.NewStyle().
		Italic(true),
}

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return "Thanks for visiting!\n"
	}

	agg, held := m.store.Snapshot()
	if !held {
		return m.adoptView()
	}

	accent := lipgloss.NewStyle().Foreground(lipgloss.Color(agg.Color))

	var s strings.Builder
	s.WriteString(styles.title.Inherit(accent).Render(
		pet.MoodEmoji(agg.Mood)+" "+agg.Name+" the "+agg.Species) + "\n\n")

	s.WriteString(m.renderStats(&agg))
	s.WriteString("\n")
	s.WriteString(m.renderStatus(&agg))
	s.WriteString("\n")

	switch {
	case m.chatMode:
		s.WriteString(m.renderChat(agg.Species))
	case m.renameMode:
		s.WriteString("  New name: " + m.input + "▌\n")
	default:
		s.WriteString(m.renderMenu())
	}

	if msg := m.currentMessage(); msg != "" {
		s.WriteString("\n" + styles.message.Render(msg) + "\n")
	}

	switch {
	case m.chatMode:
		s.WriteString(styles.muted.Render("\nenter: send • esc: back") + "\n")
	case m.renameMode:
		s.WriteString(styles.muted.Render("\nenter: rename • esc: cancel") + "\n")
	default:
		s.WriteString(styles.muted.Render("\n↑/↓: choose • enter: do • t: talk • n: rename • r: refresh • q: quit") + "\n")
	}
	return s.String()
}

func (m Model) adoptView() string {
	var s strings.Builder
	s.WriteString(styles.title.Render("🐾 No pet yet") + "\n\n")
	s.WriteString("Type a name and press enter to adopt:\n\n")
	s.WriteString("  > " + m.input + "▌\n")
	if msg := m.currentMessage(); msg != "" {
		s.WriteString("\n" + styles.message.Render(msg) + "\n")
	}
	s.WriteString(styles.muted.Render("\nq: quit") + "\n")
	return s.String()
}

func (m Model) renderStats(agg *pet.Aggregate) string {
	bar := func(value int) string {
		filled := value / 10
		var b strings.Builder
		for i := 0; i < 10; i++ {
			if i < filled {
				b.WriteString("█")
			} else {
				b.WriteString("░")
			}
		}
		return b.String()
	}

	rows := []struct {
		label string
		value int
	}{
		{"Hunger", agg.Hunger},
		{"Energy", agg.Energy},
		{"Happiness", agg.Happiness},
		{"Health", agg.Health},
		{"Clean", agg.Cleanliness},
	}

	var s strings.Builder
	for _, row := range rows {
		s.WriteString(fmt.Sprintf("  %-10s %s %3d%%\n", row.label, bar(row.value), row.value))
	}

	progress := level.Progress{Level: agg.Level, Current: agg.CurrentXP, Next: agg.XPToNext}
	s.WriteString(fmt.Sprintf("  %-10s %s %d/%d XP\n",
		fmt.Sprintf("Level %d", agg.Level), bar(progress.Percent()), agg.CurrentXP, agg.XPToNext))

	return styles.stats.Render(s.String())
}

func (m Model) renderStatus(agg *pet.Aggregate) string {
	var s strings.Builder
	s.WriteString("  " + pet.StatusLine(agg) + "\n")
	if phrase := agg.Phrase(); phrase != "" && !agg.Sleeping() {
		s.WriteString("  " + styles.petMsg.Render("“"+phrase+"”") + "\n")
	}
	return styles.status.Render(s.String())
}

func (m Model) renderMenu() string {
	labels := map[pet.ActionKind]string{
		pet.ActionFeed:  "🍖 Feed",
		pet.ActionPlay:  "🎾 Play",
		pet.ActionHeal:  "💊 Heal",
		pet.ActionClean: "🛁 Clean",
	}

	var s strings.Builder
	for i, kind := range pet.AllActions {
		cursor := "  "
		if i == m.choice {
			cursor = "➜ "
		}
		line := cursor + labels[kind]
		if m.dispatcher.OnCooldown(kind) {
			line += styles.muted.Render(fmt.Sprintf("  (%s, %d%%)",
				formatSeconds(m.dispatcher.Remaining(kind)), m.dispatcher.Progress(kind)))
		}
		s.WriteString(line + "\n")
	}
	return styles.menu.Render(s.String())
}

func (m Model) renderChat(species string) string {
	msgs := m.chat.Messages()
	start := 0
	if len(msgs) > chatPaneLines {
		start = len(msgs) - chatPaneLines
	}

	var s strings.Builder
	if len(msgs) == 0 {
		s.WriteString(styles.muted.Render("  (no messages yet — say hi!)") + "\n")
	}
	for _, msg := range msgs[start:] {
		prefix := pet.SpeciesEmoji(species)
		style := styles.petMsg
		if msg.Sender == chat.SenderOwner {
			prefix = "🧑"
			style = styles.owner
		}
		line := fmt.Sprintf("  %s %s", prefix, style.Render(msg.Text))
		if msg.Edited {
			line += styles.muted.Render(" (edited)")
		}
		s.WriteString(line + "\n")
	}
	s.WriteString("\n  > " + m.input + "▌\n")
	return s.String()
}

func formatSeconds(total int) string {
	if total >= 60 {
		return fmt.Sprintf("%dm%02ds", total/60, total%60)
	}
	return fmt.Sprintf("%ds", total)
}
