package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rubiojr/mediasearch/pkg/history"
	"github.com/rubiojr/mediasearch/pkg/media"
	"github.com/rubiojr/mediasearch/pkg/ratelimit"
	"github.com/rubiojr/mediasearch/pkg/saved"
	"github.com/rubiojr/mediasearch/pkg/search"
	"github.com/rubiojr/mediasearch/pkg/session"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	itemStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	summaryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("32"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))
)

var titleCase = cases.Title(language.English)

// optionLabel turns a filter option such as "sound_effect" into "Sound Effect".
func optionLabel(option string) string {
	if option == search.AnyValue {
		return option
	}
	return titleCase.String(strings.ReplaceAll(option, "_", " "))
}

// renderSnapshot renders the whole surface: status, results and pagination.
func renderSnapshot(desc media.Descriptor, snap session.Snapshot) string {
	var out strings.Builder

	out.WriteString(titleStyle.Render(desc.Title))
	out.WriteString("\n")

	if q := snap.State.Query; q != "" {
		out.WriteString(metaStyle.Render(fmt.Sprintf("query: %s", q)))
		out.WriteString("\n")
	}
	if active := snap.State.Filters.Active(); len(active) > 0 {
		parts := make([]string, 0, len(active))
		for _, f := range active {
			parts = append(parts, f.Name+"="+f.Value)
		}
		out.WriteString(metaStyle.Render("filters: " + strings.Join(parts, ", ")))
		out.WriteString("\n")
	}

	switch snap.Status {
	case session.Searching:
		out.WriteString(noDataStyle.Render("Searching..."))
		out.WriteString("\n")
		return out.String()
	case session.Errored, session.RateLimited:
		out.WriteString(errorStyle.Render(snap.Message))
		out.WriteString("\n")
		if snap.RetryIn > 0 {
			out.WriteString(metaStyle.Render("retrying in " + formatSeconds(snap.RetryIn)))
			out.WriteString("\n")
		}
		return out.String()
	}

	if strings.TrimSpace(snap.State.Query) == "" {
		out.WriteString(noDataStyle.Render(desc.Placeholder))
		out.WriteString("\n")
		return out.String()
	}

	if len(snap.Results.Items) == 0 {
		out.WriteString(noDataStyle.Render(desc.NoResults))
		out.WriteString("\n")
		return out.String()
	}

	summary := fmt.Sprintf("%s results, page %d of %d",
		formatNumber(snap.Results.TotalResults), snap.State.Page, snap.Results.TotalPages)
	out.WriteString(summaryStyle.Render(summary))
	out.WriteString("\n")

	offset := (snap.State.Page - 1) * snap.State.PageSize
	for i, item := range snap.Results.Items {
		out.WriteString(itemStyle.Render(fmt.Sprintf("%d. %s", offset+i+1, item.Title)))
		out.WriteString("\n   ")
		out.WriteString(urlStyle.Render(item.URL))
		out.WriteString("\n")
	}

	out.WriteString(metaStyle.Render(pagerLine(snap)))
	out.WriteString("\n")
	return out.String()
}

func pagerLine(snap session.Snapshot) string {
	var parts []string
	if snap.CanPrev() {
		parts = append(parts, "prev")
	}
	parts = append(parts, fmt.Sprintf("page %d/%d", snap.State.Page, snap.Results.TotalPages))
	if snap.CanNext() {
		parts = append(parts, "next")
	}
	return strings.Join(parts, " | ")
}

// renderFilters lists the filters of any surface with their current values.
func renderFilters(desc media.Descriptor, current search.Filters) string {
	var out strings.Builder

	out.WriteString(headerStyle.Render(desc.Title + " filters"))
	out.WriteString("\n")

	for _, fd := range desc.Filters {
		value := current.Get(fd.Name)
		if value == "" {
			value = search.AnyValue
		}

		line := fmt.Sprintf("%-10s %s", fd.Name, fd.Label+": "+optionLabel(value))
		out.WriteString(line)
		out.WriteString("\n")

		var hint string
		switch fd.Kind {
		case media.Select:
			labels := []string{search.AnyValue}
			for _, o := range fd.Options {
				labels = append(labels, fmt.Sprintf("%s (%s)", o, optionLabel(o)))
			}
			hint = "options: " + strings.Join(labels, ", ")
		default:
			hint = "free text"
			if fd.Placeholder != "" {
				hint += ", " + fd.Placeholder
			}
		}
		out.WriteString("           ")
		out.WriteString(metaStyle.Render(hint))
		out.WriteString("\n")
	}
	return out.String()
}

// renderRecent renders the recent search history.
func renderRecent(entries []history.Entry, now time.Time) string {
	var out strings.Builder

	out.WriteString(titleStyle.Render("Recent searches"))
	out.WriteString("\n")

	if len(entries) == 0 {
		out.WriteString(noDataStyle.Render("No recent searches."))
		out.WriteString("\n")
		return out.String()
	}

	for _, e := range entries {
		header := fmt.Sprintf("#%d %s %q", e.ID, e.MediaType, e.Query)
		out.WriteString(itemStyle.Render(header))
		out.WriteString("\n")

		when := e.RawTimestamp
		if !e.Timestamp.IsZero() {
			when = formatTime(e.Timestamp, now)
		}
		meta := fmt.Sprintf("%s results", formatNumber(e.TotalResults))
		if when != "" {
			meta += " | " + when
		}
		if len(e.Filters) > 0 {
			_, raw := history.ReplayQuery(e)
			meta += " | " + raw
		}
		out.WriteString("   ")
		out.WriteString(metaStyle.Render(meta))
		out.WriteString("\n")
	}
	return out.String()
}

// renderRateLimit renders the remaining search budget.
func renderRateLimit(st ratelimit.Status) string {
	var out strings.Builder
	out.WriteString(headerStyle.Render("Rate limit"))
	out.WriteString("\n")

	out.WriteString(fmt.Sprintf("Remaining searches: %d\n", st.Remaining))
	if st.ResetIn > 0 {
		out.WriteString(fmt.Sprintf("Resets in: %s\n", formatSeconds(st.ResetIn)))
	}
	if st.Remaining <= 0 {
		out.WriteString(errorStyle.Render("Searching is paused until the limit resets."))
		out.WriteString("\n")
	}
	return out.String()
}

// renderDialog renders the outcome of a save.
func renderDialog(v saved.View) string {
	switch v.Phase {
	case saved.Succeeded:
		return summaryStyle.Render(v.Message) + "\n"
	case saved.Failed, saved.Editing:
		if v.Message != "" {
			return errorStyle.Render(v.Message) + "\n"
		}
	case saved.Saving:
		return noDataStyle.Render(v.Label()) + "\n"
	}
	return ""
}
