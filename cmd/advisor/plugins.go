package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/alexisbeaulieu97/advisor/internal/registry"
)

type pluginsOptions struct {
	jsonOutput bool
}

func newPluginsCmd(flags *rootFlags) *cobra.Command {
	opts := &pluginsOptions{}

	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List registered plugins and their state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlugins(cmd, flags, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func runPlugins(cmd *cobra.Command, flags *rootFlags, opts *pluginsOptions) error {
	const operation = "list plugins"

	cfg, err := loadConfig(operation, flags.configPath)
	if err != nil {
		return err
	}

	a, err := newApp(operation, cfg, appOptions{
		verbose:     flags.verbose,
		logOutput:   cmd.ErrOrStderr(),
		traceOutput: io.Discard,
	})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(cmd.Context()) }()

	infos := a.registry.Describe()
	if opts.jsonOutput {
		return renderPluginsJSON(cmd.OutOrStdout(), infos)
	}
	return renderPluginsTable(cmd.OutOrStdout(), infos)
}

type pluginJSON struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	APIVersion   string   `json:"api_version"`
	Description  string   `json:"description,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	Advisors     int      `json:"advisors"`
	State        string   `json:"state"`
	Reason       string   `json:"reason,omitempty"`
}

func renderPluginsJSON(w io.Writer, infos []registry.Info) error {
	out := make([]pluginJSON, 0, len(infos))
	for _, info := range infos {
		entry := pluginJSON{
			Name:         info.Metadata.Name,
			Version:      info.Metadata.Version,
			APIVersion:   info.Metadata.APIVersion,
			Description:  info.Metadata.Description,
			Dependencies: dependencyNames(info.Metadata),
			Advisors:     info.Advisors,
			State:        pluginState(info),
		}
		if info.Disabled != nil {
			entry.Reason = info.Disabled.Error()
		}
		out = append(out, entry)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).PaddingRight(2)
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
	stateStyles = map[string]lipgloss.Style{
		"enabled":  cellStyle.Foreground(lipgloss.Color("#16A34A")),
		"disabled": cellStyle.Foreground(lipgloss.Color("#CA8A04")),
		"inactive": cellStyle.Foreground(lipgloss.Color("#DC2626")),
	}
)

func renderPluginsTable(w io.Writer, infos []registry.Info) error {
	if len(infos) == 0 {
		_, err := fmt.Fprintln(w, "No plugins registered.")
		return err
	}

	unicode := supportsUnicode(w)
	title := cases.Title(language.English)
	header := []string{"NAME", "VERSION", "STATE", "ADVISORS", "DEPENDS ON"}
	rows := make([][]string, 0, len(infos))
	states := make([]string, 0, len(infos))
	for _, info := range infos {
		state := pluginState(info)
		states = append(states, state)
		deps := strings.Join(dependencyNames(info.Metadata), ", ")
		if deps == "" {
			deps = "-"
		}
		rows = append(rows, []string{
			info.Metadata.Name,
			info.Metadata.Version,
			fmt.Sprintf("%s %s", stateIcon(state, unicode), title.String(state)),
			fmt.Sprintf("%d", info.Advisors),
			deps,
		})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	b.WriteString(renderRow(header, widths, func(int) lipgloss.Style { return headerStyle }))
	for i, row := range rows {
		state := states[i]
		b.WriteString(renderRow(row, widths, func(col int) lipgloss.Style {
			if col == 2 {
				return stateStyles[state]
			}
			return cellStyle
		}))
	}
	for _, info := range infos {
		if info.Disabled != nil {
			fmt.Fprintf(&b, "\n%s: %v", info.Metadata.Name, info.Disabled)
		}
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func renderRow(cells []string, widths []int, style func(col int) lipgloss.Style) string {
	rendered := make([]string, len(cells))
	for i, cell := range cells {
		// Width includes the right padding.
		rendered[i] = style(i).Width(widths[i] + 2).Render(cell)
	}
	return strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, rendered...), " ") + "\n"
}

func pluginState(info registry.Info) string {
	switch {
	case info.Disabled != nil:
		return "inactive"
	case info.Enabled:
		return "enabled"
	default:
		return "disabled"
	}
}

func stateIcon(state string, unicode bool) string {
	if unicode {
		switch state {
		case "enabled":
			return "●"
		case "disabled":
			return "○"
		default:
			return "✗"
		}
	}
	switch state {
	case "enabled":
		return "[on]"
	case "disabled":
		return "[--]"
	default:
		return "[XX]"
	}
}

func dependencyNames(meta registry.PluginMetadata) []string {
	if len(meta.Dependencies) == 0 {
		return nil
	}
	names := make([]string, 0, len(meta.Dependencies))
	for _, dep := range meta.Dependencies {
		name := dep.Name
		if dep.VersionConstraint != nil {
			name += " " + dep.VersionConstraint.String()
		}
		names = append(names, name)
	}
	return names
}

func supportsUnicode(writer any) bool {
	if file, ok := writer.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}
