// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package app

import (
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/common-nighthawk/go-figure"
	"golang.org/x/term"
)

const bannerWidth = 80

// colorWriter downsamples colors to what w supports and strips them when
// w is not a terminal.
func colorWriter(w io.Writer) *colorprofile.Writer {
	return colorprofile.NewWriter(w, os.Environ())
}

// endpoint is one row of the banner's endpoint table.
type endpoint struct {
	surface string
	methods string
	path    string
}

func (a *App) endpoints() []endpoint {
	eps := []endpoint{
		{"management", strings.Join(a.resource.AllowedCollectionMethods(), ", "), "/" + a.resource.Name()},
		{"management", strings.Join(a.resource.AllowedInstanceMethods(), ", "), "/" + a.resource.Name() + "/{id}"},
		{"auth-check", "any", a.cfg.Auth.Path},
		{"health", strings.Join(healthMethods, ", "), HealthPath},
	}
	if a.metrics != nil {
		eps = append(eps, endpoint{"metrics", "GET", a.cfg.Metrics.Path})
	}
	return eps
}

// printStartupBanner prints the service name, its settings and the
// endpoint table to w.
func (a *App) printStartupBanner(w io.Writer, addr string) {
	if w == nil || w == io.Discard {
		return
	}
	out := colorWriter(w)

	var b strings.Builder

	gradient := []string{"12", "14", "10", "11"}
	for _, line := range figure.NewFigure("basic-auth", "", false).Slicify() {
		if strings.TrimSpace(line) == "" {
			b.WriteString("\n")
			continue
		}
		for i, char := range line {
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(gradient[i%len(gradient)])).
				Bold(true)
			b.WriteString(style.Render(string(char)))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	categoryStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Width(14).
		PaddingLeft(2)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	disabledStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	line := func(label, value string, color string) {
		b.WriteString(labelStyle.Render(label) + "  " + valueStyle.Foreground(lipgloss.Color(color)).Render(value) + "\n")
	}

	b.WriteString(categoryStyle.Render("Service") + "\n")
	line("Version:", a.version, "14")
	line("Address:", displayAddr(addr), "10")
	line("Store:", a.cfg.Database.Driver, "11")
	line("Realm:", a.cfg.Auth.Realm, "11")
	if contract := a.contract(); contract != "" {
		line("Contract:", contract, "13")
	}

	b.WriteString("\n" + categoryStyle.Render("Observability") + "\n")
	if a.metrics != nil {
		line("Metrics:", a.cfg.Metrics.Path, "13")
	} else {
		b.WriteString(labelStyle.Render("Metrics:") + "  " + disabledStyle.Render("Disabled") + "\n")
	}
	if a.tracing != nil {
		line("Tracing:", string(a.tracing.Exporter()), "12")
	} else {
		b.WriteString(labelStyle.Render("Tracing:") + "  " + disabledStyle.Render("Disabled") + "\n")
	}

	b.WriteString("\n")
	b.WriteString(a.renderEndpoints(tableWidth(w)))
	b.WriteString("\n")

	_, _ = fmt.Fprint(out, b.String()) //nolint:errcheck // display output
}

func (a *App) contract() string {
	var parts []string
	if a.cfg.API.Profile != "" {
		parts = append(parts, "profile="+a.cfg.API.Profile)
	}
	if a.cfg.API.Version != "" {
		parts = append(parts, "version="+a.cfg.API.Version)
	}
	return strings.Join(parts, " ")
}

func (a *App) renderEndpoints(width int) string {
	rows := make([][]string, 0, 5)
	for _, ep := range a.endpoints() {
		rows = append(rows, []string{ep.surface, ep.methods, ep.path})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Width(width).
		Headers("Surface", "Methods", "Path").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true).Foreground(lipgloss.Color("14"))
			}
			return style
		})

	return t.Render() + "\n"
}

// tableWidth fits the endpoint table to the terminal, if w is one.
func tableWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return min(width, bannerWidth)
		}
	}
	return bannerWidth
}

// displayAddr turns ":8080" or "[::]:8080" into a clickable URL.
func displayAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "::" {
		host = "0.0.0.0"
	}
	return "http://" + net.JoinHostPort(host, port)
}
