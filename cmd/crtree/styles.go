package main

/*
crtree — subdomain trees from Certificate Transparency search results
Copyright (C) 2025  Pepijn van der Stap <rxtls@vanderstap.info>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/x-stp/crtree/internal/server"
	"github.com/x-stp/crtree/internal/tree"
)

var (
	styleHeading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newStylesCmd() *cobra.Command {
	var colored bool
	cmd := &cobra.Command{
		Use:   "styles",
		Short: "Preview every tree style",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for i, name := range tree.StyleNames() {
				style, err := tree.LookupStyle(name)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				heading := styleHeading.Render(name)
				if name == tree.DefaultStyle {
					heading += " " + styleDim.Render("(default)")
				}
				fmt.Fprintln(out, heading)
				fmt.Fprintln(out, tree.Render(server.SampleTree(), tree.Options{Style: style, Colored: colored}))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&colored, "color", false, "Color the samples by depth")
	return cmd
}
