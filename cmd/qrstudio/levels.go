package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
)

func newLevelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List error correction levels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			initial, err := a.cfg.EncodingConfig()
			if err != nil {
				return err
			}
			for _, l := range qrcode.Levels {
				marker := " "
				if l == initial.Level {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, a.msgs.Level(l))
			}
			return nil
		},
	}
}
