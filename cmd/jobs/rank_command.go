// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func newRankCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rank",
		Short: "Recompute the popularity rank of every disc",
		RunE: func(cmd *cobra.Command, _ []string) error {
			jc, closeFn, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			updated, err := jc.lending.RecomputeRanks(cmd.Context())
			if err != nil {
				return err
			}
			jc.log.Info("rank recomputation finished", slog.Int("updated", updated))
			return nil
		},
	}
}
