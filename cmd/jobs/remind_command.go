// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/johnmave126/filmsoc-website-backend/internal/notify"
)

func newRemindCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Send due and overdue loan notices, clear stale counter reservations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			jc, closeFn, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			cleared, err := jc.lending.ExpireCounterReservations(cmd.Context())
			if err != nil {
				return err
			}

			mailer := &notify.LogMailer{Log: jc.log}
			sent, err := jc.lending.SendLoanReminders(cmd.Context(), mailer)
			if err != nil {
				return err
			}

			jc.log.Info("loan reminders finished",
				slog.Int("notices_sent", sent),
				slog.Int("reservations_cleared", cleared))
			return nil
		},
	}
}
