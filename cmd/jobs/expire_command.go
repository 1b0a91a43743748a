// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/johnmave126/filmsoc-website-backend/internal/member"
	"github.com/johnmave126/filmsoc-website-backend/internal/notify"
)

func newExpireCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Flag members past their expiry date and resync the mailing list",
		RunE: func(cmd *cobra.Command, _ []string) error {
			jc, closeFn, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			list := &notify.LogMailingList{Log: jc.log}
			expired, err := expireMembers(cmd.Context(), jc.members, list)
			if err != nil {
				return err
			}
			jc.log.Info("membership expiry finished", slog.Int("expired", expired))
			return nil
		},
	}
}

// expireMembers flags every member past expire_at as Expired, then
// replaces the announcement list with the remaining active members.
func expireMembers(ctx context.Context, members member.Store, list notify.MailingList) (int, error) {
	expiring, err := members.Expiring(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	for _, m := range expiring {
		m.MemberType = member.TypeExpired
		if err := members.Update(ctx, m); err != nil {
			return 0, err
		}
	}

	all, err := members.All(ctx)
	if err != nil {
		return 0, err
	}
	active := make([]string, 0, len(all))
	for _, m := range all {
		if m.Active() {
			active = append(active, m.ITSC)
		}
	}
	if err := list.Replace(ctx, active); err != nil {
		return 0, err
	}
	return len(expiring), nil
}
