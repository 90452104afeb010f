package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/Vovarama1992/companion/internal/config"
	"github.com/Vovarama1992/companion/internal/delivery/console"
	"github.com/Vovarama1992/companion/internal/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func chatCMD() *cobra.Command {
	cfg := config.Load()

	chat := &cobra.Command{
		Use:   "chat",
		Short: "Chat in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(cmd, true)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.closeDB()

			conv := domain.NewConversation(uuid.NewString(), a.pipeline, a.repo, a.options(), log)
			err = console.Run(ctx, conv, os.Stdin, os.Stdout, log)
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	bindFlags(chat, &cfg)

	return chat
}
