package main

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ArishaRashid/WhoYap/internal/app"
	"github.com/ArishaRashid/WhoYap/internal/repository"
)

func embedCmd(opts *options) *cobra.Command {
	var chatID int64
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Embed every message that has no embedding yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger := opts.serviceLogger()
			providers, err := app.NewProviders(cfg, logger)
			if err != nil {
				return err
			}
			defer providers.Close()

			embedder := providers.Embedder(cfg)
			if embedder == nil {
				return errors.New("embedding.provider is none; nothing to do")
			}

			db, err := app.OpenDatabase(cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			backfiller := app.NewBackfiller(cfg, repository.NewChatRepository(db, logger), embedder, logger)
			n, err := backfiller.EmbedChat(cmd.Context(), chatID)
			entry := logrus.WithFields(logrus.Fields{"group_chat_id": chatID, "model": embedder.Model(), "stored": n})
			if err != nil {
				entry.WithError(err).Error("Embedding pass stopped early")
				return err
			}
			entry.Info("Embedding pass finished")
			return nil
		},
	}
	cmd.Flags().Int64Var(&chatID, "chat", 0, "only embed this group chat (0 means all)")
	return cmd
}
