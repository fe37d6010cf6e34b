package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ArishaRashid/WhoYap/internal/app"
	"github.com/ArishaRashid/WhoYap/internal/repository"
	"github.com/ArishaRashid/WhoYap/internal/service"
)

func importCmd(opts *options) *cobra.Command {
	var (
		chatName string
		username string
		noEmbed  bool
	)
	cmd := &cobra.Command{
		Use:   "import <transcript.txt>",
		Short: "Import an exported chat into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if noEmbed {
				cfg.Embedding.Provider = "none"
			}
			if chatName == "" {
				chatName = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}

			logger := opts.serviceLogger()
			db, err := app.OpenDatabase(cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			providers, err := app.NewProviders(cfg, logger)
			if err != nil {
				return err
			}
			defer providers.Close()

			chats := repository.NewChatRepository(db, logger)
			var embedder service.ChatEmbedder
			if b := app.NewBackfiller(cfg, chats, providers.Embedder(cfg), logger); b != nil {
				embedder = b
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := service.NewImporter(chats, embedder, logger).Import(cmd.Context(), service.ImportInput{
				ChatName:   chatName,
				Uploader:   username,
				Transcript: f,
			})
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}

			logrus.WithFields(logrus.Fields{
				"group_chat_id": res.GroupChatID,
				"participants":  len(res.Participants),
				"messages":      res.MessageCount,
				"embedded":      res.EmbeddedCount,
			}).Info("Chat imported")
			if res.EmbeddingPending {
				logrus.Warn("Some messages are not embedded yet; run `whoyapctl embed` later")
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.GroupChatID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&chatName, "name", "n", "", "chat name (defaults to the file name)")
	cmd.Flags().StringVarP(&username, "user", "u", "whoyapctl", "uploader username")
	cmd.Flags().BoolVar(&noEmbed, "no-embed", false, "skip embedding even if a provider is configured")
	return cmd
}
