package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ArishaRashid/WhoYap/internal/transcript"
)

const timeLayout = "2006-01-02 15:04"

func parseCmd() *cobra.Command {
	var showMessages bool
	cmd := &cobra.Command{
		Use:   "parse <transcript.txt>",
		Short: "Parse an exported chat and print its participants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := transcript.Parse(f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d participants, %d messages\n", len(res.Participants), len(res.Messages))
			for _, name := range res.Participants {
				fmt.Fprintf(out, "  %s\n", name)
			}
			if showMessages {
				for _, m := range res.Messages {
					fmt.Fprintf(out, "[%s] %s: %s\n", m.Timestamp.Format(timeLayout), m.Sender, m.Text)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showMessages, "messages", "m", false, "also print every message")
	return cmd
}
