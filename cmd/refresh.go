package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refreshes cached times of all watched stops",
	Args:  cobra.NoArgs,
	RunE:  refresh,
}

func refresh(cmd *cobra.Command, args []string) error {
	m, s, err := loadManager()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := m.Refresh(cmd.Context()); err != nil {
		return err
	}

	log.Info().Msg("Refresh complete")
	return nil
}
