package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Resolve manifest cell descriptions",
	Long: `Show how a manifest cell is interpreted with the configured description
sets. Matching trims whitespace and ignores case.

Examples:
  scconfig lookup provider "Solr is used"
  scconfig lookup action ""`,
}

var lookupProviderCmd = &cobra.Command{
	Use:   "provider <description>",
	Short: "Resolve a search provider description",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := cfg.Descriptions().Providers.Resolve(args[0])
		if err != nil {
			return err
		}
		fmt.Println(p)
		return nil
	},
}

var lookupActionCmd = &cobra.Command{
	Use:   "action <description>",
	Short: "Resolve an action description",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := cfg.Descriptions().Actions.Resolve(args[0])
		if err != nil {
			return err
		}
		fmt.Println(a)
		return nil
	},
}

func init() {
	lookupCmd.AddCommand(lookupProviderCmd)
	lookupCmd.AddCommand(lookupActionCmd)
	rootCmd.AddCommand(lookupCmd)
}
