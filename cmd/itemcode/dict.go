package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/udisondev/itemcode/internal/zdict"
)

func newDictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Build and fingerprint extension block dictionaries",
	}
	cmd.AddCommand(newDictBuildCmd(), newDictHashCmd())
	return cmd
}

func newDictBuildCmd() *cobra.Command {
	var (
		output string
		opts   zdict.BuildOptions
	)
	cmd := &cobra.Command{
		Use:   "build <parts>",
		Short: "Generate a dictionary from a part list (one object path per line)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening part list: %w", err)
			}
			defer f.Close()

			names, err := zdict.ReadPartNames(f)
			if err != nil {
				return err
			}
			data := zdict.Build(names, opts)
			dict, err := zdict.New(data)
			if err != nil {
				return fmt.Errorf("building dictionary: %w", err)
			}

			if err := os.WriteFile(output, dict.Bytes(), 0o644); err != nil {
				return fmt.Errorf("writing dictionary: %w", err)
			}
			slog.Info("dictionary written", "path", output, "parts", len(names), "size", len(data))
			fmt.Fprintln(cmd.OutOrStdout(), dict.Hash())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "itemcode.zdict", "output file")
	cmd.Flags().IntVar(&opts.MinRepeats, "min-repeats", 0, "drop substrings seen fewer times (default 7)")
	cmd.Flags().IntVar(&opts.TargetSize, "size", 0, "target dictionary size in bytes (default 32768)")
	return cmd
}

func newDictHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash [file]",
		Short: "Print the BLAKE2b-256 hash of a dictionary (embedded one without a file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				dict *zdict.Dictionary
				err  error
			)
			if len(args) == 0 {
				dict, err = zdict.Default()
			} else {
				dict, err = zdict.Load(args[0], "")
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dict.Hash())
			return nil
		},
	}
}
