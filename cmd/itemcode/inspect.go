package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/itemcode/internal/catalog"
	"github.com/udisondev/itemcode/internal/crypto"
	"github.com/udisondev/itemcode/internal/itemcode"
	"github.com/udisondev/itemcode/internal/model"
)

func parseKind(s string) (model.Kind, error) {
	switch strings.ToLower(s) {
	case "weapon":
		return model.KindWeapon, nil
	case "item":
		return model.KindItem, nil
	default:
		return 0, fmt.Errorf("unknown kind %q, want weapon or item", s)
	}
}

func newInspectCmd(a *app) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "inspect [code...]",
		Short: "Validate item codes and describe their content",
		Long:  "Validates each code and prints its serial header and replacement payload. Codes are read one per line from stdin when none are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			in, err := a.inspector()
			if err != nil {
				return err
			}
			parts, err := a.catalog()
			if err != nil {
				return err
			}

			codes := args
			if len(codes) == 0 {
				if codes, err = readCodes(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			var failed int
			out := cmd.OutOrStdout()
			for _, code := range codes {
				if err := writeInspection(out, in, parts, code, k); err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d codes invalid", failed, len(codes))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "weapon", "field table used to label replacements: weapon or item")
	return cmd
}

func newNormalizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <code>",
		Short: "Rewrite a code in canonical form (plaintext serial, canonical prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := a.inspector()
			if err != nil {
				return err
			}
			code, err := in.Normalize(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		kind    string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Inspect a file of codes concurrently, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = a.cfg.Batch.Workers
			}
			in, err := a.inspector()
			if err != nil {
				return err
			}
			parts, err := a.catalog()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()
			codes, err := readCodes(f)
			if err != nil {
				return err
			}

			failed, err := inspectBatch(cmd, in, parts, codes, k, workers)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d codes, %d valid, %d invalid\n", len(codes), len(codes)-failed, failed)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "weapon", "field table used to label replacements: weapon or item")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent inspections (default from config)")
	return cmd
}

// inspectBatch inspects codes on a bounded worker pool and prints the reports in input order.
func inspectBatch(cmd *cobra.Command, in *itemcode.Inspector, parts *catalog.Catalog, codes []string, kind model.Kind, workers int) (int, error) {
	reports := make([]bytes.Buffer, len(codes))
	invalid := make([]bool, len(codes))

	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(workers)
	for i, code := range codes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			invalid[i] = writeInspection(&reports[i], in, parts, code, kind) != nil
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("batch interrupted: %w", err)
	}

	var failed int
	out := cmd.OutOrStdout()
	for i := range reports {
		if _, err := reports[i].WriteTo(out); err != nil {
			return 0, err
		}
		if invalid[i] {
			failed++
		}
	}
	return failed, nil
}

// readCodes reads non-blank lines.
func readCodes(r io.Reader) ([]string, error) {
	var codes []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			codes = append(codes, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading codes: %w", err)
	}
	return codes, nil
}

// writeInspection prints one report and returns the inspection error, if any.
func writeInspection(w io.Writer, in *itemcode.Inspector, parts *catalog.Catalog, code string, kind model.Kind) error {
	rep, err := in.Inspect(code, kind)
	fmt.Fprintln(w, code)
	if rep.Ident != "" {
		fmt.Fprintf(w, "  ident:    %s\n", rep.Ident)
	}
	if rep.Serial != nil {
		switch key := rep.Key.(type) {
		case crypto.Encrypted:
			fmt.Fprintf(w, "  key:      encrypted, key %#x, steps %d\n", key.Key, key.Steps)
		default:
			fmt.Fprintln(w, "  key:      plaintext")
		}
		fmt.Fprintf(w, "  marker:   %#02x\n", rep.Marker)
		fmt.Fprintf(w, "  serial:   %x (%d bytes)\n", rep.Serial, len(rep.Serial))
		fmt.Fprintf(w, "  checksum: stored %#04x, computed %#04x\n", rep.StoredChecksum, rep.Checksum)
	}
	if err != nil {
		fmt.Fprintf(w, "  result:   %s: %v\n", resultName(err), err)
		return err
	}

	if !rep.Modded {
		fmt.Fprintln(w, "  result:   vanilla")
		return nil
	}
	fmt.Fprintf(w, "  result:   modded, mask %#04x\n", rep.Payload.Mask)
	for _, r := range rep.Payload.Values {
		status := ""
		if parts != nil && !r.Field.IsInt && r.Name != "" {
			if _, ok := parts.Lookup(r.Name); ok {
				status = " [installed]"
			} else {
				status = " [missing]"
			}
		}
		fmt.Fprintf(w, "    %-26s %s%s\n", r.Field.Name, r, status)
	}
	return nil
}

func resultName(err error) string {
	switch {
	case errors.Is(err, itemcode.ErrNoMatch):
		return itemcode.NoMatch.String()
	case errors.Is(err, itemcode.ErrWrongGame):
		return itemcode.WrongGame.String()
	default:
		return itemcode.MalformedCode.String()
	}
}
