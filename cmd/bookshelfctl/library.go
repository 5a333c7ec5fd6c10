package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var email, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a user's library as JSON",
		Long:  "Write a user's library in the same format as GET /api/v1/library/export.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withContainer(cmd, func(i do.Injector) error {
				authService := do.MustInvoke[*service.AuthService](i)
				library := do.MustInvoke[*service.LibraryService](i)

				userID, err := authService.UserIDByEmail(cmd.Context(), email)
				if err != nil {
					return err
				}

				export, err := library.Export(cmd.Context(), userID)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if out != "" && out != "-" {
					//#nosec G304 -- operator-supplied output path
					f, err := os.Create(out)
					if err != nil {
						return fmt.Errorf("create %s: %w", out, err)
					}
					defer f.Close()
					w = f
				}

				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(export); err != nil {
					return fmt.Errorf("write export: %w", err)
				}

				if w != cmd.OutOrStdout() {
					fmt.Fprintf(cmd.OutOrStdout(), "Exported %d books to %s\n", len(export.Books), out)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var email, in string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Add books from an export file to a user's library",
		Long: `Add books from an export file to a user's library.

Every book is created fresh. The import stops at the first invalid book;
books before it stay imported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var r io.Reader = cmd.InOrStdin()
			if in != "" && in != "-" {
				//#nosec G304 -- operator-supplied input path
				f, err := os.Open(in)
				if err != nil {
					return fmt.Errorf("open %s: %w", in, err)
				}
				defer f.Close()
				r = f
			}

			var req service.ImportRequest
			if err := json.NewDecoder(r).Decode(&req); err != nil {
				return fmt.Errorf("decode import file: %w", err)
			}

			return opts.withContainer(cmd, func(i do.Injector) error {
				authService := do.MustInvoke[*service.AuthService](i)
				library := do.MustInvoke[*service.LibraryService](i)

				userID, err := authService.UserIDByEmail(cmd.Context(), email)
				if err != nil {
					return err
				}

				// Keep the index in step with the new books.
				_ = do.MustInvoke[*service.SearchService](i)

				result, err := library.Import(cmd.Context(), userID, req)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d books\n", result.Imported, len(req.Books))
				if result.Failed != nil {
					return fmt.Errorf("book %d: %s", result.Failed.Index, result.Failed.Error)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVarP(&in, "in", "i", "", "Input file (default: stdin)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
