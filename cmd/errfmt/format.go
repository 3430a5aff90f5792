package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chameleon-db/errfmt/pkg/errfmt"
	"github.com/spf13/cobra"
)

var rawInput bool

var formatCmd = &cobra.Command{
	Use:   "format [file]",
	Short: "Format an error described as JSON",
	Long: `Read a JSON document and print it the way it would be logged.

An object with "name" and "message" is treated as an error. The keys
constraint, table, fields, detail, sql and original describe a failed
database operation, and stack holds the trace text. Any other document
is printed as compact JSON.

Examples:
  errfmt format error.json
  echo '{"name":"SequelizeForeignKeyConstraintError","message":"Foreign key constraint","constraint":"fk_user_id"}' | errfmt format
  echo 'connection refused' | errfmt format --raw`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var input []byte
		var err error

		if len(args) > 0 {
			printInfo("Reading %s", args[0])
			input, err = os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
		} else {
			printInfo("Reading stdin")
			input, err = io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
		}

		var value any
		if rawInput {
			value = strings.TrimRight(string(input), "\r\n")
		} else {
			value, err = errfmt.Decode(input)
			if err != nil {
				return err
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), highlight(errfmt.FormatError(value)))
		return nil
	},
}

func init() {
	formatCmd.Flags().BoolVar(&rawInput, "raw", false, "treat the input as a plain string instead of JSON")
	rootCmd.AddCommand(formatCmd)
}
