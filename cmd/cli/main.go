package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"gokeyword/adapters/excel"
	"gokeyword/adapters/postgres"
	"gokeyword/app"
	"gokeyword/internal"
	"gokeyword/internal/config"
	"gokeyword/internal/database"
	"gokeyword/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "gokeyword",
		Short:         "Region keyword combinator CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	regionsCmd := &cobra.Command{
		Use:   "regions",
		Short: "Manage the region hierarchy reference table",
	}
	regionsCmd.AddCommand(newRegionsImportCmd(), newRegionsListCmd())

	rootCmd.AddCommand(
		newGenerateCmd(),
		newSheetsCmd(),
		regionsCmd,
		newMigrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env bundles the loaded configuration and an optional database connection
type env struct {
	cfg    *config.Config
	logger *internal.Logger
	db     *sqlx.DB
}

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: internal.NewLogger(cfg.LogLevel)}, nil
}

// connect opens the database. With required false a missing or failing
// database is logged and the command continues without a reference table.
func (e *env) connect(ctx context.Context, required bool) error {
	db, err := database.Open(ctx, e.cfg.Database, e.logger)
	if err != nil {
		if required {
			return err
		}
		e.logger.Warn("continuing without reference table: %v", err)
		return nil
	}
	e.db = db
	return nil
}

func (e *env) close() {
	if e.db != nil {
		e.db.Close()
	}
}

func (e *env) service() *app.KeywordService {
	var repo ports.RegionRepository
	if e.db != nil {
		repo = postgres.NewRegionRepository(e.db, e.cfg.Database.Table)
	}
	return app.NewKeywordService(repo, app.KeywordServiceConfig{
		MaxRows:         e.cfg.Generate.MaxRows,
		DedupeReference: e.cfg.Generate.DedupeReference,
	}, e.logger)
}

func newGenerateCmd() *cobra.Command {
	var input, output, format string
	var selections, keywords, noSpace, regions []string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Combine regions with keyword groups and classify them",
		Long: `Combine region values with every keyword group and classify each row
against the region hierarchy.

Example: gokeyword generate --input book.xlsx --select 'Sheet1:Region,Alt' \
  --keywords 'B=@b.txt' --keywords 'C=카페\n맛집' --no-space C --output out.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, err := loadEnv()
			if err != nil {
				return err
			}

			values, err := collectRegions(input, selections, regions)
			if err != nil {
				return err
			}
			groups, err := buildGroups(keywords, noSpace, nil)
			if err != nil {
				return err
			}

			if err := e.connect(ctx, false); err != nil {
				return err
			}
			defer e.close()

			result, err := e.service().Generate(ctx, app.GenerateRequest{Regions: values, Groups: groups})
			if err != nil {
				return err
			}
			for _, w := range result.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
			}

			f := excel.FormatForPath(output)
			if format != "" {
				if f, err = excel.ParseFormat(format); err != nil {
					return err
				}
			}
			if err := writeTable(cmd.OutOrStdout(), output, f, result); err != nil {
				return err
			}
			e.logger.Info("run %s: %d rows (%d categorized)", result.RunID, result.Table.Len(), result.MatchedRows)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Workbook (.xlsx or .csv) holding region values")
	cmd.Flags().StringArrayVar(&selections, "select", nil, "Sheet and columns to read regions from, e.g. 'Sheet1:Region,Alt' (repeatable)")
	cmd.Flags().StringArrayVar(&regions, "region", nil, "Literal region value (repeatable)")
	cmd.Flags().StringArrayVar(&keywords, "keywords", nil, "Keyword group as text, ID=text or ID=@file; IDs are uppercase tags like B or C, so text containing = without a tag stays text (repeatable, in order)")
	cmd.Flags().StringSliceVar(&noSpace, "no-space", nil, "Group IDs joined without a leading space")
	cmd.Flags().StringVar(&output, "output", "", "Output file (.csv or .xlsx); CSV to stdout when empty")
	cmd.Flags().StringVar(&format, "format", "", "Force output format: csv or xlsx")
	return cmd
}

func collectRegions(input string, selections, literals []string) ([]string, error) {
	values := append([]string(nil), literals...)
	if input == "" {
		if len(selections) > 0 {
			return nil, fmt.Errorf("--select requires --input")
		}
		return values, nil
	}
	if len(selections) == 0 {
		return nil, fmt.Errorf("--input requires at least one --select")
	}

	wb, err := excel.OpenWorkbook(input)
	if err != nil {
		return nil, err
	}
	sels := make([]excel.SheetSelection, 0, len(selections))
	for _, raw := range selections {
		sel, err := parseSelection(raw)
		if err != nil {
			return nil, err
		}
		sels = append(sels, sel)
	}
	fromBook, err := excel.CollectRegions(wb, sels)
	if err != nil {
		return nil, err
	}
	return append(values, fromBook...), nil
}

func writeTable(stdout io.Writer, output string, format excel.Format, result *app.GenerateResult) error {
	if output == "" {
		return excel.Export(stdout, format, result.Table)
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	if err := excel.Export(f, format, result.Table); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newSheetsCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "List the sheets and column headers of a workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := excel.OpenWorkbook(input)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SHEET\tROWS\tCOLUMNS")
			for _, s := range wb.Summaries() {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", s.Name, s.RowCount, strings.Join(s.Headers, ", "))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Workbook (.xlsx or .csv)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newRegionsImportCmd() *cobra.Command {
	var input, sheet string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the reference table with a workbook sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			wb, err := excel.OpenWorkbook(input)
			if err != nil {
				return err
			}
			if sheet == "" {
				names := wb.SheetNames()
				if len(names) == 0 {
					return fmt.Errorf("workbook %s has no sheets", input)
				}
				sheet = names[0]
			}
			data, err := wb.Sheet(sheet)
			if err != nil {
				return err
			}
			records, err := excel.ReferenceRecords(data)
			if err != nil {
				return err
			}

			e, err := loadEnv()
			if err != nil {
				return err
			}
			if err := e.connect(ctx, true); err != nil {
				return err
			}
			defer e.close()

			if err := e.service().ImportReference(ctx, records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records from %s\n", len(records), sheet)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Workbook (.xlsx or .csv)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to import (first sheet when empty)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newRegionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the reference table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, err := loadEnv()
			if err != nil {
				return err
			}
			if err := e.connect(ctx, true); err != nil {
				return err
			}
			defer e.close()

			records, err := e.service().ListReference(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tLEVEL_1\tLEVEL_2\tLEVEL_3")
			for _, r := range records {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Level1, r.Level2, r.Level3)
			}
			return tw.Flush()
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the reference table and index",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			if err := e.connect(cmd.Context(), true); err != nil {
				return err
			}
			defer e.close()

			fmt.Fprintf(cmd.OutOrStdout(), "table %s is ready\n", e.cfg.Database.Table)
			return nil
		},
	}
}
