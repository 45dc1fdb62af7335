package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var replaceFlag bool

var importCmd = &cobra.Command{
	Use:   "import [csv-file]",
	Short: "Import a catalog CSV",
	Long: `Append every row of a catalog CSV, exactly as the admin upload does.
With --replace the catalog is emptied and reloaded in one commit; a file
that fails to import leaves the catalog as it was.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&replaceFlag, "replace", false, "replace the whole catalog with the file")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	sectionHeader("CATALOG IMPORT")

	f, err := os.Open(path)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	color.Yellow("  Source: %s\n\n", path)

	var buf bytes.Buffer
	bar := progressbar.NewOptions64(info.Size(),
		progressbar.OptionSetDescription("  Reading CSV"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.GreenString("█"),
			SaucerHead:    color.GreenString("█"),
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
	if _, err := io.Copy(io.MultiWriter(&buf, bar), f); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	_ = bar.Finish()

	c, err := openCatalog(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer c.Close()

	importFn := c.Store.ImportCSV
	if replaceFlag {
		importFn = c.Store.ReplaceCSV
	}
	res, err := importFn(ctx, buf.Bytes())
	if err != nil {
		color.Red("  Import failed: %v", err)
		return err
	}
	if replaceFlag {
		color.Yellow("  Previous catalog replaced\n")
	}

	success := color.New(color.FgGreen)
	success.Printf("  ✓ Imported %d rows\n", res.Imported)
	success.Printf("  ✓ Created %d products\n", res.Created)

	if len(res.Skipped) > 0 {
		color.Yellow("  ⚠ %d rows skipped\n\n", len(res.Skipped))

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Row", "Reason"})
		table.SetBorder(false)
		table.SetHeaderColor(
			tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
			tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		)
		for _, s := range res.Skipped {
			table.Append([]string{strconv.Itoa(s.Row), s.Reason})
		}
		table.Render()
	}
	fmt.Println()
	return nil
}
