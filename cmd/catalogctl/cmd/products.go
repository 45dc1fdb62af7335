package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/dukerupert/flipcart/internal/domain"
)

var (
	searchFlag string
	startFlag  int
	lengthFlag int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List products in storefront order",
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a product and its variants",
	Long:  `Show a product by id or by the md5 id used in storefront links.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	listCmd.Flags().StringVarP(&searchFlag, "search", "s", "", "only products whose name, color, size or storage contains this text")
	listCmd.Flags().IntVar(&startFlag, "start", 0, "skip this many products")
	listCmd.Flags().IntVar(&lengthFlag, "length", 50, "show at most this many products")
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	c, err := openCatalog(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer c.Close()

	res, err := c.Store.List(ctx, domain.ListParams{Offset: startFlag, Limit: lengthFlag, Search: searchFlag})
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	sectionHeader("PRODUCTS")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "Order", "Variants", "Price", "MRP"})
	table.SetBorder(false)
	table.SetHeaderColor(
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
	)
	table.SetColumnColor(
		tablewriter.Colors{tablewriter.FgYellowColor},
		tablewriter.Colors{},
		tablewriter.Colors{},
		tablewriter.Colors{},
		tablewriter.Colors{tablewriter.FgGreenColor},
		tablewriter.Colors{},
	)
	for _, p := range res.Items {
		table.Append([]string{
			p.ID,
			truncate(p.Name, 35),
			p.DisplayOrder,
			strconv.Itoa(len(p.Variants)),
			p.SellingPrice,
			p.MRP,
		})
	}
	table.Render()

	fmt.Printf("\n  Showing %d of %d products\n\n", len(res.Items), res.Filtered)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	c, err := openCatalog(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer c.Close()

	p, err := c.Store.Get(ctx, args[0])
	if err != nil {
		color.Red("  %s", domain.ErrorMessage(err))
		return err
	}

	sectionHeader(p.Name)

	label := color.New(color.FgYellow)
	label.Print("  ID        ")
	fmt.Printf("%s (md5 %s)\n", p.ID, p.Hash)
	label.Print("  Order     ")
	fmt.Println(p.DisplayOrder)
	label.Print("  Price     ")
	fmt.Printf("%s (MRP %s, %d%% off)\n", p.SellingPrice, p.MRP, p.DiscountPercent)
	fmt.Println()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Variant", "Color", "Size", "Storage", "Price", "MRP", "Images"})
	table.SetBorder(false)
	for _, v := range p.Variants {
		images := 0
		for slot := 1; slot <= domain.ImageSlots; slot++ {
			if v.Image(slot) != "" {
				images++
			}
		}
		imageCell := strconv.Itoa(images)
		if images == 0 {
			imageCell = color.RedString("missing")
		}
		table.Append([]string{v.ID, v.Color, v.Size, v.Storage, v.SellingPrice, v.MRP, imageCell})
	}
	table.Render()
	fmt.Println()
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
