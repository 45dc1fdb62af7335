package cmd

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/dukerupert/flipcart/internal/catalog"
	"github.com/dukerupert/flipcart/internal/domain"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the catalog",
	Long:  `Count products, variants and images, and flag products the storefront hides or renders without pictures.`,
	RunE:  runStats,
}

type catalogStats struct {
	products       int
	variants       int
	noImages       int
	defaultOrder   int
	discounted     int
	colors         map[string]int
	missingPricing []string
}

func collectStats(items []domain.Product) catalogStats {
	st := catalogStats{colors: map[string]int{}}
	for _, p := range items {
		st.products++
		st.variants += len(p.Variants)
		if p.DisplayOrder == domain.DefaultDisplayOrder {
			st.defaultOrder++
		}
		if catalog.DiscountPercent(p.MRP, p.SellingPrice) > 0 {
			st.discounted++
		}
		if p.SellingPrice == "" {
			st.missingPricing = append(st.missingPricing, p.Name)
		}

		hasImage := false
		for _, v := range p.Variants {
			st.colors[v.Color]++
			for slot := 1; slot <= domain.ImageSlots && !hasImage; slot++ {
				hasImage = v.Image(slot) != ""
			}
		}
		if !hasImage {
			st.noImages++
		}
	}
	return st
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	c, err := openCatalog(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer c.Close()

	res, err := c.Store.List(ctx, domain.ListParams{Limit: math.MaxInt32})
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	st := collectStats(res.Items)

	sectionHeader("CATALOG STATS")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetBorder(false)
	table.SetColumnColor(
		tablewriter.Colors{tablewriter.FgYellowColor},
		tablewriter.Colors{tablewriter.Bold},
	)
	table.AppendBulk([][]string{
		{"Products", strconv.Itoa(st.products)},
		{"Variants", strconv.Itoa(st.variants)},
		{"Distinct colors", strconv.Itoa(len(st.colors))},
		{"Discounted", strconv.Itoa(st.discounted)},
		{"Default order", strconv.Itoa(st.defaultOrder)},
		{"Without images", strconv.Itoa(st.noImages)},
	})
	table.Render()
	fmt.Println()

	if st.noImages > 0 {
		color.Yellow("  ⚠ %d products have no images\n", st.noImages)
	}
	for _, name := range st.missingPricing {
		color.Yellow("  ⚠ %s has no selling price\n", name)
	}
	if st.noImages == 0 && len(st.missingPricing) == 0 {
		color.Green("  ✓ Every product has images and a price\n")
	}
	fmt.Println()
	return nil
}
