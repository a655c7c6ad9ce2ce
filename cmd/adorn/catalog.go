package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dukerupert/adorn/internal/domain"
)

var errUsage = errors.New("wrong number of arguments, see adorn --help")

func cmdProducts(ctx context.Context, a *app, args []string) error {
	var (
		products []domain.Product
		err      error
	)
	if a.flags.category != "" {
		products, err = a.services.Catalog.ListProductsByCategory(ctx, a.flags.category)
	} else {
		products, err = a.services.Catalog.ListProducts(ctx)
	}
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK\t")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t\n", p.ID, p.Name, a.money(p.PriceMinor), p.Stock)
	}
	return tw.Flush()
}

func cmdProduct(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	p, err := a.services.Catalog.GetProduct(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(a.out, "  price:    %s\n", a.money(p.PriceMinor))
	fmt.Fprintf(a.out, "  stock:    %d\n", p.Stock)
	if p.Category != nil {
		fmt.Fprintf(a.out, "  category: %s\n", p.Category.Name)
	}
	if p.Rating > 0 {
		fmt.Fprintf(a.out, "  rating:   %.1f\n", p.Rating)
	}
	if len(p.Images) > 0 {
		fmt.Fprintf(a.out, "  images:   %s\n", strings.Join(p.Images, ", "))
	}
	if p.Description != "" {
		fmt.Fprintf(a.out, "\n%s\n", p.Description)
	}
	if a.state.Cart.Contains(p.ID) {
		fmt.Fprintln(a.out, "\n(in your cart)")
	}
	return nil
}

func cmdCategories(ctx context.Context, a *app, args []string) error {
	categories, err := a.services.Catalog.ListCategories(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tNAME\t")
	for _, c := range categories {
		fmt.Fprintf(tw, "%s\t%s\t\n", c.Slug, c.Name)
	}
	return tw.Flush()
}
