package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/dukerupert/adorn/internal/domain"
)

func cmdCart(ctx context.Context, a *app, args []string) error {
	cart := a.state.Cart

	if len(args) > 0 {
		var err error
		switch args[0] {
		case "add":
			if len(args) != 2 {
				return errUsage
			}
			var p *domain.Product
			if p, err = a.services.Catalog.GetProduct(ctx, args[1]); err == nil {
				err = cart.AddItem(ctx, *p)
			}
		case "qty":
			if len(args) != 3 {
				return errUsage
			}
			n, convErr := strconv.Atoi(args[2])
			if convErr != nil {
				return domain.NewValidationError("cart.update", "quantity", "must be a whole number")
			}
			err = cart.UpdateQuantity(ctx, args[1], n)
		case "rm":
			if len(args) != 2 {
				return errUsage
			}
			err = cart.RemoveItem(ctx, args[1])
		case "clear":
			err = cart.Clear(ctx)
		default:
			return errUsage
		}
		if err != nil {
			return err
		}
	}

	summary := cart.Summary()
	if len(summary.Items) == 0 {
		fmt.Fprintln(a.out, "Your cart is empty")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tLINE\t")
	for _, it := range summary.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t\n", it.ID, it.Name, it.Quantity, a.money(it.PriceMinor), a.money(it.LineTotal()))
	}
	fmt.Fprintf(tw, "\t%d items\t\t\t%s\t\n", summary.ItemCount, a.money(summary.TotalMinor))
	return tw.Flush()
}

func cmdWishlist(ctx context.Context, a *app, args []string) error {
	wishlist := a.state.Wishlist

	if len(args) > 0 {
		if len(args) != 2 {
			return errUsage
		}
		var err error
		switch args[0] {
		case "add":
			if wishlist.Contains(args[1]) {
				break
			}
			var p *domain.Product
			if p, err = a.services.Catalog.GetProduct(ctx, args[1]); err == nil {
				err = wishlist.Add(ctx, *p)
			}
		case "rm":
			err = wishlist.Remove(ctx, args[1])
		default:
			return errUsage
		}
		if err != nil {
			return err
		}
	}

	items := wishlist.Items()
	if len(items) == 0 {
		fmt.Fprintln(a.out, "Your wishlist is empty")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\t\t")
	for _, p := range items {
		mark := ""
		if a.state.Cart.Contains(p.ID) {
			mark = "in cart"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", p.ID, p.Name, a.money(p.PriceMinor), mark)
	}
	return tw.Flush()
}

func cmdTheme(ctx context.Context, a *app, args []string) error {
	theme := a.state.Theme

	if len(args) > 1 {
		return errUsage
	}
	if len(args) == 1 {
		var err error
		switch args[0] {
		case "dark":
			err = theme.SetDark(ctx, true)
		case "light":
			err = theme.SetDark(ctx, false)
		case "toggle":
			_, err = theme.Toggle(ctx)
		default:
			return errUsage
		}
		if err != nil {
			return err
		}
	}

	if theme.IsDark() {
		fmt.Fprintln(a.out, "dark")
	} else {
		fmt.Fprintln(a.out, "light")
	}
	return nil
}
