package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dukerupert/adorn/internal/domain"
)

func cmdQuote(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	co, err := a.Checkout()
	if err != nil {
		return err
	}
	q, err := co.Quote(ctx, args[0])
	if err != nil {
		return err
	}
	printQuote(a, q)
	return nil
}

func printQuote(a *app, q domain.Quote) {
	fmt.Fprintf(a.out, "Subtotal:      %s\n", a.money(q.SubtotalMinor))
	fmt.Fprintf(a.out, "Delivery (%s): %s\n", q.Region, a.money(q.DeliveryMinor))
	fmt.Fprintf(a.out, "Total:         %s\n", a.money(q.TotalMinor))
}

func cmdRegions(ctx context.Context, a *app, args []string) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REGION\tFEE\t")
	for _, r := range a.fees.Regions() {
		fmt.Fprintf(tw, "%s\t%s\t\n", r.Name, a.money(r.FeeMinor))
	}
	return tw.Flush()
}

func cmdCheckout(ctx context.Context, a *app, args []string) error {
	co, err := a.Checkout()
	if err != nil {
		return err
	}

	f := a.flags
	info := domain.CustomerInfo{
		Email:    f.email,
		Mobile:   f.mobile,
		FullName: f.fullName,
		Address:  f.address,
		City:     f.city,
		State:    f.region,
	}

	result, err := co.Submit(ctx, info, f.paymentMethod)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Payment successful")
	if result.Order != nil {
		number := result.Order.OrderNumber
		if number == "" {
			number = result.Order.ID
		}
		fmt.Fprintf(a.out, "Order:         %s\n", number)
	}
	printQuote(a, result.Quote)
	return nil
}
