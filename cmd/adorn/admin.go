package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dukerupert/adorn/internal/domain"
)

const ordersPerPage = 20

func cmdLogin(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	password := os.Getenv("ADORN_PASSWORD")
	if password == "" {
		fmt.Fprint(a.out, "Password: ")
		line, err := bufio.NewReader(a.stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	session, err := a.services.Auth.Login(ctx, args[0], password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", session.User.FullName(), session.User.Role)
	if exp, ok := a.state.Token.ExpiresAt(); ok {
		fmt.Fprintf(a.out, "Session expires %s\n", exp.Local().Format(time.RFC1123))
	}
	return nil
}

func cmdLogout(ctx context.Context, a *app, args []string) error {
	if err := a.services.Auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func cmdWhoami(ctx context.Context, a *app, args []string) error {
	token, err := a.state.Token.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}

	user, err := a.services.Auth.Verify(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\n", user.FullName(), user.Email)
	fmt.Fprintf(a.out, "  role: %s\n", user.Role)
	if len(user.Permissions) > 0 {
		fmt.Fprintf(a.out, "  permissions: %s\n", strings.Join(user.Permissions, ", "))
	}
	return nil
}

func cmdOrders(ctx context.Context, a *app, args []string) error {
	filter := domain.OrderFilter{Page: a.flags.page, Limit: ordersPerPage}
	if a.flags.status != "" {
		st, err := domain.ParseOrderStatus(a.flags.status)
		if err != nil {
			return err
		}
		filter.Status = st
	}

	page, err := a.services.Orders.List(ctx, filter)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tCUSTOMER\tTOTAL\tSTATUS\tPAYMENT\t")
	for _, o := range page.Orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			o.ID, o.OrderNumber, o.UserEmail, a.money(o.TotalMinor), o.Status, o.PaymentStatus)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	p := page.Pagination
	fmt.Fprintf(a.out, "page %d of %d (%d orders)\n", p.Page, p.TotalPages, p.Total)
	return nil
}

func cmdOrderStatus(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	order, err := a.services.Orders.UpdateStatus(ctx, args[0], domain.OrderStatus(args[1]), a.flags.note)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Order %s is now %s\n", order.OrderNumber, order.Status)
	return nil
}
