package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dukerupert/adorn/internal/domain"
	"github.com/dukerupert/adorn/internal/service"
	"github.com/shopspring/decimal"
)

// Back-office commands. They need an admin session from `adorn login`.

const usersPerPage = 20

func cmdAdminProducts(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		products, err := a.services.Products.List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK\tACTIVE\t")
		for _, p := range products {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\t\n", p.ID, p.Name, a.money(p.PriceMinor), p.Stock, p.IsActive)
		}
		return tw.Flush()
	}

	var (
		p   *domain.Product
		err error
	)
	switch args[0] {
	case "add":
		if len(args) != 2 {
			return errUsage
		}
		in := service.ProductInput{Name: args[1]}
		if err := a.applyProductFlags(&in); err != nil {
			return err
		}
		p, err = withFiles(a.flags.images, func(files []service.File) (*domain.Product, error) {
			if len(files) > 0 {
				return a.services.Products.CreateWithFiles(ctx, in, files)
			}
			return a.services.Products.Create(ctx, in)
		})
	case "edit":
		if len(args) != 2 {
			return errUsage
		}
		current, getErr := a.services.Catalog.GetProduct(ctx, args[1])
		if getErr != nil {
			return getErr
		}
		in := productInputFrom(*current)
		if err := a.applyProductFlags(&in); err != nil {
			return err
		}
		p, err = withFiles(a.flags.images, func(files []service.File) (*domain.Product, error) {
			if len(files) > 0 {
				return a.services.Products.UpdateWithFiles(ctx, current.ID, in, files)
			}
			return a.services.Products.Update(ctx, current.ID, in)
		})
	case "rm":
		if len(args) != 2 {
			return errUsage
		}
		if err := a.services.Products.Delete(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted product %s\n", args[1])
		return nil
	default:
		return errUsage
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%s) %s, %d in stock\n", p.Name, p.ID, a.money(p.PriceMinor), p.Stock)
	return nil
}

func productInputFrom(p domain.Product) service.ProductInput {
	active := p.IsActive
	return service.ProductInput{
		Name:        p.Name,
		Description: p.Description,
		PriceMinor:  p.PriceMinor,
		CategoryID:  p.CategoryID,
		Images:      p.Images,
		Stock:       p.Stock,
		Rating:      p.Rating,
		IsActive:    &active,
	}
}

// applyProductFlags overwrites the fields whose flags were given.
func (a *app) applyProductFlags(in *service.ProductInput) error {
	f := a.flags
	if f.changed("price") {
		d, err := decimal.NewFromString(f.price)
		if err != nil {
			return domain.NewValidationError("product.input", "price", "must be a number such as 1500.50")
		}
		in.PriceMinor = service.ToMinor(d)
	}
	if f.changed("description") {
		in.Description = f.description
	}
	if f.changed("category-id") {
		in.CategoryID = f.categoryID
	}
	if f.changed("stock") {
		in.Stock = f.stock
	}
	if f.changed("inactive") {
		active := !f.inactive
		in.IsActive = &active
	}
	return nil
}

func cmdAdminCategories(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return cmdCategories(ctx, a, args)
	}

	switch args[0] {
	case "add":
		if len(args) != 3 {
			return errUsage
		}
		in := service.CategoryInput{Slug: args[1], Name: args[2], Description: a.flags.description}
		c, err := withFiles(a.flags.images, func(files []service.File) (*domain.Category, error) {
			if len(files) > 0 {
				return a.services.Categories.CreateWithImage(ctx, in, files[0])
			}
			return a.services.Categories.Create(ctx, in)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created category %s (%s)\n", c.Slug, c.ID)
	case "rm":
		if len(args) != 2 {
			return errUsage
		}
		if err := a.services.Categories.Delete(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted category %s\n", args[1])
	default:
		return errUsage
	}
	return nil
}

func cmdSlides(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		slides, err := a.services.HeroSlides.List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ORDER\tID\tTITLE\tLINK\tACTIVE\t")
		for _, s := range slides {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t\n", s.OrderIndex, s.ID, s.Title, s.CTALink, s.IsActive)
		}
		return tw.Flush()
	}

	switch args[0] {
	case "add":
		if len(args) != 2 {
			return errUsage
		}
		active := !a.flags.inactive
		in := service.HeroSlideInput{
			Title:      args[1],
			Subtitle:   a.flags.subtitle,
			CTAText:    a.flags.ctaText,
			CTALink:    a.flags.link,
			OrderIndex: a.flags.order,
			IsActive:   &active,
		}
		// Slides carry an image URL, so a local file is uploaded first.
		if len(a.flags.images) > 0 {
			url, err := a.uploadFile(ctx, "hero-slides", a.flags.images[0])
			if err != nil {
				return err
			}
			in.Image = url
		}
		s, err := a.services.HeroSlides.Create(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created slide %q (%s)\n", s.Title, s.ID)
	case "rm":
		if len(args) != 2 {
			return errUsage
		}
		if err := a.services.HeroSlides.Delete(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted slide %s\n", args[1])
	default:
		return errUsage
	}
	return nil
}

func cmdContent(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		blocks, err := a.services.Content.ListAll(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tPAGE\tSECTION\tTYPE\tACTIVE\t")
		for _, b := range blocks {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t\n", b.ID, b.Page, b.Section, b.ContentType, b.IsActive)
		}
		return tw.Flush()
	}

	switch args[0] {
	case "add":
		if len(args) != 3 {
			return errUsage
		}
		if !json.Valid([]byte(a.flags.data)) {
			return domain.NewValidationError("content.create", "contentData", "must be valid JSON")
		}
		active := !a.flags.inactive
		b, err := a.services.Content.Create(ctx, service.ContentInput{
			Page:        args[1],
			Section:     args[2],
			ContentType: a.flags.contentType,
			ContentData: json.RawMessage(a.flags.data),
			IsActive:    &active,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created %s/%s (%s)\n", b.Page, b.Section, b.ID)
	case "rm":
		if len(args) != 2 {
			return errUsage
		}
		if err := a.services.Content.Delete(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted content %s\n", args[1])
	default:
		return errUsage
	}
	return nil
}

func cmdUsers(ctx context.Context, a *app, args []string) error {
	if len(args) == 1 && args[0] == "stats" {
		stats, err := a.services.Users.Stats(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "total\t%d\t\n", stats.Total)
		fmt.Fprintf(tw, "active\t%d\t\n", stats.TotalActive)
		fmt.Fprintf(tw, "inactive\t%d\t\n", stats.TotalInactive)
		fmt.Fprintf(tw, "admins\t%d\t\n", stats.TotalAdmins)
		fmt.Fprintf(tw, "managers\t%d\t\n", stats.TotalManagers)
		fmt.Fprintf(tw, "new last month\t%d\t\n", stats.NewUsersLastMonth)
		return tw.Flush()
	}
	if len(args) != 0 {
		return errUsage
	}

	page, err := a.services.Users.List(ctx, domain.UserFilter{
		Page:   a.flags.page,
		Limit:  usersPerPage,
		Search: a.flags.search,
		Role:   domain.Role(a.flags.role),
	})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE\tACTIVE\t")
	for _, u := range page.Users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t\n", u.ID, u.Email, u.FullName(), u.Role, u.IsActive)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	p := page.Pagination
	fmt.Fprintf(a.out, "page %d of %d (%d users)\n", p.Page, p.TotalPages, p.Total)
	return nil
}

func cmdUpload(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	url, err := a.uploadFile(ctx, a.flags.path, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, url)
	return nil
}

// uploadFile sends a local file. Without a folder it goes to the single
// upload endpoint.
func (a *app) uploadFile(ctx context.Context, folder, name string) (string, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	if folder == "" {
		return a.services.Uploads.UploadSingle(ctx, filepath.Base(name), f)
	}
	return a.services.Uploads.Upload(ctx, folder, filepath.Base(name), f)
}

// withFiles opens every path, hands them to fn as upload parts and closes
// them once fn returns.
func withFiles[T any](paths []string, fn func([]service.File) (T, error)) (T, error) {
	files := make([]service.File, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			var zero T
			return zero, fmt.Errorf("failed to open %s: %w", p, err)
		}
		defer f.Close()
		files = append(files, service.File{Name: filepath.Base(p), Reader: f})
	}
	return fn(files)
}
