// Package service holds one service per storefront backend resource. Services
// validate input before any network call, decode the {data, message} envelope
// into typed values and convert money at a single boundary (money.go).
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/dukerupert/adorn/internal/apiclient"
	"github.com/dukerupert/adorn/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Requester is the part of *apiclient.Client the services use.
type Requester interface {
	Do(ctx context.Context, method, path string, body, out any, opts ...apiclient.RequestOption) error
}

var errNilRequester = errors.New("service: requester is required")

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names so field errors line up with form fields.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})

	// Prices are checked as numbers, so gte/gt tags apply to them.
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		return f.Interface().(amount).InexactFloat64()
	}, amount{})
	return v
}

// Validate checks v against its validate tags and reports failures as a
// *domain.ValidationError keyed by JSON field name.
func Validate(op string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Internal(err, op, "validation failed")
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fieldPath(fe)
		if _, seen := fields[name]; !seen {
			fields[name] = fieldMessage(fe)
		}
	}
	return &domain.ValidationError{Op: op, Fields: fields}
}

// fieldPath drops the top-level struct name: "ProductInput.name" -> "name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "slug":
		return "must contain only lowercase letters, numbers and hyphens"
	case "url", "uri":
		return "must be a valid link"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	default:
		return "is invalid"
	}
}

// requireID rejects an empty resource ID before it turns into a bad path.
func requireID(op, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.NewValidationError(op, "id", "is required")
	}
	return nil
}

// Services bundles every backend service over one requester.
type Services struct {
	Catalog    CatalogService
	Products   ProductAdminService
	Categories CategoryAdminService
	HeroSlides HeroSlideAdminService
	Content    ContentAdminService
	Orders     OrderService
	Auth       AuthService
	Users      UserAdminService
	Uploads    UploadService
	Payments   PaymentService
}

// New wires all services. tokens receives the token on login and is cleared
// on logout or a rejected verify.
func New(api Requester, tokens TokenStore) (*Services, error) {
	if api == nil {
		return nil, errNilRequester
	}
	auth, err := NewAuthService(api, tokens)
	if err != nil {
		return nil, err
	}
	return &Services{
		Catalog:    &catalogService{api: api},
		Products:   &productAdminService{api: api},
		Categories: &categoryAdminService{api: api},
		HeroSlides: &heroSlideAdminService{api: api},
		Content:    &contentAdminService{api: api},
		Orders:     &orderService{api: api},
		Auth:       auth,
		Users:      &userAdminService{api: api},
		Uploads:    &uploadService{api: api},
		Payments:   &paymentService{api: api},
	}, nil
}
