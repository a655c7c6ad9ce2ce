package service

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dukerupert/adorn/internal/apiclient"
	"github.com/dukerupert/adorn/internal/domain"
)

type UserInput struct {
	Email       string      `json:"email" validate:"required,email"`
	Password    string      `json:"password" validate:"required,min=8"`
	FirstName   string      `json:"firstName" validate:"required"`
	LastName    string      `json:"lastName" validate:"required"`
	Role        domain.Role `json:"role,omitempty" validate:"omitempty,oneof=admin manager user"`
	Permissions []string    `json:"permissions,omitempty"`
	IsActive    *bool       `json:"isActive,omitempty"`
	Phone       string      `json:"phone,omitempty"`
}

// UserUpdate changes only the fields that are set.
type UserUpdate struct {
	Email        *string      `json:"email,omitempty" validate:"omitempty,email"`
	FirstName    *string      `json:"firstName,omitempty" validate:"omitempty,min=1"`
	LastName     *string      `json:"lastName,omitempty" validate:"omitempty,min=1"`
	Role         *domain.Role `json:"role,omitempty" validate:"omitempty,oneof=admin manager user"`
	Permissions  []string     `json:"permissions,omitempty"`
	IsActive     *bool        `json:"isActive,omitempty"`
	Phone        *string      `json:"phone,omitempty"`
	ProfileImage *string      `json:"profileImage,omitempty"`
}

type userPageWire struct {
	pageWire
	Users []userWire `json:"users" validate:"dive"`
}

// UserAdminService manages back-office accounts.
type UserAdminService interface {
	List(ctx context.Context, filter domain.UserFilter) (*domain.UserPage, error)
	Get(ctx context.Context, id string) (*domain.AdminUser, error)
	Create(ctx context.Context, in UserInput) (*domain.AdminUser, error)
	Update(ctx context.Context, id string, in UserUpdate) (*domain.AdminUser, error)
	UpdatePassword(ctx context.Context, id, newPassword string) error
	Delete(ctx context.Context, id string) error
	DeletePermanently(ctx context.Context, id string) error
	Stats(ctx context.Context) (*domain.UserStats, error)
}

type userAdminService struct {
	api Requester
}

func NewUserAdminService(api Requester) (UserAdminService, error) {
	if api == nil {
		return nil, errNilRequester
	}
	return &userAdminService{api: api}, nil
}

func (s *userAdminService) List(ctx context.Context, filter domain.UserFilter) (*domain.UserPage, error) {
	const op = "user.list"
	params := map[string]string{
		"page":   positive(filter.Page),
		"limit":  positive(filter.Limit),
		"search": filter.Search,
		"role":   string(filter.Role),
	}
	if filter.IsActive != nil {
		params["isActive"] = strconv.FormatBool(*filter.IsActive)
	}

	w, err := get[userPageWire](ctx, s.api, op, "/admin/users"+apiclient.Query(params))
	if err != nil {
		return nil, err
	}

	page := &domain.UserPage{
		Users:      make([]domain.AdminUser, len(w.Users)),
		Pagination: w.pageWire.toDomain(len(w.Users)),
	}
	for i, u := range w.Users {
		page.Users[i] = u.toDomain()
	}
	return page, nil
}

func (s *userAdminService) Get(ctx context.Context, id string) (*domain.AdminUser, error) {
	const op = "user.get"
	if err := requireID(op, id); err != nil {
		return nil, err
	}
	return s.send(ctx, op, http.MethodGet, s.path(id), nil)
}

func (s *userAdminService) Create(ctx context.Context, in UserInput) (*domain.AdminUser, error) {
	const op = "user.create"
	if err := Validate(op, in); err != nil {
		return nil, err
	}
	return s.send(ctx, op, http.MethodPost, "/admin/users", in)
}

func (s *userAdminService) Update(ctx context.Context, id string, in UserUpdate) (*domain.AdminUser, error) {
	const op = "user.update"
	if err := requireID(op, id); err != nil {
		return nil, err
	}
	if err := Validate(op, in); err != nil {
		return nil, err
	}
	return s.send(ctx, op, http.MethodPut, s.path(id), in)
}

func (s *userAdminService) UpdatePassword(ctx context.Context, id, newPassword string) error {
	const op = "user.update_password"
	if err := requireID(op, id); err != nil {
		return err
	}
	body := struct {
		NewPassword string `json:"newPassword" validate:"required,min=8"`
	}{NewPassword: newPassword}
	if err := Validate(op, body); err != nil {
		return err
	}
	return exec(ctx, s.api, op, http.MethodPatch, s.path(id)+"/password", body)
}

// Delete deactivates the account; it can be restored by the backend.
func (s *userAdminService) Delete(ctx context.Context, id string) error {
	const op = "user.delete"
	if err := requireID(op, id); err != nil {
		return err
	}
	return exec(ctx, s.api, op, http.MethodDelete, s.path(id), nil)
}

func (s *userAdminService) DeletePermanently(ctx context.Context, id string) error {
	const op = "user.delete_permanently"
	if err := requireID(op, id); err != nil {
		return err
	}
	return exec(ctx, s.api, op, http.MethodDelete, s.path(id)+"/permanent", nil)
}

func (s *userAdminService) Stats(ctx context.Context) (*domain.UserStats, error) {
	stats, err := get[domain.UserStats](ctx, s.api, "user.stats", "/admin/users/stats")
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *userAdminService) path(id string) string {
	return "/admin/users/" + apiclient.PathEscape(id)
}

func (s *userAdminService) send(ctx context.Context, op, method, path string, body any) (*domain.AdminUser, error) {
	w, err := call[userWire](ctx, s.api, op, method, path, body)
	if err != nil {
		return nil, err
	}
	u := w.toDomain()
	return &u, nil
}
