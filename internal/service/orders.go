package service

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dukerupert/adorn/internal/apiclient"
	"github.com/dukerupert/adorn/internal/domain"
)

// OrderInput creates an order directly, outside the payment flow.
type OrderInput struct {
	UserEmail       string                 `json:"userEmail" validate:"required,email"`
	UserName        string                 `json:"userName" validate:"required"`
	UserPhone       string                 `json:"userPhone,omitempty"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	Items           []domain.OrderItem     `json:"items" validate:"required,min=1"`
	TotalMinor      int64                  `json:"totalAmount" validate:"gte=0"`
}

type orderInputWire struct {
	UserEmail       string                 `json:"userEmail"`
	UserName        string                 `json:"userName"`
	UserPhone       string                 `json:"userPhone,omitempty"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	TotalAmount     amount                 `json:"totalAmount"`
	Items           []orderItemWire        `json:"items"`
}

func (in OrderInput) wire() orderInputWire {
	w := orderInputWire{
		UserEmail:       in.UserEmail,
		UserName:        in.UserName,
		UserPhone:       in.UserPhone,
		ShippingAddress: in.ShippingAddress,
		TotalAmount:     amountOf(in.TotalMinor),
		Items:           make([]orderItemWire, len(in.Items)),
	}
	for i, it := range in.Items {
		w.Items[i] = orderItemWire{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     amountOf(it.PriceMinor),
		}
	}
	return w
}

type statusUpdate struct {
	Status domain.OrderStatus `json:"status"`
	Note   string             `json:"note,omitempty"`
}

type orderPageWire struct {
	pageWire
	Orders []orderWire `json:"orders" validate:"dive"`
}

// OrderService reads and updates orders. Listing and status changes require
// an admin token.
type OrderService interface {
	Create(ctx context.Context, in OrderInput) (*domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) (*domain.OrderPage, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, note string) (*domain.Order, error)
}

type orderService struct {
	api Requester
}

func NewOrderService(api Requester) (OrderService, error) {
	if api == nil {
		return nil, errNilRequester
	}
	return &orderService{api: api}, nil
}

func (s *orderService) Create(ctx context.Context, in OrderInput) (*domain.Order, error) {
	const op = "order.create"
	if err := Validate(op, in); err != nil {
		return nil, err
	}
	for _, it := range in.Items {
		if it.ProductID == "" || it.Quantity < 1 {
			return nil, domain.NewValidationError(op, "items", "every item needs a product and a quantity of at least 1")
		}
	}
	return s.send(ctx, op, http.MethodPost, "/orders", in.wire())
}

func (s *orderService) List(ctx context.Context, filter domain.OrderFilter) (*domain.OrderPage, error) {
	const op = "order.list"
	if filter.Status != "" {
		if _, err := domain.ParseOrderStatus(string(filter.Status)); err != nil {
			return nil, domain.NewValidationError(op, "status", domain.ErrorMessage(err))
		}
	}

	path := "/orders" + apiclient.Query(map[string]string{
		"page":   positive(filter.Page),
		"limit":  positive(filter.Limit),
		"status": string(filter.Status),
		"search": filter.Search,
	})

	w, err := get[orderPageWire](ctx, s.api, op, path)
	if err != nil {
		return nil, err
	}

	page := &domain.OrderPage{
		Orders:     make([]domain.Order, len(w.Orders)),
		Pagination: w.pageWire.toDomain(len(w.Orders)),
	}
	for i, o := range w.Orders {
		page.Orders[i] = o.toDomain()
	}
	return page, nil
}

func (s *orderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	const op = "order.get"
	if err := requireID(op, id); err != nil {
		return nil, err
	}
	return s.send(ctx, op, http.MethodGet, "/orders/"+apiclient.PathEscape(id), nil)
}

// UpdateStatus moves an order to status. The note is recorded in the order
// history when the backend supports it.
func (s *orderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, note string) (*domain.Order, error) {
	const op = "order.update_status"
	if err := requireID(op, id); err != nil {
		return nil, err
	}
	st, err := domain.ParseOrderStatus(string(status))
	if err != nil {
		return nil, domain.NewValidationError(op, "status", domain.ErrorMessage(err))
	}
	path := "/orders/" + apiclient.PathEscape(id) + "/status"
	return s.send(ctx, op, http.MethodPut, path, statusUpdate{Status: st, Note: note})
}

func (s *orderService) send(ctx context.Context, op, method, path string, body any) (*domain.Order, error) {
	w, err := call[orderWire](ctx, s.api, op, method, path, body)
	if err != nil {
		return nil, err
	}
	o := w.toDomain()
	return &o, nil
}

func positive(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
