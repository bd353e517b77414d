package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ruwinya10/agrilink-backend/internal/activity"
	"github.com/ruwinya10/agrilink-backend/internal/catalog"
	"github.com/ruwinya10/agrilink-backend/internal/deliveries"
	"github.com/ruwinya10/agrilink-backend/internal/rentals"
	"github.com/ruwinya10/agrilink-backend/pkg/config"
	"github.com/ruwinya10/agrilink-backend/pkg/db/models"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
	pkgerrors "github.com/ruwinya10/agrilink-backend/pkg/errors"
	"github.com/ruwinya10/agrilink-backend/pkg/logger"
	"github.com/ruwinya10/agrilink-backend/pkg/mailer"
	"github.com/ruwinya10/agrilink-backend/pkg/pagination"
	"github.com/ruwinya10/agrilink-backend/pkg/pricing"
)

// Line is one requested order line. Exactly three shapes exist; the type
// carries the catalog source so no line can be ambiguous about what it buys.
type Line interface {
	orderLine()
}

// ListingLine buys produce from a farmer listing at the commission-adjusted
// price current at order time.
type ListingLine struct {
	ListingID uuid.UUID
	Quantity  int
}

// InventoryLine buys an admin-stocked product at its stored price.
type InventoryLine struct {
	InventoryID uuid.UUID
	Quantity    int
}

// RentalLine books equipment over an inclusive date range.
type RentalLine struct {
	RentalItemID uuid.UUID
	Quantity     int
	StartDate    time.Time
	EndDate      time.Time
}

func (ListingLine) orderLine()   {}
func (InventoryLine) orderLine() {}
func (RentalLine) orderLine()    {}

// CreateInput carries everything needed to place an order.
type CreateInput struct {
	CustomerID      uuid.UUID
	Lines           []Line
	DeliveryType    enums.DeliveryType
	DeliveryAddress *string
	ContactName     string
	ContactPhone    string
	ContactEmail    string
	PaymentMethod   enums.PaymentMethod
}

// Service places and manages orders. Creation freezes prices, debits stock,
// books rentals, and links a delivery in a single transaction; emails and feed
// entries happen after commit and never roll it back.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*OrderDTO, error)
	MarkReady(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	Cancel(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*Page, error)
	Get(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (*OrderDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type catalogService interface {
	Resolve(ctx context.Context, itemType enums.CatalogItemType, itemID uuid.UUID) (*catalog.ItemSnapshot, error)
	Adjust(ctx context.Context, tx *gorm.DB, lines []catalog.StockAdjustment, direction catalog.AdjustDirection) error
}

type rentalsService interface {
	AvailableQuantity(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, start, end time.Time) (int, error)
	BookForOrder(ctx context.Context, tx *gorm.DB, orderID, userID uuid.UUID, lines []rentals.BookingLine) error
	CancelOrderBookings(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
}

type deliveryService interface {
	CreateForOrder(ctx context.Context, tx *gorm.DB, input deliveries.CreateInput) (*models.Delivery, error)
	CascadeCancel(ctx context.Context, tx *gorm.DB, deliveryID, actorID uuid.UUID, actorRole enums.UserRole) error
}

type activityRecorder interface {
	Record(ctx context.Context, input activity.RecordInput) error
}

type service struct {
	repo       Repository
	tx         txRunner
	catalog    catalogService
	rentals    rentalsService
	deliveries deliveryService
	activity   activityRecorder
	mail       mailer.Mailer
	pricing    config.PricingConfig
	logg       *logger.Logger
}

// NewService constructs an orders service instance.
func NewService(
	repo Repository,
	tx txRunner,
	catalogSvc catalogService,
	rentalsSvc rentalsService,
	deliverySvc deliveryService,
	activitySvc activityRecorder,
	mail mailer.Mailer,
	pricingCfg config.PricingConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if rentalsSvc == nil {
		return nil, fmt.Errorf("rentals service required")
	}
	if deliverySvc == nil {
		return nil, fmt.Errorf("deliveries service required")
	}
	if activitySvc == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	if mail == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:       repo,
		tx:         tx,
		catalog:    catalogSvc,
		rentals:    rentalsSvc,
		deliveries: deliverySvc,
		activity:   activitySvc,
		mail:       mail,
		pricing:    pricingCfg,
		logg:       logg,
	}, nil
}

// resolvedLine pairs a requested line with the catalog state it was priced
// against, so the per-line checks and the post-commit side effects share one
// view of the item.
type resolvedLine struct {
	snapshot  *catalog.ItemSnapshot
	quantity  int
	unitPrice int
	lineTotal int
	startDate *time.Time
	endDate   *time.Time
}

// Create places an order. Every line is validated in request order
// (existence, then availability, then quantity); any failure rejects the
// whole request and nothing is written.
func (s *service) Create(ctx context.Context, input CreateInput) (*OrderDTO, error) {
	if err := s.validateCreateInput(&input); err != nil {
		return nil, err
	}

	commission := s.pricing.Rate()
	var orderID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		resolved, err := s.resolveLines(ctx, tx, input.Lines, commission)
		if err != nil {
			return err
		}

		number, err := s.repo.WithTx(tx).NextOrderNumber(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: claim order number")
		}

		order := buildOrder(number, input, resolved, s.pricing.DeliveryFeeCents)
		created, err := s.repo.WithTx(tx).Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}
		orderID = created.ID

		items := buildItems(created.ID, resolved)
		if err := s.repo.WithTx(tx).CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order items")
		}

		if err := s.catalog.Adjust(ctx, tx, stockLines(resolved), catalog.AdjustDebit); err != nil {
			return err
		}
		if err := s.rentals.BookForOrder(ctx, tx, created.ID, input.CustomerID, bookingLines(resolved)); err != nil {
			return err
		}

		if input.DeliveryType == enums.DeliveryTypeDelivery {
			delivery, err := s.deliveries.CreateForOrder(ctx, tx, deliveries.CreateInput{
				OrderID:      created.ID,
				CustomerID:   input.CustomerID,
				Address:      *input.DeliveryAddress,
				ContactName:  input.ContactName,
				ContactPhone: input.ContactPhone,
			})
			if err != nil {
				return err
			}
			created.DeliveryID = &delivery.ID
			if err := s.repo.WithTx(tx).Save(ctx, created); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: link delivery")
			}
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload order")
	}

	s.notifyPlaced(ctx, order)
	return newOrderDTO(order), nil
}

// MarkReady flips a not_ready order to ready.
func (s *service) MarkReady(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusNotReady {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot mark a %s order ready", order.Status))
	}
	order.Status = enums.OrderStatusReady
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save order")
	}
	return newOrderDTO(order), nil
}

// Cancel reverses an order: stock is credited back, rental bookings are
// cancelled, and a linked non-terminal delivery is cascade-cancelled, all in
// one transaction. Cancelling a cancelled order is a no-op.
func (s *service) Cancel(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actorRole != enums.UserRoleAdmin && order.CustomerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
	}
	if order.Status == enums.OrderStatusCancelled {
		return newOrderDTO(order), nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		now := time.Now()
		order.Status = enums.OrderStatusCancelled
		order.CancelledAt = &now
		if err := s.repo.WithTx(tx).Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save order")
		}

		if err := s.catalog.Adjust(ctx, tx, stockLinesFromItems(order.Items), catalog.AdjustCredit); err != nil {
			return err
		}
		if err := s.rentals.CancelOrderBookings(ctx, tx, order.ID); err != nil {
			return err
		}
		if order.DeliveryID != nil {
			if err := s.deliveries.CascadeCancel(ctx, tx, *order.DeliveryID, actorID, actorRole); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}

	s.notifyCancelled(ctx, order)
	return newOrderDTO(order), nil
}

func (s *service) List(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	orders, err := s.repo.FindByCustomer(ctx, customerID, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}

	page := &Page{Items: make([]OrderDTO, 0, len(orders))}
	if len(orders) > limit {
		orders = orders[:limit]
		last := orders[len(orders)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	for i := range orders {
		page.Items = append(page.Items, *newOrderDTO(&orders[i]))
	}
	return page, nil
}

func (s *service) Get(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actorRole != enums.UserRoleAdmin && order.CustomerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
	}
	return newOrderDTO(order), nil
}

func (s *service) validateCreateInput(input *CreateInput) error {
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if !input.DeliveryType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid delivery type %q", input.DeliveryType))
	}
	if input.DeliveryType == enums.DeliveryTypeDelivery {
		if input.DeliveryAddress == nil || *input.DeliveryAddress == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required for delivery orders")
		}
	}
	if input.ContactName == "" || input.ContactPhone == "" || input.ContactEmail == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "contact name, phone, and email are required")
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = enums.PaymentMethodCash
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}
	return nil
}

// resolveLines checks each requested line against the catalog and freezes its
// price. Listing prices get the commission applied here; what lands in the
// order item is what the buyer pays, regardless of later catalog edits.
func (s *service) resolveLines(ctx context.Context, tx *gorm.DB, lines []Line, commission decimal.Decimal) ([]resolvedLine, error) {
	resolved := make([]resolvedLine, 0, len(lines))
	for _, raw := range lines {
		var (
			itemType enums.CatalogItemType
			itemID   uuid.UUID
			quantity int
			start    *time.Time
			end      *time.Time
		)
		switch line := raw.(type) {
		case ListingLine:
			itemType, itemID, quantity = enums.CatalogItemTypeListing, line.ListingID, line.Quantity
		case InventoryLine:
			itemType, itemID, quantity = enums.CatalogItemTypeInventory, line.InventoryID, line.Quantity
		case RentalLine:
			itemType, itemID, quantity = enums.CatalogItemTypeRental, line.RentalItemID, line.Quantity
			startDay, endDay := truncateToDay(line.StartDate), truncateToDay(line.EndDate)
			if startDay.After(endDay) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental start date must not be after the end date")
			}
			start, end = &startDay, &endDay
		default:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order line type")
		}

		if quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}

		snapshot, err := s.catalog.Resolve(ctx, itemType, itemID)
		if err != nil {
			if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("%s %s does not exist", itemType, itemID))
			}
			return nil, err
		}
		if !snapshot.Orderable {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("%q is not available for purchase", snapshot.Title))
		}

		available := snapshot.Available
		if itemType == enums.CatalogItemTypeRental {
			available, err = s.rentals.AvailableQuantity(ctx, tx, itemID, *start, *end)
			if err != nil {
				return nil, err
			}
		}
		if quantity > available {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("only %d of %q available", available, snapshot.Title))
		}

		line := resolvedLine{
			snapshot:  snapshot,
			quantity:  quantity,
			startDate: start,
			endDate:   end,
		}
		switch itemType {
		case enums.CatalogItemTypeListing:
			line.unitPrice = pricing.ListingUnitPriceCents(snapshot.UnitPriceCents, commission)
			line.lineTotal = line.unitPrice * quantity
		case enums.CatalogItemTypeInventory:
			line.unitPrice = snapshot.UnitPriceCents
			line.lineTotal = line.unitPrice * quantity
		case enums.CatalogItemTypeRental:
			line.unitPrice = snapshot.UnitPriceCents
			line.lineTotal = pricing.RentalLineTotalCents(line.unitPrice, *start, *end, quantity)
		}
		resolved = append(resolved, line)
	}
	return resolved, nil
}

func buildOrder(number string, input CreateInput, resolved []resolvedLine, deliveryFeeCents int) *models.Order {
	subtotal := 0
	for _, line := range resolved {
		subtotal += line.lineTotal
	}
	fee := 0
	if input.DeliveryType == enums.DeliveryTypeDelivery {
		fee = deliveryFeeCents
	}
	return &models.Order{
		OrderNumber:      number,
		CustomerID:       input.CustomerID,
		Status:           enums.OrderStatusNotReady,
		DeliveryType:     input.DeliveryType,
		SubtotalCents:    subtotal,
		DeliveryFeeCents: fee,
		TotalCents:       subtotal + fee,
		ContactName:      input.ContactName,
		ContactPhone:     input.ContactPhone,
		ContactEmail:     input.ContactEmail,
		DeliveryAddress:  input.DeliveryAddress,
		PaymentMethod:    input.PaymentMethod,
	}
}

func buildItems(orderID uuid.UUID, resolved []resolvedLine) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(resolved))
	for _, line := range resolved {
		items = append(items, models.OrderItem{
			OrderID:         orderID,
			ItemID:          line.snapshot.ID,
			ItemType:        line.snapshot.Type,
			Quantity:        line.quantity,
			UnitPriceCents:  line.unitPrice,
			Title:           line.snapshot.Title,
			ImageURL:        line.snapshot.ImageURL,
			Unit:            line.snapshot.Unit,
			LineTotalCents:  line.lineTotal,
			RentalStartDate: line.startDate,
			RentalEndDate:   line.endDate,
		})
	}
	return items
}

func stockLines(resolved []resolvedLine) []catalog.StockAdjustment {
	adjustments := make([]catalog.StockAdjustment, 0, len(resolved))
	for _, line := range resolved {
		if line.snapshot.Type == enums.CatalogItemTypeRental {
			continue
		}
		adjustments = append(adjustments, catalog.StockAdjustment{
			ItemID:   line.snapshot.ID,
			ItemType: line.snapshot.Type,
			Quantity: line.quantity,
		})
	}
	return adjustments
}

func stockLinesFromItems(items []models.OrderItem) []catalog.StockAdjustment {
	adjustments := make([]catalog.StockAdjustment, 0, len(items))
	for _, item := range items {
		if item.ItemType == enums.CatalogItemTypeRental {
			continue
		}
		adjustments = append(adjustments, catalog.StockAdjustment{
			ItemID:   item.ItemID,
			ItemType: item.ItemType,
			Quantity: item.Quantity,
		})
	}
	return adjustments
}

func bookingLines(resolved []resolvedLine) []rentals.BookingLine {
	bookings := make([]rentals.BookingLine, 0, len(resolved))
	for _, line := range resolved {
		if line.snapshot.Type != enums.CatalogItemTypeRental {
			continue
		}
		bookings = append(bookings, rentals.BookingLine{
			ItemID:    line.snapshot.ID,
			Quantity:  line.quantity,
			StartDate: *line.startDate,
			EndDate:   *line.endDate,
		})
	}
	return bookings
}

// notifyPlaced sends the confirmation email and feed entries after the order
// transaction commits. Failures are logged and never surface to the caller.
func (s *service) notifyPlaced(ctx context.Context, order *models.Order) {
	mailer.SendAsync(s.logg, s.mail, mailer.Message{
		ToEmail: order.ContactEmail,
		ToName:  order.ContactName,
		Subject: fmt.Sprintf("Order %s confirmed", order.OrderNumber),
		Body: fmt.Sprintf(
			"Thank you for your order %s. Subtotal: %d, delivery fee: %d, total: %d cents.",
			order.OrderNumber, order.SubtotalCents, order.DeliveryFeeCents, order.TotalCents,
		),
	})

	if err := s.activity.Record(ctx, activity.RecordInput{
		UserID:  order.CustomerID,
		Type:    enums.ActivityTypeOrderPlaced,
		Message: fmt.Sprintf("Order %s placed", order.OrderNumber),
		OrderID: &order.ID,
	}); err != nil {
		s.logg.Error(ctx, "record order placed activity", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		if item.ItemType != enums.CatalogItemTypeListing {
			continue
		}
		snapshot, err := s.catalog.Resolve(ctx, item.ItemType, item.ItemID)
		if err != nil || snapshot.FarmerID == nil {
			if err != nil {
				s.logg.Error(ctx, "resolve listing for sale activity", err)
			}
			continue
		}
		if err := s.activity.Record(ctx, activity.RecordInput{
			UserID:  *snapshot.FarmerID,
			Type:    enums.ActivityTypeSale,
			Message: fmt.Sprintf("Sold %d x %s in order %s", item.Quantity, item.Title, order.OrderNumber),
			OrderID: &order.ID,
		}); err != nil {
			s.logg.Error(ctx, "record sale activity", err)
		}
	}
}

func (s *service) notifyCancelled(ctx context.Context, order *models.Order) {
	mailer.SendAsync(s.logg, s.mail, mailer.Message{
		ToEmail: order.ContactEmail,
		ToName:  order.ContactName,
		Subject: fmt.Sprintf("Order %s cancelled", order.OrderNumber),
		Body:    fmt.Sprintf("Your order %s has been cancelled.", order.OrderNumber),
	})

	if err := s.activity.Record(ctx, activity.RecordInput{
		UserID:  order.CustomerID,
		Type:    enums.ActivityTypeOrderCancelled,
		Message: fmt.Sprintf("Order %s cancelled", order.OrderNumber),
		OrderID: &order.ID,
	}); err != nil {
		s.logg.Error(ctx, "record order cancelled activity", err)
	}
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return order, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
