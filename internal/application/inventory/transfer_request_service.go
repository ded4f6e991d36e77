package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/application/uow"
	"github.com/medrent/backend/internal/domain/catalog"
	"github.com/medrent/backend/internal/domain/identity"
	"github.com/medrent/backend/internal/domain/inventory"
	"github.com/medrent/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TransferRequestService handles the employee request / admin review flow
type TransferRequestService struct {
	repos     uow.Repositories
	txScope   uow.TransactionScope
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewTransferRequestService creates a new TransferRequestService
func NewTransferRequestService(repos uow.Repositories, txScope uow.TransactionScope, publisher shared.EventPublisher, logger *zap.Logger) *TransferRequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferRequestService{repos: repos, txScope: txScope, publisher: publisher, logger: logger}
}

// Create files a request to bring stock from another location to the
// caller's own location
func (s *TransferRequestService) Create(ctx context.Context, actor identity.Actor, req CreateTransferRequestRequest) (*TransferRequestResponse, error) {
	if actor.StockLocationID == nil {
		return nil, shared.NewDomainError("NO_STOCK_LOCATION", "You are not assigned to a stock location")
	}
	destination := *actor.StockLocationID

	var request *inventory.StockTransferRequest
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		if err := ensureLocations(ctx, repos, req.FromLocationID); err != nil {
			return err
		}
		if req.FromLocationID == destination {
			return shared.NewDomainError("SAME_LOCATION", "Source and destination must differ")
		}
		if err := checkSourceHolds(ctx, repos, req); err != nil {
			return err
		}

		code, err := repos.Codes().Next(ctx, shared.CodeTransferRequest)
		if err != nil {
			return err
		}
		request, err = inventory.NewStockTransferRequest(code, req.FromLocationID, destination,
			req.ProductID, req.MedicalDeviceID, req.RequestedQuantity, req.Reason,
			inventory.TransferUrgency(req.Urgency), actor.UserID)
		if err != nil {
			return err
		}
		return repos.TransferRequests().Save(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer request created",
		zap.String("request_code", request.RequestCode),
		zap.String("requested_by", actor.UserID.String()))
	response := ToTransferRequestResponse(request)
	return &response, nil
}

// checkSourceHolds verifies the source currently holds what is requested
func checkSourceHolds(ctx context.Context, repos uow.Repositories, req CreateTransferRequestRequest) error {
	if req.MedicalDeviceID != nil {
		device, err := repos.Devices().FindByID(ctx, *req.MedicalDeviceID)
		if err != nil {
			return err
		}
		if device.StockLocationID == nil || *device.StockLocationID != req.FromLocationID {
			return shared.NewDomainError("DEVICE_NOT_AT_SOURCE", "Device is not at the source location")
		}
		return device.EnsureAvailable()
	}
	if req.ProductID == nil {
		return shared.NewDomainError("INVALID_ITEM", "Either a product or a medical device is required")
	}
	rows, err := repos.Stocks().FindByLocationAndProduct(ctx, req.FromLocationID, *req.ProductID)
	if err != nil {
		return err
	}
	_, err = inventory.PickLargestRow(req.RequestedQuantity, rows)
	return err
}

// List returns the requests visible to the caller. Admins and managers see
// everything; others see what they filed plus what targets their location.
func (s *TransferRequestService) List(ctx context.Context, actor identity.Actor, filter TransferRequestListFilter) (*TransferRequestList, error) {
	scope := shared.NewFilter(filter.Page, filter.PageSize, "", "", filter.Search)
	scope.OrderBy = ""
	if !actor.CanSeeAll() {
		scope = scope.With("visible_to_user", actor.UserID.String())
		if actor.StockLocationID != nil {
			scope = scope.With("visible_to_location", actor.StockLocationID.String())
		}
	}

	counts, err := s.repos.TransferRequests().CountByStatus(ctx, scope)
	if err != nil {
		return nil, err
	}

	page := scope.With("status", filter.Status).With("urgency", filter.Urgency)
	requests, err := s.repos.TransferRequests().FindAll(ctx, page)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.TransferRequests().Count(ctx, page)
	if err != nil {
		return nil, err
	}

	out := &TransferRequestList{
		Items:   make([]TransferRequestResponse, len(requests)),
		Total:   total,
		Summary: make(map[string]int64, len(counts)),
	}
	for i := range requests {
		out.Items[i] = ToTransferRequestResponse(&requests[i])
	}
	for status, n := range counts {
		out.Summary[string(status)] = n
	}
	return out, nil
}

// GetByID returns one request if the caller may see it
func (s *TransferRequestService) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*TransferRequestResponse, error) {
	request, err := s.repos.TransferRequests().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canSeeRequest(actor, request) {
		return nil, shared.ErrNotFound
	}
	response := ToTransferRequestResponse(request)
	return &response, nil
}

func canSeeRequest(actor identity.Actor, request *inventory.StockTransferRequest) bool {
	if actor.CanSeeAll() || request.RequestedByID == actor.UserID {
		return true
	}
	if actor.StockLocationID == nil {
		return false
	}
	loc := *actor.StockLocationID
	return loc == request.FromLocationID || loc == request.ToLocationID
}

// Review records the admin decision. An approval moves the stock, writes a
// verified transfer record and completes the request in the same
// transaction. The requester is notified once the transaction commits.
func (s *TransferRequestService) Review(ctx context.Context, actor identity.Actor, id uuid.UUID, req ReviewTransferRequest) (*TransferRequestResponse, error) {
	var request *inventory.StockTransferRequest
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		request, err = repos.TransferRequests().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := request.Review(inventory.ReviewAction(req.Action), actor.UserID, req.ReviewNotes); err != nil {
			return err
		}

		if request.Status == inventory.TransferRequestApproved {
			transfer, err := s.fulfil(ctx, repos, actor, request)
			if err != nil {
				return err
			}
			if err := repos.Transfers().Save(ctx, transfer); err != nil {
				return err
			}
			if err := request.Complete(); err != nil {
				return err
			}
		}
		if err := repos.TransferRequests().Save(ctx, request); err != nil {
			return err
		}

		entry := inventory.NewUserActionHistory(actor.UserID, inventory.UserActionReview, request.ID, "stock_transfer_request", shared.JSONMap{
			"request_code": request.RequestCode,
			"decision":     req.Action,
			"notes":        request.ReviewNotes,
		})
		return repos.ActionHistory().Save(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer request reviewed",
		zap.String("request_code", request.RequestCode),
		zap.String("decision", req.Action),
		zap.String("reviewer", actor.UserID.String()))

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, request.GetDomainEvents()...); err != nil {
			s.logger.Warn("failed to publish review events", zap.String("request_code", request.RequestCode), zap.Error(err))
		}
	}
	request.ClearDomainEvents()

	response := ToTransferRequestResponse(request)
	return &response, nil
}

// fulfil moves the requested item and returns the verified transfer record
func (s *TransferRequestService) fulfil(ctx context.Context, repos uow.Repositories, actor identity.Actor, request *inventory.StockTransferRequest) (*inventory.StockTransfer, error) {
	var (
		transfer *inventory.StockTransfer
		err      error
	)
	if request.IsDeviceRequest() {
		transfer, err = moveRequestedDevice(ctx, repos, actor, request)
	} else {
		transfer, err = moveRequestedProduct(ctx, repos, actor, request)
	}
	if err != nil {
		return nil, err
	}
	if err := transfer.Verify(actor.UserID); err != nil {
		return nil, err
	}
	return transfer, nil
}

func moveRequestedDevice(ctx context.Context, repos uow.Repositories, actor identity.Actor, request *inventory.StockTransferRequest) (*inventory.StockTransfer, error) {
	device, err := repos.Devices().FindByID(ctx, *request.MedicalDeviceID)
	if err != nil {
		return nil, err
	}
	if device.Status == catalog.DeviceStatusSold {
		return nil, shared.NewDomainError("INVALID_STATE", "Device has been sold")
	}
	device.MoveTo(request.ToLocationID)
	if err := repos.Devices().Save(ctx, device); err != nil {
		return nil, err
	}
	notes := "Request " + request.RequestCode
	return inventory.NewDeviceTransfer(request.FromLocationID, request.ToLocationID, device.ID, actor.UserID, notes)
}

func moveRequestedProduct(ctx context.Context, repos uow.Repositories, actor identity.Actor, request *inventory.StockTransferRequest) (*inventory.StockTransfer, error) {
	productID := *request.ProductID
	rows, err := repos.Stocks().FindByLocationAndProduct(ctx, request.FromLocationID, productID)
	if err != nil {
		return nil, err
	}
	source, err := inventory.PickLargestRow(request.RequestedQuantity, rows)
	if err != nil {
		return nil, err
	}

	if source.Quantity == request.RequestedQuantity {
		if err := repos.Stocks().Delete(ctx, source.ID); err != nil {
			return nil, err
		}
	} else {
		if err := source.Decrease(request.RequestedQuantity); err != nil {
			return nil, err
		}
		if err := repos.Stocks().Save(ctx, source); err != nil {
			return nil, err
		}
	}

	if _, err := inventory.ReceiveStock(ctx, repos.Stocks(), request.ToLocationID, productID, request.RequestedQuantity, inventory.StockStatusForSale); err != nil {
		return nil, err
	}
	notes := "Request " + request.RequestCode
	return inventory.NewProductTransfer(request.FromLocationID, request.ToLocationID, productID, actor.UserID,
		request.RequestedQuantity, inventory.StockStatusForSale, notes)
}
