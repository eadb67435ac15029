package service

import (
	"strings"

	"github.com/shiptrack-next/internal/constants"
	"github.com/shiptrack-next/internal/logger"
	"github.com/shiptrack-next/internal/models"
	"github.com/shiptrack-next/internal/repository"
)

// ShipmentService 运单服务
type ShipmentService struct {
	shipmentRepo repository.ShipmentRepository
	customerRepo repository.CustomerRepository
	courierRepo  repository.CourierRepository
	scoring      *ScoringService
}

// ShipmentCreateInput 运单创建输入
type ShipmentCreateInput struct {
	TrackingNo    string
	CustomerID    uint
	CourierCode   string
	OrderNo       string
	DeclaredValue models.Money
	CODAmount     models.Money
}

// NewShipmentService 创建运单服务
func NewShipmentService(
	shipmentRepo repository.ShipmentRepository,
	customerRepo repository.CustomerRepository,
	courierRepo repository.CourierRepository,
	scoring *ScoringService,
) *ShipmentService {
	return &ShipmentService{
		shipmentRepo: shipmentRepo,
		customerRepo: customerRepo,
		courierRepo:  courierRepo,
		scoring:      scoring,
	}
}

// Get 获取运单
func (s *ShipmentService) Get(tenantID, id uint) (*models.Shipment, error) {
	shipment, err := s.shipmentRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, ErrShipmentNotFound
	}
	return shipment, nil
}

// List 分页查询运单
func (s *ShipmentService) List(filter repository.ShipmentListFilter) ([]models.Shipment, int64, error) {
	return s.shipmentRepo.List(filter)
}

// Create 创建运单，初始状态为 pending
func (s *ShipmentService) Create(tenantID uint, input ShipmentCreateInput) (*models.Shipment, error) {
	trackingNo := strings.TrimSpace(input.TrackingNo)
	if trackingNo == "" {
		return nil, ErrScoringInvalidInput
	}

	customer, err := s.customerRepo.GetByID(tenantID, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}

	courierCode := strings.TrimSpace(input.CourierCode)
	courier, err := s.courierRepo.GetByCode(courierCode)
	if err != nil {
		return nil, err
	}
	if courier == nil {
		return nil, ErrCourierNotFound
	}
	if !courier.Enabled {
		return nil, ErrCourierDisabled
	}

	existing, err := s.shipmentRepo.GetByTrackingNo(tenantID, trackingNo)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrShipmentExists
	}

	shipment := &models.Shipment{
		TenantID:      tenantID,
		TrackingNo:    trackingNo,
		CustomerID:    customer.ID,
		CourierCode:   courierCode,
		OrderNo:       strings.TrimSpace(input.OrderNo),
		Status:        constants.ShipmentStatusPending,
		DeclaredValue: input.DeclaredValue,
		CODAmount:     input.CODAmount,
	}
	if err := s.shipmentRepo.Create(shipment); err != nil {
		return nil, err
	}
	return shipment, nil
}

// UpdateStatus 人工推进运单状态，并把迁移交给计分引擎判定
func (s *ShipmentService) UpdateStatus(tenantID, id uint, newStatus string) (*models.Shipment, *ScoreOutcome, error) {
	shipment, err := s.Get(tenantID, id)
	if err != nil {
		return nil, nil, err
	}

	newStatus = NormalizeShipmentStatus(newStatus)
	if !IsValidShipmentStatus(newStatus) {
		return nil, nil, ErrShipmentStatusInvalid
	}
	oldStatus := shipment.Status
	if newStatus == oldStatus {
		return shipment, &ScoreOutcome{SkipReason: SkipReasonNotTerminal}, nil
	}
	if !IsShipmentTransitionAllowed(oldStatus, newStatus) {
		return nil, nil, ErrShipmentTransitionInvalid
	}

	if _, err := s.shipmentRepo.UpdateStatus(tenantID, shipment.ID, newStatus); err != nil {
		return nil, nil, err
	}
	shipment.Status = newStatus

	outcome, err := s.scoring.RecordTransition(tenantID, shipment.ID, oldStatus, newStatus)
	if err != nil {
		return nil, nil, err
	}
	return shipment, outcome, nil
}

// ApplyCourierEvent 处理快递商上报的状态事件。
//
// 事件可能乱序、重放或携带过期的 old_status，状态机不允许的迁移只记录
// 日志不推进状态，但事件仍然交给计分引擎：计分幂等性保证重复与过期
// 事件不会产生重复计分。
func (s *ShipmentService) ApplyCourierEvent(tenantID uint, courierCode, trackingNo, oldStatus, newStatus string) (*ScoreOutcome, error) {
	courierCode = strings.TrimSpace(courierCode)
	courier, err := s.courierRepo.GetByCode(courierCode)
	if err != nil {
		return nil, err
	}
	if courier == nil {
		return nil, ErrCourierNotFound
	}
	if !courier.Enabled {
		return nil, ErrCourierDisabled
	}

	shipment, err := s.shipmentRepo.GetByTrackingNo(tenantID, trackingNo)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, ErrShipmentNotFound
	}

	newStatus = NormalizeShipmentStatus(newStatus)
	if !IsValidShipmentStatus(newStatus) {
		return nil, ErrShipmentStatusInvalid
	}
	oldStatus = NormalizeShipmentStatus(oldStatus)
	if oldStatus == "" {
		oldStatus = shipment.Status
	}

	if IsShipmentTransitionAllowed(shipment.Status, newStatus) {
		if _, err := s.shipmentRepo.UpdateStatus(tenantID, shipment.ID, newStatus); err != nil {
			return nil, err
		}
	} else if shipment.Status != newStatus {
		logger.Warnw("shipment_status_not_advanced",
			"tenant_id", tenantID,
			"shipment_id", shipment.ID,
			"current_status", shipment.Status,
			"event_status", newStatus,
		)
	}

	return s.scoring.RecordTransition(tenantID, shipment.ID, oldStatus, newStatus)
}
