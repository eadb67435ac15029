package service

import (
	"strings"

	"github.com/shiptrack-next/internal/logger"
	"github.com/shiptrack-next/internal/models"
	"github.com/shiptrack-next/internal/repository"

	"gorm.io/gorm"
)

// CustomerService 客户服务
type CustomerService struct {
	db           *gorm.DB
	customerRepo repository.CustomerRepository
	journalRepo  repository.ScoreJournalRepository
}

// CustomerInput 客户创建/更新输入
type CustomerInput struct {
	Name  string
	Email string
	Phone string
}

// NewCustomerService 创建客户服务
func NewCustomerService(
	db *gorm.DB,
	customerRepo repository.CustomerRepository,
	journalRepo repository.ScoreJournalRepository,
) *CustomerService {
	return &CustomerService{
		db:           db,
		customerRepo: customerRepo,
		journalRepo:  journalRepo,
	}
}

// Get 获取客户
func (s *CustomerService) Get(tenantID, id uint) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}

// List 分页查询客户
func (s *CustomerService) List(filter repository.CustomerListFilter) ([]models.Customer, int64, error) {
	return s.customerRepo.List(filter)
}

// Create 创建客户（信誉分从 0 开始，只能由计分引擎累计）
func (s *CustomerService) Create(tenantID uint, input CustomerInput) (*models.Customer, error) {
	customer := &models.Customer{
		TenantID: tenantID,
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.TrimSpace(input.Email),
		Phone:    strings.TrimSpace(input.Phone),
	}
	if err := s.customerRepo.Create(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// Update 更新客户基础信息，不触达 DeliveryScore
func (s *CustomerService) Update(tenantID, id uint, input CustomerInput) (*models.Customer, error) {
	customer, err := s.Get(tenantID, id)
	if err != nil {
		return nil, err
	}
	customer.Name = strings.TrimSpace(input.Name)
	customer.Email = strings.TrimSpace(input.Email)
	customer.Phone = strings.TrimSpace(input.Phone)
	if err := s.customerRepo.Update(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// Delete 删除客户。
//
// 同一事务内先把流水表中指向该客户的行置空再删除客户行：历史的
// delta/reason/created_at 必须完整保留供审计，这是无条件行为而不是
// 可选的存储能力开关。
func (s *CustomerService) Delete(tenantID, id uint) error {
	customer, err := s.Get(tenantID, id)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		detached, err := s.journalRepo.WithTx(tx).DetachCustomer(customer.ID)
		if err != nil {
			return err
		}
		rows, err := s.customerRepo.WithTx(tx).DeleteByID(tenantID, customer.ID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrCustomerNotFound
		}
		logger.Infow("customer_deleted",
			"tenant_id", tenantID,
			"customer_id", customer.ID,
			"journal_entries_detached", detached,
		)
		return nil
	})
}
