package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Alijeyrad/drivingschool_backend/internal/model"
)

// View is a cart with its totals. Prices are in cents.
type View struct {
	CartID       uuid.UUID        `json:"cart_id"`
	Items        []model.CartItem `json:"items"`
	TotalPrice   int64            `json:"total_price"`
	TotalCredits int              `json:"total_credits"`
	Count        int              `json:"count"`
}

type AddResult struct {
	Item *model.CartItem `json:"item"`
	// Added is false when the plan was already in the cart.
	Added bool `json:"added"`
}

type Service interface {
	Get(ctx context.Context, studentID uuid.UUID) (*View, error)
	Add(ctx context.Context, studentID, planID uuid.UUID) (*AddResult, error)
	Remove(ctx context.Context, studentID, itemID uuid.UUID) error
	Count(ctx context.Context, studentID uuid.UUID) (int, error)

	// Load and Clear run inside a caller's transaction during checkout.
	Load(tx *gorm.DB, studentID uuid.UUID) (*View, error)
	Clear(tx *gorm.DB, cartID uuid.UUID) error
}

type cartService struct {
	db     *gorm.DB
	logger *slog.Logger
}

func New(db *gorm.DB, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &cartService{db: db, logger: logger.With("service", "cart")}
}

// ensureCart returns the student's cart, creating it on first use.
func ensureCart(tx *gorm.DB, studentID uuid.UUID) (*model.Cart, error) {
	var c model.Cart
	err := tx.Where(model.Cart{StudentID: studentID}).FirstOrCreate(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return &c, nil
}

func (s *cartService) Get(ctx context.Context, studentID uuid.UUID) (*View, error) {
	return s.Load(s.db.WithContext(ctx), studentID)
}

func (s *cartService) Load(tx *gorm.DB, studentID uuid.UUID) (*View, error) {
	c, err := ensureCart(tx, studentID)
	if err != nil {
		return nil, err
	}

	var items []model.CartItem
	err = tx.Preload("Plan").
		Where("cart_id = ?", c.ID).
		Order("added_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}

	v := &View{CartID: c.ID, Items: items, Count: len(items)}
	for _, it := range items {
		if it.Plan == nil {
			continue
		}
		v.TotalPrice += it.Plan.Price
		v.TotalCredits += it.Plan.Hours
	}
	return v, nil
}

func (s *cartService) Add(ctx context.Context, studentID, planID uuid.UUID) (*AddResult, error) {
	var res AddResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan model.LessonPlan
		if err := tx.First(&plan, "id = ? AND is_active = ?", planID, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlanNotFound
			}
			return fmt.Errorf("get plan: %w", err)
		}

		c, err := ensureCart(tx, studentID)
		if err != nil {
			return err
		}

		item, added, err := insertItem(tx, c.ID, planID)
		if err != nil {
			return err
		}
		item.Plan = &plan
		res = AddResult{Item: item, Added: added}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// insertItem adds planID to the cart unless it is already there. The insert
// uses ON CONFLICT DO NOTHING so a concurrent duplicate leaves the
// transaction usable; the existing row is returned with added=false.
func insertItem(tx *gorm.DB, cartID, planID uuid.UUID) (*model.CartItem, bool, error) {
	item := &model.CartItem{CartID: cartID, PlanID: planID, AddedAt: time.Now().UTC()}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(item)
	if res.Error != nil {
		return nil, false, fmt.Errorf("add cart item: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return item, true, nil
	}

	var existing model.CartItem
	if err := tx.First(&existing, "cart_id = ? AND plan_id = ?", cartID, planID).Error; err != nil {
		return nil, false, fmt.Errorf("get cart item: %w", err)
	}
	return &existing, false, nil
}

func (s *cartService) Remove(ctx context.Context, studentID, itemID uuid.UUID) error {
	sub := s.db.Model(&model.Cart{}).Select("id").Where("student_id = ?", studentID)
	res := s.db.WithContext(ctx).
		Where("id = ? AND cart_id IN (?)", itemID, sub).
		Delete(&model.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("remove cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *cartService) Count(ctx context.Context, studentID uuid.UUID) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.CartItem{}).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.student_id = ?", studentID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count cart items: %w", err)
	}
	return int(n), nil
}

func (s *cartService) Clear(tx *gorm.DB, cartID uuid.UUID) error {
	if err := tx.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
