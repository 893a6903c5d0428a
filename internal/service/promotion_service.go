package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Cheertaboi/Billing-system-promo-engine/internal/cache"
	"github.com/Cheertaboi/Billing-system-promo-engine/internal/concurrency"
	"github.com/Cheertaboi/Billing-system-promo-engine/internal/models"
	"github.com/Cheertaboi/Billing-system-promo-engine/internal/promo"
)

// Repos required by service (use interfaces to allow mocking)
type PromotionRepo interface {
	GetPromotion(ctx context.Context, id string) (*models.Promotion, error)
	CreatePromotion(ctx context.Context, tx *sql.Tx, p *models.Promotion) error
}

type RedemptionRepo interface {
	RecordRedemption(ctx context.Context, tx *sql.Tx, promoID, orderID string, discount decimal.Decimal) error
	CountRedemptions(ctx context.Context, promoID string) (int, error)
}

type Transactor interface {
	InTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type Options struct {
	ResolveWorkers int
	RequestTimeout time.Duration
}

type PromotionService struct {
	tx          Transactor
	promos      PromotionRepo
	redemptions RedemptionRepo
	cache       *cache.PromotionCache
	engine      *promo.Engine
	logger      *zap.Logger
	opts        Options
}

func NewPromotionService(tx Transactor, promos PromotionRepo, redemptions RedemptionRepo,
	c *cache.PromotionCache, engine *promo.Engine, logger *zap.Logger, opts Options) *PromotionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ResolveWorkers < 1 {
		opts.ResolveWorkers = 1
	}
	return &PromotionService{
		tx:          tx,
		promos:      promos,
		redemptions: redemptions,
		cache:       c,
		engine:      engine,
		logger:      logger,
		opts:        opts,
	}
}

type AllocateRequest struct {
	OrderID    string
	Selections []models.PromoSelection
	CartLines  []models.CartLine
}

// Allocate resolves the selected promotions, runs the allocation and, when an
// order id is given, records one redemption per applied promotion in a single
// transaction. Either every redemption is written or none is.
func (s *PromotionService) Allocate(ctx context.Context, req AllocateRequest) (*models.AllocationResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	// 1) Resolve every selected promotion up front
	resolved, err := s.resolve(ctx, req.Selections)
	if err != nil {
		return nil, err
	}

	// 2) Allocate; pure computation against the resolved snapshot
	result, err := s.engine.Allocate(req.Selections, req.CartLines, promo.MapResolver(resolved))
	if err != nil {
		s.logger.Error("promotion allocation broke ledger invariant", zap.String("order_id", req.OrderID), zap.Error(err))
		return nil, fmt.Errorf("allocate: %w", err)
	}

	for _, rej := range result.Rejected {
		s.logger.Info("promotion not applied",
			zap.String("order_id", req.OrderID),
			zap.String("promo_id", rej.PromoID),
			zap.String("reason", rej.Reason))
	}

	if req.OrderID == "" || len(result.AppliedPromos) == 0 {
		return result, nil
	}

	// 3) Record redemptions atomically, one row per promotion per order
	ids, totals := discountPerPromo(result.AppliedPromos)
	err = s.tx.InTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			if err := s.redemptions.RecordRedemption(ctx, tx, id, req.OrderID, totals[id]); err != nil {
				return fmt.Errorf("record redemption %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("promotions allocated",
		zap.String("order_id", req.OrderID),
		zap.Int("applied", len(result.AppliedPromos)),
		zap.String("total_discount", result.TotalDiscount.String()))
	return result, nil
}

// Validate reports per selection whether it could apply to the cart on its
// own. It never writes.
func (s *PromotionService) Validate(ctx context.Context, selections []models.PromoSelection, cart []models.CartLine) ([]models.ValidationResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resolved, err := s.resolve(ctx, selections)
	if err != nil {
		return nil, err
	}
	return s.engine.Validate(selections, cart, promo.MapResolver(resolved)), nil
}

func (s *PromotionService) GetPromotion(ctx context.Context, id string) (*models.Promotion, error) {
	p, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, models.ErrPromotionNotFound
	}
	return p, nil
}

func (s *PromotionService) CountRedemptions(ctx context.Context, id string) (int, error) {
	return s.redemptions.CountRedemptions(ctx, id)
}

// CreatePromotion stores p, assigning an id when it has none.
func (s *PromotionService) CreatePromotion(ctx context.Context, p *models.Promotion) error {
	if p == nil || p.Rule == nil || p.Name == "" {
		return fmt.Errorf("%w: name and rule required", models.ErrInvalidPromotion)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	} else if _, err := uuid.Parse(p.ID); err != nil {
		return fmt.Errorf("%w: id must be a uuid", models.ErrInvalidPromotion)
	}

	err := s.tx.InTx(ctx, func(tx *sql.Tx) error {
		return s.promos.CreatePromotion(ctx, tx, p)
	})
	if err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(p.ID)
	}
	s.logger.Info("promotion created", zap.String("promo_id", p.ID), zap.String("promo_type", string(p.Type())))
	return nil
}

// resolve fetches the distinct promotions named by selections. Unknown ids are
// left out; the engine rejects them as not found.
func (s *PromotionService) resolve(ctx context.Context, selections []models.PromoSelection) (map[string]*models.Promotion, error) {
	ids := make([]string, 0, len(selections))
	seen := make(map[string]bool, len(selections))
	for _, sel := range selections {
		if !seen[sel.PromoID] {
			seen[sel.PromoID] = true
			ids = append(ids, sel.PromoID)
		}
	}

	found := make([]*models.Promotion, len(ids))
	err := concurrency.ForEach(ctx, s.opts.ResolveWorkers, len(ids), func(ctx context.Context, i int) error {
		p, err := s.lookup(ctx, ids[i])
		if err != nil {
			return fmt.Errorf("resolve promotion %s: %w", ids[i], err)
		}
		found[i] = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	resolved := make(map[string]*models.Promotion, len(ids))
	for i, p := range found {
		if p != nil {
			resolved[ids[i]] = p
		}
	}
	return resolved, nil
}

func (s *PromotionService) lookup(ctx context.Context, id string) (*models.Promotion, error) {
	if s.cache != nil {
		if p, ok := s.cache.Get(id); ok {
			return p, nil
		}
	}
	p, err := s.promos.GetPromotion(ctx, id)
	if err != nil {
		return nil, err
	}
	if p != nil && s.cache != nil {
		s.cache.Set(p)
	}
	return p, nil
}

// discountPerPromo sums the discount of every applied entry per promotion,
// keeping first-applied order. A promotion selected twice in one order is
// redeemed once for the combined amount.
func discountPerPromo(applied []models.AppliedPromo) ([]string, map[string]decimal.Decimal) {
	ids := make([]string, 0, len(applied))
	totals := make(map[string]decimal.Decimal, len(applied))
	for _, ap := range applied {
		sum, ok := totals[ap.PromoID]
		if !ok {
			ids = append(ids, ap.PromoID)
		}
		totals[ap.PromoID] = sum.Add(ap.Discount)
	}
	return ids, totals
}

func (s *PromotionService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.RequestTimeout)
}
