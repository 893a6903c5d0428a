package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/Billing-system-promo-engine/internal/cache"
	"github.com/Cheertaboi/Billing-system-promo-engine/internal/models"
	"github.com/Cheertaboi/Billing-system-promo-engine/internal/promo"
)

type fakePromoRepo struct {
	mu      sync.Mutex
	promos  map[string]*models.Promotion
	gets    map[string]int
	created []*models.Promotion
	getErr  error
}

func newFakePromoRepo(promos ...*models.Promotion) *fakePromoRepo {
	r := &fakePromoRepo{promos: map[string]*models.Promotion{}, gets: map[string]int{}}
	for _, p := range promos {
		r.promos[p.ID] = p
	}
	return r
}

func (r *fakePromoRepo) GetPromotion(ctx context.Context, id string) (*models.Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets[id]++
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.promos[id], nil
}

func (r *fakePromoRepo) CreatePromotion(ctx context.Context, tx *sql.Tx, p *models.Promotion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, p)
	r.promos[p.ID] = p
	return nil
}

type redemption struct {
	promoID  string
	orderID  string
	discount decimal.Decimal
}

type fakeRedemptionRepo struct {
	recorded []redemption
	failOn   string
}

func (r *fakeRedemptionRepo) RecordRedemption(ctx context.Context, tx *sql.Tx, promoID, orderID string, discount decimal.Decimal) error {
	if promoID == r.failOn {
		return errors.New("insert failed")
	}
	// same conflict rule as the table: one row per (promotion, order)
	for _, rd := range r.recorded {
		if rd.promoID == promoID && rd.orderID == orderID {
			return nil
		}
	}
	r.recorded = append(r.recorded, redemption{promoID, orderID, discount})
	return nil
}

func (r *fakeRedemptionRepo) CountRedemptions(ctx context.Context, promoID string) (int, error) {
	n := 0
	for _, rd := range r.recorded {
		if rd.promoID == promoID {
			n++
		}
	}
	return n, nil
}

// fakeTx mimics commit/rollback by discarding redemptions written by a failed fn.
type fakeTx struct {
	redemptions *fakeRedemptionRepo
	calls       int
}

func (f *fakeTx) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	f.calls++
	var before int
	if f.redemptions != nil {
		before = len(f.redemptions.recorded)
	}
	if err := fn(nil); err != nil {
		if f.redemptions != nil {
			f.redemptions.recorded = f.redemptions.recorded[:before]
		}
		return err
	}
	return nil
}

var (
	bundleID  = "11111111-1111-1111-1111-111111111111"
	percentID = "22222222-2222-2222-2222-222222222222"
)

func fixtures() []*models.Promotion {
	return []*models.Promotion{
		{
			ID:   bundleID,
			Name: "Coffee pair",
			Rule: models.BundleRule{
				Items:       []models.BundleItem{{ProductID: "A", RequiredQuantity: 2}},
				BundlePrice: decimal.NewFromInt(15000),
			},
		},
		{
			ID:   percentID,
			Name: "Ten off",
			Rule: models.ProductSpecificRule{
				EligibleProductIDs: []string{"A"},
				Kind:               models.DiscountKindPercentage,
				Value:              decimal.NewFromInt(10),
			},
		},
	}
}

type harness struct {
	svc   *PromotionService
	repo  *fakePromoRepo
	reds  *fakeRedemptionRepo
	tx    *fakeTx
	cache *cache.PromotionCache
}

func newHarness(promos ...*models.Promotion) *harness {
	repo := newFakePromoRepo(promos...)
	reds := &fakeRedemptionRepo{}
	tx := &fakeTx{redemptions: reds}
	c := cache.NewPromotionCache(time.Minute)
	svc := NewPromotionService(tx, repo, reds, c, promo.NewEngine(nil, promo.DefaultScale), nil,
		Options{ResolveWorkers: 2, RequestTimeout: time.Second})
	return &harness{svc: svc, repo: repo, reds: reds, tx: tx, cache: c}
}

func cart() []models.CartLine {
	return []models.CartLine{{ProductID: "A", Quantity: 5, Subtotal: decimal.NewFromInt(50000)}}
}

func TestAllocate_RecordsRedemptionPerAppliedPromo(t *testing.T) {
	h := newHarness(fixtures()...)

	res, err := h.svc.Allocate(context.Background(), AllocateRequest{
		OrderID: "order-1",
		Selections: []models.PromoSelection{
			{PromoID: bundleID, BundleSets: 1},
			{PromoID: percentID, SelectedLines: []models.SelectedLine{{ProductID: "A", Quantity: 4}}},
			{PromoID: "unknown"},
		},
		CartLines: cart(),
	})

	require.NoError(t, err)
	assert.True(t, res.TotalDiscount.Equal(decimal.NewFromInt(8000)), res.TotalDiscount.String())
	require.Len(t, h.reds.recorded, 2)
	assert.Equal(t, bundleID, h.reds.recorded[0].promoID)
	assert.Equal(t, "order-1", h.reds.recorded[0].orderID)
	assert.True(t, h.reds.recorded[1].discount.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, []models.RejectedSelection{{PromoID: "unknown", Reason: promo.ReasonNotFound}}, res.Rejected)
}

func TestAllocate_RepeatedSelectionRedeemedForCombinedDiscount(t *testing.T) {
	h := newHarness(fixtures()...)

	res, err := h.svc.Allocate(context.Background(), AllocateRequest{
		OrderID: "order-3",
		Selections: []models.PromoSelection{
			{PromoID: percentID, SelectedLines: []models.SelectedLine{{ProductID: "A", Quantity: 2}}},
			{PromoID: percentID, SelectedLines: []models.SelectedLine{{ProductID: "A", Quantity: 2}}},
		},
		CartLines: cart(),
	})

	require.NoError(t, err)
	require.Len(t, res.AppliedPromos, 2)
	assert.True(t, res.TotalDiscount.Equal(decimal.NewFromInt(4000)), res.TotalDiscount.String())
	require.Len(t, h.reds.recorded, 1)
	assert.Equal(t, percentID, h.reds.recorded[0].promoID)
	assert.True(t, h.reds.recorded[0].discount.Equal(res.TotalDiscount), h.reds.recorded[0].discount.String())
}

func TestAllocate_WithoutOrderIDDoesNotWrite(t *testing.T) {
	h := newHarness(fixtures()...)

	_, err := h.svc.Allocate(context.Background(), AllocateRequest{
		Selections: []models.PromoSelection{{PromoID: bundleID}},
		CartLines:  cart(),
	})

	require.NoError(t, err)
	assert.Equal(t, 0, h.tx.calls)
	assert.Empty(t, h.reds.recorded)
}

func TestAllocate_RedemptionFailureRollsBack(t *testing.T) {
	h := newHarness(fixtures()...)
	h.reds.failOn = percentID

	_, err := h.svc.Allocate(context.Background(), AllocateRequest{
		OrderID: "order-2",
		Selections: []models.PromoSelection{
			{PromoID: bundleID},
			{PromoID: percentID, SelectedLines: []models.SelectedLine{{ProductID: "A", Quantity: 1}}},
		},
		CartLines: cart(),
	})

	require.Error(t, err)
	assert.Empty(t, h.reds.recorded)
}

func TestAllocate_ResolvesEachPromotionOnceAndCaches(t *testing.T) {
	h := newHarness(fixtures()...)
	req := AllocateRequest{
		Selections: []models.PromoSelection{
			{PromoID: percentID, SelectedLines: []models.SelectedLine{{ProductID: "A", Quantity: 1}}},
			{PromoID: percentID, SelectedLines: []models.SelectedLine{{ProductID: "A", Quantity: 1}}},
		},
		CartLines: cart(),
	}

	_, err := h.svc.Allocate(context.Background(), req)
	require.NoError(t, err)
	_, err = h.svc.Allocate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, h.repo.gets[percentID])
}

func TestAllocate_RepoErrorSurfaces(t *testing.T) {
	h := newHarness(fixtures()...)
	h.repo.getErr = errors.New("connection reset")

	_, err := h.svc.Allocate(context.Background(), AllocateRequest{
		Selections: []models.PromoSelection{{PromoID: bundleID}},
		CartLines:  cart(),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestValidate_NeverWrites(t *testing.T) {
	h := newHarness(fixtures()...)
	selections := []models.PromoSelection{
		{PromoID: bundleID, BundleSets: 3},
		{PromoID: percentID, SelectedLines: []models.SelectedLine{{ProductID: "A", Quantity: 5}}},
	}

	first, err := h.svc.Validate(context.Background(), selections, cart())
	require.NoError(t, err)
	second, err := h.svc.Validate(context.Background(), selections, cart())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []models.ValidationResult{
		{PromoID: bundleID, Valid: true},
		{PromoID: percentID, Valid: true},
	}, first)
	assert.Equal(t, 0, h.tx.calls)
}

func TestGetPromotion_NotFound(t *testing.T) {
	h := newHarness()

	_, err := h.svc.GetPromotion(context.Background(), bundleID)

	assert.ErrorIs(t, err, models.ErrPromotionNotFound)
}

func TestCreatePromotion_AssignsID(t *testing.T) {
	h := newHarness()
	p := &models.Promotion{
		Name: "Cake day",
		Rule: models.ProductSpecificRule{EligibleProductIDs: []string{"cake"}, Kind: models.DiscountKindFixed, Value: decimal.NewFromInt(2000)},
	}

	require.NoError(t, h.svc.CreatePromotion(context.Background(), p))

	_, err := uuid.Parse(p.ID)
	assert.NoError(t, err)
	require.Len(t, h.repo.created, 1)
	assert.Equal(t, 1, h.tx.calls)

	got, err := h.svc.GetPromotion(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cake day", got.Name)
}

func TestCreatePromotion_Invalid(t *testing.T) {
	h := newHarness()

	err := h.svc.CreatePromotion(context.Background(), &models.Promotion{Name: "no rule"})
	assert.ErrorIs(t, err, models.ErrInvalidPromotion)

	err = h.svc.CreatePromotion(context.Background(), &models.Promotion{
		ID:   "not-a-uuid",
		Name: "bad id",
		Rule: models.BundleRule{},
	})
	assert.ErrorIs(t, err, models.ErrInvalidPromotion)
	assert.Equal(t, 0, h.tx.calls)
}
