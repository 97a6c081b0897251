package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/snackbasket/storefront-api/models"
	"github.com/snackbasket/storefront-api/pricing"
)

// Source says where a cart snapshot came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

const (
	localCartPrefix    = "local_"
	localCartTTL       = 7 * 24 * time.Hour
	localCouponPercent = 10
)

// Item is a cart line as the storefront sees it.
type Item struct {
	ProductID   string  `json:"productId"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Weight      string  `json:"weight,omitempty"`
	Image       string  `json:"image,omitempty"`
}

type Coupon struct {
	Code          string  `json:"code"`
	DiscountType  string  `json:"discountType"`
	DiscountValue float64 `json:"discountValue"`
}

// Cart is the snapshot returned by every cart operation. Source tells the
// caller whether totals came from the API or the local simulation.
type Cart struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId,omitempty"`
	Status       string    `json:"status"`
	Items        []Item    `json:"items"`
	Coupon       *Coupon   `json:"coupon,omitempty"`
	Subtotal     float64   `json:"subtotal"`
	TaxAmount    float64   `json:"taxAmount"`
	ShippingCost float64   `json:"shippingCost"`
	TotalAmount  float64   `json:"totalAmount"`
	ExpiresAt    time.Time `json:"expiresAt"`
	Source       Source    `json:"-"`
}

// CartStore drives the shopper's cart. Mutations are serialized in issue
// order; login and logout bump a version counter so responses that were in
// flight when the session changed get discarded instead of applied.
type CartStore struct {
	api *apiClient
	kv  KV

	opMu sync.Mutex

	mu      sync.Mutex
	version uint64
}

func newCartStore(api *apiClient, kv KV) *CartStore {
	return &CartStore{api: api, kv: kv}
}

func (s *CartStore) versionNow() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *CartStore) versionChanged(v uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version != v
}

func (s *CartStore) bumpVersion() {
	s.mu.Lock()
	s.version++
	s.mu.Unlock()
}

// GetOrCreate returns the current cart, creating one when none is stored or
// the stored one no longer exists. Falls back to the local cart when the API
// is unreachable.
func (s *CartStore) GetOrCreate(ctx context.Context) (*Cart, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	v := s.versionNow()

	if id, ok := s.kv.Get(keyCartID); ok {
		var cart Cart
		err := s.api.do(ctx, http.MethodGet, "/carts/"+id, nil, &cart)
		if err == nil {
			if s.versionChanged(v) {
				return nil, ErrSessionChanged
			}
			cart.Source = SourceRemote
			return &cart, nil
		}
		if errors.Is(err, ErrServiceUnavailable) {
			return s.localSnapshot()
		}
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrGone) {
			return nil, err
		}
		s.kv.Delete(keyCartID)
	}

	cart, err := s.createRemote(ctx)
	if errors.Is(err, ErrServiceUnavailable) {
		return s.localSnapshot()
	}
	if err != nil {
		return nil, err
	}
	if s.versionChanged(v) {
		return nil, ErrSessionChanged
	}
	s.kv.Set(keyCartID, cart.ID)
	return cart, nil
}

func (s *CartStore) createRemote(ctx context.Context) (*Cart, error) {
	var cart Cart
	if err := s.api.do(ctx, http.MethodPost, "/carts", nil, &cart); err != nil {
		return nil, err
	}
	cart.Source = SourceRemote
	return &cart, nil
}

// mutate runs a remote cart mutation, creating a cart first when needed and
// falling back to the local cart when the API is unreachable.
func (s *CartStore) mutate(ctx context.Context, remote func(cartID string) (*Cart, error), local func(*localCart) error) (*Cart, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	v := s.versionNow()

	id, ok := s.kv.Get(keyCartID)
	if !ok {
		created, err := s.createRemote(ctx)
		if errors.Is(err, ErrServiceUnavailable) {
			return s.applyLocal(local)
		}
		if err != nil {
			return nil, err
		}
		if s.versionChanged(v) {
			return nil, ErrSessionChanged
		}
		s.kv.Set(keyCartID, created.ID)
		id = created.ID
	}

	cart, err := remote(id)
	if errors.Is(err, ErrServiceUnavailable) {
		return s.applyLocal(local)
	}
	if (errors.Is(err, ErrNotFound) || errors.Is(err, ErrGone)) && s.cartGone(ctx, id) {
		// stored id went stale; start fresh and retry once
		created, cerr := s.createRemote(ctx)
		if errors.Is(cerr, ErrServiceUnavailable) {
			return s.applyLocal(local)
		}
		if cerr != nil {
			return nil, cerr
		}
		s.kv.Set(keyCartID, created.ID)
		cart, err = remote(created.ID)
	}
	if err != nil {
		return nil, err
	}
	if s.versionChanged(v) {
		return nil, ErrSessionChanged
	}
	cart.Source = SourceRemote
	return cart, nil
}

// cartGone re-reads the cart itself before its id is abandoned. Item routes
// answer 404 for a missing line too, and that must not discard a live cart.
func (s *CartStore) cartGone(ctx context.Context, id string) bool {
	err := s.api.do(ctx, http.MethodGet, "/carts/"+id, nil, nil)
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrGone)
}

// AddItem puts a product in the cart. Adding a product already present
// increments its quantity.
func (s *CartStore) AddItem(ctx context.Context, item Item) (*Cart, error) {
	if item.ProductID == "" {
		return nil, fmt.Errorf("%w: productId is required", ErrInvalidInput)
	}
	if item.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	return s.mutate(ctx,
		func(id string) (*Cart, error) {
			var cart Cart
			err := s.api.do(ctx, http.MethodPost, "/carts/"+id+"/items", item, &cart)
			return &cart, err
		},
		func(lc *localCart) error {
			lc.addItem(item)
			return nil
		},
	)
}

func (s *CartStore) UpdateItemQuantity(ctx context.Context, productID string, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	return s.mutate(ctx,
		func(id string) (*Cart, error) {
			var cart Cart
			err := s.api.do(ctx, http.MethodPut, "/carts/"+id+"/items/"+productID,
				map[string]int{"quantity": quantity}, &cart)
			return &cart, err
		},
		func(lc *localCart) error {
			return lc.setQuantity(productID, quantity)
		},
	)
}

func (s *CartStore) RemoveItem(ctx context.Context, productID string) (*Cart, error) {
	return s.mutate(ctx,
		func(id string) (*Cart, error) {
			var cart Cart
			err := s.api.do(ctx, http.MethodDelete, "/carts/"+id+"/items/"+productID, nil, &cart)
			return &cart, err
		},
		func(lc *localCart) error {
			return lc.removeItem(productID)
		},
	)
}

// Clear empties the cart. The cart itself stays usable.
func (s *CartStore) Clear(ctx context.Context) (*Cart, error) {
	return s.mutate(ctx,
		func(id string) (*Cart, error) {
			var cart Cart
			err := s.api.do(ctx, http.MethodDelete, "/carts/"+id+"/items", nil, &cart)
			return &cart, err
		},
		func(lc *localCart) error {
			lc.Items = nil
			return nil
		},
	)
}

// ApplyCoupon attaches a discount code. The local fallback cannot validate
// codes, so it simulates a flat percentage discount.
func (s *CartStore) ApplyCoupon(ctx context.Context, code string) (*Cart, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: coupon code is required", ErrInvalidInput)
	}
	return s.mutate(ctx,
		func(id string) (*Cart, error) {
			var cart Cart
			err := s.api.do(ctx, http.MethodPost, "/carts/"+id+"/coupon",
				map[string]string{"code": code}, &cart)
			return &cart, err
		},
		func(lc *localCart) error {
			lc.Coupon = &Coupon{
				Code:          strings.ToUpper(code),
				DiscountType:  models.DiscountTypePercentage,
				DiscountValue: localCouponPercent,
			}
			return nil
		},
	)
}

// RemoveCoupon detaches any applied coupon. Removing when none is applied is
// a no-op.
func (s *CartStore) RemoveCoupon(ctx context.Context) (*Cart, error) {
	return s.mutate(ctx,
		func(id string) (*Cart, error) {
			var cart Cart
			err := s.api.do(ctx, http.MethodDelete, "/carts/"+id+"/coupon", nil, &cart)
			return &cart, err
		},
		func(lc *localCart) error {
			lc.Coupon = nil
			return nil
		},
	)
}

// Checkout completes the cart and forgets its id so the next operation
// starts a fresh one. Checkout needs the real API; there is no local path.
func (s *CartStore) Checkout(ctx context.Context) (*Cart, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	v := s.versionNow()

	id, ok := s.kv.Get(keyCartID)
	if !ok {
		return nil, fmt.Errorf("%w: no cart to check out", ErrInvalidInput)
	}

	var cart Cart
	if err := s.api.do(ctx, http.MethodPost, "/carts/"+id+"/checkout", nil, &cart); err != nil {
		return nil, err
	}
	if s.versionChanged(v) {
		return nil, ErrSessionChanged
	}

	s.kv.Delete(keyCartID)
	cart.Source = SourceRemote
	return &cart, nil
}

// MergeGuestCart folds the remembered guest cart into the authenticated
// user's cart and adopts the merged cart's id. Called automatically on
// login; exposed for hosts that manage sessions themselves.
func (s *CartStore) MergeGuestCart(ctx context.Context) (*Cart, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.mergeLocked(ctx)
}

func (s *CartStore) mergeLocked(ctx context.Context) (*Cart, error) {
	guestID, hadGuest := s.kv.Get(keyCartID)

	var owner Cart
	if err := s.api.do(ctx, http.MethodGet, "/user/cart", nil, &owner); err != nil {
		return nil, err
	}

	if hadGuest && guestID != owner.ID {
		var merged Cart
		err := s.api.do(ctx, http.MethodPost, "/carts/"+owner.ID+"/merge",
			map[string]string{"guestCartId": guestID}, &merged)
		if err == nil {
			owner = merged
		} else if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrGone) {
			return nil, err
		}
	}

	s.kv.Set(keyCartID, owner.ID)
	owner.Source = SourceRemote
	return &owner, nil
}

// handleLogin runs once per anonymous-to-authenticated transition.
func (s *CartStore) handleLogin(ctx context.Context) {
	s.bumpVersion()
	s.opMu.Lock()
	defer s.opMu.Unlock()
	// best effort; the guest cart id survives for a later manual merge
	s.mergeLocked(ctx)
}

// handleLogout forgets the remote cart id. The local fallback cart is
// device-scoped and survives logout.
func (s *CartStore) handleLogout() {
	s.bumpVersion()
	s.kv.Delete(keyCartID)
}

// ---- local fallback cart ----

type localCart struct {
	ID        string    `json:"id"`
	Items     []Item    `json:"items"`
	Coupon    *Coupon   `json:"coupon,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (lc *localCart) addItem(item Item) {
	for i := range lc.Items {
		if lc.Items[i].ProductID == item.ProductID {
			lc.Items[i].Quantity += item.Quantity
			return
		}
	}
	lc.Items = append(lc.Items, item)
}

func (lc *localCart) setQuantity(productID string, quantity int) error {
	for i := range lc.Items {
		if lc.Items[i].ProductID == productID {
			lc.Items[i].Quantity = quantity
			return nil
		}
	}
	return fmt.Errorf("%w: item not in cart", ErrNotFound)
}

func (lc *localCart) removeItem(productID string) error {
	for i := range lc.Items {
		if lc.Items[i].ProductID == productID {
			lc.Items = append(lc.Items[:i], lc.Items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: item not in cart", ErrNotFound)
}

func (s *CartStore) loadLocal() *localCart {
	now := time.Now().UTC()
	if raw, ok := s.kv.Get(keyFallback); ok {
		var lc localCart
		if err := json.Unmarshal([]byte(raw), &lc); err == nil && now.Before(lc.ExpiresAt) {
			return &lc
		}
	}
	return &localCart{
		ID:        localCartPrefix + uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(localCartTTL),
	}
}

func (s *CartStore) saveLocal(lc *localCart) {
	if data, err := json.Marshal(lc); err == nil {
		s.kv.Set(keyFallback, string(data))
	}
}

func (s *CartStore) localSnapshot() (*Cart, error) {
	lc := s.loadLocal()
	s.saveLocal(lc)
	return lc.view(), nil
}

func (s *CartStore) applyLocal(local func(*localCart) error) (*Cart, error) {
	lc := s.loadLocal()
	if err := local(lc); err != nil {
		return nil, err
	}
	s.saveLocal(lc)
	return lc.view(), nil
}

// view derives totals the same way the API does so the UI renders identical
// numbers from either source.
func (lc *localCart) view() *Cart {
	cart := &Cart{
		ID:        lc.ID,
		Status:    string(models.CartStatusActive),
		Items:     lc.Items,
		Coupon:    lc.Coupon,
		ExpiresAt: lc.ExpiresAt,
		Source:    SourceLocal,
	}
	if len(lc.Items) == 0 {
		return cart
	}

	modelItems := make([]models.CartItem, 0, len(lc.Items))
	for _, item := range lc.Items {
		modelItems = append(modelItems, models.CartItem{
			ProductID: item.ProductID,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}
	var coupon *models.Coupon
	if lc.Coupon != nil {
		coupon = &models.Coupon{
			Code:          lc.Coupon.Code,
			DiscountType:  lc.Coupon.DiscountType,
			DiscountValue: lc.Coupon.DiscountValue,
		}
	}

	totals := pricing.Derive(pricing.Subtotal(modelItems), coupon)
	cart.Subtotal = totals.Subtotal
	cart.TaxAmount = totals.TaxAmount
	cart.ShippingCost = totals.ShippingCost
	cart.TotalAmount = totals.TotalAmount
	return cart
}
