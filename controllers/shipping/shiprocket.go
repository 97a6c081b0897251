package shippingControllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/snackbasket/storefront-api/models"
)

const (
	defaultBaseURL = "https://apiv2.shiprocket.in/v1/external"

	// tokens are valid for 10 days per the courier API docs; refresh a bit early
	tokenLifetime = 9 * 24 * time.Hour

	minWeightKg      = 0.5
	defaultDimension = 10
)

// Client talks to the courier aggregator API. Auth tokens are cached and
// refreshed lazily under the mutex.
type Client struct {
	baseURL  string
	email    string
	password string
	http     *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClientFromEnv() (*Client, error) {
	email := os.Getenv("SHIPROCKET_EMAIL")
	password := os.Getenv("SHIPROCKET_PASSWORD")
	if email == "" || password == "" {
		return nil, fmt.Errorf("shiprocket configuration missing")
	}
	baseURL := os.Getenv("SHIPROCKET_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:  baseURL,
		email:    email,
		password: password,
		http:     &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (c *Client) authToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	payload, _ := json.Marshal(map[string]string{
		"email":    c.email,
		"password": c.password,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("courier auth failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("courier auth rejected (%d): %s", resp.StatusCode, string(body))
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.Token == "" {
		return "", fmt.Errorf("courier auth returned no token")
	}

	c.token = out.Token
	c.tokenExpiry = time.Now().Add(tokenLifetime)
	return c.token, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	token, err := c.authToken(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("courier request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("courier API error (%d): %s", resp.StatusCode, string(raw))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("courier response decode failed: %w", err)
		}
	}
	return nil
}

// ---- serviceability ----

type CourierOption struct {
	CourierName  string  `json:"courier_name"`
	Rate         float64 `json:"rate"`
	EstimatedETD string  `json:"etd"`
	CODAvailable bool    `json:"cod_available"`
}

type ServiceabilityResult struct {
	Serviceable bool            `json:"serviceable"`
	Couriers    []CourierOption `json:"couriers"`
}

// CheckServiceability asks which couriers can deliver between two pincodes.
func (c *Client) CheckServiceability(ctx context.Context, pickupPincode, deliveryPincode string, weightKg float64, cod bool) (*ServiceabilityResult, error) {
	if weightKg < minWeightKg {
		weightKg = minWeightKg
	}
	codFlag := "0"
	if cod {
		codFlag = "1"
	}

	q := url.Values{}
	q.Set("pickup_postcode", pickupPincode)
	q.Set("delivery_postcode", deliveryPincode)
	q.Set("weight", strconv.FormatFloat(weightKg, 'f', 2, 64))
	q.Set("cod", codFlag)

	var out struct {
		Data struct {
			AvailableCourierCompanies []struct {
				CourierName  string  `json:"courier_name"`
				Rate         float64 `json:"rate"`
				ETD          string  `json:"etd"`
				COD          int     `json:"cod"`
			} `json:"available_courier_companies"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/courier/serviceability/?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}

	result := &ServiceabilityResult{Couriers: []CourierOption{}}
	for _, cc := range out.Data.AvailableCourierCompanies {
		result.Couriers = append(result.Couriers, CourierOption{
			CourierName:  cc.CourierName,
			Rate:         cc.Rate,
			EstimatedETD: cc.ETD,
			CODAvailable: cc.COD == 1,
		})
	}
	result.Serviceable = len(result.Couriers) > 0
	return result, nil
}

// ---- shipment creation ----

type shipmentItem struct {
	Name         string  `json:"name"`
	SKU          string  `json:"sku"`
	Units        int     `json:"units"`
	SellingPrice float64 `json:"selling_price"`
}

type createOrderPayload struct {
	OrderID         string         `json:"order_id"`
	OrderDate       string         `json:"order_date"`
	PickupLocation  string         `json:"pickup_location"`
	BillingName     string         `json:"billing_customer_name"`
	BillingLastName string         `json:"billing_last_name"`
	BillingAddress  string         `json:"billing_address"`
	BillingCity     string         `json:"billing_city"`
	BillingPincode  string         `json:"billing_pincode"`
	BillingState    string         `json:"billing_state"`
	BillingCountry  string         `json:"billing_country"`
	BillingEmail    string         `json:"billing_email"`
	BillingPhone    string         `json:"billing_phone"`
	ShippingIsBill  bool           `json:"shipping_is_billing"`
	OrderItems      []shipmentItem `json:"order_items"`
	PaymentMethod   string         `json:"payment_method"`
	SubTotal        float64        `json:"sub_total"`
	Length          float64        `json:"length"`
	Breadth         float64        `json:"breadth"`
	Height          float64        `json:"height"`
	Weight          float64        `json:"weight"`
}

type ShipmentResult struct {
	OrderID    int64  `json:"order_id"`
	ShipmentID int64  `json:"shipment_id"`
	Status     string `json:"status"`
}

// CreateShipment registers an adhoc shipment for a placed order.
func (c *Client) CreateShipment(ctx context.Context, order models.Order) (*ShipmentResult, error) {
	var weight float64
	payload := createOrderPayload{
		OrderID:        order.Ref,
		OrderDate:      order.CreatedAt.Format("2006-01-02 15:04"),
		PickupLocation: os.Getenv("SHIPROCKET_PICKUP_LOCATION"),
		BillingName:    order.CustomerName,
		BillingAddress: order.Address,
		BillingCity:    order.City,
		BillingPincode: order.Pincode,
		BillingState:   order.State,
		BillingCountry: "India",
		BillingEmail:   order.Email,
		BillingPhone:   order.Phone,
		ShippingIsBill: true,
		PaymentMethod:  paymentMethodCode(order.PaymentMethod),
		SubTotal:       order.TotalAmount,
		Length:         defaultDimension,
		Breadth:        defaultDimension,
		Height:         defaultDimension,
	}
	for _, item := range order.Items {
		payload.OrderItems = append(payload.OrderItems, shipmentItem{
			Name:         item.Title,
			SKU:          item.ProductID,
			Units:        item.Quantity,
			SellingPrice: item.Price,
		})
		weight += parseWeightKg(item.Weight) * float64(item.Quantity)
	}
	if weight < minWeightKg {
		weight = minWeightKg
	}
	payload.Weight = weight

	var out ShipmentResult
	if err := c.do(ctx, http.MethodPost, "/orders/create/adhoc", payload, &out); err != nil {
		return nil, err
	}
	if out.ShipmentID == 0 {
		return nil, fmt.Errorf("courier did not assign a shipment id")
	}
	return &out, nil
}

// parseWeightKg reads catalog weight strings like "250g" or "0.5kg".
// Bare numbers are treated as grams.
func parseWeightKg(raw string) float64 {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0
	}
	switch {
	case strings.HasSuffix(s, "kg"):
		v, _ := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "kg")), 64)
		return v
	case strings.HasSuffix(s, "g"):
		v, _ := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "g")), 64)
		return v / 1000
	default:
		v, _ := strconv.ParseFloat(s, 64)
		return v / 1000
	}
}

func paymentMethodCode(method string) string {
	if method == "cod" {
		return "COD"
	}
	return "Prepaid"
}

// ---- tracking ----

type TrackingActivity struct {
	Date     string `json:"date"`
	Status   string `json:"status"`
	Activity string `json:"activity"`
	Location string `json:"location"`
}

type TrackingResult struct {
	CurrentStatus string             `json:"current_status"`
	CourierName   string             `json:"courier_name"`
	ETD           string             `json:"etd"`
	Activities    []TrackingActivity `json:"activities"`
}

// TrackShipment returns the courier's latest scan trail for a shipment.
func (c *Client) TrackShipment(ctx context.Context, shipmentID string) (*TrackingResult, error) {
	var out struct {
		TrackingData struct {
			ShipmentTrack []struct {
				CurrentStatus string `json:"current_status"`
				CourierName   string `json:"courier_name"`
			} `json:"shipment_track"`
			ShipmentTrackActivities []TrackingActivity `json:"shipment_track_activities"`
			ETD                     string             `json:"etd"`
		} `json:"tracking_data"`
	}
	if err := c.do(ctx, http.MethodGet, "/courier/track/shipment/"+shipmentID, nil, &out); err != nil {
		return nil, err
	}

	result := &TrackingResult{
		ETD:        out.TrackingData.ETD,
		Activities: out.TrackingData.ShipmentTrackActivities,
	}
	if len(out.TrackingData.ShipmentTrack) > 0 {
		result.CurrentStatus = out.TrackingData.ShipmentTrack[0].CurrentStatus
		result.CourierName = out.TrackingData.ShipmentTrack[0].CourierName
	}
	return result, nil
}
