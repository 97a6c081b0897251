package shippingControllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snackbasket/storefront-api/models"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{
		baseURL:  srv.URL,
		email:    "ops@example.com",
		password: "secret",
		http:     &http.Client{Timeout: 2 * time.Second},
	}, srv
}

func TestAuthTokenCachedAcrossCalls(t *testing.T) {
	authCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		authCalls++
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "ops@example.com", creds["email"])
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
	})
	mux.HandleFunc("/courier/serviceability/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.Write([]byte(`{"data": {"available_courier_companies": []}}`))
	})

	cl, _ := newTestClient(t, mux)

	_, err := cl.CheckServiceability(context.Background(), "110001", "560001", 1.0, false)
	require.NoError(t, err)
	_, err = cl.CheckServiceability(context.Background(), "110001", "400001", 1.0, false)
	require.NoError(t, err)

	assert.Equal(t, 1, authCalls)
}

func TestCheckServiceability(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": "tok"})
	})
	mux.HandleFunc("/courier/serviceability/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "110001", q.Get("pickup_postcode"))
		assert.Equal(t, "560001", q.Get("delivery_postcode"))
		// requested weight below the carrier minimum gets floored
		assert.Equal(t, "0.50", q.Get("weight"))
		assert.Equal(t, "1", q.Get("cod"))

		w.Write([]byte(`{"data": {"available_courier_companies": [
			{"courier_name": "Delhivery", "rate": 55.5, "etd": "Sep 03, 2026", "cod": 1},
			{"courier_name": "Bluedart", "rate": 80, "etd": "Sep 02, 2026", "cod": 0}
		]}}`))
	})

	cl, _ := newTestClient(t, mux)
	result, err := cl.CheckServiceability(context.Background(), "110001", "560001", 0.2, true)
	require.NoError(t, err)

	assert.True(t, result.Serviceable)
	require.Len(t, result.Couriers, 2)
	assert.Equal(t, "Delhivery", result.Couriers[0].CourierName)
	assert.Equal(t, 55.5, result.Couriers[0].Rate)
	assert.True(t, result.Couriers[0].CODAvailable)
	assert.False(t, result.Couriers[1].CODAvailable)
}

func TestCreateShipmentFloorsWeight(t *testing.T) {
	var gotPayload createOrderPayload
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": "tok"})
	})
	mux.HandleFunc("/orders/create/adhoc", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"order_id": 101, "shipment_id": 202, "status": "NEW",
		})
	})

	cl, _ := newTestClient(t, mux)

	order := models.Order{
		Ref:           "20260831-abc",
		CustomerName:  "Asha",
		Address:       "12 MG Road",
		City:          "Bengaluru",
		State:         "Karnataka",
		Pincode:       "560001",
		Email:         "asha@example.com",
		Phone:         "+919876543210",
		PaymentMethod: "cod",
		TotalAmount:   276,
		CreatedAt:     time.Now().UTC(),
		Items: []models.OrderItem{
			{ProductID: "p1", Title: "Masala Chips", Price: 100, Quantity: 2, Weight: "100g"},
		},
	}

	result, err := cl.CreateShipment(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, int64(202), result.ShipmentID)

	assert.Equal(t, 0.5, gotPayload.Weight)
	assert.Equal(t, float64(defaultDimension), gotPayload.Length)
	assert.Equal(t, "COD", gotPayload.PaymentMethod)
	require.Len(t, gotPayload.OrderItems, 1)
	assert.Equal(t, 2, gotPayload.OrderItems[0].Units)
}

func TestTrackShipment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": "tok"})
	})
	mux.HandleFunc("/courier/track/shipment/202", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tracking_data": {
			"shipment_track": [{"current_status": "In Transit", "courier_name": "Delhivery"}],
			"shipment_track_activities": [
				{"date": "2026-08-30 10:00", "status": "IT", "activity": "Bag scanned", "location": "Delhi Hub"}
			],
			"etd": "2026-09-03"
		}}`))
	})

	cl, _ := newTestClient(t, mux)
	result, err := cl.TrackShipment(context.Background(), "202")
	require.NoError(t, err)

	assert.Equal(t, "In Transit", result.CurrentStatus)
	assert.Equal(t, "Delhivery", result.CourierName)
	require.Len(t, result.Activities, 1)
	assert.Equal(t, "Delhi Hub", result.Activities[0].Location)
}
