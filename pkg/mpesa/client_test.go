package mpesa

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPassword(t *testing.T) {
	at := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

	password, timestamp := Password("174379", "secret-passkey", at)

	assert.Equal(t, "20240102150405", timestamp)
	want := base64.StdEncoding.EncodeToString([]byte("174379" + "secret-passkey" + "20240102150405"))
	assert.Equal(t, want, password)
}

func TestSTKPush(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "ck", user)
			assert.Equal(t, "cs", pass)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"tok-123","expires_in":"3599"}`))
		case "/mpesa/stkpush/v1/processrequest":
			assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"MerchantRequestID":"29115-34620561-1",
				"CheckoutRequestID":"ws_CO_191220191020363925",
				"ResponseCode":"0",
				"ResponseDescription":"Success. Request accepted for processing",
				"CustomerMessage":"Success. Request accepted for processing"
			}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(Config{
		BaseURL:        srv.URL,
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		ShortCode:      "174379",
		Passkey:        "pk",
		CallbackURL:    "https://example.com/api/v1/payments/callback",
	})

	resp, err := client.STKPush(context.Background(), STKPushInput{
		Amount:      250,
		PhoneNumber: "254712345678",
		Reference:   "SALE-1",
		Description: "Sale Payment",
	})

	assert.NoError(t, err)
	assert.Equal(t, "ws_CO_191220191020363925", resp.CheckoutRequestID)
}

func TestParseCallback(t *testing.T) {
	t.Run("successful payment", func(t *testing.T) {
		body := []byte(`{
			"Body": {
				"stkCallback": {
					"MerchantRequestID": "29115-34620561-1",
					"CheckoutRequestID": "ws_CO_191220191020363925",
					"ResultCode": 0,
					"ResultDesc": "The service request is processed successfully."
				}
			}
		}`)

		result, err := ParseCallback(body)
		assert.NoError(t, err)
		assert.Equal(t, "ws_CO_191220191020363925", result.CheckoutRequestID)
		assert.True(t, result.Succeeded())
	})

	t.Run("cancelled payment", func(t *testing.T) {
		body := []byte(`{
			"Body": {
				"stkCallback": {
					"CheckoutRequestID": "ws_CO_191220191020363925",
					"ResultCode": 1032,
					"ResultDesc": "Request cancelled by user"
				}
			}
		}`)

		result, err := ParseCallback(body)
		assert.NoError(t, err)
		assert.False(t, result.Succeeded())
		assert.Equal(t, "Request cancelled by user", result.ResultDesc)
	})

	t.Run("missing checkout id", func(t *testing.T) {
		_, err := ParseCallback([]byte(`{"Body":{"stkCallback":{}}}`))
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := ParseCallback([]byte(`not-json`))
		assert.Error(t, err)
	})
}
