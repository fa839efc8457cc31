package emailjs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/designa/internal/contact"
)

var creds = contact.Credentials{ServiceID: "service_x", TemplateID: "template_y", PublicKey: "pk_z"}

func TestSend_Payload(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	c := New(srv.URL, creds, time.Second)
	sentAt := time.Date(2030, 3, 4, 15, 4, 5, 0, time.UTC)
	status, err := c.Send(context.Background(), contact.Message{
		Name: "Ada", Email: "ada@example.com", Message: "Hello there, studio!", SentAt: sentAt,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	assert.Equal(t, "service_x", got.ServiceID)
	assert.Equal(t, "template_y", got.TemplateID)
	assert.Equal(t, "pk_z", got.UserID)
	assert.Equal(t, templateParams{
		Name:    "Ada",
		Email:   "ada@example.com",
		Message: "Hello there, studio!",
		ReplyTo: "ada@example.com",
		Title:   "Ada",
		Time:    "Mar 4, 2030, 3:04:05 PM UTC",
	}, got.TemplateParams)
}

func TestSend_ErrorCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("The Public Key is invalid. To find this ID, visit https://dashboard.emailjs.com/admin/account\n"))
	}))
	defer srv.Close()

	status, err := New(srv.URL, creds, time.Second).Send(context.Background(), contact.Message{})
	assert.Equal(t, http.StatusBadRequest, status)
	require.Error(t, err)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.HTTPStatus())

	category, _ := contact.Classify(status, err)
	assert.Equal(t, contact.CategoryConfiguration, category)
}

func TestSend_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	status, err := New(srv.URL, creds, time.Second).Send(context.Background(), contact.Message{})
	require.Error(t, err)
	category, _ := contact.Classify(status, err)
	assert.Equal(t, contact.CategoryRateLimit, category)

	// The status travels with the error when a caller only keeps the error.
	category, _ = contact.Classify(0, fmt.Errorf("deliver: %w", err))
	assert.Equal(t, contact.CategoryRateLimit, category)
}

func TestSend_TransportFailureIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	status, err := New(url, creds, time.Second).Send(context.Background(), contact.Message{})
	require.Error(t, err)
	assert.Equal(t, 0, status)
	category, _ := contact.Classify(status, err)
	assert.Equal(t, contact.CategoryNetwork, category)
}

func TestSend_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	_, err := New(srv.URL, creds, 50*time.Millisecond).Send(context.Background(), contact.Message{})
	require.Error(t, err)
	category, _ := contact.Classify(0, err)
	assert.Equal(t, contact.CategoryNetwork, category)
}
