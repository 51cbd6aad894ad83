package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"naco/internal/domain"
	"naco/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptService_Generate(t *testing.T) {
	loader := func(_ context.Context, id string) (receiptData, error) {
		return receiptData{
			Booking: models.Booking{
				ID:            id,
				ClientID:      "c1",
				ArtisanID:     "a1",
				Service:       "Plumbing",
				Location:      "Yaba, Lagos",
				ScheduledDate: time.Now().Format("2006-01-02"),
				ScheduledTime: "10:00",
				Amount:        5500,
				PaymentMethod: domain.PaymentTransfer,
				Status:        domain.StatusCompleted,
				Reference:     "NACO-AB12CD34",
			},
			ClientName:  "Chioma",
			ArtisanName: "Emeka",
			Trade:       "Plumber",
			Fee:         500,
		}, nil
	}
	svc := ReceiptService{Loader: loader}

	pdf, filename, err := svc.Receipt(context.Background(), "b1", "a1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")), "not a PDF")
	assert.Equal(t, "RECEIPT_NACO-AB12CD34.pdf", filename)

	_, _, err = svc.Receipt(context.Background(), "b1", "stranger")
	assert.True(t, domain.IsUnauthorized(err))
}

func TestReceiptService_FromStore(t *testing.T) {
	lc, store, _ := newLifecycle(t)
	b := mustCreate(t, lc, "c1", "a1")
	svc := ReceiptService{Bookings: store, Directory: store, PlatformFee: 500}

	pdf, _, err := svc.Receipt(context.Background(), b.ID, "c1")
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)

	_, _, err = svc.Receipt(context.Background(), "missing", "c1")
	assert.True(t, domain.IsNotFound(err))
}
