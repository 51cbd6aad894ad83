package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"naco/internal/domain"
	"naco/internal/domain/models"
	"naco/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// ReceiptService renders a booking receipt PDF for its client or artisan.
type ReceiptService struct {
	Bookings    BookingStore
	Directory   Directory
	PlatformFee float64
	Loader      func(ctx context.Context, bookingID string) (receiptData, error)
}

type receiptData struct {
	Booking     models.Booking
	ClientName  string
	ArtisanName string
	Trade       string
	Fee         float64
}

// Receipt returns the PDF bytes and a download filename.
func (s ReceiptService) Receipt(ctx context.Context, bookingID, requesterID string) ([]byte, string, error) {
	data, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	if !data.Booking.HasParticipant(requesterID) {
		return nil, "", domain.UnauthorizedError{ActorID: requesterID, Msg: "not a participant of this booking"}
	}
	utils.LogCtx(ctx, "docs", "generate_receipt", "booking_id="+data.Booking.ID)
	return buildReceiptPDF(data, utils.NowUTC())
}

func (s ReceiptService) load(ctx context.Context, bookingID string) (receiptData, error) {
	if s.Loader != nil {
		return s.Loader(ctx, bookingID)
	}
	b, err := s.Bookings.GetBooking(ctx, strings.TrimSpace(bookingID))
	if err != nil {
		return receiptData{}, err
	}
	out := receiptData{Booking: b, Fee: s.PlatformFee}
	if out.Fee <= 0 {
		out.Fee = DefaultPlatformFee
	}
	// Names are cosmetic; a missing profile still yields a receipt.
	if u, err := s.Directory.GetUser(ctx, b.ClientID); err == nil {
		out.ClientName = u.Name
	}
	if u, err := s.Directory.GetUser(ctx, b.ArtisanID); err == nil {
		out.ArtisanName = u.Name
		out.Trade = u.Trade
	}
	return out, nil
}

func buildReceiptPDF(d receiptData, issued time.Time) ([]byte, string, error) {
	b := d.Booking
	rate := b.Amount - d.Fee
	if rate < 0 {
		rate = 0
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "NACO BOOKING RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Reference  : %s", safe(b.Reference, "-")),
		fmt.Sprintf("Issued     : %s", issued.Format("2006-01-02 15:04")),
		fmt.Sprintf("Status     : %s", strings.ReplaceAll(b.Status.String(), "_", " ")),
		fmt.Sprintf("Client     : %s", safe(d.ClientName, b.ClientID)),
		fmt.Sprintf("Artisan    : %s", safe(d.ArtisanName, b.ArtisanID)),
		fmt.Sprintf("Trade      : %s", safe(d.Trade, "-")),
		fmt.Sprintf("Service    : %s", safe(b.Service, "-")),
		fmt.Sprintf("Location   : %s", safe(b.Location, "-")),
		fmt.Sprintf("Scheduled  : %s", safe(utils.FormatSchedule(b.ScheduledDate, b.ScheduledTime), "-")),
		fmt.Sprintf("Payment    : %s", safe(string(b.PaymentMethod), "-")),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Breakdown:")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Service rate : "+utils.FormatNaira(rate))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Platform fee : "+utils.FormatNaira(d.Fee))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+utils.FormatNaira(b.Amount))
	pdf.Ln(12)

	if strings.TrimSpace(b.Description) != "" {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, "Notes: "+b.Description, "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("RECEIPT_%s.pdf", utils.SafeFilenamePart(b.Reference))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
