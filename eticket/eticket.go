// Package eticket renders the confirmation document for a committed order
// as a PDF with a signed QR payload for on-site verification.
package eticket

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"tengri/models"
)

var hmacSecret = []byte(secretFromEnv())

func secretFromEnv() string {
	if s := os.Getenv("TICKET_HMAC_SECRET"); s != "" {
		return s
	}
	return "change_me_in_production"
}

// QRPayload returns orderID|tourID|date|timestamp|signature. The scanner
// recomputes the HMAC over the first four fields.
func QRPayload(orderID, tourID, date string) string {
	data := fmt.Sprintf("%s|%s|%s|%d", orderID, tourID, date, time.Now().Unix())

	h := hmac.New(sha256.New, hmacSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return fmt.Sprintf("%s|%s", data, sig)
}

// VerifyQRPayload checks the signature on a scanned payload.
func VerifyQRPayload(payload string) bool {
	idx := -1
	for i := len(payload) - 1; i >= 0; i-- {
		if payload[i] == '|' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	data, sig := payload[:idx], payload[idx+1:]

	h := hmac.New(sha256.New, hmacSecret)
	h.Write([]byte(data))
	want := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(sig), []byte(want))
}

// Render produces the PDF for one order and its passengers.
func Render(order models.Order, tour models.Tour, passengers []models.CommittedPassenger) ([]byte, error) {
	qrPNG, err := qrcode.Encode(QRPayload(order.ID, order.TourID, order.Date), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, "Tour Booking Confirmation", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 8, fmt.Sprintf(
		"Order: %s\nTour: %s\nDeparture: %s\nContact: %s\nTotal: %.2f\nStatus: %s",
		order.ID,
		tour.Title,
		order.Date,
		order.ContactName,
		order.TotalPrice,
		order.Status,
	), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Passengers", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	for _, p := range passengers {
		pdf.CellFormat(0, 7, fmt.Sprintf("%d. %s  (passport %s, %s)",
			p.SerialNo, p.Name, p.PassportNumber, p.RoomType), "", 1, "L", false, 0, "")
	}

	imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imgOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 30, 40, 40, false, imgOpts, 0, "")

	pdf.SetY(-30)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 10, fmt.Sprintf("Issued %s. Present this document at departure.",
		time.Now().Format("02 Jan 2006 15:04")), "T", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}
