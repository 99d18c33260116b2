package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/url"

	"github.com/gofiber/fiber/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var redirectPage = template.Must(template.ParseFS(templateFS, "templates/payment_redirect.html"))

type redirectView struct {
	Status        string
	Success       bool
	TransactionID string
	SourceID      string
	DeepLink      template.URL
}

// DeepLink builds <scheme>://payment/<status> with the ids the app needs to resume.
func DeepLink(scheme, status, transactionID, sourceID string) string {
	link := scheme + "://payment/" + status
	q := url.Values{}
	if transactionID != "" {
		q.Set("transaction_id", transactionID)
	}
	if sourceID != "" {
		q.Set("source_id", sourceID)
	}
	if len(q) > 0 {
		link += "?" + q.Encode()
	}
	return link
}

func (h *Handler) paymentRedirect(c *fiber.Ctx, status string) error {
	view := redirectView{
		Status:        status,
		Success:       status == "success",
		TransactionID: c.Query("transaction_id"),
		SourceID:      c.Query("source_id"),
	}
	view.DeepLink = template.URL(DeepLink(h.settings.DeepLinkScheme, status, view.TransactionID, view.SourceID))

	var buf bytes.Buffer
	if err := redirectPage.Execute(&buf, view); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("failed to render page")
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *Handler) PaymentSuccessPage(c *fiber.Ctx) error {
	return h.paymentRedirect(c, "success")
}

func (h *Handler) PaymentFailedPage(c *fiber.Ctx) error {
	return h.paymentRedirect(c, "failed")
}
