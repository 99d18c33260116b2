package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"laundry_service/constants"
	"laundry_service/model"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	KindOrderConfirmation = "order_confirmation"
	KindOrderStatus       = "order_status"
	KindPaymentReceived   = "payment_received"
)

var statusText = map[string]string{
	constants.ORDER_IN_TRANSIT:       "Our rider is on the way to pick up your laundry.",
	constants.ORDER_PICKED_UP:        "Your laundry has been picked up and is on its way to our facility.",
	constants.ORDER_PROCESSING:       "Your laundry is now being processed.",
	constants.ORDER_READY:            "Good news! Your laundry is ready for delivery.",
	constants.ORDER_OUT_FOR_DELIVERY: "Your laundry is out for delivery and will arrive soon.",
	constants.ORDER_COMPLETED:        "Your order has been completed. Thank you!",
	constants.ORDER_CANCELLED:        "Your order has been cancelled.",
}

// StatusText is the customer facing sentence for an order status.
func StatusText(status string) string {
	if text, ok := statusText[status]; ok {
		return text
	}
	return "Your order status has been updated to: " + status
}

// RecipientFor reads the notification preferences off the user.
func RecipientFor(user *model.User) Recipient {
	if user == nil {
		return Recipient{}
	}
	return Recipient{
		Name:       user.Name,
		Email:      user.Email,
		Mobile:     user.Mobile,
		AllowEmail: user.AllowEmailNotifications,
		AllowSMS:   user.AllowSMSNotifications,
	}
}

type itemLine struct {
	Name     string
	Quantity string
	Total    string
}

type confirmationData struct {
	AppName       string
	Name          string
	OrderNumber   string
	PickupDate    string
	PickupTime    string
	PickupAddress string
	Items         []itemLine
	AddonsTotal   string
	Rush          bool
	RushFee       string
	Total         string
	PaymentMethod string
	PaymentStatus string
}

func render(name string, data any) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return body.String(), nil
}

func OrderConfirmation(appName string, user *model.User, order *model.Order) (Message, error) {
	data := confirmationData{
		AppName:       appName,
		Name:          user.Name,
		OrderNumber:   order.OrderNumber,
		PickupDate:    order.PickupDate,
		PickupTime:    order.PickupTime,
		PickupAddress: order.PickupAddress,
		AddonsTotal:   order.AddonsTotal.StringFixed(2),
		Rush:          order.RushFee.IsPositive(),
		RushFee:       order.RushFee.StringFixed(2),
		Total:         order.Total.StringFixed(2),
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
	}
	for _, item := range order.Items {
		name := fmt.Sprintf("Service #%d", item.ServiceId)
		if item.Service != nil {
			name = item.Service.Name
		}
		data.Items = append(data.Items, itemLine{Name: name, Quantity: item.Quantity.String(), Total: item.TotalPrice.StringFixed(2)})
	}
	html, err := render("order_confirmation.html", data)
	if err != nil {
		return Message{}, err
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\n", user.Name)
	fmt.Fprintf(&text, "Your Laundry Order %s has been confirmed.\n\n", order.OrderNumber)
	fmt.Fprintf(&text, "Pickup: %s at %s - %s\n", order.PickupDate, order.PickupTime, order.PickupAddress)
	fmt.Fprintf(&text, "Total: PHP %s\n\n", order.Total.StringFixed(2))
	fmt.Fprintf(&text, "Thank you for choosing %s.", appName)

	return Message{
		Kind:      KindOrderConfirmation,
		Subject:   "Order Confirmation - " + order.OrderNumber,
		Text:      text.String(),
		HTML:      html,
		QRContent: order.OrderNumber,
	}, nil
}

func OrderStatusUpdate(appName string, user *model.User, order *model.Order) (Message, error) {
	html, err := render("order_status.html", map[string]string{
		"AppName":     appName,
		"Name":        user.Name,
		"OrderNumber": order.OrderNumber,
		"StatusText":  StatusText(order.Status),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Kind:    KindOrderStatus,
		Subject: "Order Status Update - " + order.OrderNumber,
		Text:    fmt.Sprintf("Order Update: %s\n\n%s\n\nThank you for choosing us!", order.OrderNumber, StatusText(order.Status)),
		HTML:    html,
	}, nil
}

func PaymentReceived(appName string, user *model.User, order *model.Order, txn *model.PaymentTransaction) (Message, error) {
	html, err := render("payment_received.html", map[string]any{
		"AppName":       appName,
		"Name":          user.Name,
		"OrderNumber":   order.OrderNumber,
		"Amount":        txn.Amount.StringFixed(2),
		"PaymentMethod": txn.PaymentMethod,
		"TransactionId": txn.TransactionId,
		"LoyaltyPoints": order.LoyaltyPointsAwarded,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Kind:    KindPaymentReceived,
		Subject: "Payment Received - " + order.OrderNumber,
		Text:    fmt.Sprintf("Payment of PHP %s received for order %s. Ref: %s", txn.Amount.StringFixed(2), order.OrderNumber, txn.TransactionId),
		HTML:    html,
	}, nil
}
