package constants

// order lifecycle
const (
	ORDER_PENDING          = "pending"
	ORDER_IN_TRANSIT       = "in_transit"
	ORDER_PICKED_UP        = "picked_up"
	ORDER_PROCESSING       = "processing"
	ORDER_READY            = "ready"
	ORDER_OUT_FOR_DELIVERY = "out_for_delivery"
	ORDER_COMPLETED        = "completed"
	ORDER_CANCELLED        = "cancelled"
)

// OrderStatusFlow is the forward path an order travels. Cancelled sits outside it.
var OrderStatusFlow = []string{
	ORDER_PENDING,
	ORDER_IN_TRANSIT,
	ORDER_PICKED_UP,
	ORDER_PROCESSING,
	ORDER_READY,
	ORDER_OUT_FOR_DELIVERY,
	ORDER_COMPLETED,
}

var OrderStatuses = append(append([]string{}, OrderStatusFlow...), ORDER_CANCELLED)

// payment status carried on the order
const (
	PAYMENT_UNPAID = "unpaid"
	PAYMENT_PAID   = "paid"
)

// payment transaction states
const (
	TXN_PENDING    = "pending"
	TXN_PROCESSING = "processing"
	TXN_PAID       = "paid"
	TXN_FAILED     = "failed"
)

var TxnOpenStatuses = []string{TXN_PENDING, TXN_PROCESSING}

const (
	ROLE_CUSTOMER = "customer"
	ROLE_ADMIN    = "admin"
)

const CURRENCY_PHP = "PHP"

// payment methods
const (
	METHOD_GCASH    = "gcash"
	METHOD_GRAB_PAY = "grab_pay"
	METHOD_PAYMAYA  = "paymaya"
	METHOD_CARD     = "card"
	METHOD_BILLEASE = "billease"
	METHOD_CASH     = "cash"
)

var SourceMethods = []string{METHOD_GCASH, METHOD_GRAB_PAY, METHOD_PAYMAYA}

var PaymentMethods = []string{METHOD_GCASH, METHOD_GRAB_PAY, METHOD_PAYMAYA, METHOD_CARD, METHOD_BILLEASE, METHOD_CASH}

// domain event types
const (
	EVENT_ORDER_PLACED         = "order.placed"
	EVENT_ORDER_STATUS_CHANGED = "order.status_changed"
	EVENT_PAYMENT_PAID         = "payment.paid"
	EVENT_PAYMENT_FAILED       = "payment.failed"
)

// response messages
const (
	ERROR_INTERNAL_ERROR      = "Something went wrong, please try again later"
	ERROR_GATEWAY             = "Payment provider is unavailable, please try again"
	DATA_INPUT_IS_NOT_NUMBER  = "Parameter must be a number"
	INVALID_INPUT             = "The given data was invalid"
	MISSING_LOGIN_INPUT       = "Email and password are required"
	INVALID_CREDENTIALS       = "Invalid email or password"
	EMAIL_ALREADY_REGISTERED  = "Email is already registered"
	UNAUTHENTICATED           = "Unauthenticated"
	NOT_ADMIN                 = "Only administrators can perform this action"
	ORDER_PLACED              = "Order placed successfully"
	ORDER_STATUS_UPDATED      = "Order status updated"
	BASKET_EMPTY              = "Basket is empty"
	BASKET_ITEM_ADDED         = "Item added to basket"
	BASKET_ITEM_UPDATED       = "Basket item updated"
	BASKET_ITEM_REMOVED       = "Basket item removed"
	BASKET_CLEARED            = "Basket cleared"
	PAYMENT_INTENT_CREATED    = "Payment intent created"
	PAYMENT_SOURCE_CREATED    = "Payment source created"
	WEBHOOK_PROCESSED         = "Webhook processed"
	WEBHOOK_NO_MATCH          = "Webhook received, no matching transaction"
	WEBHOOK_INVALID_SIGNATURE = "Invalid webhook signature"
	WEBHOOK_INVALID_PAYLOAD   = "Invalid webhook payload"
)
