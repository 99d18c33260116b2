package handler

import (
	"context"
	"laundry_service/service"

	"github.com/gofiber/contrib/websocket"
)

// PaymentStatusSocket streams status changes of one transaction. The current
// status is sent on connect, then every broadcast until the client leaves.
func (h *Handler) PaymentStatusSocket(c *websocket.Conn) {
	defer c.Close()

	userId, _ := c.Locals("userId").(uint)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	txn, updates, stop, err := h.payments.Subscribe(ctx, userId, c.Params("transactionId"))
	if err != nil {
		_ = c.WriteJSON(map[string]string{"status": "error", "message": "transaction not found"})
		return
	}
	defer stop()

	if err := c.WriteMessage(websocket.TextMessage, service.StatusMessage(txn)); err != nil {
		return
	}

	// reader goroutine notices the client closing
	go func() {
		defer cancel()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-updates:
			if !ok {
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}
