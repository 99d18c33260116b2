package notify

import (
	"bytes"
	"context"
	"image/png"
	"io"

	"github.com/skip2/go-qrcode"
	"gopkg.in/gomail.v2"
)

const qrContentID = "order_qr_code"

// GenerateQRCode returns a PNG of content.
func GenerateQRCode(content string, size int) ([]byte, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, qr.Image(size)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type EmailChannel struct {
	cfg  SMTPConfig
	send func(m ...*gomail.Message) error
}

func NewEmailChannel(cfg SMTPConfig) *EmailChannel {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &EmailChannel{cfg: cfg, send: dialer.DialAndSend}
}

func (e *EmailChannel) Name() string { return "email" }

func (e *EmailChannel) Accepts(r Recipient) bool {
	return e.cfg.Host != "" && r.AllowEmail && r.Email != ""
}

// Build assembles the MIME message; a QR of QRContent is embedded inline when set.
func (e *EmailChannel) Build(r Recipient, m Message) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", e.cfg.From)
	msg.SetAddressHeader("To", r.Email, r.Name)
	msg.SetHeader("Subject", m.Subject)
	if m.HTML != "" {
		msg.SetBody("text/html", m.HTML)
		msg.AddAlternative("text/plain", m.Text)
	} else {
		msg.SetBody("text/plain", m.Text)
	}

	if m.QRContent != "" {
		qrBytes, err := GenerateQRCode(m.QRContent, 400)
		if err != nil {
			logger.Warn().Err(err).Msg("generate qr failed, sending without it")
			return msg
		}
		msg.Embed("order_qr.png",
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(qrBytes)
				return err
			}),
			gomail.SetHeader(map[string][]string{
				"Content-Type":        {"image/png"},
				"Content-ID":          {"<" + qrContentID + ">"},
				"Content-Disposition": {"inline"},
			}),
		)
	}
	return msg
}

func (e *EmailChannel) Send(ctx context.Context, r Recipient, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.send(e.Build(r, m))
}
