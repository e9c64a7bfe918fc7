package notify

import (
	"context"
	"log"

	"storefront/internal/domain"
	"storefront/internal/pricing"
	"storefront/internal/settings"
)

type EventKind int

const (
	EventOrderPlaced EventKind = iota
	EventStatusChanged
)

// Event describes why a notification is being sent. NewStatus is only
// meaningful for EventStatusChanged.
type Event struct {
	Kind      EventKind
	NewStatus domain.OrderStatus
}

// Dispatcher renders per-event templates and fans rendered messages out
// over the enabled channels. Delivery is best-effort: every failure is
// logged and swallowed so the order path never blocks on a provider.
type Dispatcher struct {
	source settings.Source

	// overridable in tests
	smsTransport      func(settings.NotificationSettings) (Transport, error)
	whatsappTransport func(settings.NotificationSettings) (Transport, error)
}

func NewDispatcher(source settings.Source) *Dispatcher {
	return &Dispatcher{
		source:            source,
		smsTransport:      NewSMSTransport,
		whatsappTransport: NewWhatsAppTransport,
	}
}

// Notify sends the messages the settings call for. It never returns an
// error; a dead provider must not fail the order mutation behind it.
func (d *Dispatcher) Notify(ctx context.Context, event Event, order *domain.Order) {
	snap, err := d.source.Load(ctx)
	if err != nil {
		log.Printf("notify: settings load failed, skipping dispatch for %s: %v", order.ID, err)
		return
	}
	n := snap.Notifications

	transports := d.openTransports(n)
	if len(transports) == 0 {
		return
	}

	vars := map[string]string{
		"customerName": order.Customer.Name,
		"orderId":      order.ID,
		"amount":       pricing.FormatINR(order.TotalAmount),
		"storeName":    n.StoreName,
		"trackingUrl":  n.TrackingURL,
	}

	if d.customerEnabled(event, n) {
		msg := Render(d.customerTemplate(event, n.Templates), vars)
		d.send(ctx, transports, order.Customer.Phone, msg)
	}

	if event.Kind == EventOrderPlaced && n.NotifyAdminOnOrder {
		adminVars := make(map[string]string, len(vars)+1)
		for k, v := range vars {
			adminVars[k] = v
		}
		adminVars["customerPhone"] = order.Customer.Phone
		msg := Render(n.Templates.AdminAlert, adminVars)
		d.send(ctx, transports, n.AdminPhone, msg)
	}
}

func (d *Dispatcher) customerEnabled(event Event, n settings.NotificationSettings) bool {
	switch event.Kind {
	case EventOrderPlaced:
		return n.NotifyOnNewOrder
	case EventStatusChanged:
		return n.NotifyOnStatusChange
	}
	return false
}

// customerTemplate picks the body for the event. Statuses without a
// dedicated template (e.g. processing) fall back to the placed
// template.
func (d *Dispatcher) customerTemplate(event Event, t settings.Templates) string {
	if event.Kind == EventStatusChanged {
		switch event.NewStatus {
		case domain.StatusShipped:
			return t.Shipped
		case domain.StatusDelivered:
			return t.Delivered
		case domain.StatusCancelled:
			return t.Cancelled
		}
	}
	return t.Placed
}

func (d *Dispatcher) openTransports(n settings.NotificationSettings) []Transport {
	var out []Transport
	if n.SMSEnabled {
		tr, err := d.smsTransport(n)
		if err != nil {
			log.Printf("notify: sms transport unavailable: %v", err)
		} else {
			out = append(out, tr)
		}
	}
	if n.WhatsAppEnabled {
		tr, err := d.whatsappTransport(n)
		if err != nil {
			log.Printf("notify: whatsapp transport unavailable: %v", err)
		} else {
			out = append(out, tr)
		}
	}
	return out
}

func (d *Dispatcher) send(ctx context.Context, transports []Transport, phone, message string) {
	for _, tr := range transports {
		if err := tr.Send(ctx, phone, message); err != nil {
			log.Printf("notify: %s send to %s failed: %v", tr.Name(), phone, err)
		}
	}
}
