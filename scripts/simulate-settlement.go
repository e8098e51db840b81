package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/razorpay"
)

type ticketType struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Sold     int    `json:"sold"`
}

type event struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	TicketTypes []ticketType `json:"ticket_types"`
}

var (
	baseURL       = flag.String("url", "http://localhost:8080", "Checkout HTTP base URL")
	webhookSecret = flag.String("secret", "", "Razorpay webhook secret (required)")
	eventID       = flag.String("event", "", "Event ID (required)")
	ticketTypeID  = flag.String("ticket-type", "", "Ticket type ID (defaults to the first type of the event)")
	numBuyers     = flag.Int("buyers", 200, "Number of buyers racing for tickets")
	qtyPerBuyer   = flag.Int("qty", 1, "Tickets per buyer")
	concurrency   = flag.Int("concurrency", 50, "Number of webhooks in flight")
	redeliver     = flag.Float64("redeliver", 0.2, "Share of webhooks delivered twice (0.0-1.0)")
)

func main() {
	flag.Parse()

	if *eventID == "" || *webhookSecret == "" {
		fmt.Println("Error: --event and --secret flags are required")
		flag.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hc := &http.Client{Timeout: 10 * time.Second}

	before, err := fetchEvent(ctx, hc, *eventID)
	if err != nil {
		fmt.Printf("Failed to load event: %v\n", err)
		os.Exit(1)
	}
	tt, ok := pickTicketType(before, *ticketTypeID)
	if !ok {
		fmt.Println("Error: ticket type not found on event")
		os.Exit(1)
	}
	fmt.Printf("✅ Loaded event %q, type %q: %d/%d sold\n", before.Title, tt.Name, tt.Sold, tt.Quantity)

	fmt.Printf("\n🚀 Delivering %d captured payments (%d in flight, %.0f%% redelivered)...\n",
		*numBuyers, *concurrency, *redeliver*100)
	startTime := time.Now()

	var (
		counts sync.Map
		sent   atomic.Int64
	)
	jobs := make(chan []byte)
	var wg sync.WaitGroup
	for range *concurrency {
		wg.Go(func() {
			for body := range jobs {
				code := deliver(ctx, hc, body)
				v, _ := counts.LoadOrStore(code, new(atomic.Int64))
				v.(*atomic.Int64).Add(1)
				if n := sent.Add(1); n%50 == 0 {
					fmt.Printf("   Progress: %d deliveries\n", n)
				}
			}
		})
	}

	redeliverEvery := 0
	if *redeliver > 0 {
		redeliverEvery = int(1 / *redeliver)
	}
	for i := range *numBuyers {
		body, err := capturedPayment(i, tt)
		if err != nil {
			fmt.Printf("❌ Failed to build payload %d: %v\n", i, err)
			continue
		}
		select {
		case <-ctx.Done():
		case jobs <- body:
		}
		if redeliverEvery > 0 && i%redeliverEvery == 0 {
			select {
			case <-ctx.Done():
			case jobs <- body:
			}
		}
		if ctx.Err() != nil {
			fmt.Println("\n🛑 Simulation stopped")
			break
		}
	}
	close(jobs)
	wg.Wait()

	elapsed := time.Since(startTime)
	fmt.Printf("⏱️  Completed in %v (%.0f deliveries/sec)\n", elapsed, float64(sent.Load())/elapsed.Seconds())

	fmt.Println("\n📊 Responses:")
	counts.Range(func(k, v any) bool {
		fmt.Printf("   HTTP %d: %d\n", k.(int), v.(*atomic.Int64).Load())
		return true
	})

	after, err := fetchEvent(context.Background(), hc, *eventID)
	if err != nil {
		fmt.Printf("Failed to reload event: %v\n", err)
		os.Exit(1)
	}
	final, _ := pickTicketType(after, tt.ID)
	fmt.Printf("\n🎯 Sold: %d -> %d of %d\n", tt.Sold, final.Sold, final.Quantity)
	if final.Sold > final.Quantity {
		fmt.Println("❌ Oversold!")
		os.Exit(1)
	}
}

func capturedPayment(i int, tt ticketType) ([]byte, error) {
	cart, err := json.Marshal([]map[string]any{{"id": tt.ID, "qty": *qtyPerBuyer}})
	if err != nil {
		return nil, err
	}
	amount := tt.Price * int64(*qtyPerBuyer)

	ev := map[string]any{
		"entity":     "event",
		"event":      razorpay.EventPaymentCaptured,
		"contains":   []string{"payment"},
		"created_at": time.Now().Unix(),
		"payload": map[string]any{
			"payment": map[string]any{
				"entity": razorpay.Payment{
					ID:       fmt.Sprintf("pay_sim%08d", i),
					Entity:   "payment",
					Amount:   amount,
					Currency: "INR",
					Status:   razorpay.PaymentStatusCaptured,
					OrderID:  fmt.Sprintf("order_sim%08d", i),
					Method:   "upi",
					Email:    fmt.Sprintf("buyer%d@example.com", i+1),
					Notes: razorpay.Notes{
						"eventId":      *eventID,
						"buyerId":      uuid.NewString(),
						"cart":         string(cart),
						"total":        fmt.Sprint(amount),
						"attendeeName": fmt.Sprintf("Sim Buyer %d", i+1),
					},
					CreatedAt: time.Now().Unix(),
				},
			},
		},
	}
	return json.Marshal(ev)
}

func deliver(ctx context.Context, hc *http.Client, body []byte) int {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *baseURL+"/api/v1/webhooks/razorpay", bytes.NewReader(body))
	if err != nil {
		return 0
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(razorpay.SignatureHeader, razorpay.Hmac256(body, []byte(*webhookSecret)))

	res, err := hc.Do(req)
	if err != nil {
		return 0
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)
	return res.StatusCode
}

func fetchEvent(ctx context.Context, hc *http.Client, id string) (*event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, *baseURL+"/api/v1/events/"+id, nil)
	if err != nil {
		return nil, err
	}
	res, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	var out struct {
		Data event `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func pickTicketType(ev *event, id string) (ticketType, bool) {
	for _, tt := range ev.TicketTypes {
		if id == "" || tt.ID == id {
			return tt, true
		}
	}
	return ticketType{}, false
}
