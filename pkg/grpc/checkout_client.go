package grpc

import (
	"log"

	"github.com/vogiaan1904/ticketbottle-checkout/pkg/checkoutrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type cleanupFunc func()

// NewCheckoutClient dials the checkout service for other ticketbottle services.
func NewCheckoutClient(addr string) (checkoutrpc.CheckoutServiceClient, cleanupFunc, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Println("gRpc Checkout client connection failed.", err)
		return nil, nil, err
	}

	log.Println("gRpc Checkout client connection established.")
	return checkoutrpc.NewCheckoutServiceClient(conn), func() { conn.Close() }, nil
}
