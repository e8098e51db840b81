package grpc

import (
	"context"

	"github.com/vogiaan1904/ticketbottle-checkout/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/service"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/checkoutrpc"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/logger"
	resp "github.com/vogiaan1904/ticketbottle-checkout/pkg/response"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/util"
)

type grpcService struct {
	evSvc  service.EventService
	coSvc  service.CheckoutService
	ordSvc service.OrderService
	l      logger.Logger
	checkoutrpc.UnimplementedCheckoutServiceServer
}

func NewGrpcService(
	evSvc service.EventService,
	coSvc service.CheckoutService,
	ordSvc service.OrderService,
	l logger.Logger,
) checkoutrpc.CheckoutServiceServer {
	return &grpcService{
		evSvc:  evSvc,
		coSvc:  coSvc,
		ordSvc: ordSvc,
		l:      l,
	}
}

func (s *grpcService) ValidateCart(ctx context.Context, req *checkoutrpc.ValidateCartRequest) (*checkoutrpc.ValidateCartResponse, error) {
	pc, err := s.coSvc.ValidateCart(ctx, req.EventId, toCartLines(req.Lines), req.SubmittedTotal)
	if err != nil {
		s.l.Warnf(ctx, "delivery.grpc.ValidateCart: %v", err)
		return nil, resp.ParseGRPCError(mapGRPCError(err))
	}

	return &checkoutrpc.ValidateCartResponse{
		EventId:         pc.EventID,
		Lines:           toPricedLines(pc.Lines),
		CalculatedTotal: pc.CalculatedTotal,
	}, nil
}

func (s *grpcService) CreatePaymentIntent(ctx context.Context, req *checkoutrpc.CreatePaymentIntentRequest) (*checkoutrpc.CreatePaymentIntentResponse, error) {
	in := service.CreatePaymentIntentInput{
		EventID:        req.EventId,
		BuyerID:        req.BuyerId,
		SessionID:      req.SessionId,
		Lines:          toCartLines(req.Lines),
		SubmittedTotal: req.SubmittedTotal,
	}
	if req.Attendee != nil {
		in.Attendee = models.Attendee{Name: req.Attendee.Name, Email: req.Attendee.Email, Phone: req.Attendee.Phone}
	}

	out, err := s.coSvc.CreatePaymentIntent(ctx, in)
	if err != nil {
		s.l.Errorf(ctx, "delivery.grpc.CreatePaymentIntent: %v", err)
		return nil, resp.ParseGRPCError(mapGRPCError(err))
	}

	return &checkoutrpc.CreatePaymentIntentResponse{
		GatewayOrderId: out.GatewayOrderID,
		Amount:         out.Amount,
		Currency:       out.Currency,
		KeyId:          out.KeyID,
		Lines:          toPricedLines(out.Cart.Lines),
	}, nil
}

func (s *grpcService) GetEvent(ctx context.Context, req *checkoutrpc.GetEventRequest) (*checkoutrpc.GetEventResponse, error) {
	ev, err := s.evSvc.GetEvent(ctx, req.EventId)
	if err != nil {
		s.l.Warnf(ctx, "delivery.grpc.GetEvent: %v", err)
		return nil, resp.ParseGRPCError(mapGRPCError(err))
	}

	types := make([]*checkoutrpc.TicketType, len(ev.TicketTypes))
	for i, tt := range ev.TicketTypes {
		types[i] = &checkoutrpc.TicketType{
			Id:        tt.ID,
			Name:      tt.Name,
			Price:     tt.Price,
			Quantity:  int32(tt.Quantity),
			Sold:      int32(tt.Sold),
			Available: int32(tt.Available),
		}
	}

	return &checkoutrpc.GetEventResponse{
		Id:            ev.ID,
		OrganizerId:   ev.OrganizerID,
		Title:         ev.Title,
		Location:      ev.Location,
		StartDateTime: util.TimeToISO8601Str(ev.StartDateTime),
		EndDateTime:   util.TimeToISO8601Str(ev.EndDateTime),
		IsFree:        ev.IsFree,
		TicketTypes:   types,
	}, nil
}

func (s *grpcService) GetOrder(ctx context.Context, req *checkoutrpc.GetOrderRequest) (*checkoutrpc.GetOrderResponse, error) {
	o, err := s.ordSvc.GetOrder(ctx, req.OrderId)
	if err != nil {
		s.l.Warnf(ctx, "delivery.grpc.GetOrder: %v", err)
		return nil, resp.ParseGRPCError(mapGRPCError(err))
	}

	return &checkoutrpc.GetOrderResponse{
		Id:          o.ID,
		PaymentId:   o.PaymentID,
		EventId:     o.EventID,
		BuyerId:     o.BuyerID,
		Lines:       toPricedLines(o.Lines),
		TotalAmount: o.TotalAmount,
		Currency:    o.Currency,
		Status:      string(o.Status),
		Attendee: &checkoutrpc.Attendee{
			Name:  o.Attendee.Name,
			Email: o.Attendee.Email,
			Phone: o.Attendee.Phone,
		},
		CreatedAt: util.TimeToISO8601Str(o.CreatedAt),
	}, nil
}

func toCartLines(lines []*checkoutrpc.CartLine) []models.CartLine {
	out := make([]models.CartLine, 0, len(lines))
	for _, l := range lines {
		if l == nil {
			continue
		}
		out = append(out, models.CartLine{TicketTypeID: l.TicketTypeId, Quantity: int(l.Quantity)})
	}
	return out
}

func toPricedLines(lines []models.OrderLine) []*checkoutrpc.PricedLine {
	out := make([]*checkoutrpc.PricedLine, len(lines))
	for i, l := range lines {
		out[i] = &checkoutrpc.PricedLine{
			TicketTypeId: l.TicketTypeID,
			Name:         l.Name,
			Quantity:     int32(l.Quantity),
			Price:        l.Price,
			Subtotal:     l.Subtotal(),
		}
	}
	return out
}
