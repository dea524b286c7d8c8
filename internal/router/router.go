package router

import (
	"net/http"

	"github.com/senyabanana/repair-quotes/internal/auth"
	"github.com/senyabanana/repair-quotes/internal/handlers"
)

func InitRoutes(authn *auth.Authenticator, requestHandler *handlers.RequestHandler, bidHandler *handlers.BidHandler, scheduleHandler *handlers.ScheduleHandler) http.Handler {
	mux := http.NewServeMux()
	protected := func(h http.HandlerFunc) http.Handler {
		return authn.Middleware(h)
	}

	mux.HandleFunc("GET /api/ping", handlers.PingHandler)

	mux.Handle("POST /api/requests/new", protected(requestHandler.CreateRequest))
	mux.Handle("GET /api/requests/open", protected(requestHandler.ListOpenRequests))
	mux.Handle("PUT /api/requests/{requestId}/submit", protected(requestHandler.SubmitRequest))
	mux.Handle("PUT /api/requests/{requestId}/cancel", protected(requestHandler.CancelRequest))
	mux.Handle("PUT /api/requests/{requestId}/complete", protected(requestHandler.CompleteRequest))
	mux.Handle("GET /api/requests/{requestId}/competition", protected(requestHandler.GetCompetition))
	mux.Handle("GET /api/quotes/tracked", protected(requestHandler.ListTrackedQuotes))

	mux.Handle("POST /api/requests/{requestId}/bids", protected(bidHandler.CreateBid))
	mux.Handle("PUT /api/requests/{requestId}/bids/{bidId}/accept", protected(bidHandler.AcceptBid))
	mux.Handle("PUT /api/requests/{requestId}/bids/{bidId}/viewed", protected(bidHandler.MarkBidViewed))
	mux.Handle("PUT /api/requests/{requestId}/bids/{bidId}/revise", protected(bidHandler.ReviseBid))

	mux.HandleFunc("POST /api/schedule/estimate", scheduleHandler.EstimateDuration)
	mux.HandleFunc("POST /api/schedule/compare", scheduleHandler.CompareAvailability)
	mux.HandleFunc("GET /api/workshops/{workshopId}/slots/check", scheduleHandler.CheckSlot)
	mux.Handle("GET /api/workshops/{workshopId}/appointments", protected(scheduleHandler.ListAppointments))
	mux.Handle("POST /api/appointments/new", protected(scheduleHandler.CreateAppointment))
	mux.Handle("PUT /api/appointments/{appointmentId}/cancel", protected(scheduleHandler.CancelAppointment))

	return mux
}
