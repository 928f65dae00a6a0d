package tool

import (
	"github.com/cloudwego/eino/schema"
)

const (
	ToolCheckAvailability  = "check_room_availability"
	ToolBookRoom           = "book_room"
	ToolRaiseGuestRequest  = "raise_guest_request"
	ToolViewGuestRequests  = "view_guest_requests"
	ToolCloseGuestRequest  = "close_guest_request"
	ToolRoomDetails        = "get_room_details"
	ToolAllGuests          = "get_all_guests"
	ToolRevenueByDate      = "get_revenue_by_date"
	ToolOccupancyRate      = "get_occupancy_rate"
	ToolTopBookingSource   = "get_top_booking_source"
	ToolListRoomTypes      = "list_room_types"
	ToolListBookingSources = "list_booking_sources"
)

// Names lists the catalog in the order it is offered to the model.
var Names = []string{
	ToolCheckAvailability,
	ToolBookRoom,
	ToolRaiseGuestRequest,
	ToolViewGuestRequests,
	ToolCloseGuestRequest,
	ToolRoomDetails,
	ToolAllGuests,
	ToolRevenueByDate,
	ToolOccupancyRate,
	ToolTopBookingSource,
	ToolListRoomTypes,
	ToolListBookingSources,
}

var (
	dateParam = func(desc string) *schema.ParameterInfo {
		return &schema.ParameterInfo{Type: schema.String, Desc: desc + " Any recognizable format, e.g. 2025-08-18 or 18th August."}
	}
	roomParam = &schema.ParameterInfo{Type: schema.String, Desc: "Room number, e.g. 101."}
	noParams  = schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{})
)

// Required parameters are not marked Required in the schema: the model may
// call a tool with gaps and the dispatcher answers with a question for the
// missing field.
var infos = map[string]*schema.ToolInfo{
	ToolCheckAvailability: {
		Name: ToolCheckAvailability,
		Desc: "Check which rooms are free for a date range. Use when the user asks about available rooms or date-based availability.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"check_in_date":  dateParam("Check-in date."),
			"check_out_date": dateParam("Check-out date."),
		}),
	},
	ToolBookRoom: {
		Name: ToolBookRoom,
		Desc: "Book a room for a guest. The total is computed from the room type rate and the number of nights. Omit guest_name to reuse the guest from this conversation.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"guest_name":     {Type: schema.String, Desc: "Name of the guest."},
			"room_number":    roomParam,
			"check_in_date":  dateParam("Check-in date."),
			"check_out_date": dateParam("Check-out date."),
			"booking_source": {Type: schema.String, Desc: "Channel the booking came from, e.g. Website or Phone. Optional."},
		}),
	},
	ToolRaiseGuestRequest: {
		Name: ToolRaiseGuestRequest,
		Desc: "Raise a guest request ticket for a room, e.g. extra towels. Returns the ticket number.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"room_number":         roomParam,
			"request_description": {Type: schema.String, Desc: "What the guest needs. Defaults to \"Guest request\"."},
		}),
	},
	ToolViewGuestRequests: {
		Name: ToolViewGuestRequests,
		Desc: "List all open guest request tickets, newest first.",
		ParamsOneOf: noParams,
	},
	ToolCloseGuestRequest: {
		Name: ToolCloseGuestRequest,
		Desc: "Close a guest request ticket by its number.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"ticket_id": {Type: schema.Integer, Desc: "Ticket number to close."},
		}),
	},
	ToolRoomDetails: {
		Name: ToolRoomDetails,
		Desc: "Get the type and status of a specific room.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"room_number": roomParam,
		}),
	},
	ToolAllGuests: {
		Name: ToolAllGuests,
		Desc: "List every guest name found in booking records.",
		ParamsOneOf: noParams,
	},
	ToolRevenueByDate: {
		Name: ToolRevenueByDate,
		Desc: "Total revenue of bookings made on a given date.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"date": dateParam("The date."),
		}),
	},
	ToolOccupancyRate: {
		Name: ToolOccupancyRate,
		Desc: "Percentage of rooms occupied on a given date.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"date": dateParam("The date."),
		}),
	},
	ToolTopBookingSource: {
		Name: ToolTopBookingSource,
		Desc: "The booking source with the highest total revenue.",
		ParamsOneOf: noParams,
	},
	ToolListRoomTypes: {
		Name: ToolListRoomTypes,
		Desc: "List all room types and their rates per night.",
		ParamsOneOf: noParams,
	},
	ToolListBookingSources: {
		Name: ToolListBookingSources,
		Desc: "List the booking sources recorded on bookings. Use when the user asks how or where rooms can be booked.",
		ParamsOneOf: noParams,
	},
}

// Infos returns the tool definitions bound to the chat model.
func Infos() []*schema.ToolInfo {
	out := make([]*schema.ToolInfo, 0, len(Names))
	for _, name := range Names {
		out = append(out, infos[name])
	}
	return out
}

// Capabilities is the welcome text fragment for each tool, in catalog order.
var Capabilities = []string{
	"check room availability for specific dates",
	"book rooms for guests",
	"raise guest requests like extra towels",
	"view open guest requests",
	"close guest request tickets",
	"get details about a specific room",
	"list all current guests",
	"check revenue for a specific date",
	"calculate occupancy rate for a date",
	"find the top booking source by revenue",
	"list all room types and their rates",
}
