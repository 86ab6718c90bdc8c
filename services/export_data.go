package services

// ClientDetails is the commercial context rendered on the Version Control
// sheet and used for export file naming. It does not influence pricing
// math; the global margin and currency selection live on PricingContext.
type ClientDetails struct {
	ClientName         string
	ProjectName        string
	PreparedBy         string
	Date               string
	DesignEngineer     string
	AccountManager     string
	KeyClientPersonnel string
	Location           string
	KeyComments        string
	Budget             float64
}

// RoomInput is one room's name and validated items, as read from storage.
type RoomInput struct {
	Name  string
	Items []LineItem
}

// RoomExport is a room with its derived pricing, ready for layout. Pricing
// is parallel to Items.
type RoomExport struct {
	Name      string
	SheetName string
	Items     []LineItem
	Pricing   []ItemPricing
	Totals    RoomTotals
}

// ProposalData is the fully reconciled snapshot the layout engines render.
type ProposalData struct {
	Details    ClientDetails
	Context    PricingContext
	Rooms      []RoomExport
	GrandTotal float64
}

// BuildProposalData derives every figure for every room from base values
// plus the supplied context. Rooms with no items are kept (they appear on
// the summary with a zero total) but get no sheet name of their own.
func BuildProposalData(details ClientDetails, ctx PricingContext, rooms []RoomInput) ProposalData {
	ctx.ExchangeRate = NormalizeRate(ctx.ExchangeRate)

	namer := NewSheetNamer()
	exports := make([]RoomExport, 0, len(rooms))
	roomTotals := make([]RoomTotals, 0, len(rooms))

	for _, room := range rooms {
		re := RoomExport{
			Name:   room.Name,
			Items:  room.Items,
			Totals: CalcRoomTotals(room.Items, ctx),
		}
		if len(room.Items) > 0 {
			re.SheetName = namer.Name("BOQ - " + room.Name)
			re.Pricing = make([]ItemPricing, len(room.Items))
			for i, item := range room.Items {
				re.Pricing[i] = EffectivePrice(item, ctx)
			}
		}
		exports = append(exports, re)
		roomTotals = append(roomTotals, re.Totals)
	}

	return ProposalData{
		Details:    details,
		Context:    ctx,
		Rooms:      exports,
		GrandTotal: CalcProjectTotal(roomTotals),
	}
}
