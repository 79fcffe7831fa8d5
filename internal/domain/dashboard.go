package domain

// DashboardMetrics summarizes the shipments visible to one caller.
type DashboardMetrics struct {
	TotalShipments int64                    `json:"total_shipments"`
	ByStatus       map[ShipmentStatus]int64 `json:"by_status"`
	Revenue        float64                  `json:"revenue"`
	InTransit      int64                    `json:"in_transit"`
	OnHold         int64                    `json:"on_hold"`
	// Active counts shipments that have not cleared origin handling yet:
	// PENDING plus IN_TRANSIT.
	Active        int64          `json:"active"`
	Delayed       int64          `json:"delayed"`
	UniqueClients int64          `json:"unique_clients"`
	RevenueByDay  []DailyRevenue `json:"revenue_by_day"`
}

// DailyRevenue is the service fee booked on one UTC day.
type DailyRevenue struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

// NewDashboardMetrics returns metrics with every status present at zero.
func NewDashboardMetrics() *DashboardMetrics {
	byStatus := make(map[ShipmentStatus]int64, len(ShipmentStatuses))
	for _, s := range ShipmentStatuses {
		byStatus[s] = 0
	}
	return &DashboardMetrics{ByStatus: byStatus, RevenueByDay: []DailyRevenue{}}
}

// Add folds one status bucket into the totals.
func (m *DashboardMetrics) Add(status ShipmentStatus, count int64, revenue float64) {
	m.ByStatus[status] += count
	m.TotalShipments += count
	m.Revenue += revenue
	switch status {
	case ShipmentStatusPending:
		m.Active += count
	case ShipmentStatusInTransit:
		m.InTransit += count
		m.Active += count
	case ShipmentStatusCustomsHold:
		m.OnHold += count
	}
}

// AddDailyRevenue adds revenue to the bucket for date, keeping days in
// ascending order.
func (m *DashboardMetrics) AddDailyRevenue(date string, revenue float64) {
	for i := range m.RevenueByDay {
		if m.RevenueByDay[i].Date == date {
			m.RevenueByDay[i].Revenue += revenue
			return
		}
	}
	pos := len(m.RevenueByDay)
	for pos > 0 && m.RevenueByDay[pos-1].Date > date {
		pos--
	}
	m.RevenueByDay = append(m.RevenueByDay, DailyRevenue{})
	copy(m.RevenueByDay[pos+1:], m.RevenueByDay[pos:])
	m.RevenueByDay[pos] = DailyRevenue{Date: date, Revenue: revenue}
}
