package dashboard

import (
	"wealthdesk-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AdminStats struct {
	Role                      string  `json:"role"`
	TotalClients              int     `json:"totalClients"`
	ActiveClients             int     `json:"activeClients"`
	TotalInvestment           float64 `json:"totalInvestment"`
	TotalPayout               float64 `json:"totalPayout"`
	TotalWithdrawal           float64 `json:"totalWithdrawal"`
	TotalClosure              float64 `json:"totalClosure"`
	PendingInvestmentRequests int     `json:"pendingInvestmentRequests"`
	PendingWithdrawalRequests int     `json:"pendingWithdrawalRequests"`
}

// LeaderStats reports a leader's team separately from the leader's own
// account. Commission is earned on team payouts only.
type LeaderStats struct {
	Role            string  `json:"role"`
	TeamSize        int     `json:"teamSize"`
	TeamInvestments float64 `json:"teamInvestments"`
	TeamPayouts     float64 `json:"teamPayouts"`
	CommissionRate  float64 `json:"commissionRate"`
	Commission      float64 `json:"commission"`
	OwnInvestment   float64 `json:"ownInvestment"`
	OwnPayout       float64 `json:"ownPayout"`
}

type ClientStats struct {
	Role            string  `json:"role"`
	TotalInvestment float64 `json:"totalInvestment"`
	TotalPayout     float64 `json:"totalPayout"`
	TotalWithdrawal float64 `json:"totalWithdrawal"`
	TotalClosure    float64 `json:"totalClosure"`
	NetInvestment   float64 `json:"netInvestment"`
}

func AdminSummary(clients []domain.Client, txs []domain.Transaction, inv []domain.InvestmentRequest, wd []domain.WithdrawalRequest) AdminStats {
	s := AdminStats{
		Role:            "Admin",
		TotalClients:    len(clients),
		TotalInvestment: money(SumByIndicator(txs, domain.IndicatorInvestment)),
		TotalPayout:     money(SumByIndicator(txs, domain.IndicatorPayout)),
		TotalWithdrawal: money(SumByIndicator(txs, domain.IndicatorWithdrawal)),
		TotalClosure:    money(SumByIndicator(txs, domain.IndicatorClosure)),
	}
	for _, c := range clients {
		if c.IsActive {
			s.ActiveClients++
		}
	}
	for _, r := range inv {
		if r.Status == domain.StatusPending {
			s.PendingInvestmentRequests++
		}
	}
	for _, r := range wd {
		if r.Status == domain.StatusPending {
			s.PendingWithdrawalRequests++
		}
	}
	return s
}

// LeaderSummary splits txs into the leader's own rows and the team's rows.
// Rows of clients that are neither are ignored.
func LeaderSummary(self uuid.UUID, team []uuid.UUID, txs []domain.Transaction, rate decimal.Decimal) LeaderStats {
	members := make(map[uuid.UUID]struct{}, len(team))
	for _, id := range team {
		if id != self {
			members[id] = struct{}{}
		}
	}
	var own, teamTxs []domain.Transaction
	for _, t := range txs {
		if t.ClientID == self {
			own = append(own, t)
		} else if _, ok := members[t.ClientID]; ok {
			teamTxs = append(teamTxs, t)
		}
	}
	teamPayouts := SumByIndicator(teamTxs, domain.IndicatorPayout)
	return LeaderStats{
		Role:            "Leader",
		TeamSize:        len(members),
		TeamInvestments: money(SumByIndicator(teamTxs, domain.IndicatorInvestment)),
		TeamPayouts:     money(teamPayouts),
		CommissionRate:  rate.InexactFloat64(),
		Commission:      money(teamPayouts.Mul(rate)),
		OwnInvestment:   money(SumByIndicator(own, domain.IndicatorInvestment)),
		OwnPayout:       money(SumByIndicator(own, domain.IndicatorPayout)),
	}
}

func ClientSummary(txs []domain.Transaction) ClientStats {
	inv := SumByIndicator(txs, domain.IndicatorInvestment)
	wd := SumByIndicator(txs, domain.IndicatorWithdrawal)
	cl := SumByIndicator(txs, domain.IndicatorClosure)
	return ClientStats{
		Role:            "Client",
		TotalInvestment: money(inv),
		TotalPayout:     money(SumByIndicator(txs, domain.IndicatorPayout)),
		TotalWithdrawal: money(wd),
		TotalClosure:    money(cl),
		NetInvestment:   money(inv.Sub(wd).Sub(cl)),
	}
}
