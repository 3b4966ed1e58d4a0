package dashboard

import (
	"sort"
	"strings"
	"time"

	"wealthdesk-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// SumByIndicator totals ledger amounts of one indicator.
func SumByIndicator(txs []domain.Transaction, indicator int) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		if t.IndicatorID == indicator {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}

// TotalsByIndicator returns the ledger total per indicator keyed by its
// lower-case name. Every indicator is present, zero when it has no rows.
func TotalsByIndicator(txs []domain.Transaction) map[string]float64 {
	sums := make(map[int]decimal.Decimal, len(domain.Indicators))
	for _, t := range txs {
		sums[t.IndicatorID] = sums[t.IndicatorID].Add(t.Amount)
	}
	out := make(map[string]float64, len(domain.Indicators))
	for _, ind := range domain.Indicators {
		out[strings.ToLower(ind.Name)] = money(sums[ind.IndicatorID])
	}
	return out
}

// SumInvestmentRequests totals requested investment; rejected requests never count.
func SumInvestmentRequests(reqs []domain.InvestmentRequest, approvedOnly bool) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range reqs {
		if counts(r.Status, approvedOnly) {
			sum = sum.Add(r.InvestmentAmount)
		}
	}
	return sum
}

// SumWithdrawalRequests totals requested withdrawals; rejected requests never count.
func SumWithdrawalRequests(reqs []domain.WithdrawalRequest, approvedOnly bool) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range reqs {
		if counts(r.Status, approvedOnly) {
			sum = sum.Add(r.WithdrawalAmount)
		}
	}
	return sum
}

func counts(status string, approvedOnly bool) bool {
	if approvedOnly {
		return status == domain.StatusApproved
	}
	return status != domain.StatusRejected
}

// GrowthPercent compares two period sums. A zero previous period yields 0
// when the current one is also zero (or negative) and 100 when it is positive.
func GrowthPercent(prev, cur decimal.Decimal) float64 {
	if prev.IsZero() {
		if cur.IsPositive() {
			return 100
		}
		return 0
	}
	return money(cur.Sub(prev).Div(prev.Abs()).Mul(hundred))
}

// MonthBucket is one calendar month of ledger activity.
type MonthBucket struct {
	Month       string  `json:"month"`
	Investments float64 `json:"investments"`
	Payouts     float64 `json:"payouts"`
	Withdrawals float64 `json:"withdrawals"`
	Closures    float64 `json:"closures"`
	Clients     int     `json:"clients"`
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// MonthlyTrend buckets the ledger into the trailing months calendar months,
// oldest first, ending with the month of now. Transactions outside
// [start of first month, now] are ignored; each other one lands in exactly
// one bucket. Months are computed in now's location.
func MonthlyTrend(txs []domain.Transaction, now time.Time, months int) []MonthBucket {
	if months <= 0 {
		return []MonthBucket{}
	}
	first := monthStart(now).AddDate(0, -(months - 1), 0)

	type acc struct {
		inv, pay, wd, cl decimal.Decimal
		clients          map[uuid.UUID]struct{}
	}
	accs := make([]acc, months)
	for i := range accs {
		accs[i].clients = map[uuid.UUID]struct{}{}
	}

	for _, t := range txs {
		d := t.TransactionDate.In(now.Location())
		if d.Before(first) || d.After(now) {
			continue
		}
		i := (d.Year()-first.Year())*12 + int(d.Month()) - int(first.Month())
		a := &accs[i]
		switch t.IndicatorID {
		case domain.IndicatorInvestment:
			a.inv = a.inv.Add(t.Amount)
		case domain.IndicatorPayout:
			a.pay = a.pay.Add(t.Amount)
		case domain.IndicatorWithdrawal:
			a.wd = a.wd.Add(t.Amount)
		case domain.IndicatorClosure:
			a.cl = a.cl.Add(t.Amount)
		}
		a.clients[t.ClientID] = struct{}{}
	}

	out := make([]MonthBucket, months)
	for i, a := range accs {
		out[i] = MonthBucket{
			Month:       first.AddDate(0, i, 0).Format("2006-01"),
			Investments: money(a.inv),
			Payouts:     money(a.pay),
			Withdrawals: money(a.wd),
			Closures:    money(a.cl),
			Clients:     len(a.clients),
		}
	}
	return out
}

// BranchStat is one row of the branch performance report.
type BranchStat struct {
	BranchID         uuid.UUID `json:"branchId"`
	BranchName       string    `json:"branchName"`
	Clients          int       `json:"clients"`
	TotalInvestment  float64   `json:"totalInvestment"`
	RecentInvestment float64   `json:"recentInvestment"`
	Growth           float64   `json:"growth"`
}

// BranchPerformance sums non-rejected investment requests per branch and
// compares the last three months with the three before them.
func BranchPerformance(branches []domain.Branch, clients []domain.Client, reqs []domain.InvestmentRequest, now time.Time) []BranchStat {
	branchOf := make(map[uuid.UUID]uuid.UUID, len(clients))
	clientCount := map[uuid.UUID]int{}
	for _, c := range clients {
		if c.BranchID != nil {
			branchOf[c.ClientID] = *c.BranchID
			clientCount[*c.BranchID]++
		}
	}

	recentFrom := now.AddDate(0, -3, 0)
	prevFrom := now.AddDate(0, -6, 0)
	type acc struct{ total, recent, prev decimal.Decimal }
	accs := map[uuid.UUID]*acc{}
	for _, r := range reqs {
		if !counts(r.Status, false) {
			continue
		}
		b, ok := branchOf[r.ClientID]
		if !ok {
			continue
		}
		a := accs[b]
		if a == nil {
			a = &acc{}
			accs[b] = a
		}
		a.total = a.total.Add(r.InvestmentAmount)
		switch d := r.InvestmentDate; {
		case d.After(recentFrom) && !d.After(now):
			a.recent = a.recent.Add(r.InvestmentAmount)
		case d.After(prevFrom) && !d.After(recentFrom):
			a.prev = a.prev.Add(r.InvestmentAmount)
		}
	}

	out := make([]BranchStat, 0, len(branches))
	for _, b := range branches {
		st := BranchStat{BranchID: b.BranchID, BranchName: b.Name, Clients: clientCount[b.BranchID]}
		if a := accs[b.BranchID]; a != nil {
			st.TotalInvestment = money(a.total)
			st.RecentInvestment = money(a.recent)
			st.Growth = GrowthPercent(a.prev, a.recent)
		}
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalInvestment != out[j].TotalInvestment {
			return out[i].TotalInvestment > out[j].TotalInvestment
		}
		return out[i].BranchName < out[j].BranchName
	})
	return out
}

// KYC counts clients by how much identity data they have on file.
type KYC struct {
	Total           int     `json:"total"`
	Complete        int     `json:"complete"`
	Partial         int     `json:"partial"`
	Pending         int     `json:"pending"`
	CompletePercent float64 `json:"completePercent"`
	PartialPercent  float64 `json:"partialPercent"`
	PendingPercent  float64 `json:"pendingPercent"`
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// KYCStatus classifies clients as complete (PAN and Aadhaar), partial (one)
// or pending (neither).
func KYCStatus(clients []domain.Client) KYC {
	k := KYC{Total: len(clients)}
	for _, c := range clients {
		switch n := btoi(present(c.PANNo)) + btoi(present(c.AadhaarNo)); n {
		case 2:
			k.Complete++
		case 1:
			k.Partial++
		default:
			k.Pending++
		}
	}
	k.CompletePercent = percent(k.Complete, k.Total)
	k.PartialPercent = percent(k.Partial, k.Total)
	k.PendingPercent = percent(k.Pending, k.Total)
	return k
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return money(decimal.NewFromInt(int64(n)).Mul(hundred).Div(decimal.NewFromInt(int64(total))))
}

// Count is a labelled tally.
type Count struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// DemographicsReport groups clients by city and age band.
type DemographicsReport struct {
	Total     int     `json:"total"`
	ByCity    []Count `json:"byCity"`
	ByAgeBand []Count `json:"byAgeBand"`
}

var ageBands = []string{"under 25", "25-34", "35-44", "45-54", "55+", "unknown"}

func ageBand(dob *time.Time, now time.Time) string {
	if dob == nil || dob.IsZero() || dob.After(now) {
		return "unknown"
	}
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	switch {
	case age < 25:
		return "under 25"
	case age < 35:
		return "25-34"
	case age < 45:
		return "35-44"
	case age < 55:
		return "45-54"
	default:
		return "55+"
	}
}

// Demographics counts clients per city (most common first) and per age band
// (fixed band order).
func Demographics(clients []domain.Client, now time.Time) DemographicsReport {
	total := len(clients)
	cities := map[string]int{}
	bands := map[string]int{}
	for _, c := range clients {
		city := "Unknown"
		if present(c.City) {
			city = strings.TrimSpace(*c.City)
		}
		cities[city]++
		bands[ageBand(c.DOB, now)]++
	}

	byCity := make([]Count, 0, len(cities))
	for city, n := range cities {
		byCity = append(byCity, Count{Label: city, Count: n, Percent: percent(n, total)})
	}
	sort.Slice(byCity, func(i, j int) bool {
		if byCity[i].Count != byCity[j].Count {
			return byCity[i].Count > byCity[j].Count
		}
		return byCity[i].Label < byCity[j].Label
	})

	byAge := make([]Count, 0, len(ageBands))
	for _, b := range ageBands {
		byAge = append(byAge, Count{Label: b, Count: bands[b], Percent: percent(bands[b], total)})
	}
	return DemographicsReport{Total: total, ByCity: byCity, ByAgeBand: byAge}
}

// RevenueShare is one indicator's slice of ledger volume.
type RevenueShare struct {
	IndicatorID int     `json:"indicatorId"`
	Label       string  `json:"label"`
	Amount      float64 `json:"amount"`
	Percent     float64 `json:"percent"`
}

// RevenueBreakdown splits total ledger volume by indicator.
func RevenueBreakdown(txs []domain.Transaction) []RevenueShare {
	total := decimal.Zero
	sums := map[int]decimal.Decimal{}
	for _, t := range txs {
		sums[t.IndicatorID] = sums[t.IndicatorID].Add(t.Amount)
		total = total.Add(t.Amount)
	}
	out := make([]RevenueShare, 0, len(domain.Indicators))
	for _, ind := range domain.Indicators {
		s := sums[ind.IndicatorID]
		share := RevenueShare{IndicatorID: ind.IndicatorID, Label: ind.Name, Amount: money(s)}
		if !total.IsZero() {
			share.Percent = money(s.Mul(hundred).Div(total))
		}
		out = append(out, share)
	}
	return out
}

// Performer is one client's month-on-month payout comparison.
type Performer struct {
	ClientID       uuid.UUID `json:"clientId"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	CurrentPayout  float64   `json:"currentPayout"`
	PreviousPayout float64   `json:"previousPayout"`
	Growth         float64   `json:"growth"`
}

// TopPerformers ranks clients by payout growth between the previous and the
// current calendar month, ties broken by current payout then name.
func TopPerformers(clients []domain.Client, txs []domain.Transaction, now time.Time, k int) []Performer {
	curFrom := monthStart(now)
	prevFrom := curFrom.AddDate(0, -1, 0)
	cur := map[uuid.UUID]decimal.Decimal{}
	prev := map[uuid.UUID]decimal.Decimal{}
	for _, t := range txs {
		if t.IndicatorID != domain.IndicatorPayout {
			continue
		}
		d := t.TransactionDate.In(now.Location())
		switch {
		case !d.Before(curFrom) && !d.After(now):
			cur[t.ClientID] = cur[t.ClientID].Add(t.Amount)
		case !d.Before(prevFrom) && d.Before(curFrom):
			prev[t.ClientID] = prev[t.ClientID].Add(t.Amount)
		}
	}

	out := make([]Performer, 0, len(clients))
	for _, c := range clients {
		p := Performer{
			ClientID:       c.ClientID,
			Code:           c.Code,
			Name:           c.Name,
			CurrentPayout:  money(cur[c.ClientID]),
			PreviousPayout: money(prev[c.ClientID]),
			Growth:         GrowthPercent(prev[c.ClientID], cur[c.ClientID]),
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Growth != out[j].Growth {
			return out[i].Growth > out[j].Growth
		}
		if out[i].CurrentPayout != out[j].CurrentPayout {
			return out[i].CurrentPayout > out[j].CurrentPayout
		}
		return out[i].Name < out[j].Name
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

// ReconRow compares a client's ledger investments with approved requests.
type ReconRow struct {
	ClientID          uuid.UUID `json:"clientId"`
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	LedgerInvestment  float64   `json:"ledgerInvestment"`
	ApprovedRequested float64   `json:"approvedRequested"`
	Difference        float64   `json:"difference"`
	Matched           bool      `json:"matched"`
}

// Reconcile lists every client with any investment on either side. Mismatched
// clients come first, largest absolute difference first.
func Reconcile(clients []domain.Client, txs []domain.Transaction, reqs []domain.InvestmentRequest) []ReconRow {
	ledger := map[uuid.UUID]decimal.Decimal{}
	for _, t := range txs {
		if t.IndicatorID == domain.IndicatorInvestment {
			ledger[t.ClientID] = ledger[t.ClientID].Add(t.Amount)
		}
	}
	approved := map[uuid.UUID]decimal.Decimal{}
	for _, r := range reqs {
		if r.Status == domain.StatusApproved {
			approved[r.ClientID] = approved[r.ClientID].Add(r.InvestmentAmount)
		}
	}

	type row struct {
		ReconRow
		diff decimal.Decimal
	}
	var rows []row
	for _, c := range clients {
		l, a := ledger[c.ClientID], approved[c.ClientID]
		if l.IsZero() && a.IsZero() {
			continue
		}
		diff := l.Sub(a)
		rows = append(rows, row{
			ReconRow: ReconRow{
				ClientID:          c.ClientID,
				Code:              c.Code,
				Name:              c.Name,
				LedgerInvestment:  money(l),
				ApprovedRequested: money(a),
				Difference:        money(diff),
				Matched:           diff.IsZero(),
			},
			diff: diff.Abs(),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Matched != rows[j].Matched {
			return !rows[i].Matched
		}
		if c := rows[i].diff.Cmp(rows[j].diff); c != 0 {
			return c > 0
		}
		return rows[i].Code < rows[j].Code
	})
	out := make([]ReconRow, len(rows))
	for i, r := range rows {
		out[i] = r.ReconRow
	}
	return out
}
