package ledger

import (
	"testing"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
)

func TestComputeGroupBalances(t *testing.T) {
	expenses := []*models.Expense{
		expense("e1", "g", "A", "90", share("A", "30"), share("B", "30"), share("C", "30")),
		expense("e2", "g", "B", "60", share("A", "20"), share("B", "20"), share("C", "20")),
	}
	settlements := []*models.Settlement{
		settled("g", "e1", "C", "A", "30"),
	}

	balances := ComputeGroupBalances(expenses, settlements, []string{"A", "B", "C", "D"})

	want := map[string]struct{ balance, paid, owed string }{
		"A": {"10", "90", "50"}, // +90 -30 -20, received 30
		"B": {"10", "60", "50"}, // +60 -30 -20
		"C": {"-20", "0", "50"}, // -30 -20, paid 30
		"D": {"0", "0", "0"},
	}
	for user, w := range want {
		bal, ok := balances[user]
		if !ok {
			t.Fatalf("missing balance for %s", user)
		}
		if !bal.Balance.Equal(amt(w.balance)) {
			t.Errorf("%s balance = %s, want %s", user, bal.Balance, w.balance)
		}
		if !bal.TotalPaid.Equal(amt(w.paid)) {
			t.Errorf("%s totalPaid = %s, want %s", user, bal.TotalPaid, w.paid)
		}
		if !bal.TotalOwed.Equal(amt(w.owed)) {
			t.Errorf("%s totalOwed = %s, want %s", user, bal.TotalOwed, w.owed)
		}
	}
	if !balances.Total().IsZero() {
		t.Errorf("balances sum to %s, want 0", balances.Total())
	}
}

func TestComputeGroupBalances_IgnoresPendingSettlements(t *testing.T) {
	expenses := []*models.Expense{
		expense("e1", "g", "A", "60", share("A", "30"), share("B", "30")),
	}
	pending := settled("g", "e1", "B", "A", "30")
	pending.Status = models.SettlementPending

	balances := ComputeGroupBalances(expenses, []*models.Settlement{pending}, []string{"A", "B"})
	if !balances["B"].Balance.Equal(amt("-30")) {
		t.Errorf("B balance = %s, want -30", balances["B"].Balance)
	}
}

func TestComputeGroupBalances_IncludesFormerMembers(t *testing.T) {
	expenses := []*models.Expense{
		expense("e1", "g", "A", "60", share("A", "30"), share("Z", "30")),
	}
	balances := ComputeGroupBalances(expenses, nil, []string{"A"})
	if _, ok := balances["Z"]; !ok {
		t.Fatal("expected former member Z in balances")
	}
	if !balances.Total().IsZero() {
		t.Errorf("balances sum to %s, want 0", balances.Total())
	}
}

// Conservation must hold after every expense and every admitted settlement.
func TestConservation(t *testing.T) {
	members := []string{"A", "B", "C"}
	g := group("g", members...)
	var expenses []*models.Expense
	var settlements []*models.Settlement

	steps := []func(){
		func() {
			expenses = append(expenses, expense("e1", "g", "A", "100", share("A", "33.34"), share("B", "33.33"), share("C", "33.33")))
		},
		func() {
			expenses = append(expenses, expense("e2", "g", "B", "45.5", share("A", "20"), share("C", "25.5")))
		},
		func() {
			p := Proposal{GroupID: "g", ExpenseID: "e1", From: "C", To: "A", Amount: amt("33.33"), Requester: "C"}
			v := View{Group: g, Expense: expenses[0], Settlements: settlements}
			if _, err := CheckSettlement(p, v); err != nil {
				t.Fatalf("expected admit, got %v", err)
			}
			settlements = append(settlements, settled("g", "e1", "C", "A", "33.33"))
		},
		func() {
			p := Proposal{GroupID: "g", From: "B", To: "A", Amount: amt("10"), Requester: "B"}
			v := View{Group: g, Expenses: expenses, Settlements: settlements}
			if _, err := CheckSettlement(p, v); err != nil {
				t.Fatalf("expected admit, got %v", err)
			}
			settlements = append(settlements, settled("g", "", "B", "A", "10"))
		},
	}

	for i, step := range steps {
		step()
		total := ComputeGroupBalances(expenses, settlements, members).Total()
		if total.Abs().GreaterThan(amt("0.001")) {
			t.Fatalf("after step %d balances sum to %s, want 0", i+1, total)
		}
	}
}

func TestConservation_SplitWithinTolerance(t *testing.T) {
	members := []string{"A", "B", "C"}
	var expenses []*models.Expense
	for i := 0; i < 50; i++ {
		splits := []models.Split{share("A", "33.33"), share("B", "33.33"), share("C", "33.33")}
		if err := ValidateSplit(amt("100"), splits); err != nil {
			t.Fatalf("ValidateSplit failed: %v", err)
		}
		e := expense("e", "g", members[i%3], "100")
		e.Splits = AbsorbRemainder(e.Amount, splits, e.PaidBy)
		expenses = append(expenses, e)
	}

	balances := ComputeGroupBalances(expenses, nil, members)
	if total := balances.Total(); !total.IsZero() {
		t.Fatalf("balances sum to %s, want 0", total)
	}
	// A and B paid 17 times each, C 16 times.
	want := map[string]string{"A": "33.33", "B": "33.33", "C": "-66.66"}
	for user, w := range want {
		if got := balances[user].Balance; !got.Equal(amt(w)) {
			t.Errorf("balance of %s: expected %s, got %s", user, w, got)
		}
	}
}

func TestComputePairwiseBalance(t *testing.T) {
	tests := []struct {
		name        string
		expenses    []*models.Expense
		settlements []*models.Settlement
		from, to    string
		want        string
	}{
		{
			name: "symmetric expenses cancel out",
			expenses: []*models.Expense{
				expense("e1", "g", "A", "100", share("A", "50"), share("B", "50")),
				expense("e2", "g", "B", "100", share("A", "50"), share("B", "50")),
			},
			from: "A", to: "B", want: "0",
		},
		{
			name: "debtor sees negative balance",
			expenses: []*models.Expense{
				expense("e1", "g", "A", "90", share("A", "30"), share("B", "30"), share("C", "30")),
			},
			from: "B", to: "A", want: "-30",
		},
		{
			name: "creditor sees positive balance",
			expenses: []*models.Expense{
				expense("e1", "g", "A", "90", share("A", "30"), share("B", "30"), share("C", "30")),
			},
			from: "A", to: "B", want: "30",
		},
		{
			name: "third party exposure is excluded",
			expenses: []*models.Expense{
				expense("e1", "g", "C", "90", share("A", "30"), share("B", "30"), share("C", "30")),
			},
			from: "A", to: "B", want: "0",
		},
		{
			name: "settlements in both directions",
			expenses: []*models.Expense{
				expense("e1", "g", "A", "90", share("A", "30"), share("B", "30"), share("C", "30")),
			},
			settlements: []*models.Settlement{
				settled("g", "", "B", "A", "20"),
				settled("g", "", "A", "B", "5"),
			},
			from: "B", to: "A", want: "-15",
		},
		{
			name: "other groups are ignored",
			expenses: []*models.Expense{
				expense("e1", "other", "A", "90", share("A", "30"), share("B", "60")),
			},
			settlements: []*models.Settlement{settled("other", "", "B", "A", "20")},
			from:        "B",
			to:          "A",
			want:        "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePairwiseBalance("g", tt.from, tt.to, tt.expenses, tt.settlements)
			if !got.Equal(amt(tt.want)) {
				t.Errorf("ComputePairwiseBalance() = %s, want %s", got, tt.want)
			}
			reverse := ComputePairwiseBalance("g", tt.to, tt.from, tt.expenses, tt.settlements)
			if !reverse.Equal(got.Neg()) {
				t.Errorf("reverse pairwise balance = %s, want %s", reverse, got.Neg())
			}
		})
	}
}

func TestComputeUserBalances(t *testing.T) {
	groups := []*models.Group{group("g1", "A", "B"), group("g2", "A", "C"), group("g3", "A")}
	expenses := []*models.Expense{
		expense("e1", "g1", "A", "50", share("A", "25"), share("B", "25")),
		expense("e2", "g2", "C", "40", share("A", "40")),
	}
	settlements := []*models.Settlement{settled("g2", "", "A", "C", "15")}

	positions := ComputeUserBalances("A", groups, expenses, settlements)
	if len(positions) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(positions))
	}
	want := map[string]string{"g1": "25", "g2": "-25", "g3": "0"}
	for _, pos := range positions {
		if !pos.Balance.Equal(amt(want[pos.GroupID])) {
			t.Errorf("%s balance = %s, want %s", pos.GroupID, pos.Balance, want[pos.GroupID])
		}
	}
}

func TestSimplifyDebts(t *testing.T) {
	expenses := []*models.Expense{
		expense("e1", "g", "A", "90", share("A", "30"), share("B", "30"), share("C", "30")),
		expense("e2", "g", "B", "30", share("A", "10"), share("B", "10"), share("C", "10")),
	}
	balances := ComputeGroupBalances(expenses, nil, []string{"A", "B", "C"})
	// A: +90-30-10 = 50, B: +30-30-10 = -10, C: -40
	edges := SimplifyDebts(balances)

	if len(edges) != 2 {
		t.Fatalf("expected 2 edges, got %d: %+v", len(edges), edges)
	}
	if edges[0].From != "C" || edges[0].To != "A" || !edges[0].Amount.Equal(amt("40")) {
		t.Errorf("edge 0 = %+v, want C->A 40", edges[0])
	}
	if edges[1].From != "B" || edges[1].To != "A" || !edges[1].Amount.Equal(amt("10")) {
		t.Errorf("edge 1 = %+v, want B->A 10", edges[1])
	}

	// Applying the suggested payments clears every balance.
	var settlements []*models.Settlement
	for _, e := range edges {
		settlements = append(settlements, &models.Settlement{
			GroupID: "g", FromUserID: e.From, ToUserID: e.To, Amount: e.Amount, Status: models.SettlementCompleted,
		})
	}
	for user, bal := range ComputeGroupBalances(expenses, settlements, []string{"A", "B", "C"}) {
		if !money.ApproxEqual(bal.Balance, amt("0")) {
			t.Errorf("%s balance after simplification = %s, want 0", user, bal.Balance)
		}
	}
}

func TestSimplifyDebts_SettledGroup(t *testing.T) {
	expenses := []*models.Expense{
		expense("e1", "g", "A", "100", share("A", "50"), share("B", "50")),
		expense("e2", "g", "B", "100", share("A", "50"), share("B", "50")),
	}
	if edges := SimplifyDebts(ComputeGroupBalances(expenses, nil, []string{"A", "B"})); len(edges) != 0 {
		t.Errorf("expected no debts, got %+v", edges)
	}
}
